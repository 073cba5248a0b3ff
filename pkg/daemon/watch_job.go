package daemon

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/reversion-fs/reversion/pkg/cleanup"
	"github.com/reversion-fs/reversion/pkg/workdir"
)

// watchJob drives one tracked work directory: a recursive fsnotify watcher
// whose events are debounced per path and applied by a single consumer
// goroutine, so work on this directory is serialized while other tracked
// directories proceed in parallel (spec §5).
type watchJob struct {
	path     string
	coalesce time.Duration
	metrics  *metrics
	logger   *slog.Logger

	watcher *fsnotify.Watcher
	stopCh  chan struct{}
	stopped chan struct{}

	mu      sync.Mutex
	pending map[string]*time.Timer
	fireCh  chan string
}

func newWatchJob(path string, coalesce time.Duration, m *metrics, logger *slog.Logger) *watchJob {
	return &watchJob{
		path:     path,
		coalesce: coalesce,
		metrics:  m,
		logger:   logger,
		stopCh:   make(chan struct{}),
		stopped:  make(chan struct{}),
		pending:  make(map[string]*time.Timer),
		fireCh:   make(chan string),
	}
}

func (j *watchJob) start() bool {
	wd, err := workdir.Open(j.path)
	if err != nil {
		j.logger.Warn("daemon: dropping tracked directory that failed to open", "path", j.path, "error", err)
		return false
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		j.logger.Warn("daemon: creating watcher failed", "path", j.path, "error", err)
		wd.Repo.Close()
		return false
	}
	j.watcher = watcher

	if err := j.addRecursive(j.path, wd); err != nil {
		j.logger.Warn("daemon: initial recursive watch failed", "path", j.path, "error", err)
	}

	go j.consume(wd)
	return true
}

// addRecursive adds dir and every non-ignored subdirectory to the watcher.
func (j *watchJob) addRecursive(dir string, wd *workdir.WorkDir) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(j.path, p)
		if relErr == nil && rel != "." && wd.IsIgnored(rel) {
			return filepath.SkipDir
		}
		return j.watcher.Add(p)
	})
}

func (j *watchJob) consume(wd *workdir.WorkDir) {
	defer close(j.stopped)
	defer wd.Repo.Close()
	defer j.watcher.Close()

	for {
		select {
		case <-j.stopCh:
			return

		case event, ok := <-j.watcher.Events:
			if !ok {
				return
			}
			j.handleEvent(wd, event)

		case err, ok := <-j.watcher.Errors:
			if !ok {
				return
			}
			j.logger.Warn("daemon: watcher error", "path", j.path, "error", err)

		case rel := <-j.fireCh:
			j.commitAndClean(wd, rel)
		}
	}
}

func (j *watchJob) handleEvent(wd *workdir.WorkDir, event fsnotify.Event) {
	if j.metrics != nil {
		j.metrics.watchEvents.Inc()
	}

	rel, err := filepath.Rel(j.path, event.Name)
	if err != nil || wd.IsIgnored(rel) {
		return
	}

	if event.Op&fsnotify.Create != 0 {
		if info, statErr := statIsDir(event.Name); statErr == nil && info {
			_ = j.addRecursive(event.Name, wd)
			return
		}
	}

	if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return
	}

	j.debounce(rel)
}

// debounce collapses events for the same relative path arriving within the
// coalescing window into a single commit (spec §4.8). The timer only
// enqueues rel onto fireCh; consume's select loop is the sole goroutine
// that ever calls commitAndClean, so two paths debouncing in the same
// tracked directory still commit one at a time (spec §5's single-writer-
// per-directory rule covers this job's whole directory, not just one path).
func (j *watchJob) debounce(rel string) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if t, ok := j.pending[rel]; ok {
		t.Stop()
	}
	j.pending[rel] = time.AfterFunc(j.coalesce, func() {
		j.mu.Lock()
		delete(j.pending, rel)
		j.mu.Unlock()

		select {
		case j.fireCh <- rel:
		case <-j.stopCh:
		}
	})
}

func (j *watchJob) commitAndClean(wd *workdir.WorkDir, rel string) {
	snap, err := wd.Commit([]string{rel}, false)
	if err != nil {
		j.logger.Warn("daemon: auto-commit failed", "path", j.path, "file", rel, "error", err)
		return
	}
	if snap != nil && j.metrics != nil {
		j.metrics.commits.Inc()
	}
	if err := wd.Timeline.Clean([]string{rel}, cleanup.CleanPath); err != nil {
		j.logger.Warn("daemon: post-commit cleanup failed", "path", j.path, "file", rel, "error", err)
	}
}

func (j *watchJob) stop() {
	close(j.stopCh)
	<-j.stopped
}

func statIsDir(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	return info.IsDir(), nil
}
