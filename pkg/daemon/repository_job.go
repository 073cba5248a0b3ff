package daemon

import (
	"log/slog"
	"time"

	"github.com/reversion-fs/reversion/pkg/cleanup"
	"github.com/reversion-fs/reversion/pkg/timeline"
	"github.com/reversion-fs/reversion/pkg/workdir"
)

// repositoryJob periodically runs Timeline.Clean for every timeline of one
// registered work directory, per spec §4.8's "launch any long-running
// Repository.jobs (e.g., periodic cleanup) associated with the repository".
type repositoryJob struct {
	path     string
	interval time.Duration
	stopCh   chan struct{}
	stopped  chan struct{}
}

func newRepositoryJob(path string, interval time.Duration) *repositoryJob {
	return &repositoryJob{
		path:     path,
		interval: interval,
		stopCh:   make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

// start opens the work directory once to validate it before entering the
// loop; if opening fails the job is silently dropped, matching spec §4.8's
// "silently drop if the work directory fails to open".
func (j *repositoryJob) start(logger *slog.Logger) bool {
	wd, err := workdir.Open(j.path)
	if err != nil {
		logger.Warn("daemon: dropping registered directory that failed to open", "path", j.path, "error", err)
		return false
	}

	go func() {
		defer close(j.stopped)
		defer wd.Repo.Close()

		ticker := time.NewTicker(j.interval)
		defer ticker.Stop()

		for {
			select {
			case <-j.stopCh:
				return
			case <-ticker.C:
				j.runOnce(wd, logger)
			}
		}
	}()
	return true
}

func (j *repositoryJob) runOnce(wd *workdir.WorkDir, logger *slog.Logger) {
	ids, err := wd.Repo.TimelineIDs()
	if err != nil {
		logger.Warn("daemon: listing timelines for cleanup", "path", j.path, "error", err)
		return
	}
	for _, id := range ids {
		tl := timeline.Open(wd.Repo, id)
		if err := tl.Clean(nil, cleanup.CleanPath); err != nil {
			logger.Warn("daemon: periodic cleanup failed", "path", j.path, "timeline", id, "error", err)
		}
	}
}

func (j *repositoryJob) stop() {
	close(j.stopCh)
	<-j.stopped
}
