// Package daemon implements spec §4.8: background execution of repository
// jobs and automatic commits.
//
// A Daemon is a process-wide singleton holding two persisted sets of
// absolute paths — registered (working directories under management) and
// tracked (working directories whose changes are auto-committed) — each
// guarded by one mutex so add/remove/contains/snapshot are linearizable.
package daemon

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/reversion-fs/reversion/pkg/config"
)

// DefaultCleanupInterval is how often a registered directory's periodic
// cleanup job runs when the caller does not override it.
const DefaultCleanupInterval = time.Hour

// Daemon is the process-wide watch/cleanup supervisor.
type Daemon struct {
	stateDir string
	coalesce time.Duration
	interval time.Duration
	logger   *slog.Logger
	metrics  *metrics

	mu         sync.Mutex
	registered map[string]*repositoryJob
	tracked    map[string]*watchJob
}

// New constructs a Daemon from cfg. Metrics are registered against
// prometheus.DefaultRegisterer only when cfg.Metrics.Enabled is set.
func New(cfg *config.Config, logger *slog.Logger) *Daemon {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Daemon{
		stateDir:   cfg.Daemon.StateDir,
		coalesce:   cfg.Daemon.CoalesceWindow,
		interval:   DefaultCleanupInterval,
		logger:     logger,
		registered: make(map[string]*repositoryJob),
		tracked:    make(map[string]*watchJob),
	}
	if cfg.Metrics.Enabled {
		d.metrics = newMetrics(prometheus.DefaultRegisterer)
	}
	return d
}

func (d *Daemon) registeredStatePath() string { return filepath.Join(d.stateDir, registeredFileName) }
func (d *Daemon) trackedStatePath() string    { return filepath.Join(d.stateDir, trackedFileName) }

// Start replays the persisted registered and tracked sets, launching a job
// for each (spec §4.8's "On start(), previously persisted sets are
// replayed").
func (d *Daemon) Start() error {
	registered, err := loadPathSet(d.registeredStatePath())
	if err != nil {
		return err
	}
	tracked, err := loadPathSet(d.trackedStatePath())
	if err != nil {
		return err
	}

	for _, path := range registered {
		d.launchRegistered(path)
	}
	for _, path := range tracked {
		d.launchTracked(path)
	}
	return nil
}

// Stop stops every running job. It does not clear the persisted sets, so a
// subsequent Start resumes the same configuration.
func (d *Daemon) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, job := range d.registered {
		job.stop()
	}
	for _, job := range d.tracked {
		job.stop()
	}
}

// Register adds path to the registered set, persists it, and launches its
// periodic cleanup job immediately.
func (d *Daemon) Register(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("daemon: resolving %s: %w", path, err)
	}

	d.mu.Lock()
	_, exists := d.registered[abs]
	d.mu.Unlock()
	if exists {
		return nil
	}

	d.launchRegistered(abs)
	return d.persistRegistered()
}

func (d *Daemon) launchRegistered(path string) {
	job := newRepositoryJob(path, d.interval)
	if !job.start(d.logger) {
		return
	}
	d.mu.Lock()
	d.registered[path] = job
	d.mu.Unlock()
}

// Unregister stops and removes path from the registered set.
func (d *Daemon) Unregister(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("daemon: resolving %s: %w", path, err)
	}

	d.mu.Lock()
	job, ok := d.registered[abs]
	delete(d.registered, abs)
	d.mu.Unlock()
	if ok {
		job.stop()
	}
	return d.persistRegistered()
}

// Track adds path to the tracked set, persists it, and launches its
// filesystem watcher immediately.
func (d *Daemon) Track(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("daemon: resolving %s: %w", path, err)
	}

	d.mu.Lock()
	_, exists := d.tracked[abs]
	d.mu.Unlock()
	if exists {
		return nil
	}

	d.launchTracked(abs)
	return d.persistTracked()
}

func (d *Daemon) launchTracked(path string) {
	job := newWatchJob(path, d.coalesce, d.metrics, d.logger)
	if !job.start() {
		return
	}
	d.mu.Lock()
	d.tracked[path] = job
	d.mu.Unlock()
}

// Untrack stops and removes path from the tracked set.
func (d *Daemon) Untrack(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("daemon: resolving %s: %w", path, err)
	}

	d.mu.Lock()
	job, ok := d.tracked[abs]
	delete(d.tracked, abs)
	d.mu.Unlock()
	if ok {
		job.stop()
	}
	return d.persistTracked()
}

// RegisteredPaths returns a snapshot of the registered set.
func (d *Daemon) RegisteredPaths() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	paths := make([]string, 0, len(d.registered))
	for p := range d.registered {
		paths = append(paths, p)
	}
	return paths
}

// TrackedPaths returns a snapshot of the tracked set.
func (d *Daemon) TrackedPaths() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	paths := make([]string, 0, len(d.tracked))
	for p := range d.tracked {
		paths = append(paths, p)
	}
	return paths
}

func (d *Daemon) persistRegistered() error {
	return savePathSet(d.registeredStatePath(), d.RegisteredPaths())
}

func (d *Daemon) persistTracked() error {
	return savePathSet(d.trackedStatePath(), d.TrackedPaths())
}
