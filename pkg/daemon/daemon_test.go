package daemon_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/reversion-fs/reversion/pkg/config"
	"github.com/reversion-fs/reversion/pkg/daemon"
	"github.com/reversion-fs/reversion/pkg/workdir"
)

func newWorkDir(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	wd, err := workdir.Init(root, workdir.DefaultProvider{})
	require.NoError(t, err)
	t.Cleanup(func() { wd.Repo.Close() })
	return root
}

func newDaemonConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Daemon.StateDir = t.TempDir()
	cfg.Daemon.CoalesceWindow = 20 * time.Millisecond
	return cfg
}

func newDaemon(t *testing.T) *daemon.Daemon {
	t.Helper()
	return daemon.New(newDaemonConfig(t), nil)
}

func TestRegisterPersistsAndCanBeReplayedOnStart(t *testing.T) {
	root := newWorkDir(t)
	cfg := newDaemonConfig(t)
	d := daemon.New(cfg, nil)

	require.NoError(t, d.Register(root))
	require.Contains(t, d.RegisteredPaths(), mustAbs(t, root))
	d.Stop()

	replayed := daemon.New(cfg, nil)
	require.NoError(t, replayed.Start())
	require.Contains(t, replayed.RegisteredPaths(), mustAbs(t, root))
	replayed.Stop()
}

func TestUnregisterStopsAndForgetsPath(t *testing.T) {
	root := newWorkDir(t)
	d := newDaemon(t)

	require.NoError(t, d.Register(root))
	require.NoError(t, d.Unregister(root))
	require.Empty(t, d.RegisteredPaths())
}

func TestTrackCommitsOnFileWrite(t *testing.T) {
	root := newWorkDir(t)
	d := newDaemon(t)

	require.NoError(t, d.Track(root))
	defer d.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("hello"), 0o644))

	require.Eventually(t, func() bool {
		wd, err := workdir.Open(root)
		if err != nil {
			return false
		}
		defer wd.Repo.Close()
		versions, err := wd.Timeline.ListVersions("a.txt")
		return err == nil && len(versions) > 0
	}, 2*time.Second, 50*time.Millisecond)
}

func TestTrackSerializesCommitsAcrossDifferentPathsInSameDirectory(t *testing.T) {
	root := newWorkDir(t)
	d := newDaemon(t)

	require.NoError(t, d.Track(root))
	defer d.Stop()

	// Two distinct paths debouncing in the same tracked directory must still
	// commit one at a time: both writes land inside the same coalescing
	// window, so their debounce timers fire close together.
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("first"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "b.txt"), []byte("second"), 0o644))

	require.Eventually(t, func() bool {
		wd, err := workdir.Open(root)
		if err != nil {
			return false
		}
		defer wd.Repo.Close()
		av, errA := wd.Timeline.ListVersions("a.txt")
		bv, errB := wd.Timeline.ListVersions("b.txt")
		return errA == nil && errB == nil && len(av) > 0 && len(bv) > 0
	}, 2*time.Second, 50*time.Millisecond)
}

func TestUntrackStopsWatching(t *testing.T) {
	root := newWorkDir(t)
	d := newDaemon(t)

	require.NoError(t, d.Track(root))
	require.NoError(t, d.Untrack(root))
	require.Empty(t, d.TrackedPaths())
}

func mustAbs(t *testing.T, path string) string {
	t.Helper()
	abs, err := filepath.Abs(path)
	require.NoError(t, err)
	return abs
}
