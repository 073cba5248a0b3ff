package workdir_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/reversion-fs/reversion/pkg/workdir"
)

func TestInitThenOpenRoundTrip(t *testing.T) {
	root := t.TempDir()

	wd, err := workdir.Init(root, workdir.DefaultProvider{})
	require.NoError(t, err)
	defer wd.Repo.Close()

	reopened, err := workdir.Open(root)
	require.NoError(t, err)
	defer reopened.Repo.Close()

	require.Equal(t, wd.Timeline.ID, reopened.Timeline.ID)
}

func TestOpenFromDescendantWalksUpToRoot(t *testing.T) {
	root := t.TempDir()
	wd, err := workdir.Init(root, workdir.DefaultProvider{})
	require.NoError(t, err)
	defer wd.Repo.Close()

	nested := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	found, err := workdir.OpenFromDescendant(nested)
	require.NoError(t, err)
	defer found.Repo.Close()

	require.Equal(t, wd.Timeline.ID, found.Timeline.ID)
}

func TestOpenFromDescendantFailsOutsideAnyWorkDirectory(t *testing.T) {
	_, err := workdir.OpenFromDescendant(t.TempDir())
	require.ErrorIs(t, err, workdir.ErrNotAWorkDirectory)
}

func TestCommitSkipsUnchangedPathsUnlessForced(t *testing.T) {
	root := t.TempDir()
	wd, err := workdir.Init(root, workdir.DefaultProvider{})
	require.NoError(t, err)
	defer wd.Repo.Close()

	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("v1"), 0o644))
	snap1, err := wd.Commit([]string{"a.txt"}, false)
	require.NoError(t, err)
	require.NotNil(t, snap1)

	snap2, err := wd.Commit([]string{"a.txt"}, false)
	require.NoError(t, err)
	require.Nil(t, snap2, "unchanged path should not produce a new snapshot")

	snap3, err := wd.Commit([]string{"a.txt"}, true)
	require.NoError(t, err)
	require.NotNil(t, snap3, "force=true should commit regardless of content")
}

func TestRestoreLeavesUnversionedPathsUntouched(t *testing.T) {
	root := t.TempDir()
	wd, err := workdir.Init(root, workdir.DefaultProvider{})
	require.NoError(t, err)
	defer wd.Repo.Close()

	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("v1"), 0o644))
	_, err = wd.Commit([]string{"a.txt"}, false)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("v2 changed"), 0o644))
	require.NoError(t, wd.Restore([]string{"a.txt", "never-committed.txt"}, 1))

	data, err := os.ReadFile(filepath.Join(root, "a.txt"))
	require.NoError(t, err)
	require.Equal(t, "v1", string(data))

	_, err = os.Stat(filepath.Join(root, "never-committed.txt"))
	require.True(t, os.IsNotExist(err))
}

func TestListFilesExcludesHiddenDirectory(t *testing.T) {
	root := t.TempDir()
	wd, err := workdir.Init(root, workdir.DefaultProvider{})
	require.NoError(t, err)
	defer wd.Repo.Close()

	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("content"), 0o644))

	files, err := wd.ListFiles()
	require.NoError(t, err)
	require.Contains(t, files, "a.txt")
	for _, f := range files {
		require.NotContains(t, f, workdir.HiddenDirName)
	}
}

func TestDeleteRemovesHiddenDirectory(t *testing.T) {
	root := t.TempDir()
	wd, err := workdir.Init(root, workdir.DefaultProvider{})
	require.NoError(t, err)

	require.NoError(t, wd.Delete())

	_, err = os.Stat(filepath.Join(root, workdir.HiddenDirName))
	require.True(t, os.IsNotExist(err))
}
