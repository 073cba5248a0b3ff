package integrity_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/reversion-fs/reversion/pkg/checksum"
	"github.com/reversion-fs/reversion/pkg/integrity"
	"github.com/reversion-fs/reversion/pkg/repoconfig"
	"github.com/reversion-fs/reversion/pkg/repository"
	"github.com/reversion-fs/reversion/pkg/repository/models"
	"github.com/reversion-fs/reversion/pkg/timeline"
)

func newRepo(t *testing.T) *repository.Repository {
	t.Helper()
	cfg := repoconfig.Default()
	cfg.Chunker = &repoconfig.Chunker{Kind: repoconfig.ChunkerKindFixed, Size: 8}
	repo, err := repository.Create(filepath.Join(t.TempDir(), "repo"), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func newTimeline(t *testing.T, repo *repository.Repository) *timeline.Timeline {
	t.Helper()
	id := uuid.NewString()
	require.NoError(t, repo.DB().Create(&models.Timeline{ID: id, Name: "main"}).Error)
	return timeline.Open(repo, id)
}

func blobPath(repoRoot string, sum string) string {
	return filepath.Join(repoRoot, "blobs", sum[:2], sum)
}

func TestVerifyFindsNothingOnHealthyRepository(t *testing.T) {
	repo := newRepo(t)
	tl := newTimeline(t, repo)
	workRoot := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(workRoot, "f.txt"), []byte("some content here"), 0o644))
	_, err := tl.CreateSnapshot([]string{"f.txt"}, workRoot, "", "", false)
	require.NoError(t, err)

	for _, action := range integrity.Verify(repo) {
		followup, err := action.Verify()
		require.NoError(t, err)
		require.Nil(t, followup, action.Message())
	}
}

func TestRepairRechunksCurrentWorkingCopyToFixCorruption(t *testing.T) {
	repo := newRepo(t)
	tl := newTimeline(t, repo)
	workRoot := t.TempDir()

	content := "abcdefghijklmnop" // two 8-byte fixed chunks
	require.NoError(t, os.WriteFile(filepath.Join(workRoot, "f.txt"), []byte(content), 0o644))
	_, err := tl.CreateSnapshot([]string{"f.txt"}, workRoot, "", "", false)
	require.NoError(t, err)

	var blocks []models.Block
	require.NoError(t, repo.DB().Find(&blocks).Error)
	require.NotEmpty(t, blocks)
	target := blocks[0]

	require.NoError(t, os.Remove(blobPath(repo.Path, target.Checksum)))

	var followup integrity.FollowupAction
	for _, action := range integrity.Verify(repo) {
		f, err := action.Verify()
		require.NoError(t, err)
		if f != nil {
			followup = f
			break
		}
	}
	require.NotNil(t, followup, "expected corruption to be detected after removing a blob")

	result := followup.Repair(workRoot)
	require.True(t, result.Success, result.Message)

	sum, err := checksum.Parse(target.Checksum)
	require.NoError(t, err)
	data, err := repo.Blocks.Get(sum)
	require.NoError(t, err)
	require.Len(t, data, int(target.Length))
}

func TestRepairRechunksToFixOverwrittenBlock(t *testing.T) {
	repo := newRepo(t)
	tl := newTimeline(t, repo)
	workRoot := t.TempDir()

	content := "abcdefghijklmnop" // two 8-byte fixed chunks
	require.NoError(t, os.WriteFile(filepath.Join(workRoot, "f.txt"), []byte(content), 0o644))
	_, err := tl.CreateSnapshot([]string{"f.txt"}, workRoot, "", "", false)
	require.NoError(t, err)

	var blocks []models.Block
	require.NoError(t, repo.DB().Find(&blocks).Error)
	require.NotEmpty(t, blocks)
	target := blocks[0]

	// Simulate spec §8 scenario 6's corruption: overwrite the block on disk
	// with random bytes rather than removing the file, so the path still
	// exists but its content no longer hashes to its own filename.
	require.NoError(t, os.WriteFile(blobPath(repo.Path, target.Checksum), []byte("not the original bytes at all"), 0o644))

	var followup integrity.FollowupAction
	for _, action := range integrity.Verify(repo) {
		f, err := action.Verify()
		require.NoError(t, err)
		if f != nil {
			followup = f
			break
		}
	}
	require.NotNil(t, followup, "expected corruption to be detected after overwriting a blob with random bytes")

	result := followup.Repair(workRoot)
	require.True(t, result.Success, result.Message)

	sum, err := checksum.Parse(target.Checksum)
	require.NoError(t, err)
	data, err := repo.Blocks.Get(sum)
	require.NoError(t, err)
	require.Len(t, data, int(target.Length))
	require.Equal(t, sum, checksum.Sum(data), "on-disk content must actually hash back to its own filename after repair")
}

func TestRepairDeletesUnrepairableVersionsAndEmptiesSnapshot(t *testing.T) {
	repo := newRepo(t)
	tl := newTimeline(t, repo)
	workRoot := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(workRoot, "only.txt"), []byte("irreplaceable bytes"), 0o644))
	snap, err := tl.CreateSnapshot([]string{"only.txt"}, workRoot, "", "", false)
	require.NoError(t, err)

	var blocks []models.Block
	require.NoError(t, repo.DB().Find(&blocks).Error)
	require.NotEmpty(t, blocks)
	target := blocks[0]
	require.NoError(t, os.Remove(blobPath(repo.Path, target.Checksum)))

	// Working copy no longer holds bytes matching the corrupt block, so
	// rechunking cannot repair it and the referencing version must be
	// deleted instead.
	require.NoError(t, os.WriteFile(filepath.Join(workRoot, "only.txt"), []byte("totally different!!!"), 0o644))

	var followup integrity.FollowupAction
	for _, action := range integrity.Verify(repo) {
		f, err := action.Verify()
		require.NoError(t, err)
		if f != nil {
			followup = f
			break
		}
	}
	require.NotNil(t, followup)

	result := followup.Repair(workRoot)
	require.True(t, result.Success, result.Message)

	remaining, err := tl.ListVersions("only.txt")
	require.NoError(t, err)
	require.Empty(t, remaining)

	var count int64
	require.NoError(t, repo.DB().Model(&models.Snapshot{}).Where("id = ?", snap.ID()).Count(&count).Error)
	require.Zero(t, count, "empty snapshot should have been deleted")
}
