// Package integrity implements spec §4.6: a lazy sequence of RepairAction
// values that scan a repository's block store for corruption and, on
// request, attempt to repair it by rechunking current working-directory
// files.
package integrity

import (
	"fmt"
	"os"

	"github.com/reversion-fs/reversion/pkg/checksum"
	"github.com/reversion-fs/reversion/pkg/chunk"
	"github.com/reversion-fs/reversion/pkg/repoconfig"
	"github.com/reversion-fs/reversion/pkg/repository"
	"github.com/reversion-fs/reversion/pkg/repository/models"
	"github.com/reversion-fs/reversion/pkg/timeline"
)

// RepairResult is the outcome of calling RepairAction.Repair.
type RepairResult struct {
	Success bool
	Message string
}

// FollowupAction is the concrete, actionable work a RepairAction's Verify
// step discovered. A RepairAction whose Verify finds nothing wrong returns
// a nil FollowupAction.
type FollowupAction interface {
	// Repair attempts to fix what Verify found, returning a human-readable
	// summary of what happened.
	Repair(workRoot string) RepairResult
}

// RepairAction is one independently verifiable and repairable aspect of
// repository health.
type RepairAction interface {
	// Message describes what this action checks.
	Message() string

	// Verify runs the check, returning a FollowupAction if it finds a
	// problem, or nil if the repository is healthy in this respect.
	Verify() (FollowupAction, error)
}

// Verify returns the lazy sequence of RepairActions applicable to repo. The
// only action implemented today is the blob-corruption scan; it is
// structured as a slice rather than a channel since the current set of
// actions is small and fixed.
func Verify(repo *repository.Repository) []RepairAction {
	return []RepairAction{
		&blobRepairAction{repo: repo},
	}
}

// CorruptBlock describes one damaged or missing block found by
// blobRepairAction.Verify.
type CorruptBlock struct {
	Checksum checksum.Checksum
	Reason   string
}

type blobRepairAction struct {
	repo *repository.Repository
}

func (a *blobRepairAction) Message() string {
	return "scan every catalogued block for missing, mis-sized, or mismatched content"
}

// Verify walks every block in the catalog, reads it from disk (or detects
// its absence), and recomputes its SHA-256. A block is corrupt if missing,
// if its size differs from the catalog, or if its checksum mismatches its
// filename.
func (a *blobRepairAction) Verify() (FollowupAction, error) {
	var rows []models.Block
	if err := a.repo.DB().Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("integrity: loading block catalog: %w", err)
	}

	var corrupt []CorruptBlock
	for _, row := range rows {
		sum, err := checksum.Parse(row.Checksum)
		if err != nil {
			corrupt = append(corrupt, CorruptBlock{Reason: fmt.Sprintf("unparseable catalog checksum %q", row.Checksum)})
			continue
		}

		data, err := a.repo.Blocks.Get(sum)
		if err != nil {
			corrupt = append(corrupt, CorruptBlock{Checksum: sum, Reason: "missing"})
			continue
		}
		if int64(len(data)) != row.Length {
			corrupt = append(corrupt, CorruptBlock{Checksum: sum, Reason: "size mismatch"})
			continue
		}
		if checksum.Sum(data) != sum {
			corrupt = append(corrupt, CorruptBlock{Checksum: sum, Reason: "checksum mismatch"})
		}
	}

	if len(corrupt) == 0 {
		return nil, nil
	}
	return &blobRepairFollowup{repo: a.repo, corrupt: corrupt}, nil
}

type blobRepairFollowup struct {
	repo    *repository.Repository
	corrupt []CorruptBlock
}

// Repair implements spec §4.6's repair policy: for each corrupt block, try
// to find current working-directory bytes that reproduce it by rechunking
// every version's path with the repository's chunker; failing that, delete
// every version that references the block (cascading to empty-snapshot
// deletion).
func (f *blobRepairFollowup) Repair(workRoot string) RepairResult {
	chunker, err := repoconfig.NewChunker(f.repo.Config)
	if err != nil {
		return RepairResult{Success: false, Message: fmt.Sprintf("resolving chunker: %v", err)}
	}

	var repaired, deleted int
	for _, block := range f.corrupt {
		paths, err := referencingPaths(f.repo, block.Checksum)
		if err != nil {
			return RepairResult{Success: false, Message: fmt.Sprintf("finding references to %s: %v", block.Checksum, err)}
		}

		if tryRechunkRepair(f.repo, chunker, workRoot, paths, block.Checksum) {
			repaired++
			continue
		}

		n, err := deleteReferencingVersions(f.repo, block.Checksum)
		if err != nil {
			return RepairResult{Success: false, Message: fmt.Sprintf("deleting unrepairable versions for %s: %v", block.Checksum, err)}
		}
		deleted += n
	}

	return RepairResult{
		Success: true,
		Message: fmt.Sprintf("repaired %d block(s), deleted %d unrepairable version(s)", repaired, deleted),
	}
}

// referencingPaths returns the relative paths of every version that
// references sum, deduplicated.
func referencingPaths(repo *repository.Repository, sum checksum.Checksum) ([]string, error) {
	var paths []string
	err := repo.DB().
		Model(&models.Version{}).
		Joins("JOIN chunk_reference ON chunk_reference.version_id = version.id").
		Where("chunk_reference.block_checksum = ?", sum.String()).
		Distinct("version.path").
		Pluck("version.path", &paths).Error
	if err != nil {
		return nil, err
	}
	return paths, nil
}

// tryRechunkRepair rechunks every candidate path with chunker looking for a
// chunk whose checksum equals target; if found, it writes the bytes back to
// the block's storage location via blockstore.Put (itself a staged write +
// atomic rename) and reports success.
func tryRechunkRepair(repo *repository.Repository, chunker chunk.Chunker, workRoot string, paths []string, target checksum.Checksum) bool {
	for _, relPath := range paths {
		f, err := os.Open(pathJoin(workRoot, relPath))
		if err != nil {
			continue
		}

		found := false
		_ = chunker.Split(f, func(c chunk.Chunk) error {
			if found {
				return nil
			}
			if checksum.Sum(c.Data) == target {
				if _, err := repo.Blocks.Put(c.Data); err == nil {
					found = true
				}
			}
			return nil
		})
		f.Close()

		if found {
			return true
		}
	}
	return false
}

// deleteReferencingVersions deletes every version referencing sum, returning
// how many were deleted. Each deletion may leave its snapshot empty; every
// touched snapshot is then passed to timeline.Snapshot.DeleteIfEmpty here,
// so empty snapshots are removed before it returns.
func deleteReferencingVersions(repo *repository.Repository, sum checksum.Checksum) (int, error) {
	var versionIDs []uint
	err := repo.DB().
		Model(&models.ChunkReference{}).
		Where("block_checksum = ?", sum.String()).
		Distinct("version_id").
		Pluck("version_id", &versionIDs).Error
	if err != nil {
		return 0, err
	}

	snapshotsTouched := make(map[uint]string) // snapshotID -> timelineID
	for _, id := range versionIDs {
		var v models.Version
		if err := repo.DB().First(&v, id).Error; err != nil {
			continue
		}
		var snap models.Snapshot
		if err := repo.DB().First(&snap, v.SnapshotID).Error; err == nil {
			snapshotsTouched[snap.ID] = snap.TimelineID
		}
		if err := repo.DB().Delete(&models.Version{}, id).Error; err != nil {
			return 0, err
		}
	}

	for snapID, timelineID := range snapshotsTouched {
		tl := timeline.Open(repo, timelineID)
		snap, err := tl.Snapshot(snapID)
		if err != nil {
			continue
		}
		_, _ = snap.DeleteIfEmpty()
	}

	return len(versionIDs), nil
}

func pathJoin(a, b string) string {
	if a == "" {
		return b
	}
	return a + string(os.PathSeparator) + b
}
