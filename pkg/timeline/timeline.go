// Package timeline implements spec §4.4: an independent, named sequence of
// snapshots, each snapshot a numbered revision binding a set of paths to
// the content (or a carried-forward pointer) they had at that revision.
package timeline

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/reversion-fs/reversion/pkg/checksum"
	"github.com/reversion-fs/reversion/pkg/chunk"
	"github.com/reversion-fs/reversion/pkg/repoconfig"
	"github.com/reversion-fs/reversion/pkg/repository"
	"github.com/reversion-fs/reversion/pkg/repository/models"
)

// Timeline is an open handle onto one timeline row of a repository.
type Timeline struct {
	ID   string
	repo *repository.Repository
}

// Open returns a Timeline handle for id. It does not verify id exists;
// callers that need that check should use a query against ListVersions or
// similar, matching the teacher's lazy-handle style.
func Open(repo *repository.Repository, id string) *Timeline {
	return &Timeline{ID: id, repo: repo}
}

// Info describes a timeline row independent of any open handle, for
// listing timelines in a repository.
type Info struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// List returns every timeline in the repository, a repository-wide
// counterpart to pkg/workdir's single bound timeline (a work directory
// binds to one timeline, but a repository's schema allows more, e.g. ones
// created directly against pkg/repository by another work directory).
func List(repo *repository.Repository) ([]Info, error) {
	var rows []models.Timeline
	if err := repo.DB().Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("timeline: listing timelines: %w", err)
	}
	infos := make([]Info, len(rows))
	for i, row := range rows {
		infos[i] = Info{ID: row.ID, Name: row.Name, CreatedAt: row.CreatedAt}
	}
	return infos, nil
}

// Rename updates a timeline's name.
func (t *Timeline) Rename(name string) error {
	res := t.repo.DB().Model(&models.Timeline{}).Where("id = ?", t.ID).Update("name", name)
	if res.Error != nil {
		return fmt.Errorf("timeline: renaming timeline: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrTimelineNotFound
	}
	return nil
}

// Remove deletes the timeline and, by foreign-key cascade, every snapshot,
// version, and chunk reference it owns. Orphaned blocks are reclaimed by a
// later blockstore.Sweep, not here.
func (t *Timeline) Remove() error {
	res := t.repo.DB().Delete(&models.Timeline{}, "id = ?", t.ID)
	if res.Error != nil {
		return fmt.Errorf("timeline: removing timeline: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrTimelineNotFound
	}
	return nil
}

// CreateSnapshot implements spec §4.4's createSnapshot: it allocates the
// next revision, chunks and stores every input path's content, and commits
// the new snapshot and its versions inside a single transaction, serialized
// by the repository's single-writer discipline (spec §5).
func (t *Timeline) CreateSnapshot(paths []string, workRoot string, name, description string, pinned bool) (*Snapshot, error) {
	chunker, err := repoconfig.NewChunker(t.repo.Config)
	if err != nil {
		return nil, fmt.Errorf("timeline: resolving chunker: %w", err)
	}

	var snapshotRow models.Snapshot
	err = t.repo.DB().Transaction(func(tx *gorm.DB) error {
		var maxRevision int64
		err := tx.Model(&models.Snapshot{}).
			Where("timeline_id = ?", t.ID).
			Select("COALESCE(MAX(revision), 0)").
			Scan(&maxRevision).Error
		if err != nil {
			return fmt.Errorf("allocating revision: %w", err)
		}

		snapshotRow = models.Snapshot{
			TimelineID:  t.ID,
			Revision:    maxRevision + 1,
			Name:        name,
			Description: description,
			Pinned:      pinned,
		}
		if err := tx.Create(&snapshotRow).Error; err != nil {
			return fmt.Errorf("inserting snapshot row: %w", err)
		}

		for _, path := range paths {
			if err := t.commitPath(tx, chunker, workRoot, path, snapshotRow.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &Snapshot{row: snapshotRow, repo: t.repo}, nil
}

func (t *Timeline) commitPath(tx *gorm.DB, chunker chunk.Chunker, workRoot, relPath string, snapshotID uint) error {
	absPath := filepath.Join(workRoot, relPath)

	rel, err := filepath.Rel(workRoot, absPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("%w: %s", ErrNoSuchFile, relPath)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNoSuchFile, relPath)
		}
		return fmt.Errorf("stat %s: %w", relPath, err)
	}

	versionRow := models.Version{
		SnapshotID:   snapshotID,
		Path:         relPath,
		LastModified: info.ModTime(),
		Permissions:  uint32(info.Mode().Perm()),
		Size:         info.Size(),
	}

	var ordinal int64
	hasher := sha256.New()

	err = withSharedLock(absPath, func(f *os.File) error {
		return chunker.Split(io.TeeReader(f, hasher), func(c chunk.Chunk) error {
			sum, err := t.repo.Blocks.Put(c.Data)
			if err != nil {
				return fmt.Errorf("storing chunk %d of %s: %w", ordinal, relPath, err)
			}

			ref := models.ChunkReference{
				Ordinal:       ordinal,
				BlockChecksum: sum.String(),
			}
			ordinal++
			// VersionID is filled in below once versionRow has an ID; stash
			// references and flush after Create so the foreign key is known.
			versionRow.ChunkReferences = append(versionRow.ChunkReferences, ref)
			return nil
		})
	})
	if err != nil {
		return err
	}

	var sum [checksum.Size]byte
	copy(sum[:], hasher.Sum(nil))
	versionRow.ContentChecksum = checksum.Checksum(sum).String()

	if err := tx.Create(&versionRow).Error; err != nil {
		return fmt.Errorf("inserting version row for %s: %w", relPath, err)
	}

	return nil
}

// RemoveSnapshot deletes the snapshot at revision and cascades to its
// versions and their chunk references. Orphaned blocks are reclaimed lazily
// by a later blockstore.Sweep, not here.
func (t *Timeline) RemoveSnapshot(revision int64) error {
	res := t.repo.DB().Where("timeline_id = ? AND revision = ?", t.ID, revision).Delete(&models.Snapshot{})
	if res.Error != nil {
		return fmt.Errorf("timeline: removing snapshot: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrSnapshotNotFound
	}
	return nil
}

// Snapshots returns every snapshot in the timeline, newest revision first.
func (t *Timeline) Snapshots() ([]*Snapshot, error) {
	var rows []models.Snapshot
	err := t.repo.DB().
		Where("timeline_id = ?", t.ID).
		Order("revision DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("timeline: listing snapshots: %w", err)
	}

	snapshots := make([]*Snapshot, len(rows))
	for i, row := range rows {
		snapshots[i] = &Snapshot{row: row, repo: t.repo}
	}
	return snapshots, nil
}

// ListVersions returns every version of path across all snapshots in the
// timeline, newest revision first.
func (t *Timeline) ListVersions(path string) ([]*Version, error) {
	return queryVersionsWithSnapshot(t.repo,
		"snapshot.timeline_id = ? AND version.path = ?", []any{t.ID, path},
		"snapshot.revision DESC")
}

// Paths returns the union of every path that has ever had a version in the
// timeline.
func (t *Timeline) Paths() ([]string, error) {
	var paths []string
	err := t.repo.DB().
		Model(&models.Version{}).
		Joins("JOIN snapshot ON snapshot.id = version.snapshot_id").
		Where("snapshot.timeline_id = ?", t.ID).
		Distinct("version.path").
		Pluck("version.path", &paths).Error
	if err != nil {
		return nil, fmt.Errorf("timeline: listing paths: %w", err)
	}
	return paths, nil
}

// LatestRevision returns the highest revision number committed to the
// timeline, or 0 if it has no snapshots yet.
func (t *Timeline) LatestRevision() (int64, error) {
	var revision int64
	err := t.repo.DB().Model(&models.Snapshot{}).
		Where("timeline_id = ?", t.ID).
		Select("COALESCE(MAX(revision), 0)").
		Scan(&revision).Error
	if err != nil {
		return 0, fmt.Errorf("timeline: finding latest revision: %w", err)
	}
	return revision, nil
}

// Snapshot loads the snapshot with the given primary key, for callers (such
// as pkg/cleanup) that already know a version's SnapshotID and need to act
// on the snapshot itself, e.g. DeleteIfEmpty.
func (t *Timeline) Snapshot(id uint) (*Snapshot, error) {
	var row models.Snapshot
	if err := t.repo.DB().First(&row, id).Error; err != nil {
		return nil, fmt.Errorf("timeline: loading snapshot %d: %w", id, err)
	}
	return &Snapshot{row: row, repo: t.repo}, nil
}

// Clean applies every cleanup policy attached to the timeline to the given
// paths (or every known path, if empty). The actual retention algorithm
// lives in pkg/cleanup; Clean is the integration point spec §4.8's periodic
// job calls.
func (t *Timeline) Clean(pathsToClean []string, apply CleanFunc) error {
	if len(pathsToClean) == 0 {
		all, err := t.Paths()
		if err != nil {
			return err
		}
		pathsToClean = all
	}

	var policies []models.CleanupPolicy
	err := t.repo.DB().
		Joins("JOIN timeline_cleanup_policies tcp ON tcp.cleanup_policy_id = cleanup_policy.id").
		Where("tcp.timeline_id = ?", t.ID).
		Find(&policies).Error
	if err != nil {
		return fmt.Errorf("timeline: loading cleanup policies: %w", err)
	}
	if len(policies) == 0 {
		return nil
	}

	for _, path := range pathsToClean {
		versions, err := t.ListVersions(path)
		if err != nil {
			return err
		}
		if err := apply(t, path, policies, versions); err != nil {
			return err
		}
	}

	_, err = t.repo.Blocks.Sweep()
	if err != nil {
		return fmt.Errorf("timeline: sweeping block store: %w", err)
	}
	return nil
}

// CleanFunc applies cleanup policies to one path's versions, deleting
// whichever Version handles the retention algorithm decides to drop.
// pkg/cleanup supplies the concrete implementation; it is injected here to
// avoid an import cycle between pkg/timeline and pkg/cleanup.
type CleanFunc func(t *Timeline, path string, policies []models.CleanupPolicy, versions []*Version) error
