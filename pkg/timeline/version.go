package timeline

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/reversion-fs/reversion/pkg/checksum"
	"github.com/reversion-fs/reversion/pkg/repository"
	"github.com/reversion-fs/reversion/pkg/repository/models"
)

// Version is one path's recorded state as of a snapshot. createdAt and
// pinned mirror the owning snapshot's fields, carried alongside the version
// row so cleanup can reason about a version without a second query.
type Version struct {
	row       models.Version
	createdAt time.Time
	pinned    bool
	repo      *repository.Repository
}

// Path returns the version's work-root-relative path.
func (v *Version) Path() string { return v.row.Path }

// Size returns the version's recorded content length.
func (v *Version) Size() int64 { return v.row.Size }

// ContentChecksum returns the SHA-256 of the version's whole content.
func (v *Version) ContentChecksum() string { return v.row.ContentChecksum }

// SnapshotID returns the id of the owning snapshot.
func (v *Version) SnapshotID() uint { return v.row.SnapshotID }

// CreatedAt returns the creation time of the owning snapshot, which is
// spec §4.5's "creation time of a version".
func (v *Version) CreatedAt() time.Time { return v.createdAt }

// Pinned reports whether the owning snapshot is pinned against cleanup.
func (v *Version) Pinned() bool { return v.pinned }

// versionWithSnapshot is the row shape returned by queries that join
// version to its owning snapshot, picking up the fields Version caches
// locally (createdAt, pinned) alongside the version columns.
type versionWithSnapshot struct {
	models.Version
	SnapshotCreatedAt time.Time `gorm:"column:snapshot_created_at"`
	SnapshotPinned    bool      `gorm:"column:snapshot_pinned"`
}

// queryVersionsWithSnapshot runs a version/snapshot join query with the
// given WHERE clause and ordering, returning fully populated Version
// handles.
func queryVersionsWithSnapshot(repo *repository.Repository, where string, args []any, order string) ([]*Version, error) {
	var rows []versionWithSnapshot
	q := repo.DB().Table("version").
		Select("version.*, snapshot.created_at AS snapshot_created_at, snapshot.pinned AS snapshot_pinned").
		Joins("JOIN snapshot ON snapshot.id = version.snapshot_id").
		Where(where, args...)
	if order != "" {
		q = q.Order(order)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("timeline: querying versions: %w", err)
	}

	versions := make([]*Version, len(rows))
	for i := range rows {
		versions[i] = &Version{
			row:       rows[i].Version,
			createdAt: rows[i].SnapshotCreatedAt,
			pinned:    rows[i].SnapshotPinned,
			repo:      repo,
		}
	}
	return versions, nil
}

// Delete removes this version's row directly. Unlike Snapshot.RemoveVersion
// (addressed by snapshot+path), Delete addresses the version a caller
// already holds a handle to — the shape pkg/cleanup needs when working
// across versions from many snapshots at once.
func (v *Version) Delete() error {
	if err := v.repo.DB().Delete(&models.Version{}, v.row.ID).Error; err != nil {
		return fmt.Errorf("timeline: deleting version %d: %w", v.row.ID, err)
	}
	return nil
}

// Data returns a reader lazily concatenating the version's chunks in
// order, sourced from the block store.
func (v *Version) Data() (io.Reader, error) {
	var refs []models.ChunkReference
	err := v.repo.DB().
		Where("version_id = ?", v.row.ID).
		Order("ordinal ASC").
		Find(&refs).Error
	if err != nil {
		return nil, fmt.Errorf("timeline: loading chunk references for version %d: %w", v.row.ID, err)
	}

	readers := make([]io.Reader, 0, len(refs))
	for _, ref := range refs {
		sum, err := checksum.Parse(ref.BlockChecksum)
		if err != nil {
			return nil, fmt.Errorf("timeline: parsing block checksum %q: %w", ref.BlockChecksum, err)
		}
		r, err := v.repo.Blocks.Reader(sum)
		if err != nil {
			return nil, fmt.Errorf("timeline: opening block %s: %w", sum, err)
		}
		readers = append(readers, r)
	}
	return io.MultiReader(readers...), nil
}

// Checkout streams the version's bytes to targetPath via a staged write
// (temp file, then atomic rename), restoring lastModified and permissions.
// If overwrite is false and targetPath already exists, it returns false
// without touching anything.
func (v *Version) Checkout(targetPath string, overwrite bool) (bool, error) {
	if !overwrite {
		if _, err := os.Stat(targetPath); err == nil {
			return false, nil
		} else if !os.IsNotExist(err) {
			return false, fmt.Errorf("timeline: checking %s: %w", targetPath, err)
		}
	}

	data, err := v.Data()
	if err != nil {
		return false, err
	}

	if err := os.MkdirAll(filepath.Dir(targetPath), 0o755); err != nil {
		return false, fmt.Errorf("timeline: creating parent directories: %w", err)
	}

	tmpPath := targetPath + ".reversion-tmp"
	tmp, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(v.row.Permissions))
	if err != nil {
		return false, fmt.Errorf("timeline: staging %s: %w", targetPath, err)
	}
	if _, err := io.Copy(tmp, data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return false, fmt.Errorf("timeline: writing %s: %w", targetPath, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return false, fmt.Errorf("timeline: closing %s: %w", targetPath, err)
	}

	if err := os.Rename(tmpPath, targetPath); err != nil {
		os.Remove(tmpPath)
		return false, fmt.Errorf("timeline: committing %s: %w", targetPath, err)
	}

	if err := os.Chmod(targetPath, os.FileMode(v.row.Permissions)); err != nil {
		return false, fmt.Errorf("timeline: restoring permissions on %s: %w", targetPath, err)
	}
	modTime := v.row.LastModified
	if err := os.Chtimes(targetPath, modTime, modTime); err != nil {
		return false, fmt.Errorf("timeline: restoring mtime on %s: %w", targetPath, err)
	}

	return true, nil
}

// IsChanged reports whether the file currently at path has a different
// content checksum than the version.
func (v *Version) IsChanged(path string) (bool, error) {
	var sum [checksum.Size]byte
	err := withSharedLock(path, func(f *os.File) error {
		h := sha256.New()
		if _, err := io.Copy(h, f); err != nil {
			return err
		}
		copy(sum[:], h.Sum(nil))
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("timeline: hashing %s: %w", path, err)
	}

	return checksum.Checksum(sum).String() != v.row.ContentChecksum, nil
}
