package timeline

import (
	"fmt"
	"time"

	"github.com/reversion-fs/reversion/pkg/repository"
	"github.com/reversion-fs/reversion/pkg/repository/models"
)

// Snapshot is one committed revision of a timeline.
type Snapshot struct {
	row  models.Snapshot
	repo *repository.Repository
}

// ID returns the snapshot's primary key.
func (s *Snapshot) ID() uint { return s.row.ID }

// Revision returns the snapshot's revision number within its timeline.
func (s *Snapshot) Revision() int64 { return s.row.Revision }

// Pinned reports whether the snapshot is pinned against cleanup.
func (s *Snapshot) Pinned() bool { return s.row.Pinned }

// Name returns the snapshot's tag name (spec §9's "tagging is an overlay
// on snapshot name/description/pinned").
func (s *Snapshot) Name() string { return s.row.Name }

// Description returns the snapshot's tag description.
func (s *Snapshot) Description() string { return s.row.Description }

// CreatedAt returns when the snapshot was committed.
func (s *Snapshot) CreatedAt() time.Time { return s.row.CreatedAt }

// SetTag updates the snapshot's name, description, and pinned state, the
// fields a "tag" overlays onto a snapshot.
func (s *Snapshot) SetTag(name, description string, pinned bool) error {
	s.row.Name = name
	s.row.Description = description
	s.row.Pinned = pinned
	if err := s.repo.DB().Save(&s.row).Error; err != nil {
		return fmt.Errorf("timeline: updating snapshot tag: %w", err)
	}
	return nil
}

// Versions returns a mapping path → Version for every version recorded
// directly in this snapshot (not carried forward from an earlier one).
func (s *Snapshot) Versions() (map[string]*Version, error) {
	versions, err := queryVersionsWithSnapshot(s.repo, "version.snapshot_id = ?", []any{s.row.ID}, "")
	if err != nil {
		return nil, err
	}

	out := make(map[string]*Version, len(versions))
	for _, v := range versions {
		out[v.Path()] = v
	}
	return out, nil
}

// CumulativeVersions returns, for every path ever present in the timeline
// at or before this snapshot's revision, the newest version at-or-before
// this revision. This is what a point-in-time directory listing needs.
func (s *Snapshot) CumulativeVersions() (map[string]*Version, error) {
	versions, err := queryVersionsWithSnapshot(s.repo,
		"snapshot.timeline_id = ? AND snapshot.revision <= ?", []any{s.row.TimelineID, s.row.Revision},
		"version.path ASC, snapshot.revision DESC")
	if err != nil {
		return nil, err
	}

	out := make(map[string]*Version, len(versions))
	for _, v := range versions {
		// Rows arrive ordered newest-revision-first within each path; keep
		// only the first (newest) one seen for each path.
		if _, seen := out[v.Path()]; seen {
			continue
		}
		out[v.Path()] = v
	}
	return out, nil
}

// RemoveVersion deletes the version at path from this snapshot.
func (s *Snapshot) RemoveVersion(path string) error {
	res := s.repo.DB().Where("snapshot_id = ? AND path = ?", s.row.ID, path).Delete(&models.Version{})
	if res.Error != nil {
		return fmt.Errorf("timeline: removing version %s: %w", path, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrVersionNotFound
	}
	return nil
}

// DeleteIfEmpty deletes the snapshot itself if it has no remaining
// versions, returning whether it was deleted.
func (s *Snapshot) DeleteIfEmpty() (bool, error) {
	var count int64
	if err := s.repo.DB().Model(&models.Version{}).Where("snapshot_id = ?", s.row.ID).Count(&count).Error; err != nil {
		return false, fmt.Errorf("timeline: counting versions: %w", err)
	}
	if count > 0 {
		return false, nil
	}
	if err := s.repo.DB().Delete(&models.Snapshot{}, s.row.ID).Error; err != nil {
		return false, fmt.Errorf("timeline: deleting empty snapshot: %w", err)
	}
	return true, nil
}
