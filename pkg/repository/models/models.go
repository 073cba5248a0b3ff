// Package models defines the GORM-managed schema of a repository's
// manifest.db, matching spec §6's table list exactly.
package models

import "time"

// AllModels returns every model for gorm.DB.AutoMigrate.
func AllModels() []any {
	return []any{
		&Timeline{},
		&CleanupPolicy{},
		&TimelineCleanupPolicy{},
		&Snapshot{},
		&Version{},
		&Block{},
		&ChunkReference{},
	}
}

// Timeline is an independent, named sequence of snapshots.
type Timeline struct {
	ID        string    `gorm:"primaryKey;size:32" json:"id"`
	Name      string    `gorm:"size:255" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	CleanupPolicies []CleanupPolicy `gorm:"many2many:timeline_cleanup_policies;" json:"cleanup_policies,omitempty"`
	Snapshots       []Snapshot      `gorm:"foreignKey:TimelineID;constraint:OnDelete:CASCADE" json:"snapshots,omitempty"`
}

// TableName returns the table name for Timeline.
func (Timeline) TableName() string { return "timeline" }

// CleanupPolicy is a named retention rule attachable to any number of
// timelines (spec §4.5).
type CleanupPolicy struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	MinInterval int64  `gorm:"column:min_interval_ms;not null" json:"min_interval_ms"`
	TimeFrame   int64  `gorm:"column:time_frame_ms;not null" json:"time_frame_ms"`
	MaxVersions int64  `gorm:"column:max_versions;not null" json:"max_versions"`
	Description string `gorm:"size:512" json:"description"`

	Timelines []Timeline `gorm:"many2many:timeline_cleanup_policies;" json:"-"`
}

// TableName returns the table name for CleanupPolicy.
func (CleanupPolicy) TableName() string { return "cleanup_policy" }

// TimelineCleanupPolicy is the join table between timelines and the
// cleanup policies attached to them. It is managed by GORM's many2many
// association but declared explicitly so AutoMigrate gives it the same
// cascade-on-delete behavior as every other foreign key in the schema.
type TimelineCleanupPolicy struct {
	TimelineID      string `gorm:"primaryKey;size:32" json:"timeline_id"`
	CleanupPolicyID uint   `gorm:"primaryKey" json:"cleanup_policy_id"`
}

// TableName returns the table name for TimelineCleanupPolicy.
func (TimelineCleanupPolicy) TableName() string { return "timeline_cleanup_policies" }

// Snapshot is one committed point in a timeline: a numbered revision of the
// whole work directory tree.
type Snapshot struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	TimelineID  string    `gorm:"size:32;not null;uniqueIndex:idx_snapshot_timeline_revision,priority:1" json:"timeline_id"`
	Revision    int64     `gorm:"not null;uniqueIndex:idx_snapshot_timeline_revision,priority:2" json:"revision"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	Name        string    `gorm:"size:255" json:"name"`
	Description string    `gorm:"size:1024" json:"description"`
	Pinned      bool      `gorm:"default:false" json:"pinned"`

	Versions []Version `gorm:"foreignKey:SnapshotID;constraint:OnDelete:CASCADE" json:"versions,omitempty"`
}

// TableName returns the table name for Snapshot.
func (Snapshot) TableName() string { return "snapshot" }

// Version is the state of a single path as of a snapshot: either its own
// content (a fresh version) or a pointer carried forward from an earlier
// snapshot (spec §4.4's "cumulative" read).
type Version struct {
	ID               uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	SnapshotID       uint      `gorm:"not null;index" json:"snapshot_id"`
	Path             string    `gorm:"size:4096;not null;index" json:"path"`
	LastModified     time.Time `json:"last_modified"`
	Permissions      uint32    `json:"permissions"`
	Size             int64     `json:"size"`
	ContentChecksum  string    `gorm:"size:64" json:"content_checksum"`

	ChunkReferences []ChunkReference `gorm:"foreignKey:VersionID;constraint:OnDelete:CASCADE" json:"chunk_references,omitempty"`
}

// TableName returns the table name for Version.
func (Version) TableName() string { return "version" }

// Block is a catalog row for one content-addressed block in blobs/.
// RefCount is not maintained by the repository store: rows keep its default
// of 0. Sweep decides whether a block is referenced from the chunk_reference
// rows instead.
type Block struct {
	Checksum string `gorm:"primaryKey;size:64" json:"checksum"`
	Length   int64  `gorm:"not null" json:"length"`
	RefCount int64  `gorm:"not null;default:0" json:"ref_count"`
}

// TableName returns the table name for Block.
func (Block) TableName() string { return "block" }

// ChunkReference is one entry in the ordered chunk-to-block mapping of a
// version's content.
type ChunkReference struct {
	VersionID      uint   `gorm:"primaryKey;uniqueIndex:idx_chunk_reference_version_ordinal,priority:1" json:"version_id"`
	Ordinal        int64  `gorm:"primaryKey;uniqueIndex:idx_chunk_reference_version_ordinal,priority:2" json:"ordinal"`
	BlockChecksum  string `gorm:"size:64;not null;index" json:"block_checksum"`
}

// TableName returns the table name for ChunkReference.
func (ChunkReference) TableName() string { return "chunk_reference" }
