package logger

import (
	"log/slog"
)

// Standard field keys for structured logging across the storage engine and
// ingestion pipeline. Use these keys consistently so log lines stay
// queryable across packages.
const (
	// Repository & timeline identity
	KeyRepoPath   = "repo_path"
	KeyTimelineID = "timeline_id"
	KeyRevision   = "revision"
	KeySnapshotID = "snapshot_id"

	// Work directory
	KeyWorkRoot = "work_root"
	KeyRelPath  = "rel_path"

	// Block store
	KeyChecksum  = "checksum"
	KeyBlockSize = "block_size"

	// Operation metadata
	KeyOperation  = "operation"
	KeyDurationMs = "duration_ms"
	KeyError      = "error"
	KeyCount      = "count"
)

// RepoPath returns a slog.Attr for a repository root path.
func RepoPath(p string) slog.Attr {
	return slog.String(KeyRepoPath, p)
}

// TimelineID returns a slog.Attr for a timeline id.
func TimelineID(id string) slog.Attr {
	return slog.String(KeyTimelineID, id)
}

// Revision returns a slog.Attr for a snapshot revision number.
func Revision(rev int64) slog.Attr {
	return slog.Int64(KeyRevision, rev)
}

// SnapshotID returns a slog.Attr for a snapshot id.
func SnapshotID(id string) slog.Attr {
	return slog.String(KeySnapshotID, id)
}

// WorkRoot returns a slog.Attr for a work directory root path.
func WorkRoot(p string) slog.Attr {
	return slog.String(KeyWorkRoot, p)
}

// RelPath returns a slog.Attr for a version's relative path.
func RelPath(p string) slog.Attr {
	return slog.String(KeyRelPath, p)
}

// Checksum returns a slog.Attr for a block/content checksum, hex-encoded.
func Checksum(hex string) slog.Attr {
	return slog.String(KeyChecksum, hex)
}

// BlockSize returns a slog.Attr for a byte length.
func BlockSize(n int64) slog.Attr {
	return slog.Int64(KeyBlockSize, n)
}

// Operation returns a slog.Attr for a sub-operation name.
func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}

// DurationMs returns a slog.Attr for an operation duration in milliseconds.
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}

// Err returns a slog.Attr for an error.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// Count returns a slog.Attr for a generic item count.
func Count(n int) slog.Attr {
	return slog.Int(KeyCount, n)
}
