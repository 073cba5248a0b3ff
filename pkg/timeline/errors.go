package timeline

import "errors"

var (
	// ErrNoSuchFile is returned by CreateSnapshot when one of the input
	// paths cannot be stat'd.
	ErrNoSuchFile = errors.New("timeline: no such file")

	// ErrSnapshotNotFound is returned by RemoveSnapshot for an unknown
	// revision.
	ErrSnapshotNotFound = errors.New("timeline: snapshot not found")

	// ErrVersionNotFound is returned by Snapshot.RemoveVersion for a path
	// with no version in that snapshot.
	ErrVersionNotFound = errors.New("timeline: version not found")

	// ErrTimelineNotFound is returned by Rename/Remove for an unknown
	// timeline id.
	ErrTimelineNotFound = errors.New("timeline: timeline not found")
)
