package repository

import "errors"

var (
	// ErrAlreadyExists is returned by Create when path already exists.
	ErrAlreadyExists = errors.New("repository: path already exists")

	// ErrIncompatibleRepository is returned by Open when the on-disk
	// version marker names a format this binary does not understand. No
	// repair actions accompany it: a format mismatch is not something
	// integrity.Verify can fix.
	ErrIncompatibleRepository = errors.New("repository: incompatible repository version")

	// ErrNotARepository is returned by Open/Check when path has no
	// version marker at all.
	ErrNotARepository = errors.New("repository: not a reversion repository")

	// ErrTimelineNotFound is returned when a timeline id has no row.
	ErrTimelineNotFound = errors.New("repository: timeline not found")

	// ErrSnapshotNotFound is returned when a snapshot id has no row.
	ErrSnapshotNotFound = errors.New("repository: snapshot not found")
)
