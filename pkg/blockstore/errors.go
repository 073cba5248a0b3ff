package blockstore

import "errors"

var (
	// ErrMissingBlock is returned when get is asked for a checksum that has
	// no catalog row.
	ErrMissingBlock = errors.New("blockstore: missing block")

	// ErrStoreClosed is returned when an operation is attempted on a closed
	// store.
	ErrStoreClosed = errors.New("blockstore: store is closed")

	// ErrDiskQuotaExceeded is returned by Put when writing a new block would
	// push the store's logical size past its configured maximum.
	ErrDiskQuotaExceeded = errors.New("blockstore: disk quota exceeded")
)
