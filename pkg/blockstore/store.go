// Package blockstore implements the repository's content-addressed block
// storage: byte-addressed, deduplicated storage keyed by SHA-256 (spec §4.1).
//
// Each block lives at <repo>/blobs/<first-two-hex>/<full-hex>. A catalog row
// recorded by the collaborating Catalog is the source of truth for whether a
// checksum is part of the logical store; an on-disk file with no catalog row
// is an orphan, tolerated until the next Sweep.
package blockstore

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/reversion-fs/reversion/pkg/checksum"
)

// Catalog is the relational bookkeeping side of the block store, owned by
// the repository's manifest database. Store calls it to keep the on-disk
// blobs and the "block" table (and the chunk reference table Sweep consults)
// in the ordering spec §4.1 prescribes.
type Catalog interface {
	// InsertBlock records that checksum (of the given length) exists in the
	// logical store. Called after the on-disk file is durable.
	InsertBlock(sum checksum.Checksum, length int64) error

	// DeleteBlock removes the catalog row for checksum, if any. Called
	// before the on-disk file is removed.
	DeleteBlock(sum checksum.Checksum) error

	// BlockExists reports whether checksum already has a catalog row.
	BlockExists(sum checksum.Checksum) (bool, error)

	// ReferencedChecksums returns every checksum currently referenced by a
	// chunk reference, for Sweep to compare against the on-disk set.
	ReferencedChecksums() (map[checksum.Checksum]struct{}, error)

	// TotalSize returns the sum of the recorded lengths of every catalogued
	// block, for Store to enforce an optional disk quota against.
	TotalSize() (int64, error)
}

// Store is a filesystem-backed, checksum-addressed block store.
type Store struct {
	mu           sync.RWMutex
	basePath     string
	catalog      Catalog
	closed       bool
	maxDiskUsage int64 // bytes; 0 means unlimited
}

// Option configures a Store at construction time.
type Option func(*Store)

// WithMaxDiskUsage caps the store's logical size (the sum of catalogued
// block lengths) at maxBytes. Put rejects a new block that would push the
// store past the cap with ErrDiskQuotaExceeded; a block already on disk
// that merely needs repair is always allowed through regardless of quota,
// since repair never grows the store's logical size.
func WithMaxDiskUsage(maxBytes int64) Option {
	return func(s *Store) { s.maxDiskUsage = maxBytes }
}

// New returns a Store rooted at basePath (the repository's "blobs"
// directory), backed by catalog for row bookkeeping. basePath must already
// exist; repository creation is responsible for making it.
func New(basePath string, catalog Catalog, opts ...Option) *Store {
	s := &Store{basePath: basePath, catalog: catalog}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// blobPath returns the on-disk path for sum: <basePath>/<first-two-hex>/<full-hex>.
func (s *Store) blobPath(sum checksum.Checksum) string {
	hex := sum.String()
	return filepath.Join(s.basePath, hex[:2], hex)
}

// Put stores data under its SHA-256 checksum, returning the checksum. If the
// checksum is already present on disk and its content actually hashes to
// sum, the write is skipped entirely (idempotent). A path that exists but
// holds the wrong bytes — e.g. a block repair overwriting corruption, or a
// prior partial write — is rewritten via the same staged write (temp file,
// then atomic rename) used for a brand-new block, so that a crash mid-Put
// leaves at worst a harmless orphan file.
func (s *Store) Put(data []byte) (checksum.Checksum, error) {
	sum := checksum.Sum(data)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return checksum.Checksum{}, ErrStoreClosed
	}

	path := s.blobPath(sum)
	matches, err := blockMatches(path, sum)
	if err != nil {
		return checksum.Checksum{}, fmt.Errorf("blockstore: verifying existing block %s: %w", sum, err)
	}
	if matches {
		exists, err := s.catalog.BlockExists(sum)
		if err != nil {
			return checksum.Checksum{}, fmt.Errorf("blockstore: checking catalog for %s: %w", sum, err)
		}
		if exists {
			return sum, nil
		}
		// On-disk file with no catalog row: an orphan from a prior crash.
		// Fall through and re-insert the row; the file is already correct.
		if err := s.catalog.InsertBlock(sum, int64(len(data))); err != nil {
			return checksum.Checksum{}, fmt.Errorf("blockstore: inserting catalog row for %s: %w", sum, err)
		}
		return sum, nil
	}

	if s.maxDiskUsage > 0 {
		exists, err := s.catalog.BlockExists(sum)
		if err != nil {
			return checksum.Checksum{}, fmt.Errorf("blockstore: checking catalog for %s: %w", sum, err)
		}
		// A catalogued block being rewritten (repair of corrupted bytes, or a
		// prior partial write) never grows the store's logical size, so it
		// is exempt from the quota check that applies to brand-new blocks.
		if !exists {
			total, err := s.catalog.TotalSize()
			if err != nil {
				return checksum.Checksum{}, fmt.Errorf("blockstore: computing disk usage: %w", err)
			}
			if total+int64(len(data)) > s.maxDiskUsage {
				return checksum.Checksum{}, ErrDiskQuotaExceeded
			}
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return checksum.Checksum{}, fmt.Errorf("blockstore: creating blob directory: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return checksum.Checksum{}, fmt.Errorf("blockstore: staging block %s: %w", sum, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return checksum.Checksum{}, fmt.Errorf("blockstore: committing block %s: %w", sum, err)
	}

	exists, err := s.catalog.BlockExists(sum)
	if err != nil {
		return checksum.Checksum{}, fmt.Errorf("blockstore: checking catalog for %s: %w", sum, err)
	}
	if !exists {
		if err := s.catalog.InsertBlock(sum, int64(len(data))); err != nil {
			return checksum.Checksum{}, fmt.Errorf("blockstore: inserting catalog row for %s: %w", sum, err)
		}
	}

	return sum, nil
}

// blockMatches reports whether the file at path exists and hashes to sum.
// A missing path, an unreadable path, or a path whose content hashes to
// something else are all reported as false, never as a fatal error.
func blockMatches(path string, sum checksum.Checksum) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return checksum.Sum(data) == sum, nil
}

// Get returns the bytes stored under sum. It fails with ErrMissingBlock if
// the checksum has no catalog row, regardless of whether an orphan file
// happens to exist on disk.
func (s *Store) Get(sum checksum.Checksum) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	exists, err := s.catalog.BlockExists(sum)
	if err != nil {
		return nil, fmt.Errorf("blockstore: checking catalog for %s: %w", sum, err)
	}
	if !exists {
		return nil, ErrMissingBlock
	}

	data, err := os.ReadFile(s.blobPath(sum))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrMissingBlock
		}
		return nil, fmt.Errorf("blockstore: reading block %s: %w", sum, err)
	}
	return data, nil
}

// Reader returns a stream over the bytes stored under sum, for callers that
// want to avoid buffering the whole block. The caller must Close it.
func (s *Store) Reader(sum checksum.Checksum) (io.ReadCloser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	exists, err := s.catalog.BlockExists(sum)
	if err != nil {
		return nil, fmt.Errorf("blockstore: checking catalog for %s: %w", sum, err)
	}
	if !exists {
		return nil, ErrMissingBlock
	}

	f, err := os.Open(s.blobPath(sum))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrMissingBlock
		}
		return nil, fmt.Errorf("blockstore: opening block %s: %w", sum, err)
	}
	return f, nil
}

// Remove deletes sum from the logical store. The catalog row is deleted
// first so that the catalog never references a file that might no longer
// exist; a crash between the two steps leaves at worst an orphan file,
// never a dangling row, and Sweep reclaims it later.
func (s *Store) Remove(sum checksum.Checksum) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	if err := s.catalog.DeleteBlock(sum); err != nil {
		return fmt.Errorf("blockstore: deleting catalog row for %s: %w", sum, err)
	}

	if err := os.Remove(s.blobPath(sum)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("blockstore: deleting block %s: %w", sum, err)
	}
	return nil
}

// List returns every checksum with a file on disk, in sorted order,
// regardless of catalog state. Intended for diagnostics and Sweep.
func (s *Store) List() ([]checksum.Checksum, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	var sums []checksum.Checksum
	err := filepath.WalkDir(s.basePath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() || strings.HasSuffix(path, ".tmp") {
			return nil
		}
		sum, parseErr := checksum.Parse(filepath.Base(path))
		if parseErr != nil {
			// Not a block file; ignore anything that doesn't parse as a
			// checksum so stray files don't break enumeration.
			return nil
		}
		sums = append(sums, sum)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("blockstore: listing blobs: %w", err)
	}

	sort.Slice(sums, func(i, j int) bool { return sums[i].String() < sums[j].String() })
	return sums, nil
}

// Sweep removes every on-disk checksum that is not referenced by any chunk
// reference, reclaiming orphans left by crashes during Put or by versions
// whose chunk references have since been removed. It returns the checksums
// it removed.
func (s *Store) Sweep() ([]checksum.Checksum, error) {
	onDisk, err := s.List()
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	referenced, err := s.catalog.ReferencedChecksums()
	s.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("blockstore: loading referenced checksums: %w", err)
	}

	var removed []checksum.Checksum
	for _, sum := range onDisk {
		if _, ok := referenced[sum]; ok {
			continue
		}

		s.mu.Lock()
		closed := s.closed
		if !closed {
			err = os.Remove(s.blobPath(sum))
		}
		s.mu.Unlock()
		if closed {
			return removed, ErrStoreClosed
		}
		if err != nil && !os.IsNotExist(err) {
			return removed, fmt.Errorf("blockstore: sweeping block %s: %w", sum, err)
		}
		removed = append(removed, sum)
	}

	return removed, nil
}

// Close marks the store closed; subsequent operations fail with
// ErrStoreClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
