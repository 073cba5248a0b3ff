package blockstore

import (
	"os"
	"sync"
	"testing"

	"github.com/reversion-fs/reversion/pkg/checksum"
)

// fakeCatalog is an in-memory stand-in for the repository's "block" and
// "chunk_reference" tables.
type fakeCatalog struct {
	mu         sync.Mutex
	blocks     map[checksum.Checksum]int64
	referenced map[checksum.Checksum]struct{}
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		blocks:     make(map[checksum.Checksum]int64),
		referenced: make(map[checksum.Checksum]struct{}),
	}
}

func (c *fakeCatalog) InsertBlock(sum checksum.Checksum, length int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.blocks[sum] = length
	return nil
}

func (c *fakeCatalog) DeleteBlock(sum checksum.Checksum) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.blocks, sum)
	return nil
}

func (c *fakeCatalog) BlockExists(sum checksum.Checksum) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.blocks[sum]
	return ok, nil
}

func (c *fakeCatalog) TotalSize() (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var total int64
	for _, length := range c.blocks {
		total += length
	}
	return total, nil
}

func (c *fakeCatalog) ReferencedChecksums() (map[checksum.Checksum]struct{}, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[checksum.Checksum]struct{}, len(c.referenced))
	for k := range c.referenced {
		out[k] = struct{}{}
	}
	return out, nil
}

func (c *fakeCatalog) reference(sum checksum.Checksum) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.referenced[sum] = struct{}{}
}

func TestPutGetRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cat := newFakeCatalog()
	s := New(dir, cat)

	sum, err := s.Put([]byte("hello world"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := s.Get(sum)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "hello world" {
		t.Fatalf("Get = %q, want %q", got, "hello world")
	}
}

func TestPutIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	cat := newFakeCatalog()
	s := New(dir, cat)

	data := []byte("duplicate content")
	sum1, err := s.Put(data)
	if err != nil {
		t.Fatalf("first Put: %v", err)
	}
	sum2, err := s.Put(data)
	if err != nil {
		t.Fatalf("second Put: %v", err)
	}
	if sum1 != sum2 {
		t.Fatalf("checksums differ across idempotent Put: %s vs %s", sum1, sum2)
	}
	if len(cat.blocks) != 1 {
		t.Fatalf("expected exactly one catalog row, got %d", len(cat.blocks))
	}
}

func TestGetMissingBlock(t *testing.T) {
	dir := t.TempDir()
	s := New(dir, newFakeCatalog())

	_, err := s.Get(checksum.Sum([]byte("never written")))
	if err != ErrMissingBlock {
		t.Fatalf("Get on missing checksum = %v, want ErrMissingBlock", err)
	}
}

func TestRemoveDeletesCatalogRowBeforeFile(t *testing.T) {
	dir := t.TempDir()
	cat := newFakeCatalog()
	s := New(dir, cat)

	sum, err := s.Put([]byte("to be removed"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}

	if err := s.Remove(sum); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	if _, ok := cat.blocks[sum]; ok {
		t.Fatal("catalog row still present after Remove")
	}
	if _, err := s.Get(sum); err != ErrMissingBlock {
		t.Fatalf("Get after Remove = %v, want ErrMissingBlock", err)
	}
}

func TestListEnumeratesOnDiskRegardlessOfCatalog(t *testing.T) {
	dir := t.TempDir()
	cat := newFakeCatalog()
	s := New(dir, cat)

	sum, err := s.Put([]byte("orphan candidate"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	// Simulate an orphan: catalog row gone, file still on disk.
	delete(cat.blocks, sum)

	list, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	found := false
	for _, got := range list {
		if got == sum {
			found = true
		}
	}
	if !found {
		t.Fatal("List did not report the orphaned on-disk block")
	}
}

func TestSweepRemovesUnreferencedBlocks(t *testing.T) {
	dir := t.TempDir()
	cat := newFakeCatalog()
	s := New(dir, cat)

	kept, err := s.Put([]byte("still referenced"))
	if err != nil {
		t.Fatalf("Put kept: %v", err)
	}
	orphan, err := s.Put([]byte("no longer referenced"))
	if err != nil {
		t.Fatalf("Put orphan: %v", err)
	}
	cat.reference(kept)

	removed, err := s.Sweep()
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if len(removed) != 1 || removed[0] != orphan {
		t.Fatalf("Sweep removed %v, want [%s]", removed, orphan)
	}

	if _, err := s.List(); err != nil {
		t.Fatalf("List after Sweep: %v", err)
	}
	list, _ := s.List()
	for _, sum := range list {
		if sum == orphan {
			t.Fatal("orphan block still present after Sweep")
		}
	}
}

func TestPutRewritesCorruptedOnDiskContent(t *testing.T) {
	dir := t.TempDir()
	cat := newFakeCatalog()
	s := New(dir, cat)

	data := []byte("the original content")
	sum, err := s.Put(data)
	if err != nil {
		t.Fatalf("first Put: %v", err)
	}

	// Simulate on-disk corruption: overwrite the block's bytes in place
	// without touching the catalog row, as a damaged disk would.
	if err := os.WriteFile(s.blobPath(sum), []byte("random garbage, wrong length"), 0o644); err != nil {
		t.Fatalf("corrupting block file: %v", err)
	}

	if _, err := s.Put(data); err != nil {
		t.Fatalf("Put over corrupted block: %v", err)
	}

	got, err := s.Get(sum)
	if err != nil {
		t.Fatalf("Get after repair Put: %v", err)
	}
	if string(got) != string(data) {
		t.Fatalf("Get after repair Put = %q, want %q", got, data)
	}
	if len(cat.blocks) != 1 {
		t.Fatalf("expected exactly one catalog row after repair Put, got %d", len(cat.blocks))
	}
}

func TestPutRejectsNewBlockPastDiskQuota(t *testing.T) {
	dir := t.TempDir()
	cat := newFakeCatalog()
	s := New(dir, cat, WithMaxDiskUsage(16))

	if _, err := s.Put([]byte("twelve bytes")); err != nil {
		t.Fatalf("Put under quota: %v", err)
	}

	if _, err := s.Put([]byte("this one pushes well past the cap")); err != ErrDiskQuotaExceeded {
		t.Fatalf("Put over quota = %v, want ErrDiskQuotaExceeded", err)
	}
}

func TestPutOverQuotaStillAllowsRepairingExistingBlock(t *testing.T) {
	dir := t.TempDir()
	cat := newFakeCatalog()
	s := New(dir, cat, WithMaxDiskUsage(12))

	data := []byte("twelve bytes")
	sum, err := s.Put(data)
	if err != nil {
		t.Fatalf("first Put: %v", err)
	}

	if err := os.WriteFile(s.blobPath(sum), []byte("corrupted!!!"), 0o644); err != nil {
		t.Fatalf("corrupting block file: %v", err)
	}

	// The store is already exactly at quota; rewriting the same catalogued
	// block must still succeed since it does not grow the logical size.
	if _, err := s.Put(data); err != nil {
		t.Fatalf("Put repairing existing block at quota: %v", err)
	}
}

func TestOperationsFailAfterClose(t *testing.T) {
	dir := t.TempDir()
	s := New(dir, newFakeCatalog())
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if _, err := s.Put([]byte("x")); err != ErrStoreClosed {
		t.Fatalf("Put after Close = %v, want ErrStoreClosed", err)
	}
}
