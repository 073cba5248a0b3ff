package repoconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/reversion-fs/reversion/internal/bytesize"
)

func TestPropertyConvertScenario(t *testing.T) {
	ps := NewPropertySet()
	ps.Declare("test", TypeInt, 0)

	if err := ps.Set("test", "100"); err != nil {
		t.Fatalf("Set(100): %v", err)
	}
	if got := ps.Int("test"); got != 100 {
		t.Fatalf("Int() = %d, want 100", got)
	}

	err := ps.Set("test", "invalid value")
	if err == nil {
		t.Fatal("expected error setting non-numeric text on an int property")
	}
	convErr, ok := err.(*ValueConvertError)
	if !ok {
		t.Fatalf("expected *ValueConvertError, got %T: %v", err, err)
	}
	if convErr.Property != "test" || convErr.Value != "invalid value" {
		t.Fatalf("unexpected error fields: %+v", convErr)
	}

	// A failed Set must not disturb the previously stored value.
	if got := ps.Int("test"); got != 100 {
		t.Fatalf("Int() after failed Set = %d, want unchanged 100", got)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := Default()
	if cfg.HashFunc != "SHA-256" {
		t.Fatalf("HashFunc = %q, want SHA-256", cfg.HashFunc)
	}
	if cfg.BlockSize != noSplitBlockSize {
		t.Fatalf("BlockSize = %d, want %d", cfg.BlockSize, noSplitBlockSize)
	}
	if cfg.Chunker != nil {
		t.Fatalf("Chunker = %+v, want nil by default", cfg.Chunker)
	}
}

func TestConfigRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	cfg := Default()
	cfg.Chunker = &Chunker{Kind: ChunkerKindContentDefined, Bits: 13}

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if loaded.HashFunc != cfg.HashFunc || loaded.BlockSize != cfg.BlockSize {
		t.Fatalf("round-tripped scalar fields differ: got %+v, want %+v", loaded, cfg)
	}
	if loaded.Chunker == nil || *loaded.Chunker != *cfg.Chunker {
		t.Fatalf("round-tripped chunker = %+v, want %+v", loaded.Chunker, cfg.Chunker)
	}
}

func TestConfigRoundTripsMaxDiskUsage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	cfg := Default()
	cfg.Chunker = &Chunker{Kind: ChunkerKindFixed, Size: 4096}
	quota := bytesize.GiB * 10
	cfg.MaxDiskUsage = &quota

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if loaded.MaxDiskUsage == nil || *loaded.MaxDiskUsage != quota {
		t.Fatalf("round-tripped MaxDiskUsage = %v, want %v", loaded.MaxDiskUsage, quota)
	}
}

func TestConfigWithoutMaxDiskUsageRoundTripsAsNil(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	cfg := Default()
	cfg.Chunker = &Chunker{Kind: ChunkerKindFixed, Size: 4096}

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if loaded.MaxDiskUsage != nil {
		t.Fatalf("MaxDiskUsage = %v, want nil when never set", loaded.MaxDiskUsage)
	}
}

func TestConfigPreservesUnknownKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	raw := []byte(`{
		"hashFunc": "SHA-256",
		"blockSize": 9223372036854775807,
		"chunker": {"kind": "fixed", "size": 4096},
		"futureFeatureFlag": true,
		"label": "example"
	}`)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("os.WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Extra["futureFeatureFlag"] != true {
		t.Fatalf("Extra[futureFeatureFlag] = %v, want true", cfg.Extra["futureFeatureFlag"])
	}
	if cfg.Extra["label"] != "example" {
		t.Fatalf("Extra[label] = %v, want example", cfg.Extra["label"])
	}

	outPath := filepath.Join(dir, "config2.json")
	if err := Save(outPath, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	reloaded, err := Load(outPath)
	if err != nil {
		t.Fatalf("Load(reloaded): %v", err)
	}
	if reloaded.Extra["futureFeatureFlag"] != true || reloaded.Extra["label"] != "example" {
		t.Fatalf("unknown keys not preserved across rewrite: %+v", reloaded.Extra)
	}
}

func TestNewChunkerRejectsBareBlockSize(t *testing.T) {
	cfg := Default()
	cfg.BlockSize = 4096
	// No Chunker set: this is the legacy-ambiguous shape that must be
	// rejected rather than silently interpreted as fixed-size chunking.

	_, err := NewChunker(cfg)
	if err == nil {
		t.Fatal("expected error for config with bare blockSize and no chunker kind")
	}
	if _, ok := err.(*ValueConvertError); !ok {
		t.Fatalf("expected *ValueConvertError, got %T: %v", err, err)
	}
}

func TestNewChunkerFixed(t *testing.T) {
	cfg := Default()
	cfg.Chunker = &Chunker{Kind: ChunkerKindFixed, Size: 1024}

	if _, err := NewChunker(cfg); err != nil {
		t.Fatalf("NewChunker: %v", err)
	}
}

func TestNewChunkerContentDefinedRejectsInvalidBits(t *testing.T) {
	cfg := Default()
	cfg.Chunker = &Chunker{Kind: ChunkerKindContentDefined, Bits: 0}

	_, err := NewChunker(cfg)
	if err == nil {
		t.Fatal("expected error for bits=0")
	}
}

func TestNewChunkerRejectsUnknownKind(t *testing.T) {
	cfg := Default()
	cfg.Chunker = &Chunker{Kind: "rabin"}

	_, err := NewChunker(cfg)
	if err == nil {
		t.Fatal("expected error for unknown chunker kind")
	}
}
