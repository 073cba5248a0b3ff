// Package repoconfig implements the repository's config.json document: an
// enumerated bag of named, typed properties (spec §4.3) plus the structured
// chunker selection that resolves the chunker ambiguity named in spec §9.
package repoconfig

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/reversion-fs/reversion/internal/bytesize"
	"github.com/reversion-fs/reversion/pkg/chunk"
)

const (
	// ChunkerKindFixed selects FixedSizeChunker.
	ChunkerKindFixed = "fixed"
	// ChunkerKindContentDefined selects ContentDefinedChunker.
	ChunkerKindContentDefined = "content-defined"
)

// DefaultHashFunc is the only hash function Reversion currently supports.
const DefaultHashFunc = "SHA-256"

// noSplitBlockSize is spec §4.3's default blockSize of 2^63-1, meaning "do
// not split" when no chunker is configured.
const noSplitBlockSize int64 = math.MaxInt64

// Chunker is the structured chunker selection resolving the Open Question in
// spec §9: a config.json must name exactly one chunker kind and its
// parameter, never a bare blockSize integer.
type Chunker struct {
	Kind string `json:"kind"`
	Size int    `json:"size,omitempty"`
	Bits uint   `json:"bits,omitempty"`
}

// Config is the parsed form of a repository's config.json. Unknown keys
// encountered on Load are preserved in Extra and rewritten verbatim by Save,
// per spec §6 ("Unknown keys are preserved on read and rewritten on write").
type Config struct {
	HashFunc  string         `json:"hashFunc"`
	BlockSize int64          `json:"blockSize"`
	Chunker   *Chunker       `json:"chunker,omitempty"`
	Extra     map[string]any `json:"-"`

	// MaxDiskUsage caps the block store's logical size (sum of catalogued
	// block lengths), parsed from human-readable forms like "10Gi" or
	// "500MB". Nil means unlimited.
	MaxDiskUsage *bytesize.ByteSize `json:"maxDiskUsage,omitempty"`
}

// Default returns a Config with spec §4.3's typed defaults: SHA-256 hashing
// and a blockSize of 2^63-1 ("do not split"), with no chunker selected.
func Default() *Config {
	return &Config{
		HashFunc:  DefaultHashFunc,
		BlockSize: noSplitBlockSize,
	}
}

// Load reads and parses a config.json file, preserving unrecognized keys.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("repoconfig: reading %s: %w", path, err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("repoconfig: parsing %s: %w", path, err)
	}

	cfg := Default()
	extra := make(map[string]any)

	for key, value := range raw {
		switch key {
		case "hashFunc":
			if err := json.Unmarshal(value, &cfg.HashFunc); err != nil {
				return nil, &ValueConvertError{Property: "hashFunc", Value: string(value), Reason: "not a string"}
			}
		case "blockSize":
			if err := json.Unmarshal(value, &cfg.BlockSize); err != nil {
				return nil, &ValueConvertError{Property: "blockSize", Value: string(value), Reason: "not an integer"}
			}
		case "chunker":
			var c Chunker
			if err := json.Unmarshal(value, &c); err != nil {
				return nil, &ValueConvertError{Property: "chunker", Value: string(value), Reason: "not a structured chunker object"}
			}
			cfg.Chunker = &c
		case "maxDiskUsage":
			var size bytesize.ByteSize
			if err := json.Unmarshal(value, &size); err != nil {
				return nil, &ValueConvertError{Property: "maxDiskUsage", Value: string(value), Reason: "not a byte size string"}
			}
			cfg.MaxDiskUsage = &size
		default:
			var v any
			if err := json.Unmarshal(value, &v); err != nil {
				return nil, &ValueConvertError{Property: key, Value: string(value), Reason: "invalid JSON"}
			}
			extra[key] = v
		}
	}
	cfg.Extra = extra

	return cfg, nil
}

// Save writes cfg to path as pretty-printed JSON, rewriting any unknown keys
// recorded in Extra alongside the known ones.
func Save(path string, cfg *Config) error {
	out := make(map[string]any, len(cfg.Extra)+3)
	for k, v := range cfg.Extra {
		out[k] = v
	}
	out["hashFunc"] = cfg.HashFunc
	out["blockSize"] = cfg.BlockSize
	if cfg.Chunker != nil {
		out["chunker"] = cfg.Chunker
	}
	if cfg.MaxDiskUsage != nil {
		out["maxDiskUsage"] = cfg.MaxDiskUsage.String()
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("repoconfig: marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("repoconfig: writing %s: %w", path, err)
	}
	return nil
}

// NewChunker builds the chunk.Chunker described by cfg.Chunker. It requires
// an explicit, structured chunker selection: a bare legacy blockSize integer
// with no chunker object is rejected with ValueConvertError rather than
// guessed at, resolving spec §9's chunker ambiguity.
func NewChunker(cfg *Config) (chunk.Chunker, error) {
	if cfg.Chunker == nil {
		return nil, &ValueConvertError{
			Property: "chunker",
			Value:    "<missing>",
			Reason:   "repository config must declare an explicit chunker {\"kind\":...} — a bare blockSize integer is ambiguous",
		}
	}

	switch cfg.Chunker.Kind {
	case ChunkerKindFixed:
		if cfg.Chunker.Size <= 0 {
			return nil, &ValueConvertError{Property: "chunker.size", Value: fmt.Sprint(cfg.Chunker.Size), Reason: "must be a positive integer"}
		}
		return chunk.FixedSize(cfg.Chunker.Size), nil
	case ChunkerKindContentDefined:
		if cfg.Chunker.Bits == 0 || cfg.Chunker.Bits >= 32 {
			return nil, &ValueConvertError{Property: "chunker.bits", Value: fmt.Sprint(cfg.Chunker.Bits), Reason: "must satisfy 0 < bits < 32"}
		}
		return chunk.ContentDefined(cfg.Chunker.Bits), nil
	default:
		return nil, &ValueConvertError{Property: "chunker.kind", Value: cfg.Chunker.Kind, Reason: "must be \"fixed\" or \"content-defined\""}
	}
}
