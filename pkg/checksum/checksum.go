// Package checksum provides the SHA-256 content-identity value type shared
// by the block store, chunker, and timeline packages.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Size is the length in bytes of a Checksum.
const Size = sha256.Size

// Checksum is a 32-byte SHA-256 digest. The zero value is not a valid digest
// of any content and is used as a sentinel by callers that need one.
type Checksum [Size]byte

// Sum computes the Checksum of data.
func Sum(data []byte) Checksum {
	return Checksum(sha256.Sum256(data))
}

// Parse decodes a lowercase or uppercase hex string into a Checksum.
func Parse(s string) (Checksum, error) {
	var c Checksum
	b, err := hex.DecodeString(s)
	if err != nil {
		return c, fmt.Errorf("checksum: invalid hex %q: %w", s, err)
	}
	if len(b) != Size {
		return c, fmt.Errorf("checksum: expected %d bytes, got %d", Size, len(b))
	}
	copy(c[:], b)
	return c, nil
}

// String returns the lowercase hex encoding of c.
func (c Checksum) String() string {
	return hex.EncodeToString(c[:])
}

// Equal reports whether c and other hold the same digest.
func (c Checksum) Equal(other Checksum) bool {
	return c == other
}

// IsZero reports whether c is the zero value.
func (c Checksum) IsZero() bool {
	return c == Checksum{}
}

// Bytes returns a copy of the digest bytes.
func (c Checksum) Bytes() []byte {
	out := make([]byte, Size)
	copy(out, c[:])
	return out
}

// MarshalText implements encoding.TextMarshaler so Checksum round-trips
// through JSON as its hex string rather than a byte array.
func (c Checksum) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Checksum) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
