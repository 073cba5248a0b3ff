// Package chunk splits a byte stream into an ordered sequence of chunks so
// that concatenating the chunks reconstructs the original bytes.
//
// Two chunkers are provided: FixedSize, which cuts at a constant byte
// interval, and ContentDefined, a ZPAQ-like rolling hash that cuts at
// content-dependent boundaries so that edits to one part of a file do not
// shift the boundaries of unrelated blocks. Boundary positions for
// ContentDefined must be bit-exact across runs and platforms: that
// reproducibility is what makes deduplication across snapshots useful.
package chunk

import "io"

// Chunk is one contiguous byte range of the chunked input.
type Chunk struct {
	// Offset is the chunk's starting position within the input stream.
	Offset int64
	// Data holds the chunk's bytes.
	Data []byte
}

// Chunker splits r into an ordered sequence of Chunks, invoking yield for
// each one in order. It stops and returns yield's error if yield returns a
// non-nil error, and otherwise returns any read error from r (io.EOF is not
// returned).
type Chunker interface {
	Split(r io.Reader, yield func(Chunk) error) error
}

// SplitAll is a convenience wrapper that collects every chunk into a slice.
func SplitAll(c Chunker, r io.Reader) ([]Chunk, error) {
	var chunks []Chunk
	err := c.Split(r, func(ch Chunk) error {
		chunks = append(chunks, ch)
		return nil
	})
	return chunks, err
}
