package chunk

import (
	"fmt"
	"io"
)

// FixedSizeChunker produces chunks of exactly Size bytes, except possibly
// the last chunk of the stream.
type FixedSizeChunker struct {
	Size int
}

// FixedSize returns a Chunker that cuts every size bytes.
func FixedSize(size int) FixedSizeChunker {
	if size <= 0 {
		panic(fmt.Sprintf("chunk: FixedSize requires size > 0, got %d", size))
	}
	return FixedSizeChunker{Size: size}
}

// Split implements Chunker.
func (f FixedSizeChunker) Split(r io.Reader, yield func(Chunk) error) error {
	buf := make([]byte, f.Size)
	var offset int64

	for {
		n, err := io.ReadFull(r, buf)
		if n > 0 {
			data := make([]byte, n)
			copy(data, buf[:n])
			if yErr := yield(Chunk{Offset: offset, Data: data}); yErr != nil {
				return yErr
			}
			offset += int64(n)
		}
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
