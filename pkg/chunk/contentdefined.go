package chunk

import (
	"bufio"
	"fmt"
	"io"
)

// rollingHashMultiplier is the ZPAQ-derived constant used by the rolling
// hash. It must match exactly for chunk boundaries to be bit-exact across
// implementations.
const rollingHashMultiplier uint32 = 123456791

// ContentDefinedChunker cuts chunks at positions determined by the content
// of the stream rather than by a fixed interval, so that inserting or
// deleting bytes in one place does not reshuffle the boundaries of chunks
// elsewhere in the file.
type ContentDefinedChunker struct {
	// Bits controls the expected average chunk size: a boundary is declared
	// when the rolling hash falls below 1<<(32-Bits), giving an expected
	// chunk length of roughly 1<<Bits bytes.
	Bits uint
}

// ContentDefined returns a Chunker using the ZPAQ-like rolling hash with the
// given boundary sensitivity.
func ContentDefined(bits uint) ContentDefinedChunker {
	if bits == 0 || bits >= 32 {
		panic(fmt.Sprintf("chunk: ContentDefined requires 0 < bits < 32, got %d", bits))
	}
	return ContentDefinedChunker{Bits: bits}
}

// Split implements Chunker.
func (c ContentDefinedChunker) Split(r io.Reader, yield func(Chunk) error) error {
	threshold := uint32(1) << (32 - c.Bits)
	br := bufio.NewReaderSize(r, 64*1024)

	var (
		h       uint32
		c1      byte
		o1      [256]byte
		pending []byte
		offset  int64
	)

	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		data := pending
		pending = nil
		ch := Chunk{Offset: offset, Data: data}
		offset += int64(len(data))
		return yield(ch)
	}

	for {
		b, err := br.ReadByte()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		if b == o1[c1] {
			h = h*rollingHashMultiplier + uint32(b) + 1
		} else {
			h = h*rollingHashMultiplier*2 + uint32(b) + 1
		}
		o1[c1] = b
		c1 = b

		pending = append(pending, b)

		if h < threshold {
			if err := flush(); err != nil {
				return err
			}
			h = 0
			c1 = 0
			o1 = [256]byte{}
		}
	}

	return flush()
}
