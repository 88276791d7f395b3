package gif

import (
	"io"

	"github.com/pixelstream/gid/internal/biobuf"
)

// subBlockReader adapts GIF's length-prefixed sub-block framing (a run of
// <=255-byte blocks, each preceded by its length, terminated by a
// zero-length block) into a flat io.Reader, so the shared LSBReader can
// pull LZW code bits across sub-block boundaries transparently.
type subBlockReader struct {
	r      *biobuf.Reader
	remain int // bytes left in the current sub-block
	done   bool
}

func newSubBlockReader(r *biobuf.Reader) *subBlockReader {
	return &subBlockReader{r: r}
}

func (s *subBlockReader) Read(p []byte) (int, error) {
	if s.done {
		return 0, io.EOF
	}
	if s.remain == 0 {
		n, err := s.r.ReadByte()
		if err != nil {
			return 0, err
		}
		if n == 0 {
			s.done = true
			return 0, io.EOF
		}
		s.remain = int(n)
	}
	toRead := len(p)
	if toRead > s.remain {
		toRead = s.remain
	}
	for i := 0; i < toRead; i++ {
		b, err := s.r.ReadByte()
		if err != nil {
			return i, err
		}
		p[i] = b
	}
	s.remain -= toRead
	return toRead, nil
}

// skipRemaining reads and discards any unconsumed sub-blocks, leaving the
// stream positioned right after the terminating zero-length block. LZW
// decoders that stop at EOI before exhausting the sub-block sequence
// (trailing garbage bytes are legal) must call this before the next
// block-tag read.
func (s *subBlockReader) skipRemaining() error {
	for !s.done {
		if s.remain > 0 {
			if err := skipN(s.r, s.remain); err != nil {
				return err
			}
			s.remain = 0
		}
		n, err := s.r.ReadByte()
		if err != nil {
			return err
		}
		if n == 0 {
			s.done = true
			return nil
		}
		s.remain = int(n)
	}
	return nil
}

func skipN(r *biobuf.Reader, n int) error {
	return r.Skip(n)
}
