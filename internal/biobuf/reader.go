// Package biobuf implements the 1 KiB buffered byte-stream window used by
// every format decoder (spec.md §4.1), plus the MSB- and LSB-first bit
// readers layered on top of it (§4.2).
//
// The refill strategy mirrors internal/bitio's register-and-normalize
// technique from the teacher package, adapted from an in-memory byte slice
// to a genuinely streaming io.Reader: the buffer starts "empty" (both
// nextReadIndex and validCount at 0) so the very first read forces a
// refill.
package biobuf

import (
	"io"

	"github.com/pkg/errors"
)

// BufSize is the fixed buffered-input window size mandated by spec.md §4.1.
const BufSize = 1024

// ErrInData is returned when a read is attempted past end-of-stream.
var ErrInData = errors.New("gid: error in image data")

// Reader is a 1 KiB buffered window over an arbitrary io.Reader.
type Reader struct {
	src           io.Reader
	data          [BufSize]byte
	nextReadIndex int // 0-based index of the next unread byte in data
	validCount    int // number of valid bytes currently in data
	eof           bool

	pushed  byte
	hasPush bool
}

// New wraps src in a fresh Reader. No bytes are read until the first call
// that needs one (lazy refill).
func New(src io.Reader) *Reader {
	return &Reader{src: src}
}

// refill reads up to BufSize bytes from the source. A short read sets eof.
func (r *Reader) refill() error {
	if r.eof {
		return ErrInData
	}
	n, err := io.ReadFull(r.src, r.data[:])
	if n > 0 {
		r.validCount = n
		r.nextReadIndex = 0
	}
	if err != nil {
		r.eof = true
		if n == 0 {
			return ErrInData
		}
		// Short read: the bytes we did get are still usable; eof will
		// trigger ErrInData only once they are exhausted too.
	}
	return nil
}

// ReadByte returns the next byte, refilling the window as needed.
func (r *Reader) ReadByte() (byte, error) {
	if r.hasPush {
		r.hasPush = false
		return r.pushed, nil
	}
	if r.nextReadIndex >= r.validCount {
		if err := r.refill(); err != nil {
			return 0, err
		}
	}
	b := r.data[r.nextReadIndex]
	r.nextReadIndex++
	return b, nil
}

// UnreadByte pushes a single byte back, to be returned by the next
// ReadByte/PeekByte call. Only one byte of pushback is supported.
func (r *Reader) UnreadByte(b byte) {
	r.pushed = b
	r.hasPush = true
}

// PeekByte returns the next byte without consuming it.
func (r *Reader) PeekByte() (byte, error) {
	b, err := r.ReadByte()
	if err != nil {
		return 0, err
	}
	r.UnreadByte(b)
	return b, nil
}

// ReadN reads exactly n bytes. It may span several refills.
func (r *Reader) ReadN(n int) ([]byte, error) {
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		b, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		out[i] = b
	}
	return out, nil
}

// Skip discards n bytes.
func (r *Reader) Skip(n int) error {
	for i := 0; i < n; i++ {
		if _, err := r.ReadByte(); err != nil {
			return err
		}
	}
	return nil
}

// ReadUint16LE reads a little-endian 16-bit unsigned integer (BMP, GIF).
func (r *Reader) ReadUint16LE() (uint16, error) {
	b, err := r.ReadN(2)
	if err != nil {
		return 0, err
	}
	return uint16(b[0]) | uint16(b[1])<<8, nil
}

// ReadUint16BE reads a big-endian 16-bit unsigned integer (PNG, JPEG markers).
func (r *Reader) ReadUint16BE() (uint16, error) {
	b, err := r.ReadN(2)
	if err != nil {
		return 0, err
	}
	return uint16(b[1]) | uint16(b[0])<<8, nil
}

// ReadUint32LE reads a little-endian 32-bit unsigned integer (BMP).
func (r *Reader) ReadUint32LE() (uint32, error) {
	b, err := r.ReadN(4)
	if err != nil {
		return 0, err
	}
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24, nil
}

// ReadUint32BE reads a big-endian 32-bit unsigned integer (PNG IHDR).
func (r *Reader) ReadUint32BE() (uint32, error) {
	b, err := r.ReadN(4)
	if err != nil {
		return 0, err
	}
	return uint32(b[3]) | uint32(b[2])<<8 | uint32(b[1])<<16 | uint32(b[0])<<24, nil
}

// Uint16 reads with a runtime-selected endianness, for TIFF whose
// byte order is self-described by its first two header bytes.
func (r *Reader) Uint16(endian func([]byte) uint16) (uint16, error) {
	b, err := r.ReadN(2)
	if err != nil {
		return 0, err
	}
	return endian(b), nil
}

// EOF reports whether the underlying source has been exhausted (some
// buffered bytes may still remain unread).
func (r *Reader) EOF() bool {
	return r.eof && r.nextReadIndex >= r.validCount
}
