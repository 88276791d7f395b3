// Package lzw implements the variable-width LZW decompressor GIF uses
// (spec.md §4.6): LSB-first codes, a dictionary that grows to 4096
// entries, CLEAR/EOI sentinels, and the K-ω special case. No corpus
// example implements GIF/LZW; built directly from the spec, grounded on
// the teacher's dictionary-of-byte-slices decode-loop shape (its
// lossless backward-reference expansion in internal/lossless).
package lzw

import (
	"github.com/pixelstream/gid/internal/biobuf"
	"github.com/pixelstream/gid/internal/core"
)

const maxCodeBits = 12

// Decoder holds one LZW stream's dictionary/code-width state across
// repeated Decode calls (GIF never needs this across calls, but the
// shape mirrors the teacher's incremental-decode style).
type Decoder struct {
	bits  *biobuf.LSBReader
	init  int // initial code size, from the image block's first byte
	width int // current code width in bits
	clear int // clear code
	eoi   int // end-of-information code

	dict [][]byte
	prev []byte
}

// New constructs a Decoder for one LZW stream. initialCodeSize is the
// image data sub-block's leading byte (spec.md §4.6).
func New(bits *biobuf.LSBReader, initialCodeSize int) *Decoder {
	d := &Decoder{bits: bits, init: initialCodeSize}
	d.reset()
	return d
}

func (d *Decoder) reset() {
	d.clear = 1 << uint(d.init)
	d.eoi = d.clear + 1
	d.width = d.init + 1
	d.dict = make([][]byte, d.eoi+1, 1<<maxCodeBits)
	for i := 0; i < d.clear; i++ {
		d.dict[i] = []byte{byte(i)}
	}
	// d.dict[clear] and d.dict[eoi] stay nil; they are sentinels, not
	// dictionary entries.
	d.prev = nil
}

// Decode streams decompressed bytes to emit, calling emit once per
// dictionary-entry output (i.e. once per decoded code, with the full
// matched string), until EOI or the underlying stream is exhausted.
func (d *Decoder) Decode(emit func([]byte)) error {
	for {
		code, ok := d.bits.ReadBits(d.width)
		if !ok {
			return core.Wrap(core.DataError, nil, "gif: truncated LZW stream")
		}
		ci := int(code)

		switch {
		case ci == d.clear:
			d.reset()
			continue
		case ci == d.eoi:
			return nil
		}

		var entry []byte
		switch {
		case ci < len(d.dict) && d.dict[ci] != nil:
			entry = d.dict[ci]
		case ci == len(d.dict) && d.prev != nil:
			// K-omega: code not yet in the dictionary, must equal
			// prev + first_char_of_prev.
			entry = append(append([]byte{}, d.prev...), d.prev[0])
		default:
			return core.Wrap(core.DataError, nil, "gif: invalid LZW code")
		}

		emit(entry)

		if d.prev != nil && len(d.dict) < 1<<maxCodeBits {
			newEntry := append(append([]byte{}, d.prev...), entry[0])
			d.dict = append(d.dict, newEntry)
			if len(d.dict) == 1<<uint(d.width) && d.width < maxCodeBits {
				d.width++
			}
		}
		d.prev = entry
	}
}
