package lzw

import (
	"bytes"
	"testing"

	"github.com/pixelstream/gid/internal/biobuf"
)

// bitPacker accumulates variable-width codes LSB-first into a byte slice,
// mirroring how a GIF encoder would frame an LZW stream.
type bitPacker struct {
	acc   uint32
	nbits int
	out   []byte
}

func (p *bitPacker) put(code uint32, width int) {
	p.acc |= code << uint(p.nbits)
	p.nbits += width
	for p.nbits >= 8 {
		p.out = append(p.out, byte(p.acc))
		p.acc >>= 8
		p.nbits -= 8
	}
}

func (p *bitPacker) bytes() []byte {
	if p.nbits > 0 {
		p.out = append(p.out, byte(p.acc))
	}
	return p.out
}

func TestDecodeLiteralsOnly(t *testing.T) {
	// initial code size 2: literals 0..3, clear=4, eoi=5. Code width starts
	// at 3 bits. Stream: CLEAR, 0, 1, EOI.
	p := &bitPacker{}
	p.put(4, 3) // clear
	p.put(0, 3)
	p.put(1, 3)
	p.put(5, 3) // eoi
	r := biobuf.NewLSB(bytes.NewReader(p.bytes()))

	dec := New(r, 2)
	var got []byte
	if err := dec.Decode(func(s []byte) { got = append(got, s...) }); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	want := []byte{0, 1}
	if !bytes.Equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestDecodeBackReference(t *testing.T) {
	// initial code size 2: after CLEAR, emit 0, 1, then the first new
	// dictionary code (6 = clear+2) refers to "0 1" as a two-byte string.
	p := &bitPacker{}
	p.put(4, 3) // clear
	p.put(0, 3)
	p.put(1, 3)
	p.put(6, 3) // first assigned code: dict[6] = prev(0)+entry(1) = [0,1]
	// the dictionary reaching 8 entries just widened codes to 4 bits.
	p.put(5, 4) // eoi
	r := biobuf.NewLSB(bytes.NewReader(p.bytes()))

	dec := New(r, 2)
	var got []byte
	if err := dec.Decode(func(s []byte) { got = append(got, s...) }); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	// After CLEAR: dict = [0,1,2,3]. Emit 0 (prev=nil->no append). Emit 1:
	// prev=[0], append [0,1] as code 6; prev=[1]. Code 6 now exists in the
	// dictionary as [0,1], so it's a direct hit (not K-omega): emit [0,1].
	want := []byte{0, 1, 0, 1}
	if !bytes.Equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestDecodeRejectsTruncatedStream(t *testing.T) {
	p := &bitPacker{}
	p.put(4, 3) // clear only, then nothing
	r := biobuf.NewLSB(bytes.NewReader(p.bytes()))

	dec := New(r, 2)
	if err := dec.Decode(func([]byte) {}); err == nil {
		t.Fatal("expected a truncated-stream error")
	}
}
