package biobuf

import (
	"bytes"
	"testing"
)

func TestReaderLazyRefill(t *testing.T) {
	r := New(bytes.NewReader([]byte{1, 2, 3, 4}))
	if r.validCount != 0 {
		t.Fatalf("expected lazy-empty buffer before first read, got validCount=%d", r.validCount)
	}
	for i, want := range []byte{1, 2, 3, 4} {
		b, err := r.ReadByte()
		if err != nil {
			t.Fatalf("byte %d: %v", i, err)
		}
		if b != want {
			t.Fatalf("byte %d: got %d want %d", i, b, want)
		}
	}
	if _, err := r.ReadByte(); err == nil {
		t.Fatal("expected error reading past EOF")
	}
}

func TestReaderIntegers(t *testing.T) {
	r := New(bytes.NewReader([]byte{0x01, 0x02, 0x03, 0x04}))
	v, err := r.ReadUint16LE()
	if err != nil || v != 0x0201 {
		t.Fatalf("ReadUint16LE = %#x, %v", v, err)
	}
	v2, err := r.ReadUint16BE()
	if err != nil || v2 != 0x0304 {
		t.Fatalf("ReadUint16BE = %#x, %v", v2, err)
	}

	r = New(bytes.NewReader([]byte{0x01, 0x02, 0x03, 0x04}))
	u, err := r.ReadUint32LE()
	if err != nil || u != 0x04030201 {
		t.Fatalf("ReadUint32LE = %#x, %v", u, err)
	}

	r = New(bytes.NewReader([]byte{0x01, 0x02, 0x03, 0x04}))
	u2, err := r.ReadUint32BE()
	if err != nil || u2 != 0x01020304 {
		t.Fatalf("ReadUint32BE = %#x, %v", u2, err)
	}
}

func TestReaderSpansMultipleBuffers(t *testing.T) {
	data := make([]byte, BufSize+10)
	for i := range data {
		data[i] = byte(i)
	}
	r := New(bytes.NewReader(data))
	got, err := r.ReadN(len(data))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, data) {
		t.Fatal("round-trip across refill boundary mismatched")
	}
}

func TestMSBReaderByteStuffing(t *testing.T) {
	// 0xFF 0x00 decodes as a literal 0xFF byte in the bitstream.
	r := New(bytes.NewReader([]byte{0xFF, 0x00, 0xAB}))
	m := NewMSB(r)
	v := m.ReadBits(16)
	if v != 0xFFAB {
		t.Fatalf("byte-stuffed read = %#x, want 0xFFAB", v)
	}
}

func TestMSBReaderMarkerStopsSegment(t *testing.T) {
	r := New(bytes.NewReader([]byte{0x12, 0xFF, 0xD9}))
	m := NewMSB(r)
	v := m.ReadBits(8)
	if v != 0x12 {
		t.Fatalf("got %#x want 0x12", v)
	}
	mbyte, at := m.AtMarker()
	if !at || mbyte != 0xD9 {
		t.Fatalf("expected marker 0xD9, got %#x ok=%v", mbyte, at)
	}
}

func TestLSBReaderRoundTrip(t *testing.T) {
	// 0b1011_0010 read 3 bits then 5 bits, LSB first.
	r := bytes.NewReader([]byte{0xB2})
	l := NewLSB(r)
	a, ok := l.ReadBits(3)
	if !ok || a != 0b010 {
		t.Fatalf("first 3 bits = %b, ok=%v", a, ok)
	}
	b, ok := l.ReadBits(5)
	if !ok || b != 0b10110 {
		t.Fatalf("next 5 bits = %b, ok=%v", b, ok)
	}
}
