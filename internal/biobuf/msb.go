package biobuf

// MSBReader implements JPEG's MSB-first entropy-coded bit stream, including
// the 0xFF 0x00 byte-stuffing rule (spec.md §4.2): every literal 0xFF byte
// in the compressed data is followed by a stuffed 0x00 that must be
// discarded, while a genuine 0xFF xx (xx != 0x00) is a marker that
// terminates the segment.
type MSBReader struct {
	br     *Reader
	acc    uint32 // up to 32 bits, MSB-aligned at bit 31
	nbits  int
	marker bool // true once a real marker (0xFF xx, xx!=0) was hit
	mbyte  byte // the marker's second byte, valid iff marker
}

// NewMSB wraps br for MSB-first reading.
func NewMSB(br *Reader) *MSBReader {
	return &MSBReader{br: br}
}

// fill tops the accumulator up with whole bytes while it holds 24 bits or
// fewer (so it ends with 25..32 bits), stopping early at a marker or EOF.
func (m *MSBReader) fill() {
	for m.nbits <= 24 && !m.marker {
		b, err := m.br.ReadByte()
		if err != nil {
			// At EOF nothing is added; bits read past the end come back
			// as zeros.
			return
		}
		if b == 0xFF {
			nb, err := m.br.ReadByte()
			if err != nil {
				return
			}
			if nb != 0x00 {
				m.marker = true
				m.mbyte = nb
				return
			}
			// stuffed zero discarded, 0xFF is the literal data byte
		}
		m.acc |= uint32(b) << uint(24-m.nbits)
		m.nbits += 8
	}
}

// ReadBit returns the next single bit (0 or 1).
func (m *MSBReader) ReadBit() int {
	if m.nbits == 0 {
		m.fill()
		if m.nbits == 0 {
			return 0
		}
	}
	bit := int(m.acc >> 31)
	m.acc <<= 1
	m.nbits--
	return bit
}

// ReadBits reads n (0..16) bits MSB-first and returns them right-aligned.
func (m *MSBReader) ReadBits(n int) uint32 {
	var v uint32
	for i := 0; i < n; i++ {
		v = v<<1 | uint32(m.ReadBit())
	}
	return v
}

// PeekBits returns the next n (<=16) bits without consuming them, padding
// with zero bits once a marker or EOF is hit. Used by the flat Huffman
// lookup table, which is addressed by a 16-bit window and only consumes
// however many bits the matched code actually used.
func (m *MSBReader) PeekBits(n int) uint32 {
	if m.nbits < n {
		m.fill() // tops up past 24 bits, or stops short at a marker/EOF
	}
	return m.acc >> uint(32-n)
}

// Discard consumes n (<=16) bits already returned by PeekBits.
func (m *MSBReader) Discard(n int) {
	m.acc <<= uint(n)
	m.nbits -= n
	if m.nbits < 0 {
		m.nbits = 0
	}
}

// AtMarker reports the marker (other than stuffed 0xFF 0x00) that
// terminates the entropy-coded data at the caller's current position —
// used once a restart interval or a whole scan's blocks are fully
// decoded. Any bits still sitting in the accumulator at that point are by
// construction trailing stuff-bits, never undecoded entropy data, so they
// are discarded before searching: fill pulls whole bytes ahead
// (up to 4 at a time) and would otherwise have already consumed the
// marker itself out from under a caller that assumed it could re-read it
// fresh from the underlying byte reader.
func (m *MSBReader) AtMarker() (byte, bool) {
	for !m.marker {
		m.acc, m.nbits = 0, 0
		m.fill()
		if m.nbits == 0 {
			break // underlying reader exhausted without finding a marker
		}
	}
	return m.mbyte, m.marker
}

// Realign discards any partially-consumed bits and the marker flag so
// decoding can resume immediately after a restart marker has been consumed
// by the caller.
func (m *MSBReader) Realign() {
	m.acc = 0
	m.nbits = 0
	m.marker = false
	m.mbyte = 0
}

// Underlying exposes the wrapped byte reader so callers can read the two
// raw marker bytes directly (e.g. to consume an RSTn marker).
func (m *MSBReader) Underlying() *Reader { return m.br }
