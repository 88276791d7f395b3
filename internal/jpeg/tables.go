package jpeg

import (
	"github.com/pixelstream/gid/internal/biobuf"
	"github.com/pixelstream/gid/internal/core"
)

// zigzag maps a coefficient's position in JPEG's zigzag scan order to its
// natural row-major index within an 8x8 block.
var zigzag = [64]int{
	0, 1, 8, 16, 9, 2, 3, 10,
	17, 24, 32, 25, 18, 11, 4, 5,
	12, 19, 26, 33, 40, 48, 41, 34,
	27, 20, 13, 6, 7, 14, 21, 28,
	35, 42, 49, 56, 57, 50, 43, 36,
	29, 22, 15, 23, 30, 37, 44, 51,
	58, 59, 52, 45, 38, 31, 39, 46,
	53, 60, 61, 54, 47, 55, 62, 63,
}

// buildHuffTable assembles the flat 65536-entry canonical Huffman lookup
// spec.md §4.7/§9 permits, from the DHT segment's bits[1..16] counts and
// value list: the teacher's BuildHuffmanTable technique (canonical code
// assignment in ascending length order) adapted to JPEG's fixed 16-bit
// code-length ceiling.
func buildHuffTable(bits [16]int, values []byte) *core.HuffTable {
	t := &core.HuffTable{}
	code := 0
	k := 0
	for length := 1; length <= 16; length++ {
		count := bits[length-1]
		for i := 0; i < count; i++ {
			if k >= len(values) {
				break
			}
			v := values[k]
			k++
			start := code << uint(16-length)
			span := 1 << uint(16-length)
			for idx := start; idx < start+span && idx < len(t.Entries); idx++ {
				t.Entries[idx] = core.HuffEntry{Length: uint8(length), Value: v}
			}
			code++
		}
		code <<= 1
	}
	return t
}

// huffDecode peeks the next 16 bits, looks them up in table, and consumes
// only the matched code's actual bit length.
func huffDecode(br *biobuf.MSBReader, table *core.HuffTable) (byte, bool) {
	idx := br.PeekBits(16)
	e := table.Entries[idx]
	if e.Length == 0 {
		return 0, false
	}
	br.Discard(int(e.Length))
	return e.Value, true
}

// receiveExtend reads s additional bits and sign-extends them per spec.md
// §4.7: value = r if r >= 2^(s-1), else r - 2^s + 1.
func receiveExtend(br *biobuf.MSBReader, s int) int32 {
	if s == 0 {
		return 0
	}
	r := int32(br.ReadBits(s))
	half := int32(1) << uint(s-1)
	if r < half {
		return r - (1 << uint(s)) + 1
	}
	return r
}
