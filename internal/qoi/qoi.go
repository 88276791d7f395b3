// Package qoi implements the Quite OK Image format (spec.md §4.10). No
// corpus example implements QOI; this is built directly from the spec in
// the teacher's idiom (small header struct, table-driven chunk tags,
// kinded errors via internal/core).
package qoi

import (
	"github.com/pixelstream/gid/internal/biobuf"
	"github.com/pixelstream/gid/internal/colorconv"
	"github.com/pixelstream/gid/internal/core"
)

// Chunk tags (spec.md §4.10).
const (
	opRGB   = 0xFE
	opRGBA  = 0xFF
	opIndex = 0x00 // 2-bit tag, top 2 bits of the byte
	opDiff  = 0x40
	opLuma  = 0x80
	opRun   = 0xC0
	tagMask = 0xC0
)

func dataErr(err error, msg string) error { return core.Wrap(core.DataError, err, msg) }

// LoadHeader reads the 10 header bytes remaining after the "qoif" magic
// (already consumed by internal/sniff) and populates a fresh Descriptor.
func LoadHeader(r *biobuf.Reader) (*core.Descriptor, error) {
	width, err := r.ReadUint32BE()
	if err != nil {
		return nil, dataErr(err, "qoi: reading width")
	}
	height, err := r.ReadUint32BE()
	if err != nil {
		return nil, dataErr(err, "qoi: reading height")
	}
	channels, err := r.ReadByte()
	if err != nil {
		return nil, dataErr(err, "qoi: reading channel count")
	}
	colorspace, err := r.ReadByte()
	if err != nil {
		return nil, dataErr(err, "qoi: reading colorspace byte")
	}
	if channels != 3 && channels != 4 {
		return nil, core.Wrap(core.UnsupportedSubformat, nil, "qoi: unsupported channel count")
	}
	if width == 0 || height == 0 {
		return nil, dataErr(nil, "qoi: zero dimension")
	}

	d := &core.Descriptor{
		Format:         core.QOI,
		DetailedFormat: "QOI",
		SubformatID:    int(colorspace),
		Width:          int(width),
		Height:         int(height),
		BitsPerPixel:   int(channels) * 8,
		Transparency:   channels == 4,
		Reader:         r,
	}
	return d, nil
}

type pixel struct{ r, g, b, a byte }

func hashIndex(p pixel) int {
	return int(p.r*3+p.g*5+p.b*7+p.a*11) % 64
}

// LoadContents decodes the whole (single-frame) QOI image, emitting
// exactly Width*Height pixels, then returns 0 (QOI has no animation).
func LoadContents[P core.Primary](d *core.Descriptor, sink core.Sink[P], mode core.Mode) (float64, error) {
	r := d.Reader
	table := make([]pixel, 64)
	px := pixel{0, 0, 0, 255}

	total := d.Width * d.Height
	outW := core.PrimaryWidth[P]()
	if outW < 8 || outW > 16 {
		return 0, core.Wrap(core.InvalidPrimaryColorRange, nil, "qoi: invalid primary color width")
	}

	// emit writes the current px to the next `count` pixel positions,
	// calling SetXY whenever a row boundary is crossed.
	x, y := -1, 0
	emit := func(count int) {
		for i := 0; i < count; i++ {
			x++
			if x >= d.Width {
				x, y = 0, y+1
			}
			if x == 0 {
				sink.SetXY(0, y)
			}
			putScaled(sink, px, outW)
		}
	}

	emitted := 0
	for emitted < total {
		tag, err := r.ReadByte()
		if err != nil {
			return 0, dataErr(err, "qoi: truncated body")
		}
		run := 1
		switch {
		case tag == opRGB:
			b, err := r.ReadN(3)
			if err != nil {
				return 0, dataErr(err, "qoi: truncated RGB chunk")
			}
			px.r, px.g, px.b = b[0], b[1], b[2]
		case tag == opRGBA:
			b, err := r.ReadN(4)
			if err != nil {
				return 0, dataErr(err, "qoi: truncated RGBA chunk")
			}
			px.r, px.g, px.b, px.a = b[0], b[1], b[2], b[3]
		case tag&tagMask == opIndex:
			px = table[tag&0x3F]
		case tag&tagMask == opDiff:
			dr := int((tag>>4)&0x03) - 2
			dg := int((tag>>2)&0x03) - 2
			db := int(tag&0x03) - 2
			px.r = byte(int(px.r) + dr)
			px.g = byte(int(px.g) + dg)
			px.b = byte(int(px.b) + db)
		case tag&tagMask == opLuma:
			b2, err := r.ReadByte()
			if err != nil {
				return 0, dataErr(err, "qoi: truncated LUMA chunk")
			}
			dg := int(tag&0x3F) - 32
			dr := dg + int((b2>>4)&0x0F) - 8
			db := dg + int(b2&0x0F) - 8
			px.r = byte(int(px.r) + dr)
			px.g = byte(int(px.g) + dg)
			px.b = byte(int(px.b) + db)
		case tag&tagMask == opRun:
			run = int(tag&0x3F) + 1
		}
		if run > total-emitted {
			run = total - emitted
		}
		emit(run)
		table[hashIndex(px)] = px
		emitted += run
	}
	return 0, nil
}

func putScaled[P core.Primary](sink core.Sink[P], px pixel, outW int) {
	r := colorconv.Promote(uint32(px.r), 8, outW)
	g := colorconv.Promote(uint32(px.g), 8, outW)
	b := colorconv.Promote(uint32(px.b), 8, outW)
	a := colorconv.Promote(uint32(px.a), 8, outW)
	sink.PutPixel(P(r), P(g), P(b), P(a))
}
