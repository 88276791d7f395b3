// Package bmp implements the Windows BITMAPINFOHEADER decoder (spec.md
// §4.5): BI_RGB truecolor and indexed bodies, bottom-up or top-down row
// order, rows padded to a 4-byte boundary. BI_RLE4/BI_RLE8 compression is
// a recognized but unsupported subformat.
package bmp

import (
	"github.com/pixelstream/gid/internal/biobuf"
	"github.com/pixelstream/gid/internal/colorconv"
	"github.com/pixelstream/gid/internal/core"
)

const (
	compressionRGB  = 0
	compressionRLE8 = 1
	compressionRLE4 = 2
)

func dataErr(err error, msg string) error { return core.Wrap(core.DataError, err, msg) }
func subformatErr(msg string) error       { return core.Wrap(core.UnsupportedSubformat, nil, msg) }

// LoadHeader reads the BITMAPFILEHEADER remainder and BITMAPINFOHEADER
// following the already-consumed "BM" magic.
func LoadHeader(r *biobuf.Reader) (*core.Descriptor, error) {
	if _, err := r.ReadUint32LE(); err != nil { // file size
		return nil, dataErr(err, "bmp: reading file size")
	}
	if _, err := r.ReadUint32LE(); err != nil { // reserved
		return nil, dataErr(err, "bmp: reading reserved field")
	}
	if _, err := r.ReadUint32LE(); err != nil { // pixel data offset
		return nil, dataErr(err, "bmp: reading pixel data offset")
	}
	dibSize, err := r.ReadUint32LE()
	if err != nil {
		return nil, dataErr(err, "bmp: reading DIB header size")
	}
	if dibSize != 40 {
		return nil, subformatErr("bmp: only the 40-byte BITMAPINFOHEADER is supported")
	}
	rawWidth, err := r.ReadUint32LE()
	if err != nil {
		return nil, dataErr(err, "bmp: reading width")
	}
	rawHeight, err := r.ReadUint32LE()
	if err != nil {
		return nil, dataErr(err, "bmp: reading height")
	}
	if _, err := r.ReadUint16LE(); err != nil { // planes
		return nil, dataErr(err, "bmp: reading planes")
	}
	bpp, err := r.ReadUint16LE()
	if err != nil {
		return nil, dataErr(err, "bmp: reading bits-per-pixel")
	}
	compression, err := r.ReadUint32LE()
	if err != nil {
		return nil, dataErr(err, "bmp: reading compression")
	}
	if _, err := r.ReadUint32LE(); err != nil { // image size
		return nil, dataErr(err, "bmp: reading image size")
	}
	if _, err := r.ReadUint32LE(); err != nil { // x pixels/meter
		return nil, dataErr(err, "bmp: reading x resolution")
	}
	if _, err := r.ReadUint32LE(); err != nil { // y pixels/meter
		return nil, dataErr(err, "bmp: reading y resolution")
	}
	colorsUsed, err := r.ReadUint32LE()
	if err != nil {
		return nil, dataErr(err, "bmp: reading colors-used count")
	}
	if _, err := r.ReadUint32LE(); err != nil { // colors important
		return nil, dataErr(err, "bmp: reading colors-important count")
	}

	switch bpp {
	case 1, 4, 8, 24:
	default:
		return nil, subformatErr("bmp: unsupported bits-per-pixel")
	}
	switch compression {
	case compressionRGB:
	case compressionRLE8, compressionRLE4:
		return nil, subformatErr("bmp: RLE compression is not supported")
	default:
		return nil, subformatErr("bmp: unrecognized compression mode")
	}

	width := int32(rawWidth)
	height := int32(rawHeight)
	if width <= 0 || height == 0 {
		return nil, dataErr(nil, "bmp: invalid dimensions")
	}
	topDown := height < 0
	if topDown {
		height = -height
	}

	d := &core.Descriptor{
		Format:         core.BMP,
		DetailedFormat: "BMP",
		Width:          int(width),
		Height:         int(height),
		BitsPerPixel:   int(bpp),
		RLEEncoded:     false,
		TopFirst:       topDown,
		Reader:         r,
	}

	if bpp <= 8 {
		n := int(colorsUsed)
		if n == 0 {
			n = 1 << bpp
		}
		pal, err := colorconv.LoadPaletteBGRx(r, n)
		if err != nil {
			return nil, dataErr(err, "bmp: reading color palette")
		}
		d.Palette = pal
	}
	return d, nil
}

// rowStride returns the number of bytes one scanline occupies on disk,
// padded to a 4-byte boundary.
func rowStride(width, bpp int) int {
	bits := width * bpp
	bytes := (bits + 7) / 8
	return (bytes + 3) &^ 3
}

// LoadContents decodes the single BMP image. BMP has no animation, so the
// returned delay is always 0.
func LoadContents[P core.Primary](d *core.Descriptor, sink core.Sink[P], mode core.Mode) (float64, error) {
	outW := core.PrimaryWidth[P]()
	if outW < 8 || outW > 16 {
		return 0, core.Wrap(core.InvalidPrimaryColorRange, nil, "bmp: invalid primary color width")
	}
	r := d.Reader
	stride := rowStride(d.Width, d.BitsPerPixel)

	rows := make([][]byte, d.Height)
	for i := range rows {
		row, err := r.ReadN(stride)
		if err != nil {
			return 0, dataErr(err, "bmp: truncated scanline")
		}
		rows[i] = row
	}

	emitOrder := make([]int, d.Height)
	if d.TopFirst {
		for i := range emitOrder {
			emitOrder[i] = i
		}
	} else {
		for i := range emitOrder {
			emitOrder[i] = d.Height - 1 - i
		}
	}

	fullAlpha := P(uint32(0xFFFF) >> (16 - outW))
	for outY, srcY := range emitOrder {
		sink.SetXY(0, outY)
		row := rows[srcY]
		for x := 0; x < d.Width; x++ {
			switch d.BitsPerPixel {
			case 24:
				b, g, rr := row[x*3], row[x*3+1], row[x*3+2]
				sink.PutPixel(
					P(colorconv.Promote(uint32(rr), 8, outW)),
					P(colorconv.Promote(uint32(g), 8, outW)),
					P(colorconv.Promote(uint32(b), 8, outW)),
					fullAlpha,
				)
			case 8:
				idx := int(row[x])
				if !d.ValidatePaletteIndex(idx) {
					return 0, dataErr(nil, "bmp: palette index out of range")
				}
				c := d.Palette[idx]
				sink.PutPixel(
					P(colorconv.Promote(uint32(c[0]), 8, outW)),
					P(colorconv.Promote(uint32(c[1]), 8, outW)),
					P(colorconv.Promote(uint32(c[2]), 8, outW)),
					fullAlpha,
				)
			case 4:
				b := row[x/2]
				var idx int
				if x%2 == 0 {
					idx = int(b >> 4)
				} else {
					idx = int(b & 0x0F)
				}
				if !d.ValidatePaletteIndex(idx) {
					return 0, dataErr(nil, "bmp: palette index out of range")
				}
				c := d.Palette[idx]
				sink.PutPixel(
					P(colorconv.Promote(uint32(c[0]), 8, outW)),
					P(colorconv.Promote(uint32(c[1]), 8, outW)),
					P(colorconv.Promote(uint32(c[2]), 8, outW)),
					fullAlpha,
				)
			case 1:
				b := row[x/8]
				idx := int((b >> uint(7-x%8)) & 1)
				if !d.ValidatePaletteIndex(idx) {
					return 0, dataErr(nil, "bmp: palette index out of range")
				}
				c := d.Palette[idx]
				sink.PutPixel(
					P(colorconv.Promote(uint32(c[0]), 8, outW)),
					P(colorconv.Promote(uint32(c[1]), 8, outW)),
					P(colorconv.Promote(uint32(c[2]), 8, outW)),
					fullAlpha,
				)
			}
		}
	}
	return 0, nil
}
