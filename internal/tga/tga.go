// Package tga implements the Truevision TGA decoder (spec.md §4.11). No
// corpus example repo implements TGA; this is built directly from the
// spec in the teacher's idiom.
package tga

import (
	"github.com/pixelstream/gid/internal/biobuf"
	"github.com/pixelstream/gid/internal/colorconv"
	"github.com/pixelstream/gid/internal/core"
)

const (
	imgTypeRGB      = 2
	imgTypeGrey     = 3
	imgTypeRLERGB   = 10
	imgTypeRLEGrey  = 11
)

func dataErr(err error, msg string) error { return core.Wrap(core.DataError, err, msg) }
func subformatErr(msg string) error       { return core.Wrap(core.UnsupportedSubformat, nil, msg) }

// LoadHeader reads the 17 TGA header bytes that follow the ID-length byte
// already consumed by internal/sniff (carried in idLength, spec.md §3
// "first_byte").
func LoadHeader(r *biobuf.Reader, idLength byte) (*core.Descriptor, error) {
	colorMapType, err := r.ReadByte()
	if err != nil {
		return nil, dataErr(err, "tga: reading color-map type")
	}
	imageType, err := r.ReadByte()
	if err != nil {
		return nil, dataErr(err, "tga: reading image type")
	}
	if _, err := r.ReadN(5); err != nil { // color-map spec: origin+length+entrysize
		return nil, dataErr(err, "tga: reading color-map spec")
	}
	if _, err := r.ReadUint16LE(); err != nil { // x-origin
		return nil, dataErr(err, "tga: reading x-origin")
	}
	if _, err := r.ReadUint16LE(); err != nil { // y-origin
		return nil, dataErr(err, "tga: reading y-origin")
	}
	width, err := r.ReadUint16LE()
	if err != nil {
		return nil, dataErr(err, "tga: reading width")
	}
	height, err := r.ReadUint16LE()
	if err != nil {
		return nil, dataErr(err, "tga: reading height")
	}
	depth, err := r.ReadByte()
	if err != nil {
		return nil, dataErr(err, "tga: reading pixel depth")
	}
	imgDesc, err := r.ReadByte()
	if err != nil {
		return nil, dataErr(err, "tga: reading image descriptor byte")
	}

	if colorMapType != 0 {
		return nil, subformatErr("tga: color-mapped images are not supported")
	}
	switch imageType {
	case imgTypeRGB, imgTypeGrey, imgTypeRLERGB, imgTypeRLEGrey:
	default:
		return nil, subformatErr("tga: unsupported image type")
	}
	switch depth {
	case 8, 24, 32:
	default:
		return nil, subformatErr("tga: unsupported pixel depth")
	}
	if width == 0 || height == 0 {
		return nil, dataErr(nil, "tga: zero dimension")
	}

	if idLength > 0 {
		if err := r.Skip(int(idLength)); err != nil {
			return nil, dataErr(err, "tga: skipping image ID field")
		}
	}

	d := &core.Descriptor{
		Format:         core.TGA,
		DetailedFormat: "TGA",
		SubformatID:    int(imageType),
		Width:          int(width),
		Height:         int(height),
		BitsPerPixel:   int(depth),
		RLEEncoded:     imageType == imgTypeRLERGB || imageType == imgTypeRLEGrey,
		Greyscale:      imageType == imgTypeGrey || imageType == imgTypeRLEGrey,
		Transparency:   depth == 32,
		TopFirst:       imgDesc&0x20 != 0,
		Reader:         r,
	}
	return d, nil
}

// readPixel reads one pixel of the configured depth in BGR(A) order and
// returns it as (r, g, b, a) 8-bit channels.
func readPixel(r *biobuf.Reader, depth int, grey bool) (pr, pg, pb, pa byte, err error) {
	switch {
	case grey:
		b, e := r.ReadByte()
		return b, b, b, 255, e
	case depth == 24:
		buf, e := r.ReadN(3)
		if e != nil {
			return 0, 0, 0, 0, e
		}
		return buf[2], buf[1], buf[0], 255, nil
	case depth == 32:
		buf, e := r.ReadN(4)
		if e != nil {
			return 0, 0, 0, 0, e
		}
		return buf[2], buf[1], buf[0], buf[3], nil
	default: // 8-bit grey-as-depth fallback (imageType 3 but depth==8 handled above)
		b, e := r.ReadByte()
		return b, b, b, 255, e
	}
}

// LoadContents decodes the single TGA image, emitting rows bottom-up
// unless TopFirst is set (spec.md §4.11).
func LoadContents[P core.Primary](d *core.Descriptor, sink core.Sink[P], mode core.Mode) (float64, error) {
	outW := core.PrimaryWidth[P]()
	if outW < 8 || outW > 16 {
		return 0, core.Wrap(core.InvalidPrimaryColorRange, nil, "tga: invalid primary color width")
	}
	r := d.Reader

	rows := make([][]byte, d.Height)
	for y := range rows {
		rows[y] = make([]byte, d.Width*4) // r,g,b,a per pixel, 8-bit working precision
	}

	if d.RLEEncoded {
		// A packet's run is not required to stop at a scanline boundary
		// (spec.md §4.11), so pos is one continuous cursor over the whole
		// image; only the output row/column it maps to resets per row,
		// never the packet-continuation state itself.
		total := d.Width * d.Height
		pos := 0
		for pos < total {
			hdr, err := r.ReadByte()
			if err != nil {
				return 0, dataErr(err, "tga: truncated RLE packet header")
			}
			count := int(hdr&0x7F) + 1
			if hdr&0x80 != 0 {
				pr, pg, pb, pa, err := readPixel(r, d.BitsPerPixel, d.Greyscale)
				if err != nil {
					return 0, dataErr(err, "tga: truncated RLE run pixel")
				}
				for i := 0; i < count && pos < total; i++ {
					putRow(rows[pos/d.Width], pos%d.Width, pr, pg, pb, pa)
					pos++
				}
			} else {
				for i := 0; i < count && pos < total; i++ {
					pr, pg, pb, pa, err := readPixel(r, d.BitsPerPixel, d.Greyscale)
					if err != nil {
						return 0, dataErr(err, "tga: truncated raw packet pixel")
					}
					putRow(rows[pos/d.Width], pos%d.Width, pr, pg, pb, pa)
					pos++
				}
			}
		}
	} else {
		for y := 0; y < d.Height; y++ {
			for x := 0; x < d.Width; x++ {
				pr, pg, pb, pa, err := readPixel(r, d.BitsPerPixel, d.Greyscale)
				if err != nil {
					return 0, dataErr(err, "tga: truncated pixel row")
				}
				putRow(rows[y], x, pr, pg, pb, pa)
			}
		}
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

	for outY, srcY := range emitOrder {
		sink.SetXY(0, outY)
		row := rows[srcY]
		for x := 0; x < d.Width; x++ {
			pr, pg, pb, pa := row[x*4], row[x*4+1], row[x*4+2], row[x*4+3]
			sink.PutPixel(
				P(colorconv.Promote(uint32(pr), 8, outW)),
				P(colorconv.Promote(uint32(pg), 8, outW)),
				P(colorconv.Promote(uint32(pb), 8, outW)),
				P(colorconv.Promote(uint32(pa), 8, outW)),
			)
		}
	}
	return 0, nil
}

func putRow(row []byte, x int, r, g, b, a byte) {
	row[x*4], row[x*4+1], row[x*4+2], row[x*4+3] = r, g, b, a
}
