// Package gif implements the GIF87a/GIF89a decoder (spec.md §4.6):
// Logical Screen Descriptor + global palette in LoadHeader, then one
// Image Descriptor's worth of LZW-decoded pixels per LoadContents call,
// carrying Graphic Control Extension state (delay, disposal,
// transparency) and the NETSCAPE loop count across calls via the
// descriptor's GIF sub-state (spec.md §3.11). No corpus example
// implements GIF; the block-tag dispatch loop is built directly from the
// spec in the teacher's small-function style.
package gif

import (
	"github.com/pixelstream/gid/internal/biobuf"
	"github.com/pixelstream/gid/internal/colorconv"
	"github.com/pixelstream/gid/internal/core"
	"github.com/pixelstream/gid/internal/gif/lzw"
)

const (
	blockExtension = 0x21
	blockImage     = 0x2C
	blockTrailer   = 0x3B

	extGraphicControl = 0xF9
	extComment        = 0xFE
	extPlainText      = 0x01
	extApplication    = 0xFF
)

func dataErr(err error, msg string) error { return core.Wrap(core.DataError, err, msg) }

// LoadHeader reads the Logical Screen Descriptor and, if present, the
// global color table. The version string ("GIF87a"/"GIF89a") has already
// been consumed by internal/sniff.
func LoadHeader(r *biobuf.Reader) (*core.Descriptor, error) {
	width, err := r.ReadUint16LE()
	if err != nil {
		return nil, dataErr(err, "gif: reading logical screen width")
	}
	height, err := r.ReadUint16LE()
	if err != nil {
		return nil, dataErr(err, "gif: reading logical screen height")
	}
	packed, err := r.ReadByte()
	if err != nil {
		return nil, dataErr(err, "gif: reading logical screen descriptor flags")
	}
	background, err := r.ReadByte()
	if err != nil {
		return nil, dataErr(err, "gif: reading background color index")
	}
	if _, err := r.ReadByte(); err != nil { // pixel aspect ratio, unused
		return nil, dataErr(err, "gif: reading pixel aspect ratio")
	}
	if width == 0 || height == 0 {
		return nil, dataErr(nil, "gif: zero dimension")
	}

	d := &core.Descriptor{
		Format:         core.GIF,
		DetailedFormat: "GIF",
		Width:          int(width),
		Height:         int(height),
		BitsPerPixel:   8,
		Reader:         r,
	}
	d.GIF.BackgroundIndex = int(background)
	d.GIF.LoopCount = -1

	paletteBits := int(packed & 0x07)
	d.SubformatID = paletteBits + 1 // descriptive only, see DESIGN.md

	if packed&0x80 != 0 {
		size := 1 << (uint(paletteBits) + 1)
		pal, err := colorconv.LoadPaletteRGB(r, size)
		if err != nil {
			return nil, dataErr(err, "gif: reading global color table")
		}
		d.Palette = pal
		d.GIF.GlobalPalette = pal
	}
	return d, nil
}

// LoadContents resumes from the descriptor's live reader position and
// decodes exactly the next Image Descriptor's pixels, returning the delay
// (seconds) announced by the Graphic Control Extension that preceded it.
// A return of 0 with no error and d.GIF.Done set to true means the
// Trailer or end-of-stream was reached with no further frames.
func LoadContents[P core.Primary](d *core.Descriptor, sink core.Sink[P], mode core.Mode) (float64, error) {
	if d.GIF.Done {
		return 0, nil
	}
	r := d.Reader

	for {
		tag, err := r.ReadByte()
		if err != nil {
			d.GIF.Done = true
			return 0, nil
		}
		switch tag {
		case blockExtension:
			if err := parseExtension(r, d); err != nil {
				return 0, err
			}
		case blockImage:
			delay := d.GIF.PendingDelay
			d.GIF.PendingDelay = 0
			if err := decodeImage(r, d, sink, mode); err != nil {
				return 0, err
			}
			return delay, nil
		case blockTrailer:
			d.GIF.Done = true
			return 0, nil
		default:
			return 0, dataErr(nil, "gif: unrecognized block introducer")
		}
	}
}

func skipSubBlocks(r *biobuf.Reader) error {
	for {
		n, err := r.ReadByte()
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		if err := r.Skip(int(n)); err != nil {
			return err
		}
	}
}

func parseExtension(r *biobuf.Reader, d *core.Descriptor) error {
	label, err := r.ReadByte()
	if err != nil {
		return dataErr(err, "gif: reading extension label")
	}
	switch label {
	case extGraphicControl:
		n, err := r.ReadByte()
		if err != nil || n != 4 {
			return dataErr(err, "gif: malformed graphic control extension")
		}
		packed, err := r.ReadByte()
		if err != nil {
			return dataErr(err, "gif: reading GCE flags")
		}
		delayCs, err := r.ReadUint16LE()
		if err != nil {
			return dataErr(err, "gif: reading GCE delay")
		}
		transparentIdx, err := r.ReadByte()
		if err != nil {
			return dataErr(err, "gif: reading GCE transparent color index")
		}
		if _, err := r.ReadByte(); err != nil { // block terminator
			return dataErr(err, "gif: reading GCE terminator")
		}
		d.GIF.PendingDispose = core.GIFDispose((packed >> 2) & 0x07)
		d.GIF.HasTransparency = packed&0x01 != 0
		d.GIF.TransparentIdx = int(transparentIdx)
		d.GIF.PendingDelay = float64(delayCs) / 100
		return nil
	case extApplication:
		n, err := r.ReadByte()
		if err != nil {
			return dataErr(err, "gif: reading application extension length")
		}
		appID, err := r.ReadN(int(n))
		if err != nil {
			return dataErr(err, "gif: reading application identifier")
		}
		isNetscape := string(appID) == "NETSCAPE2.0"
		for {
			sub, err := r.ReadByte()
			if err != nil {
				return dataErr(err, "gif: reading application sub-block length")
			}
			if sub == 0 {
				return nil
			}
			data, err := r.ReadN(int(sub))
			if err != nil {
				return dataErr(err, "gif: reading application sub-block data")
			}
			if isNetscape && len(data) == 3 && data[0] == 1 {
				d.GIF.LoopCount = int(data[1]) | int(data[2])<<8
			}
		}
	case extComment, extPlainText:
		return skipSubBlocks(r)
	default:
		return skipSubBlocks(r)
	}
}

// interlacePass is one of GIF's four Adam7-style passes (spec.md §4.6).
type interlacePass struct{ offset, stride int }

var gifPasses = []interlacePass{{0, 8}, {4, 8}, {2, 4}, {1, 2}}

// interlaceRowOrder returns the decode-order sequence of row indices for
// an interlaced image of the given height.
func interlaceRowOrder(height int) []int {
	var order []int
	for _, p := range gifPasses {
		for y := p.offset; y < height; y += p.stride {
			order = append(order, y)
		}
	}
	return order
}

func decodeImage[P core.Primary](r *biobuf.Reader, d *core.Descriptor, sink core.Sink[P], mode core.Mode) error {
	left, err := r.ReadUint16LE()
	if err != nil {
		return dataErr(err, "gif: reading image left")
	}
	top, err := r.ReadUint16LE()
	if err != nil {
		return dataErr(err, "gif: reading image top")
	}
	width, err := r.ReadUint16LE()
	if err != nil {
		return dataErr(err, "gif: reading image width")
	}
	height, err := r.ReadUint16LE()
	if err != nil {
		return dataErr(err, "gif: reading image height")
	}
	packed, err := r.ReadByte()
	if err != nil {
		return dataErr(err, "gif: reading image descriptor flags")
	}
	if width == 0 || height == 0 {
		return dataErr(nil, "gif: zero-sized image descriptor")
	}

	palette := d.GIF.GlobalPalette
	if packed&0x80 != 0 {
		size := 1 << (uint(packed&0x07) + 1)
		local, err := colorconv.LoadPaletteRGB(r, size)
		if err != nil {
			return dataErr(err, "gif: reading local color table")
		}
		palette = local
	}
	interlaced := packed&0x40 != 0
	d.Interlaced = interlaced

	initCodeSize, err := r.ReadByte()
	if err != nil {
		return dataErr(err, "gif: reading LZW minimum code size")
	}

	sbr := newSubBlockReader(r)
	bits := biobuf.NewLSB(sbr)
	dec := lzw.New(bits, int(initCodeSize))

	outW := core.PrimaryWidth[P]()
	if outW < 8 || outW > 16 {
		return core.Wrap(core.InvalidPrimaryColorRange, nil, "gif: invalid primary color width")
	}

	rowOrder := interlaceRowOrder(int(height))
	if !interlaced {
		rowOrder = make([]int, height)
		for i := range rowOrder {
			rowOrder[i] = i
		}
	}

	w := int(width)
	total := w * int(height)
	indices := make([]byte, 0, total)
	emit := func(s []byte) {
		need := total - len(indices)
		if need <= 0 {
			return
		}
		if len(s) > need {
			s = s[:need]
		}
		indices = append(indices, s...)
	}
	if err := dec.Decode(emit); err != nil {
		return err
	}
	if err := sbr.skipRemaining(); err != nil {
		return err
	}
	if len(indices) < total {
		return dataErr(nil, "gif: LZW stream produced fewer pixels than the image descriptor declares")
	}

	paintRow := func(rowY, srcY int) {
		sink.SetXY(int(left), int(top)+rowY)
		base := srcY * w
		for x := 0; x < w; x++ {
			idx := indices[base+x]
			r8, g8, b8 := paletteRGB(palette, idx)
			a := P(uint32(0xFFFF) >> (16 - outW))
			if d.GIF.HasTransparency && int(idx) == d.GIF.TransparentIdx {
				a = 0
			}
			sink.PutPixel(
				P(colorconv.Promote(uint32(r8), 8, outW)),
				P(colorconv.Promote(uint32(g8), 8, outW)),
				P(colorconv.Promote(uint32(b8), 8, outW)),
				a,
			)
		}
	}

	// real tracks which rows already hold a finalized value from some
	// pass, so a later pass's provisional fill never clobbers a row an
	// earlier pass already decoded for real.
	real := make([]bool, height)
	for pass := 0; pass < len(rowOrder); pass++ {
		srcY := pass
		y := rowOrder[pass]
		paintRow(y, srcY)
		real[y] = true
		if interlaced && mode == core.Nice {
			stride := strideForRow(y, int(height))
			for fill := y + 1; fill < y+stride && fill < int(height); fill++ {
				if real[fill] {
					continue
				}
				paintRow(fill, srcY)
			}
		}
	}
	return nil
}

// strideForRow reports the gap (in rows) to the next decoded row in the
// same interlace pass as y, used only for nice-mode progressive painting.
func strideForRow(y, height int) int {
	for _, p := range gifPasses {
		if (y-p.offset)%p.stride == 0 && y >= p.offset {
			return p.stride
		}
	}
	return 1
}

func paletteRGB(pal [][3]byte, idx byte) (r, g, b byte) {
	if int(idx) >= len(pal) {
		return 0, 0, 0
	}
	c := pal[idx]
	return c[0], c[1], c[2]
}
