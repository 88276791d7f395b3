// Package pnm implements the Netpbm family (spec.md §4.9): P1/P4 bitmap,
// P2/P5 graymap, P3/P6 pixmap, in both ASCII and binary body encodings.
// No corpus example implements PNM; the whitespace/comment tokenizer and
// the ASCII-vs-binary split are built directly from the spec, following
// the teacher's small-helper-functions style.
package pnm

import (
	"github.com/pixelstream/gid/internal/biobuf"
	"github.com/pixelstream/gid/internal/colorconv"
	"github.com/pixelstream/gid/internal/core"
)

func dataErr(err error, msg string) error { return core.Wrap(core.DataError, err, msg) }

func isWhitespace(b byte) bool {
	switch b {
	case ' ', '\t', '\r', '\n':
		return true
	}
	return false
}

// skipWhitespaceAndComments advances past runs of whitespace and '#'
// comments (which run to end-of-line), leaving the reader positioned at
// the next significant byte.
func skipWhitespaceAndComments(r *biobuf.Reader) error {
	for {
		b, err := r.PeekByte()
		if err != nil {
			return err
		}
		if isWhitespace(b) {
			r.ReadByte()
			continue
		}
		if b == '#' {
			for {
				b, err := r.ReadByte()
				if err != nil {
					return err
				}
				if b == '\n' {
					break
				}
			}
			continue
		}
		return nil
	}
}

// readInt reads a whitespace-delimited unsigned decimal integer token,
// skipping any leading whitespace/comments.
func readInt(r *biobuf.Reader) (int, error) {
	if err := skipWhitespaceAndComments(r); err != nil {
		return 0, err
	}
	v := 0
	read := false
	for {
		b, err := r.PeekByte()
		if err != nil {
			if read {
				return v, nil
			}
			return 0, err
		}
		if b < '0' || b > '9' {
			if !read {
				return 0, dataErr(nil, "pnm: expected a decimal integer token")
			}
			return v, nil
		}
		r.ReadByte()
		v = v*10 + int(b-'0')
		read = true
	}
}

// kind classifies a magic digit into bitmap/graymap/pixmap and ascii/binary.
type kind struct {
	channels int // 1 (bitmap/graymap) or 3 (pixmap)
	bitmap   bool
	ascii    bool
}

func classify(magicDigit byte) (kind, error) {
	switch magicDigit {
	case '1':
		return kind{channels: 1, bitmap: true, ascii: true}, nil
	case '2':
		return kind{channels: 1, ascii: true}, nil
	case '3':
		return kind{channels: 3, ascii: true}, nil
	case '4':
		return kind{channels: 1, bitmap: true}, nil
	case '5':
		return kind{channels: 1}, nil
	case '6':
		return kind{channels: 3}, nil
	default:
		return kind{}, dataErr(nil, "pnm: unrecognized magic digit")
	}
}

// LoadHeader reads the header following the "P" + magicDigit already
// consumed by internal/sniff (magicDigit is sniff's Result.FirstByte).
func LoadHeader(r *biobuf.Reader, magicDigit byte) (*core.Descriptor, error) {
	k, err := classify(magicDigit)
	if err != nil {
		return nil, err
	}

	width, err := readInt(r)
	if err != nil {
		return nil, dataErr(err, "pnm: reading width")
	}
	height, err := readInt(r)
	if err != nil {
		return nil, dataErr(err, "pnm: reading height")
	}
	if width == 0 || height == 0 {
		return nil, dataErr(nil, "pnm: zero dimension")
	}

	maxval := 1
	if !k.bitmap {
		maxval, err = readInt(r)
		if err != nil {
			return nil, dataErr(err, "pnm: reading maxval")
		}
		if maxval < 1 || maxval > 65535 {
			return nil, dataErr(nil, "pnm: maxval out of range")
		}
	}

	if !k.ascii {
		// Exactly one whitespace byte separates the header from binary
		// pixel data (spec.md §4.9).
		if _, err := r.ReadByte(); err != nil {
			return nil, dataErr(err, "pnm: reading header/body separator")
		}
	}

	d := &core.Descriptor{
		Format:         core.PNM,
		DetailedFormat: "PNM",
		SubformatID:    int(magicDigit - '0'),
		Width:          width,
		Height:         height,
		BitsPerPixel:   k.channels * 8,
		Greyscale:      k.channels == 1,
		Reader:         r,
	}
	d.PNMMaxval = maxval
	return d, nil
}

func maxvalOf(d *core.Descriptor) int {
	if d.SubformatID == 1 || d.SubformatID == 4 {
		return 1
	}
	return d.PNMMaxval
}

// readSample reads one channel sample: a single '0'/'1' ASCII bitmap
// sample, a decimal ASCII token, or a binary byte/big-endian-16 sample
// depending on kind and maxval. P4 (binary bitmap) rows are packed and
// read a whole row at a time in LoadContents, so bitmap here only ever
// means P1 (ASCII bitmap).
func readSample(r *biobuf.Reader, ascii, bitmap bool, maxval int) (int, error) {
	if bitmap {
		if err := skipWhitespaceAndComments(r); err != nil {
			return 0, err
		}
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		if b == '1' {
			return 0, nil // PBM convention: 1 means black
		}
		return 1, nil
	}
	if ascii {
		return readInt(r)
	}
	if maxval > 255 {
		hi, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		lo, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		return int(hi)<<8 | int(lo), nil
	}
	b, err := r.ReadByte()
	if err != nil {
		return 0, err
	}
	return int(b), nil
}

// LoadContents decodes the single PNM image. PNM has no animation, so
// the returned delay is always 0.
func LoadContents[P core.Primary](d *core.Descriptor, sink core.Sink[P], mode core.Mode) (float64, error) {
	k, err := classify(byte(d.SubformatID) + '0')
	if err != nil {
		return 0, err
	}
	r := d.Reader
	outW := core.PrimaryWidth[P]()
	if outW < 8 || outW > 16 {
		return 0, core.Wrap(core.InvalidPrimaryColorRange, nil, "pnm: invalid primary color width")
	}
	maxval := maxvalOf(d)

	for y := 0; y < d.Height; y++ {
		sink.SetXY(0, y)

		if k.bitmap && !k.ascii {
			// P4: each row is packed MSB-first into ceil(width/8) bytes.
			rowBytes := (d.Width + 7) / 8
			bits, err := r.ReadN(rowBytes)
			if err != nil {
				return 0, dataErr(err, "pnm: truncated P4 row")
			}
			for x := 0; x < d.Width; x++ {
				bit := (bits[x/8] >> uint(7-x%8)) & 1
				v := colorconv.Promote(uint32(1-bit), 1, outW) // 1 = black in PBM
				sink.PutPixel(P(v), P(v), P(v), P(uint32(0xFFFF)>>(16-outW)))
			}
			continue
		}

		for x := 0; x < d.Width; x++ {
			if k.channels == 1 {
				s, err := readSample(r, k.ascii, k.bitmap, maxval)
				if err != nil {
					return 0, dataErr(err, "pnm: truncated sample row")
				}
				v := rescaleSample(s, maxval, outW)
				sink.PutPixel(P(v), P(v), P(v), P(uint32(0xFFFF)>>(16-outW)))
				continue
			}
			rs, err := readSample(r, k.ascii, false, maxval)
			if err != nil {
				return 0, dataErr(err, "pnm: truncated red sample")
			}
			gs, err := readSample(r, k.ascii, false, maxval)
			if err != nil {
				return 0, dataErr(err, "pnm: truncated green sample")
			}
			bs, err := readSample(r, k.ascii, false, maxval)
			if err != nil {
				return 0, dataErr(err, "pnm: truncated blue sample")
			}
			pr := rescaleSample(rs, maxval, outW)
			pg := rescaleSample(gs, maxval, outW)
			pb := rescaleSample(bs, maxval, outW)
			sink.PutPixel(P(pr), P(pg), P(pb), P(uint32(0xFFFF)>>(16-outW)))
		}
	}
	return 0, nil
}

// rescaleSample linearly rescales a sample in [0, maxval] to the outW-bit
// output range. PNM's maxval (spec.md §4.9) is any value in [1, 65535],
// not necessarily a power-of-two-minus-one, so colorconv.Promote's bit
// replication doesn't apply here; round(s * outMax / maxval) does.
func rescaleSample(s, maxval, outW int) uint32 {
	outMax := (1 << uint(outW)) - 1
	return uint32((s*outMax + maxval/2) / maxval)
}
