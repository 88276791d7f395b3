// Package sniff implements the signature-based format dispatcher from
// spec.md §4.4: it reads the first bytes of a stream and classifies the
// format, without parsing any format-specific header itself.
package sniff

import (
	"github.com/pixelstream/gid/internal/biobuf"
	"github.com/pixelstream/gid/internal/core"
)

// Result is what Detect determines before a format-specific header parser
// takes over.
type Result struct {
	Format    core.Format
	FirstByte byte // the byte(s) already consumed during detection
}

// Detect reads the minimum bytes needed to classify the stream per the
// spec.md §4.4 table. If nothing matches and tryTGA is true, it reports
// TGA (which has no signature of its own); otherwise it is UnknownFormat.
func Detect(r *biobuf.Reader, tryTGA bool) (Result, error) {
	b0, err := r.ReadByte()
	if err != nil {
		return Result{}, err
	}

	switch b0 {
	case 'B':
		if b1, err := r.ReadByte(); err == nil && b1 == 'M' {
			return Result{Format: core.BMP}, nil
		}
	case 'S':
		if matchLiteral(r, "IMPLE") {
			return Result{Format: core.FITS}, nil
		}
	case 'G':
		if matchLiteral(r, "IF8") {
			if v, err := r.ReadByte(); err == nil && (v == '7' || v == '9') && matchLiteral(r, "a") {
				return Result{Format: core.GIF}, nil
			}
		}
	case 'I', 'M':
		if b1, err := r.ReadByte(); err == nil && b1 == b0 {
			return Result{Format: core.TIFF, FirstByte: b0}, nil
		}
	case 0xFF:
		if b1, err := r.ReadByte(); err == nil && b1 == 0xD8 {
			return Result{Format: core.JPEG}, nil
		}
	case 0x89:
		if matchLiteral(r, "PNG\r\n\x1A\n") {
			return Result{Format: core.PNG}, nil
		}
	case 'P':
		if b1, err := r.ReadByte(); err == nil && b1 >= '1' && b1 <= '6' {
			return Result{Format: core.PNM, FirstByte: b1}, nil
		}
	case 'q':
		if matchLiteral(r, "oif") {
			return Result{Format: core.QOI}, nil
		}
	}

	if tryTGA {
		return Result{Format: core.TGA, FirstByte: b0}, nil
	}
	return Result{Format: core.Unknown, FirstByte: b0}, nil
}

func matchLiteral(r *biobuf.Reader, lit string) bool {
	for i := 0; i < len(lit); i++ {
		b, err := r.ReadByte()
		if err != nil || b != lit[i] {
			return false
		}
	}
	return true
}
