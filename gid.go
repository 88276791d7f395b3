package gid

import (
	"io"

	"github.com/pixelstream/gid/internal/biobuf"
	"github.com/pixelstream/gid/internal/bmp"
	"github.com/pixelstream/gid/internal/core"
	"github.com/pixelstream/gid/internal/fits"
	"github.com/pixelstream/gid/internal/gif"
	"github.com/pixelstream/gid/internal/jpeg"
	"github.com/pixelstream/gid/internal/png"
	"github.com/pixelstream/gid/internal/pnm"
	"github.com/pixelstream/gid/internal/qoi"
	"github.com/pixelstream/gid/internal/sniff"
	"github.com/pixelstream/gid/internal/tga"
	"github.com/pixelstream/gid/internal/tiff"
)

// Mode selects how interlaced/progressive formats paint intermediate
// passes (spec.md §4.6, §4.8): Fast only emits each pixel once, at its
// final position; Nice additionally paints provisional coverage for
// progressive on-screen refinement.
type Mode = core.Mode

const (
	Fast = core.Fast
	Nice = core.Nice
)

// Descriptor is the single stateful object LoadHeader returns and every
// subsequent LoadContents call advances (spec.md §3).
type Descriptor = core.Descriptor

// LoadHeader identifies source's format from its leading bytes (spec.md
// §4.4) and parses that format's header into a fresh Descriptor. If no
// signature matches and tryTGA is true, the stream is assumed to be a
// signature-less TGA; otherwise an unmatched signature fails with
// UnknownFormat.
func LoadHeader(source io.Reader, tryTGA bool, opts ...Option) (*Descriptor, error) {
	o := options{log: core.NoopLogger}
	for _, opt := range opts {
		opt(&o)
	}

	r := biobuf.New(source)
	res, err := sniff.Detect(r, tryTGA)
	if err != nil {
		return nil, core.Wrap(core.DataError, err, "gid: reading signature bytes")
	}

	var d *Descriptor
	switch res.Format {
	case core.BMP:
		d, err = bmp.LoadHeader(r)
	case core.FITS:
		d, err = fits.LoadHeader(r)
	case core.GIF:
		d, err = gif.LoadHeader(r)
	case core.JPEG:
		d, err = jpeg.LoadHeader(r)
	case core.PNG:
		d, err = png.LoadHeader(r)
	case core.PNM:
		d, err = pnm.LoadHeader(r, res.FirstByte)
	case core.QOI:
		d, err = qoi.LoadHeader(r)
	case core.TGA:
		d, err = tga.LoadHeader(r, res.FirstByte)
	case core.TIFF:
		d, err = tiff.LoadHeader(r, res.FirstByte)
	default:
		return nil, core.Wrap(core.UnknownFormat, nil, "gid: signature matched no known format")
	}
	if err != nil {
		return nil, err
	}
	d.Log = o.log
	d.FirstByte = res.FirstByte
	return d, nil
}

// LoadContents decodes the next unit of pixel data — the whole image for
// every still format, or one frame for GIF — pushing it through sink.
// The returned delay is the number of seconds until the next frame should
// be requested, or 0 if there is none (spec.md §6).
func LoadContents[P Primary](d *Descriptor, sink Sink[P], mode Mode) (float64, error) {
	switch d.Format {
	case core.BMP:
		return bmp.LoadContents[P](d, sink, mode)
	case core.FITS:
		return fits.LoadContents[P](d, sink, mode)
	case core.GIF:
		return gif.LoadContents[P](d, sink, mode)
	case core.JPEG:
		return jpeg.LoadContents[P](d, sink, mode)
	case core.PNG:
		return png.LoadContents[P](d, sink, mode)
	case core.PNM:
		return pnm.LoadContents[P](d, sink, mode)
	case core.QOI:
		return qoi.LoadContents[P](d, sink, mode)
	case core.TGA:
		return tga.LoadContents[P](d, sink, mode)
	case core.TIFF:
		return tiff.LoadContents[P](d, sink, mode)
	default:
		return 0, core.Wrap(core.InternalInvariantViolated, nil, "gid: descriptor has no recognized format")
	}
}
