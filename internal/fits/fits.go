// Package fits implements FITS's header-only stub (spec.md §1, §7): the
// "SIMPLE" signature is recognized, but body decoding is out of scope, so
// LoadHeader always fails with known_but_unsupported_image_format.
package fits

import (
	"github.com/pixelstream/gid/internal/biobuf"
	"github.com/pixelstream/gid/internal/core"
)

// LoadHeader is reached once internal/sniff has matched the "SIMPLE"
// signature (the leading 'S' plus the following "IMPLE" already
// consumed). It exists only to report the format as recognized-but-
// unsupported; it does not attempt to parse FITS's keyword-card header.
func LoadHeader(r *biobuf.Reader) (*core.Descriptor, error) {
	d := &core.Descriptor{
		Format:         core.FITS,
		DetailedFormat: "FITS",
		Reader:         r,
	}
	return d, core.Wrap(core.UnsupportedFormat, nil, "fits: body decoding is not supported")
}

// LoadContents never succeeds: FITS body decoding is out of scope
// (spec.md §1 Non-goals). LoadHeader already fails before a caller could
// reach this, but it exists to satisfy the decoder interface.
func LoadContents[P core.Primary](d *core.Descriptor, sink core.Sink[P], mode core.Mode) (float64, error) {
	return 0, core.Wrap(core.UnsupportedFormat, nil, "fits: body decoding is not supported")
}
