// Package tiff implements TIFF's header-only stub (spec.md §4.4, §9):
// the byte-order mark is read and the `42` magic verified, but body
// decoding is out of scope, so LoadHeader always returns
// known_but_unsupported_image_format once the signature itself checks out.
package tiff

import (
	"github.com/pixelstream/gid/internal/biobuf"
	"github.com/pixelstream/gid/internal/core"
)

func dataErr(err error, msg string) error { return core.Wrap(core.DataError, err, msg) }

// LoadHeader verifies the 16-bit `42` magic that must follow TIFF's
// byte-order mark in that same byte order. internal/sniff has already
// consumed both bytes of the mark ("II" or "MM") and reports which one
// via first. The source spec's header parser read the endianness but
// never verified the magic; this implementation closes that gap per the
// corrected behavior spec.md §9 calls for, rejecting any stream whose
// magic doesn't match as UnknownFormat rather than silently accepting it.
func LoadHeader(r *biobuf.Reader, first byte) (*core.Descriptor, error) {
	var endian core.Endianness
	switch first {
	case 'I':
		endian = core.LittleEndian
	case 'M':
		endian = core.BigEndian
	default:
		return nil, dataErr(nil, "tiff: unrecognized byte-order mark")
	}

	var err error
	var magic uint16
	if endian == core.LittleEndian {
		magic, err = r.ReadUint16LE()
	} else {
		magic, err = r.ReadUint16BE()
	}
	if err != nil {
		return nil, dataErr(err, "tiff: reading magic number")
	}
	if magic != 42 {
		// The byte-order mark matched but the mandatory 42 doesn't: per
		// DESIGN.md this means the signature never really matched, so it
		// is UnknownFormat rather than an in-body data error.
		return nil, core.Wrap(core.UnknownFormat, nil, "tiff: magic number is not 42")
	}

	d := &core.Descriptor{
		Format:         core.TIFF,
		DetailedFormat: "TIFF",
		Endian:         endian,
		Reader:         r,
	}
	return d, core.Wrap(core.UnsupportedFormat, nil, "tiff: body decoding is not supported")
}

// LoadContents never succeeds: TIFF body decoding is out of scope
// (spec.md §1 Non-goals). LoadHeader already fails before a caller could
// reach this, but it exists to satisfy the decoder interface.
func LoadContents[P core.Primary](d *core.Descriptor, sink core.Sink[P], mode core.Mode) (float64, error) {
	return 0, core.Wrap(core.UnsupportedFormat, nil, "tiff: body decoding is not supported")
}
