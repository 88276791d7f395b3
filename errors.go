package gid

import "github.com/pixelstream/gid/internal/core"

// Kind enumerates the error taxonomy from spec.md §7:
//   - UnknownFormat: the signature matched no known format.
//   - UnsupportedFormat: format recognized but its body decoder is not
//     implemented (FITS, TIFF bodies).
//   - UnsupportedSubformat: a recognized format with an unsupported
//     variant (BMP RLE, TGA color-mapped, 12-bit JPEG, ...).
//   - DataError: parse violations, truncation, CRC mismatch, bad Huffman
//     code, out-of-range palette index.
//   - InvalidPrimaryColorRange: the caller's primary-color width is
//     outside [8, 16].
//   - InternalInvariantViolated: a "should never happen" — indicates a
//     bug in this library, not malformed input.
type Kind = core.Kind

const (
	UnknownFormat             = core.UnknownFormat
	UnsupportedFormat         = core.UnsupportedFormat
	UnsupportedSubformat      = core.UnsupportedSubformat
	DataError                 = core.DataError
	InvalidPrimaryColorRange  = core.InvalidPrimaryColorRange
	InternalInvariantViolated = core.InternalInvariantViolated
)

// Error is the error type every exported GID operation returns on failure.
// It wraps the underlying cause (via github.com/pkg/errors, preserving a
// stack trace from the point of failure) with a Kind so callers can branch
// with errors.As without depending on any decoder's internals — matching
// spec.md §7's "propagation: all errors are raised from the outermost
// LoadHeader/LoadContents call."
type Error = core.Error

// IsKind reports whether err is a *Error of the given Kind.
func IsKind(err error, kind Kind) bool { return core.IsKind(err, kind) }
