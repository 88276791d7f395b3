package core

import "github.com/pkg/errors"

// Kind enumerates the error taxonomy from spec.md §7. It lives in internal
// core (rather than the root package) so every internal/<format> decoder
// can construct a properly-kinded error without importing the root
// package (which itself imports every format package to dispatch).
type Kind int

const (
	UnknownFormat Kind = iota
	UnsupportedFormat
	UnsupportedSubformat
	DataError
	InvalidPrimaryColorRange
	InternalInvariantViolated
)

func (k Kind) String() string {
	switch k {
	case UnknownFormat:
		return "unknown_image_format"
	case UnsupportedFormat:
		return "known_but_unsupported_image_format"
	case UnsupportedSubformat:
		return "unsupported_image_subformat"
	case DataError:
		return "error_in_image_data"
	case InvalidPrimaryColorRange:
		return "invalid_primary_color_range"
	case InternalInvariantViolated:
		return "internal_invariant_violated"
	default:
		return "unknown_error_kind"
	}
}

// Error wraps a decode failure with its Kind and a stack trace, following
// XC-Zero-simple-png's errors.WithStack-at-every-return-site pattern.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Wrap builds an *Error of the given kind from a root cause (which may be
// nil, in which case msg alone describes the failure).
func Wrap(kind Kind, err error, msg string) error {
	if err != nil {
		return &Error{Kind: kind, Err: errors.WithStack(errors.Wrap(err, msg))}
	}
	return &Error{Kind: kind, Err: errors.WithStack(errors.New(msg))}
}

// IsKind reports whether err is an *Error of the given Kind.
func IsKind(err error, kind Kind) bool {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind == kind
	}
	return false
}
