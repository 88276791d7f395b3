package gid

import "github.com/pixelstream/gid/internal/core"

// Primary is the caller's primary-color channel type (spec.md §3, §9).
// This is GID's Go-native rendering of the source's "generic procedures
// parameterised by the caller's primary-color modular type and sink
// procedures" (spec.md §9) using a real type parameter instead of runtime
// dispatch: the Go-level bit width of P stands in for "unsigned with
// 8 <= width(P) <= 16", and LoadContents rejects any other width with
// InvalidPrimaryColorRange.
type Primary = core.Primary

// Sink is the push-style pixel destination every decoder emits into
// (spec.md §3, "Sink Contract").
type Sink[P Primary] = core.Sink[P]

// PrimaryWidth returns the bit width of P (8, 16, or 32 for the three
// permitted underlying types).
func PrimaryWidth[P Primary]() int {
	return core.PrimaryWidth[P]()
}
