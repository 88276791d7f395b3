package core

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

// PrimaryWidth reports the bit width of every Primary instantiation,
// uint32 included; it does not enforce spec.md §3's "8 <= width(P) <= 16"
// window, so callers validate the width themselves.
func TestPrimaryWidth(t *testing.T) {
	c := qt.New(t)
	c.Assert(PrimaryWidth[uint8](), qt.Equals, 8)
	c.Assert(PrimaryWidth[uint16](), qt.Equals, 16)
	c.Assert(PrimaryWidth[uint32](), qt.Equals, 32)
}

func TestValidatePaletteIndex(t *testing.T) {
	c := qt.New(t)
	d := &Descriptor{Palette: Palette{{1, 2, 3}, {4, 5, 6}}}

	c.Assert(d.ValidatePaletteIndex(0), qt.IsTrue)
	c.Assert(d.ValidatePaletteIndex(1), qt.IsTrue)
	c.Assert(d.ValidatePaletteIndex(2), qt.IsFalse)
	c.Assert(d.ValidatePaletteIndex(-1), qt.IsFalse)
}

func TestFormatString(t *testing.T) {
	c := qt.New(t)
	c.Assert(PNG.String(), qt.Equals, "PNG")
	c.Assert(Format(999).String(), qt.Equals, "unknown")
}
