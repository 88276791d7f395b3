package colorconv

import "testing"

func TestPromoteMonotonicity(t *testing.T) {
	cases := []struct{ wIn, wOut int }{
		{1, 8}, {2, 8}, {4, 8}, {8, 8}, {8, 16}, {5, 8},
	}
	for _, c := range cases {
		lo := Promote(0, c.wIn, c.wOut)
		if lo != 0 {
			t.Errorf("Promote(0, %d, %d) = %d, want 0", c.wIn, c.wOut, lo)
		}
		maxIn := uint32(1)<<uint(c.wIn) - 1
		wantMax := uint32(1)<<uint(c.wOut) - 1
		hi := Promote(maxIn, c.wIn, c.wOut)
		if hi != wantMax {
			t.Errorf("Promote(%d, %d, %d) = %d, want %d", maxIn, c.wIn, c.wOut, hi, wantMax)
		}
	}
}

func TestPromote8To16Replicates(t *testing.T) {
	got := Promote(0xAB, 8, 16)
	if got != 0xABAB {
		t.Errorf("Promote(0xAB, 8, 16) = %#x, want 0xabab", got)
	}
}

func TestPromote1To8(t *testing.T) {
	if Promote(0, 1, 8) != 0 {
		t.Error("Promote(0,1,8) != 0")
	}
	if Promote(1, 1, 8) != 255 {
		t.Error("Promote(1,1,8) != 255")
	}
}

func TestPaethZero(t *testing.T) {
	if got := Paeth(0, 0, 0); got != 0 {
		t.Errorf("Paeth(0,0,0) = %d, want 0", got)
	}
}

func TestPaethPureLeft(t *testing.T) {
	if got := Paeth(255, 0, 0); got != 255 {
		t.Errorf("Paeth(255,0,0) = %d, want 255", got)
	}
}

func TestYCbCrToRGBGrey(t *testing.T) {
	r, g, b := YCbCrToRGB(128, 128, 128)
	if r != 128 || g != 128 || b != 128 {
		t.Errorf("grey YCbCr(128,128,128) = (%d,%d,%d), want (128,128,128)", r, g, b)
	}
}

func TestCMYKToRGBBlack(t *testing.T) {
	r, g, b := CMYKToRGB(0, 0, 0, 255)
	if r != 0 || g != 0 || b != 0 {
		t.Errorf("CMYK full black = (%d,%d,%d), want (0,0,0)", r, g, b)
	}
}
