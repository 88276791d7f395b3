package colorconv

import "github.com/pixelstream/gid/internal/biobuf"

// LoadPaletteRGB reads n entries of 3 bytes each (R,G,B), the order used by
// GIF and PNG's PLTE chunk.
func LoadPaletteRGB(r *biobuf.Reader, n int) ([][3]byte, error) {
	pal := make([][3]byte, n)
	for i := 0; i < n; i++ {
		b, err := r.ReadN(3)
		if err != nil {
			return nil, err
		}
		pal[i] = [3]byte{b[0], b[1], b[2]}
	}
	return pal, nil
}

// LoadPaletteBGRx reads n entries of 4 bytes each (B,G,R,reserved), BMP's
// palette order.
func LoadPaletteBGRx(r *biobuf.Reader, n int) ([][3]byte, error) {
	pal := make([][3]byte, n)
	for i := 0; i < n; i++ {
		b, err := r.ReadN(4)
		if err != nil {
			return nil, err
		}
		pal[i] = [3]byte{b[2], b[1], b[0]}
	}
	return pal, nil
}
