package bmp

import (
	"bytes"
	"image"
	"testing"

	"golang.org/x/image/bmp"

	"github.com/pixelstream/gid/internal/biobuf"
)

// recordingSink accumulates pixels in row-major order for assertions.
type recordingSink struct {
	w, h int
	x, y int
	rgba [][4]uint8
}

func newRecordingSink(w, h int) *recordingSink {
	return &recordingSink{w: w, h: h, rgba: make([][4]uint8, w*h)}
}

func (s *recordingSink) SetXY(x, y int)  { s.x, s.y = x, y }
func (s *recordingSink) Feedback(int)    {}
func (s *recordingSink) PutPixel(r, g, b, a uint8) {
	s.rgba[s.y*s.w+s.x] = [4]uint8{r, g, b, a}
	s.x++
}

func (s *recordingSink) at(x, y int) [4]uint8 { return s.rgba[y*s.w+x] }

// buildHeader assembles a minimal BITMAPFILEHEADER+BITMAPINFOHEADER with
// the given bpp and compression
// (the "BM" magic itself is not included; callers have already consumed it
// via internal/sniff by the time LoadHeader runs).
func buildHeader(width, height int32, bpp uint16, compression uint32) []byte {
	buf := &bytes.Buffer{}
	le32 := func(v uint32) { buf.WriteByte(byte(v)); buf.WriteByte(byte(v >> 8)); buf.WriteByte(byte(v >> 16)); buf.WriteByte(byte(v >> 24)) }
	le16 := func(v uint16) { buf.WriteByte(byte(v)); buf.WriteByte(byte(v >> 8)) }

	le32(0)             // file size (unchecked)
	le32(0)             // reserved
	le32(54)            // pixel data offset
	le32(40)            // DIB header size
	le32(uint32(width))
	le32(uint32(height))
	le16(1)             // planes
	le16(bpp)
	le32(compression)
	le32(0) // image size
	le32(0) // x ppm
	le32(0) // y ppm
	le32(0) // colors used
	le32(0) // colors important
	return buf.Bytes()
}

func TestLoadHeader24bppBottomUp(t *testing.T) {
	hdr := buildHeader(2, 1, 24, compressionRGB)
	r := biobuf.New(bytes.NewReader(hdr))

	d, err := LoadHeader(r)
	if err != nil {
		t.Fatalf("LoadHeader: %v", err)
	}
	if d.Width != 2 || d.Height != 1 {
		t.Fatalf("dimensions = %dx%d, want 2x1", d.Width, d.Height)
	}
	if d.TopFirst {
		t.Fatal("positive height must decode as bottom-up (TopFirst=false)")
	}
}

func TestLoadHeaderTopDown(t *testing.T) {
	hdr := buildHeader(2, -1, 24, compressionRGB)
	r := biobuf.New(bytes.NewReader(hdr))

	d, err := LoadHeader(r)
	if err != nil {
		t.Fatalf("LoadHeader: %v", err)
	}
	if !d.TopFirst {
		t.Fatal("negative height must decode as top-down (TopFirst=true)")
	}
	if d.Height != 1 {
		t.Fatalf("Height = %d, want 1 (sign stripped)", d.Height)
	}
}

func TestLoadHeaderRejectsRLE(t *testing.T) {
	hdr := buildHeader(2, 1, 8, compressionRLE8)
	r := biobuf.New(bytes.NewReader(hdr))

	if _, err := LoadHeader(r); err == nil {
		t.Fatal("expected an unsupported-subformat error for BI_RLE8")
	}
}

// buildFullFile assembles a complete BMP file, magic included, so it can be
// handed to golang.org/x/image/bmp as a decode oracle alongside LoadHeader
// (which expects the "BM" signature already stripped by internal/sniff).
func buildFullFile(width, height int32, bpp uint16, compression uint32, body []byte) []byte {
	buf := &bytes.Buffer{}
	le32 := func(v uint32) { buf.WriteByte(byte(v)); buf.WriteByte(byte(v >> 8)); buf.WriteByte(byte(v >> 16)); buf.WriteByte(byte(v >> 24)) }
	le16 := func(v uint16) { buf.WriteByte(byte(v)); buf.WriteByte(byte(v >> 8)) }

	buf.WriteString("BM")
	le32(uint32(14 + 40 + len(body))) // file size
	le32(0)                           // reserved
	le32(54)                          // pixel data offset
	le32(40)                          // DIB header size
	le32(uint32(width))
	le32(uint32(height))
	le16(1) // planes
	le16(bpp)
	le32(compression)
	le32(uint32(len(body)))
	le32(0)
	le32(0)
	le32(0)
	le32(0)
	buf.Write(body)
	return buf.Bytes()
}

// TestLoadContentsMatchesOracle cross-checks a 2x1 24bpp bottom-up image
// against golang.org/x/image/bmp, the ecosystem's reference BMP decoder:
// both must agree on every pixel.
func TestLoadContentsMatchesOracle(t *testing.T) {
	body := []byte{
		0x00, 0x00, 0xFF, // B,G,R -> red
		0x00, 0xFF, 0x00, // B,G,R -> green
		0x00, 0x00, // row padding to 8 bytes
	}
	full := buildFullFile(2, 1, 24, compressionRGB, body)

	oracle, err := bmp.Decode(bytes.NewReader(full))
	if err != nil {
		t.Fatalf("oracle bmp.Decode: %v", err)
	}

	r := biobuf.New(bytes.NewReader(full[2:])) // "BM" already stripped
	d, err := LoadHeader(r)
	if err != nil {
		t.Fatalf("LoadHeader: %v", err)
	}
	sink := newRecordingSink(2, 1)
	if _, err := LoadContents[uint8](d, sink, 0); err != nil {
		t.Fatalf("LoadContents: %v", err)
	}

	bounds := oracle.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			wr, wg, wb, wa := rgba8(oracle, x, y)
			got := sink.at(x, y)
			want := [4]uint8{wr, wg, wb, wa}
			if got != want {
				t.Errorf("(%d,%d) = %v, want %v (oracle)", x, y, got, want)
			}
		}
	}
}

func rgba8(img image.Image, x, y int) (r, g, b, a uint8) {
	cr, cg, cb, ca := img.At(x, y).RGBA()
	return uint8(cr >> 8), uint8(cg >> 8), uint8(cb >> 8), uint8(ca >> 8)
}

func TestLoadContents24bpp(t *testing.T) {
	// 2x1, bottom-up: one row of BGR pixels (red, green), padded to 4 bytes.
	hdr := buildHeader(2, 1, 24, compressionRGB)
	body := []byte{
		0x00, 0x00, 0xFF, // B,G,R -> red
		0x00, 0xFF, 0x00, // B,G,R -> green
		0x00, 0x00, // row padding to 8 bytes
	}
	r := biobuf.New(bytes.NewReader(append(hdr, body...)))

	d, err := LoadHeader(r)
	if err != nil {
		t.Fatalf("LoadHeader: %v", err)
	}
	sink := newRecordingSink(2, 1)
	if _, err := LoadContents[uint8](d, sink, 0); err != nil {
		t.Fatalf("LoadContents: %v", err)
	}
	if got := sink.at(0, 0); got != [4]uint8{255, 0, 0, 255} {
		t.Errorf("(0,0) = %v, want red", got)
	}
	if got := sink.at(1, 0); got != [4]uint8{0, 255, 0, 255} {
		t.Errorf("(1,0) = %v, want green", got)
	}
}
