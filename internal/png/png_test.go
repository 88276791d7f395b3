package png

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"hash/crc32"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pixelstream/gid/internal/biobuf"
	"github.com/pixelstream/gid/internal/core"
)

type recordingSink struct {
	w, h int
	x, y int
	rgba [][4]uint8
}

func newRecordingSink(w, h int) *recordingSink {
	return &recordingSink{w: w, h: h, rgba: make([][4]uint8, w*h)}
}

func (s *recordingSink) SetXY(x, y int) { s.x, s.y = x, y }
func (s *recordingSink) Feedback(int)   {}
func (s *recordingSink) PutPixel(r, g, b, a uint8) {
	s.rgba[s.y*s.w+s.x] = [4]uint8{r, g, b, a}
	s.x++
}

func (s *recordingSink) at(x, y int) [4]uint8 { return s.rgba[y*s.w+x] }

func writeChunk(buf *bytes.Buffer, kind string, data []byte) {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(data)))
	buf.Write(lenBuf[:])
	buf.WriteString(kind)
	buf.Write(data)
	h := crc32.NewIEEE()
	h.Write([]byte(kind))
	h.Write(data)
	var crcBuf [4]byte
	binary.BigEndian.PutUint32(crcBuf[:], h.Sum32())
	buf.Write(crcBuf[:])
}

// buildStream assembles a non-interlaced 2x1 8-bit RGB PNG (the 8-byte
// signature itself already stripped, as sniff would consume it): red then
// green, each scanline prefixed with filter type 0 (None).
func buildStream(t *testing.T) []byte {
	t.Helper()
	buf := &bytes.Buffer{}

	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], 2) // width
	binary.BigEndian.PutUint32(ihdr[4:8], 1) // height
	ihdr[8] = 8                              // bit depth
	ihdr[9] = colorRGB
	writeChunk(buf, "IHDR", ihdr)

	raw := []byte{0, 255, 0, 0, 0, 255, 0} // filter=None, red, green
	var compressed bytes.Buffer
	zw := zlib.NewWriter(&compressed)
	if _, err := zw.Write(raw); err != nil {
		t.Fatalf("zlib write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zlib close: %v", err)
	}
	writeChunk(buf, "IDAT", compressed.Bytes())
	writeChunk(buf, "IEND", nil)
	return buf.Bytes()
}

func TestLoadHeaderRGB(t *testing.T) {
	r := biobuf.New(bytes.NewReader(buildStream(t)))
	d, err := LoadHeader(r)
	if err != nil {
		t.Fatalf("LoadHeader: %v", err)
	}
	if d.Width != 2 || d.Height != 1 {
		t.Fatalf("dimensions = %dx%d, want 2x1", d.Width, d.Height)
	}
	if d.PNG.ColorType != colorRGB || d.PNG.BitDepth != 8 {
		t.Fatalf("colorType=%d bitDepth=%d, want RGB/8", d.PNG.ColorType, d.PNG.BitDepth)
	}
	if d.Interlaced {
		t.Errorf("Interlaced = true, want false")
	}
}

func TestLoadContentsRGB(t *testing.T) {
	r := biobuf.New(bytes.NewReader(buildStream(t)))
	d, err := LoadHeader(r)
	if err != nil {
		t.Fatalf("LoadHeader: %v", err)
	}
	sink := newRecordingSink(2, 1)
	delay, err := LoadContents[uint8](d, sink, 0)
	if err != nil {
		t.Fatalf("LoadContents: %v", err)
	}
	if delay != 0 {
		t.Errorf("delay = %v, want 0 (PNG has no animation)", delay)
	}
	if got := sink.at(0, 0); got != [4]uint8{255, 0, 0, 255} {
		t.Errorf("(0,0) = %v, want red", got)
	}
	if got := sink.at(1, 0); got != [4]uint8{0, 255, 0, 255} {
		t.Errorf("(1,0) = %v, want green", got)
	}
}

func TestLoadContentsRGBPixelGrid(t *testing.T) {
	r := biobuf.New(bytes.NewReader(buildStream(t)))
	d, err := LoadHeader(r)
	if err != nil {
		t.Fatalf("LoadHeader: %v", err)
	}
	sink := newRecordingSink(2, 1)
	if _, err := LoadContents[uint8](d, sink, 0); err != nil {
		t.Fatalf("LoadContents: %v", err)
	}
	want := [][4]uint8{{255, 0, 0, 255}, {0, 255, 0, 255}}
	if diff := cmp.Diff(want, sink.rgba); diff != "" {
		t.Errorf("decoded pixel grid mismatch (-want +got):\n%s", diff)
	}
}

// buildInterlacedGreyStream assembles an Adam7-interlaced 8x8 8-bit
// greyscale PNG where pixel (x,y) holds the value y*8+x, unique per pixel,
// using the decoder's own adam7Passes/passDims so the fixture always
// matches whatever pass geometry the decoder implements.
func buildInterlacedGreyStream(t *testing.T) []byte {
	t.Helper()
	const w, h = 8, 8
	value := func(x, y int) byte { return byte(y*w + x) }

	var payload bytes.Buffer
	for _, pass := range adam7Passes {
		pw, ph := passDims(pass, w, h)
		if pw == 0 || ph == 0 {
			continue
		}
		for sy := 0; sy < ph; sy++ {
			payload.WriteByte(0) // filter type None
			for sx := 0; sx < pw; sx++ {
				finalX := pass.xOff + sx*pass.xStride
				finalY := pass.yOff + sy*pass.yStride
				payload.WriteByte(value(finalX, finalY))
			}
		}
	}

	buf := &bytes.Buffer{}
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], w)
	binary.BigEndian.PutUint32(ihdr[4:8], h)
	ihdr[8] = 8 // bit depth
	ihdr[9] = colorGrey
	ihdr[12] = 1 // interlace method: Adam7
	writeChunk(buf, "IHDR", ihdr)

	var compressed bytes.Buffer
	zw := zlib.NewWriter(&compressed)
	if _, err := zw.Write(payload.Bytes()); err != nil {
		t.Fatalf("zlib write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zlib close: %v", err)
	}
	writeChunk(buf, "IDAT", compressed.Bytes())
	writeChunk(buf, "IEND", nil)
	return buf.Bytes()
}

func TestLoadContentsInterlacedNiceMode(t *testing.T) {
	r := biobuf.New(bytes.NewReader(buildInterlacedGreyStream(t)))
	d, err := LoadHeader(r)
	if err != nil {
		t.Fatalf("LoadHeader: %v", err)
	}
	if !d.Interlaced {
		t.Fatalf("Interlaced = false, want true")
	}
	sink := newRecordingSink(8, 8)
	if _, err := LoadContents[uint8](d, sink, core.Nice); err != nil {
		t.Fatalf("LoadContents: %v", err)
	}
	// Every pixel holds a unique value, so any pass's Nice-mode fill
	// clobbering an already-finalized pixel from an earlier pass shows up
	// immediately as a wrong value at that coordinate.
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			v := byte(y*8 + x)
			want := [4]uint8{v, v, v, 255}
			if got := sink.at(x, y); got != want {
				t.Errorf("(%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestLoadHeaderRejectsBadCRC(t *testing.T) {
	data := buildStream(t)
	// Flip a byte inside the IHDR chunk's data, well past the length+type
	// prefix, so its CRC no longer matches.
	data[10] ^= 0xFF
	r := biobuf.New(bytes.NewReader(data))
	if _, err := LoadHeader(r); err == nil {
		t.Fatalf("LoadHeader: want CRC mismatch error, got nil")
	}
}
