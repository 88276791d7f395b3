package fits

import (
	"bytes"
	"testing"

	"github.com/pixelstream/gid/internal/biobuf"
	"github.com/pixelstream/gid/internal/core"
)

func TestLoadHeaderAlwaysUnsupported(t *testing.T) {
	r := biobuf.New(bytes.NewReader(nil))
	d, err := LoadHeader(r)
	if !core.IsKind(err, core.UnsupportedFormat) {
		t.Fatalf("LoadHeader: err = %v, want UnsupportedFormat", err)
	}
	if d == nil || d.Format != core.FITS {
		t.Fatalf("descriptor not populated with FITS format")
	}
}

func TestLoadContentsAlwaysUnsupported(t *testing.T) {
	r := biobuf.New(bytes.NewReader(nil))
	d, _ := LoadHeader(r)
	if _, err := LoadContents[uint8](d, nil, core.Fast); !core.IsKind(err, core.UnsupportedFormat) {
		t.Fatalf("LoadContents: err = %v, want UnsupportedFormat", err)
	}
}
