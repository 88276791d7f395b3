package gid

import "github.com/pixelstream/gid/internal/core"

// Format identifies the container/codec family of an image.
type Format = core.Format

const (
	UnknownFmt = core.Unknown
	BMP        = core.BMP
	FITS       = core.FITS
	GIF        = core.GIF
	JPEG       = core.JPEG
	PNG        = core.PNG
	PNM        = core.PNM
	QOI        = core.QOI
	TGA        = core.TGA
	TIFF       = core.TIFF
)

// Orientation is the display rotation a decoder reports.
type Orientation = core.Orientation

const (
	Unchanged = core.Unchanged
	Rot90     = core.Rot90
	Rot180    = core.Rot180
	Rot270    = core.Rot270
)

// PixelWidth returns d's image width in pixels.
func PixelWidth(d *Descriptor) int { return d.Width }

// PixelHeight returns d's image height in pixels.
func PixelHeight(d *Descriptor) int { return d.Height }

// FormatOf returns d's container/codec family. Named FormatOf rather than
// Format, since Format already names the exported type.
func FormatOf(d *Descriptor) Format { return d.Format }

// DetailedFormat returns a short human-readable string such as
// "GIF89a, interlaced".
func DetailedFormat(d *Descriptor) string { return d.DetailedFormat }

// Subformat returns the format-specific integer spec.md §3 calls
// subformat_id (e.g. PNG color type, GIF palette-bits indicator, TGA
// image type).
func Subformat(d *Descriptor) int { return d.SubformatID }

// BitsPerPixel returns d's bits-per-pixel, whose exact meaning is
// format-dependent (spec.md §3): total channels combined for RGB/RGBA,
// bits per channel for palettized formats.
func BitsPerPixel(d *Descriptor) int { return d.BitsPerPixel }

// IsRLE reports whether d's body is run-length encoded (TGA types 10/11;
// BMP's RLE4/RLE8 are rejected as an unsupported subformat, so this is
// always false for BMP).
func IsRLE(d *Descriptor) bool { return d.RLEEncoded }

// IsInterlaced reports whether d's body is scanned in multiple passes:
// PNG's Adam7, GIF's 4-pass scheme, or JPEG's progressive scan sequence.
// The source kept one shared flag for PNG interlacing and JPEG
// progressiveness; GID keeps them as distinct internal fields (see
// DESIGN.md) but surfaces both through this one format-agnostic accessor,
// matching spec.md §6's single-accessor interface.
func IsInterlaced(d *Descriptor) bool { return d.Interlaced || d.Progressive }

// Greyscale reports whether d's pixels carry no color information.
func Greyscale(d *Descriptor) bool { return d.Greyscale }

// HasPalette reports whether d carries an indexed color table.
func HasPalette(d *Descriptor) bool { return len(d.Palette) > 0 }

// ExpectTransparency reports whether d's body may carry an alpha channel
// or a transparent palette/color-key entry.
func ExpectTransparency(d *Descriptor) bool { return d.Transparency }

// DisplayOrientation returns the rotation a viewer should apply before
// display. None of the supported formats flip or mirror on their own.
func DisplayOrientation(d *Descriptor) Orientation { return d.DisplayOrientation }

// GIFDispose is the disposal method a Graphic Control Extension requests
// for the frame about to be decoded, once it has been displayed. Actually
// applying disposal (compositing the next frame onto a canvas held between
// calls) is out of scope here; a host building an animation canvas reads
// this to do it itself.
type GIFDispose = core.GIFDispose

const (
	GIFDisposeUnspecified  = core.DisposeUnspecified
	GIFDisposeNone         = core.DisposeNone
	GIFDisposeToBackground = core.DisposeToBackground
	GIFDisposeToPrevious   = core.DisposeToPrevious
)

// GIFDisposalMethod returns the disposal method pending for d's most
// recently decoded GIF frame. Zero value (GIFDisposeUnspecified) outside
// GIF or before any frame has been decoded.
func GIFDisposalMethod(d *Descriptor) GIFDispose { return d.GIF.PendingDispose }

// LoopCount returns the animation loop count from a GIF's NETSCAPE2.0
// application extension: 0 means infinite, -1 means no such extension was
// present (play once). Zero value outside GIF.
func LoopCount(d *Descriptor) int { return d.GIF.LoopCount }
