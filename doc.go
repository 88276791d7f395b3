// Package gid implements a streaming Generic Image Decoder: it identifies
// a compressed image from a raw byte source and reproduces its pixel grid
// to a caller-supplied sink, for BMP, GIF, JPEG, PNG, PNM, QOI, and TGA
// (with header-only stubs for FITS and TIFF).
//
// The package is portable and sink-agnostic: the sink may be an in-memory
// bitmap, a GUI widget, a file, a scientific array, or a device. It does
// no cooperative yielding and holds no shared mutable state between
// distinct Descriptors, so independent images may be decoded concurrently
// by giving each its own Descriptor.
//
// Basic usage:
//
//	d, err := gid.LoadHeader(r, false)
//	if err != nil {
//		return err
//	}
//	for {
//		delay, err := gid.LoadContents[uint8](d, mySink, gid.Fast)
//		if err != nil {
//			return err
//		}
//		if delay == 0 {
//			break
//		}
//	}
package gid
