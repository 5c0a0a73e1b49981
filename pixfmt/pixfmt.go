/*
DESCRIPTION
  pixfmt.go defines the closed set of pixel formats handled by the MJPEG
  encoding pipeline, along with the stride, plane offset and byte-count
  arithmetic shared by the scaler and the hardware encoder adapter.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>
  Dan Kortschak <dan@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package pixfmt catalogues the packed and semi-planar pixel formats
// produced by the capture layer and consumed by the hardware JPEG encoder,
// and provides the stride/plane/byte-count arithmetic those formats imply.
package pixfmt

import (
	"errors"
	"fmt"
)

// Format is a closed set of pixel layouts understood by the encoder pipeline.
type Format int

// The supported pixel formats. JPEG is treated as opaque, variable-length
// bytes rather than a fixed layout.
const (
	Unknown Format = iota
	NV12           // Semi-planar 4:2:0: Y plane, then interleaved UV, chroma half-height.
	NV16           // Semi-planar 4:2:2: Y plane, then interleaved UV, chroma full height.
	NV24           // Semi-planar 4:4:4: Y plane, then interleaved UV, chroma full width+height.
	YUYV           // Packed 4:2:2.
	UYVY           // Packed 4:2:2.
	RGB24          // Packed 4:4:4, 3 bytes per pixel.
	BGR24          // Packed 4:4:4, 3 bytes per pixel.
	JPEG           // Opaque, variable-length compressed bytes.
)

// ErrUnsupportedFormat is returned for any Format outside the closed set, or
// for operations that are not defined for JPEG's opaque byte layout.
var ErrUnsupportedFormat = errors.New("pixfmt: unsupported format")

func (f Format) String() string {
	switch f {
	case NV12:
		return "NV12"
	case NV16:
		return "NV16"
	case NV24:
		return "NV24"
	case YUYV:
		return "YUYV"
	case UYVY:
		return "UYVY"
	case RGB24:
		return "RGB24"
	case BGR24:
		return "BGR24"
	case JPEG:
		return "JPEG"
	default:
		return "Unknown"
	}
}

// IsSemiplanarYUV reports whether f lays out a Y plane followed by an
// interleaved UV plane (NV12/NV16/NV24).
func IsSemiplanarYUV(f Format) bool {
	switch f {
	case NV12, NV16, NV24:
		return true
	default:
		return false
	}
}

// chromaHeight returns the chroma plane height in rows for a semi-planar
// format of luma height h.
func chromaHeight(f Format, h int) (int, error) {
	switch f {
	case NV12:
		return h / 2, nil
	case NV16, NV24:
		return h, nil
	default:
		return 0, fmt.Errorf("pixfmt: %w: %v is not semi-planar", ErrUnsupportedFormat, f)
	}
}

// packedChannels returns the bytes-per-pixel for a packed format.
func packedChannels(f Format) (int, error) {
	switch f {
	case YUYV, UYVY:
		return 2, nil
	case RGB24, BGR24:
		return 3, nil
	default:
		return 0, fmt.Errorf("pixfmt: %w: %v is not packed", ErrUnsupportedFormat, f)
	}
}

// BytesPerFrame returns the exact byte count of a frame of format f with the
// given width, height and row stride (stride must already account for any
// alignment padding). JPEG is not supported since its size is not a pure
// function of geometry.
func BytesPerFrame(f Format, w, h, stride int) (int, error) {
	if IsSemiplanarYUV(f) {
		ch, err := chromaHeight(f, h)
		if err != nil {
			return 0, err
		}
		return stride*h + stride*ch, nil
	}
	ch, err := packedChannels(f)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnsupportedFormat, f)
	}
	return stride * h * ch, nil
}

// PlaneOffsets returns the byte offset of the Y (or sole) plane, and the
// offset of the UV plane for semi-planar formats (ok is false for packed
// formats, which have no second plane).
func PlaneOffsets(f Format, w, h, stride int) (yOff int, uvOff int, ok bool, err error) {
	if !IsSemiplanarYUV(f) {
		if _, err := packedChannels(f); err != nil {
			return 0, 0, false, err
		}
		return 0, 0, false, nil
	}
	return 0, stride * h, true, nil
}

// UsedBytes is a convenience wrapper combining BytesPerFrame with the
// Frame.UsedBytes invariant check described in §3 of the spec: for every
// non-JPEG format, used bytes equals the exact byte count implied by format
// and (width, height) at the natural (unaligned) stride.
func UsedBytes(f Format, w, h int) (int, error) {
	if f == JPEG {
		return 0, fmt.Errorf("pixfmt: %w: JPEG size is not a pure function of geometry", ErrUnsupportedFormat)
	}
	stride := w
	if !IsSemiplanarYUV(f) {
		ch, err := packedChannels(f)
		if err != nil {
			return 0, err
		}
		return w * h * ch, nil
	}
	return BytesPerFrame(f, w, h, stride)
}
