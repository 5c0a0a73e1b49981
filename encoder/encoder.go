/*
DESCRIPTION
  encoder.go defines the Adapter interface common to the hardware (mpp) and
  software (cpujpeg) JPEG encoder adapters, the error kinds adapters report,
  and the vendor pixel-format mapping and quality clamp shared by both.

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

// Package encoder defines the contract for a JPEG encoder adapter: something
// that takes a pixfmt.Frame of captured video and emits a pixfmt.Frame of
// JPEG bytes. Two adapters implement it: encoder/mpp (hardware, stateful,
// reconfigurable) and encoder/cpujpeg (software fallback).
package encoder

import (
	"errors"
	"fmt"

	"github.com/ausocean/hwjpeg/pixfmt"
)

// Error kinds reported by Adapter.Compress, per §7 of the design.
var (
	ErrUnsupportedFormat = errors.New("encoder: unsupported pixel format")
	ErrReconfigure       = errors.New("encoder: reconfiguration failed")
	ErrAllocFailed       = errors.New("encoder: vendor resource allocation failed")
	ErrDmaSync           = errors.New("encoder: dma cache sync failed")
	ErrSubmitFailed      = errors.New("encoder: frame submission failed")
	ErrRetrieveFailed    = errors.New("encoder: packet retrieval failed")
	ErrEmptyPacket       = errors.New("encoder: vendor returned an empty packet")
)

// Adapter compresses one source Frame into a JPEG-format destination Frame.
// Implementations are not safe for concurrent use: the spec pins one Adapter
// to one worker goroutine (see workerpool).
type Adapter interface {
	// Compress reads src and writes JPEG bytes, SOI...EOI, into dst. dst is
	// stamped IsKey=true, GOP=0 and EncodeEndTS on success.
	Compress(src, dst *pixfmt.Frame) error

	// Close releases any vendor resources the adapter holds, in reverse
	// acquisition order. Compress must not be called after Close.
	Close() error
}

// MinQuality and MaxQuality bound the JPEG quality knob; 99 is visually
// lossless, 1 is maximally compressed.
const (
	MinQuality = 1
	MaxQuality = 99
)

// ClampQuality restricts q to [MinQuality, MaxQuality].
func ClampQuality(q int) int {
	if q < MinQuality {
		return MinQuality
	}
	if q > MaxQuality {
		return MaxQuality
	}
	return q
}

// BytesPerPlaneSet returns the size in bytes of a frame buffer for format f
// at the given (already 16-aligned) horizontal and vertical strides, using
// the multipliers from §4.4 step 5: 3/2 for NV12, 2 for NV16/YUYV/UYVY, 3 for
// NV24/RGB24/BGR24.
func BytesPerPlaneSet(f pixfmt.Format, horStride, verStride int) (int, error) {
	switch f {
	case pixfmt.NV12:
		return horStride * verStride * 3 / 2, nil
	case pixfmt.NV16, pixfmt.YUYV, pixfmt.UYVY:
		return horStride * verStride * 2, nil
	case pixfmt.NV24, pixfmt.RGB24, pixfmt.BGR24:
		return horStride * verStride * 3, nil
	default:
		return 0, fmt.Errorf("%w: %v", ErrUnsupportedFormat, f)
	}
}

// PacketBufferSize returns the conservative upper-bound packet buffer size
// for a target w x h JPEG, per §4.4 step 6 and the first Open Question in
// §9: tw*th bytes. A tighter estimate (tw*th*2/16 + 1024) is available to
// adapters whose vendor library supports dynamic packet growth; mpp's does
// not, so it keeps the conservative bound.
func PacketBufferSize(tw, th int) int {
	return tw * th
}
