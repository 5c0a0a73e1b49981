/*
DESCRIPTION
  vendor.go defines the narrow interface this package uses against the
  vendor video-processing-unit library (§1's "hardware-library entry points
  themselves... the spec describes the adapter's contract, not the vendor
  library"). Two files implement it with the same function signature, chosen
  by build tag, exactly as filter/mog.go (tag "withcv") and
  filter/filters_circleci.go (tag "!withcv") implement NewMOG: vendor_mpp.go
  (tag "mpp") calls into the real VPU via cgo; vendor_stub.go (tag "!mpp") is
  the default build and reports the hardware as unavailable.

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

// Package mpp implements encoder.Adapter against a Rockchip-MPP-class
// hardware JPEG encoder: the vendor context/DMA buffer lifecycle, format and
// quality configuration, and the submit/retrieve JPEG packet path of §4.4.
package mpp

import "github.com/ausocean/hwjpeg/pixfmt"

// vendorFormat is the VPU's own pixel-format tag, distinct from pixfmt.Format
// so that this package owns the mapping in one place (§4.4's "maps
// src.format to a vendor format tag").
type vendorFormat uint32

const (
	fmtNV12 vendorFormat = iota
	fmtNV16
	fmtNV24
	fmtYUYV
	fmtUYVY
	fmtRGB24
	fmtBGR24
)

// vendorFormatOf maps a pixfmt.Format to the VPU's format tag. ok is false
// for formats the VPU cannot ingest (currently just pixfmt.JPEG and
// pixfmt.Unknown).
func vendorFormatOf(f pixfmt.Format) (vendorFormat, bool) {
	switch f {
	case pixfmt.NV12:
		return fmtNV12, true
	case pixfmt.NV16:
		return fmtNV16, true
	case pixfmt.NV24:
		return fmtNV24, true
	case pixfmt.YUYV:
		return fmtYUYV, true
	case pixfmt.UYVY:
		return fmtUYVY, true
	case pixfmt.RGB24:
		return fmtRGB24, true
	case pixfmt.BGR24:
		return fmtBGR24, true
	default:
		return 0, false
	}
}

// encodeConfig is the subset of the vendor MppEncCfg fields this adapter
// sets, per §4.4 step 3's prep fields plus the fixed-quantiser rate-control
// mode and jpeg:quant.
type encodeConfig struct {
	Width, Height, HorStride, VerStride int
	Format                              vendorFormat
	Quality                             int
}

// buffer is one DMA-visible allocation returned by a bufferGroup: the
// adapter's frame and packet buffers are both of this type (§4.4 steps 5-6).
type buffer interface {
	// Bytes returns the buffer's mapped memory. Writes through this slice
	// are not visible to the VPU until Sync is called.
	Bytes() []byte
	// Sync flushes dirty CPU cache lines for the buffer's writable range so
	// the DMA engine observes them (§4.4 step 4, §5 "Failure of cache-sync").
	Sync() error
	// Close releases the buffer back to its group.
	Close() error
}

// bufferGroup is the DMA-capable allocator created in §4.4 step 4.
// Destroying it frees every buffer it issued, in reverse acquisition order.
type bufferGroup interface {
	Alloc(size int) (buffer, error)
	Close() error
}

// session owns one configured vendor context (§4.4 steps 1-3) and the
// buffer groups allocated against it.
type session interface {
	// Configure allocates a vendor config object, fills its prep fields and
	// fixed-quantiser rate control, applies it, and releases the config
	// object (§4.4 step 3).
	Configure(cfg encodeConfig) error

	// NewBufferGroup creates a DMA-capable buffer group bound to this
	// session's context (§4.4 step 4).
	NewBufferGroup() (bufferGroup, error)

	// Encode binds frame to cfg's geometry, submits it, retrieves the
	// resulting JPEG packet into packet, and releases the vendor frame and
	// packet descriptors in reverse order (§4.4 per-frame steps 5-7). It
	// returns the number of valid bytes written to packet.
	Encode(frame, packet buffer, cfg encodeConfig) (n int, err error)

	// Close tears down the vendor context in reverse acquisition order
	// (§4.4's allocation sequence, run backwards).
	Close() error
}

// newSession creates a vendor context and initialises it for MJPEG encoding
// (§4.4 steps 1-3), returning a session ready to have buffer groups created
// against it. It is a package var, not a plain function, so tests can
// substitute a fake without a build tag: see adapter_test.go.
var newSession = newVendorSession
