/*
DESCRIPTION
  frame.go defines Frame, the owned-buffer-plus-metadata type passed from
  capture through the scaler, compositor and hardware encoder, and out to the
  HTTP layer.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package pixfmt

import (
	"fmt"
	"time"

	"github.com/ausocean/utils/realtime"
)

// Clock is used to obtain the current time for Frame timestamps. Like
// container/mts's package-level RealTime var in the teacher repo, it is a
// package-level variable that an NTP-sync routine can set and tests can
// replace with a fixed clock.
var Clock = realtime.NewRealTime()

// now returns the current time if Clock has been set (e.g. by an NTP sync
// routine upstream), else the monotonic-and-wall system clock.
func now() time.Time {
	if Clock != nil && Clock.IsSet() {
		return Clock.Get()
	}
	return time.Now()
}

// Frame is an owned byte buffer plus the metadata needed to interpret it and
// track it through the pipeline.
type Frame struct {
	Bytes []byte
	Width, Height, Stride int
	Format Format

	// UsedBytes is the exact number of valid bytes at the front of Bytes.
	// For non-JPEG formats this must equal UsedBytes(Format, Width, Height).
	UsedBytes int

	CaptureTS     time.Time
	EncodeBeginTS time.Time
	EncodeEndTS   time.Time

	// IsKey is true for every frame this pipeline emits: every JPEG packet
	// is independently decodable, so every emitted frame is a keyframe.
	IsKey bool

	// GOP is always 0 in this pipeline; JPEG output has no group-of-pictures
	// structure.
	GOP int
}

// New allocates a Frame with a byte buffer sized for (format, width, height)
// at the natural (unaligned) stride, and stamps CaptureTS with the current
// time.
func New(format Format, width, height int) (*Frame, error) {
	n, err := UsedBytes(format, width, height)
	if err != nil {
		return nil, fmt.Errorf("pixfmt: could not size frame: %w", err)
	}
	return &Frame{
		Bytes:     make([]byte, n),
		Width:     width,
		Height:    height,
		Stride:    width,
		Format:    format,
		UsedBytes: n,
		CaptureTS: now(),
	}, nil
}

// Validate checks the Frame.UsedBytes invariant: used bytes must equal the
// exact byte count implied by Format and (Width, Height) for non-JPEG
// formats.
func (f *Frame) Validate() error {
	if f.Format == JPEG {
		return nil
	}
	want, err := UsedBytes(f.Format, f.Width, f.Height)
	if err != nil {
		return err
	}
	if f.UsedBytes != want {
		return fmt.Errorf("pixfmt: frame invariant violated: used_bytes=%d want=%d for %v %dx%d",
			f.UsedBytes, want, f.Format, f.Width, f.Height)
	}
	return nil
}

// MarkEncodeBegin stamps EncodeBeginTS with the current time. Called by the
// encoder adapter on entry to compress.
func (f *Frame) MarkEncodeBegin() { f.EncodeBeginTS = now() }

// MarkEncodeEnd stamps EncodeEndTS with the current time and sets the
// keyframe/GOP fields every emitted JPEG packet carries.
func (f *Frame) MarkEncodeEnd() {
	f.EncodeEndTS = now()
	f.IsKey = true
	f.GOP = 0
}
