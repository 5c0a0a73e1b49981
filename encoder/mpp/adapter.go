/*
DESCRIPTION
  adapter.go implements Adapter, the stateful wrapper around the vendor VPU
  session described by vendor.go: the Uninit/Ready state machine, the
  reconfiguration protocol keyed on (target width, target height, vendor
  format), and the per-frame compress protocol of §4.4, including the
  optional blocking composite and text overlay passes and the mandatory
  cache-sync before every submit.

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

package mpp

import (
	"fmt"

	"github.com/ausocean/utils/logging"

	"github.com/ausocean/hwjpeg/blocking"
	"github.com/ausocean/hwjpeg/encoder"
	"github.com/ausocean/hwjpeg/overlay"
	"github.com/ausocean/hwjpeg/pixfmt"
	"github.com/ausocean/hwjpeg/scale"
	"github.com/ausocean/hwjpeg/yuv"
)

// configured is the tuple an Adapter is Ready against: §3's
// "ready ⇔ vendor_ctx and DMA buffers are both live and sized for
// (hor_stride, ver_stride, mpp_format)".
type configured struct {
	tw, th    int
	horStride int
	verStride int
	vendorFmt vendorFormat
}

// Adapter is the hardware JPEG encoder adapter of §4.4. It is not safe for
// concurrent use: the spec pins one Adapter to one workerpool worker.
type Adapter struct {
	name    string
	quality int

	policy   scale.Policy
	overlay  *overlay.Overlay
	blocking *blocking.Blocking

	log logging.Logger

	sess  session
	grp   bufferGroup
	frame buffer
	pkt   buffer

	ready bool
	cfg   configured
}

var _ encoder.Adapter = (*Adapter)(nil)

// New reserves name and quality but does not touch hardware (§4.4 "new").
// policy selects the target-resolution rule every Compress call resolves
// against; ov and bl are the shared overlay/blocking singletons consulted
// per frame — either may be nil to disable that layer entirely.
func New(name string, quality int, policy scale.Policy, ov *overlay.Overlay, bl *blocking.Blocking, log logging.Logger) *Adapter {
	return &Adapter{
		name:     name,
		quality:  encoder.ClampQuality(quality),
		policy:   policy,
		overlay:  ov,
		blocking: bl,
		log:      log,
	}
}

// Compress implements encoder.Adapter.
func (a *Adapter) Compress(src, dst *pixfmt.Frame) error {
	dst.MarkEncodeBegin()

	vfmt, ok := vendorFormatOf(src.Format)
	if !ok {
		return fmt.Errorf("%w: %v", encoder.ErrUnsupportedFormat, src.Format)
	}
	tw, th, _ := scale.Resolve(a.policy, src.Width, src.Height, src.Format)
	if src.Format != pixfmt.NV12 {
		// Only NV12 has a software scaler; other formats keep their native
		// geometry (see copyIntoFrameBuffer).
		tw, th = src.Width, src.Height
	}

	want := configured{tw: tw, th: th, horStride: yuv.Align16(tw), verStride: yuv.Align16(th), vendorFmt: vfmt}
	if !a.ready || a.cfg != want {
		if err := a.reconfigure(want); err != nil {
			return fmt.Errorf("%w: %v", encoder.ErrReconfigure, err)
		}
	}

	if err := a.copyIntoFrameBuffer(src, want); err != nil {
		return err
	}

	if a.blocking != nil && a.blocking.Enabled() {
		if err := a.blocking.Composite(a.frame.Bytes(), want.tw, want.th, want.horStride, want.verStride, src); err != nil {
			return fmt.Errorf("mpp: blocking composite: %w", err)
		}
	}

	if a.overlay != nil && src.Format == pixfmt.NV12 {
		uvOff := want.horStride * want.verStride
		planes := overlay.Planes{
			Y:        a.frame.Bytes()[:want.horStride*want.th],
			UV:       a.frame.Bytes()[uvOff : uvOff+want.horStride*(want.th/2)],
			YStride:  want.horStride,
			UVStride: want.horStride,
			W:        want.tw,
			H:        want.th,
		}
		if err := a.overlay.Draw(planes); err != nil {
			return fmt.Errorf("mpp: overlay draw: %w", err)
		}
	}

	// Cache-sync end: mandatory before submit, per §4.4 step 4 and §5's
	// "Failure of cache-sync" — skipping this produces intermittent
	// horizontal green/cyan artefacts in the encoded output.
	if err := a.frame.Sync(); err != nil {
		return fmt.Errorf("%w: %v", encoder.ErrDmaSync, err)
	}

	n, err := a.sess.Encode(a.frame, a.pkt, encodeConfig{
		Width: want.tw, Height: want.th,
		HorStride: want.horStride, VerStride: want.verStride,
		Format: want.vendorFmt, Quality: a.quality,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", encoder.ErrSubmitFailed, err)
	}
	if n == 0 {
		return encoder.ErrEmptyPacket
	}

	dst.Bytes = append(dst.Bytes[:0], a.pkt.Bytes()[:n]...)
	dst.Width, dst.Height = want.tw, want.th
	dst.Stride = want.horStride
	dst.Format = pixfmt.JPEG
	dst.UsedBytes = n
	dst.MarkEncodeEnd()
	return nil
}

// copyIntoFrameBuffer moves src into the frame DMA buffer, scaling via
// yuv.DownscaleNV12 if the target geometry differs from src's, or doing a
// plain stride-aligned copy otherwise (§4.4 per-frame step 1, §4.3). Only
// NV12 sources are scaled/copied by this pipeline today — other formats
// pass straight through at native geometry since the VPU accepts packed
// YUV/RGB without a software resampling stage in this pipeline.
func (a *Adapter) copyIntoFrameBuffer(src *pixfmt.Frame, want configured) error {
	buf := a.frame.Bytes()
	for i := range buf {
		buf[i] = 0
	}
	if src.Format != pixfmt.NV12 {
		n := src.UsedBytes
		if n > len(buf) {
			n = len(buf)
		}
		copy(buf, src.Bytes[:n])
		return nil
	}
	if want.tw == src.Width && want.th == src.Height {
		return yuv.CopyAlignedNV12(buf, src.Bytes, src.Width, src.Height)
	}
	return yuv.DownscaleNV12(buf, want.tw, want.th, src.Bytes, src.Width, src.Height)
}

// reconfigure runs the teardown/allocate sequence of §4.4: if the adapter is
// already Ready it tears down first (Ready -> Uninit -> Ready), otherwise it
// allocates directly from Uninit. Any failure unwinds every resource
// acquired so far and leaves the adapter in Uninit (§4.4's state machine).
func (a *Adapter) reconfigure(want configured) error {
	a.teardown()

	sess, err := newSession()
	if err != nil {
		return fmt.Errorf("create/init context: %w", err)
	}
	if err := sess.Configure(encodeConfig{
		Width: want.tw, Height: want.th,
		HorStride: want.horStride, VerStride: want.verStride,
		Format: want.vendorFmt, Quality: a.quality,
	}); err != nil {
		sess.Close()
		return fmt.Errorf("configure: %w", err)
	}

	grp, err := sess.NewBufferGroup()
	if err != nil {
		sess.Close()
		return fmt.Errorf("new buffer group: %w", err)
	}

	frameSize, err := encoder.BytesPerPlaneSet(vendorToPixfmt(want.vendorFmt), want.horStride, want.verStride)
	if err != nil {
		grp.Close()
		sess.Close()
		return fmt.Errorf("frame buffer size: %w", err)
	}
	frameBuf, err := grp.Alloc(frameSize)
	if err != nil {
		grp.Close()
		sess.Close()
		return fmt.Errorf("alloc frame buffer: %w", err)
	}

	pktBuf, err := grp.Alloc(encoder.PacketBufferSize(want.tw, want.th))
	if err != nil {
		frameBuf.Close()
		grp.Close()
		sess.Close()
		return fmt.Errorf("alloc packet buffer: %w", err)
	}

	a.sess, a.grp, a.frame, a.pkt = sess, grp, frameBuf, pktBuf
	a.cfg = want
	a.ready = true
	return nil
}

// teardown releases all vendor resources in reverse acquisition order and
// resets the adapter to Uninit. Safe to call when nothing is allocated.
func (a *Adapter) teardown() {
	if a.pkt != nil {
		a.pkt.Close()
		a.pkt = nil
	}
	if a.frame != nil {
		a.frame.Close()
		a.frame = nil
	}
	if a.grp != nil {
		a.grp.Close()
		a.grp = nil
	}
	if a.sess != nil {
		a.sess.Close()
		a.sess = nil
	}
	a.ready = false
}

// Close implements encoder.Adapter: releases all vendor resources in reverse
// acquisition order (§4.4 "drop").
func (a *Adapter) Close() error {
	a.teardown()
	return nil
}

// vendorToPixfmt inverts vendorFormatOf for the byte-size calculation in
// encoder.BytesPerPlaneSet, which is keyed on pixfmt.Format rather than this
// package's private vendorFormat.
func vendorToPixfmt(f vendorFormat) pixfmt.Format {
	switch f {
	case fmtNV12:
		return pixfmt.NV12
	case fmtNV16:
		return pixfmt.NV16
	case fmtNV24:
		return pixfmt.NV24
	case fmtYUYV:
		return pixfmt.YUYV
	case fmtUYVY:
		return pixfmt.UYVY
	case fmtRGB24:
		return pixfmt.RGB24
	case fmtBGR24:
		return pixfmt.BGR24
	default:
		return pixfmt.Unknown
	}
}
