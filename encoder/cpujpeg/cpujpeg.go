/*
DESCRIPTION
  cpujpeg.go implements encoder.Adapter against the standard library's JPEG
  encoder, for use when mjpegd is run with --encoder=cpu-jpeg (§6 CLI
  surface) on a device without the hardware VPU, or as a development
  fallback. Per §1's scope note, the JPEG bitstream algorithm itself is an
  orthogonal concern the spec treats as an external collaborator; this
  adapter supplies only the pixel-format conversion and the same
  scale/blocking/overlay composition pipeline the hardware adapter runs, so
  the two adapters are interchangeable from the workerpool's point of view.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package cpujpeg implements the software JPEG encoder adapter: the
// non-hardware-accelerated alternative selectable via --encoder=cpu-jpeg.
package cpujpeg

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"

	"github.com/ausocean/utils/logging"

	"github.com/ausocean/hwjpeg/blocking"
	"github.com/ausocean/hwjpeg/encoder"
	"github.com/ausocean/hwjpeg/overlay"
	"github.com/ausocean/hwjpeg/pixfmt"
	"github.com/ausocean/hwjpeg/scale"
	"github.com/ausocean/hwjpeg/yuv"
)

// Adapter is the software JPEG encoder adapter. Unlike mpp.Adapter it has no
// vendor context or DMA buffers to reconfigure: the scratch NV12 buffer it
// scales/composites into is a plain Go slice, grown as needed.
type Adapter struct {
	quality int
	policy  scale.Policy

	overlay  *overlay.Overlay
	blocking *blocking.Blocking
	log      logging.Logger

	scratch []byte
}

var _ encoder.Adapter = (*Adapter)(nil)

// New constructs a cpujpeg Adapter. ov and bl may be nil to disable the
// overlay/blocking layers, exactly as for mpp.New.
func New(quality int, policy scale.Policy, ov *overlay.Overlay, bl *blocking.Blocking, log logging.Logger) *Adapter {
	return &Adapter{
		quality:  encoder.ClampQuality(quality),
		policy:   policy,
		overlay:  ov,
		blocking: bl,
		log:      log,
	}
}

// Compress implements encoder.Adapter. Only NV12 sources are scaled and
// composited; other packed formats are encoded at native resolution with no
// overlay or blocking layer, matching §4.4 step 3's "if text overlay
// enabled and source format is NV12" gate for the hardware adapter.
func (a *Adapter) Compress(src, dst *pixfmt.Frame) error {
	dst.MarkEncodeBegin()

	img, err := a.toImage(src)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: a.quality}); err != nil {
		return fmt.Errorf("%w: %v", encoder.ErrSubmitFailed, err)
	}
	if buf.Len() == 0 {
		return encoder.ErrEmptyPacket
	}

	dst.Bytes = append(dst.Bytes[:0], buf.Bytes()...)
	dst.Format = pixfmt.JPEG
	dst.UsedBytes = buf.Len()
	dst.MarkEncodeEnd()
	return nil
}

// toImage produces an image.Image from src, applying the scale policy,
// blocking compositor and text overlay for NV12 sources, or a direct
// colour-model conversion for the remaining packed formats.
func (a *Adapter) toImage(src *pixfmt.Frame) (image.Image, error) {
	if src.Format != pixfmt.NV12 {
		return packedToImage(src)
	}

	tw, th, _ := scale.Resolve(a.policy, src.Width, src.Height, src.Format)
	yStride := yuv.Align16(tw)
	uvOff := yStride * yuv.Align16(th)
	need := uvOff + yStride*(th/2)
	if len(a.scratch) < need {
		a.scratch = make([]byte, need)
	} else {
		a.scratch = a.scratch[:need]
		for i := range a.scratch {
			a.scratch[i] = 0
		}
	}

	var err error
	if tw == src.Width && th == src.Height {
		err = yuv.CopyAlignedNV12(a.scratch, src.Bytes, src.Width, src.Height)
	} else {
		err = yuv.DownscaleNV12(a.scratch, tw, th, src.Bytes, src.Width, src.Height)
	}
	if err != nil {
		return nil, fmt.Errorf("cpujpeg: %w", err)
	}

	if a.blocking != nil && a.blocking.Enabled() {
		if err := a.blocking.Composite(a.scratch, tw, th, yStride, yuv.Align16(th), src); err != nil {
			return nil, fmt.Errorf("cpujpeg: blocking composite: %w", err)
		}
	}
	if a.overlay != nil {
		planes := overlay.Planes{
			Y:        a.scratch[:yStride*th],
			UV:       a.scratch[uvOff : uvOff+yStride*(th/2)],
			YStride:  yStride,
			UVStride: yStride,
			W:        tw,
			H:        th,
		}
		if err := a.overlay.Draw(planes); err != nil {
			return nil, fmt.Errorf("cpujpeg: overlay draw: %w", err)
		}
	}

	return nv12Image(a.scratch, tw, th, yStride, uvOff), nil
}

// nv12Image wraps an NV12 buffer as an image.YCbCr without copying the Y
// plane; the interleaved UV plane is de-interleaved into separate
// half-width, half-height Cb/Cr planes since image.YCbCr expects them split.
func nv12Image(buf []byte, w, h, yStride, uvOff int) *image.YCbCr {
	cw, ch := (w+1)/2, (h+1)/2
	cb := make([]byte, cw*ch)
	cr := make([]byte, cw*ch)
	for y := 0; y < ch; y++ {
		row := buf[uvOff+y*yStride : uvOff+y*yStride+w]
		for x := 0; x+1 < w; x += 2 {
			cb[y*cw+x/2] = row[x]
			cr[y*cw+x/2] = row[x+1]
		}
	}
	return &image.YCbCr{
		Y:              buf[:yStride*h],
		Cb:             cb,
		Cr:             cr,
		YStride:        yStride,
		CStride:        cw,
		SubsampleRatio: image.YCbCrSubsampleRatio420,
		Rect:           image.Rect(0, 0, w, h),
	}
}

// packedToImage converts a packed RGB/YUV frame directly into an
// image.Image without any scale/overlay/blocking pass.
func packedToImage(src *pixfmt.Frame) (image.Image, error) {
	switch src.Format {
	case pixfmt.RGB24, pixfmt.BGR24:
		img := image.NewRGBA(image.Rect(0, 0, src.Width, src.Height))
		for y := 0; y < src.Height; y++ {
			for x := 0; x < src.Width; x++ {
				o := (y*src.Width + x) * 3
				var r, g, b byte
				if src.Format == pixfmt.RGB24 {
					r, g, b = src.Bytes[o], src.Bytes[o+1], src.Bytes[o+2]
				} else {
					b, g, r = src.Bytes[o], src.Bytes[o+1], src.Bytes[o+2]
				}
				img.Set(x, y, color.RGBA{R: r, G: g, B: b, A: 255})
			}
		}
		return img, nil
	case pixfmt.YUYV, pixfmt.UYVY:
		img := image.NewYCbCr(image.Rect(0, 0, src.Width, src.Height), image.YCbCrSubsampleRatio422)
		for y := 0; y < src.Height; y++ {
			for x := 0; x+1 < src.Width; x += 2 {
				o := (y*src.Width + x) * 2
				var y0, u, y1, v byte
				if src.Format == pixfmt.YUYV {
					y0, u, y1, v = src.Bytes[o], src.Bytes[o+1], src.Bytes[o+2], src.Bytes[o+3]
				} else {
					u, y0, v, y1 = src.Bytes[o], src.Bytes[o+1], src.Bytes[o+2], src.Bytes[o+3]
				}
				yi := y*img.YStride + x
				img.Y[yi], img.Y[yi+1] = y0, y1
				ci := y*img.CStride + x/2
				img.Cb[ci], img.Cr[ci] = u, v
			}
		}
		return img, nil
	default:
		return nil, fmt.Errorf("%w: %v", encoder.ErrUnsupportedFormat, src.Format)
	}
}

// Close implements encoder.Adapter; the software adapter has no vendor
// resources to release.
func (a *Adapter) Close() error { return nil }
