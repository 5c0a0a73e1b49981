/*
DESCRIPTION
  downscale.go implements nearest-neighbour downscaling of packed NV12 into a
  stride-aligned destination buffer, and the degenerate no-scale aligned copy,
  as used to move a captured frame into the hardware encoder's DMA-visible
  input buffer.

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

package yuv

import (
	"errors"
	"fmt"
)

// ErrInvalidGeometry is returned when the requested source or destination
// dimensions cannot be used to produce a valid NV12 layout.
var ErrInvalidGeometry = errors.New("yuv: invalid geometry")

// DownscaleNV12 nearest-neighbour downscales packed NV12 source bytes of
// shape (srcW x srcH) into dst, which must be large enough to hold a frame of
// shape (dstW x dstH) at Y/UV stride Align16(dstW) with the UV plane at
// offset Align16(dstH)*stride, and must already be zero-filled so that any
// stride padding doesn't leak garbage into the encoded output. dstW and dstH
// are both rounded down to even before use.
//
// The scale factors are 16.16 fixed point, matching the vendor VPU's own
// nearest-neighbour path: sx = (srcW<<16)/dstW, sy = (srcH<<16)/dstH for the
// Y plane, and a separate sy' for the half-height UV plane. The UV source
// column is masked to an even index so that a destination column always
// samples a complete, correctly paired U/V pair.
func DownscaleNV12(dst []byte, dstW, dstH int, src []byte, srcW, srcH int) error {
	if srcW <= 0 || srcH <= 0 || dstW <= 0 || dstH <= 0 {
		return fmt.Errorf("%w: non-positive dimension", ErrInvalidGeometry)
	}
	dstW = evenFloor(dstW)
	dstH = evenFloor(dstH)
	if dstW <= 0 || dstH <= 0 {
		return fmt.Errorf("%w: rounded destination dimension is zero", ErrInvalidGeometry)
	}

	yStride := Align16(dstW)
	uvStride := yStride
	uvOff := Align16(dstH) * yStride

	wantSrc := srcW*srcH + srcW*(srcH/2)
	if len(src) < wantSrc {
		return fmt.Errorf("%w: source too short: have %d want %d", ErrInvalidGeometry, len(src), wantSrc)
	}
	wantDst := uvOff + uvStride*(dstH/2)
	if len(dst) < wantDst {
		return fmt.Errorf("%w: destination too short: have %d want %d", ErrInvalidGeometry, len(dst), wantDst)
	}

	sx := (srcW << 16) / dstW
	sy := (srcH << 16) / dstH

	srcUVOff := srcW * srcH
	srcUVStride := srcW // interleaved UV pairs, one per 2 luma columns, same row stride as Y.

	// Y plane.
	for dy := 0; dy < dstH; dy++ {
		sRow := (dy * sy) >> 16
		if sRow >= srcH {
			sRow = srcH - 1
		}
		srcRow := src[sRow*srcW : sRow*srcW+srcW]
		dstRow := dst[dy*yStride : dy*yStride+dstW]
		for dx := 0; dx < dstW; dx++ {
			sCol := (dx * sx) >> 16
			if sCol >= srcW {
				sCol = srcW - 1
			}
			dstRow[dx] = srcRow[sCol]
		}
	}

	// UV plane: dstH/2 rows, each a sequence of (U,V) byte pairs at even
	// destination columns.
	srcChromaH := srcH / 2
	dstChromaH := dstH / 2
	syUV := (srcChromaH << 16) / dstChromaH
	for dy := 0; dy < dstChromaH; dy++ {
		sRow := (dy * syUV) >> 16
		if sRow >= srcChromaH {
			sRow = srcChromaH - 1
		}
		srcRow := src[srcUVOff+sRow*srcUVStride : srcUVOff+sRow*srcUVStride+srcW]
		dstRow := dst[uvOff+dy*uvStride : uvOff+dy*uvStride+dstW]
		for dx := 0; dx < dstW; dx += 2 {
			sCol := ((dx * sx) >> 16) &^ 1
			if sCol >= srcW-1 {
				sCol = (srcW - 2) &^ 1
			}
			dstRow[dx] = srcRow[sCol]
			dstRow[dx+1] = srcRow[sCol+1]
		}
	}
	return nil
}

// CopyAlignedNV12 row-by-row copies packed NV12 source bytes of shape
// (w x h) into dst at Y/UV stride Align16(w), with no scaling. dst must
// already be zero-filled and large enough for the aligned layout. If the
// source stride already equals the aligned stride, both planes are copied as
// single contiguous blocks.
func CopyAlignedNV12(dst []byte, src []byte, w, h int) error {
	if w <= 0 || h <= 0 {
		return fmt.Errorf("%w: non-positive dimension", ErrInvalidGeometry)
	}
	wantSrc := w*h + w*(h/2)
	if len(src) < wantSrc {
		return fmt.Errorf("%w: source too short: have %d want %d", ErrInvalidGeometry, len(src), wantSrc)
	}
	stride := Align16(w)
	uvOff := Align16(h) * stride
	wantDst := uvOff + stride*(h/2)
	if len(dst) < wantDst {
		return fmt.Errorf("%w: destination too short: have %d want %d", ErrInvalidGeometry, len(dst), wantDst)
	}

	if stride == w {
		copy(dst[:w*h], src[:w*h])
		copy(dst[uvOff:uvOff+w*(h/2)], src[w*h:w*h+w*(h/2)])
		return nil
	}

	for y := 0; y < h; y++ {
		copy(dst[y*stride:y*stride+w], src[y*w:y*w+w])
	}
	srcUVOff := w * h
	for y := 0; y < h/2; y++ {
		copy(dst[uvOff+y*stride:uvOff+y*stride+w], src[srcUVOff+y*w:srcUVOff+y*w+w])
	}
	return nil
}
