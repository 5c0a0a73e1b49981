/*
DESCRIPTION
  blit.go implements nearest-neighbour scaling of a packed NV12 source into
  an arbitrary, already-even-aligned sub-rectangle of a larger destination
  plane set, as used by the blocking compositor's background and preview
  window (§4.6 steps 1 and 3). It shares the 16.16 fixed-point scale-factor algorithm of downscale.go
  but writes at a caller-supplied (x0, y0) offset instead of assuming the
  destination starts at the origin.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package yuv

import "fmt"

// ScaleBlitNV12 nearest-neighbour scales packed NV12 src (srcW x srcH) into
// the w x h rectangle at (x0, y0) of a destination plane set with the given
// strides. x0, y0, w and h must all be even; callers that need odd requests
// should round them down first (the blocking compositor does this for the
// preview rectangle).
func ScaleBlitNV12(dstY, dstUV []byte, dstYStride, dstUVStride, x0, y0, w, h int, src []byte, srcW, srcH int) error {
	if x0%2 != 0 || y0%2 != 0 || w%2 != 0 || h%2 != 0 {
		return fmt.Errorf("%w: rectangle must be even-aligned", ErrInvalidGeometry)
	}
	if w <= 0 || h <= 0 || srcW <= 0 || srcH <= 0 {
		return fmt.Errorf("%w: non-positive dimension", ErrInvalidGeometry)
	}
	wantSrc := srcW*srcH + srcW*(srcH/2)
	if len(src) < wantSrc {
		return fmt.Errorf("%w: source too short: have %d want %d", ErrInvalidGeometry, len(src), wantSrc)
	}

	sx := (srcW << 16) / w
	sy := (srcH << 16) / h
	srcUVOff := srcW * srcH

	for dy := 0; dy < h; dy++ {
		sRow := (dy * sy) >> 16
		if sRow >= srcH {
			sRow = srcH - 1
		}
		srcRow := src[sRow*srcW : sRow*srcW+srcW]
		dstRow := dstY[(y0+dy)*dstYStride+x0 : (y0+dy)*dstYStride+x0+w]
		for dx := 0; dx < w; dx++ {
			sCol := (dx * sx) >> 16
			if sCol >= srcW {
				sCol = srcW - 1
			}
			dstRow[dx] = srcRow[sCol]
		}
	}

	srcChromaH := srcH / 2
	dstChromaH := h / 2
	syUV := (srcChromaH << 16) / dstChromaH
	for dy := 0; dy < dstChromaH; dy++ {
		sRow := (dy * syUV) >> 16
		if sRow >= srcChromaH {
			sRow = srcChromaH - 1
		}
		srcRow := src[srcUVOff+sRow*srcW : srcUVOff+sRow*srcW+srcW]
		dstOff := (y0/2+dy)*dstUVStride + x0
		for dx := 0; dx < w; dx += 2 {
			sCol := ((dx * sx) >> 16) &^ 1
			if sCol >= srcW-1 {
				sCol = (srcW - 2) &^ 1
			}
			dstUV[dstOff+dx] = srcRow[sCol]
			dstUV[dstOff+dx+1] = srcRow[sCol+1]
		}
	}
	return nil
}
