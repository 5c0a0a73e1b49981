/*
DESCRIPTION
  compositor.go implements the blocking compositor of §4.6: background,
  raw-frame archive, preview window and the two styled text blocks, composed
  in order directly onto the hardware encoder's DMA input buffer.

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

package blocking

import (
	"fmt"
	"strings"

	"github.com/ausocean/utils/logging"

	"github.com/ausocean/hwjpeg/overlay"
	"github.com/ausocean/hwjpeg/pixfmt"
	"github.com/ausocean/hwjpeg/yuv"
)

// Neutral fill colour used when no background has been uploaded yet, per
// §4.6 step 1.
const (
	neutralY  = 32
	neutralUV = 128
)

// Preview border and minimum-size constants, per §4.6 step 3.
const (
	previewBorderY     = 235
	previewBorderWidth = 2
	previewMinW        = 160
	previewMinH        = 90
	previewShrink      = 0.2
)

// textBoxPadding is the padding, in pixels, around the vocabulary and stats
// text blocks' background box. The spec names a text position but not a box
// padding for these two blocks; this value is an implementation choice.
const textBoxPadding = 6

// edgeMargin is the minimum distance, in pixels, the vocab/stats text blocks
// are clamped to keep from the frame edges (§4.6 steps 4 and 5).
const edgeMargin = 10

// Composite draws the background, preview window and text blocks onto
// dmaBuf, an NV12 buffer of shape (dstW x dstH) at the given horizontal and
// vertical strides. src is the live capture frame
// used for the raw-frame archive and preview window; it is expected to be
// NV12 (the compositor has no defined behaviour for other source formats,
// matching its NV12-only inputs in §4.6).
func (b *Blocking) Composite(dmaBuf []byte, dstW, dstH, horStride, verStride int, src *pixfmt.Frame) error {
	snap := b.Snapshot()
	uvOff := horStride * verStride

	planes := overlay.Planes{
		Y:        dmaBuf[:horStride*dstH],
		UV:       dmaBuf[uvOff : uvOff+horStride*(dstH/2)],
		YStride:  horStride,
		UVStride: horStride,
		W:        dstW,
		H:        dstH,
	}

	if snap.BgValid && len(snap.Background) > 0 {
		if err := yuv.ScaleBlitNV12(planes.Y, planes.UV, horStride, horStride, 0, 0, evenFloor(dstW), evenFloor(dstH), snap.Background, snap.BgW, snap.BgH); err != nil {
			return fmt.Errorf("blocking: background scale: %w", err)
		}
	} else {
		fillNeutral(dmaBuf, dstW, dstH, horStride, uvOff, horStride)
	}

	if src != nil && b.raw != nil {
		n := src.Width*src.Height + src.Width*(src.Height/2)
		if n <= len(src.Bytes) {
			b.raw.Store(src.Bytes[:n], src.Width, src.Height, src.Stride)
		}
	}

	if snap.Preview.Enabled && snap.Preview.W > 0 && snap.Preview.H > 0 && src != nil {
		if err := drawPreview(planes, snap.Preview, src); err != nil {
			return err
		}
	}

	if snap.TextVocab != "" {
		drawVocab(planes, b.fonts, b.log, snap)
	}
	if snap.TextStats != "" {
		drawStats(planes, b.fonts, b.log, snap)
	}

	return nil
}

// fillNeutral fills the actual w x h image region (not stride padding) with
// neutral dark grey, per §4.6 step 1's "else" branch.
func fillNeutral(buf []byte, w, h, yStride, uvOff, uvStride int) {
	for y := 0; y < h; y++ {
		row := buf[y*yStride : y*yStride+w]
		for i := range row {
			row[i] = neutralY
		}
	}
	for y := 0; y < h/2; y++ {
		row := buf[uvOff+y*uvStride : uvOff+y*uvStride+w]
		for i := range row {
			row[i] = neutralUV
		}
	}
}

func clampRange(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// drawPreview scales the live source into the preview rectangle and draws
// its border, per §4.6 step 3.
func drawPreview(p overlay.Planes, prev Preview, src *pixfmt.Frame) error {
	pw, ph := prev.W, prev.H
	if pw > p.W || ph > p.H {
		wf := float64(p.W) / float64(pw)
		hf := float64(p.H) / float64(ph)
		m := wf
		if hf < m {
			m = hf
		}
		factor := m * previewShrink

		pw = int(float64(pw) * factor)
		ph = int(float64(ph) * factor)
		if pw < previewMinW {
			pw = previewMinW
		}
		if ph < previewMinH {
			ph = previewMinH
		}
	}

	x, y := prev.X, prev.Y
	if x < 0 {
		x = p.W + x - pw
	}
	if y < 0 {
		y = p.H + y - ph
	}
	x = clampRange(x, 0, p.W-pw)
	y = clampRange(y, 0, p.H-ph)
	x, y = evenFloor(x), evenFloor(y)
	pw, ph = evenFloor(pw), evenFloor(ph)
	if pw <= 0 || ph <= 0 {
		return nil
	}

	if err := yuv.ScaleBlitNV12(p.Y, p.UV, p.YStride, p.UVStride, x, y, pw, ph, src.Bytes, src.Width, src.Height); err != nil {
		return fmt.Errorf("blocking: preview scale: %w", err)
	}
	drawPreviewBorder(p, x, y, pw, ph)
	return nil
}

// drawPreviewBorder draws a previewBorderWidth-pixel white border around the
// preview rectangle.
func drawPreviewBorder(p overlay.Planes, x, y, w, h int) {
	set := func(px, py int) {
		if px < 0 || px >= p.W || py < 0 || py >= p.H {
			return
		}
		p.Y[py*p.YStride+px] = previewBorderY
		if px%2 == 0 && py%2 == 0 {
			off := (py/2)*p.UVStride + px
			if off+1 < len(p.UV) {
				p.UV[off] = 128
				p.UV[off+1] = 128
			}
		}
	}
	for t := 0; t < previewBorderWidth; t++ {
		for px := x; px < x+w; px++ {
			set(px, y+t)
			set(px, y+h-1-t)
		}
		for py := y; py < y+h; py++ {
			set(x+t, py)
			set(x+w-1-t, py)
		}
	}
}

// drawVocab draws the vocabulary text block: centred horizontally, placed
// in the upper 60% of the frame, centred within that band (§4.6 step 4).
func drawVocab(p overlay.Planes, fonts *overlay.FontSet, log logging.Logger, snap Config) {
	lines := strings.Split(snap.TextVocab, "\n")
	tw, th, _ := overlay.MeasureText(fonts, log, lines, snap.VocabScale)

	x := (p.W - tw) / 2
	y := (p.H*6/10 - th) / 2
	x, y = clampEdge(x, y, tw, th, p.W, p.H)

	overlay.DrawTextBox(p, fonts, log, lines, snap.VocabScale, x-textBoxPadding, y-textBoxPadding, textBoxPadding, snap.TextColor, snap.BoxColor, true, snap.BoxAlpha)
}

// drawStats draws the stats text block at a fixed near-bottom-left position,
// clamped away from the top edge (§4.6 step 5).
func drawStats(p overlay.Planes, fonts *overlay.FontSet, log logging.Logger, snap Config) {
	lines := strings.Split(snap.TextStats, "\n")
	_, th, _ := overlay.MeasureText(fonts, log, lines, snap.StatsScale)

	x := 20
	y := p.H - th - 30
	if y < edgeMargin {
		y = edgeMargin
	}

	overlay.DrawTextBox(p, fonts, log, lines, snap.StatsScale, x-textBoxPadding, y-textBoxPadding, textBoxPadding, snap.TextColor, snap.BoxColor, true, snap.BoxAlpha)
}

// clampEdge keeps a (x,y,w,h) text rectangle at least edgeMargin pixels from
// every frame edge.
func clampEdge(x, y, w, h, frameW, frameH int) (int, int) {
	if x < edgeMargin {
		x = edgeMargin
	}
	if y < edgeMargin {
		y = edgeMargin
	}
	if x+w > frameW-edgeMargin {
		x = frameW - edgeMargin - w
	}
	if y+h > frameH-edgeMargin {
		y = frameH - edgeMargin - h
	}
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	return x, y
}
