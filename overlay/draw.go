/*
DESCRIPTION
  draw.go implements the text-overlay drawing primitive of §4.5: dimension
  measurement (bitmap or TrueType), in-frame positioning, and per-pixel
  alpha-blended rendering onto NV12 Y/UV planes. MeasureText and DrawTextBox
  are exported so the blocking compositor's vocabulary/stats text (§4.6),
  which uses its own positioning rules, can reuse the same rasterisation path
  instead of duplicating it.

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

package overlay

import (
	"image"
	"image/color"
	"strings"
	"sync"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"

	"github.com/ausocean/utils/logging"
)

// Planes is a view over a destination NV12 buffer's Y and UV planes, as
// passed from the hardware encoder adapter's DMA frame buffer (§4.4 step 3).
type Planes struct {
	Y, UV             []byte
	YStride, UVStride int
	W, H              int // Luma width/height; chroma is half-height, full-width.
}

// Draw renders the current overlay configuration onto p. It is a no-op if
// overlay is disabled or text is empty. On any font error it logs once and
// falls back to the bitmap renderer, per §7.
func (o *Overlay) Draw(p Planes) error {
	snap := o.Snapshot()
	if !snap.Enabled || snap.Text == "" {
		return nil
	}
	lines := strings.Split(snap.Text, "\n")

	tw, th, _ := MeasureText(o.fonts, o.log, lines, snap.Scale)
	boxW, boxH := tw+2*snap.Padding, th+2*snap.Padding
	x0, y0 := position(snap, boxW, boxH, p.W, p.H)

	_, _, err := DrawTextBox(p, o.fonts, o.log, lines, snap.Scale, x0, y0, snap.Padding, snap.Fg, snap.Bg, snap.DrawBg, snap.BgAlpha)
	return err
}

// bitmapDimensions returns the box size the bitmap fallback font would use
// for lines at the given scale: §4.5's "width = max_line_chars * 8 * scale,
// height = line_count * 8 * scale".
func bitmapDimensions(lines []string, scale int) (w, h int) {
	maxChars := 0
	for _, l := range lines {
		if n := len([]rune(l)); n > maxChars {
			maxChars = n
		}
	}
	return maxChars * GlyphSize * scale, len(lines) * GlyphSize * scale
}

// ttfDimensions measures lines against face: width accumulates
// advance.x>>6 per §4.5's TTF path, height is line_count * (face.height>>6).
func ttfDimensions(lines []string, face *truetype.Font, pixelSize float64) (w, h int, lineHeight, ascent int) {
	fc := truetype.NewFace(face, &truetype.Options{Size: pixelSize, DPI: 72})
	defer fc.Close()
	metrics := fc.Metrics()
	lineHeight = metrics.Height.Round()
	ascent = metrics.Ascent.Round()
	for _, line := range lines {
		var adv int
		for _, r := range line {
			a, ok := fc.GlyphAdvance(r)
			if !ok {
				continue
			}
			adv += a.Round()
		}
		if adv > w {
			w = adv
		}
	}
	h = lineHeight * len(lines)
	return
}

// MeasureText returns the pixel size lines would occupy at scale: the
// TrueType bold face's metrics if fonts provides one and it loads, else the
// built-in bitmap font's fixed 8x8 cell. useTTF reports which path was used,
// mainly for tests.
func MeasureText(fonts *FontSet, log logging.Logger, lines []string, scale int) (w, h int, useTTF bool) {
	if fonts != nil {
		if f, err := fonts.Bold(); err == nil {
			ttfMu.Lock()
			w, h, _, _ = ttfDimensions(lines, f, float64(BaseFontSize*scale))
			ttfMu.Unlock()
			return w, h, true
		}
	}
	w, h = bitmapDimensions(lines, scale)
	return w, h, false
}

// fontFallbackLogged makes the bitmap-fallback warning a once-per-process
// log line rather than one per frame.
var fontFallbackLogged sync.Once

// DrawTextBox draws lines at top-left (x0, y0), optionally preceded by a
// solid alpha-blended background box, using the TrueType bold face if
// available, else the bitmap fallback (§7: font errors degrade silently to
// bitmap, logged once). It returns the full box dimensions actually used
// (text size plus 2*padding on each axis).
func DrawTextBox(p Planes, fonts *FontSet, log logging.Logger, lines []string, scale, x0, y0, padding int, fg, bg Color, drawBg bool, bgAlpha byte) (boxW, boxH int, err error) {
	var f *truetype.Font
	if fonts != nil {
		var ferr error
		f, ferr = fonts.Bold()
		if ferr != nil {
			if log != nil {
				fontFallbackLogged.Do(func() {
					log.Warning("overlay: falling back to bitmap font", "error", ferr.Error())
				})
			}
			f = nil
		}
	}

	var tw, th int
	if f != nil {
		ttfMu.Lock()
		tw, th, _, _ = ttfDimensions(lines, f, float64(BaseFontSize*scale))
		ttfMu.Unlock()
	} else {
		tw, th = bitmapDimensions(lines, scale)
	}
	boxW, boxH = tw+2*padding, th+2*padding

	if drawBg {
		drawBoxNV12(p, x0, y0, boxW, boxH, bg, bgAlpha)
	}

	tx, ty := x0+padding, y0+padding
	if f == nil {
		drawBitmapLines(p, lines, scale, tx, ty, fg)
		return boxW, boxH, nil
	}

	ttfMu.Lock()
	defer ttfMu.Unlock()
	pixelSize := float64(BaseFontSize * scale)
	_, _, lineHeight, ascent := ttfDimensions(lines, f, pixelSize)

	mask := image.NewAlpha(image.Rect(0, 0, tw+1, th+1))
	fc := freetype.NewContext()
	fc.SetDPI(72)
	fc.SetFont(f)
	fc.SetFontSize(pixelSize)
	fc.SetClip(mask.Bounds())
	fc.SetDst(mask)
	fc.SetSrc(image.NewUniform(color.Alpha{A: 255}))

	y := ascent
	for _, line := range lines {
		if _, derr := fc.DrawString(line, freetype.Pt(0, y)); derr != nil {
			return boxW, boxH, derr
		}
		y += lineHeight
	}
	blendMask(p, mask, tx, ty, fg)
	return boxW, boxH, nil
}

func drawBitmapLines(p Planes, lines []string, scale, tx, ty int, fg Color) {
	y := ty
	for _, line := range lines {
		x := tx
		for _, r := range line {
			drawGlyphNV12(p, Glyph(r), x, y, scale, fg)
			x += GlyphSize * scale
		}
		y += GlyphSize * scale
	}
}

// position clamps a box of size (boxW, boxH) into the frame given the
// configured anchor, per §4.5's "clamp to frame bounds so the box is fully
// in-frame".
func position(snap Config, boxW, boxH, frameW, frameH int) (x, y int) {
	switch snap.Position {
	case TopLeft:
		x, y = 0, 0
	case TopRight:
		x, y = frameW-boxW, 0
	case BottomLeft:
		x, y = 0, frameH-boxH
	case BottomRight:
		x, y = frameW-boxW, frameH-boxH
	case Center:
		x, y = (frameW-boxW)/2, (frameH-boxH)/2
	case Custom:
		x, y = snap.X, snap.Y
	}
	return clampBox(x, y, boxW, boxH, frameW, frameH)
}

// clampBox clamps a (x,y,boxW,boxH) rectangle so it lies fully within
// [0,frameW) x [0,frameH).
func clampBox(x, y, boxW, boxH, frameW, frameH int) (int, int) {
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	if x+boxW > frameW {
		x = frameW - boxW
	}
	if y+boxH > frameH {
		y = frameH - boxH
	}
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	return x, y
}

// blendFgY implements the per-pixel foreground blend of §4.5:
// Y' = (α·fg + (255-α)·orig)/255.
func blendFgY(alpha int, fg, orig byte) byte {
	return byte((alpha*int(fg) + (255-alpha)*int(orig)) / 255)
}

// blendBgY implements the single-level background-box blend of §4.5:
// Y' = (α·bg + (256-α)·orig) >> 8.
func blendBgY(alpha int, bg, orig byte) byte {
	return byte((alpha*int(bg) + (256-alpha)*int(orig)) >> 8)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// drawBoxNV12 draws a solid alpha-blended background box, blending UV once
// per 2x2 block at even destination coordinates (§4.5, §9 Open Questions).
func drawBoxNV12(p Planes, x0, y0, w, h int, bg Color, alpha byte) {
	x0c, y0c := clampInt(x0, 0, p.W), clampInt(y0, 0, p.H)
	x1, y1 := clampInt(x0+w, 0, p.W), clampInt(y0+h, 0, p.H)
	a := int(alpha)

	for y := y0c; y < y1; y++ {
		row := y * p.YStride
		for x := x0c; x < x1; x++ {
			p.Y[row+x] = blendBgY(a, bg.Y, p.Y[row+x])
		}
	}
	for y := y0c &^ 1; y < y1; y += 2 {
		urow := (y / 2) * p.UVStride
		for x := x0c &^ 1; x+1 < x1; x += 2 {
			if urow+x+1 >= len(p.UV) {
				continue
			}
			p.UV[urow+x] = blendBgY(a, bg.U, p.UV[urow+x])
			p.UV[urow+x+1] = blendBgY(a, bg.V, p.UV[urow+x+1])
		}
	}
}

// drawGlyphNV12 draws one bitmap glyph scaled by replicating each source
// pixel scale x scale times, per §4.5.
func drawGlyphNV12(p Planes, g glyph, x0, y0, scale int, fg Color) {
	for gy := 0; gy < GlyphSize; gy++ {
		row := g[gy]
		for gx := 0; gx < GlyphSize; gx++ {
			if row&(1<<uint(7-gx)) == 0 {
				continue
			}
			for sy := 0; sy < scale; sy++ {
				py := y0 + gy*scale + sy
				if py < 0 || py >= p.H {
					continue
				}
				for sx := 0; sx < scale; sx++ {
					px := x0 + gx*scale + sx
					if px < 0 || px >= p.W {
						continue
					}
					idx := py*p.YStride + px
					p.Y[idx] = blendFgY(255, fg.Y, p.Y[idx])
					if px%2 == 0 && py%2 == 0 {
						uvOff := (py/2)*p.UVStride + px
						if uvOff+1 < len(p.UV) {
							p.UV[uvOff] = blendFgY(255, fg.U, p.UV[uvOff])
							p.UV[uvOff+1] = blendFgY(255, fg.V, p.UV[uvOff+1])
						}
					}
				}
			}
		}
	}
}

// blendMask alpha-blends a rasterised text mask onto p at offset (x0, y0),
// one 2x2 UV block per even (x,y) as drawGlyphNV12 does.
func blendMask(p Planes, mask *image.Alpha, x0, y0 int, fg Color) {
	b := mask.Bounds()
	for my := b.Min.Y; my < b.Max.Y; my++ {
		py := y0 + my
		if py < 0 || py >= p.H {
			continue
		}
		for mx := b.Min.X; mx < b.Max.X; mx++ {
			a := int(mask.AlphaAt(mx, my).A)
			if a == 0 {
				continue
			}
			px := x0 + mx
			if px < 0 || px >= p.W {
				continue
			}
			idx := py*p.YStride + px
			p.Y[idx] = blendFgY(a, fg.Y, p.Y[idx])
			if px%2 == 0 && py%2 == 0 {
				uvOff := (py/2)*p.UVStride + px
				if uvOff+1 < len(p.UV) {
					p.UV[uvOff] = blendFgY(a, fg.U, p.UV[uvOff])
					p.UV[uvOff+1] = blendFgY(a, fg.V, p.UV[uvOff+1])
				}
			}
		}
	}
}
