/*
DESCRIPTION
  background.go implements background image upload for the blocking
  compositor (§4.6 "Background upload"): JPEG decode to 24-bit RGB, BT.601
  limited-range conversion to NV12, and the raw-NV12 upload path used when
  the HTTP body isn't JPEG (§6).

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package blocking

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"

	"golang.org/x/image/draw"
)

// Error kinds for background upload, per §7.
var (
	ErrDecodeError = errors.New("blocking: jpeg decode failed")
	ErrTooLarge    = errors.New("blocking: decoded background exceeds 4K 4:2:0")
)

// jpegMagic is the byte prefix used by §6's "autodetected by magic" upload
// path to distinguish a JPEG body from a raw NV12 body.
var jpegMagic = []byte{0xFF, 0xD8}

// LooksLikeJPEG reports whether data begins with the JPEG SOI marker.
func LooksLikeJPEG(data []byte) bool {
	return len(data) >= 2 && bytes.Equal(data[:2], jpegMagic)
}

// UploadBackgroundJPEG decodes a JPEG byte stream, converts it to NV12 using
// BT.601 limited-range coefficients, and installs it as the background. On
// failure the previous background is left intact (§7).
func (b *Blocking) UploadBackgroundJPEG(data []byte) error {
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDecodeError, err)
	}
	w, h := evenFloor(img.Bounds().Dx()), evenFloor(img.Bounds().Dy())
	if w <= 0 || h <= 0 {
		return fmt.Errorf("%w: image too small", ErrDecodeError)
	}

	// An oversized upload is downscaled to fit within the 4K 4:2:0 budget
	// rather than rejected outright, using the same draw.CatmullRom scaler
	// golang.org/x/image/draw exposes for photographic resampling.
	if w > MaxBackgroundW || h > MaxBackgroundH {
		w, h = fitWithin(w, h, MaxBackgroundW, MaxBackgroundH)
		img = resizeRGBA(img, w, h)
	}
	if w*h*3/2 > MaxBackgroundBytes {
		return fmt.Errorf("%w: %dx%d", ErrTooLarge, w, h)
	}

	nv12 := rgbToNV12(img, w, h)

	b.mu.Lock()
	b.cfg.Background = nv12
	b.cfg.BgW, b.cfg.BgH = w, h
	b.cfg.BgValid = true
	b.mu.Unlock()
	return nil
}

// UploadBackgroundRaw installs a raw NV12 byte stream of shape (w, h) as the
// background, per the §6 "raw NV12 with query ?width&height" path.
func (b *Blocking) UploadBackgroundRaw(data []byte, w, h int) error {
	if w <= 0 || h <= 0 {
		return fmt.Errorf("%w: non-positive dimension", ErrDecodeError)
	}
	if w*h*3/2 > MaxBackgroundBytes {
		return fmt.Errorf("%w: %dx%d", ErrTooLarge, w, h)
	}
	want := w*h + w*(h/2)
	if len(data) < want {
		return fmt.Errorf("%w: have %d bytes, want %d", ErrDecodeError, len(data), want)
	}

	buf := make([]byte, want)
	copy(buf, data[:want])

	b.mu.Lock()
	b.cfg.Background = buf
	b.cfg.BgW, b.cfg.BgH = w, h
	b.cfg.BgValid = true
	b.mu.Unlock()
	return nil
}

// evenFloor rounds x down to the nearest even number.
func evenFloor(x int) int { return x &^ 1 }

// fitWithin scales (w, h) down to fit within (maxW, maxH), preserving aspect
// ratio, and rounds both dimensions down to even.
func fitWithin(w, h, maxW, maxH int) (int, int) {
	wf := float64(maxW) / float64(w)
	hf := float64(maxH) / float64(h)
	f := wf
	if hf < f {
		f = hf
	}
	return evenFloor(int(float64(w) * f)), evenFloor(int(float64(h) * f))
}

// resizeRGBA resamples img to (w, h) using a Catmull-Rom kernel, the
// photographic-quality resampler golang.org/x/image/draw provides.
func resizeRGBA(img image.Image, w, h int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
	return dst
}

func clampByte(v, lo, hi int) byte {
	if v < lo {
		v = lo
	}
	if v > hi {
		v = hi
	}
	return byte(v)
}

// rgbToNV12 converts img's RGB pixels to NV12 bytes of shape (w, h) using
// BT.601 limited-range coefficients: Y is sampled at every pixel, U/V at
// every even (x,y) pixel block, per §4.6's Background upload formulas.
func rgbToNV12(img image.Image, w, h int) []byte {
	b := img.Bounds()
	y := make([]byte, w*h)
	uv := make([]byte, w*(h/2))

	for yy := 0; yy < h; yy++ {
		for xx := 0; xx < w; xx++ {
			rr, gg, bb, _ := img.At(b.Min.X+xx, b.Min.Y+yy).RGBA()
			r, g, bl := int(rr>>8), int(gg>>8), int(bb>>8)

			y[yy*w+xx] = clampByte((66*r+129*g+25*bl+128)/256+16, 16, 235)

			if xx%2 == 0 && yy%2 == 0 {
				u := clampByte((-38*r-74*g+112*bl+128)/256+128, 16, 240)
				v := clampByte((112*r-94*g-18*bl+128)/256+128, 16, 240)
				off := (yy/2)*w + xx
				uv[off] = u
				uv[off+1] = v
			}
		}
	}
	return append(y, uv...)
}
