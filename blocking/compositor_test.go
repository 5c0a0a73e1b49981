/*
NAME
  compositor_test.go

DESCRIPTION
  compositor_test.go exercises Composite's neutral-fill fallback, background
  scaling and raw-frame archiving.

AUTHOR
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
	"testing"

	"github.com/ausocean/hwjpeg/pixfmt"
)

func nv12Buf(w, h int) []byte {
	return make([]byte, w*h+w*(h/2))
}

func TestCompositeFillsNeutralWithoutBackground(t *testing.T) {
	raw := NewRawFrameCache()
	b := New(nil, nil, raw)

	w, h := 16, 16
	dst := nv12Buf(w, h)
	src := &pixfmt.Frame{Bytes: nv12Buf(w, h), Width: w, Height: h, Stride: w, Format: pixfmt.NV12}

	if err := b.Composite(dst, w, h, w, h, src); err != nil {
		t.Fatalf("Composite: %v", err)
	}
	for i := 0; i < w*h; i++ {
		if dst[i] != neutralY {
			t.Fatalf("Y[%d] = %d, want neutral %d", i, dst[i], neutralY)
		}
	}
}

func TestCompositeArchivesRawFrame(t *testing.T) {
	raw := NewRawFrameCache()
	b := New(nil, nil, raw)

	w, h := 8, 8
	dst := nv12Buf(w, h)
	srcBytes := nv12Buf(w, h)
	for i := range srcBytes {
		srcBytes[i] = byte(i)
	}
	src := &pixfmt.Frame{Bytes: srcBytes, Width: w, Height: h, Stride: w, Format: pixfmt.NV12}

	if err := b.Composite(dst, w, h, w, h, src); err != nil {
		t.Fatalf("Composite: %v", err)
	}

	g := raw.Borrow()
	defer g.Release()
	if !g.Valid {
		t.Fatal("expected raw cache to be populated by Composite")
	}
	if g.W != w || g.H != h {
		t.Fatalf("raw cache geometry = %dx%d, want %dx%d", g.W, g.H, w, h)
	}
}

func TestCompositeUsesBackgroundWhenValid(t *testing.T) {
	raw := NewRawFrameCache()
	b := New(nil, nil, raw)

	bgW, bgH := 4, 4
	bg := nv12Buf(bgW, bgH)
	for i := range bg[:bgW*bgH] {
		bg[i] = 200 // distinct from neutralY
	}
	cfg := b.Snapshot()
	cfg.Background = bg
	cfg.BgW, cfg.BgH = bgW, bgH
	cfg.BgValid = true
	if err := b.Set(cfg); err != nil {
		t.Fatalf("Set: %v", err)
	}

	w, h := 4, 4
	dst := nv12Buf(w, h)
	src := &pixfmt.Frame{Bytes: nv12Buf(w, h), Width: w, Height: h, Stride: w, Format: pixfmt.NV12}

	if err := b.Composite(dst, w, h, w, h, src); err != nil {
		t.Fatalf("Composite: %v", err)
	}
	if dst[0] != 200 {
		t.Fatalf("Y[0] = %d, want background value 200", dst[0])
	}
}
