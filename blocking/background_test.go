/*
NAME
  background_test.go

DESCRIPTION
  background_test.go exercises JPEG and raw NV12 background upload, including
  the oversized-image downscale path.

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
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"testing"
)

func encodeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{128, 64, 200, 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("jpeg.Encode: %v", err)
	}
	return buf.Bytes()
}

func TestUploadBackgroundJPEGInstallsNV12(t *testing.T) {
	b := New(nil, nil, NewRawFrameCache())
	data := encodeJPEG(t, 16, 16)
	if err := b.UploadBackgroundJPEG(data); err != nil {
		t.Fatalf("UploadBackgroundJPEG: %v", err)
	}
	snap := b.Snapshot()
	if !snap.BgValid || snap.BgW != 16 || snap.BgH != 16 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	want := 16*16 + 16*8
	if len(snap.Background) != want {
		t.Fatalf("background len = %d, want %d", len(snap.Background), want)
	}
}

func TestUploadBackgroundJPEGOversizedIsDownscaled(t *testing.T) {
	b := New(nil, nil, NewRawFrameCache())
	data := encodeJPEG(t, MaxBackgroundW+200, MaxBackgroundH+200)
	if err := b.UploadBackgroundJPEG(data); err != nil {
		t.Fatalf("UploadBackgroundJPEG: %v", err)
	}
	snap := b.Snapshot()
	if snap.BgW > MaxBackgroundW || snap.BgH > MaxBackgroundH {
		t.Fatalf("oversized background was not downscaled: %dx%d", snap.BgW, snap.BgH)
	}
	if !snap.BgValid {
		t.Fatal("expected downscaled background to be installed")
	}
}

func TestUploadBackgroundJPEGFailureLeavesPriorIntact(t *testing.T) {
	b := New(nil, nil, NewRawFrameCache())
	if err := b.UploadBackgroundJPEG(encodeJPEG(t, 8, 8)); err != nil {
		t.Fatalf("initial upload: %v", err)
	}
	if err := b.UploadBackgroundJPEG([]byte("not a jpeg")); err == nil {
		t.Fatal("expected decode error for garbage input")
	}
	if snap := b.Snapshot(); snap.BgW != 8 || snap.BgH != 8 {
		t.Fatalf("prior background was not left intact: %+v", snap)
	}
}

func TestUploadBackgroundRawNV12(t *testing.T) {
	b := New(nil, nil, NewRawFrameCache())
	raw := make([]byte, 4*4+4*2)
	for i := range raw {
		raw[i] = byte(i)
	}
	if err := b.UploadBackgroundRaw(raw, 4, 4); err != nil {
		t.Fatalf("UploadBackgroundRaw: %v", err)
	}
	snap := b.Snapshot()
	if !snap.BgValid || snap.BgW != 4 || snap.BgH != 4 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}

func TestUploadBackgroundRawRejectsShortBody(t *testing.T) {
	b := New(nil, nil, NewRawFrameCache())
	if err := b.UploadBackgroundRaw([]byte{1, 2, 3}, 4, 4); err == nil {
		t.Fatal("expected error for short raw NV12 body")
	}
}

func TestLooksLikeJPEG(t *testing.T) {
	if !LooksLikeJPEG([]byte{0xFF, 0xD8, 0xFF, 0xE0}) {
		t.Fatal("expected true for SOI-prefixed data")
	}
	if LooksLikeJPEG([]byte{0x00, 0x01}) {
		t.Fatal("expected false for non-JPEG data")
	}
}
