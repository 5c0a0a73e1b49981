/*
NAME
  cpujpeg_test.go

DESCRIPTION
  cpujpeg_test.go exercises the software JPEG adapter against §8's format
  sanity and round-trip scenarios.

AUTHOR
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package cpujpeg

import (
	"bytes"
	"image/jpeg"
	"testing"

	"github.com/ausocean/hwjpeg/pixfmt"
	"github.com/ausocean/hwjpeg/scale"
)

func greyNV12(w, h int) *pixfmt.Frame {
	f, err := pixfmt.New(pixfmt.NV12, w, h)
	if err != nil {
		panic(err)
	}
	for i := range f.Bytes {
		f.Bytes[i] = 128
	}
	return f
}

// TestCompressGreyFrame matches scenario 1 of the spec's end-to-end tests,
// and the §8 round-trip invariant: a uniformly grey NV12 frame at
// quality>=90 decodes back to a mean luma within 2 of 128.
func TestCompressGreyFrame(t *testing.T) {
	a := New(90, scale.P2160, nil, nil, nil)
	src := greyNV12(1920, 1080)
	dst := &pixfmt.Frame{}
	if err := a.Compress(src, dst); err != nil {
		t.Fatalf("Compress: %v", err)
	}
	if len(dst.Bytes) < 1024 {
		t.Fatalf("packet too small: %d bytes", len(dst.Bytes))
	}
	if !bytes.HasPrefix(dst.Bytes, []byte{0xFF, 0xD8, 0xFF}) {
		t.Fatalf("packet does not start with FF D8 FF: %x", dst.Bytes[:3])
	}
	if !bytes.HasSuffix(dst.Bytes, []byte{0xFF, 0xD9}) {
		t.Fatalf("packet does not end with EOI")
	}

	img, err := jpeg.Decode(bytes.NewReader(dst.Bytes))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	var sum, n int
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y += 4 {
		for x := b.Min.X; x < b.Max.X; x += 4 {
			yy, _, _, _ := img.At(x, y).RGBA()
			sum += int(yy >> 8)
			n++
		}
	}
	mean := sum / n
	if mean < 126 || mean > 130 {
		t.Fatalf("mean luma = %d, want within [126,130]", mean)
	}
}

func TestCompressIdempotent(t *testing.T) {
	a := New(90, scale.P2160, nil, nil, nil)
	src := greyNV12(320, 240)

	dst1 := &pixfmt.Frame{}
	if err := a.Compress(src, dst1); err != nil {
		t.Fatalf("first Compress: %v", err)
	}
	dst2 := &pixfmt.Frame{}
	if err := a.Compress(src, dst2); err != nil {
		t.Fatalf("second Compress: %v", err)
	}
	if !bytes.Equal(dst1.Bytes, dst2.Bytes) {
		t.Fatal("two compresses of the identical source frame produced different packets")
	}
}

func TestCompressIsKeyAndGOP(t *testing.T) {
	a := New(80, scale.P2160, nil, nil, nil)
	dst := &pixfmt.Frame{}
	if err := a.Compress(greyNV12(64, 64), dst); err != nil {
		t.Fatalf("Compress: %v", err)
	}
	if !dst.IsKey || dst.GOP != 0 {
		t.Fatalf("IsKey=%v GOP=%d, want true/0", dst.IsKey, dst.GOP)
	}
}
