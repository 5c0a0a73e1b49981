/*
NAME
  downscale_test.go

DESCRIPTION
  downscale_test.go contains tests for the yuv package.

AUTHOR
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package yuv

import "testing"

func TestAlign16(t *testing.T) {
	cases := []struct{ in, want int }{
		{0, 0}, {1, 16}, {15, 16}, {16, 16}, {17, 32}, {1920, 1920}, {1921, 1936},
	}
	for _, c := range cases {
		if got := Align16(c.in); got != c.want {
			t.Errorf("Align16(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}

func makeGreyNV12(w, h int) []byte {
	buf := make([]byte, w*h+w*(h/2))
	for i := 0; i < w*h; i++ {
		buf[i] = 0x80
	}
	for i := w * h; i < len(buf); i++ {
		buf[i] = 0x80
	}
	return buf
}

func TestDownscaleNV12Uniform(t *testing.T) {
	src := makeGreyNV12(64, 64)
	dstW, dstH := 32, 32
	stride := Align16(dstW)
	dst := make([]byte, Align16(dstH)*stride+stride*(dstH/2))
	if err := DownscaleNV12(dst, dstW, dstH, src, 64, 64); err != nil {
		t.Fatalf("DownscaleNV12: %v", err)
	}
	for y := 0; y < dstH; y++ {
		for x := 0; x < dstW; x++ {
			if got := dst[y*stride+x]; got != 0x80 {
				t.Fatalf("Y[%d][%d] = %#x, want 0x80", y, x, got)
			}
		}
	}
}

func TestDownscaleNV12EvenDimensionsAndUVPairing(t *testing.T) {
	src := makeGreyNV12(100, 60)
	for i := 100 * 60; i < len(src); i += 2 {
		src[i], src[i+1] = 0x40, 0xC0 // distinct U and V so a mispaired sample shows.
	}
	dstW, dstH := 33, 21 // odd, should floor to even.
	stride := Align16(evenFloor(dstW))
	uvOff := Align16(evenFloor(dstH)) * stride
	dst := make([]byte, uvOff+stride*(evenFloor(dstH)/2))
	if err := DownscaleNV12(dst, dstW, dstH, src, 100, 60); err != nil {
		t.Fatalf("DownscaleNV12: %v", err)
	}
	// Row 20 lies past the floored height of 20, so it must stay zero-filled.
	for x := 0; x < stride; x++ {
		if got := dst[20*stride+x]; got != 0 {
			t.Fatalf("Y[20][%d] = %#x, want 0: odd height not floored to even", x, got)
		}
	}
	for dy := 0; dy < evenFloor(dstH)/2; dy++ {
		for dx := 0; dx < evenFloor(dstW); dx += 2 {
			off := uvOff + dy*stride + dx
			if dst[off] != 0x40 || dst[off+1] != 0xC0 {
				t.Fatalf("UV[%d][%d] = (%#x,%#x), want (0x40,0xc0)", dy, dx, dst[off], dst[off+1])
			}
		}
	}
}

func TestCopyAlignedNV12MatchingStride(t *testing.T) {
	w, h := 16, 16 // already 16-aligned, exercises the fast block-copy path.
	src := makeGreyNV12(w, h)
	dst := make([]byte, w*h+w*(h/2))
	if err := CopyAlignedNV12(dst, src, w, h); err != nil {
		t.Fatalf("CopyAlignedNV12: %v", err)
	}
	for i, b := range dst {
		if b != 0x80 {
			t.Fatalf("dst[%d] = %#x, want 0x80", i, b)
		}
	}
}

func TestCopyAlignedNV12PaddedStride(t *testing.T) {
	w, h := 20, 16 // not 16-aligned, exercises the row-by-row path.
	src := makeGreyNV12(w, h)
	stride := Align16(w)
	dst := make([]byte, Align16(h)*stride+stride*(h/2))
	if err := CopyAlignedNV12(dst, src, w, h); err != nil {
		t.Fatalf("CopyAlignedNV12: %v", err)
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if got := dst[y*stride+x]; got != 0x80 {
				t.Fatalf("Y[%d][%d] = %#x, want 0x80", y, x, got)
			}
		}
		for x := w; x < stride; x++ {
			if got := dst[y*stride+x]; got != 0 {
				t.Fatalf("padding Y[%d][%d] = %#x, want 0 (zero-fill)", y, x, got)
			}
		}
	}
}

func TestDownscaleNV12RejectsShortSource(t *testing.T) {
	dst := make([]byte, 64*64*3/2)
	if err := DownscaleNV12(dst, 32, 32, make([]byte, 4), 64, 64); err == nil {
		t.Fatal("expected error for short source buffer")
	}
}
