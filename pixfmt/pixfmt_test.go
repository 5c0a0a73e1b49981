/*
NAME
  pixfmt_test.go

DESCRIPTION
  pixfmt_test.go exercises the byte-count and plane-offset arithmetic for
  semi-planar, packed and opaque formats.

AUTHOR
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package pixfmt

import "testing"

func TestBytesPerFrameNV12(t *testing.T) {
	n, err := BytesPerFrame(NV12, 4, 4, 4)
	if err != nil {
		t.Fatalf("BytesPerFrame: %v", err)
	}
	if want := 4*4 + 4*2; n != want {
		t.Fatalf("got %d, want %d", n, want)
	}
}

func TestBytesPerFramePacked(t *testing.T) {
	n, err := BytesPerFrame(RGB24, 4, 4, 4)
	if err != nil {
		t.Fatalf("BytesPerFrame: %v", err)
	}
	if want := 4 * 4 * 3; n != want {
		t.Fatalf("got %d, want %d", n, want)
	}
}

func TestUsedBytesJPEGUnsupported(t *testing.T) {
	if _, err := UsedBytes(JPEG, 4, 4); err == nil {
		t.Fatal("expected error for JPEG, size is not a pure function of geometry")
	}
}

func TestPlaneOffsetsSemiplanar(t *testing.T) {
	yOff, uvOff, ok, err := PlaneOffsets(NV12, 4, 4, 4)
	if err != nil {
		t.Fatalf("PlaneOffsets: %v", err)
	}
	if !ok || yOff != 0 || uvOff != 16 {
		t.Fatalf("got (y=%d, uv=%d, ok=%v), want (0, 16, true)", yOff, uvOff, ok)
	}
}

func TestPlaneOffsetsPacked(t *testing.T) {
	_, _, ok, err := PlaneOffsets(RGB24, 4, 4, 4)
	if err != nil {
		t.Fatalf("PlaneOffsets: %v", err)
	}
	if ok {
		t.Fatal("packed formats have no second plane")
	}
}

func TestIsSemiplanarYUV(t *testing.T) {
	for _, f := range []Format{NV12, NV16, NV24} {
		if !IsSemiplanarYUV(f) {
			t.Errorf("%v should be semi-planar", f)
		}
	}
	for _, f := range []Format{YUYV, UYVY, RGB24, BGR24, JPEG} {
		if IsSemiplanarYUV(f) {
			t.Errorf("%v should not be semi-planar", f)
		}
	}
}

func TestUsedBytesNV12MatchesNaturalStride(t *testing.T) {
	n, err := UsedBytes(NV12, 6, 4)
	if err != nil {
		t.Fatalf("UsedBytes: %v", err)
	}
	if want := 6*4 + 6*2; n != want {
		t.Fatalf("got %d, want %d", n, want)
	}
}

func TestFormatString(t *testing.T) {
	if NV12.String() != "NV12" {
		t.Fatalf("got %q, want NV12", NV12.String())
	}
	if Format(99).String() != "Unknown" {
		t.Fatalf("unrecognised format should stringify to Unknown")
	}
}
