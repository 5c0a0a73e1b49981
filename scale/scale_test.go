/*
NAME
  scale_test.go

DESCRIPTION
  scale_test.go exercises ParsePolicy and Resolve's per-policy clamping.

AUTHOR
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package scale

import (
	"testing"

	"github.com/ausocean/hwjpeg/pixfmt"
)

func TestParsePolicy(t *testing.T) {
	cases := []struct {
		in   string
		want Policy
		ok   bool
	}{
		{"native", Native, true},
		{"1080p", P1080, true},
		{"2k", P1440, true},
		{"1440p", P1440, true},
		{"4k", P2160, true},
		{"garbage", Native, false},
	}
	for _, c := range cases {
		got, ok := ParsePolicy(c.in)
		if got != c.want || ok != c.ok {
			t.Errorf("ParsePolicy(%q) = (%v, %v), want (%v, %v)", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestResolveNativeDownscalesOnly4KNV12(t *testing.T) {
	tw, th, need := Resolve(Native, 3840, 2160, pixfmt.NV12)
	if tw != 1920 || th != 1080 || !need {
		t.Fatalf("got (%d,%d,%v), want (1920,1080,true)", tw, th, need)
	}

	tw, th, need = Resolve(Native, 1280, 720, pixfmt.NV12)
	if tw != 1280 || th != 720 || need {
		t.Fatalf("sub-4K input should pass through unchanged, got (%d,%d,%v)", tw, th, need)
	}
}

func TestResolveNeverUpscales(t *testing.T) {
	tw, th, need := Resolve(P1440, 640, 480, pixfmt.NV12)
	if tw != 640 || th != 480 || need {
		t.Fatalf("small input under P1440 must not be upscaled, got (%d,%d,%v)", tw, th, need)
	}
}

func TestResolveP2160NeverChangesGeometry(t *testing.T) {
	tw, th, need := Resolve(P2160, 3840, 2160, pixfmt.NV12)
	if tw != 3840 || th != 2160 || need {
		t.Fatalf("P2160 must pass geometry through, got (%d,%d,%v)", tw, th, need)
	}
}

func TestResolveP1080Clamps(t *testing.T) {
	tw, th, need := Resolve(P1080, 3840, 2160, pixfmt.JPEG)
	if tw != 1920 || th != 1080 || !need {
		t.Fatalf("got (%d,%d,%v), want (1920,1080,true)", tw, th, need)
	}
}
