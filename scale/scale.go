/*
DESCRIPTION
  scale.go implements the global, user-selectable target-resolution policy
  that the hardware encoder adapter consults on every compress call to decide
  whether (and to what) an input frame must be downscaled.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package scale resolves a target output resolution from a ScalePolicy and
// an input frame's geometry. It never upscales.
package scale

import "github.com/ausocean/hwjpeg/pixfmt"

// Policy is a configuration token selecting a target-resolution rule.
type Policy int

const (
	// Native passes 4K NV12 input through to 1080p and otherwise leaves
	// input dimensions unchanged.
	Native Policy = iota
	// P1080 clamps both dimensions to 1920x1080.
	P1080
	// P1440 clamps both dimensions to 2560x1440.
	P1440
	// P2160 never changes the input geometry.
	P2160
)

func (p Policy) String() string {
	switch p {
	case Native:
		return "native"
	case P1080:
		return "1080p"
	case P1440:
		return "1440p"
	case P2160:
		return "4k"
	default:
		return "unknown"
	}
}

// ParsePolicy converts the CLI token (--encode-scale) into a Policy.
func ParsePolicy(s string) (Policy, bool) {
	switch s {
	case "native":
		return Native, true
	case "1080p":
		return P1080, true
	case "2k", "1440p":
		return P1440, true
	case "4k":
		return P2160, true
	default:
		return Native, false
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Resolve maps (policy, input geometry, input format) to a target geometry
// and whether that target differs from the input (needsDownscale). Resolve
// never upscales: both returned dimensions are always <= the input
// dimensions.
func Resolve(p Policy, w, h int, format pixfmt.Format) (tw, th int, needsDownscale bool) {
	switch p {
	case P1080:
		tw, th = min(w, 1920), min(h, 1080)
	case P1440:
		tw, th = min(w, 2560), min(h, 1440)
	case P2160:
		tw, th = w, h
	case Native:
		if w >= 3840 && h >= 2160 && format == pixfmt.NV12 {
			tw, th = 1920, 1080
		} else {
			tw, th = w, h
		}
	default:
		tw, th = w, h
	}
	return tw, th, tw != w || th != h
}
