/*
DESCRIPTION
  align.go provides the stride alignment arithmetic shared by the hardware
  encoder adapter's buffer sizing and the NV12 scaler's destination layout.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package yuv implements nearest-neighbour downscaling and stride-aligned
// copying for semi-planar 4:2:0 (NV12) frames, as used to move a captured
// frame into the hardware encoder's DMA-visible input buffer.
package yuv

// Align16 rounds x up to the nearest multiple of 16, the alignment the
// vendor VPU requires for its horizontal and vertical strides.
func Align16(x int) int {
	return (x + 15) &^ 15
}

// evenFloor rounds x down to the nearest even number.
func evenFloor(x int) int {
	return x &^ 1
}
