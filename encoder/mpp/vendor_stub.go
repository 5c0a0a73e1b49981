//go:build !mpp
// +build !mpp

/*
DESCRIPTION
  vendor_stub.go replaces the cgo vendor session when mjpegd is built without
  the "mpp" tag, mirroring filter/filters_circleci.go's NoOp replacement for
  gocv-backed filters. This lets the package (and everything above it:
  workerpool, httpapi, cmd/mjpegd) build and test on a machine without the
  Rockchip MPP SDK installed; Adapter.Compress surfaces ErrReconfigure
  exactly as it would for a real context-creation failure on the target
  device.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package mpp

import "errors"

// errNoHardware is wrapped into encoder.ErrReconfigure by adapter.go; it is
// not itself exported since it is only ever seen through that wrap.
var errNoHardware = errors.New("mpp: built without the \"mpp\" tag, no vendor VPU available")

type stubSession struct{}

var _ session = stubSession{}

func newVendorSession() (session, error) { return nil, errNoHardware }

func (stubSession) Configure(cfg encodeConfig) error       { return errNoHardware }
func (stubSession) NewBufferGroup() (bufferGroup, error) { return nil, errNoHardware }
func (stubSession) Encode(frame, packet buffer, cfg encodeConfig) (int, error) {
	return 0, errNoHardware
}
func (stubSession) Close() error { return nil }
