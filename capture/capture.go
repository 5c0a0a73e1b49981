/*
DESCRIPTION
  capture.go defines Source, the external-collaborator interface the
  V4L2-class capture layer satisfies (§1's "Out of scope... V4L2 capture
  (delivers Frame values to the encoder)"), plus ManualSource, a test double
  in the style of device.ManualInput that lets the workerpool and httpapi
  packages be exercised without a real capture device.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package capture defines the contract between the (out-of-scope) V4L2-class
// frame source and this pipeline's workerpool.
package capture

import (
	"errors"
	"sync"

	"github.com/ausocean/hwjpeg/pixfmt"
)

// Source delivers captured Frame values to the encoder pipeline. The real
// V4L2 implementation is external to this spec (§1); Source is the contract
// it must satisfy.
type Source interface {
	// Name identifies the capture device for logging.
	Name() string

	// Frames returns the channel new Frame values arrive on. The channel is
	// closed when the source stops.
	Frames() <-chan *pixfmt.Frame

	Start() error
	Stop() error
}

// ErrNotRunning is returned by ManualSource.Push when called before Start
// or after Stop.
var ErrNotRunning = errors.New("capture: source is not running")

// ManualSource is a Source whose frames are pushed programmatically, for
// tests and for any driver mode that isn't backed by a real V4L2 device.
type ManualSource struct {
	mu      sync.Mutex
	frames  chan *pixfmt.Frame
	running bool
}

// NewManualSource returns a ManualSource buffering up to n pending frames.
func NewManualSource(n int) *ManualSource {
	return &ManualSource{frames: make(chan *pixfmt.Frame, n)}
}

func (m *ManualSource) Name() string { return "ManualSource" }

func (m *ManualSource) Frames() <-chan *pixfmt.Frame { return m.frames }

func (m *ManualSource) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.running = true
	return nil
}

// Stop closes the frames channel; Push after Stop returns ErrNotRunning.
func (m *ManualSource) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return nil
	}
	m.running = false
	close(m.frames)
	return nil
}

// Push delivers f to any waiting reader of Frames().
func (m *ManualSource) Push(f *pixfmt.Frame) error {
	m.mu.Lock()
	running := m.running
	m.mu.Unlock()
	if !running {
		return ErrNotRunning
	}
	m.frames <- f
	return nil
}
