/*
NAME
  capture_test.go

DESCRIPTION
  capture_test.go exercises ManualSource's start/push/stop lifecycle.

AUTHOR
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package capture

import (
	"testing"

	"github.com/ausocean/hwjpeg/pixfmt"
)

func TestPushBeforeStartIsError(t *testing.T) {
	m := NewManualSource(1)
	if err := m.Push(&pixfmt.Frame{}); err != ErrNotRunning {
		t.Fatalf("Push before Start = %v, want ErrNotRunning", err)
	}
}

func TestPushAfterStartDeliversOnFrames(t *testing.T) {
	m := NewManualSource(1)
	if err := m.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	want := &pixfmt.Frame{Width: 4, Height: 4}
	if err := m.Push(want); err != nil {
		t.Fatalf("Push: %v", err)
	}
	got := <-m.Frames()
	if got != want {
		t.Fatalf("Frames() delivered %v, want %v", got, want)
	}
}

func TestStopClosesFramesChannel(t *testing.T) {
	m := NewManualSource(1)
	m.Start()
	if err := m.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if _, ok := <-m.Frames(); ok {
		t.Fatal("Frames() should be closed after Stop")
	}
	if err := m.Push(&pixfmt.Frame{}); err != ErrNotRunning {
		t.Fatalf("Push after Stop = %v, want ErrNotRunning", err)
	}
}

func TestStopIsIdempotent(t *testing.T) {
	m := NewManualSource(1)
	m.Start()
	if err := m.Stop(); err != nil {
		t.Fatalf("first Stop: %v", err)
	}
	if err := m.Stop(); err != nil {
		t.Fatalf("second Stop: %v", err)
	}
}
