/*
NAME
  adapter_test.go

DESCRIPTION
  adapter_test.go exercises Adapter's reconfiguration state machine and
  per-frame protocol against a fake vendor session, since the real VPU
  (vendor_mpp.go) only builds with the "mpp" tag on target hardware.

AUTHOR
  Dan Kortschak <dan@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package mpp

import (
	"bytes"
	"testing"

	"github.com/ausocean/hwjpeg/pixfmt"
	"github.com/ausocean/hwjpeg/scale"
)

type fakeBuffer struct {
	mem    []byte
	synced bool
	closed bool
}

func (b *fakeBuffer) Bytes() []byte { return b.mem }
func (b *fakeBuffer) Sync() error   { b.synced = true; return nil }
func (b *fakeBuffer) Close() error  { b.closed = true; return nil }

type fakeGroup struct {
	allocs int
	closed bool
}

func (g *fakeGroup) Alloc(size int) (buffer, error) {
	g.allocs++
	return &fakeBuffer{mem: make([]byte, size)}, nil
}
func (g *fakeGroup) Close() error { g.closed = true; return nil }

type fakeSession struct {
	configureCalls int
	groups         []*fakeGroup
	closed         bool
	packet         []byte
}

func (s *fakeSession) Configure(cfg encodeConfig) error {
	s.configureCalls++
	return nil
}

func (s *fakeSession) NewBufferGroup() (bufferGroup, error) {
	g := &fakeGroup{}
	s.groups = append(s.groups, g)
	return g, nil
}

func (s *fakeSession) Encode(frame, packet buffer, cfg encodeConfig) (int, error) {
	pkt := []byte{0xFF, 0xD8, 0xFF, 0xDB, 0xFF, 0xD9}
	if s.packet != nil {
		pkt = s.packet
	}
	n := copy(packet.Bytes(), pkt)
	return n, nil
}

func (s *fakeSession) Close() error { s.closed = true; return nil }

func withFakeSession(t *testing.T) *fakeSession {
	fs := &fakeSession{}
	orig := newSession
	newSession = func() (session, error) { return fs, nil }
	t.Cleanup(func() { newSession = orig })
	return fs
}

func nv12Frame(w, h int, yVal, uvVal byte) *pixfmt.Frame {
	f, err := pixfmt.New(pixfmt.NV12, w, h)
	if err != nil {
		panic(err)
	}
	for i := 0; i < w*h; i++ {
		f.Bytes[i] = yVal
	}
	for i := w * h; i < len(f.Bytes); i++ {
		f.Bytes[i] = uvVal
	}
	return f
}

func TestCompressConfiguresOnFirstCall(t *testing.T) {
	fs := withFakeSession(t)
	a := New("test", 80, scale.P2160, nil, nil, nil)
	defer a.Close()

	src := nv12Frame(1920, 1080, 128, 128)
	dst := &pixfmt.Frame{}
	if err := a.Compress(src, dst); err != nil {
		t.Fatalf("Compress: %v", err)
	}
	if fs.configureCalls != 1 {
		t.Fatalf("configureCalls = %d, want 1", fs.configureCalls)
	}
	if !a.ready {
		t.Fatal("adapter should be Ready after a successful compress")
	}
	if !bytes.HasPrefix(dst.Bytes, []byte{0xFF, 0xD8}) {
		t.Fatalf("expected packet to start with SOI, got %x", dst.Bytes[:2])
	}
	if !dst.IsKey || dst.GOP != 0 {
		t.Fatalf("IsKey=%v GOP=%d, want true/0", dst.IsKey, dst.GOP)
	}
}

func TestCompressReusesConfigurationForSameGeometry(t *testing.T) {
	fs := withFakeSession(t)
	a := New("test", 80, scale.P2160, nil, nil, nil)
	defer a.Close()

	src := nv12Frame(1920, 1080, 128, 128)
	dst := &pixfmt.Frame{}
	if err := a.Compress(src, dst); err != nil {
		t.Fatalf("first Compress: %v", err)
	}
	if err := a.Compress(src, dst); err != nil {
		t.Fatalf("second Compress: %v", err)
	}
	if fs.configureCalls != 1 {
		t.Fatalf("configureCalls = %d, want 1 (no reconfigure for identical geometry)", fs.configureCalls)
	}
	if len(fs.groups) != 1 {
		t.Fatalf("len(groups) = %d, want 1 (no buffer group reallocation)", len(fs.groups))
	}
}

// TestReconfigureOnDimensionChange matches scenario 3 of the spec's
// end-to-end tests: two frames of different geometry under policy P2160 must
// each reconfigure the adapter and reallocate the packet buffer.
func TestReconfigureOnDimensionChange(t *testing.T) {
	fs := withFakeSession(t)
	a := New("test", 80, scale.P2160, nil, nil, nil)
	defer a.Close()

	dst := &pixfmt.Frame{}
	if err := a.Compress(nv12Frame(1920, 1080, 128, 128), dst); err != nil {
		t.Fatalf("first Compress: %v", err)
	}
	if a.cfg.tw != 1920 || a.cfg.th != 1080 {
		t.Fatalf("configured = %dx%d, want 1920x1080", a.cfg.tw, a.cfg.th)
	}

	if err := a.Compress(nv12Frame(2560, 1440, 128, 128), dst); err != nil {
		t.Fatalf("second Compress: %v", err)
	}
	if a.cfg.tw != 2560 || a.cfg.th != 1440 {
		t.Fatalf("configured = %dx%d, want 2560x1440", a.cfg.tw, a.cfg.th)
	}
	if fs.configureCalls != 2 {
		t.Fatalf("configureCalls = %d, want 2", fs.configureCalls)
	}
	if len(fs.groups) != 2 {
		t.Fatalf("len(groups) = %d, want 2 (packet buffer reallocated on reconfigure)", len(fs.groups))
	}
}

// TestNativeScaleRule matches scenario 2 of the spec's end-to-end tests.
func TestNativeScaleRule(t *testing.T) {
	withFakeSession(t)
	a := New("test", 80, scale.Native, nil, nil, nil)
	defer a.Close()

	dst := &pixfmt.Frame{}
	if err := a.Compress(nv12Frame(3840, 2160, 128, 128), dst); err != nil {
		t.Fatalf("Compress 4K NV12: %v", err)
	}
	if a.cfg.tw != 1920 || a.cfg.th != 1080 {
		t.Fatalf("4K NV12 under Native should configure 1920x1080, got %dx%d", a.cfg.tw, a.cfg.th)
	}
}

func TestCompressEmptyPacketIsError(t *testing.T) {
	fs := withFakeSession(t)
	fs.packet = []byte{}
	a := New("test", 80, scale.P2160, nil, nil, nil)
	defer a.Close()

	err := a.Compress(nv12Frame(640, 480, 128, 128), &pixfmt.Frame{})
	if err == nil {
		t.Fatal("expected ErrEmptyPacket")
	}
}

func TestUnsupportedFormatIsRejected(t *testing.T) {
	withFakeSession(t)
	a := New("test", 80, scale.P2160, nil, nil, nil)
	defer a.Close()

	src := &pixfmt.Frame{Format: pixfmt.JPEG, Width: 640, Height: 480}
	err := a.Compress(src, &pixfmt.Frame{})
	if err == nil {
		t.Fatal("expected an error for JPEG source format")
	}
}
