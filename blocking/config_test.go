/*
NAME
  config_test.go

DESCRIPTION
  config_test.go exercises BlockingConfig validation and patch application.

AUTHOR
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package blocking

import "testing"

func TestApplyEnablesAndUpdatesFastPathFlag(t *testing.T) {
	b := New(nil, nil, NewRawFrameCache())
	if b.Enabled() {
		t.Fatal("should start disabled")
	}
	enabled := true
	if err := b.Apply(Patch{Enabled: &enabled}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !b.Enabled() {
		t.Fatal("Enabled() should reflect the applied patch")
	}
}

func TestApplyRejectsOverlongVocabText(t *testing.T) {
	b := New(nil, nil, NewRawFrameCache())
	bad := string(make([]byte, MaxVocabLen+1))
	if err := b.Apply(Patch{TextVocab: &bad}); err == nil {
		t.Fatal("expected validation error for overlong vocab text")
	}
	if b.Snapshot().TextVocab != "" {
		t.Fatal("invalid patch must not be applied")
	}
}

func TestApplyClearResetsText(t *testing.T) {
	b := New(nil, nil, NewRawFrameCache())
	vocab := "hello"
	stats := "fps=30"
	if err := b.Apply(Patch{TextVocab: &vocab, TextStats: &stats}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if err := b.Apply(Patch{Clear: true}); err != nil {
		t.Fatalf("Apply clear: %v", err)
	}
	snap := b.Snapshot()
	if snap.TextVocab != "" || snap.TextStats != "" {
		t.Fatalf("clear did not reset text fields: %+v", snap)
	}
}

func TestValidateRejectsOutOfRangeScale(t *testing.T) {
	c := DefaultConfig()
	c.VocabScale = MaxVocabScale + 1
	if err := c.Validate(); err == nil {
		t.Fatal("expected error for out-of-range vocab scale")
	}
}
