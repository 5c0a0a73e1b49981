/*
NAME
  overlay_test.go

DESCRIPTION
  overlay_test.go contains tests for OverlayConfig patching and validation.

AUTHOR
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package overlay

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestApplyPatchSubset(t *testing.T) {
	o := New(nil, nil)
	text := "hello"
	scale := 3
	if err := o.Apply(Patch{Text: &text, Scale: &scale}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	snap := o.Snapshot()
	if snap.Text != "hello" || snap.Scale != 3 {
		t.Fatalf("got %+v", snap)
	}
	// Enabled should still be the zero-value default (false), untouched.
	if snap.Enabled {
		t.Fatal("Apply must not touch fields absent from the patch")
	}
}

func TestApplyRejectsInvalidScaleLeavesPriorIntact(t *testing.T) {
	o := New(nil, nil)
	text := "before"
	if err := o.Apply(Patch{Text: &text}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	before := o.Snapshot()

	bad := 99
	if err := o.Apply(Patch{Scale: &bad}); err == nil {
		t.Fatal("expected validation error for out-of-range scale")
	}
	if diff := cmp.Diff(before, o.Snapshot()); diff != "" {
		t.Fatalf("prior config was not left intact (-before +after):\n%s", diff)
	}
}

func TestValidateRejectsOverlongText(t *testing.T) {
	c := DefaultConfig()
	c.Text = string(make([]byte, MaxTextLen+1))
	if err := c.Validate(); err == nil {
		t.Fatal("expected error for text exceeding MaxTextLen")
	}
}

func TestParsePosition(t *testing.T) {
	cases := map[string]Position{"tl": TopLeft, "br": BottomRight, "center": Center, "custom": Custom}
	for s, want := range cases {
		got, ok := ParsePosition(s)
		if !ok || got != want {
			t.Errorf("ParsePosition(%q) = %v,%v want %v,true", s, got, ok, want)
		}
	}
	if _, ok := ParsePosition("nonsense"); ok {
		t.Error("expected ok=false for unrecognised position string")
	}
}
