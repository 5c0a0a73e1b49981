/*
DESCRIPTION
  overlay.go defines OverlayConfig, the mutex-protected, HTTP-mutable text
  overlay configuration consulted by every encoder worker, and the Overlay
  handle that owns it (§3, §4.5, §5).

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>
  Dan Kortschak <dan@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package overlay implements the shared text-overlay configuration and the
// TrueType/bitmap rendering of that configuration onto NV12 frame buffers.
package overlay

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ausocean/utils/logging"
)

// MaxTextLen bounds OverlayConfig.Text, per §3.
const MaxTextLen = 256

// MinScale and MaxScale bound OverlayConfig.Scale, per §3.
const (
	MinScale = 1
	MaxScale = 10
)

// Position selects where the text overlay box is anchored in-frame.
type Position int

const (
	TopLeft Position = iota
	TopRight
	BottomLeft
	BottomRight
	Center
	Custom
)

func (p Position) String() string {
	switch p {
	case TopLeft:
		return "top-left"
	case TopRight:
		return "top-right"
	case BottomLeft:
		return "bottom-left"
	case BottomRight:
		return "bottom-right"
	case Center:
		return "center"
	case Custom:
		return "custom"
	default:
		return "unknown"
	}
}

// ParsePosition converts an HTTP query value into a Position.
func ParsePosition(s string) (Position, bool) {
	switch s {
	case "tl", "top-left":
		return TopLeft, true
	case "tr", "top-right":
		return TopRight, true
	case "bl", "bottom-left":
		return BottomLeft, true
	case "br", "bottom-right":
		return BottomRight, true
	case "center", "centre":
		return Center, true
	case "custom":
		return Custom, true
	default:
		return TopLeft, false
	}
}

// Color is a Y/U/V triple for a blended foreground or background colour.
type Color struct{ Y, U, V byte }

// Config is the overlay configuration snapshot consulted once per frame by
// an encoder worker. It is a plain value: copying it is always safe.
type Config struct {
	Enabled  bool
	Text     string
	Position Position
	X, Y     int // Only meaningful when Position == Custom.
	Scale    int

	Fg Color

	DrawBg  bool
	Bg      Color
	BgAlpha byte

	Padding int
}

// DefaultConfig returns the zero-value-safe starting configuration: disabled,
// empty text, top-left, scale 1, white-on-nothing.
func DefaultConfig() Config {
	return Config{
		Enabled:  false,
		Position: TopLeft,
		Scale:    1,
		Fg:       Color{Y: 235, U: 128, V: 128},
		Padding:  4,
	}
}

// ErrInvalidConfig is returned by Validate/Apply when a field is out of its
// documented range.
var ErrInvalidConfig = errors.New("overlay: invalid configuration")

// Validate rejects over-length text, an out-of-range Scale and a negative
// Padding; it does not clamp any field. This matches the "leave prior configuration intact" policy of §7: callers
// should validate a patch before committing it, not after.
func (c Config) Validate() error {
	if len(c.Text) > MaxTextLen {
		return fmt.Errorf("%w: text exceeds %d bytes", ErrInvalidConfig, MaxTextLen)
	}
	if c.Scale < MinScale || c.Scale > MaxScale {
		return fmt.Errorf("%w: scale %d out of [%d,%d]", ErrInvalidConfig, c.Scale, MinScale, MaxScale)
	}
	if c.Padding < 0 {
		return fmt.Errorf("%w: negative padding", ErrInvalidConfig)
	}
	return nil
}

// Overlay owns the mutex-protected Config read by every encoder worker and
// mutated by the HTTP control surface.
type Overlay struct {
	mu    sync.Mutex
	cfg   Config
	fonts *FontSet
	log   logging.Logger
}

// New constructs an Overlay with the default (disabled) configuration.
// fonts may be nil, in which case Draw always uses the bitmap fallback.
func New(log logging.Logger, fonts *FontSet) *Overlay {
	return &Overlay{cfg: DefaultConfig(), fonts: fonts, log: log}
}

// Snapshot returns a copy of the current configuration under lock, for use
// by an encoder worker processing one frame.
func (o *Overlay) Snapshot() Config {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.cfg
}

// Set replaces the entire configuration after validating it. On validation
// failure the prior configuration is left intact and the error is returned.
func (o *Overlay) Set(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	o.mu.Lock()
	o.cfg = cfg
	o.mu.Unlock()
	return nil
}

// Patch carries an optional subset of Config fields, as set by
// GET /overlay/set?... (§6). Nil fields are left unchanged.
type Patch struct {
	Text     *string
	Position *Position
	X, Y     *int
	Scale    *int
	FgY      *byte
	FgU      *byte
	FgV      *byte
	BgEnabled *bool
	BgY      *byte
	BgU      *byte
	BgV      *byte
	BgAlpha  *byte
	Padding  *int
	Enabled  *bool
}

// Apply merges p into the current configuration, validates the result, and
// commits it only if valid; otherwise the prior configuration is untouched
// and the validation error is returned (§7).
func (o *Overlay) Apply(p Patch) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	next := o.cfg
	if p.Text != nil {
		next.Text = *p.Text
	}
	if p.Position != nil {
		next.Position = *p.Position
	}
	if p.X != nil {
		next.X = *p.X
	}
	if p.Y != nil {
		next.Y = *p.Y
	}
	if p.Scale != nil {
		next.Scale = *p.Scale
	}
	if p.FgY != nil {
		next.Fg.Y = *p.FgY
	}
	if p.FgU != nil {
		next.Fg.U = *p.FgU
	}
	if p.FgV != nil {
		next.Fg.V = *p.FgV
	}
	if p.BgEnabled != nil {
		next.DrawBg = *p.BgEnabled
	}
	if p.BgY != nil {
		next.Bg.Y = *p.BgY
	}
	if p.BgU != nil {
		next.Bg.U = *p.BgU
	}
	if p.BgV != nil {
		next.Bg.V = *p.BgV
	}
	if p.BgAlpha != nil {
		next.BgAlpha = *p.BgAlpha
	}
	if p.Padding != nil {
		next.Padding = *p.Padding
	}
	if p.Enabled != nil {
		next.Enabled = *p.Enabled
	}

	if err := next.Validate(); err != nil {
		return err
	}
	o.cfg = next
	return nil
}
