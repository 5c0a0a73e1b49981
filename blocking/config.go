/*
DESCRIPTION
  config.go defines BlockingConfig, the mutex-protected configuration for the
  blocking compositor (§3, §4.6), its release-store/relaxed-load fast-path
  flag (§5), and the HTTP-settable subset patch.

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

// Package blocking implements the multi-line NV12 compositor: background
// image, scaled preview window and two styled text blocks drawn onto the
// hardware encoder's DMA input buffer (§4.6), plus the shared raw-frame
// snapshot cache it feeds (§3).
package blocking

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/ausocean/utils/logging"

	"github.com/ausocean/hwjpeg/overlay"
)

// Size limits from §3.
const (
	MaxVocabLen = 1024
	MaxStatsLen = 512
	MinScale    = 1
	MaxVocabScale = 15
	MaxStatsScale = 10

	// MaxBackgroundW/H bound the stored background to at most 4K 4:2:0, per
	// §3 and §4.6's TooLarge check.
	MaxBackgroundW = 3840
	MaxBackgroundH = 2160
)

// MaxBackgroundBytes is the largest NV12 byte count the background slot may
// hold: 3840x2160 at 4:2:0.
const MaxBackgroundBytes = MaxBackgroundW * MaxBackgroundH * 3 / 2

// ErrInvalidConfig is returned by Validate/Apply for an out-of-range field.
var ErrInvalidConfig = errors.New("blocking: invalid configuration")

// Preview describes the scaled-and-bordered live-capture sub-frame drawn
// over the composited background. Negative X/Y mean "offset from the
// right/bottom edge" (§3).
type Preview struct {
	X, Y, W, H int
	Enabled    bool
}

// Config is the compositor configuration snapshot taken under lock once per
// frame. The background bytes are not copied on snapshot (only the slice
// header is): Upload always allocates a new backing array rather than
// mutating the existing one, so a concurrently-read snapshot's slice is
// never rewritten out from under it.
type Config struct {
	Enabled bool

	Background []byte
	BgW, BgH   int
	BgValid    bool

	Preview Preview

	TextVocab  string
	TextStats  string
	VocabScale int
	StatsScale int

	TextColor overlay.Color
	BoxColor  overlay.Color
	BoxAlpha  byte
}

// DefaultConfig returns the disabled starting configuration.
func DefaultConfig() Config {
	return Config{
		VocabScale: 3,
		StatsScale: 1,
		TextColor:  overlay.Color{Y: 235, U: 128, V: 128},
		BoxColor:   overlay.Color{Y: 16, U: 128, V: 128},
		BoxAlpha:   180,
	}
}

// Validate checks field ranges, per §3.
func (c Config) Validate() error {
	if len(c.TextVocab) > MaxVocabLen {
		return fmt.Errorf("%w: vocab text exceeds %d bytes", ErrInvalidConfig, MaxVocabLen)
	}
	if len(c.TextStats) > MaxStatsLen {
		return fmt.Errorf("%w: stats text exceeds %d bytes", ErrInvalidConfig, MaxStatsLen)
	}
	if c.VocabScale < MinScale || c.VocabScale > MaxVocabScale {
		return fmt.Errorf("%w: vocab scale %d out of [%d,%d]", ErrInvalidConfig, c.VocabScale, MinScale, MaxVocabScale)
	}
	if c.StatsScale < MinScale || c.StatsScale > MaxStatsScale {
		return fmt.Errorf("%w: stats scale %d out of [%d,%d]", ErrInvalidConfig, c.StatsScale, MinScale, MaxStatsScale)
	}
	return nil
}

// Blocking owns the mutex-protected Config, the atomic fast-path flag and
// the shared FontSet/RawFrameCache the compositor writes to.
type Blocking struct {
	mu          sync.Mutex
	cfg         Config
	enabledFast atomic.Bool

	fonts *overlay.FontSet
	raw   *RawFrameCache
	log   logging.Logger
}

// New constructs a disabled Blocking compositor handle. fonts and raw are
// shared singletons constructed once by the driver program and passed to
// every worker's encoder adapter alongside this handle.
func New(log logging.Logger, fonts *overlay.FontSet, raw *RawFrameCache) *Blocking {
	b := &Blocking{cfg: DefaultConfig(), fonts: fonts, raw: raw, log: log}
	return b
}

// Snapshot returns a copy of the current configuration under lock.
func (b *Blocking) Snapshot() Config {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cfg
}

// Enabled reports the atomic fast-path flag with a relaxed load: the common
// "blocking off" case costs one atomic load and no mutex acquisition (§5).
func (b *Blocking) Enabled() bool { return b.enabledFast.Load() }

// Raw returns the shared RawFrameCache this compositor writes to, for the
// GET /snapshot/raw handler.
func (b *Blocking) Raw() *RawFrameCache { return b.raw }

// Set replaces the entire configuration after validating it, and
// release-stores the fast-path flag to match.
func (b *Blocking) Set(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	b.mu.Lock()
	b.cfg = cfg
	b.mu.Unlock()
	b.enabledFast.Store(cfg.Enabled)
	return nil
}

// Patch carries an optional subset of Config fields for GET /blocking/set.
type Patch struct {
	Enabled *bool

	TextVocab  *string
	TextStats  *string
	VocabScale *int
	StatsScale *int

	PreviewX       *int
	PreviewY       *int
	PreviewW       *int
	PreviewH       *int
	PreviewEnabled *bool

	TextY, TextU, TextV *byte
	BoxY, BoxU, BoxV    *byte
	BoxAlpha            *byte

	// Clear, if true, resets TextVocab and TextStats to empty, per §6's
	// "clear" parameter.
	Clear bool
}

// Apply merges p into the current configuration, validates the result, and
// commits only if valid (§7: invalid patches leave the prior config intact).
func (b *Blocking) Apply(p Patch) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	next := b.cfg
	if p.Enabled != nil {
		next.Enabled = *p.Enabled
	}
	if p.Clear {
		next.TextVocab = ""
		next.TextStats = ""
	}
	if p.TextVocab != nil {
		next.TextVocab = *p.TextVocab
	}
	if p.TextStats != nil {
		next.TextStats = *p.TextStats
	}
	if p.VocabScale != nil {
		next.VocabScale = *p.VocabScale
	}
	if p.StatsScale != nil {
		next.StatsScale = *p.StatsScale
	}
	if p.PreviewX != nil {
		next.Preview.X = *p.PreviewX
	}
	if p.PreviewY != nil {
		next.Preview.Y = *p.PreviewY
	}
	if p.PreviewW != nil {
		next.Preview.W = *p.PreviewW
	}
	if p.PreviewH != nil {
		next.Preview.H = *p.PreviewH
	}
	if p.PreviewEnabled != nil {
		next.Preview.Enabled = *p.PreviewEnabled
	}
	if p.TextY != nil {
		next.TextColor.Y = *p.TextY
	}
	if p.TextU != nil {
		next.TextColor.U = *p.TextU
	}
	if p.TextV != nil {
		next.TextColor.V = *p.TextV
	}
	if p.BoxY != nil {
		next.BoxColor.Y = *p.BoxY
	}
	if p.BoxU != nil {
		next.BoxColor.U = *p.BoxU
	}
	if p.BoxV != nil {
		next.BoxColor.V = *p.BoxV
	}
	if p.BoxAlpha != nil {
		next.BoxAlpha = *p.BoxAlpha
	}

	if err := next.Validate(); err != nil {
		return err
	}
	b.cfg = next
	b.enabledFast.Store(next.Enabled)
	return nil
}
