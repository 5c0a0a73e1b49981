/*
DESCRIPTION
  font.go implements FontSet, the lazily loaded pair of TrueType faces (bold,
  monospace) shared across every encoder worker, and the process-wide mutex
  serialising calls into the freetype rasteriser, which is not reentrant at
  the face level (§3, §5).

AUTHORS
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
	"errors"
	"fmt"
	"io/ioutil"
	"sync"

	"github.com/golang/freetype/truetype"
)

// ErrFontLoad is returned when a face's font path is empty, or its file
// cannot be read or parsed. Each face has exactly one path; no second,
// fallback font file is tried. Callers degrade to the bitmap renderer on
// this error (§7).
var ErrFontLoad = errors.New("overlay: font load failed")

// BaseFontSize is the TrueType pixel size at OverlayConfig.Scale == 1.
const BaseFontSize = 16

// ttfMu serialises every call into the freetype/truetype rasteriser across
// all encoder workers (§4.5, §5): the library is not safe to call
// concurrently at the face level, so one process-wide mutex brackets every
// draw of a single text block.
var ttfMu sync.Mutex

// FontSet lazily loads and caches a bold and a monospace TrueType face,
// shared read-only (after first load) by every encoder worker.
type FontSet struct {
	mu                 sync.Mutex
	boldPath, monoPath string
	bold, mono         *truetype.Font
}

// NewFontSet returns a FontSet that will load its faces from boldPath and
// monoPath on first use. Either path may be empty, in which case that face
// is never available and callers fall back to the bitmap renderer.
func NewFontSet(boldPath, monoPath string) *FontSet {
	return &FontSet{boldPath: boldPath, monoPath: monoPath}
}

// Bold returns the bold face, loading it on first call.
func (fs *FontSet) Bold() (*truetype.Font, error) { return fs.load(&fs.bold, fs.boldPath) }

// Mono returns the monospace face, loading it on first call.
func (fs *FontSet) Mono() (*truetype.Font, error) { return fs.load(&fs.mono, fs.monoPath) }

func (fs *FontSet) load(slot **truetype.Font, path string) (*truetype.Font, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if *slot != nil {
		return *slot, nil
	}
	if path == "" {
		return nil, fmt.Errorf("%w: no font path configured", ErrFontLoad)
	}
	b, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrFontLoad, path, err)
	}
	f, err := truetype.Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", ErrFontLoad, path, err)
	}
	*slot = f
	return f, nil
}
