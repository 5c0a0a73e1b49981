/*
DESCRIPTION
  httpapi.go implements the HTTP control surface of §6: JSON snapshots and
  query-param patches for OverlayConfig/BlockingConfig, background upload,
  and the raw-frame snapshot endpoint. There is no router framework anywhere
  in the retrieved pack, so handlers are wired directly onto an
  http.ServeMux, in the style of other_examples' plain net/http MJPEG
  servers.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package httpapi implements the control-surface HTTP handlers for the
// overlay and blocking compositor singletons, and the raw-frame snapshot
// endpoint (§6).
package httpapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/ausocean/utils/logging"
	"github.com/ausocean/utils/sliceutils"

	"github.com/ausocean/hwjpeg/blocking"
	"github.com/ausocean/hwjpeg/overlay"
)

// validPositions lists the overlay.ParsePosition tokens accepted by
// GET /overlay/set's position parameter.
var validPositions = []string{"tl", "top-left", "tr", "top-right", "bl", "bottom-left", "br", "bottom-right", "center", "centre", "custom"}

// Server bundles the handlers of §6 against a shared overlay/blocking/raw
// cache, as constructed once by cmd/mjpegd's main.
type Server struct {
	Overlay  *overlay.Overlay
	Blocking *blocking.Blocking
	Log      logging.Logger
}

// New returns a Server wired to the given singletons.
func New(log logging.Logger, ov *overlay.Overlay, bl *blocking.Blocking) *Server {
	return &Server{Overlay: ov, Blocking: bl, Log: log}
}

// Handler builds an http.ServeMux carrying every route of §6.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/overlay", s.handleOverlayGet)
	mux.HandleFunc("/overlay/set", s.handleOverlaySet)
	mux.HandleFunc("/blocking", s.handleBlockingGet)
	mux.HandleFunc("/blocking/set", s.handleBlockingSet)
	mux.HandleFunc("/blocking/background", s.handleBackgroundUpload)
	mux.HandleFunc("/snapshot/raw", s.handleRawSnapshot)
	return mux
}

func (s *Server) logError(context string, err error) {
	if s.Log != nil {
		s.Log.Warning(context, "error", err.Error())
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func badRequest(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), http.StatusBadRequest)
}

// overlayView is the JSON shape returned by GET /overlay.
type overlayView struct {
	Enabled  bool   `json:"enabled"`
	Text     string `json:"text"`
	Position string `json:"position"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Scale    int    `json:"scale"`
	FgY      byte   `json:"y_color"`
	FgU      byte   `json:"u_color"`
	FgV      byte   `json:"v_color"`
	BgEnabled bool  `json:"bg_enabled"`
	BgY      byte   `json:"bg_y"`
	BgU      byte   `json:"bg_u"`
	BgV      byte   `json:"bg_v"`
	BgAlpha  byte   `json:"bg_alpha"`
	Padding  int    `json:"padding"`
}

func (s *Server) handleOverlayGet(w http.ResponseWriter, r *http.Request) {
	cfg := s.Overlay.Snapshot()
	writeJSON(w, overlayView{
		Enabled:   cfg.Enabled,
		Text:      cfg.Text,
		Position:  cfg.Position.String(),
		X:         cfg.X,
		Y:         cfg.Y,
		Scale:     cfg.Scale,
		FgY:       cfg.Fg.Y,
		FgU:       cfg.Fg.U,
		FgV:       cfg.Fg.V,
		BgEnabled: cfg.DrawBg,
		BgY:       cfg.Bg.Y,
		BgU:       cfg.Bg.U,
		BgV:       cfg.Bg.V,
		BgAlpha:   cfg.BgAlpha,
		Padding:   cfg.Padding,
	})
}

// handleOverlaySet applies any subset of the query params named in §6 to
// OverlayConfig via Overlay.Apply, which leaves the prior config intact on
// validation failure.
func (s *Server) handleOverlaySet(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var p overlay.Patch

	if v, ok := queryString(q, "text"); ok {
		p.Text = &v
	}
	if v, ok := q["position"]; ok && len(v) > 0 {
		if !sliceutils.ContainsString(validPositions, v[0]) {
			badRequest(w, fmt.Errorf("httpapi: unrecognised position %q", v[0]))
			return
		}
		pos, _ := overlay.ParsePosition(v[0])
		p.Position = &pos
	}
	if v, ok, err := queryInt(q, "x"); err != nil {
		badRequest(w, err)
		return
	} else if ok {
		p.X = &v
	}
	if v, ok, err := queryInt(q, "y"); err != nil {
		badRequest(w, err)
		return
	} else if ok {
		p.Y = &v
	}
	if v, ok, err := queryInt(q, "scale"); err != nil {
		badRequest(w, err)
		return
	} else if ok {
		p.Scale = &v
	}
	if v, ok, err := queryByte(q, "y_color"); err != nil {
		badRequest(w, err)
		return
	} else if ok {
		p.FgY = &v
	}
	if v, ok, err := queryByte(q, "u_color"); err != nil {
		badRequest(w, err)
		return
	} else if ok {
		p.FgU = &v
	}
	if v, ok, err := queryByte(q, "v_color"); err != nil {
		badRequest(w, err)
		return
	} else if ok {
		p.FgV = &v
	}
	if v, ok, err := queryBool(q, "bg_enabled"); err != nil {
		badRequest(w, err)
		return
	} else if ok {
		p.BgEnabled = &v
	}
	if v, ok, err := queryByte(q, "bg_y"); err != nil {
		badRequest(w, err)
		return
	} else if ok {
		p.BgY = &v
	}
	if v, ok, err := queryByte(q, "bg_u"); err != nil {
		badRequest(w, err)
		return
	} else if ok {
		p.BgU = &v
	}
	if v, ok, err := queryByte(q, "bg_v"); err != nil {
		badRequest(w, err)
		return
	} else if ok {
		p.BgV = &v
	}
	if v, ok, err := queryByte(q, "bg_alpha"); err != nil {
		badRequest(w, err)
		return
	} else if ok {
		p.BgAlpha = &v
	}
	if v, ok, err := queryInt(q, "padding"); err != nil {
		badRequest(w, err)
		return
	} else if ok {
		p.Padding = &v
	}
	if v, ok, err := queryBool(q, "enabled"); err != nil {
		badRequest(w, err)
		return
	} else if ok {
		p.Enabled = &v
	}

	if err := s.Overlay.Apply(p); err != nil {
		s.logError("httpapi: overlay/set rejected", err)
		badRequest(w, err)
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

// blockingView is the JSON shape returned by GET /blocking. It omits the
// background bytes themselves, per §6.
type blockingView struct {
	Enabled bool `json:"enabled"`

	BgValid bool `json:"bg_valid"`
	BgW     int  `json:"bg_w"`
	BgH     int  `json:"bg_h"`

	PreviewX       int  `json:"preview_x"`
	PreviewY       int  `json:"preview_y"`
	PreviewW       int  `json:"preview_w"`
	PreviewH       int  `json:"preview_h"`
	PreviewEnabled bool `json:"preview_enabled"`

	TextVocab  string `json:"text_vocab"`
	TextStats  string `json:"text_stats"`
	VocabScale int    `json:"text_vocab_scale"`
	StatsScale int    `json:"text_stats_scale"`

	TextY byte `json:"text_y"`
	TextU byte `json:"text_u"`
	TextV byte `json:"text_v"`
	BoxY  byte `json:"box_y"`
	BoxU  byte `json:"box_u"`
	BoxV  byte `json:"box_v"`
	BoxAlpha byte `json:"box_alpha"`
}

func (s *Server) handleBlockingGet(w http.ResponseWriter, r *http.Request) {
	cfg := s.Blocking.Snapshot()
	writeJSON(w, blockingView{
		Enabled:        cfg.Enabled,
		BgValid:        cfg.BgValid,
		BgW:            cfg.BgW,
		BgH:            cfg.BgH,
		PreviewX:       cfg.Preview.X,
		PreviewY:       cfg.Preview.Y,
		PreviewW:       cfg.Preview.W,
		PreviewH:       cfg.Preview.H,
		PreviewEnabled: cfg.Preview.Enabled,
		TextVocab:      cfg.TextVocab,
		TextStats:      cfg.TextStats,
		VocabScale:     cfg.VocabScale,
		StatsScale:     cfg.StatsScale,
		TextY:          cfg.TextColor.Y,
		TextU:          cfg.TextColor.U,
		TextV:          cfg.TextColor.V,
		BoxY:           cfg.BoxColor.Y,
		BoxU:           cfg.BoxColor.U,
		BoxV:           cfg.BoxColor.V,
		BoxAlpha:       cfg.BoxAlpha,
	})
}

// handleBlockingSet applies any subset of §6's blocking/set query params.
// Text values are URL-decoded by net/http already; a literal `\n` two-byte
// sequence in the decoded text is converted to a real newline, per §6.
func (s *Server) handleBlockingSet(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var p blocking.Patch

	if v, ok, err := queryBool(q, "enabled"); err != nil {
		badRequest(w, err)
		return
	} else if ok {
		p.Enabled = &v
	}
	if v, ok := queryString(q, "text_vocab"); ok {
		v = unescapeNewlines(v)
		p.TextVocab = &v
	}
	if v, ok := queryString(q, "text_stats"); ok {
		v = unescapeNewlines(v)
		p.TextStats = &v
	}
	if v, ok, err := queryInt(q, "text_vocab_scale"); err != nil {
		badRequest(w, err)
		return
	} else if ok {
		p.VocabScale = &v
	}
	if v, ok, err := queryInt(q, "text_stats_scale"); err != nil {
		badRequest(w, err)
		return
	} else if ok {
		p.StatsScale = &v
	}
	if v, ok, err := queryInt(q, "preview_x"); err != nil {
		badRequest(w, err)
		return
	} else if ok {
		p.PreviewX = &v
	}
	if v, ok, err := queryInt(q, "preview_y"); err != nil {
		badRequest(w, err)
		return
	} else if ok {
		p.PreviewY = &v
	}
	if v, ok, err := queryInt(q, "preview_w"); err != nil {
		badRequest(w, err)
		return
	} else if ok {
		p.PreviewW = &v
	}
	if v, ok, err := queryInt(q, "preview_h"); err != nil {
		badRequest(w, err)
		return
	} else if ok {
		p.PreviewH = &v
	}
	if v, ok, err := queryBool(q, "preview_enabled"); err != nil {
		badRequest(w, err)
		return
	} else if ok {
		p.PreviewEnabled = &v
	}
	if v, ok, err := queryByte(q, "text_y"); err != nil {
		badRequest(w, err)
		return
	} else if ok {
		p.TextY = &v
	}
	if v, ok, err := queryByte(q, "text_u"); err != nil {
		badRequest(w, err)
		return
	} else if ok {
		p.TextU = &v
	}
	if v, ok, err := queryByte(q, "text_v"); err != nil {
		badRequest(w, err)
		return
	} else if ok {
		p.TextV = &v
	}
	if v, ok, err := queryByte(q, "box_y"); err != nil {
		badRequest(w, err)
		return
	} else if ok {
		p.BoxY = &v
	}
	if v, ok, err := queryByte(q, "box_u"); err != nil {
		badRequest(w, err)
		return
	} else if ok {
		p.BoxU = &v
	}
	if v, ok, err := queryByte(q, "box_v"); err != nil {
		badRequest(w, err)
		return
	} else if ok {
		p.BoxV = &v
	}
	if v, ok, err := queryByte(q, "box_alpha"); err != nil {
		badRequest(w, err)
		return
	} else if ok {
		p.BoxAlpha = &v
	}
	if v, ok, err := queryBool(q, "clear"); err != nil {
		badRequest(w, err)
		return
	} else if ok {
		p.Clear = v
	}

	if err := s.Blocking.Apply(p); err != nil {
		s.logError("httpapi: blocking/set rejected", err)
		badRequest(w, err)
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

// handleBackgroundUpload implements POST /blocking/background: the body is
// sniffed for the JPEG SOI marker and routed to the JPEG or raw NV12 upload
// path accordingly (§6's "autodetected by magic").
func (s *Server) handleBackgroundUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	data, err := io.ReadAll(r.Body)
	if err != nil {
		badRequest(w, err)
		return
	}

	if blocking.LooksLikeJPEG(data) {
		if err := s.Blocking.UploadBackgroundJPEG(data); err != nil {
			s.logError("httpapi: background jpeg upload failed", err)
			badRequest(w, err)
			return
		}
		writeJSON(w, map[string]string{"status": "ok"})
		return
	}

	q := r.URL.Query()
	width, _, werr := queryInt(q, "width")
	height, _, herr := queryInt(q, "height")
	if werr != nil || herr != nil {
		badRequest(w, fmt.Errorf("httpapi: raw background upload requires numeric width/height"))
		return
	}
	if err := s.Blocking.UploadBackgroundRaw(data, width, height); err != nil {
		s.logError("httpapi: background raw upload failed", err)
		badRequest(w, err)
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

// handleRawSnapshot implements GET /snapshot/raw: the current
// RawFrameCache contents, emitted as raw NV12 bytes.
func (s *Server) handleRawSnapshot(w http.ResponseWriter, r *http.Request) {
	g := s.Blocking.Raw().Borrow()
	defer g.Release()

	if !g.Valid {
		http.Error(w, "no raw frame captured yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("X-Frame-Width", strconv.Itoa(g.W))
	w.Header().Set("X-Frame-Height", strconv.Itoa(g.H))
	w.Header().Set("X-Frame-Stride", strconv.Itoa(g.Stride))
	w.Write(g.Bytes)
}

func queryString(q map[string][]string, key string) (string, bool) {
	v, ok := q[key]
	if !ok || len(v) == 0 {
		return "", false
	}
	return v[0], true
}

func queryInt(q map[string][]string, key string) (int, bool, error) {
	s, ok := queryString(q, key)
	if !ok {
		return 0, false, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false, fmt.Errorf("httpapi: %s: %w", key, err)
	}
	return n, true, nil
}

func queryByte(q map[string][]string, key string) (byte, bool, error) {
	n, ok, err := queryInt(q, key)
	if err != nil || !ok {
		return 0, ok, err
	}
	if n < 0 || n > 255 {
		return 0, false, fmt.Errorf("httpapi: %s out of byte range", key)
	}
	return byte(n), true, nil
}

func queryBool(q map[string][]string, key string) (bool, bool, error) {
	s, ok := queryString(q, key)
	if !ok {
		return false, false, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, false, fmt.Errorf("httpapi: %s: %w", key, err)
	}
	return b, true, nil
}

// unescapeNewlines converts a literal backslash-n two-byte sequence into a
// real newline byte, per §6's "supports literal \n for newlines".
func unescapeNewlines(s string) string {
	return strings.ReplaceAll(s, `\n`, "\n")
}
