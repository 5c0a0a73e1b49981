/*
DESCRIPTION
  ffmpeg.go adapts device/webcam.Webcam's ffmpeg-pipe approach into a
  concrete capture.Source: an external V4L2-class device is read through an
  ffmpeg subprocess emitting raw NV12 frames on stdout, each sliced into a
  pixfmt.Frame and delivered on Frames(). §1 scopes V4L2 capture itself out
  of this repository; FFmpegSource is the one concrete, optional capture
  path this repository ships rather than requiring every caller to author
  their own Source from scratch.

AUTHORS
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
	"fmt"
	"io"
	"os/exec"

	"github.com/ausocean/utils/logging"

	"github.com/ausocean/hwjpeg/pixfmt"
)

// FFmpegConfig configures an FFmpegSource.
type FFmpegConfig struct {
	// InputPath is the V4L2 device node, e.g. /dev/video0.
	InputPath string
	Width     int
	Height    int
	FrameRate int
}

// defaults mirror device/webcam.Webcam's.
const (
	defaultFFmpegInputPath = "/dev/video0"
	defaultFFmpegWidth     = 1280
	defaultFFmpegHeight    = 720
	defaultFFmpegFrameRate = 25
)

// FFmpegSource runs ffmpeg against a V4L2 device, decoding its output to raw
// NV12 frames of fixed geometry and delivering them on Frames().
type FFmpegSource struct {
	cfg  FFmpegConfig
	log  logging.Logger
	cmd  *exec.Cmd
	out  io.ReadCloser
	frames chan *pixfmt.Frame
	done chan struct{}
}

// NewFFmpegSource returns an FFmpegSource with cfg's zero fields replaced by
// device/webcam.Webcam's defaults.
func NewFFmpegSource(log logging.Logger, cfg FFmpegConfig) *FFmpegSource {
	if cfg.InputPath == "" {
		cfg.InputPath = defaultFFmpegInputPath
	}
	if cfg.Width == 0 {
		cfg.Width = defaultFFmpegWidth
	}
	if cfg.Height == 0 {
		cfg.Height = defaultFFmpegHeight
	}
	if cfg.FrameRate == 0 {
		cfg.FrameRate = defaultFFmpegFrameRate
	}
	return &FFmpegSource{
		cfg:    cfg,
		log:    log,
		frames: make(chan *pixfmt.Frame, 2),
		done:   make(chan struct{}),
	}
}

func (f *FFmpegSource) Name() string { return "FFmpegSource(" + f.cfg.InputPath + ")" }

func (f *FFmpegSource) Frames() <-chan *pixfmt.Frame { return f.frames }

// Start spawns ffmpeg, requesting raw NV12 frames of the configured
// geometry on stdout, and begins reading them in a background goroutine.
func (f *FFmpegSource) Start() error {
	args := []string{
		"-f", "v4l2",
		"-video_size", fmt.Sprintf("%dx%d", f.cfg.Width, f.cfg.Height),
		"-framerate", fmt.Sprint(f.cfg.FrameRate),
		"-i", f.cfg.InputPath,
		"-pix_fmt", "nv12",
		"-f", "rawvideo",
		"-",
	}
	f.cmd = exec.Command("ffmpeg", args...)

	var err error
	f.out, err = f.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("capture: failed to create ffmpeg stdout pipe: %w", err)
	}
	if err := f.cmd.Start(); err != nil {
		return fmt.Errorf("capture: failed to start ffmpeg: %w", err)
	}

	go f.readLoop()
	return nil
}

func (f *FFmpegSource) readLoop() {
	defer close(f.frames)

	frameSize := f.cfg.Width*f.cfg.Height + f.cfg.Width*(f.cfg.Height/2)
	buf := make([]byte, frameSize)
	for {
		select {
		case <-f.done:
			return
		default:
		}
		if _, err := io.ReadFull(f.out, buf); err != nil {
			if f.log != nil && err != io.EOF {
				f.log.Warning("capture: ffmpeg read failed", "error", err.Error())
			}
			return
		}
		frame, err := pixfmt.New(pixfmt.NV12, f.cfg.Width, f.cfg.Height)
		if err != nil {
			if f.log != nil {
				f.log.Warning("capture: failed to allocate frame", "error", err.Error())
			}
			return
		}
		copy(frame.Bytes, buf)
		select {
		case f.frames <- frame:
		case <-f.done:
			return
		}
	}
}

// Stop kills the ffmpeg process and closes its stdout pipe.
func (f *FFmpegSource) Stop() error {
	select {
	case <-f.done:
		return nil
	default:
	}
	close(f.done)
	if f.cmd != nil && f.cmd.Process != nil {
		f.cmd.Process.Kill()
	}
	if f.out != nil {
		return f.out.Close()
	}
	return nil
}
