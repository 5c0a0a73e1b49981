/*
DESCRIPTION
  mjpegd is the driver program for the hardware-accelerated MJPEG
  frame-encoding pipeline: it parses the CLI surface of §6, wires the
  overlay/blocking singletons, the encoder workers and the HTTP control
  surface together, and runs until an OS signal asks it to stop.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package mjpegd is the driver program for the MJPEG encoder pipeline.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ausocean/utils/logging"

	"github.com/ausocean/hwjpeg/blocking"
	"github.com/ausocean/hwjpeg/capture"
	"github.com/ausocean/hwjpeg/config"
	"github.com/ausocean/hwjpeg/encoder"
	"github.com/ausocean/hwjpeg/encoder/cpujpeg"
	"github.com/ausocean/hwjpeg/encoder/mpp"
	"github.com/ausocean/hwjpeg/httpapi"
	"github.com/ausocean/hwjpeg/overlay"
	"github.com/ausocean/hwjpeg/scale"
	"github.com/ausocean/hwjpeg/workerpool"
)

// version is the current software version, reported by --version.
const version = "v0.1.0"

// Logging configuration, mirroring cmd/rv's lumberjack setup.
const (
	logMaxSize   = 100 // MB
	logMaxBackup = 10
	logMaxAge    = 28 // days
	logVerbosity = logging.Info
	logSuppress  = false
)

func main() {
	var (
		encoderFlag = flag.String("encoder", config.DefaultEncoder.String(), "encoder to use: cpu-jpeg|mpp-jpeg")
		scaleFlag   = flag.String("encode-scale", scalePolicyFlagDefault(), "target scale: native|1080p|2k|4k")
		qualityFlag = flag.Int("quality", config.DefaultQuality, "JPEG quality, 1-99")
		workersFlag = flag.Int("workers", config.DefaultWorkers, "number of encoder workers")
		httpFlag    = flag.String("http", config.DefaultHTTPAddr, "HTTP control surface listen address")
		boldFlag    = flag.String("bold-font", config.DefaultBoldFont, "path to bold TrueType font for overlay text")
		monoFlag    = flag.String("mono-font", config.DefaultMonoFont, "path to monospace TrueType font for overlay text")
		showVersion = flag.Bool("version", false, "show version")
	)
	flag.Parse()

	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	fileLog := &lumberjack.Logger{
		Filename:   config.DefaultLogPath,
		MaxSize:    logMaxSize,
		MaxBackups: logMaxBackup,
		MaxAge:     logMaxAge,
	}
	log := logging.New(logVerbosity, fileLog, logSuppress)
	log.Info("starting mjpegd", "version", version)

	cfg := config.Default()
	cfg.Logger = log
	if enc, ok := config.ParseEncoder(*encoderFlag); ok {
		cfg.Encoder = enc
	} else {
		cfg.LogInvalidField("Encoder", config.DefaultEncoder)
	}
	if pol, ok := scale.ParsePolicy(*scaleFlag); ok {
		cfg.ScalePolicy = pol
	} else {
		cfg.LogInvalidField("ScalePolicy", config.DefaultScale)
	}
	cfg.Quality = *qualityFlag
	cfg.Workers = *workersFlag
	cfg.HTTPAddr = *httpFlag
	cfg.BoldFontPath = *boldFlag
	cfg.MonoFontPath = *monoFlag
	if err := cfg.Validate(); err != nil {
		log.Fatal("mjpegd: invalid configuration", "error", err.Error())
	}

	fonts := overlay.NewFontSet(cfg.BoldFontPath, cfg.MonoFontPath)
	ov := overlay.New(log, fonts)
	rawCache := blocking.NewRawFrameCache()
	bl := blocking.New(log, fonts, rawCache)

	adapters := make([]encoder.Adapter, cfg.Workers)
	for i := range adapters {
		adapters[i] = newAdapter(cfg, fmt.Sprintf("worker-%d", i), ov, bl, log)
	}
	pool := workerpool.New(log, adapters)
	defer pool.Stop()

	src := capture.NewManualSource(4)
	if err := src.Start(); err != nil {
		log.Fatal("mjpegd: failed to start capture source", "error", err.Error())
	}
	defer src.Stop()

	go func() {
		for f := range src.Frames() {
			if err := pool.Submit(f); err != nil {
				log.Warning("mjpegd: failed to submit frame", "error", err.Error())
			}
		}
	}()

	go func() {
		for err := range pool.Errors() {
			log.Warning("mjpegd: dropped frame", "error", err.Error())
		}
	}()

	api := httpapi.New(log, ov, bl)
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: api.Handler()}
	go func() {
		log.Info("mjpegd: serving HTTP control surface", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("mjpegd: HTTP server failed", "error", err.Error())
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Info("mjpegd: shutting down")
	srv.Close()
}

// newAdapter constructs the encoder.Adapter for worker name per --encoder.
func newAdapter(cfg config.Config, name string, ov *overlay.Overlay, bl *blocking.Blocking, log logging.Logger) encoder.Adapter {
	if cfg.Encoder == config.EncoderCPU {
		return cpujpeg.New(cfg.Quality, cfg.ScalePolicy, ov, bl, log)
	}
	return mpp.New(name, cfg.Quality, cfg.ScalePolicy, ov, bl, log)
}

func scalePolicyFlagDefault() string { return config.DefaultScale.String() }
