/*
DESCRIPTION
  config.go defines Config, mjpegd's flag-derived configuration struct, in
  the style of revid/config.Config: plain exported fields, package-level
  const defaults, and a Validate/LogInvalidField pattern that substitutes a
  default and logs rather than failing outright for non-fatal bad input
  (§6's CLI surface, §7's "non-fatal" degrade-and-log philosophy).

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package config holds mjpegd's own CLI configuration, scoped to this
// pipeline rather than revid's full transcoding surface.
package config

import (
	"github.com/ausocean/utils/logging"

	"github.com/ausocean/hwjpeg/encoder"
	"github.com/ausocean/hwjpeg/scale"
)

// Encoder selects which encoder.Adapter implementation mjpegd constructs.
type Encoder int

const (
	EncoderMPP Encoder = iota
	EncoderCPU
)

func (e Encoder) String() string {
	if e == EncoderCPU {
		return "cpu-jpeg"
	}
	return "mpp-jpeg"
}

// ParseEncoder converts the --encoder flag value into an Encoder.
func ParseEncoder(s string) (Encoder, bool) {
	switch s {
	case "mpp-jpeg":
		return EncoderMPP, true
	case "cpu-jpeg":
		return EncoderCPU, true
	default:
		return EncoderMPP, false
	}
}

// Defaults for fields Validate substitutes when unset or out of range.
const (
	DefaultEncoder  = EncoderMPP
	DefaultScale    = scale.Native
	DefaultQuality  = 80
	DefaultWorkers  = 4
	DefaultHTTPAddr = ":8080"
	DefaultLogPath  = "/var/log/mjpegd/mjpegd.log"
	DefaultBoldFont = "/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf"
	DefaultMonoFont = "/usr/share/fonts/truetype/dejavu/DejaVuSansMono.ttf"
)

// Config holds mjpegd's full configuration, derived from the flags in §6:
// --encoder, --encode-scale, --quality, --workers, plus the HTTP/logging/
// font settings that are this repo's own additions (ambient stack, not in
// the distilled spec's CLI list).
type Config struct {
	Encoder     Encoder
	ScalePolicy scale.Policy
	Quality     int
	Workers     int

	HTTPAddr string
	LogPath  string

	BoldFontPath string
	MonoFontPath string

	// Logger is used by Validate and LogInvalidField to report substituted
	// defaults. Must be set before Validate is called.
	Logger logging.Logger
}

// Default returns the zero-value-safe starting configuration.
func Default() Config {
	return Config{
		Encoder:      DefaultEncoder,
		ScalePolicy:  DefaultScale,
		Quality:      DefaultQuality,
		Workers:      DefaultWorkers,
		HTTPAddr:     DefaultHTTPAddr,
		LogPath:      DefaultLogPath,
		BoldFontPath: DefaultBoldFont,
		MonoFontPath: DefaultMonoFont,
	}
}

// Validate clamps/defaults out-of-range fields in place, logging each
// substitution once via LogInvalidField, matching revid/config.Config's
// "substitute and log, don't fail" non-fatal policy (§7).
func (c *Config) Validate() error {
	if c.Quality < encoder.MinQuality || c.Quality > encoder.MaxQuality {
		c.LogInvalidField("Quality", DefaultQuality)
		c.Quality = DefaultQuality
	}
	if c.Workers < 1 {
		c.LogInvalidField("Workers", DefaultWorkers)
		c.Workers = DefaultWorkers
	}
	if c.HTTPAddr == "" {
		c.LogInvalidField("HTTPAddr", DefaultHTTPAddr)
		c.HTTPAddr = DefaultHTTPAddr
	}
	return nil
}

// LogInvalidField logs a substituted default for a bad or unset field, in
// the style of revid/config.Config.LogInvalidField.
func (c *Config) LogInvalidField(name string, def interface{}) {
	if c.Logger == nil {
		return
	}
	c.Logger.Info(name+" bad or unset, defaulting", name, def)
}
