// SPDX-License-Identifier: EPL-2.0

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"slices"
	"strings"

	"github.com/ik5/audxcode/audio"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

// Validate checks the config after defaults were applied.
func (c *Config) Validate() error {
	if !slices.Contains([]string{ModeTranscode, ModePlay, ModeProbe}, c.Mode) {
		return fmt.Errorf("%w: unknown mode %q", ErrInvalid, c.Mode)
	}

	sources := c.Sources()
	if len(sources) == 0 {
		return fmt.Errorf("%w: no input", ErrInvalid)
	}
	if c.Mode == ModePlay && len(sources) > 1 {
		return fmt.Errorf("%w: play takes a single input", ErrInvalid)
	}

	if c.Mode == ModeTranscode {
		if c.Output.Path == "" {
			return fmt.Errorf("%w: output.path is required", ErrInvalid)
		}
		if c.Output.Codec == "" {
			return fmt.Errorf("%w: no default codec for format %q, set output.codec", ErrInvalid, c.Output.Format)
		}
	}

	if c.Target.SampleRate < 0 || c.Target.Channels < 0 {
		return fmt.Errorf("%w: negative target", ErrInvalid)
	}
	if c.Target.SampleFormat != "" {
		if _, err := audio.ParseSampleFormat(c.Target.SampleFormat); err != nil {
			return fmt.Errorf("%w: target.sample_format: %w", ErrInvalid, err)
		}
	}

	if c.Concurrency < 1 {
		return fmt.Errorf("%w: concurrency must be at least 1", ErrInvalid)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.MetricsAddr != "" {
		if _, _, err := net.SplitHostPort(c.MetricsAddr); err != nil {
			return fmt.Errorf("%w: metrics_addr: %w", ErrInvalid, err)
		}
	}

	return nil
}

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, fmt.Errorf("%w: log_level %q", ErrInvalid, s)
	}
	return l, nil
}

// TargetFormat converts Target to an audio.Format. Zero fields stay zero.
func (c *Config) TargetFormat() audio.Format {
	f := audio.Format{SampleRate: c.Target.SampleRate, Channels: c.Target.Channels}
	if c.Target.SampleFormat != "" {
		f.SampleFormat, _ = audio.ParseSampleFormat(c.Target.SampleFormat)
	}
	return f
}
