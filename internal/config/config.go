// SPDX-License-Identifier: EPL-2.0

// Package config loads audxcode job files. Decoding is strict: unknown keys
// are rejected.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Modes of a job.
const (
	ModeTranscode = "transcode"
	ModePlay      = "play"
	ModeProbe     = "probe"
)

// Config is a job file.
type Config struct {
	Mode   string   `yaml:"mode"`
	Input  string   `yaml:"input,omitempty"`
	Inputs []string `yaml:"inputs,omitempty"`

	Output OutputConfig `yaml:"output"`
	Target TargetConfig `yaml:"target"`

	// DropPartialFrame discards the encoder tail instead of padding it.
	DropPartialFrame bool `yaml:"drop_partial_frame,omitempty"`

	Concurrency int    `yaml:"concurrency"`
	LogLevel    string `yaml:"log_level"`
	MetricsAddr string `yaml:"metrics_addr,omitempty"`
}

// OutputConfig names where a transcode writes. Path may be a directory when
// several inputs are given.
type OutputConfig struct {
	Path   string `yaml:"path"`
	Format string `yaml:"format"`
	Codec  string `yaml:"codec"`
}

// TargetConfig overrides the output layout. Zero values keep the source's.
type TargetConfig struct {
	SampleRate   int    `yaml:"sample_rate,omitempty"`
	Channels     int    `yaml:"channels,omitempty"`
	SampleFormat string `yaml:"sample_format,omitempty"`
}

// Default returns a config holding only defaults.
func Default() *Config {
	c := &Config{}
	c.setDefaults()
	return c
}

// Load reads and decodes the job file at path and applies defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	return Parse(bytes.NewReader(data))
}

// Parse decodes a job file from r and applies defaults. An empty document
// yields the defaults.
func Parse(r io.Reader) (*Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.setDefaults()

	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.Mode == "" {
		c.Mode = ModeTranscode
	}
	if c.Concurrency == 0 {
		c.Concurrency = 1
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Output.Format == "" {
		c.Output.Format = "wav"
	}
	if c.Output.Codec == "" {
		c.Output.Codec = defaultCodec[c.Output.Format]
	}
}

var defaultCodec = map[string]string{
	"wav":  "pcm_s16le",
	"aiff": "pcm_s16be",
	"mp3":  "mp3",
}

// Sources returns Input followed by Inputs.
func (c *Config) Sources() []string {
	var out []string
	if c.Input != "" {
		out = append(out, c.Input)
	}
	return append(out, c.Inputs...)
}
