// SPDX-License-Identifier: EPL-2.0

// Command audxcode probes, plays and transcodes audio files and URLs.
//
// Usage:
//
//	audxcode probe <src>...
//	audxcode play [-raw] <src>
//	audxcode transcode -o <out> [-format mp3] [-codec mp3] [-j 4] <src>...
//	audxcode formats
//
// Every subcommand accepts -config job.yaml; flags override its values.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ik5/audxcode"
	"github.com/ik5/audxcode/internal/config"
)

var version = "dev"

const usage = `audxcode %s

usage:
  audxcode probe [flags] <src>...
  audxcode play [flags] <src>
  audxcode transcode -o <out> [flags] <src>...
  audxcode formats

run "audxcode <command> -h" for the flags of a command
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, usage, version)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1], os.Args[2:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		slog.Error("audxcode failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd string, args []string, stdout, stderr io.Writer) error {
	switch cmd {
	case "formats":
		return listFormats(stdout)
	case config.ModeProbe, config.ModePlay, config.ModeTranscode:
	case "-h", "-help", "--help", "help":
		fmt.Fprintf(stdout, usage, version)
		return nil
	default:
		fmt.Fprintf(stderr, usage, version)
		return fmt.Errorf("unknown command %q", cmd)
	}

	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fl := bindFlags(fs, cmd)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := fl.config(fs, cmd)
	if err != nil {
		return err
	}

	level, _ := config.ParseLevel(cfg.LogLevel)
	log := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	switch cmd {
	case config.ModeProbe:
		return probe(ctx, cfg, stdout, log)
	case config.ModePlay:
		return play(ctx, cfg, fl.raw, stdout, log)
	default:
		return transcode(ctx, cfg, log)
	}
}

// flags holds every command line option. A command binds the subset it
// uses.
type flags struct {
	configPath string
	logLevel   string

	output       string
	format       string
	codec        string
	bitRate      int
	sampleRate   int
	channels     int
	sampleFormat string
	dropPartial  bool
	jobs         int
	metricsAddr  string

	raw bool
}

func bindFlags(fs *flag.FlagSet, cmd string) *flags {
	f := &flags{}

	fs.StringVar(&f.configPath, "config", "", "job file (YAML)")
	fs.StringVar(&f.logLevel, "log-level", "", "debug, info, warn or error")

	if cmd == config.ModeProbe {
		return f
	}

	fs.IntVar(&f.sampleRate, "rate", 0, "output sample rate (0 keeps the source rate)")
	fs.IntVar(&f.channels, "channels", 0, "output channel count (0 keeps the source layout)")
	fs.StringVar(&f.sampleFormat, "sample-format", "", "output sample format: s16 or f32")

	if cmd == config.ModePlay {
		fs.BoolVar(&f.raw, "raw", false, "write raw PCM to stdout instead of playing")
		return f
	}

	fs.StringVar(&f.output, "o", "", "output file, or directory for several inputs")
	fs.StringVar(&f.format, "format", "", "output container format (default from the output extension)")
	fs.StringVar(&f.codec, "codec", "", "output codec (default for the format)")
	fs.IntVar(&f.bitRate, "bitrate", 0, "output bit rate in bit/s for lossy codecs")
	fs.BoolVar(&f.dropPartial, "drop-partial", false, "drop the last partial frame instead of padding it")
	fs.IntVar(&f.jobs, "j", 0, "number of inputs transcoded at once")
	fs.StringVar(&f.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")

	return f
}

// config loads the job file, if any, and lays the flags that were set on
// top of it.
func (f *flags) config(fs *flag.FlagSet, cmd string) (*config.Config, error) {
	cfg := config.Default()
	if f.configPath != "" {
		var err error
		if cfg, err = config.Load(f.configPath); err != nil {
			return nil, err
		}
	}
	cfg.Mode = cmd

	if fs.NArg() > 0 {
		cfg.Input = ""
		cfg.Inputs = fs.Args()
	}

	set := make(map[string]bool)
	fs.Visit(func(fl *flag.Flag) { set[fl.Name] = true })

	if set["log-level"] {
		cfg.LogLevel = f.logLevel
	}
	if set["o"] {
		cfg.Output.Path = f.output
	}
	if set["format"] {
		cfg.Output.Format = strings.ToLower(f.format)
		if !set["codec"] {
			cfg.Output.Codec = ""
		}
	} else if set["o"] && f.configPath == "" {
		// Let the output extension pick the format.
		cfg.Output.Format = ""
		cfg.Output.Codec = ""
	}
	if set["codec"] {
		cfg.Output.Codec = f.codec
	}
	if set["rate"] {
		cfg.Target.SampleRate = f.sampleRate
	}
	if set["channels"] {
		cfg.Target.Channels = f.channels
	}
	if set["sample-format"] {
		cfg.Target.SampleFormat = f.sampleFormat
	}
	if set["drop-partial"] {
		cfg.DropPartialFrame = f.dropPartial
	}
	if set["j"] {
		cfg.Concurrency = f.jobs
	}
	if set["metrics-addr"] {
		cfg.MetricsAddr = f.metricsAddr
	}

	if cfg.Output.Codec == "" && cfg.Output.Format != "" {
		if c, ok := audxcode.DefaultCodec(cfg.Output.Format); ok {
			cfg.Output.Codec = string(c)
		}
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate runs config.Validate, tolerating an output format left for the
// output extension to decide.
func validate(cfg *config.Config) error {
	if cfg.Mode != config.ModeTranscode || cfg.Output.Format != "" {
		return cfg.Validate()
	}

	probe := *cfg
	probe.Output.Format = "wav"
	probe.Output.Codec = "pcm_s16le"

	return probe.Validate()
}
