// SPDX-License-Identifier: EPL-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"text/tabwriter"

	"golang.org/x/sync/errgroup"

	"github.com/ik5/audxcode"
	"github.com/ik5/audxcode/audio"
	"github.com/ik5/audxcode/container"
	"github.com/ik5/audxcode/internal/config"
	"github.com/ik5/audxcode/internal/metrics"
	"github.com/ik5/audxcode/pipeline"
	"github.com/ik5/audxcode/sink"
)

// errSameOutput is returned when two inputs would be written to one file.
var errSameOutput = errors.New("inputs share an output file")

func listFormats(w io.Writer) error {
	reg := audxcode.DefaultRegistry()
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "FORMAT\tACCESS\tEXTENSIONS\tDESCRIPTION")
	for _, f := range reg.Formats() {
		access := "r"
		if f.NewMuxer != nil {
			access = "rw"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", f.Name, access, strings.Join(f.Extensions, ","), f.LongName)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "encoders:")
	for _, c := range reg.Encoders() {
		fmt.Fprintf(w, "  %s\n", c)
	}

	return nil
}

func probe(ctx context.Context, cfg *config.Config, w io.Writer, log *slog.Logger) error {
	reg := audxcode.DefaultRegistry()

	for _, src := range cfg.Sources() {
		res, err := audxcode.Probe(ctx, src, reg, container.WithLogger(log))
		if err != nil {
			return err
		}
		printProbe(w, res)
	}

	return nil
}

func printProbe(w io.Writer, res audxcode.ProbeResult) {
	fmt.Fprintf(w, "Input: %s\n", res.Source)
	fmt.Fprintf(w, "  Format: %s (%s)\n", res.Info.Format, res.Info.LongName)
	if res.Info.Duration > 0 {
		fmt.Fprintf(w, "  Duration: %s\n", res.Info.Duration)
	}
	if res.Info.BitRate > 0 {
		fmt.Fprintf(w, "  Bit rate: %d kb/s\n", res.Info.BitRate/1000)
	}
	printMetadata(w, "  ", res.Info.Metadata)

	for _, s := range res.Streams {
		fmt.Fprintf(w, "  %s\n", s)
		printMetadata(w, "    ", s.Metadata)
	}
}

func printMetadata(w io.Writer, indent string, md map[string]string) {
	if len(md) == 0 {
		return
	}
	fmt.Fprintf(w, "%sMetadata:\n", indent)
	for _, k := range slices.Sorted(maps.Keys(md)) {
		fmt.Fprintf(w, "%s  %-12s: %s\n", indent, k, md[k])
	}
}

func play(ctx context.Context, cfg *config.Config, raw bool, stdout io.Writer, log *slog.Logger) error {
	reg := audxcode.DefaultRegistry()
	src := cfg.Sources()[0]

	in, err := container.Open(ctx, src, reg, container.WithLogger(log))
	if err != nil {
		return err
	}

	stream, err := pipeline.SelectStream(in.Streams(), audio.MediaAudio)
	if err != nil {
		in.Close()
		return err
	}

	// The sink dictates the pipeline's output format, so fill in what the
	// target leaves open from the stream.
	format := cfg.TargetFormat()
	if format.SampleRate == 0 {
		format.SampleRate = stream.Params.Format.SampleRate
	}
	if format.Channels == 0 {
		format.Channels = stream.Params.Format.Channels
	}
	if format.SampleFormat == audio.SampleUnknown {
		format.SampleFormat = audio.SampleS16
	}

	var out audio.Sink
	if raw {
		out, err = sink.NewWriter(stdout, format)
	} else {
		out, err = sink.NewPlayback(format, sink.WithLogger(log))
	}
	if err != nil {
		in.Close()
		return err
	}

	p, err := pipeline.New(pipeline.Config{Input: in, Sink: out, Logger: log})
	if err != nil {
		in.Close()
		out.Close()
		return err
	}

	_, err = p.Run(ctx)
	return err
}

func transcode(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	reg := audxcode.DefaultRegistry()
	sources := cfg.Sources()

	var obs pipeline.Observer
	if cfg.MetricsAddr != "" {
		m := metrics.New()
		obs = m

		mctx, cancel := context.WithCancel(ctx)
		defer cancel()
		go func() {
			if err := m.Serve(mctx, cfg.MetricsAddr, log); err != nil {
				log.Error("metrics server", "error", err)
			}
		}()
	}

	dsts := make([]string, len(sources))
	seen := make(map[string]string, len(sources))
	for i, src := range sources {
		dst, err := outputPath(reg, cfg, src, len(sources) > 1)
		if err != nil {
			return err
		}
		key := filepath.Clean(dst)
		if prev, ok := seen[key]; ok {
			return fmt.Errorf("%w: %s and %s both write %s", errSameOutput, prev, src, dst)
		}
		seen[key] = src
		dsts[i] = dst
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Concurrency)

	for i, src := range sources {
		dst := dsts[i]
		g.Go(func() error {
			rep, err := audxcode.Transcode(ctx, src, dst, audxcode.TranscodeOptions{
				Format:           cfg.Output.Format,
				Codec:            audio.CodecID(cfg.Output.Codec),
				Target:           cfg.TargetFormat(),
				Registry:         reg,
				DropPartialFrame: cfg.DropPartialFrame,
				Logger:           log.With("source", src),
				Observer:         obs,
			})
			if err != nil {
				return fmt.Errorf("%s: %w", src, err)
			}

			log.Info("transcoded",
				slog.String("source", src),
				slog.String("output", dst),
				slog.Int("packets", rep.PacketsWritten),
				slog.Int("decode_errors", rep.DecodeErrors))

			return nil
		})
	}

	return g.Wait()
}

// outputPath names the file src is written to. With several inputs, or
// when the configured path is a directory, it is the source's base name
// with the output format's extension inside that directory.
func outputPath(reg *audio.Registry, cfg *config.Config, src string, many bool) (string, error) {
	out := cfg.Output.Path

	isDir := many || strings.HasSuffix(out, string(filepath.Separator))
	if fi, err := os.Stat(out); err == nil && fi.IsDir() {
		isDir = true
	}
	if !isDir {
		return out, nil
	}

	format := cfg.Output.Format
	if format == "" {
		return "", fmt.Errorf("%w: -format is required when writing into a directory", audio.ErrUnknownFormat)
	}
	f, ok := reg.Get(format)
	if !ok || len(f.Extensions) == 0 {
		return "", fmt.Errorf("%w: %q", audio.ErrUnknownFormat, format)
	}

	base := filepath.Base(src)
	if i := strings.IndexAny(base, "?#"); i >= 0 {
		base = base[:i]
	}
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." || base == string(filepath.Separator) {
		base = "output"
	}

	if err := os.MkdirAll(out, 0o755); err != nil {
		return "", err
	}

	return filepath.Join(out, base+"."+f.Extensions[0]), nil
}
