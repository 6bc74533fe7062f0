// SPDX-License-Identifier: EPL-2.0

package audxcode

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/ik5/audxcode/audio"
	"github.com/ik5/audxcode/container"
	"github.com/ik5/audxcode/formats/aiff"
	"github.com/ik5/audxcode/formats/mp3"
	"github.com/ik5/audxcode/formats/pcm"
	"github.com/ik5/audxcode/formats/vorbis"
	"github.com/ik5/audxcode/formats/wav"
	"github.com/ik5/audxcode/pipeline"
)

// DefaultRegistry returns a registry holding every bundled container format
// and encoder.
func DefaultRegistry() *audio.Registry {
	reg := audio.NewRegistry()

	reg.Register(wav.Format)
	reg.Register(aiff.Format)
	reg.Register(vorbis.Format)
	reg.Register(mp3.Format)

	reg.RegisterEncoder(audio.CodecPCMS16LE, pcm.NewEncoder)
	reg.RegisterEncoder(audio.CodecPCMS16BE, pcm.NewEncoder)
	reg.RegisterEncoder(audio.CodecMP3, mp3.NewEncoder)

	return reg
}

// DefaultCodec returns the codec a container format is written with.
func DefaultCodec(format string) (audio.CodecID, bool) {
	switch strings.ToLower(format) {
	case wav.Format.Name:
		return audio.CodecPCMS16LE, true
	case aiff.Format.Name:
		return audio.CodecPCMS16BE, true
	case mp3.Format.Name:
		return audio.CodecMP3, true
	}

	return audio.CodecNone, false
}

// ProbeResult describes a source without decoding it.
type ProbeResult struct {
	Source  string
	Info    audio.ContainerInfo
	Streams []audio.StreamDescriptor
}

// Probe opens source, reads its container and stream descriptions and
// closes it again.
func Probe(ctx context.Context, source string, reg *audio.Registry, opts ...container.Option) (ProbeResult, error) {
	in, err := container.Open(ctx, source, reg, opts...)
	if err != nil {
		return ProbeResult{}, err
	}

	res := ProbeResult{Source: source, Info: in.Info(), Streams: in.Streams()}

	return res, in.Close()
}

// TranscodeOptions tune Transcode. Zero values pick the defaults.
type TranscodeOptions struct {
	// Format of the output. Taken from the destination's extension when
	// empty.
	Format string
	// Codec of the output. DefaultCodec(Format) when empty.
	Codec   audio.CodecID
	BitRate int
	Target  audio.Format

	Registry         *audio.Registry
	DropPartialFrame bool
	Logger           *slog.Logger
	Observer         pipeline.Observer
}

// Transcode decodes the first audio stream of source and writes it to dst.
func Transcode(ctx context.Context, source, dst string, opts TranscodeOptions) (pipeline.Report, error) {
	reg := opts.Registry
	if reg == nil {
		reg = DefaultRegistry()
	}

	format := opts.Format
	if format == "" {
		f, ok := reg.ByExtension(filepath.Ext(dst))
		if !ok {
			return pipeline.Report{}, fmt.Errorf("%w: no format for %q", audio.ErrUnknownFormat, dst)
		}
		format = f.Name
	}

	codec := opts.Codec
	if codec == audio.CodecNone {
		var ok bool
		if codec, ok = DefaultCodec(format); !ok {
			return pipeline.Report{}, fmt.Errorf("%w: no encoder for format %q", audio.ErrUnsupportedCodec, format)
		}
	}

	p, err := pipeline.New(pipeline.Config{
		Source:         source,
		Registry:       reg,
		Output:         &pipeline.OutputConfig{Path: dst, Format: format, Codec: codec, BitRate: opts.BitRate},
		Target:         opts.Target,
		EncoderOptions: audio.EncoderOptions{DropPartialFrame: opts.DropPartialFrame},
		Logger:         opts.Logger,
		Observer:       opts.Observer,
	})
	if err != nil {
		return pipeline.Report{}, err
	}

	return p.Run(ctx)
}
