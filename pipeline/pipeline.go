// SPDX-License-Identifier: EPL-2.0

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"

	"github.com/ik5/audxcode/audio"
	"github.com/ik5/audxcode/container"
)

// EncoderName is written as the encoder tag of transcoded files.
const EncoderName = "audxcode"

// OutputConfig names the file a transcode writes.
type OutputConfig struct {
	Path    string
	Format  string
	Codec   audio.CodecID
	BitRate int
}

// Config describes one run. Exactly one of Output and Sink must be set.
type Config struct {
	// Source is a path or URL opened through Registry. Input, when set,
	// is used instead and Source only names it in logs. The pipeline closes
	// Input and Sink when the run ends.
	Source   string
	Input    *container.Input
	Registry *audio.Registry

	// Kind is the kind of stream to decode, MediaAudio when zero.
	Kind audio.MediaKind

	Output *OutputConfig
	Sink   audio.Sink

	// Target overrides the sample rate and channel count of the output.
	// Zero fields keep the decoded values; the sample format defaults to
	// s16. Ignored for sinks, which dictate their own format.
	Target audio.Format

	DecoderOptions audio.DecoderOptions
	EncoderOptions audio.EncoderOptions

	Logger   *slog.Logger
	Observer Observer
	// OpenOptions are passed to container.Open.
	OpenOptions []container.Option
}

// Pipeline drives a single stream from a container through decoding and
// conversion to an encoder and muxer, or to a sink. It is used once.
type Pipeline struct {
	cfg   Config
	id    string
	log   *slog.Logger
	obs   Observer
	state atomic.Int32
	ran   atomic.Bool

	in   *container.Input
	dec  audio.Decoder
	enc  audio.Encoder
	out  *container.Output
	sink audio.Sink
	conv *audio.Converter

	outIndex  int
	pkt       *audio.Packet
	batch     *audio.SampleBatch
	converted *audio.SampleBatch
	encoded   *audio.Packet
	raw       []byte

	rep Report
}

// New checks cfg and returns an idle pipeline.
func New(cfg Config) (*Pipeline, error) {
	switch {
	case (cfg.Output == nil) == (cfg.Sink == nil):
		return nil, fmt.Errorf("%w: need exactly one of output and sink", ErrBadConfig)
	case cfg.Input == nil && cfg.Source == "":
		return nil, fmt.Errorf("%w: no source", ErrBadConfig)
	case cfg.Input == nil && cfg.Registry == nil, cfg.Output != nil && cfg.Registry == nil:
		return nil, fmt.Errorf("%w: no registry", ErrBadConfig)
	case cfg.Output != nil && (cfg.Output.Path == "" || cfg.Output.Format == "" || cfg.Output.Codec == audio.CodecNone):
		return nil, fmt.Errorf("%w: output needs path, format and codec", ErrBadConfig)
	}

	if cfg.Kind == audio.MediaOther {
		cfg.Kind = audio.MediaAudio
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Observer == nil {
		cfg.Observer = NopObserver{}
	}
	if cfg.Input != nil && cfg.Source == "" {
		cfg.Source = cfg.Input.Source
	}

	id := uuid.NewString()

	return &Pipeline{
		cfg:  cfg,
		id:   id,
		log:  cfg.Logger.With("component", "pipeline", "run_id", id),
		obs:  cfg.Observer,
		in:   cfg.Input,
		sink: cfg.Sink,
	}, nil
}

// ID is the run id carried by logs and the Report.
func (p *Pipeline) ID() string { return p.id }

// State may be called from any goroutine.
func (p *Pipeline) State() State { return State(p.state.Load()) }

func (p *Pipeline) setState(s State) {
	p.state.Store(int32(s))
	p.log.Debug("state", slog.String("state", s.String()))
	p.obs.StateChanged(p.id, s)
}

// Run processes the whole input. Recoverable decode errors are counted in
// the Report; the returned error is set only for failures that stopped the
// run. Resources are released on every path and release failures are
// logged, not returned. ctx is checked before each packet.
func (p *Pipeline) Run(ctx context.Context) (Report, error) {
	if !p.ran.CompareAndSwap(false, true) {
		return Report{}, ErrAlreadyRun
	}

	start := time.Now()
	p.rep = Report{RunID: p.id}

	err := p.run(ctx)

	p.teardown()
	p.setState(StateClosed)
	p.rep.Elapsed = time.Since(start)

	if err != nil {
		p.log.Error("run failed", slog.String("error", err.Error()))
	} else {
		p.log.Info("run finished",
			slog.Int("packets", p.rep.PacketsSelected),
			slog.Int64("frames", p.rep.FramesDecoded),
			slog.Int("decode_errors", p.rep.DecodeErrors),
			slog.Duration("elapsed", p.rep.Elapsed))
	}
	p.obs.RunFinished(p.rep, err)

	return p.rep, err
}

func (p *Pipeline) run(ctx context.Context) error {
	stream, err := p.discover(ctx)
	if err != nil {
		return err
	}

	if err := p.openDecoder(stream); err != nil {
		return err
	}

	if p.cfg.Output != nil {
		err = p.openEncoder(stream)
	} else {
		err = p.openSink()
	}
	if err != nil {
		return err
	}

	p.setState(StateRunning)
	if err := p.loop(ctx, stream.Index); err != nil {
		return err
	}

	p.setState(StateDecoderFlushing)
	if err := p.flushDecoder(); err != nil {
		return err
	}

	if p.enc != nil {
		p.setState(StateEncoderFlushing)
		if err := p.flushEncoder(); err != nil {
			return err
		}
	}

	return nil
}

func (p *Pipeline) discover(ctx context.Context) (audio.StreamDescriptor, error) {
	in := p.in
	if in == nil {
		opts := append([]container.Option{container.WithLogger(p.cfg.Logger)}, p.cfg.OpenOptions...)
		var err error
		if in, err = container.Open(ctx, p.cfg.Source, p.cfg.Registry, opts...); err != nil {
			return audio.StreamDescriptor{}, err
		}
	}
	p.in = in

	info := in.Info()
	p.rep.Input = info
	p.setState(StateStreamsDiscovered)

	p.log.Info("input",
		slog.String("source", p.cfg.Source),
		slog.String("format", info.Format),
		slog.Duration("duration", info.Duration),
		slog.Int("streams", len(in.Streams())))
	for _, s := range in.Streams() {
		p.log.Info("stream", slog.String("desc", s.String()), slog.Bool("decodable", s.HasDecoder()))
	}

	stream, err := SelectStream(in.Streams(), p.cfg.Kind)
	if err != nil {
		return stream, err
	}
	p.rep.Stream = stream

	return stream, nil
}

func (p *Pipeline) openDecoder(stream audio.StreamDescriptor) error {
	dec, err := stream.NewDecoder()
	if err != nil {
		return err
	}
	if err := dec.Open(p.cfg.DecoderOptions); err != nil {
		return fmt.Errorf("open decoder for stream %d: %w", stream.Index, err)
	}
	p.dec = dec

	format := dec.Params().Format
	p.pkt = audio.NewPacket()
	p.batch = audio.NewSampleBatch(format, max(dec.Params().FrameSize, 1))
	p.setState(StateDecoderOpen)

	return nil
}

// outputFormat applies Target to the decoded format.
func (p *Pipeline) outputFormat() audio.Format {
	f := p.dec.Params().Format
	t := p.cfg.Target

	if t.SampleRate > 0 {
		f.SampleRate = t.SampleRate
	}
	if t.Channels > 0 {
		f.Channels = t.Channels
	}
	f.SampleFormat = audio.SampleS16
	if t.SampleFormat != audio.SampleUnknown {
		f.SampleFormat = t.SampleFormat
	}

	return f
}

func (p *Pipeline) openEncoder(stream audio.StreamDescriptor) error {
	oc := p.cfg.Output
	format := p.outputFormat()

	conv, err := audio.NewConverter(format)
	if err != nil {
		return err
	}
	p.conv = conv

	enc, err := p.cfg.Registry.NewEncoder(audio.CodecParams{Codec: oc.Codec, Format: format, BitRate: oc.BitRate})
	if err != nil {
		return fmt.Errorf("create encoder: %w", err)
	}
	if err := enc.Open(p.cfg.EncoderOptions); err != nil {
		return fmt.Errorf("open encoder: %w", err)
	}
	p.enc = enc
	p.encoded = audio.NewPacket()
	p.converted = audio.NewSampleBatch(format, 0)
	p.rep.Output = enc.Params()
	p.setState(StateEncoderOpen)

	out, err := container.Create(oc.Path, oc.Format, p.cfg.Registry)
	if err != nil {
		return err
	}
	p.out = out

	md := maps.Clone(stream.Metadata)
	if len(md) == 0 {
		md = maps.Clone(p.rep.Input.Metadata)
	}
	if md == nil {
		md = make(map[string]string)
	}
	md[audio.MetaEncoder] = EncoderName

	if p.outIndex, err = out.AddStream(enc.Params(), md); err != nil {
		return fmt.Errorf("%w: add stream: %w", audio.ErrWrite, err)
	}
	if err := out.WriteHeader(); err != nil {
		return err
	}

	p.log.Info("output",
		slog.String("path", oc.Path),
		slog.String("format", oc.Format),
		slog.String("codec", enc.Params().String()))
	p.setState(StateWriterOpen)

	return nil
}

func (p *Pipeline) openSink() error {
	format := p.sink.Format()
	conv, err := audio.NewConverter(format)
	if err != nil {
		return err
	}
	p.conv = conv
	p.rep.Output = audio.CodecParams{Format: format}

	p.log.Info("sink", slog.String("format", format.String()))
	p.setState(StateWriterOpen)

	return nil
}

func (p *Pipeline) loop(ctx context.Context, index int) error {
	var fatal error
	emit := func(b *audio.SampleBatch) error {
		fatal = p.deliver(b, false)
		return fatal
	}

	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("run canceled: %w", err)
		}

		err := p.in.ReadPacket(p.pkt)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		selected := p.pkt.StreamIndex == index
		p.rep.PacketsRead++
		p.obs.PacketRead(selected, p.pkt.Size())
		if !selected {
			continue
		}
		p.rep.PacketsSelected++

		n, err := DecodePacket(p.dec, p.batch, p.pkt, emit)
		p.rep.BytesConsumed += int64(n)
		if fatal != nil {
			return fatal
		}
		if err != nil {
			p.rep.decodeError(err)
			p.obs.DecodeError(err)
			p.log.Warn("decode error, skipping rest of packet",
				slog.Int("packet", p.rep.PacketsSelected-1),
				slog.String("error", err.Error()))
		}
	}
}

// flushDecoder drains the decoder. A drain error ends the flush but not the
// run.
func (p *Pipeline) flushDecoder() error {
	for b, err := range audio.FlushDecoder(p.dec, p.batch) {
		if err != nil {
			p.rep.FlushErr = fmt.Errorf("%w: flush: %w", audio.ErrDecode, err)
			p.log.Warn("decoder flush stopped", slog.String("error", err.Error()))
			return nil
		}
		if err := p.deliver(b, true); err != nil {
			return err
		}
	}

	return nil
}

func (p *Pipeline) flushEncoder() error {
	for pkt, err := range audio.FlushEncoder(p.enc, p.encoded) {
		if err != nil {
			return fmt.Errorf("%w: encoder flush: %w", audio.ErrWrite, err)
		}
		p.rep.PacketsFlushed++
		if err := p.write(pkt); err != nil {
			return err
		}
	}

	return nil
}

// deliver sends one decoded batch downstream.
func (p *Pipeline) deliver(b *audio.SampleBatch, flush bool) error {
	frames := b.Frames()
	if flush {
		p.rep.BatchesFlushed++
	} else {
		p.rep.BatchesDecoded++
	}
	p.rep.FramesDecoded += int64(frames)
	p.obs.BatchDecoded(frames, flush)

	if p.sink != nil {
		p.raw = p.conv.ConvertBytes(p.raw, b)
		if err := p.sink.Write(p.raw); err != nil {
			return fmt.Errorf("%w: sink: %w", audio.ErrWrite, err)
		}
		p.rep.FramesToSink += int64(p.conv.OutputFrames(frames, b.Format.SampleRate))
		return nil
	}

	p.converted = p.conv.ConvertBatch(p.converted, b)

	return EncodeBatch(p.enc, p.encoded, p.converted, func(pkt *audio.Packet) error {
		p.rep.PacketsEncoded++
		return p.write(pkt)
	})
}

func (p *Pipeline) write(pkt *audio.Packet) error {
	pkt.StreamIndex = p.outIndex
	if err := p.out.WritePacket(pkt, false); err != nil {
		return err
	}

	p.rep.PacketsWritten++
	p.rep.BytesWritten += int64(pkt.Size())
	p.obs.PacketWritten(pkt.Size())

	return nil
}

// teardown releases everything acquired, in reverse order of use.
func (p *Pipeline) teardown() {
	var result *multierror.Error
	release := func(name string, c interface{ Close() error }) {
		if err := c.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", name, err))
		}
	}

	if p.sink != nil {
		release("sink", p.sink)
	}
	if p.enc != nil {
		release("encoder", p.enc)
	}
	if p.out != nil {
		release("writer", p.out)
	}
	if p.dec != nil {
		release("decoder", p.dec)
	}
	if p.in != nil {
		release("reader", p.in)
	}

	if err := result.ErrorOrNil(); err != nil {
		p.log.Warn("teardown", slog.String("error", err.Error()))
	}
}
