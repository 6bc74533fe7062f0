// SPDX-License-Identifier: EPL-2.0

package sink

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gen2brain/malgo"
	"github.com/hashicorp/go-multierror"

	"github.com/ik5/audxcode/audio"
)

// DefaultBuffer is how much audio a Playback queues ahead of the device.
const DefaultBuffer = 500 * time.Millisecond

// device is the part of a malgo device Playback drives.
type device interface {
	Start() error
	Stop() error
	Uninit()
}

// Playback is a sink that plays through the default output device.
type Playback struct {
	format  audio.Format
	q       *queue
	dev     device
	release func() error
	log     *slog.Logger
	buffer  time.Duration

	once    sync.Once
	started bool
}

type PlaybackOption func(*Playback)

func WithLogger(l *slog.Logger) PlaybackOption {
	return func(p *Playback) { p.log = l.With("component", "playback") }
}

// WithBuffer sets how much audio may be queued before Write blocks.
func WithBuffer(d time.Duration) PlaybackOption {
	return func(p *Playback) {
		if d > 0 {
			p.buffer = d
		}
	}
}

func deviceFormat(f audio.SampleFormat) (malgo.FormatType, error) {
	switch f {
	case audio.SampleS16:
		return malgo.FormatS16, nil
	case audio.SampleF32:
		return malgo.FormatF32, nil
	}

	return malgo.FormatUnknown, fmt.Errorf("%w: playback of %s", audio.ErrInvalidFormat, f)
}

func bytesPer(f audio.Format, d time.Duration) int {
	frame := f.Channels * f.SampleFormat.BytesPerSample()
	return max(int(d.Seconds()*float64(f.SampleRate))*frame, frame)
}

// NewPlayback opens the default playback device for format. The device
// starts with the first Write.
func NewPlayback(format audio.Format, opts ...PlaybackOption) (*Playback, error) {
	if err := format.Validate(); err != nil {
		return nil, err
	}
	sf, err := deviceFormat(format.SampleFormat)
	if err != nil {
		return nil, err
	}

	p := &Playback{
		format: format,
		log:    slog.Default().With("component", "playback"),
		buffer: DefaultBuffer,
	}
	for _, o := range opts {
		o(p)
	}
	p.q = newQueue(bytesPer(format, p.buffer))

	mctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(msg string) {
		p.log.Debug("miniaudio", slog.String("message", msg))
	})
	if err != nil {
		return nil, fmt.Errorf("%w: audio context: %w", audio.ErrOpen, err)
	}

	cfg := malgo.DefaultDeviceConfig(malgo.Playback)
	cfg.Playback.Format = sf
	cfg.Playback.Channels = uint32(format.Channels)
	cfg.SampleRate = uint32(format.SampleRate)
	cfg.Alsa.NoMMap = 1

	dev, err := malgo.InitDevice(mctx.Context, cfg, malgo.DeviceCallbacks{Data: p.fill})
	if err != nil {
		_ = mctx.Uninit()
		mctx.Free()
		return nil, fmt.Errorf("%w: playback device: %w", audio.ErrOpen, err)
	}

	p.dev = dev
	p.release = func() error {
		defer mctx.Free()
		return mctx.Uninit()
	}

	p.log.Info("device open", slog.String("format", format.String()))

	return p, nil
}

// fill runs on the device thread. Missing bytes play as silence.
func (p *Playback) fill(out, _ []byte, _ uint32) {
	n := p.q.Pop(out)
	clear(out[n:])
}

func (p *Playback) Format() audio.Format { return p.format }

// Write queues p, blocking while the queue is full.
func (p *Playback) Write(b []byte) error {
	if !p.started {
		if err := p.dev.Start(); err != nil {
			return fmt.Errorf("start device: %w", err)
		}
		p.started = true
	}

	return p.q.Push(b)
}

// Close waits for queued audio to play, then stops and releases the device.
func (p *Playback) Close() error {
	var result *multierror.Error

	closed := false
	p.once.Do(func() {
		closed = true

		if p.started {
			// Allow the device a full buffer past the queued audio.
			wait := time.Duration(float64(p.q.Len())/float64(bytesPer(p.format, time.Second))*float64(time.Second)) + p.buffer
			if !p.q.Drain(wait) {
				p.log.Warn("playback queue not drained", slog.Int("bytes", p.q.Len()))
			}
		}
		p.q.Close()

		if p.started {
			if err := p.dev.Stop(); err != nil {
				result = multierror.Append(result, fmt.Errorf("stop device: %w", err))
			}
		}
		p.dev.Uninit()

		if p.release != nil {
			if err := p.release(); err != nil {
				result = multierror.Append(result, fmt.Errorf("release context: %w", err))
			}
		}
	})
	if !closed {
		return audio.ErrClosed
	}

	return result.ErrorOrNil()
}
