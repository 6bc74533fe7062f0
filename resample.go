// SPDX-License-Identifier: EPL-2.0

package audxcode

import (
	"context"
	"encoding/binary"
	"log/slog"

	"github.com/ik5/audxcode/audio"
	"github.com/ik5/audxcode/pipeline"
)

// pcmSink collects mono s16 samples in memory.
type pcmSink struct {
	format  audio.Format
	samples []int16
}

func (s *pcmSink) Format() audio.Format { return s.format }

func (s *pcmSink) Write(p []byte) error {
	for i := 0; i+1 < len(p); i += 2 {
		s.samples = append(s.samples, int16(binary.LittleEndian.Uint16(p[i:])))
	}
	return nil
}

func (s *pcmSink) Close() error { return nil }

// ResampleToMono16 decodes the first audio stream of source and returns it
// as mono 16-bit PCM at targetRate. This is the usual shape for telephony
// and speech engines.
//
// Example:
//
//	pcm16, err := audxcode.ResampleToMono16(ctx, "prompt.ogg", 8000, nil)
//	if err != nil {
//	    return err
//	}
//	// pcm16 now contains mono 16-bit PCM at 8kHz
func ResampleToMono16(ctx context.Context, source string, targetRate int, log *slog.Logger) ([]int16, error) {
	sink := &pcmSink{
		format: audio.Format{SampleRate: targetRate, Channels: 1, SampleFormat: audio.SampleS16},
	}
	if err := sink.format.Validate(); err != nil {
		return nil, err
	}

	p, err := pipeline.New(pipeline.Config{
		Source:   source,
		Registry: DefaultRegistry(),
		Sink:     sink,
		Logger:   log,
	})
	if err != nil {
		return nil, err
	}

	if _, err := p.Run(ctx); err != nil {
		return nil, err
	}

	return sink.samples, nil
}
