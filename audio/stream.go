// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"maps"
	"time"
)

// DecoderFactory builds a decoder for a stream's codec parameters.
type DecoderFactory func(params CodecParams) (Decoder, error)

// StreamDescriptor describes one stream of a container. It is a value and is
// not modified after discovery.
//
// Index is the position of the stream inside the container and is the only
// field that packets are correlated by. ID is the container's own identifier
// for the stream (an Ogg serial number for example) and must not be used to
// match packets.
type StreamDescriptor struct {
	Index    int
	ID       int64
	Kind     MediaKind
	Params   CodecParams
	Duration time.Duration
	Metadata map[string]string

	decoder DecoderFactory
}

// NewStream builds a descriptor. dec may be nil when no decoder exists for
// the stream's codec.
func NewStream(index int, id int64, kind MediaKind, params CodecParams, dec DecoderFactory) StreamDescriptor {
	return StreamDescriptor{
		Index:   index,
		ID:      id,
		Kind:    kind,
		Params:  params,
		decoder: dec,
	}
}

// WithMetadata returns a copy of s carrying a copy of md.
func (s StreamDescriptor) WithMetadata(md map[string]string) StreamDescriptor {
	s.Metadata = maps.Clone(md)
	return s
}

// WithDuration returns a copy of s with the given duration.
func (s StreamDescriptor) WithDuration(d time.Duration) StreamDescriptor {
	s.Duration = d
	return s
}

// HasDecoder reports whether a decoder can be created for the stream.
func (s StreamDescriptor) HasDecoder() bool { return s.decoder != nil }

// NewDecoder creates an unopened decoder for the stream.
func (s StreamDescriptor) NewDecoder() (Decoder, error) {
	if s.decoder == nil {
		return nil, fmt.Errorf("stream %d (%s): %w", s.Index, s.Params.Codec, ErrNoDecoder)
	}

	dec, err := s.decoder(s.Params)
	if err != nil {
		return nil, fmt.Errorf("stream %d: %w", s.Index, err)
	}

	return dec, nil
}

func (s StreamDescriptor) String() string {
	coder := "unknown coder"
	if s.HasDecoder() {
		coder = s.Params.String()
	} else if s.Params.Codec != CodecNone {
		coder = string(s.Params.Codec) + " (no decoder)"
	}

	return fmt.Sprintf("Stream #0.%d (%s): %s", s.Index, s.Kind, coder)
}
