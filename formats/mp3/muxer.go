// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"fmt"
	"io"

	"github.com/ik5/audxcode/audio"
)

// Muxer writes raw Layer III frames, preceded by an ID3v2.4 tag when the
// stream carries metadata.
type Muxer struct {
	w        io.Writer
	metadata map[string]string

	streams int
	header  bool
	closed  bool
}

func NewMuxer(w io.Writer) *Muxer {
	return &Muxer{w: w}
}

func (m *Muxer) AddStream(params audio.CodecParams, metadata map[string]string) (int, error) {
	if m.header {
		return 0, fmt.Errorf("%w: stream added after header", audio.ErrMuxerState)
	}
	if m.streams > 0 {
		return 0, fmt.Errorf("%w: mp3 holds a single stream", audio.ErrMuxerState)
	}
	if params.Codec != audio.CodecMP3 {
		return 0, fmt.Errorf("%w: mp3 muxer takes mp3, got %q", audio.ErrUnsupportedCodec, params.Codec)
	}

	m.metadata = metadata
	m.streams++

	return 0, nil
}

func (m *Muxer) WriteHeader() error {
	if m.header || m.closed || m.streams == 0 {
		return fmt.Errorf("%w: header needs exactly one stream and an open muxer", audio.ErrMuxerState)
	}

	if err := writeID3(m.w, m.metadata); err != nil {
		return fmt.Errorf("%w: id3: %w", audio.ErrWrite, err)
	}
	m.header = true

	return nil
}

func (m *Muxer) WritePacket(pkt *audio.Packet, _ bool) error {
	if !m.header || m.closed {
		return fmt.Errorf("%w: write before header or after close", audio.ErrMuxerState)
	}
	if pkt.StreamIndex != 0 {
		return fmt.Errorf("%w: no stream %d", audio.ErrMuxerState, pkt.StreamIndex)
	}

	if _, err := m.w.Write(pkt.Data); err != nil {
		return fmt.Errorf("%w: %w", audio.ErrWrite, err)
	}

	return nil
}

func (m *Muxer) Close() error {
	if m.closed {
		return audio.ErrClosed
	}
	m.closed = true

	if !m.header && m.streams > 0 {
		return fmt.Errorf("%w: closed before header", audio.ErrMuxerState)
	}

	return nil
}
