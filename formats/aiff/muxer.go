// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"

	"github.com/ik5/audxcode/audio"
)

// Muxer writes a single pcm_s16be stream through a go-audio aiff.Encoder.
type Muxer struct {
	w      io.WriteSeeker
	enc    *aiff.Encoder
	buf    *goaudio.IntBuffer
	params audio.CodecParams

	streams int
	header  bool
	written bool
	closed  bool
}

func NewMuxer(w io.WriteSeeker) *Muxer {
	return &Muxer{w: w}
}

// AddStream accepts one pcm_s16be stream. AIFF carries no tags here, so
// metadata is ignored.
func (m *Muxer) AddStream(params audio.CodecParams, _ map[string]string) (int, error) {
	if m.header {
		return 0, fmt.Errorf("%w: stream added after header", audio.ErrMuxerState)
	}
	if m.streams > 0 {
		return 0, fmt.Errorf("%w: aiff holds a single stream", audio.ErrMuxerState)
	}
	if params.Codec != audio.CodecPCMS16BE {
		return 0, fmt.Errorf("%w: aiff muxer takes %s, got %q", audio.ErrUnsupportedCodec, audio.CodecPCMS16BE, params.Codec)
	}
	if err := params.Format.Validate(); err != nil {
		return 0, err
	}

	m.params = params
	m.streams++

	return 0, nil
}

func (m *Muxer) WriteHeader() error {
	if m.header || m.closed || m.streams == 0 {
		return fmt.Errorf("%w: header needs exactly one stream and an open muxer", audio.ErrMuxerState)
	}

	f := m.params.Format
	m.enc = aiff.NewEncoder(m.w, f.SampleRate, 16, f.Channels)
	m.buf = &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: f.Channels, SampleRate: f.SampleRate},
		SourceBitDepth: 16,
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

	n := pkt.Size() / 2
	if cap(m.buf.Data) < n {
		m.buf.Data = make([]int, n)
	}
	m.buf.Data = m.buf.Data[:n]
	for i := range n {
		m.buf.Data[i] = int(int16(binary.BigEndian.Uint16(pkt.Data[2*i:])))
	}

	if err := m.enc.Write(m.buf); err != nil {
		return fmt.Errorf("%w: %w", audio.ErrWrite, err)
	}
	m.written = true

	return nil
}

func (m *Muxer) Close() error {
	if m.closed {
		return audio.ErrClosed
	}
	m.closed = true

	if !m.header {
		if m.streams > 0 {
			return fmt.Errorf("%w: closed before header", audio.ErrMuxerState)
		}
		return nil
	}

	// the encoder writes its chunk headers on the first Write
	if !m.written {
		m.buf.Data = m.buf.Data[:0]
		if err := m.enc.Write(m.buf); err != nil {
			return fmt.Errorf("%w: %w", audio.ErrWrite, err)
		}
	}

	if err := m.enc.Close(); err != nil {
		return fmt.Errorf("%w: %w", audio.ErrWrite, err)
	}

	return nil
}
