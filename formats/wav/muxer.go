// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"encoding/binary"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/ik5/audxcode/audio"
)

// Muxer writes a single pcm_s16le stream through a go-audio wav.Encoder.
// RIFF sizes are patched on Close, so the target must be seekable.
type Muxer struct {
	w        io.WriteSeeker
	enc      *wav.Encoder
	buf      *goaudio.IntBuffer
	params   audio.CodecParams
	metadata map[string]string

	streams int
	header  bool
	closed  bool
}

func NewMuxer(w io.WriteSeeker) *Muxer {
	return &Muxer{w: w}
}

func (m *Muxer) AddStream(params audio.CodecParams, metadata map[string]string) (int, error) {
	if m.header {
		return 0, fmt.Errorf("%w: stream added after header", audio.ErrMuxerState)
	}
	if m.streams > 0 {
		return 0, fmt.Errorf("%w: wav holds a single stream", audio.ErrMuxerState)
	}
	if params.Codec != audio.CodecPCMS16LE {
		return 0, fmt.Errorf("%w: wav muxer takes %s, got %q", audio.ErrUnsupportedCodec, audio.CodecPCMS16LE, params.Codec)
	}
	if err := params.Format.Validate(); err != nil {
		return 0, err
	}

	m.params = params
	m.metadata = metadata
	m.streams++

	return 0, nil
}

func (m *Muxer) WriteHeader() error {
	if m.header || m.closed || m.streams == 0 {
		return fmt.Errorf("%w: header needs exactly one stream and an open muxer", audio.ErrMuxerState)
	}

	f := m.params.Format
	m.enc = wav.NewEncoder(m.w, f.SampleRate, 16, f.Channels, wavFormatPCM)
	m.enc.Metadata = toInfo(m.metadata)
	m.buf = &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: f.Channels, SampleRate: f.SampleRate},
		SourceBitDepth: 16,
	}

	// an empty write emits the RIFF, fmt and data headers
	if err := m.enc.Write(m.buf); err != nil {
		return fmt.Errorf("%w: %w", audio.ErrWrite, err)
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
		m.buf.Data[i] = int(int16(binary.LittleEndian.Uint16(pkt.Data[2*i:])))
	}

	if err := m.enc.Write(m.buf); err != nil {
		return fmt.Errorf("%w: %w", audio.ErrWrite, err)
	}

	return nil
}

// Close finalises the RIFF sizes. Closing a muxer that has streams but no
// header is a usage error.
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

	if err := m.enc.Close(); err != nil {
		return fmt.Errorf("%w: %w", audio.ErrWrite, err)
	}

	return nil
}
