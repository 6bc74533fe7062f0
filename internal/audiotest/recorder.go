// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"bytes"
	"io"
	"maps"
	"sync"

	"github.com/ik5/audxcode/audio"
)

// RecordingMuxer keeps everything written to it. The Err fields make the
// matching call fail.
type RecordingMuxer struct {
	Params   []audio.CodecParams
	Metadata []map[string]string
	Header   bool
	Packets  []*audio.Packet
	Closed   int

	AddErr   error
	WriteErr error
	CloseErr error
}

func (m *RecordingMuxer) AddStream(params audio.CodecParams, md map[string]string) (int, error) {
	if m.AddErr != nil {
		return 0, m.AddErr
	}
	m.Params = append(m.Params, params)
	m.Metadata = append(m.Metadata, maps.Clone(md))
	return len(m.Params) - 1, nil
}

func (m *RecordingMuxer) WriteHeader() error {
	m.Header = true
	return nil
}

func (m *RecordingMuxer) WritePacket(pkt *audio.Packet, _ bool) error {
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.Packets = append(m.Packets, &audio.Packet{
		StreamIndex: pkt.StreamIndex,
		Data:        bytes.Clone(pkt.Data),
		PTS:         pkt.PTS,
		Duration:    pkt.Duration,
	})
	return nil
}

func (m *RecordingMuxer) Close() error {
	m.Closed++
	return m.CloseErr
}

// RecordingFormat registers m under name so container.Create can find it.
func RecordingFormat(name string, m *RecordingMuxer) audio.ContainerFormat {
	return audio.ContainerFormat{
		Name:       name,
		LongName:   "recording muxer",
		Extensions: []string{name},
		NewMuxer:   func(io.WriteSeeker) (audio.Muxer, error) { return m, nil },
	}
}

// RecordingSink collects everything written to it.
type RecordingSink struct {
	Fmt      audio.Format
	WriteErr error

	mtx    sync.Mutex
	buf    bytes.Buffer
	writes int
	closed int
}

func (s *RecordingSink) Format() audio.Format { return s.Fmt }

func (s *RecordingSink) Write(p []byte) error {
	if s.WriteErr != nil {
		return s.WriteErr
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.buf.Write(p)
	s.writes++
	return nil
}

func (s *RecordingSink) Close() error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.closed++
	return nil
}

// Bytes returns a copy of everything written.
func (s *RecordingSink) Bytes() []byte {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	return bytes.Clone(s.buf.Bytes())
}

func (s *RecordingSink) Writes() int {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	return s.writes
}

func (s *RecordingSink) Closed() int {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	return s.closed
}
