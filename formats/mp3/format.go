// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"io"

	"github.com/ik5/audxcode/audio"
)

const (
	formatName = "mp3"
	longName   = "MPEG audio layer III"
)

// Probe accepts an ID3v2 tag or a frame header that, when header is long
// enough, is followed by a second one.
func Probe(header []byte) bool {
	if id3Size(header) > 0 {
		return true
	}

	h, err := ParseFrameHeader(header)
	if err != nil {
		return false
	}

	next := h.FrameLen()
	if len(header) < next+HeaderSize {
		return true
	}
	_, err = ParseFrameHeader(header[next:])

	return err == nil
}

// Format describes the MP3 elementary stream for an audio.Registry.
var Format = audio.ContainerFormat{
	Name:       formatName,
	LongName:   longName,
	Extensions: []string{"mp3"},
	Probe:      Probe,
	NewDemuxer: func(r io.ReadSeeker) (audio.Demuxer, error) { return NewDemuxer(r) },
	NewMuxer:   func(w io.WriteSeeker) (audio.Muxer, error) { return NewMuxer(w), nil },
}
