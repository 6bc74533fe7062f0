// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"io"

	"github.com/ik5/audxcode/audio"
)

// Probe reports whether header starts a RIFF/WAVE file.
func Probe(header []byte) bool {
	return len(header) >= 12 &&
		bytes.Equal(header[0:4], []byte("RIFF")) &&
		bytes.Equal(header[8:12], []byte("WAVE"))
}

const (
	formatName = "wav"
	longName   = "WAV / WAVE (Waveform Audio)"
)

// Format describes the WAV container for an audio.Registry.
var Format = audio.ContainerFormat{
	Name:       formatName,
	LongName:   longName,
	Extensions: []string{"wav", "wave"},
	Probe:      Probe,
	NewDemuxer: func(r io.ReadSeeker) (audio.Demuxer, error) { return NewDemuxer(r, DefaultPacketFrames) },
	NewMuxer:   func(w io.WriteSeeker) (audio.Muxer, error) { return NewMuxer(w), nil },
}
