// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"bytes"
	"io"

	"github.com/ik5/audxcode/audio"
)

const (
	formatName = "aiff"
	longName   = "Audio IFF"
)

// Probe reports whether header starts a FORM/AIFF file. AIFF-C is not
// accepted.
func Probe(header []byte) bool {
	return len(header) >= 12 &&
		bytes.Equal(header[0:4], []byte("FORM")) &&
		bytes.Equal(header[8:12], []byte("AIFF"))
}

// Format describes the AIFF container for an audio.Registry.
var Format = audio.ContainerFormat{
	Name:       formatName,
	LongName:   longName,
	Extensions: []string{"aiff", "aif"},
	Probe:      Probe,
	NewDemuxer: func(r io.ReadSeeker) (audio.Demuxer, error) { return NewDemuxer(r, DefaultPacketFrames) },
	NewMuxer:   func(w io.WriteSeeker) (audio.Muxer, error) { return NewMuxer(w), nil },
}
