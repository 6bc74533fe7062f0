// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"bytes"
	"io"

	"github.com/ik5/audxcode/audio"
)

// Probe reports whether header starts with an Ogg page.
func Probe(header []byte) bool {
	return len(header) >= pageHeaderSize &&
		bytes.Equal(header[0:4], capturePattern[:]) &&
		header[4] == 0
}

const (
	formatName = "ogg"
	longName   = "Ogg"
)

// Format describes the Ogg container for an audio.Registry. It has no
// muxer.
var Format = audio.ContainerFormat{
	Name:       formatName,
	LongName:   longName,
	Extensions: []string{"ogg", "oga"},
	Probe:      Probe,
	NewDemuxer: func(r io.ReadSeeker) (audio.Demuxer, error) { return NewDemuxer(r) },
}
