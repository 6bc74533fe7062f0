// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"io"
	"time"
)

// ContainerInfo is what a demuxer learned about its container.
type ContainerInfo struct {
	Format    string
	LongName  string
	Duration  time.Duration
	StartTime time.Duration
	BitRate   int
	Metadata  map[string]string
}

// Demuxer reads packets out of a container.
type Demuxer interface {
	Info() ContainerInfo
	Streams() []StreamDescriptor
	// ReadPacket fills pkt with the next packet. It returns io.EOF once no
	// packets remain.
	ReadPacket(pkt *Packet) error
	Close() error
}

// Muxer serializes packets into a container. Call order is enforced by
// container.Output: AddStream for every stream, WriteHeader, WritePacket,
// then Close.
type Muxer interface {
	AddStream(params CodecParams, metadata map[string]string) (int, error)
	WriteHeader() error
	WritePacket(pkt *Packet, interleave bool) error
	Close() error
}

// Sink consumes converted raw audio, packed in its Format.
type Sink interface {
	Format() Format
	Write(p []byte) error
	Close() error
}

// ContainerFormat describes a registered container format.
type ContainerFormat struct {
	Name       string
	LongName   string
	Extensions []string
	// Probe reports whether header, the leading bytes of a source, belongs
	// to this format.
	Probe func(header []byte) bool
	// NewDemuxer is nil for write-only formats.
	NewDemuxer func(r io.ReadSeeker) (Demuxer, error)
	// NewMuxer is nil for read-only formats.
	NewMuxer func(w io.WriteSeeker) (Muxer, error)
}

// ProbeSize is the number of leading bytes handed to Probe.
const ProbeSize = 4096
