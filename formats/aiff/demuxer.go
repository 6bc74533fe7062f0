// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"

	"github.com/ik5/audxcode/audio"
	"github.com/ik5/audxcode/formats/pcm"
)

// DefaultPacketFrames is the number of sample frames per demuxed packet.
const DefaultPacketFrames = 4096

// aiffReader is an interface for aiff.Decoder to allow testing
type aiffReader interface {
	Format() *goaudio.Format
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

// Demuxer reads the SSND chunk of a 16-bit AIFF file and repacks it as
// pcm_s16be packets.
type Demuxer struct {
	dec          aiffReader
	buf          *goaudio.IntBuffer
	stream       audio.StreamDescriptor
	info         audio.ContainerInfo
	channels     int
	packetFrames int
	pts          int64
	eof          bool
}

func NewDemuxer(rs io.ReadSeeker, packetFrames int) (*Demuxer, error) {
	dec := aiff.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, ErrNotAiffFile
	}

	dec.ReadInfo()
	if dec.BitDepth != 16 {
		return nil, fmt.Errorf("%w: %d bits", ErrOnlyPCM16bitSupported, dec.BitDepth)
	}

	dur, err := dec.Duration()
	if err != nil {
		dur = 0
	}

	return newDemuxer(dec, packetFrames, dur)
}

func newDemuxer(dec aiffReader, packetFrames int, dur time.Duration) (*Demuxer, error) {
	if packetFrames <= 0 {
		packetFrames = DefaultPacketFrames
	}

	format := dec.Format()
	if format == nil {
		return nil, ErrUnsupportedAiffLayout
	}

	params := pcm.Params(audio.CodecPCMS16BE, format.SampleRate, format.NumChannels)
	if err := params.Format.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedAiffLayout, err)
	}

	return &Demuxer{
		dec: dec,
		buf: &goaudio.IntBuffer{
			Format:         format,
			Data:           make([]int, packetFrames*format.NumChannels),
			SourceBitDepth: 16,
		},
		stream: audio.NewStream(0, 0, audio.MediaAudio, params, pcm.NewDecoder).WithDuration(dur),
		info: audio.ContainerInfo{
			Format:   formatName,
			LongName: longName,
			Duration: dur,
			BitRate:  params.BitRate,
		},
		channels:     format.NumChannels,
		packetFrames: packetFrames,
	}, nil
}

func (d *Demuxer) Info() audio.ContainerInfo { return d.info }

func (d *Demuxer) Streams() []audio.StreamDescriptor {
	return []audio.StreamDescriptor{d.stream}
}

func (d *Demuxer) ReadPacket(pkt *audio.Packet) error {
	pkt.Reset()
	if d.eof {
		return io.EOF
	}

	d.buf.Data = d.buf.Data[:d.packetFrames*d.channels]
	n, err := d.dec.PCMBuffer(d.buf)
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: %w", audio.ErrRead, err)
		}
		d.eof = true
	}
	if n == 0 {
		d.eof = true
		return io.EOF
	}

	out := pkt.Grow(n * 2)
	for i, v := range d.buf.Data[:n] {
		binary.BigEndian.PutUint16(out[2*i:], uint16(int16(v)))
	}

	frames := int64(n / d.channels)
	pkt.StreamIndex = d.stream.Index
	pkt.PTS = d.pts
	pkt.Duration = frames
	d.pts += frames

	return nil
}

func (d *Demuxer) Close() error { return nil }
