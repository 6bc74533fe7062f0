// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-audio/wav"

	"github.com/ik5/audxcode/audio"
	"github.com/ik5/audxcode/formats/pcm"
)

// DefaultPacketFrames is the number of sample frames per demuxed packet.
// Each packet spans several pcm codec frames.
const DefaultPacketFrames = 4096

const wavFormatPCM = 1

// Demuxer reads the data chunk of a 16-bit PCM WAV file as pcm_s16le
// packets.
type Demuxer struct {
	pcm          io.Reader
	stream       audio.StreamDescriptor
	info         audio.ContainerInfo
	blockAlign   int
	packetFrames int
	pts          int64
}

// NewDemuxer parses the RIFF headers of rs and positions it at the start of
// the sample data.
func NewDemuxer(rs io.ReadSeeker, packetFrames int) (*Demuxer, error) {
	if packetFrames <= 0 {
		packetFrames = DefaultPacketFrames
	}

	d := wav.NewDecoder(rs)
	if !d.IsValidFile() {
		return nil, ErrNotWavFile
	}
	if d.WavAudioFormat != wavFormatPCM || d.BitDepth != 16 {
		return nil, fmt.Errorf("%w: format %d, %d bits", ErrOnlyPCM16bitSupported, d.WavAudioFormat, d.BitDepth)
	}

	// ReadMetadata walks every chunk, so the data chunk is located with a
	// fresh decoder afterwards.
	d.ReadMetadata()
	md := fromInfo(d.Metadata)

	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind: %w", err)
	}

	pd := wav.NewDecoder(rs)
	if err := pd.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedWavChunks, err)
	}

	rate := int(pd.SampleRate)
	channels := int(pd.NumChans)
	params := pcm.Params(audio.CodecPCMS16LE, rate, channels)
	if err := params.Format.Validate(); err != nil {
		return nil, err
	}

	blockAlign := channels * 2
	frames := int64(pd.PCMChunk.Size / blockAlign)
	dur := time.Duration(frames) * time.Second / time.Duration(rate)

	stream := audio.NewStream(0, 0, audio.MediaAudio, params, pcm.NewDecoder).
		WithMetadata(md).
		WithDuration(dur)

	return &Demuxer{
		pcm:    io.LimitReader(pd.PCMChunk, int64(pd.PCMChunk.Size)),
		stream: stream,
		info: audio.ContainerInfo{
			Format:   formatName,
			LongName: longName,
			Duration: dur,
			BitRate:  params.BitRate,
			Metadata: md,
		},
		blockAlign:   blockAlign,
		packetFrames: packetFrames,
	}, nil
}

func (d *Demuxer) Info() audio.ContainerInfo { return d.info }

func (d *Demuxer) Streams() []audio.StreamDescriptor {
	return []audio.StreamDescriptor{d.stream}
}

// ReadPacket fills pkt with up to packetFrames sample frames. A truncated
// data chunk yields a short final packet.
func (d *Demuxer) ReadPacket(pkt *audio.Packet) error {
	pkt.Reset()

	buf := pkt.Grow(d.packetFrames * d.blockAlign)
	n, err := io.ReadFull(d.pcm, buf)
	switch {
	case errors.Is(err, io.EOF):
		pkt.Data = buf[:0]
		return io.EOF
	case errors.Is(err, io.ErrUnexpectedEOF):
	case err != nil:
		return fmt.Errorf("%w: %w", audio.ErrRead, err)
	}

	frames := int64(n / d.blockAlign)
	pkt.Data = buf[:n]
	pkt.StreamIndex = d.stream.Index
	pkt.PTS = d.pts
	pkt.Duration = frames
	d.pts += frames

	return nil
}

func (d *Demuxer) Close() error { return nil }
