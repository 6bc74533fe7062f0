// SPDX-License-Identifier: EPL-2.0

package pcm

import (
	"encoding/binary"
	"fmt"

	"github.com/ik5/audxcode/audio"
	"github.com/ik5/audxcode/utils"
)

// DefaultFrameSize is the number of samples per channel one Decode call
// produces. Demuxers pack several frames into a packet.
const DefaultFrameSize = 1024

func byteOrder(codec audio.CodecID) (binary.ByteOrder, error) {
	switch codec {
	case audio.CodecPCMS16LE:
		return binary.LittleEndian, nil
	case audio.CodecPCMS16BE:
		return binary.BigEndian, nil
	default:
		return nil, fmt.Errorf("%w: %q is not 16-bit PCM", audio.ErrUnsupportedCodec, codec)
	}
}

// Params completes p for a 16-bit PCM stream: sample format, frame size and
// bit rate.
func Params(codec audio.CodecID, sampleRate, channels int) audio.CodecParams {
	return audio.CodecParams{
		Codec: codec,
		Format: audio.Format{
			SampleRate:   sampleRate,
			Channels:     channels,
			SampleFormat: audio.SampleS16,
		},
		FrameSize: DefaultFrameSize,
		BitRate:   sampleRate * channels * 16,
	}
}

func validate(p audio.CodecParams) (audio.CodecParams, binary.ByteOrder, error) {
	order, err := byteOrder(p.Codec)
	if err != nil {
		return p, nil, err
	}

	p.Format.SampleFormat = audio.SampleS16
	if err := p.Format.Validate(); err != nil {
		return p, nil, err
	}
	if p.FrameSize <= 0 {
		p.FrameSize = DefaultFrameSize
	}
	p.BitRate = p.Format.SampleRate * p.Format.Channels * 16

	return p, order, nil
}

// Decoder turns packed 16-bit PCM into sample batches, one frame of
// FrameSize samples per call.
type Decoder struct {
	params audio.CodecParams
	order  binary.ByteOrder
	opened bool
}

// NewDecoder is an audio.DecoderFactory for pcm_s16le and pcm_s16be.
func NewDecoder(params audio.CodecParams) (audio.Decoder, error) {
	p, order, err := validate(params)
	if err != nil {
		return nil, err
	}

	return &Decoder{params: p, order: order}, nil
}

func (d *Decoder) Params() audio.CodecParams { return d.params }

func (d *Decoder) Open(audio.DecoderOptions) error {
	d.opened = true
	return nil
}

func (d *Decoder) Close() error {
	d.opened = false
	return nil
}

func (d *Decoder) Decode(out *audio.SampleBatch, pkt *audio.Packet, offset int) (int, error) {
	if !d.opened {
		return 0, audio.ErrNotOpen
	}

	out.Reset()
	out.Format = d.params.Format

	if pkt == nil {
		return 0, nil
	}
	if offset < 0 || offset > pkt.Size() {
		return 0, fmt.Errorf("%w: %d of %d", ErrBadOffset, offset, pkt.Size())
	}

	rest := pkt.Data[offset:]
	blockAlign := d.params.Format.Channels * 2

	n := min(len(rest), d.params.FrameSize*blockAlign)
	n -= n % blockAlign
	if n == 0 {
		if len(rest) == 0 {
			return 0, nil
		}
		return len(rest), fmt.Errorf("%w: %d trailing bytes", ErrPartialSample, len(rest))
	}

	data := out.Resize(n / 2)
	for i := range data {
		data[i] = utils.Int16ToFloat32(int16(d.order.Uint16(rest[2*i:])))
	}

	if pkt.PTS != audio.NoPTS {
		out.PTS = pkt.PTS + int64(offset/blockAlign)
	}
	out.Complete = true

	return n, nil
}

// Drain never yields: PCM holds no frames back.
func (d *Decoder) Drain(out *audio.SampleBatch) error {
	if !d.opened {
		return audio.ErrNotOpen
	}
	out.Reset()

	return nil
}

// Encoder packs sample batches as 16-bit PCM, one packet per batch.
type Encoder struct {
	params audio.CodecParams
	order  binary.ByteOrder
	opened bool
}

// NewEncoder is an audio.EncoderFactory for pcm_s16le and pcm_s16be.
func NewEncoder(params audio.CodecParams) (audio.Encoder, error) {
	p, order, err := validate(params)
	if err != nil {
		return nil, err
	}

	return &Encoder{params: p, order: order}, nil
}

func (e *Encoder) Params() audio.CodecParams { return e.params }

func (e *Encoder) Open(audio.EncoderOptions) error {
	e.opened = true
	return nil
}

func (e *Encoder) Close() error {
	e.opened = false
	return nil
}

func (e *Encoder) Encode(out *audio.Packet, in *audio.SampleBatch) (bool, error) {
	if !e.opened {
		return false, audio.ErrNotOpen
	}
	if in == nil || len(in.Data) == 0 {
		return false, nil
	}
	if in.Format.Channels != e.params.Format.Channels || in.Format.SampleRate != e.params.Format.SampleRate {
		return false, fmt.Errorf("%w: got %s, encoder expects %s", audio.ErrInvalidFormat, in.Format, e.params.Format)
	}

	buf := out.Grow(len(in.Data) * 2)
	for i, v := range in.Data {
		e.order.PutUint16(buf[2*i:], uint16(utils.Float32ToInt16(v)))
	}
	out.PTS = in.PTS
	out.Duration = int64(in.Frames())

	return true, nil
}

func (e *Encoder) Drain(*audio.Packet) (bool, error) {
	if !e.opened {
		return false, audio.ErrNotOpen
	}

	return false, nil
}
