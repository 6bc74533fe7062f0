// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"fmt"

	"github.com/jfreymuth/vorbis"

	"github.com/ik5/audxcode/audio"
)

// vorbisDecoder is an interface for vorbis.Decoder to allow testing
type vorbisDecoder interface {
	ReadHeader([]byte) error
	Decode([]byte) ([]float32, error)
	Clear()
}

// Decoder decodes Vorbis packets, one packet per call. Output is
// interleaved float32 in the stream's channel order.
type Decoder struct {
	params audio.CodecParams
	dec    vorbisDecoder

	nextPTS int64
	opened  bool
}

// NewDecoder is an audio.DecoderFactory for vorbis streams. params must
// carry the identification, comment and setup headers in ExtraData.
func NewDecoder(params audio.CodecParams) (audio.Decoder, error) {
	return newDecoder(params, &vorbis.Decoder{})
}

func newDecoder(params audio.CodecParams, dec vorbisDecoder) (*Decoder, error) {
	if params.Codec != audio.CodecVorbis {
		return nil, fmt.Errorf("%w: %q is not vorbis", audio.ErrUnsupportedCodec, params.Codec)
	}
	if len(params.ExtraData) != 3 {
		return nil, fmt.Errorf("%w: got %d of 3", ErrMissingHeaders, len(params.ExtraData))
	}

	params.Format.SampleFormat = audio.SampleF32
	if err := params.Format.Validate(); err != nil {
		return nil, err
	}

	return &Decoder{params: params, dec: dec}, nil
}

func (d *Decoder) Params() audio.CodecParams { return d.params }

// Open loads the codec setup. Vorbis has no native down-mix, so
// opts.Channels is ignored.
func (d *Decoder) Open(audio.DecoderOptions) error {
	d.dec.Clear()
	for i, h := range d.params.ExtraData {
		if err := d.dec.ReadHeader(h); err != nil {
			return fmt.Errorf("%w: header %d: %w", ErrBadHeader, i+1, err)
		}
	}

	d.nextPTS = 0
	d.opened = true

	return nil
}

func (d *Decoder) Close() error {
	d.dec.Clear()
	d.opened = false

	return nil
}

// Decode consumes the whole packet. The first packet after Open only primes
// the overlap window and leaves out incomplete. With params.Frames set, the
// padding the encoder adds to the last block is cut off at that length.
func (d *Decoder) Decode(out *audio.SampleBatch, pkt *audio.Packet, offset int) (int, error) {
	if !d.opened {
		return 0, audio.ErrNotOpen
	}

	out.Reset()
	out.Format = d.params.Format

	if pkt == nil || offset == pkt.Size() {
		return 0, nil
	}
	if offset < 0 || offset > pkt.Size() {
		return 0, fmt.Errorf("offset %d outside packet of %d bytes", offset, pkt.Size())
	}

	if offset == 0 && pkt.PTS != audio.NoPTS {
		d.nextPTS = pkt.PTS
	}

	rest := pkt.Data[offset:]
	samples, err := d.dec.Decode(rest)
	if err != nil {
		return len(rest), err
	}
	if end := d.params.Frames; end > 0 {
		ch := int64(d.params.Format.Channels)
		left := max(end-d.nextPTS, 0)
		if int64(len(samples))/ch > left {
			samples = samples[:left*ch]
		}
	}
	if len(samples) == 0 {
		return len(rest), nil
	}

	copy(out.Resize(len(samples)), samples)
	out.PTS = d.nextPTS
	out.Complete = true
	d.nextPTS += int64(out.Frames())

	return len(rest), nil
}

// Drain never yields: each packet returns every sample it completes.
func (d *Decoder) Drain(out *audio.SampleBatch) error {
	if !d.opened {
		return audio.ErrNotOpen
	}
	out.Reset()

	return nil
}
