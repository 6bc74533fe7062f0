// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"bytes"
	"fmt"
	"io"

	shine "github.com/braheezy/shine-mp3/pkg/mp3"

	"github.com/ik5/audxcode/audio"
	"github.com/ik5/audxcode/utils"
)

// DefaultBitRate is the bit rate of the shine encoder.
const DefaultBitRate = 128000

// frameEncoder is an interface for the shine encoder to allow testing
type frameEncoder interface {
	Write(w io.Writer, data []int16) error
}

func newShine(sampleRate, channels int) frameEncoder {
	return shine.NewEncoder(sampleRate, channels)
}

// Encoder encodes interleaved samples to Layer III frames with shine. Input
// is held until a whole frame is available; Drain pads the remainder with
// silence.
//
// shine keeps up to a word of each frame in its bit cache until the next
// frame is written, so its output is held in carry and packets only ever
// hold whole frames. The last frame never leaves that cache in full and is
// zero padded to its header's length on Drain.
type Encoder struct {
	params     audio.CodecParams
	newEncoder func(sampleRate, channels int) frameEncoder

	enc         frameEncoder
	pending     []int16
	out         bytes.Buffer
	carry       []byte
	pts         int64
	dropPartial bool
	drained     bool
	opened      bool
}

// NewEncoder is an audio.EncoderFactory for mp3.
func NewEncoder(params audio.CodecParams) (audio.Encoder, error) {
	return newEncoder(params, newShine)
}

func newEncoder(params audio.CodecParams, newEnc func(int, int) frameEncoder) (*Encoder, error) {
	if params.Codec != audio.CodecMP3 {
		return nil, fmt.Errorf("%w: %q is not mp3", audio.ErrUnsupportedCodec, params.Codec)
	}

	params.Format.SampleFormat = audio.SampleS16
	if err := params.Format.Validate(); err != nil {
		return nil, err
	}
	if !ValidSampleRate(params.Format.SampleRate) {
		return nil, fmt.Errorf("%w: mp3 cannot carry %d Hz", audio.ErrInvalidFormat, params.Format.SampleRate)
	}
	if params.Format.Channels > 2 {
		return nil, fmt.Errorf("%w: mp3 carries at most 2 channels, not %d", audio.ErrInvalidFormat, params.Format.Channels)
	}

	params.FrameSize = SamplesPerFrame(params.Format.SampleRate)
	params.BitRate = DefaultBitRate

	return &Encoder{params: params, newEncoder: newEnc}, nil
}

func (e *Encoder) Params() audio.CodecParams { return e.params }

func (e *Encoder) Open(opts audio.EncoderOptions) error {
	e.enc = e.newEncoder(e.params.Format.SampleRate, e.params.Format.Channels)
	e.dropPartial = opts.DropPartialFrame
	e.pending = e.pending[:0]
	e.carry = e.carry[:0]
	e.pts = 0
	e.drained = false
	e.opened = true

	return nil
}

func (e *Encoder) Close() error {
	e.enc = nil
	e.opened = false

	return nil
}

func (e *Encoder) frameSamples() int {
	return e.params.FrameSize * e.params.Format.Channels
}

// Encode emits at most one packet holding every whole frame shine has
// finished so far.
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

	for _, v := range in.Data {
		e.pending = append(e.pending, utils.Float32ToInt16(v))
	}

	whole := len(e.pending) / e.frameSamples() * e.frameSamples()
	if whole == 0 {
		return false, nil
	}
	if err := e.write(whole); err != nil {
		return false, err
	}

	return e.emit(out, false)
}

// Drain encodes the buffered tail once, padded to a whole frame, and
// releases the frames still held in carry.
func (e *Encoder) Drain(out *audio.Packet) (bool, error) {
	if !e.opened {
		return false, audio.ErrNotOpen
	}
	if e.drained {
		return false, nil
	}
	e.drained = true

	if len(e.pending) > 0 && !e.dropPartial {
		for len(e.pending)%e.frameSamples() != 0 {
			e.pending = append(e.pending, 0)
		}
		if err := e.write(len(e.pending)); err != nil {
			return false, err
		}
	}
	e.pending = e.pending[:0]

	return e.emit(out, true)
}

// write hands the first n pending samples to shine one frame per call and
// appends its output to carry.
func (e *Encoder) write(n int) error {
	e.out.Reset()
	for off := 0; off < n; off += e.frameSamples() {
		if err := e.enc.Write(&e.out, e.pending[off:off+e.frameSamples()]); err != nil {
			return fmt.Errorf("shine: %w", err)
		}
	}

	e.pending = e.pending[:copy(e.pending, e.pending[n:])]
	e.carry = append(e.carry, e.out.Bytes()...)

	return nil
}

// emit moves the whole frames at the start of carry into out. With last
// set a trailing short frame is padded with zeros and emitted too.
func (e *Encoder) emit(out *audio.Packet, last bool) (bool, error) {
	n, frames, err := wholeFrames(e.carry)
	if err != nil {
		return false, err
	}

	if rest := e.carry[n:]; last && len(rest) >= HeaderSize {
		h, err := ParseFrameHeader(rest)
		if err != nil {
			return false, fmt.Errorf("shine: last frame: %w", err)
		}
		e.carry = append(e.carry, make([]byte, h.FrameLen()-len(rest))...)
		n = len(e.carry)
		frames++
	}

	if n == 0 {
		return false, nil
	}

	duration := int64(frames * e.params.FrameSize)
	out.SetData(e.carry[:n])
	out.PTS = e.pts
	out.Duration = duration
	e.pts += duration
	e.carry = e.carry[:copy(e.carry, e.carry[n:])]

	return true, nil
}

// wholeFrames returns the byte length and count of the complete frames at
// the start of b.
func wholeFrames(b []byte) (n, frames int, err error) {
	for n+HeaderSize <= len(b) {
		h, err := ParseFrameHeader(b[n:])
		if err != nil {
			return n, frames, fmt.Errorf("shine: frame at byte %d: %w", n, err)
		}
		if n+h.FrameLen() > len(b) {
			break
		}
		n += h.FrameLen()
		frames++
	}

	return n, frames, nil
}
