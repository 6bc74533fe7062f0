// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"

	"github.com/ik5/audxcode/audio"
	"github.com/ik5/audxcode/utils"
)

// mp3Reader is an interface for gomp3.Decoder to allow testing
type mp3Reader interface {
	Read([]byte) (int, error)
}

func newGoMP3(r io.Reader) (mp3Reader, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, err
	}

	return dec, nil
}

// feed holds the frames handed to go-mp3 one at a time. It must not
// implement io.Seeker: go-mp3 scans seekable input to its end on open.
type feed struct {
	buf bytes.Buffer
}

func (f *feed) Read(p []byte) (int, error) { return f.buf.Read(p) }

// Decoder decodes Layer III frames through go-mp3. go-mp3 always produces
// interleaved stereo s16le; mono output averages the pair.
type Decoder struct {
	params    audio.CodecParams
	newReader func(io.Reader) (mp3Reader, error)

	in      *feed
	dec     mp3Reader
	pcm     []byte
	nextPTS int64
	opened  bool
}

// NewDecoder is an audio.DecoderFactory for mp3 streams.
func NewDecoder(params audio.CodecParams) (audio.Decoder, error) {
	return newDecoder(params, newGoMP3)
}

func newDecoder(params audio.CodecParams, newReader func(io.Reader) (mp3Reader, error)) (*Decoder, error) {
	if params.Codec != audio.CodecMP3 {
		return nil, fmt.Errorf("%w: %q is not mp3", audio.ErrUnsupportedCodec, params.Codec)
	}

	params.Format.SampleFormat = audio.SampleS16
	if err := params.Format.Validate(); err != nil {
		return nil, err
	}
	params.FrameSize = SamplesPerFrame(params.Format.SampleRate)

	return &Decoder{
		params:    params,
		newReader: newReader,
		in:        &feed{},
	}, nil
}

func (d *Decoder) Params() audio.CodecParams { return d.params }

// Open accepts Channels 1 or 2 to force mono or stereo output.
func (d *Decoder) Open(opts audio.DecoderOptions) error {
	switch opts.Channels {
	case 0:
	case 1, 2:
		d.params.Format.Channels = opts.Channels
	default:
		return fmt.Errorf("%w: mp3 decodes to 1 or 2 channels, not %d", audio.ErrInvalidFormat, opts.Channels)
	}

	d.nextPTS = 0
	d.opened = true

	return nil
}

func (d *Decoder) Close() error {
	d.dec = nil
	d.in.buf.Reset()
	d.opened = false

	return nil
}

// Decode decodes the frame starting at offset. A bad header or a short
// frame consumes the rest of the packet.
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

	rest := pkt.Data[offset:]
	h, err := ParseFrameHeader(rest)
	if err != nil {
		return len(rest), err
	}

	n := h.FrameLen()
	if n > len(rest) {
		return len(rest), fmt.Errorf("%w: %d of %d bytes", ErrPartialFrame, len(rest), n)
	}

	if offset == 0 && pkt.PTS != audio.NoPTS {
		d.nextPTS = pkt.PTS
	}

	d.in.buf.Write(rest[:n])
	if err := d.decodeFrame(h.SamplesPerFrame()); err != nil {
		d.in.buf.Reset()
		return n, err
	}

	d.render(out)
	out.PTS = d.nextPTS
	out.Complete = true
	d.nextPTS += int64(out.Frames())

	return n, nil
}

// decodeFrame pulls one frame of stereo PCM out of go-mp3 into d.pcm.
func (d *Decoder) decodeFrame(spf int) error {
	want := spf * 4
	if cap(d.pcm) < want {
		d.pcm = make([]byte, want)
	}
	d.pcm = d.pcm[:want]

	if d.dec == nil {
		dec, err := d.newReader(d.in)
		if err != nil {
			return fmt.Errorf("go-mp3: %w", err)
		}
		d.dec = dec
	}

	got := 0
	for got < want {
		n, err := d.dec.Read(d.pcm[got:])
		got += n
		if err != nil {
			if got > 0 {
				break
			}
			return fmt.Errorf("go-mp3: %w", err)
		}
		if n == 0 {
			break
		}
	}
	if got == 0 {
		return fmt.Errorf("go-mp3: frame decoded to no samples")
	}
	d.pcm = d.pcm[:got-got%4]

	return nil
}

func (d *Decoder) render(out *audio.SampleBatch) {
	frames := len(d.pcm) / 4
	sample := func(i int) float32 {
		return utils.Int16ToFloat32(int16(binary.LittleEndian.Uint16(d.pcm[2*i:])))
	}

	if d.params.Format.Channels == 1 {
		data := out.Resize(frames)
		for i := range data {
			data[i] = (sample(2*i) + sample(2*i+1)) * 0.5
		}
		return
	}

	data := out.Resize(frames * 2)
	for i := range data {
		data[i] = sample(i)
	}
}

// Drain never yields: go-mp3 returns each frame's samples as soon as the
// frame is read.
func (d *Decoder) Drain(out *audio.SampleBatch) error {
	if !d.opened {
		return audio.ErrNotOpen
	}
	out.Reset()

	return nil
}
