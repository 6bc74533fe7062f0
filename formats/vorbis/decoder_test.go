// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"errors"
	"testing"

	"github.com/ik5/audxcode/audio"
)

var errFakeHeader = errors.New("fake: bad header")

// fakeVorbis simulates vorbis.Decoder. The first packet after Clear yields
// nothing; later packets yield one stereo frame per payload byte, each
// sample set to the byte value / 100.
type fakeVorbis struct {
	headers int
	primed  bool
	cleared int
	failOn  byte
	buf     []float32
}

func (f *fakeVorbis) ReadHeader(p []byte) error {
	if len(p) == 0 || p[0] != byte(2*f.headers+1) {
		return errFakeHeader
	}
	f.headers++
	return nil
}

func (f *fakeVorbis) Decode(p []byte) ([]float32, error) {
	if f.failOn != 0 && len(p) > 0 && p[0] == f.failOn {
		return nil, errors.New("fake: corrupt packet")
	}
	if !f.primed {
		f.primed = true
		return nil, nil
	}

	f.buf = f.buf[:0]
	for _, b := range p {
		v := float32(b) / 100
		f.buf = append(f.buf, v, -v)
	}
	return f.buf, nil
}

func (f *fakeVorbis) Clear() {
	f.primed = false
	f.headers = 0
	f.cleared++
}

func vorbisParams() audio.CodecParams {
	return audio.CodecParams{
		Codec:     audio.CodecVorbis,
		Format:    audio.Format{SampleRate: 48000, Channels: 2},
		ExtraData: [][]byte{identPacket(2, 48000, 0), commentPacket("v"), setupPacket()},
	}
}

func openFake(t *testing.T) (*Decoder, *fakeVorbis) {
	t.Helper()

	fake := &fakeVorbis{}
	d, err := newDecoder(vorbisParams(), fake)
	if err != nil {
		t.Fatalf("newDecoder() error = %v", err)
	}
	if err := d.Open(audio.DecoderOptions{}); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return d, fake
}

func TestNewDecoder_Errors(t *testing.T) {
	t.Parallel()

	wrongCodec := vorbisParams()
	wrongCodec.Codec = audio.CodecMP3

	noHeaders := vorbisParams()
	noHeaders.ExtraData = noHeaders.ExtraData[:2]

	noRate := vorbisParams()
	noRate.Format.SampleRate = 0

	tests := []struct {
		name   string
		params audio.CodecParams
		want   error
	}{
		{"codec", wrongCodec, audio.ErrUnsupportedCodec},
		{"headers", noHeaders, ErrMissingHeaders},
		{"format", noRate, audio.ErrInvalidFormat},
	}

	for _, tt := range tests {
		if _, err := NewDecoder(tt.params); !errors.Is(err, tt.want) {
			t.Errorf("%s: NewDecoder() error = %v, want %v", tt.name, err, tt.want)
		}
	}
}

func TestDecoder_Params(t *testing.T) {
	t.Parallel()

	d, err := NewDecoder(vorbisParams())
	if err != nil {
		t.Fatalf("NewDecoder() error = %v", err)
	}
	if got := d.Params().Format.SampleFormat; got != audio.SampleF32 {
		t.Errorf("SampleFormat = %v, want f32", got)
	}
}

func TestDecoder_OpenBadHeader(t *testing.T) {
	t.Parallel()

	params := vorbisParams()
	params.ExtraData[1] = []byte{9}

	d, err := newDecoder(params, &fakeVorbis{})
	if err != nil {
		t.Fatalf("newDecoder() error = %v", err)
	}

	err = d.Open(audio.DecoderOptions{})
	if !errors.Is(err, ErrBadHeader) || !errors.Is(err, errFakeHeader) {
		t.Errorf("Open() error = %v, want ErrBadHeader wrapping the cause", err)
	}
}

func TestDecoder_NotOpen(t *testing.T) {
	t.Parallel()

	d, _ := newDecoder(vorbisParams(), &fakeVorbis{})
	out := audio.NewSampleBatch(audio.Format{}, 0)

	if _, err := d.Decode(out, &audio.Packet{Data: []byte{1}}, 0); !errors.Is(err, audio.ErrNotOpen) {
		t.Errorf("Decode() error = %v, want ErrNotOpen", err)
	}
	if err := d.Drain(out); !errors.Is(err, audio.ErrNotOpen) {
		t.Errorf("Drain() error = %v, want ErrNotOpen", err)
	}
}

func TestDecoder_Decode(t *testing.T) {
	t.Parallel()

	d, _ := openFake(t)
	out := audio.NewSampleBatch(d.Params().Format, 16)

	// Priming packet.
	n, err := d.Decode(out, &audio.Packet{Data: []byte{1, 2, 3}, PTS: audio.NoPTS}, 0)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if n != 3 || out.Complete {
		t.Errorf("priming Decode() = %d, complete %v; want 3, false", n, out.Complete)
	}

	pts := int64(0)
	for _, payload := range [][]byte{{10, 20}, {30, 40, 50}} {
		n, err := d.Decode(out, &audio.Packet{Data: payload, PTS: audio.NoPTS}, 0)
		if err != nil {
			t.Fatalf("Decode() error = %v", err)
		}
		if n != len(payload) || !out.Complete {
			t.Fatalf("Decode() = %d, complete %v", n, out.Complete)
		}
		if out.Frames() != len(payload) || out.PTS != pts {
			t.Errorf("batch = %d frames at %d, want %d at %d", out.Frames(), out.PTS, len(payload), pts)
		}
		if out.Data[0] != float32(payload[0])/100 || out.Data[1] != -float32(payload[0])/100 {
			t.Errorf("first frame = %v", out.Data[:2])
		}
		pts += int64(len(payload))
	}

	// Offset at the end consumes nothing.
	if n, err := d.Decode(out, &audio.Packet{Data: []byte{1}}, 1); n != 0 || err != nil {
		t.Errorf("Decode(end) = %d, %v", n, err)
	}

	var drained int
	for _, err := range audio.FlushDecoder(d, out) {
		if err != nil {
			t.Fatalf("FlushDecoder() error = %v", err)
		}
		drained++
	}
	if drained != 0 {
		t.Errorf("FlushDecoder() yielded %d batches, want 0", drained)
	}
}

func TestDecoder_TrimsToLength(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		frames int64
		want   []int // frames out of each packet after priming
	}{
		{"unknown length", 0, []int{3, 4, 2}},
		{"cut inside last packet", 8, []int{3, 4, 1}},
		{"cut on packet boundary", 7, []int{3, 4, 0}},
		{"cut inside earlier packet", 5, []int{3, 2, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			params := vorbisParams()
			params.Frames = tt.frames
			d, err := newDecoder(params, &fakeVorbis{})
			if err != nil {
				t.Fatal(err)
			}
			if err := d.Open(audio.DecoderOptions{}); err != nil {
				t.Fatal(err)
			}
			out := audio.NewSampleBatch(d.Params().Format, 16)

			d.Decode(out, &audio.Packet{Data: []byte{1}, PTS: audio.NoPTS}, 0)
			for i, payload := range [][]byte{{1, 2, 3}, {4, 5, 6, 7}, {8, 9}} {
				if _, err := d.Decode(out, &audio.Packet{Data: payload, PTS: audio.NoPTS}, 0); err != nil {
					t.Fatal(err)
				}
				got := 0
				if out.Complete {
					got = out.Frames()
				}
				if got != tt.want[i] {
					t.Errorf("packet %d gave %d frames, want %d", i, got, tt.want[i])
				}
			}
		})
	}
}

func TestDecoder_DecodeError(t *testing.T) {
	t.Parallel()

	d, fake := openFake(t)
	fake.failOn = 0xee
	out := audio.NewSampleBatch(d.Params().Format, 16)

	n, err := d.Decode(out, &audio.Packet{Data: []byte{0xee, 1, 2}}, 0)
	if err == nil {
		t.Fatal("Decode() error = nil, want error")
	}
	if n != 3 || out.Complete {
		t.Errorf("Decode() = %d, complete %v; want whole packet consumed, incomplete", n, out.Complete)
	}
}

func TestDecoder_CloseClears(t *testing.T) {
	t.Parallel()

	d, fake := openFake(t)
	before := fake.cleared

	if err := d.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if fake.cleared != before+1 {
		t.Errorf("Clear called %d times, want %d", fake.cleared, before+1)
	}

	out := audio.NewSampleBatch(d.Params().Format, 1)
	if _, err := d.Decode(out, &audio.Packet{Data: []byte{1}}, 0); !errors.Is(err, audio.ErrNotOpen) {
		t.Errorf("Decode() after Close error = %v, want ErrNotOpen", err)
	}
}

func BenchmarkDecoder_Decode(b *testing.B) {
	fake := &fakeVorbis{primed: true}
	d, _ := newDecoder(vorbisParams(), fake)
	_ = d.Open(audio.DecoderOptions{})
	fake.primed = true

	pkt := &audio.Packet{Data: make([]byte, 1024), PTS: audio.NoPTS}
	out := audio.NewSampleBatch(d.Params().Format, 1024)

	b.ReportAllocs()

	for b.Loop() {
		if _, err := d.Decode(out, pkt, 0); err != nil {
			b.Fatal(err)
		}
	}
}
