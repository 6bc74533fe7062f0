// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"github.com/ik5/audxcode/audio"
)

var errFakeFrame = errors.New("fake: corrupt frame")

// fakeMP3 simulates gomp3.Decoder: it reads whole frames from the feed and
// produces one stereo sample frame per sample, left = n*100 and right =
// -n*100 for the n-th frame read. A frame whose first payload byte is 0xee
// fails to decode.
type fakeMP3 struct {
	src     io.Reader
	pending []byte
	frames  int
}

func newFakeMP3(r io.Reader) (mp3Reader, error) {
	return &fakeMP3{src: r}, nil
}

func (f *fakeMP3) Read(p []byte) (int, error) {
	if len(f.pending) == 0 {
		hdr := make([]byte, HeaderSize)
		if _, err := io.ReadFull(f.src, hdr); err != nil {
			return 0, err
		}
		h, err := ParseFrameHeader(hdr)
		if err != nil {
			return 0, err
		}
		body := make([]byte, h.FrameLen()-HeaderSize)
		if _, err := io.ReadFull(f.src, body); err != nil {
			return 0, err
		}
		if body[0] == 0xee {
			return 0, errFakeFrame
		}

		f.frames++
		spf := h.SamplesPerFrame()
		f.pending = make([]byte, spf*4)
		for i := range spf {
			binary.LittleEndian.PutUint16(f.pending[4*i:], uint16(int16(f.frames*100)))
			binary.LittleEndian.PutUint16(f.pending[4*i+2:], uint16(int16(-f.frames*100)))
		}
	}

	n := copy(p, f.pending)
	f.pending = f.pending[n:]

	return n, nil
}

func openFakeDecoder(t *testing.T, hdr []byte, opts audio.DecoderOptions) *Decoder {
	t.Helper()

	h, _ := ParseFrameHeader(hdr)
	params := audio.CodecParams{
		Codec:  audio.CodecMP3,
		Format: audio.Format{SampleRate: h.SampleRate, Channels: h.Channels()},
	}

	dec, err := newDecoder(params, newFakeMP3)
	if err != nil {
		t.Fatalf("newDecoder() error = %v", err)
	}
	if err := dec.Open(opts); err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	return dec
}

func packetOf(frames ...[]byte) *audio.Packet {
	pkt := audio.NewPacket()
	for _, f := range frames {
		pkt.Data = append(pkt.Data, f...)
	}
	pkt.PTS = 0

	return pkt
}

func TestDecoder_MultiFramePacket(t *testing.T) {
	t.Parallel()

	dec := openFakeDecoder(t, hdrV1Stereo, audio.DecoderOptions{})
	f := testFrame(hdrV1Stereo...)
	pkt := packetOf(f, f, f)

	out := &audio.SampleBatch{}
	consumed := 0
	var batches int
	for consumed < pkt.Size() {
		n, err := dec.Decode(out, pkt, consumed)
		if err != nil {
			t.Fatalf("Decode() at %d error = %v", consumed, err)
		}
		consumed += n

		if !out.Complete {
			t.Fatal("Decode() left batch incomplete")
		}
		batches++

		if out.Frames() != 1152 || out.Format.Channels != 2 {
			t.Errorf("batch %d: %d frames, %d channels", batches, out.Frames(), out.Format.Channels)
		}
		if out.PTS != int64(1152*(batches-1)) {
			t.Errorf("batch %d PTS = %d, want %d", batches, out.PTS, 1152*(batches-1))
		}
		if want := float32(batches*100) / 32768; out.Data[0] != want || out.Data[1] != -want {
			t.Errorf("batch %d first frame = %v, %v, want %v, %v", batches, out.Data[0], out.Data[1], want, -want)
		}
	}

	if consumed != pkt.Size() {
		t.Errorf("consumed %d bytes, packet holds %d", consumed, pkt.Size())
	}
	if batches != 3 {
		t.Errorf("batches = %d, want 3", batches)
	}
}

func TestDecoder_MonoFold(t *testing.T) {
	t.Parallel()

	dec := openFakeDecoder(t, hdrV1Mono, audio.DecoderOptions{})
	out := &audio.SampleBatch{}

	if _, err := dec.Decode(out, packetOf(testFrame(hdrV1Mono...)), 0); err != nil {
		t.Fatal(err)
	}
	if out.Format.Channels != 1 || len(out.Data) != 1152 {
		t.Errorf("got %d channels, %d samples, want mono 1152", out.Format.Channels, len(out.Data))
	}
	// fake output is +x / -x, so the fold averages to silence
	if out.Data[0] != 0 {
		t.Errorf("Data[0] = %v, want 0", out.Data[0])
	}
}

func TestDecoder_BadData(t *testing.T) {
	t.Parallel()

	f := testFrame(hdrV1Stereo...)

	t.Run("garbage", func(t *testing.T) {
		t.Parallel()

		dec := openFakeDecoder(t, hdrV1Stereo, audio.DecoderOptions{})
		pkt := packetOf([]byte("garbage bytes"))

		n, err := dec.Decode(&audio.SampleBatch{}, pkt, 0)
		if !errors.Is(err, ErrBadHeader) || n != pkt.Size() {
			t.Errorf("Decode() = %d, %v, want %d, ErrBadHeader", n, err, pkt.Size())
		}
	})

	t.Run("partial frame", func(t *testing.T) {
		t.Parallel()

		dec := openFakeDecoder(t, hdrV1Stereo, audio.DecoderOptions{})
		pkt := packetOf(f, f[:200])

		n, err := dec.Decode(&audio.SampleBatch{}, pkt, 0)
		if err != nil || n != len(f) {
			t.Fatalf("Decode() = %d, %v, want %d, nil", n, err, len(f))
		}
		n, err = dec.Decode(&audio.SampleBatch{}, pkt, n)
		if !errors.Is(err, ErrPartialFrame) || n != 200 {
			t.Errorf("Decode() = %d, %v, want 200, ErrPartialFrame", n, err)
		}
	})

	t.Run("recovers after corrupt frame", func(t *testing.T) {
		t.Parallel()

		dec := openFakeDecoder(t, hdrV1Stereo, audio.DecoderOptions{})
		bad := testFrame(hdrV1Stereo...)
		bad[HeaderSize] = 0xee

		out := &audio.SampleBatch{}
		n, err := dec.Decode(out, packetOf(bad), 0)
		if !errors.Is(err, errFakeFrame) || n != len(bad) {
			t.Errorf("Decode(bad) = %d, %v, want %d, errFakeFrame", n, err, len(bad))
		}
		if out.Complete {
			t.Error("Complete = true after a failed frame")
		}

		if _, err := dec.Decode(out, packetOf(f), 0); err != nil || !out.Complete {
			t.Errorf("Decode(good) error = %v, complete = %v", err, out.Complete)
		}
	})
}

func TestDecoder_Options(t *testing.T) {
	t.Parallel()

	dec := openFakeDecoder(t, hdrV1Stereo, audio.DecoderOptions{Channels: 1})
	if dec.Params().Format.Channels != 1 {
		t.Errorf("Channels = %d, want 1", dec.Params().Format.Channels)
	}

	if err := dec.Open(audio.DecoderOptions{Channels: 6}); !errors.Is(err, audio.ErrInvalidFormat) {
		t.Errorf("Open(6 channels) error = %v, want ErrInvalidFormat", err)
	}

	closed := openFakeDecoder(t, hdrV1Stereo, audio.DecoderOptions{})
	closed.Close()
	if _, err := closed.Decode(&audio.SampleBatch{}, packetOf(testFrame(hdrV1Stereo...)), 0); !errors.Is(err, audio.ErrNotOpen) {
		t.Errorf("Decode() after Close error = %v, want ErrNotOpen", err)
	}
}

func TestNewDecoder_WrongCodec(t *testing.T) {
	t.Parallel()

	_, err := NewDecoder(audio.CodecParams{Codec: audio.CodecVorbis, Format: audio.Format{SampleRate: 44100, Channels: 2}})
	if !errors.Is(err, audio.ErrUnsupportedCodec) {
		t.Errorf("NewDecoder() error = %v, want ErrUnsupportedCodec", err)
	}
}
