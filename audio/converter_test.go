// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"
)

func batchOf(rate, channels int, data ...float32) *SampleBatch {
	return &SampleBatch{
		Format:   Format{SampleRate: rate, Channels: channels, SampleFormat: SampleS16},
		Data:     data,
		PTS:      NoPTS,
		Complete: true,
	}
}

func TestNewConverter_RejectsUnsetTarget(t *testing.T) {
	t.Parallel()

	if _, err := NewConverter(Format{SampleRate: 44100, Channels: 2}); !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("NewConverter() error = %v, want ErrInvalidFormat", err)
	}
}

func TestConverter_ChannelMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		inCh     int
		outCh    int
		in       []float32
		want     []float32
	}{
		{name: "passthrough", inCh: 2, outCh: 2, in: []float32{0.1, 0.2}, want: []float32{0.1, 0.2}},
		{name: "stereo to mono", inCh: 2, outCh: 1, in: []float32{0.4, 0.6, -0.2, 0.2}, want: []float32{0.5, 0}},
		{name: "mono to stereo", inCh: 1, outCh: 2, in: []float32{0.3, -0.3}, want: []float32{0.3, 0.3, -0.3, -0.3}},
		{name: "quad to mono", inCh: 4, outCh: 1, in: []float32{0.1, 0.2, 0.3, 0.4}, want: []float32{0.25}},
		{name: "stereo to quad", inCh: 2, outCh: 4, in: []float32{0.1, 0.2}, want: []float32{0.1, 0.2, 0.2, 0.2}},
		{name: "quad to stereo", inCh: 4, outCh: 2, in: []float32{0.1, 0.2, 0.4, 0.6}, want: []float32{0.1, 0.4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			conv, err := NewConverter(Format{SampleRate: 8000, Channels: tt.outCh, SampleFormat: SampleF32})
			if err != nil {
				t.Fatalf("NewConverter() error = %v", err)
			}

			out := conv.ConvertBatch(nil, batchOf(8000, tt.inCh, tt.in...))
			if len(out.Data) != len(tt.want) {
				t.Fatalf("len(Data) = %d, want %d", len(out.Data), len(tt.want))
			}
			for i := range tt.want {
				if math.Abs(float64(out.Data[i]-tt.want[i])) > 1e-6 {
					t.Errorf("Data[%d] = %v, want %v", i, out.Data[i], tt.want[i])
				}
			}
			if out.Format.Channels != tt.outCh {
				t.Errorf("Format.Channels = %d, want %d", out.Format.Channels, tt.outCh)
			}
		})
	}
}

func TestConverter_RateChange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		inRate   int
		outRate  int
		inFrames int
		want     int
	}{
		{name: "downsample 44.1k to 22.05k", inRate: 44100, outRate: 22050, inFrames: 1152, want: 576},
		{name: "upsample 8k to 16k", inRate: 8000, outRate: 16000, inFrames: 100, want: 200},
		{name: "44.1k to 48k", inRate: 44100, outRate: 48000, inFrames: 441, want: 480},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			in := batchOf(tt.inRate, 1, make([]float32, tt.inFrames)...)
			for i := range in.Data {
				in.Data[i] = float32(math.Sin(2 * math.Pi * 440 * float64(i) / float64(tt.inRate)))
			}
			in.PTS = int64(tt.inRate)

			conv, _ := NewConverter(Format{SampleRate: tt.outRate, Channels: 1, SampleFormat: SampleS16})
			out := conv.ConvertBatch(nil, in)

			if out.Frames() != tt.want {
				t.Errorf("Frames() = %d, want %d", out.Frames(), tt.want)
			}
			if out.PTS != int64(tt.outRate) {
				t.Errorf("PTS = %d, want %d", out.PTS, tt.outRate)
			}
			for i, v := range out.Data {
				if v > 1 || v < -1 {
					t.Fatalf("Data[%d] = %v outside [-1, 1]", i, v)
				}
			}
		})
	}
}

func TestConverter_ConvertBatchReusesDst(t *testing.T) {
	t.Parallel()

	conv, _ := NewConverter(Format{SampleRate: 8000, Channels: 1, SampleFormat: SampleS16})
	dst := NewSampleBatch(conv.Target(), 64)
	ptr := &dst.Data[:1][0]

	out := conv.ConvertBatch(dst, batchOf(8000, 2, 0.5, 0.5, 0.25, 0.25))

	if out != dst {
		t.Error("ConvertBatch() did not return dst")
	}
	if &out.Data[0] != ptr {
		t.Error("ConvertBatch() reallocated a large enough dst")
	}
	if !out.Complete {
		t.Error("Complete not carried over")
	}
}

func TestConverter_ConvertBytesS16(t *testing.T) {
	t.Parallel()

	conv, _ := NewConverter(Format{SampleRate: 22050, Channels: 2, SampleFormat: SampleS16})

	var raw []byte
	raw = conv.ConvertBytes(raw, batchOf(22050, 1, 0.5, -0.5, 1.5))

	if len(raw) != 3*2*2 {
		t.Fatalf("len = %d, want 12", len(raw))
	}

	want := []int16{16384, 16384, -16384, -16384, 32767, 32767}
	for i, w := range want {
		if got := int16(binary.LittleEndian.Uint16(raw[i*2:])); got != w {
			t.Errorf("sample %d = %d, want %d", i, got, w)
		}
	}

	again := conv.ConvertBytes(raw, batchOf(22050, 1, 0))
	if &again[0] != &raw[0] {
		t.Error("ConvertBytes() reallocated a large enough buffer")
	}
}

func TestConverter_ConvertBytesF32(t *testing.T) {
	t.Parallel()

	conv, _ := NewConverter(Format{SampleRate: 8000, Channels: 1, SampleFormat: SampleF32})
	raw := conv.ConvertBytes(nil, batchOf(8000, 1, 0.25))

	if got := math.Float32frombits(binary.LittleEndian.Uint32(raw)); got != 0.25 {
		t.Errorf("sample = %v, want 0.25", got)
	}
}

func TestConverter_EmptyBatch(t *testing.T) {
	t.Parallel()

	conv, _ := NewConverter(Format{SampleRate: 8000, Channels: 1, SampleFormat: SampleS16})

	if out := conv.ConvertBatch(nil, batchOf(44100, 2)); out.Frames() != 0 {
		t.Errorf("Frames() = %d, want 0", out.Frames())
	}
	if raw := conv.ConvertBytes(nil, batchOf(44100, 2)); len(raw) != 0 {
		t.Errorf("len = %d, want 0", len(raw))
	}
}

func BenchmarkConverter_StereoToMono44kTo8k(b *testing.B) {
	in := batchOf(44100, 2, make([]float32, 4096*2)...)
	conv, _ := NewConverter(Format{SampleRate: 8000, Channels: 1, SampleFormat: SampleS16})
	dst := conv.ConvertBytes(nil, in)

	b.ReportAllocs()
	b.ResetTimer()

	for range b.N {
		dst = conv.ConvertBytes(dst, in)
	}
}
