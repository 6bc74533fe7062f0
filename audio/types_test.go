// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"testing"
)

func TestFormat_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		format  Format
		wantErr bool
	}{
		{name: "valid s16", format: Format{SampleRate: 44100, Channels: 2, SampleFormat: SampleS16}},
		{name: "valid f32", format: Format{SampleRate: 8000, Channels: 1, SampleFormat: SampleF32}},
		{name: "zero rate", format: Format{Channels: 2, SampleFormat: SampleS16}, wantErr: true},
		{name: "zero channels", format: Format{SampleRate: 44100, SampleFormat: SampleS16}, wantErr: true},
		{name: "unknown sample format", format: Format{SampleRate: 44100, Channels: 2}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.format.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidFormat) {
				t.Errorf("Validate() error = %v, want ErrInvalidFormat", err)
			}
		})
	}
}

func TestParseSampleFormat(t *testing.T) {
	t.Parallel()

	if f, err := ParseSampleFormat("S16"); err != nil || f != SampleS16 {
		t.Errorf("ParseSampleFormat(S16) = %v, %v", f, err)
	}
	if f, err := ParseSampleFormat("f32"); err != nil || f != SampleF32 {
		t.Errorf("ParseSampleFormat(f32) = %v, %v", f, err)
	}
	if _, err := ParseSampleFormat("u8"); !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("ParseSampleFormat(u8) error = %v, want ErrInvalidFormat", err)
	}
}

func TestCodecParams_String(t *testing.T) {
	t.Parallel()

	p := CodecParams{
		Codec:   CodecMP3,
		Format:  Format{SampleRate: 44100, Channels: 2, SampleFormat: SampleS16},
		BitRate: 128000,
	}

	want := "mp3, 44100 Hz, stereo, s16, 128 kb/s"
	if got := p.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestSampleBatch_FramesAndReset(t *testing.T) {
	t.Parallel()

	b := NewSampleBatch(Format{SampleRate: 8000, Channels: 2, SampleFormat: SampleS16}, 4)
	capBefore := cap(b.Data)

	b.Resize(8)
	b.Complete = true
	b.PTS = 100

	if b.Frames() != 4 {
		t.Errorf("Frames() = %d, want 4", b.Frames())
	}

	b.Reset()

	if b.Complete || b.PTS != NoPTS || len(b.Data) != 0 {
		t.Errorf("Reset() left state: complete=%v pts=%d len=%d", b.Complete, b.PTS, len(b.Data))
	}
	if cap(b.Data) != capBefore {
		t.Errorf("Reset() changed capacity: %d -> %d", capBefore, cap(b.Data))
	}
}

func TestPacket_ReuseKeepsCapacity(t *testing.T) {
	t.Parallel()

	p := NewPacket()
	p.SetData(make([]byte, 512))
	p.StreamIndex = 3
	capBefore := cap(p.Data)

	p.Reset()
	p.SetData([]byte{1, 2, 3})

	if p.Size() != 3 || p.StreamIndex != 0 || p.PTS != NoPTS {
		t.Errorf("after reuse: size=%d index=%d pts=%d", p.Size(), p.StreamIndex, p.PTS)
	}
	if cap(p.Data) != capBefore {
		t.Errorf("SetData() reallocated: cap %d -> %d", capBefore, cap(p.Data))
	}
}

func TestStreamDescriptor_Decoder(t *testing.T) {
	t.Parallel()

	params := CodecParams{Codec: CodecOpus}
	s := NewStream(1, 0x1234, MediaAudio, params, nil)

	if s.HasDecoder() {
		t.Error("HasDecoder() = true for nil factory")
	}
	if _, err := s.NewDecoder(); !errors.Is(err, ErrNoDecoder) {
		t.Errorf("NewDecoder() error = %v, want ErrNoDecoder", err)
	}

	want := "Stream #0.1 (audio): opus (no decoder)"
	if got := s.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestStreamDescriptor_WithMetadataCopies(t *testing.T) {
	t.Parallel()

	md := map[string]string{"title": "a"}
	s := NewStream(0, 0, MediaAudio, CodecParams{}, nil).WithMetadata(md)
	md["title"] = "b"

	if s.Metadata["title"] != "a" {
		t.Errorf("Metadata[title] = %q, want %q", s.Metadata["title"], "a")
	}
}
