// SPDX-License-Identifier: EPL-2.0

package audxcode

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"testing"

	"github.com/ik5/audxcode/audio"
	"github.com/ik5/audxcode/internal/audiotest"
)

func TestDefaultRegistry(t *testing.T) {
	t.Parallel()

	reg := DefaultRegistry()

	var names []string
	for _, f := range reg.Formats() {
		names = append(names, f.Name)
	}
	if want := []string{"aiff", "mp3", "ogg", "wav"}; !slices.Equal(names, want) {
		t.Errorf("Formats() = %v, want %v", names, want)
	}

	want := []audio.CodecID{audio.CodecMP3, audio.CodecPCMS16BE, audio.CodecPCMS16LE}
	if got := reg.Encoders(); !slices.Equal(got, want) {
		t.Errorf("Encoders() = %v, want %v", got, want)
	}

	for _, ext := range []string{"wav", ".aif", "oga", "mp3"} {
		if _, ok := reg.ByExtension(ext); !ok {
			t.Errorf("ByExtension(%q) found nothing", ext)
		}
	}
}

func TestDefaultCodec(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format string
		want   audio.CodecID
		ok     bool
	}{
		{"wav", audio.CodecPCMS16LE, true},
		{"AIFF", audio.CodecPCMS16BE, true},
		{"mp3", audio.CodecMP3, true},
		{"ogg", audio.CodecNone, false},
	}

	for _, tt := range tests {
		got, ok := DefaultCodec(tt.format)
		if got != tt.want || ok != tt.ok {
			t.Errorf("DefaultCodec(%q) = %q, %v; want %q, %v", tt.format, got, ok, tt.want, tt.ok)
		}
	}
}

func TestProbe(t *testing.T) {
	t.Parallel()

	src := audiotest.WAVFile(t, 22050, 2, 22050, audiotest.Silence)

	res, err := Probe(context.Background(), src, DefaultRegistry())
	if err != nil {
		t.Fatalf("Probe() error = %v", err)
	}

	if res.Info.Format != "wav" || len(res.Streams) != 1 {
		t.Fatalf("Probe() = %+v", res)
	}
	s := res.Streams[0]
	if s.Params.Codec != audio.CodecPCMS16LE || s.Params.Format.SampleRate != 22050 || s.Params.Format.Channels != 2 {
		t.Errorf("stream = %v", s)
	}
	if res.Info.Duration.Seconds() != 1 {
		t.Errorf("duration = %v, want 1s", res.Info.Duration)
	}
}

func TestTranscode(t *testing.T) {
	t.Parallel()

	src := audiotest.WAVFile(t, 44100, 2, 44100, audiotest.Sine(44100, 440))
	dir := t.TempDir()

	tests := []struct {
		dst   string
		codec audio.CodecID
	}{
		{"out.aiff", audio.CodecPCMS16BE},
		{"out.mp3", audio.CodecMP3},
		{"out.wav", audio.CodecPCMS16LE},
	}

	for _, tt := range tests {
		dst := filepath.Join(dir, tt.dst)

		rep, err := Transcode(context.Background(), src, dst, TranscodeOptions{Logger: quiet()})
		if err != nil {
			t.Fatalf("Transcode(%s) error = %v", tt.dst, err)
		}
		if rep.Output.Codec != tt.codec || rep.PacketsWritten == 0 {
			t.Errorf("Transcode(%s) wrote %d packets of %s", tt.dst, rep.PacketsWritten, rep.Output.Codec)
		}

		res, err := Probe(context.Background(), dst, DefaultRegistry())
		if err != nil {
			t.Fatalf("Probe(%s) error = %v", tt.dst, err)
		}
		if len(res.Streams) != 1 || res.Streams[0].Params.Codec != tt.codec {
			t.Errorf("Probe(%s) streams = %v", tt.dst, res.Streams)
		}
	}
}

func TestTranscode_Target(t *testing.T) {
	t.Parallel()

	src := audiotest.WAVFile(t, 44100, 2, 44100, audiotest.Sine(44100, 440))
	dst := filepath.Join(t.TempDir(), "phone.wav")

	_, err := Transcode(context.Background(), src, dst, TranscodeOptions{
		Target: audio.Format{SampleRate: 8000, Channels: 1},
		Logger: quiet(),
	})
	if err != nil {
		t.Fatalf("Transcode() error = %v", err)
	}

	res, err := Probe(context.Background(), dst, DefaultRegistry())
	if err != nil {
		t.Fatal(err)
	}
	f := res.Streams[0].Params.Format
	if f.SampleRate != 8000 || f.Channels != 1 {
		t.Errorf("output format = %v, want 8000 Hz mono", f)
	}
}

func TestTranscode_Errors(t *testing.T) {
	t.Parallel()

	src := audiotest.WAVFile(t, 8000, 1, 100, audiotest.Silence)
	dir := t.TempDir()

	if _, err := Transcode(context.Background(), src, filepath.Join(dir, "out.flac"), TranscodeOptions{}); !errors.Is(err, audio.ErrUnknownFormat) {
		t.Errorf("unknown extension: error = %v", err)
	}
	if _, err := Transcode(context.Background(), src, filepath.Join(dir, "out.ogg"), TranscodeOptions{}); !errors.Is(err, audio.ErrUnsupportedCodec) {
		t.Errorf("ogg output: error = %v", err)
	}
}
