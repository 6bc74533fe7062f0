// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ik5/audxcode/audio"
	"github.com/ik5/audxcode/formats/pcm"
)

func pcmPacket(samples ...int16) *audio.Packet {
	pkt := audio.NewPacket()
	buf := pkt.Grow(len(samples) * 2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[2*i:], uint16(s))
	}

	return pkt
}

func createMuxer(t *testing.T) (*Muxer, *os.File) {
	t.Helper()

	f, err := os.Create(filepath.Join(t.TempDir(), "out.wav"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { f.Close() })

	return NewMuxer(f), f
}

func TestMuxer_RoundTrip(t *testing.T) {
	t.Parallel()

	m, f := createMuxer(t)
	md := map[string]string{audio.MetaTitle: "tone", audio.MetaArtist: "audxcode"}

	if _, err := m.AddStream(pcm.Params(audio.CodecPCMS16LE, 22050, 2), md); err != nil {
		t.Fatalf("AddStream() error = %v", err)
	}
	if err := m.WriteHeader(); err != nil {
		t.Fatalf("WriteHeader() error = %v", err)
	}

	want := []int16{0, 100, -100, 32767, -32768, 12345}
	if err := m.WritePacket(pcmPacket(want[:4]...), false); err != nil {
		t.Fatalf("WritePacket() error = %v", err)
	}
	if err := m.WritePacket(pcmPacket(want[4:]...), false); err != nil {
		t.Fatalf("WritePacket() error = %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if _, err := f.Seek(0, 0); err != nil {
		t.Fatal(err)
	}

	d, err := NewDemuxer(f, 0)
	if err != nil {
		t.Fatalf("NewDemuxer() error = %v", err)
	}

	s := d.Streams()[0]
	if s.Params.Format.SampleRate != 22050 || s.Params.Format.Channels != 2 {
		t.Errorf("Format = %v, want 22050 Hz stereo", s.Params.Format)
	}
	if s.Metadata[audio.MetaTitle] != "tone" || s.Metadata[audio.MetaArtist] != "audxcode" {
		t.Errorf("Metadata = %v, want title and artist", s.Metadata)
	}

	pkts := readAll(t, d)
	var got []int16
	for _, p := range pkts {
		for i := 0; i+1 < p.Size(); i += 2 {
			got = append(got, int16(binary.LittleEndian.Uint16(p.Data[i:])))
		}
	}

	if len(got) != len(want) {
		t.Fatalf("samples = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestMuxer_Metadata(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		md   map[string]string
	}{
		{"even", map[string]string{audio.MetaArtist: "audxcode", audio.MetaTitle: "tone"}},
		{"odd", map[string]string{audio.MetaArtist: "abc", audio.MetaTitle: "tones"}},
		{"mixed", map[string]string{
			audio.MetaArtist:  "audxcode",
			audio.MetaComment: "odd",
			audio.MetaDate:    "2024",
			audio.MetaGenre:   "noise",
			audio.MetaTitle:   "a",
			audio.MetaEncoder: "audxcode 1.0",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m, f := createMuxer(t)
			if _, err := m.AddStream(pcm.Params(audio.CodecPCMS16LE, 8000, 1), tt.md); err != nil {
				t.Fatal(err)
			}
			if err := m.WriteHeader(); err != nil {
				t.Fatal(err)
			}
			if err := m.WritePacket(pcmPacket(1, 2, 3), false); err != nil {
				t.Fatal(err)
			}
			if err := m.Close(); err != nil {
				t.Fatal(err)
			}
			if _, err := f.Seek(0, 0); err != nil {
				t.Fatal(err)
			}

			d, err := NewDemuxer(f, 0)
			if err != nil {
				t.Fatalf("NewDemuxer() error = %v", err)
			}
			got := d.Streams()[0].Metadata
			if len(got) != len(tt.md) {
				t.Errorf("Metadata = %v, want %v", got, tt.md)
			}
			for k, v := range tt.md {
				if got[k] != v {
					t.Errorf("Metadata[%s] = %q, want %q", k, got[k], v)
				}
			}
		})
	}
}

func TestMuxer_State(t *testing.T) {
	t.Parallel()

	params := pcm.Params(audio.CodecPCMS16LE, 8000, 1)

	t.Run("header without stream", func(t *testing.T) {
		t.Parallel()

		m, _ := createMuxer(t)
		if err := m.WriteHeader(); !errors.Is(err, audio.ErrMuxerState) {
			t.Errorf("WriteHeader() error = %v, want ErrMuxerState", err)
		}
	})

	t.Run("stream after header", func(t *testing.T) {
		t.Parallel()

		m, _ := createMuxer(t)
		m.AddStream(params, nil)
		m.WriteHeader()
		if _, err := m.AddStream(params, nil); !errors.Is(err, audio.ErrMuxerState) {
			t.Errorf("AddStream() error = %v, want ErrMuxerState", err)
		}
	})

	t.Run("second stream", func(t *testing.T) {
		t.Parallel()

		m, _ := createMuxer(t)
		m.AddStream(params, nil)
		if _, err := m.AddStream(params, nil); !errors.Is(err, audio.ErrMuxerState) {
			t.Errorf("AddStream() error = %v, want ErrMuxerState", err)
		}
	})

	t.Run("wrong codec", func(t *testing.T) {
		t.Parallel()

		m, _ := createMuxer(t)
		_, err := m.AddStream(pcm.Params(audio.CodecPCMS16BE, 8000, 1), nil)
		if !errors.Is(err, audio.ErrUnsupportedCodec) {
			t.Errorf("AddStream() error = %v, want ErrUnsupportedCodec", err)
		}
	})

	t.Run("write before header", func(t *testing.T) {
		t.Parallel()

		m, _ := createMuxer(t)
		m.AddStream(params, nil)
		if err := m.WritePacket(pcmPacket(1), false); !errors.Is(err, audio.ErrMuxerState) {
			t.Errorf("WritePacket() error = %v, want ErrMuxerState", err)
		}
	})

	t.Run("close before header", func(t *testing.T) {
		t.Parallel()

		m, _ := createMuxer(t)
		m.AddStream(params, nil)
		if err := m.Close(); !errors.Is(err, audio.ErrMuxerState) {
			t.Errorf("Close() error = %v, want ErrMuxerState", err)
		}
		if err := m.Close(); !errors.Is(err, audio.ErrClosed) {
			t.Errorf("second Close() error = %v, want ErrClosed", err)
		}
	})
}

func TestMuxer_EmptyStream(t *testing.T) {
	t.Parallel()

	m, f := createMuxer(t)
	m.AddStream(pcm.Params(audio.CodecPCMS16LE, 8000, 1), nil)
	if err := m.WriteHeader(); err != nil {
		t.Fatal(err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	st, err := f.Stat()
	if err != nil {
		t.Fatal(err)
	}
	if st.Size() != 44 {
		t.Errorf("file size = %d, want 44", st.Size())
	}

	data, _ := os.ReadFile(f.Name())
	if !bytes.Equal(data[36:40], []byte("data")) {
		t.Errorf("data chunk id = %q", data[36:40])
	}
}
