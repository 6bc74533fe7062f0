// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"strings"
)

// MediaKind is the kind of media carried by a stream.
type MediaKind int

const (
	MediaOther MediaKind = iota
	MediaAudio
	MediaVideo
)

func (k MediaKind) String() string {
	switch k {
	case MediaAudio:
		return "audio"
	case MediaVideo:
		return "video"
	default:
		return "other"
	}
}

// SampleFormat is the representation a codec or sink works with.
// Sample batches always hold normalized float32; SampleFormat describes
// how those samples are packed when they leave the pipeline as bytes.
type SampleFormat int

const (
	SampleUnknown SampleFormat = iota
	SampleS16
	SampleF32
)

// BytesPerSample returns the packed size of one sample, or 0 when unknown.
func (f SampleFormat) BytesPerSample() int {
	switch f {
	case SampleS16:
		return 2
	case SampleF32:
		return 4
	default:
		return 0
	}
}

func (f SampleFormat) String() string {
	switch f {
	case SampleS16:
		return "s16"
	case SampleF32:
		return "f32"
	default:
		return "unknown"
	}
}

// ParseSampleFormat maps "s16" and "f32" to their SampleFormat.
func ParseSampleFormat(s string) (SampleFormat, error) {
	switch strings.ToLower(s) {
	case "s16":
		return SampleS16, nil
	case "f32", "flt":
		return SampleF32, nil
	default:
		return SampleUnknown, fmt.Errorf("%w: sample format %q", ErrInvalidFormat, s)
	}
}

// CodecID names a codec, using the same identifiers ffmpeg does.
type CodecID string

const (
	CodecNone     CodecID = ""
	CodecPCMS16LE CodecID = "pcm_s16le"
	CodecPCMS16BE CodecID = "pcm_s16be"
	CodecMP3      CodecID = "mp3"
	CodecVorbis   CodecID = "vorbis"
	CodecOpus     CodecID = "opus"
	CodecTheora   CodecID = "theora"
)

// Format is the layout of uncompressed audio.
type Format struct {
	SampleRate   int
	Channels     int
	SampleFormat SampleFormat
}

// Validate reports an error wrapping ErrInvalidFormat when any field is unset.
func (f Format) Validate() error {
	if f.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate %d", ErrInvalidFormat, f.SampleRate)
	}
	if f.Channels <= 0 {
		return fmt.Errorf("%w: channels %d", ErrInvalidFormat, f.Channels)
	}
	if f.SampleFormat.BytesPerSample() == 0 {
		return fmt.Errorf("%w: sample format %s", ErrInvalidFormat, f.SampleFormat)
	}

	return nil
}

func (f Format) String() string {
	return fmt.Sprintf("%d Hz, %s, %s", f.SampleRate, ChannelLayoutName(f.Channels), f.SampleFormat)
}

// ChannelLayoutName returns the conventional name for a channel count.
func ChannelLayoutName(channels int) string {
	switch channels {
	case 1:
		return "mono"
	case 2:
		return "stereo"
	case 6:
		return "5.1"
	default:
		return fmt.Sprintf("%d channels", channels)
	}
}

// CodecParams describes the parameters negotiated for a decoder or encoder.
type CodecParams struct {
	Codec  CodecID
	Format Format
	// FrameSize is the number of samples per channel in one codec frame,
	// 0 when frames are variable.
	FrameSize int
	// BitRate in bits per second, 0 when unknown.
	BitRate int
	// ExtraData holds codec setup packets (e.g. the three Vorbis headers).
	ExtraData [][]byte
	// Frames is the stream length in samples per channel when the
	// container records it, 0 otherwise. Decoders drop output past it.
	Frames int64
}

func (p CodecParams) String() string {
	var b strings.Builder

	b.WriteString(string(p.Codec))
	if p.Format.SampleRate > 0 {
		fmt.Fprintf(&b, ", %s", p.Format)
	}
	if p.BitRate > 0 {
		fmt.Fprintf(&b, ", %d kb/s", p.BitRate/1000)
	}

	return b.String()
}
