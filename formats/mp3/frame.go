// SPDX-License-Identifier: EPL-2.0

package mp3

import "fmt"

// HeaderSize is the length of an MPEG audio frame header.
const HeaderSize = 4

// Version is the MPEG audio version of a frame.
type Version int

const (
	MPEG1 Version = iota
	MPEG2
	MPEG25
)

func (v Version) String() string {
	switch v {
	case MPEG1:
		return "MPEG-1"
	case MPEG2:
		return "MPEG-2"
	case MPEG25:
		return "MPEG-2.5"
	default:
		return fmt.Sprintf("Version(%d)", int(v))
	}
}

// ChannelMode is the channel mode field of a frame header.
type ChannelMode int

const (
	Stereo ChannelMode = iota
	JointStereo
	DualChannel
	Mono
)

var (
	bitratesV1 = [16]int{0, 32, 40, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320, -1}
	bitratesV2 = [16]int{0, 8, 16, 24, 32, 40, 48, 56, 64, 80, 96, 112, 128, 144, 160, -1}

	sampleRates = [3][3]int{
		MPEG1:  {44100, 48000, 32000},
		MPEG2:  {22050, 24000, 16000},
		MPEG25: {11025, 12000, 8000},
	}
)

// FrameHeader is a parsed MPEG-1/2/2.5 Layer III frame header.
type FrameHeader struct {
	Version     Version
	Bitrate     int // bits per second
	SampleRate  int
	Padding     bool
	CRC         bool
	ChannelMode ChannelMode
}

// ParseFrameHeader decodes the four header bytes at the start of b.
func ParseFrameHeader(b []byte) (FrameHeader, error) {
	var h FrameHeader

	if len(b) < HeaderSize {
		return h, fmt.Errorf("%w: %d bytes", ErrBadHeader, len(b))
	}
	if b[0] != 0xff || b[1]&0xe0 != 0xe0 {
		return h, fmt.Errorf("%w: no sync", ErrBadHeader)
	}

	switch (b[1] >> 3) & 0x03 {
	case 0:
		h.Version = MPEG25
	case 2:
		h.Version = MPEG2
	case 3:
		h.Version = MPEG1
	default:
		return h, fmt.Errorf("%w: reserved version", ErrBadHeader)
	}

	switch (b[1] >> 1) & 0x03 {
	case 1:
	case 0:
		return h, fmt.Errorf("%w: reserved layer", ErrBadHeader)
	default:
		return h, ErrUnsupportedLayer
	}
	h.CRC = b[1]&0x01 == 0

	idx := b[2] >> 4
	table := bitratesV1
	if h.Version != MPEG1 {
		table = bitratesV2
	}
	switch kbps := table[idx]; kbps {
	case 0:
		return h, ErrFreeFormat
	case -1:
		return h, fmt.Errorf("%w: bitrate index 15", ErrBadHeader)
	default:
		h.Bitrate = kbps * 1000
	}

	srIdx := (b[2] >> 2) & 0x03
	if srIdx == 3 {
		return h, fmt.Errorf("%w: reserved sample rate", ErrBadHeader)
	}
	h.SampleRate = sampleRates[h.Version][srIdx]
	h.Padding = (b[2]>>1)&0x01 == 1
	h.ChannelMode = ChannelMode(b[3] >> 6)

	return h, nil
}

// Channels returns 1 for mono frames and 2 otherwise.
func (h FrameHeader) Channels() int {
	if h.ChannelMode == Mono {
		return 1
	}

	return 2
}

// SamplesPerFrame returns the samples per channel a frame decodes to.
func (h FrameHeader) SamplesPerFrame() int {
	return SamplesPerFrame(h.SampleRate)
}

// FrameLen returns the frame length in bytes, header included.
func (h FrameHeader) FrameLen() int {
	n := h.SamplesPerFrame() / 8 * h.Bitrate / h.SampleRate
	if h.Padding {
		n++
	}

	return n
}

// SamplesPerFrame returns the Layer III frame size for a sample rate:
// 1152 for MPEG-1 rates and 576 for the MPEG-2 and 2.5 rates.
func SamplesPerFrame(sampleRate int) int {
	if sampleRate >= 32000 {
		return 1152
	}

	return 576
}

// ValidSampleRate reports whether a Layer III stream can carry sampleRate.
func ValidSampleRate(sampleRate int) bool {
	for _, rates := range sampleRates {
		for _, r := range rates {
			if r == sampleRate {
				return true
			}
		}
	}

	return false
}
