// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/ik5/audxcode/audio"
)

const (
	headerIdent   = 1
	headerComment = 3
	headerSetup   = 5
)

var (
	vorbisMagic = []byte("vorbis")
	opusMagic   = []byte("OpusHead")
	theoraMagic = []byte("\x80theora")
)

// identHeader holds the fields of the Vorbis identification header the
// demuxer needs.
type identHeader struct {
	Channels       int
	SampleRate     int
	BitRateNominal int
}

func isVorbisHeader(pkt []byte, kind byte) bool {
	return len(pkt) >= 7 && pkt[0] == kind && bytes.Equal(pkt[1:7], vorbisMagic)
}

func parseIdent(pkt []byte) (identHeader, error) {
	if !isVorbisHeader(pkt, headerIdent) || len(pkt) < 30 {
		return identHeader{}, fmt.Errorf("%w: identification header", ErrBadHeader)
	}
	if v := binary.LittleEndian.Uint32(pkt[7:11]); v != 0 {
		return identHeader{}, fmt.Errorf("%w: version %d", ErrBadHeader, v)
	}

	h := identHeader{
		Channels:       int(pkt[11]),
		SampleRate:     int(binary.LittleEndian.Uint32(pkt[12:16])),
		BitRateNominal: int(int32(binary.LittleEndian.Uint32(pkt[20:24]))),
	}
	if h.Channels == 0 || h.SampleRate == 0 {
		return identHeader{}, fmt.Errorf("%w: %d channels at %d Hz", ErrBadHeader, h.Channels, h.SampleRate)
	}
	h.BitRateNominal = max(h.BitRateNominal, 0)

	return h, nil
}

// commentKeys maps Vorbis comment field names to metadata keys.
var commentKeys = map[string]string{
	"TITLE":       audio.MetaTitle,
	"ARTIST":      audio.MetaArtist,
	"ALBUM":       audio.MetaAlbum,
	"GENRE":       audio.MetaGenre,
	"DATE":        audio.MetaDate,
	"TRACKNUMBER": audio.MetaTrack,
	"COMMENT":     audio.MetaComment,
	"DESCRIPTION": audio.MetaComment,
	"COPYRIGHT":   audio.MetaCopyright,
	"ENCODER":     audio.MetaEncoder,
}

// parseComment reads the vendor string and user comments. Unknown fields
// are kept under their lowercased name; the first value of a field wins.
func parseComment(pkt []byte) (map[string]string, error) {
	if !isVorbisHeader(pkt, headerComment) {
		return nil, fmt.Errorf("%w: comment header", ErrBadHeader)
	}

	p := pkt[7:]
	next := func() ([]byte, bool) {
		if len(p) < 4 {
			return nil, false
		}
		n := binary.LittleEndian.Uint32(p)
		p = p[4:]
		if uint64(n) > uint64(len(p)) {
			return nil, false
		}
		s := p[:n]
		p = p[n:]
		return s, true
	}

	vendor, ok := next()
	if !ok {
		return nil, fmt.Errorf("%w: truncated vendor string", ErrBadHeader)
	}
	if len(p) < 4 {
		return nil, fmt.Errorf("%w: truncated comment list", ErrBadHeader)
	}
	count := binary.LittleEndian.Uint32(p)
	p = p[4:]

	md := make(map[string]string)
	if len(vendor) > 0 {
		md["vendor"] = string(vendor)
	}

	for range count {
		c, ok := next()
		if !ok {
			return nil, fmt.Errorf("%w: truncated comment", ErrBadHeader)
		}
		k, v, found := strings.Cut(string(c), "=")
		if !found {
			continue
		}
		key, known := commentKeys[strings.ToUpper(k)]
		if !known {
			key = strings.ToLower(k)
		}
		if _, dup := md[key]; !dup {
			md[key] = v
		}
	}

	return md, nil
}

// identifyStream classifies a logical stream by its first packet.
func identifyStream(bos []byte) (audio.MediaKind, audio.CodecID) {
	switch {
	case isVorbisHeader(bos, headerIdent):
		return audio.MediaAudio, audio.CodecVorbis
	case bytes.HasPrefix(bos, opusMagic):
		return audio.MediaAudio, audio.CodecOpus
	case bytes.HasPrefix(bos, theoraMagic):
		return audio.MediaVideo, audio.CodecTheora
	default:
		return audio.MediaOther, audio.CodecNone
	}
}

// opusParams reads channel count and input rate from an OpusHead packet.
// Opus always decodes at 48 kHz; the input rate is informational.
func opusParams(head []byte) audio.CodecParams {
	p := audio.CodecParams{Codec: audio.CodecOpus}
	if len(head) >= 19 {
		p.Format = audio.Format{
			SampleRate:   48000,
			Channels:     int(head[9]),
			SampleFormat: audio.SampleF32,
		}
	}
	return p
}
