// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ik5/audxcode/audio"
)

// maxSync bounds the bytes skipped while looking for the first frame.
const maxSync = 64 * 1024

// Demuxer splits an MPEG audio elementary stream into one packet per
// frame. A leading ID3v2 tag becomes container and stream metadata; a
// trailing ID3v1 tag ends the stream.
type Demuxer struct {
	r      *bufio.Reader
	stream audio.StreamDescriptor
	info   audio.ContainerInfo
	pts    int64
}

func NewDemuxer(rs io.ReadSeeker) (*Demuxer, error) {
	br := bufio.NewReader(rs)

	var md map[string]string
	offset := int64(0)

	if head, _ := br.Peek(id3HeaderSize); id3Size(head) > 0 {
		tag := make([]byte, id3Size(head))
		if _, err := io.ReadFull(br, tag); err != nil {
			return nil, fmt.Errorf("%w: truncated ID3v2 tag", ErrNotMP3)
		}
		md = readID3(tag)
		offset += int64(len(tag))
	}

	skipped, h, err := syncFrame(br, maxSync)
	if err != nil {
		return nil, err
	}
	offset += int64(skipped)

	d := &Demuxer{r: br}

	var dur time.Duration
	if frames, err := countFrames(br); err == nil {
		dur = time.Duration(frames*int64(h.SamplesPerFrame())) * time.Second / time.Duration(h.SampleRate)
	}
	if _, err := rs.Seek(offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w: %w", audio.ErrRead, err)
	}
	br.Reset(rs)

	params := audio.CodecParams{
		Codec: audio.CodecMP3,
		Format: audio.Format{
			SampleRate:   h.SampleRate,
			Channels:     h.Channels(),
			SampleFormat: audio.SampleS16,
		},
		FrameSize: h.SamplesPerFrame(),
		BitRate:   h.Bitrate,
	}

	d.stream = audio.NewStream(0, 0, audio.MediaAudio, params, NewDecoder).
		WithMetadata(md).
		WithDuration(dur)
	d.info = audio.ContainerInfo{
		Format:   formatName,
		LongName: longName,
		Duration: dur,
		BitRate:  h.Bitrate,
		Metadata: md,
	}

	return d, nil
}

// syncFrame discards bytes until a valid frame header, returning how many
// were skipped. The header itself is left unread.
func syncFrame(br *bufio.Reader, limit int) (int, FrameHeader, error) {
	for skipped := 0; skipped <= limit; skipped++ {
		b, err := br.Peek(HeaderSize)
		if err != nil {
			return skipped, FrameHeader{}, fmt.Errorf("%w: %w", ErrNotMP3, err)
		}
		if h, err := ParseFrameHeader(b); err == nil {
			return skipped, h, nil
		}
		if _, err := br.Discard(1); err != nil {
			return skipped, FrameHeader{}, err
		}
	}

	return limit, FrameHeader{}, ErrNotMP3
}

// countFrames walks frame headers to the end of the stream.
func countFrames(br *bufio.Reader) (int64, error) {
	var n int64
	for {
		b, err := br.Peek(HeaderSize)
		if err != nil && !errors.Is(err, io.EOF) {
			return n, err
		}
		if len(b) < HeaderSize || bytes.HasPrefix(b, []byte("TAG")) {
			return n, nil
		}

		h, err := ParseFrameHeader(b)
		if err != nil {
			if _, err := br.Discard(1); err != nil {
				return n, nil
			}
			continue
		}

		if _, err := br.Discard(h.FrameLen()); err != nil {
			if errors.Is(err, io.EOF) {
				return n, nil
			}
			return n, err
		}
		n++
	}
}

func (d *Demuxer) Info() audio.ContainerInfo { return d.info }

func (d *Demuxer) Streams() []audio.StreamDescriptor {
	return []audio.StreamDescriptor{d.stream}
}

// ReadPacket returns the next whole frame. Bytes between frames are
// skipped; a truncated last frame ends the stream.
func (d *Demuxer) ReadPacket(pkt *audio.Packet) error {
	pkt.Reset()

	for {
		b, err := d.r.Peek(HeaderSize)
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: %w", audio.ErrRead, err)
		}
		if len(b) < HeaderSize || bytes.HasPrefix(b, []byte("TAG")) {
			return io.EOF
		}

		h, err := ParseFrameHeader(b)
		if err != nil {
			if _, err := d.r.Discard(1); err != nil {
				return fmt.Errorf("%w: %w", audio.ErrRead, err)
			}
			continue
		}

		buf := pkt.Grow(h.FrameLen())
		if _, err := io.ReadFull(d.r, buf); err != nil {
			if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
				pkt.Reset()
				return io.EOF
			}
			return fmt.Errorf("%w: %w", audio.ErrRead, err)
		}

		spf := int64(h.SamplesPerFrame())
		pkt.StreamIndex = d.stream.Index
		pkt.PTS = d.pts
		pkt.Duration = spf
		d.pts += spf

		return nil
	}
}

func (d *Demuxer) Close() error { return nil }
