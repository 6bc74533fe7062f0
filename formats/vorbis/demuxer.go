// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/jfreymuth/oggvorbis"

	"github.com/ik5/audxcode/audio"
)

// logicalStream tracks one serial number of a multiplexed Ogg file.
type logicalStream struct {
	index  int
	serial uint32
	kind   audio.MediaKind
	codec  audio.CodecID
	asm    packetAssembler

	headers [][]byte
	ident   identHeader
	meta    map[string]string
	ready   bool
}

type queued struct {
	index int
	data  []byte
}

// Demuxer splits an Ogg file into per-stream packets. Vorbis streams carry
// their three header packets in ExtraData; only data packets are returned
// by ReadPacket.
type Demuxer struct {
	pages    *pageReader
	streams  []*logicalStream
	bySerial map[uint32]*logicalStream
	descs    []audio.StreamDescriptor
	info     audio.ContainerInfo

	queue   []queued
	head    int
	done    bool
	skipped int
}

// NewDemuxer reads the beginning-of-stream pages and the Vorbis headers of
// rs. Data packets met on the way are kept for ReadPacket.
func NewDemuxer(rs io.ReadSeeker) (*Demuxer, error) {
	frames, rate, err := vorbisLength(rs)
	if err != nil {
		return nil, err
	}

	d := &Demuxer{
		pages:    newPageReader(bufio.NewReader(rs)),
		bySerial: make(map[uint32]*logicalStream),
	}
	if err := d.readHeaders(); err != nil {
		return nil, err
	}
	d.describe(frames, rate)

	return d, nil
}

// vorbisLength asks oggvorbis for the final granule position of the file
// and the first stream's sample rate, then rewinds rs. Files it cannot
// measure report 0 for both.
func vorbisLength(rs io.ReadSeeker) (int64, int, error) {
	var (
		frames int64
		rate   int
	)

	n, f, err := oggvorbis.GetLength(rs)
	if err == nil && f != nil && f.SampleRate > 0 && n > 0 {
		frames, rate = n, f.SampleRate
	}

	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return 0, 0, fmt.Errorf("rewind: %w", err)
	}

	return frames, rate, nil
}

func (d *Demuxer) readHeaders() error {
	first := true
	sawData := false

	for !sawData || !d.headersDone() {
		p, err := d.pages.ReadPage()
		switch {
		case errors.Is(err, ErrBadChecksum):
			d.dropPage(p)
			continue
		case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
			if first {
				return ErrNotOgg
			}
			if !d.headersDone() {
				return ErrMissingHeaders
			}
			d.done = true
			return nil
		case err != nil:
			return err
		}
		first = false

		if p.bos() {
			if _, seen := d.bySerial[p.Serial]; !seen {
				st := &logicalStream{index: len(d.streams), serial: p.Serial}
				d.streams = append(d.streams, st)
				d.bySerial[p.Serial] = st
			}
		} else {
			sawData = true
		}

		if err := d.push(p); err != nil {
			return err
		}
	}

	if len(d.streams) == 0 {
		return ErrNotOgg
	}

	return nil
}

func (d *Demuxer) headersDone() bool {
	for _, st := range d.streams {
		if !st.ready {
			return false
		}
	}
	return true
}

func (d *Demuxer) dropPage(p *page) {
	d.skipped++
	if st, ok := d.bySerial[p.Serial]; ok {
		st.asm.Reset()
	}
}

// push feeds a page to its stream. Pages of unknown serials, such as the
// later links of a chained file, are ignored.
func (d *Demuxer) push(p *page) error {
	st, ok := d.bySerial[p.Serial]
	if !ok {
		return nil
	}

	var err error
	st.asm.Push(p, func(pkt []byte) {
		if err == nil {
			err = d.accept(st, pkt)
		}
	})

	return err
}

func (d *Demuxer) accept(st *logicalStream, pkt []byte) error {
	if st.ready {
		d.queue = append(d.queue, queued{index: st.index, data: bytes.Clone(pkt)})
		return nil
	}

	if len(st.headers) == 0 {
		st.kind, st.codec = identifyStream(pkt)
		st.headers = append(st.headers, bytes.Clone(pkt))
		if st.codec != audio.CodecVorbis {
			st.ready = true
			return nil
		}

		ident, err := parseIdent(pkt)
		if err != nil {
			return err
		}
		st.ident = ident
		return nil
	}

	st.headers = append(st.headers, bytes.Clone(pkt))
	switch len(st.headers) {
	case 2:
		md, err := parseComment(pkt)
		if err != nil {
			return err
		}
		st.meta = md
	case 3:
		if !isVorbisHeader(pkt, headerSetup) {
			return fmt.Errorf("%w: setup header", ErrBadHeader)
		}
		st.ready = true
	}

	return nil
}

// describe builds the stream descriptors. The final granule measures the
// first Vorbis stream; it bounds the decoder's output only when that stream
// is alone in the file, since the last page may belong to another stream
// otherwise.
func (d *Demuxer) describe(frames int64, rate int) {
	measured := false

	var dur time.Duration
	if rate > 0 {
		dur = time.Duration(frames) * time.Second / time.Duration(rate)
	}

	for _, st := range d.streams {
		var desc audio.StreamDescriptor

		switch st.codec {
		case audio.CodecVorbis:
			params := audio.CodecParams{
				Codec: audio.CodecVorbis,
				Format: audio.Format{
					SampleRate:   st.ident.SampleRate,
					Channels:     st.ident.Channels,
					SampleFormat: audio.SampleF32,
				},
				BitRate:   st.ident.BitRateNominal,
				ExtraData: st.headers,
			}
			if len(d.streams) == 1 {
				params.Frames = frames
			}
			desc = audio.NewStream(st.index, int64(st.serial), st.kind, params, NewDecoder).
				WithMetadata(st.meta)

			// oggvorbis measures the first Vorbis stream only.
			if !measured {
				measured = true
				desc = desc.WithDuration(dur)
				d.info.Duration = dur
				d.info.BitRate = params.BitRate
				d.info.Metadata = st.meta
			}
		case audio.CodecOpus:
			params := opusParams(st.headers[0])
			params.ExtraData = st.headers
			desc = audio.NewStream(st.index, int64(st.serial), st.kind, params, nil)
		default:
			params := audio.CodecParams{Codec: st.codec, ExtraData: st.headers}
			desc = audio.NewStream(st.index, int64(st.serial), st.kind, params, nil)
		}

		d.descs = append(d.descs, desc)
	}

	d.info.Format = formatName
	d.info.LongName = longName
}

func (d *Demuxer) Info() audio.ContainerInfo { return d.info }

func (d *Demuxer) Streams() []audio.StreamDescriptor { return d.descs }

// SkippedPages is the number of pages dropped for a bad checksum.
func (d *Demuxer) SkippedPages() int { return d.skipped }

// ReadPacket returns the next data packet of any stream. A file cut inside
// a page ends like a complete one.
func (d *Demuxer) ReadPacket(pkt *audio.Packet) error {
	pkt.Reset()

	for d.head == len(d.queue) {
		if d.done {
			return io.EOF
		}
		d.queue = d.queue[:0]
		d.head = 0

		p, err := d.pages.ReadPage()
		switch {
		case errors.Is(err, ErrBadChecksum):
			d.dropPage(p)
			continue
		case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
			d.done = true
			continue
		case err != nil:
			return fmt.Errorf("%w: %w", audio.ErrRead, err)
		}

		if err := d.push(p); err != nil {
			return fmt.Errorf("%w: %w", audio.ErrRead, err)
		}
	}

	q := d.queue[d.head]
	d.queue[d.head] = queued{}
	d.head++

	pkt.StreamIndex = q.index
	pkt.SetData(q.data)

	return nil
}

func (d *Demuxer) Close() error {
	d.queue = nil
	d.head = 0
	d.done = true

	return nil
}
