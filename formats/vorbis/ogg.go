// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"encoding/binary"
	"fmt"
	"io"
)

const (
	pageHeaderSize = 27
	maxSegments    = 255

	flagContinued = 0x01
	flagBOS       = 0x02
	flagEOS       = 0x04
)

var capturePattern = [4]byte{'O', 'g', 'g', 'S'}

// crcTable is the Ogg CRC-32: polynomial 0x04C11DB7, MSB first, zero
// initial value, no final xor.
var crcTable = func() [256]uint32 {
	var t [256]uint32
	for i := range t {
		r := uint32(i) << 24
		for range 8 {
			if r&0x80000000 != 0 {
				r = r<<1 ^ 0x04C11DB7
			} else {
				r <<= 1
			}
		}
		t[i] = r
	}
	return t
}()

func crcUpdate(crc uint32, b []byte) uint32 {
	for _, v := range b {
		crc = crc<<8 ^ crcTable[byte(crc>>24)^v]
	}
	return crc
}

// page is one Ogg page. Segments holds the lacing values and Body the
// concatenated segment data.
type page struct {
	Flags    byte
	Granule  int64
	Serial   uint32
	Sequence uint32
	Segments []byte
	Body     []byte
}

func (p *page) bos() bool       { return p.Flags&flagBOS != 0 }
func (p *page) eos() bool       { return p.Flags&flagEOS != 0 }
func (p *page) continued() bool { return p.Flags&flagContinued != 0 }

// pageReader reads consecutive Ogg pages. Buffers are reused between calls,
// so a page is only valid until the next ReadPage.
type pageReader struct {
	r    io.Reader
	hdr  [pageHeaderSize + maxSegments]byte
	body []byte
	page page
}

func newPageReader(r io.Reader) *pageReader {
	return &pageReader{r: r}
}

// ReadPage returns io.EOF at a clean end of input and io.ErrUnexpectedEOF
// when a page is cut short. A checksum failure returns the page anyway,
// together with ErrBadChecksum.
func (pr *pageReader) ReadPage() (*page, error) {
	h := pr.hdr[:pageHeaderSize]
	if _, err := io.ReadFull(pr.r, h); err != nil {
		return nil, err
	}
	if [4]byte(h[0:4]) != capturePattern {
		return nil, ErrNotOgg
	}
	if h[4] != 0 {
		return nil, fmt.Errorf("%w: version %d", ErrBadPage, h[4])
	}

	nseg := int(h[26])
	segs := pr.hdr[pageHeaderSize : pageHeaderSize+nseg]
	if _, err := io.ReadFull(pr.r, segs); err != nil {
		return nil, unexpected(err)
	}

	size := 0
	for _, s := range segs {
		size += int(s)
	}
	if cap(pr.body) < size {
		pr.body = make([]byte, size)
	}
	pr.body = pr.body[:size]
	if _, err := io.ReadFull(pr.r, pr.body); err != nil {
		return nil, unexpected(err)
	}

	want := binary.LittleEndian.Uint32(h[22:26])
	binary.LittleEndian.PutUint32(h[22:26], 0)
	crc := crcUpdate(0, pr.hdr[:pageHeaderSize+nseg])
	crc = crcUpdate(crc, pr.body)

	pr.page = page{
		Flags:    h[5],
		Granule:  int64(binary.LittleEndian.Uint64(h[6:14])),
		Serial:   binary.LittleEndian.Uint32(h[14:18]),
		Sequence: binary.LittleEndian.Uint32(h[18:22]),
		Segments: segs,
		Body:     pr.body,
	}

	if crc != want {
		return &pr.page, fmt.Errorf("%w: page %d of stream %#x", ErrBadChecksum, pr.page.Sequence, pr.page.Serial)
	}

	return &pr.page, nil
}

func unexpected(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}

// packetAssembler rebuilds packets of one logical stream from its pages.
// A lacing value below 255 ends a packet; a page ending on 255 leaves the
// packet open for the next page.
type packetAssembler struct {
	partial []byte
	open    bool
}

// Push splits p into packets and calls emit with each completed one. The
// slice passed to emit is only valid during the call.
func (a *packetAssembler) Push(p *page, emit func([]byte)) {
	if !p.continued() && a.open {
		// The page that should have carried the rest of the packet was lost.
		a.Reset()
	}

	skip := p.continued() && !a.open
	pos := 0
	for _, s := range p.Segments {
		seg := p.Body[pos : pos+int(s)]
		pos += int(s)

		if !skip {
			a.partial = append(a.partial, seg...)
			a.open = true
		}
		if s < 255 {
			if !skip {
				emit(a.partial)
			}
			a.partial = a.partial[:0]
			a.open = false
			skip = false
		}
	}
}

func (a *packetAssembler) Reset() {
	a.partial = a.partial[:0]
	a.open = false
}
