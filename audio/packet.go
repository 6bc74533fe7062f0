// SPDX-License-Identifier: EPL-2.0

package audio

// NoPTS marks an unknown presentation timestamp.
const NoPTS int64 = -1

// Packet is a unit of compressed data tagged with the index of the stream
// it belongs to. Timestamps are in samples per channel at the stream rate.
type Packet struct {
	StreamIndex int
	Data        []byte
	PTS         int64
	Duration    int64
}

// NewPacket returns an empty packet ready to be filled by a demuxer or encoder.
func NewPacket() *Packet {
	return &Packet{PTS: NoPTS}
}

// Size is the number of payload bytes.
func (p *Packet) Size() int { return len(p.Data) }

// Reset empties the packet but keeps its buffer for reuse.
func (p *Packet) Reset() {
	p.StreamIndex = 0
	p.Data = p.Data[:0]
	p.PTS = NoPTS
	p.Duration = 0
}

// SetData copies b into the packet's buffer, growing it when needed.
func (p *Packet) SetData(b []byte) {
	p.Data = append(p.Data[:0], b...)
}

// Grow returns the packet payload resized to n bytes, reusing capacity.
func (p *Packet) Grow(n int) []byte {
	if cap(p.Data) < n {
		p.Data = make([]byte, n)
	}
	p.Data = p.Data[:n]

	return p.Data
}
