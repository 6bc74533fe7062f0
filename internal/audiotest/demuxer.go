// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"io"

	"github.com/ik5/audxcode/audio"
)

// Demuxer serves a fixed list of packets. ReadErr, when set, is returned
// instead of the packet at index FailAt.
type Demuxer struct {
	StreamList []audio.StreamDescriptor
	Packets    []*audio.Packet
	ContInfo   audio.ContainerInfo

	FailAt  int
	ReadErr error

	next   int
	Closed int
}

func (d *Demuxer) Info() audio.ContainerInfo { return d.ContInfo }

func (d *Demuxer) Streams() []audio.StreamDescriptor { return d.StreamList }

func (d *Demuxer) ReadPacket(pkt *audio.Packet) error {
	pkt.Reset()

	if d.ReadErr != nil && d.next == d.FailAt {
		return d.ReadErr
	}
	if d.next >= len(d.Packets) {
		return io.EOF
	}

	src := d.Packets[d.next]
	d.next++

	pkt.StreamIndex = src.StreamIndex
	pkt.PTS = src.PTS
	pkt.Duration = src.Duration
	pkt.SetData(src.Data)

	return nil
}

func (d *Demuxer) Close() error {
	d.Closed++
	return nil
}
