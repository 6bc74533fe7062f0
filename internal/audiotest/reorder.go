// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ik5/audxcode/audio"
)

// CodecReorder identifies packets built by ReorderPackets.
const CodecReorder audio.CodecID = "test_reorder"

// FrameBytes is the size of one frame in a reorder packet: a big-endian
// sequence number.
const FrameBytes = 4

// CorruptFrame is a sequence number the reorder decoder rejects.
const CorruptFrame = 0xffffffff

// ErrCorruptFrame is returned for a CorruptFrame.
var ErrCorruptFrame = errors.New("audiotest: corrupt frame")

// ReorderParams describes a mono stream of frameSize samples per frame.
func ReorderParams(sampleRate, frameSize int) audio.CodecParams {
	return audio.CodecParams{
		Codec:     CodecReorder,
		Format:    audio.Format{SampleRate: sampleRate, Channels: 1, SampleFormat: audio.SampleF32},
		FrameSize: frameSize,
	}
}

// ReorderPackets builds packets for streamIndex holding framesPerPacket
// frames each, numbered from 0 to frames-1.
func ReorderPackets(streamIndex, frames, framesPerPacket int) []*audio.Packet {
	var out []*audio.Packet
	for seq := 0; seq < frames; seq += framesPerPacket {
		n := min(framesPerPacket, frames-seq)
		data := make([]byte, 0, n*FrameBytes)
		for i := range n {
			data = binary.BigEndian.AppendUint32(data, uint32(seq+i))
		}
		out = append(out, &audio.Packet{StreamIndex: streamIndex, Data: data, PTS: audio.NoPTS})
	}
	return out
}

// FrameValue is the sample value the reorder decoder writes for seq.
func FrameValue(seq int) float32 { return float32(seq%1000) / 1000 }

// ReorderDecoder holds back depth frames before releasing the oldest one,
// like a codec with lookahead. Every output batch carries FrameSize samples
// of FrameValue(seq) and PTS seq*FrameSize. Drain releases what is held.
//
// A non-nil DrainErr is returned by Drain once DrainErrAfter held frames
// have been released, while frames are still held.
type ReorderDecoder struct {
	params   audio.CodecParams
	depth    int
	pending  []uint32
	released int
	opened   bool

	Opened int
	Closed int

	DrainErr      error
	DrainErrAfter int
}

// NewReorderDecoder returns a factory for decoders of the given depth.
func NewReorderDecoder(depth int) audio.DecoderFactory {
	return func(params audio.CodecParams) (audio.Decoder, error) {
		if params.Codec != CodecReorder {
			return nil, fmt.Errorf("%w: %q", audio.ErrUnsupportedCodec, params.Codec)
		}
		return &ReorderDecoder{params: params, depth: depth}, nil
	}
}

func (d *ReorderDecoder) Params() audio.CodecParams { return d.params }

func (d *ReorderDecoder) Open(audio.DecoderOptions) error {
	d.opened = true
	d.Opened++
	return nil
}

func (d *ReorderDecoder) Close() error {
	d.opened = false
	d.Closed++
	return nil
}

func (d *ReorderDecoder) Decode(out *audio.SampleBatch, pkt *audio.Packet, offset int) (int, error) {
	if !d.opened {
		return 0, audio.ErrNotOpen
	}
	out.Reset()
	out.Format = d.params.Format

	if offset+FrameBytes > pkt.Size() {
		return pkt.Size() - offset, fmt.Errorf("audiotest: %d trailing bytes", pkt.Size()-offset)
	}

	seq := binary.BigEndian.Uint32(pkt.Data[offset:])
	if seq == CorruptFrame {
		return FrameBytes, ErrCorruptFrame
	}

	d.pending = append(d.pending, seq)
	if len(d.pending) > d.depth {
		d.release(out)
	}

	return FrameBytes, nil
}

func (d *ReorderDecoder) Drain(out *audio.SampleBatch) error {
	if !d.opened {
		return audio.ErrNotOpen
	}
	out.Reset()
	out.Format = d.params.Format

	if len(d.pending) == 0 {
		return nil
	}
	if d.DrainErr != nil && d.released >= d.DrainErrAfter {
		return d.DrainErr
	}
	d.release(out)
	d.released++
	return nil
}

func (d *ReorderDecoder) release(out *audio.SampleBatch) {
	seq := d.pending[0]
	d.pending = d.pending[1:]

	data := out.Resize(d.params.FrameSize * d.params.Format.Channels)
	for i := range data {
		data[i] = FrameValue(int(seq))
	}
	out.PTS = int64(seq) * int64(d.params.FrameSize)
	out.Complete = true
}
