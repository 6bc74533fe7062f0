// SPDX-License-Identifier: EPL-2.0

package pipeline

import (
	"fmt"

	"github.com/ik5/audxcode/audio"
)

// DecodePacket runs dec over every frame of pkt, calling emit with each
// complete batch, and returns the bytes consumed. A decoder error ends the
// packet and is returned joined with audio.ErrDecode; a decoder that
// consumes nothing is treated the same way. Errors from emit are returned
// unchanged.
func DecodePacket(dec audio.Decoder, out *audio.SampleBatch, pkt *audio.Packet, emit func(*audio.SampleBatch) error) (int, error) {
	size := pkt.Size()
	offset := 0

	for offset < size {
		n, err := dec.Decode(out, pkt, offset)
		n = min(max(n, 0), size-offset)
		offset += n

		if err != nil {
			return offset, fmt.Errorf("%w: packet at offset %d: %w", audio.ErrDecode, offset-n, err)
		}
		if n == 0 {
			return offset, fmt.Errorf("%w: %w at offset %d of %d", audio.ErrDecode, ErrZeroConsume, offset, size)
		}

		if out.Complete {
			if err := emit(out); err != nil {
				return offset, err
			}
		}
	}

	return offset, nil
}

// EncodeBatch feeds in to enc and calls emit when a packet comes out.
// Encoder failures are joined with audio.ErrWrite.
func EncodeBatch(enc audio.Encoder, out *audio.Packet, in *audio.SampleBatch, emit func(*audio.Packet) error) error {
	ok, err := enc.Encode(out, in)
	if err != nil {
		return fmt.Errorf("%w: encode: %w", audio.ErrWrite, err)
	}
	if !ok {
		return nil
	}

	return emit(out)
}
