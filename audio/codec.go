// SPDX-License-Identifier: EPL-2.0

package audio

import "iter"

// DecoderOptions tunes decoder negotiation. The zero value keeps the
// stream's native layout.
type DecoderOptions struct {
	// Channels asks the decoder to fold or expand to this channel count when
	// the codec can do it natively. Decoders that cannot ignore it.
	Channels int
}

// EncoderOptions tunes encoder negotiation.
type EncoderOptions struct {
	// DropPartialFrame discards samples left over at flush time instead of
	// padding them with silence to a whole frame.
	DropPartialFrame bool
}

// Decoder turns compressed packets into sample batches. A decoder is bound
// to one stream and is not safe for concurrent use.
type Decoder interface {
	// Params returns the parameters of the decoded output. They are final
	// once Open has returned.
	Params() CodecParams
	Open(opts DecoderOptions) error
	// Decode extracts at most one frame from pkt starting at offset and
	// returns the number of bytes consumed. out.Complete is set only when a
	// whole frame was produced.
	Decode(out *SampleBatch, pkt *Packet, offset int) (int, error)
	// Drain performs one flush step after the last packet. out.Complete is
	// false once the decoder holds nothing more.
	Drain(out *SampleBatch) error
	Close() error
}

// Encoder turns sample batches into compressed packets. Each call produces
// zero or one packet.
type Encoder interface {
	Params() CodecParams
	Open(opts EncoderOptions) error
	// Encode consumes in and reports whether out now holds a packet.
	Encode(out *Packet, in *SampleBatch) (bool, error)
	// Drain performs one flush step and reports whether out holds a packet.
	Drain(out *Packet) (bool, error)
	Close() error
}

// EncoderFactory builds an unopened encoder for the requested parameters.
type EncoderFactory func(params CodecParams) (Encoder, error)

// FlushDecoder drains dec. Each yielded batch is out itself, valid until the
// next iteration. The sequence ends when the decoder reports nothing left,
// or after yielding the first drain error.
func FlushDecoder(dec Decoder, out *SampleBatch) iter.Seq2[*SampleBatch, error] {
	return func(yield func(*SampleBatch, error) bool) {
		for {
			if err := dec.Drain(out); err != nil {
				yield(nil, err)
				return
			}
			if !out.Complete {
				return
			}
			if !yield(out, nil) {
				return
			}
		}
	}
}

// FlushEncoder drains enc, yielding out each time it holds a packet.
func FlushEncoder(enc Encoder, out *Packet) iter.Seq2[*Packet, error] {
	return func(yield func(*Packet, error) bool) {
		for {
			ok, err := enc.Drain(out)
			if err != nil {
				yield(nil, err)
				return
			}
			if !ok {
				return
			}
			if !yield(out, nil) {
				return
			}
		}
	}
}
