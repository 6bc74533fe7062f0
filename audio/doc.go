// SPDX-License-Identifier: EPL-2.0

// Package audio holds the data model and contracts of the transcoding
// pipeline.
//
// The package defines:
//   - Packet, a unit of compressed data tagged with its stream index
//   - SampleBatch, interleaved float32 samples with a Complete flag
//   - StreamDescriptor, an immutable description of a container stream
//   - Demuxer, Muxer, Decoder, Encoder and Sink interfaces
//   - Converter for sample rate, channel and representation changes
//   - Registry for container formats and encoders
//
// # Decoding
//
// A packet can hold more than one frame. Callers loop, advancing the offset
// by the number of bytes each call consumed, and look at Complete after each
// call:
//
//	for offset := 0; offset < pkt.Size(); {
//	    n, err := dec.Decode(batch, pkt, offset)
//	    if err != nil {
//	        break // skip the rest of this packet
//	    }
//	    offset += n
//	    if batch.Complete {
//	        // use batch
//	    }
//	}
//
// # Flushing
//
// Decoders and encoders may hold frames back. After the last packet, drain
// them with FlushDecoder and FlushEncoder:
//
//	for batch, err := range audio.FlushDecoder(dec, batch) {
//	    if err != nil {
//	        return err
//	    }
//	    // use batch
//	}
//
// # Sample Format
//
// Samples are float32 in the range [-1.0, 1.0] inside the pipeline. The
// SampleFormat of a Format only says how samples are packed when they are
// rendered to bytes (Converter.ConvertBytes) or stored by a codec.
package audio
