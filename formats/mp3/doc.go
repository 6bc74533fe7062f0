// SPDX-License-Identifier: EPL-2.0

// Package mp3 provides the MPEG audio Layer III elementary stream: frame
// header parsing, a demuxer, a decoder, an encoder and a muxer.
//
// Decoding uses github.com/hajimehoshi/go-mp3 and encoding uses
// github.com/braheezy/shine-mp3. ID3v2 tags are read and written with
// github.com/bogem/id3v2.
//
// # Demuxing
//
// The demuxer skips a leading ID3v2 tag, syncs on the first frame header and
// returns one frame per packet. On seekable input the frames are counted up
// front to get the duration.
//
// # Decoding
//
// go-mp3 is a stream decoder, so the Decoder feeds it one frame per Decode
// call. A packet holding several frames takes several calls:
//
//	for offset := 0; offset < pkt.Size(); {
//	    n, err := dec.Decode(batch, pkt, offset)
//	    if err != nil {
//	        break // rest of the packet is dropped
//	    }
//	    offset += n
//	    if batch.Complete {
//	        // use batch
//	    }
//	}
//
// go-mp3 output is always stereo; mono streams are folded back to one
// channel.
//
// # Encoding
//
// The Encoder buffers samples until a whole frame (1152 samples per channel
// at 32 kHz and above, 576 below) is available. Drain pads the last partial
// frame with silence unless EncoderOptions.DropPartialFrame is set.
//
// # Limitations
//
//   - Layer I and II streams are rejected with ErrUnsupportedLayer
//   - Free-format bitrates are rejected with ErrFreeFormat
//   - ID3v2.2 tags are skipped without metadata
package mp3
