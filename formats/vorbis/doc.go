// SPDX-License-Identifier: EPL-2.0

// Package vorbis reads Ogg files and decodes their Vorbis streams.
//
// The demuxer understands the Ogg page layer itself: it verifies page
// checksums, rebuilds packets that span pages and keeps the logical streams
// of a multiplexed file apart by serial number. Each stream is classified by
// its first packet:
//
//	\x01vorbis   audio, decodable
//	OpusHead     audio, no decoder
//	\x80theora   video, no decoder
//
// Other streams are reported with MediaOther. Packets of every stream are
// returned by ReadPacket; the stream selector decides which ones to decode.
//
// # Headers and Metadata
//
// The three Vorbis header packets are collected before the demuxer is
// returned and travel in CodecParams.ExtraData. The comment header becomes
// stream metadata, using the keys defined in package audio where a Vorbis
// field has an equivalent (TITLE, ARTIST, TRACKNUMBER...). Other fields keep
// their lowercased name.
//
// # Decoding
//
// Decoding is done by github.com/jfreymuth/vorbis, one packet per call.
// Vorbis frames overlap, so the first packet of a stream only primes the
// decoder and yields no samples:
//
//	dec, _ := stream.NewDecoder()
//	_ = dec.Open(audio.DecoderOptions{})
//	n, err := dec.Decode(batch, pkt, 0)
//	if batch.Complete {
//	    // batch.Data holds interleaved float32 samples
//	}
//
// The stream duration comes from github.com/jfreymuth/oggvorbis, which
// measures the first Vorbis stream of the file. There is no Ogg muxer.
package vorbis
