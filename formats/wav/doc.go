// SPDX-License-Identifier: EPL-2.0

// Package wav provides the WAV container: a demuxer, a muxer and a probe.
//
// Reading and writing go through the github.com/go-audio/wav library. Only
// 16-bit PCM is supported; the single stream is exposed as pcm_s16le and
// decoded by the formats/pcm codec.
//
// # Demuxing
//
// The demuxer positions the reader at the data chunk and returns packets of
// PacketFrames sample frames. Each packet holds several codec frames, so a
// decoder needs more than one Decode call per packet:
//
//	d, err := wav.NewDemuxer(file, wav.DefaultPacketFrames)
//	if err != nil {
//	    // Handle error
//	}
//
//	pkt := audio.NewPacket()
//	for d.ReadPacket(pkt) == nil {
//	    // decode pkt
//	}
//
// RIFF INFO tags (INAM, IART, IPRD...) become stream metadata under the
// audio.Meta* keys.
//
// # Muxing
//
// The muxer accepts one pcm_s16le stream and needs a seekable writer, since
// the RIFF and data sizes are patched on Close:
//
//	m := wav.NewMuxer(file)
//	m.AddStream(params, metadata)
//	m.WriteHeader()
//	m.WritePacket(pkt, false)
//	m.Close()
//
// # Writing WAV Files Directly
//
// WriteWAV16 writes a complete 16-bit file to any io.Writer in one
// call, without seeking:
//
//	samples := []int16{100, -100, 200, -200}
//	err := wav.WriteWAV16(w, 8000, 1, samples)
//
// # Errors
//
//   - ErrNotWavFile: the input is not a RIFF/WAVE file
//   - ErrOnlyPCM16bitSupported: the fmt chunk is not 16-bit PCM
//   - ErrUnsupportedWavChunks: no data chunk could be found
//   - ErrPartialFrame: WriteWAV16 got samples that do not fill the last frame
package wav
