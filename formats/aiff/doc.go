// SPDX-License-Identifier: EPL-2.0

// Package aiff provides the AIFF (Audio Interchange File Format) container.
//
// This package uses github.com/go-audio/aiff for both directions. AIFF is
// Apple's uncompressed PCM format; samples are stored big-endian, so the
// single stream is exposed as pcm_s16be.
//
// # Demuxing
//
//	d, err := aiff.NewDemuxer(file, aiff.DefaultPacketFrames)
//	if errors.Is(err, aiff.ErrNotAiffFile) {
//	    fmt.Println("Not an AIFF file")
//	}
//
//	pkt := audio.NewPacket()
//	for d.ReadPacket(pkt) == nil {
//	    // pkt holds up to DefaultPacketFrames big-endian sample frames
//	}
//
// # Muxing
//
// The muxer takes one pcm_s16be stream. It needs a seekable writer because
// the COMM frame count and SSND size are written on Close.
//
// # Limitations
//
//   - Only 16-bit PCM is supported; other depths give ErrOnlyPCM16bitSupported
//   - AIFF-C (.aifc) is not recognised by Probe
//   - Tags are neither read nor written
package aiff
