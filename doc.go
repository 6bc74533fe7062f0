// SPDX-License-Identifier: EPL-2.0

// Package audxcode transcodes audio between container formats.
//
// # Supported Formats
//
// Reading:
//   - WAV (PCM 16-bit) via formats/wav
//   - AIFF (PCM 16-bit) via formats/aiff
//   - Ogg Vorbis via formats/vorbis (Opus and Theora streams are listed but
//     not decoded)
//   - MP3 via formats/mp3
//
// Writing: WAV, AIFF and MP3.
//
// # Quick Start
//
//	report, err := audxcode.Transcode(ctx, "in.ogg", "out.mp3", audxcode.TranscodeOptions{
//	    BitRate: 128000,
//	})
//
// Probe lists the streams of a source without decoding it:
//
//	res, err := audxcode.Probe(ctx, "https://example.com/a.ogg", audxcode.DefaultRegistry())
//	for _, s := range res.Streams {
//	    fmt.Println(s)
//	}
//
// ResampleToMono16 decodes straight to mono 16-bit PCM in memory:
//
//	pcm16, err := audxcode.ResampleToMono16(ctx, "prompt.wav", 8000, nil)
//
// # Building Blocks
//
// The helpers here wrap the lower level packages:
//   - audio: packets, sample batches, codec and container interfaces, the
//     sample converter and the format registry
//   - container: opening inputs by path or URL and writing outputs
//   - pipeline: the decode, convert and encode driver with its Report
//   - sink: raw PCM and playback sinks
//
// See the individual subpackages for more detailed documentation.
package audxcode
