// SPDX-License-Identifier: EPL-2.0

// Package pipeline moves one stream of a container through its decoder,
// a sample converter and either an encoder with a container writer or a
// raw sink.
//
// A Pipeline walks a fixed sequence of states:
//
//	idle -> streams-discovered -> decoder-open -> [encoder-open] ->
//	writer-open -> running -> decoder-flushing -> [encoder-flushing] -> closed
//
// Only forward moves happen. Any fatal error jumps straight to closed after
// every acquired resource has been released.
//
// Decode errors inside a packet are recoverable: the rest of that packet is
// dropped, the error is counted in the Report and the run continues. Read,
// write and configuration errors end the run.
//
// Basic usage:
//
//	p, err := pipeline.New(pipeline.Config{
//		Source:   "in.ogg",
//		Registry: reg,
//		Output:   &pipeline.OutputConfig{Path: "out.mp3", Format: "mp3", Codec: audio.CodecMP3},
//	})
//	if err != nil {
//		return err
//	}
//	report, err := p.Run(ctx)
package pipeline
