// SPDX-License-Identifier: EPL-2.0

// Package sink provides audio.Sink implementations: Writer for raw packed
// samples on any io.Writer and Playback for the default output device.
//
// Playback keeps a bounded queue between Write and the device callback.
// Write blocks while the queue is full, so a pipeline feeding a Playback
// runs at real time.
package sink
