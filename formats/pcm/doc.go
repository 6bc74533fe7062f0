// SPDX-License-Identifier: EPL-2.0

// Package pcm implements the pcm_s16le and pcm_s16be codecs.
//
// The decoder emits at most FrameSize samples per channel per Decode call,
// so a WAV or AIFF packet of several thousand frames takes several calls to
// consume. The encoder emits one packet per non-empty batch and holds
// nothing back on flush.
package pcm
