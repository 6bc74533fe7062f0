// SPDX-License-Identifier: EPL-2.0

// Package audiotest holds fixtures shared by the pipeline, container and
// sink tests.
package audiotest

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/ik5/audxcode/formats/wav"
	"github.com/ik5/audxcode/utils"
)

// Waveform generates the value of one sample given its frame index and
// channel.
type Waveform func(frame, channel int) float32

// Silence is all zeros.
func Silence(int, int) float32 { return 0 }

// Constant returns a waveform holding v on every channel.
func Constant(v float32) Waveform {
	return func(int, int) float32 { return v }
}

// Sine returns a sine wave of frequency Hz at sampleRate, scaled by 0.5 to
// stay clear of clipping.
func Sine(sampleRate int, frequency float64) Waveform {
	return func(frame, _ int) float32 {
		t := float64(frame) / float64(sampleRate)
		return float32(0.5 * math.Sin(2*math.Pi*frequency*t))
	}
}

// Samples renders frames of w as interleaved float32.
func Samples(channels, frames int, w Waveform) []float32 {
	out := make([]float32, frames*channels)
	for f := range frames {
		for ch := range channels {
			out[f*channels+ch] = w(f, ch)
		}
	}
	return out
}

// PCM16 renders frames of w as interleaved int16.
func PCM16(channels, frames int, w Waveform) []int16 {
	s := Samples(channels, frames, w)
	out := make([]int16, len(s))
	for i, v := range s {
		out[i] = utils.Float32ToInt16(v)
	}
	return out
}

// WAVFile writes a 16-bit WAV of w into a temporary directory and returns
// its path.
func WAVFile(tb testing.TB, sampleRate, channels, frames int, w Waveform) string {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "fixture.wav")
	f, err := os.Create(path)
	if err != nil {
		tb.Fatalf("create fixture: %v", err)
	}
	defer f.Close()

	if err := wav.WriteWAV16(f, sampleRate, channels, PCM16(channels, frames, w)); err != nil {
		tb.Fatalf("write fixture: %v", err)
	}

	return path
}
