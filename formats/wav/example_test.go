// SPDX-License-Identifier: EPL-2.0

package wav_test

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ik5/audxcode/audio"
	"github.com/ik5/audxcode/formats/wav"
)

// Example_demuxing demonstrates reading a WAV file as packets.
func Example_demuxing() {
	samples := []int16{100, 200, 300, 400, 500}
	wavData := new(bytes.Buffer)
	wav.WriteWAV16(wavData, 16000, 1, samples)

	d, err := wav.NewDemuxer(bytes.NewReader(wavData.Bytes()), wav.DefaultPacketFrames)
	if err != nil {
		fmt.Printf("Demux error: %v\n", err)
		return
	}

	fmt.Println(d.Streams()[0])

	pkt := audio.NewPacket()
	if err := d.ReadPacket(pkt); err != nil {
		fmt.Printf("Read error: %v\n", err)
		return
	}

	fmt.Printf("Packet: %d bytes, %d frames\n", pkt.Size(), pkt.Duration)
	// Output:
	// Stream #0.0 (audio): pcm_s16le, 16000 Hz, mono, s16, 256 kb/s
	// Packet: 10 bytes, 5 frames
}

// Example_encoding demonstrates writing a WAV file.
func Example_encoding() {
	// Generate audio samples (simple sine-like wave)
	samples := make([]int16, 1000)
	for i := range samples {
		samples[i] = int16((i % 100) * 100)
	}

	output := new(bytes.Buffer)
	err := wav.WriteWAV16(output, 8000, 1, samples)
	if err != nil {
		fmt.Printf("Write error: %v\n", err)
		return
	}

	fmt.Printf("Wrote %d bytes\n", output.Len())
	fmt.Printf("Header: 44 bytes\n")
	fmt.Printf("Data: %d bytes (%d samples × 2 bytes)\n", len(samples)*2, len(samples))
	// Output:
	// Wrote 2044 bytes
	// Header: 44 bytes
	// Data: 2000 bytes (1000 samples × 2 bytes)
}

// Example_errorNotWAV shows handling of invalid WAV files.
func Example_errorNotWAV() {
	invalidData := bytes.NewReader([]byte("This is not a WAV file, only some text"))

	_, err := wav.NewDemuxer(invalidData, 0)
	if errors.Is(err, wav.ErrNotWavFile) {
		fmt.Println("Detected: Not a valid WAV file")
	} else if err != nil {
		fmt.Printf("Other error: %v\n", err)
	}
	// Output: Detected: Not a valid WAV file
}

// Example_emptySamples shows writing a WAV file with no audio data.
func Example_emptySamples() {
	output := new(bytes.Buffer)

	err := wav.WriteWAV16(output, 8000, 1, nil)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Printf("Wrote empty WAV: %d bytes (header only)\n", output.Len())
	// Output: Wrote empty WAV: 44 bytes (header only)
}

// Example_sampleRates demonstrates different sample rates.
func Example_sampleRates() {
	rates := []int{8000, 16000, 44100, 48000}

	for _, rate := range rates {
		// 1 second of audio
		samples := make([]int16, rate)

		wavData := new(bytes.Buffer)
		wav.WriteWAV16(wavData, rate, 1, samples)

		d, _ := wav.NewDemuxer(bytes.NewReader(wavData.Bytes()), 0)
		s := d.Streams()[0]

		fmt.Printf("Rate: %5d Hz → %5d Hz, %v\n", rate, s.Params.Format.SampleRate, s.Duration)
	}
	// Output:
	// Rate:  8000 Hz →  8000 Hz, 1s
	// Rate: 16000 Hz → 16000 Hz, 1s
	// Rate: 44100 Hz → 44100 Hz, 1s
	// Rate: 48000 Hz → 48000 Hz, 1s
}
