// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"errors"
	"fmt"
	"testing"

	"github.com/ik5/audxcode/audio"
)

func TestErrors_Messages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"ErrNotWavFile", ErrNotWavFile, "not a WAV file"},
		{"ErrOnlyPCM16bitSupported", ErrOnlyPCM16bitSupported, "only PCM 16-bit supported"},
		{"ErrUnsupportedWavChunks", ErrUnsupportedWavChunks, "unsupported WAV chunks"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if tt.err.Error() != tt.want {
				t.Errorf("%s.Error() = %q, want %q", tt.name, tt.err.Error(), tt.want)
			}
		})
	}
}

func TestErrors_JoinWithStage(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("%w: %w", audio.ErrOpen, ErrNotWavFile)

	if !errors.Is(err, audio.ErrOpen) {
		t.Error("errors.Is(err, audio.ErrOpen) = false, want true")
	}
	if !errors.Is(err, ErrNotWavFile) {
		t.Error("errors.Is(err, ErrNotWavFile) = false, want true")
	}
	if errors.Is(err, ErrUnsupportedWavChunks) {
		t.Error("errors.Is(err, ErrUnsupportedWavChunks) = true, want false")
	}
}
