// SPDX-License-Identifier: EPL-2.0

package pipeline

import (
	"fmt"

	"github.com/ik5/audxcode/audio"
)

// SelectStream returns the first stream of kind that has a decoder.
// Streams without one are skipped, so an Opus track ahead of a Vorbis track
// selects the Vorbis track.
func SelectStream(streams []audio.StreamDescriptor, kind audio.MediaKind) (audio.StreamDescriptor, error) {
	for _, s := range streams {
		if s.Kind == kind && s.HasDecoder() {
			return s, nil
		}
	}

	return audio.StreamDescriptor{}, fmt.Errorf("%w: %s among %d streams", audio.ErrNoMatchingStream, kind, len(streams))
}
