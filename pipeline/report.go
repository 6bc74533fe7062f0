// SPDX-License-Identifier: EPL-2.0

package pipeline

import (
	"time"

	"github.com/ik5/audxcode/audio"
)

// MaxRecordedErrors is how many recoverable decode errors a Report keeps.
const MaxRecordedErrors = 5

// Report summarizes one run. Frame counts are samples per channel.
type Report struct {
	RunID  string
	Input  audio.ContainerInfo
	Stream audio.StreamDescriptor
	Output audio.CodecParams

	PacketsRead     int
	PacketsSelected int
	BytesConsumed   int64

	DecodeErrors int
	Errors       []error
	// FlushErr is the error that cut the decoder flush short, if any.
	FlushErr error

	BatchesDecoded int
	BatchesFlushed int
	FramesDecoded  int64

	PacketsEncoded int
	PacketsFlushed int
	PacketsWritten int
	BytesWritten   int64

	FramesToSink int64

	Elapsed time.Duration
}

func (r *Report) decodeError(err error) {
	r.DecodeErrors++
	if len(r.Errors) < MaxRecordedErrors {
		r.Errors = append(r.Errors, err)
	}
}
