// SPDX-License-Identifier: EPL-2.0

package pipeline

// State is a step of a pipeline run. States only move forward.
type State int32

const (
	StateIdle State = iota
	StateStreamsDiscovered
	StateDecoderOpen
	StateEncoderOpen
	StateWriterOpen
	StateRunning
	StateDecoderFlushing
	StateEncoderFlushing
	StateClosed
)

var stateNames = [...]string{
	StateIdle:              "idle",
	StateStreamsDiscovered: "streams-discovered",
	StateDecoderOpen:       "decoder-open",
	StateEncoderOpen:       "encoder-open",
	StateWriterOpen:        "writer-open",
	StateRunning:           "running",
	StateDecoderFlushing:   "decoder-flushing",
	StateEncoderFlushing:   "encoder-flushing",
	StateClosed:            "closed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}
