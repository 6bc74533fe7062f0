// SPDX-License-Identifier: EPL-2.0

package pipeline

// Observer receives run events as they happen. Calls come from the
// goroutine running the pipeline.
type Observer interface {
	StateChanged(runID string, s State)
	PacketRead(selected bool, size int)
	DecodeError(err error)
	BatchDecoded(frames int, flush bool)
	PacketWritten(size int)
	RunFinished(r Report, err error)
}

// NopObserver ignores every event. Embed it to implement part of Observer.
type NopObserver struct{}

func (NopObserver) StateChanged(string, State) {}
func (NopObserver) PacketRead(bool, int) {}
func (NopObserver) DecodeError(error) {}
func (NopObserver) BatchDecoded(int, bool) {}
func (NopObserver) PacketWritten(int) {}
func (NopObserver) RunFinished(Report, error) {}
