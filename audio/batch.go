// SPDX-License-Identifier: EPL-2.0

package audio

// SampleBatch is a buffer of uncompressed, interleaved samples normalized to
// [-1, 1]. Complete reports whether the batch currently holds a fully decoded
// (or fully ready) set of samples.
type SampleBatch struct {
	Format   Format
	Data     []float32
	PTS      int64
	Complete bool
}

// NewSampleBatch allocates a batch able to hold frames samples per channel
// without growing.
func NewSampleBatch(f Format, frames int) *SampleBatch {
	return &SampleBatch{
		Format: f,
		Data:   make([]float32, 0, frames*max(f.Channels, 1)),
		PTS:    NoPTS,
	}
}

// Frames returns the number of samples per channel.
func (b *SampleBatch) Frames() int {
	if b.Format.Channels <= 0 {
		return 0
	}

	return len(b.Data) / b.Format.Channels
}

// Reset empties the batch and clears Complete, keeping capacity.
func (b *SampleBatch) Reset() {
	b.Data = b.Data[:0]
	b.PTS = NoPTS
	b.Complete = false
}

// Resize sets the length of Data to n samples, reallocating only when the
// capacity is too small, and returns it.
func (b *SampleBatch) Resize(n int) []float32 {
	if cap(b.Data) < n {
		b.Data = make([]float32, n)
	}
	b.Data = b.Data[:n]

	return b.Data
}

// Clone returns a deep copy of the batch.
func (b *SampleBatch) Clone() *SampleBatch {
	c := *b
	c.Data = append([]float32(nil), b.Data...)

	return &c
}
