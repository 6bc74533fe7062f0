// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"encoding/binary"
	"math"

	"github.com/ik5/audxcode/utils"
)

// Converter reformats sample batches to a fixed target layout. It keeps no
// state between calls besides the target, so every call is a pure function
// of its input.
//
// Channels are remapped as follows: mono input is duplicated to every output
// channel, mono output averages all inputs, extra output channels repeat the
// last input channel, and surplus input channels are averaged into the last
// output channel. Rate conversion uses Catmull-Rom interpolation inside the
// batch with the edges clamped.
type Converter struct {
	target Format
}

func NewConverter(target Format) (*Converter, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}

	return &Converter{target: target}, nil
}

func (c *Converter) Target() Format { return c.target }

// OutputFrames returns how many frames a batch of inFrames at inRate becomes.
func (c *Converter) OutputFrames(inFrames, inRate int) int {
	if inRate == c.target.SampleRate || inRate <= 0 {
		return inFrames
	}

	return int(math.Round(float64(inFrames) * float64(c.target.SampleRate) / float64(inRate)))
}

// ConvertBatch converts in into dst, allocating dst when it is nil.
func (c *Converter) ConvertBatch(dst *SampleBatch, in *SampleBatch) *SampleBatch {
	if dst == nil {
		dst = &SampleBatch{}
	}

	frames := c.OutputFrames(in.Frames(), in.Format.SampleRate)
	data := dst.Resize(frames * c.target.Channels)
	c.render(in, frames, func(i int, v float32) { data[i] = v })

	dst.Format = c.target
	dst.Complete = in.Complete
	dst.PTS = c.scalePTS(in)

	return dst
}

// ConvertBytes renders in as packed little-endian samples in the target
// representation, reusing dst when it is large enough.
func (c *Converter) ConvertBytes(dst []byte, in *SampleBatch) []byte {
	frames := c.OutputFrames(in.Frames(), in.Format.SampleRate)
	size := c.target.SampleFormat.BytesPerSample()
	n := frames * c.target.Channels * size

	if cap(dst) < n {
		dst = make([]byte, n)
	}
	dst = dst[:n]

	switch c.target.SampleFormat {
	case SampleF32:
		c.render(in, frames, func(i int, v float32) {
			binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(v))
		})
	default:
		c.render(in, frames, func(i int, v float32) {
			binary.LittleEndian.PutUint16(dst[i*2:], uint16(utils.Float32ToInt16(v)))
		})
	}

	return dst
}

func (c *Converter) scalePTS(in *SampleBatch) int64 {
	if in.PTS == NoPTS || in.Format.SampleRate <= 0 || in.Format.SampleRate == c.target.SampleRate {
		return in.PTS
	}

	return in.PTS * int64(c.target.SampleRate) / int64(in.Format.SampleRate)
}

// render produces frames output frames and hands each interleaved sample to
// emit along with its index.
func (c *Converter) render(in *SampleBatch, frames int, emit func(i int, v float32)) {
	inFrames := in.Frames()
	if inFrames == 0 {
		return
	}

	outCh := c.target.Channels

	if frames == inFrames {
		for f := range frames {
			for ch := range outCh {
				emit(f*outCh+ch, clamp(mix(in, f, ch, outCh)))
			}
		}
		return
	}

	ratio := float64(inFrames) / float64(frames)
	last := inFrames - 1

	for f := range frames {
		pos := float64(f) * ratio
		base := int(pos)
		alpha := float32(pos - float64(base))

		i0 := max(base-1, 0)
		i1 := min(base, last)
		i2 := min(base+1, last)
		i3 := min(base+2, last)

		for ch := range outCh {
			v := utils.CatmullRom(
				mix(in, i0, ch, outCh),
				mix(in, i1, ch, outCh),
				mix(in, i2, ch, outCh),
				mix(in, i3, ch, outCh),
				alpha,
			)
			emit(f*outCh+ch, clamp(v))
		}
	}
}

// mix returns the value of output channel ch for input frame f.
func mix(in *SampleBatch, f, ch, outCh int) float32 {
	inCh := in.Format.Channels
	frame := in.Data[f*inCh : f*inCh+inCh]

	switch {
	case inCh == outCh:
		return frame[ch]
	case inCh == 1:
		return frame[0]
	case outCh == 1:
		return average(frame)
	case outCh > inCh:
		return frame[min(ch, inCh-1)]
	case ch < outCh-1:
		return frame[ch]
	default:
		return average(frame[outCh-1:])
	}
}

func average(s []float32) float32 {
	switch len(s) {
	case 2:
		return (s[0] + s[1]) * 0.5
	case 4:
		return (s[0] + s[1] + s[2] + s[3]) * 0.25
	}

	var sum float32
	for _, v := range s {
		sum += v
	}

	return sum / float32(len(s))
}

func clamp(v float32) float32 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}

	return v
}
