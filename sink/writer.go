// SPDX-License-Identifier: EPL-2.0

package sink

import (
	"bufio"
	"fmt"
	"io"
	"sync"

	"github.com/ik5/audxcode/audio"
)

// Writer is a sink that writes packed samples to an io.Writer, such as
// stdout piped into a player. It never closes the underlying writer.
type Writer struct {
	format audio.Format

	mtx    sync.Mutex
	bw     *bufio.Writer
	closed bool
}

// NewWriter returns a sink accepting samples in format.
func NewWriter(w io.Writer, format audio.Format) (*Writer, error) {
	if err := format.Validate(); err != nil {
		return nil, err
	}

	return &Writer{format: format, bw: bufio.NewWriter(w)}, nil
}

func (w *Writer) Format() audio.Format { return w.format }

func (w *Writer) Write(p []byte) error {
	w.mtx.Lock()
	defer w.mtx.Unlock()

	if w.closed {
		return audio.ErrClosed
	}
	if _, err := w.bw.Write(p); err != nil {
		return fmt.Errorf("sink write: %w", err)
	}

	return nil
}

// Close flushes buffered samples.
func (w *Writer) Close() error {
	w.mtx.Lock()
	defer w.mtx.Unlock()

	if w.closed {
		return audio.ErrClosed
	}
	w.closed = true

	if err := w.bw.Flush(); err != nil {
		return fmt.Errorf("sink flush: %w", err)
	}

	return nil
}
