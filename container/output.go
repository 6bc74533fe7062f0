// SPDX-License-Identifier: EPL-2.0

package container

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-multierror"

	"github.com/ik5/audxcode/audio"
)

type outputState int

const (
	stateCreated outputState = iota
	stateHeader
	stateClosed
)

// Output writes one container. Calls must follow AddStream, WriteHeader,
// WritePacket, Close.
type Output struct {
	Path   string
	Format audio.ContainerFormat

	mux     audio.Muxer
	file    *os.File
	state   outputState
	streams int
}

// Create opens path for the container format registered as formatName.
// Every failure wraps audio.ErrOpen.
func Create(path, formatName string, reg *audio.Registry) (*Output, error) {
	f, ok := reg.Get(formatName)
	if !ok {
		return nil, fmt.Errorf("%w: %q: %w", audio.ErrOpen, formatName, audio.ErrUnknownFormat)
	}
	if f.NewMuxer == nil {
		return nil, fmt.Errorf("%w: %s is read-only: %w", audio.ErrOpen, f.Name, audio.ErrUnsupportedCodec)
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", audio.ErrOpen, err)
	}

	out, err := newOutput(file, path, f)
	if err != nil {
		file.Close()
		os.Remove(path)
		return nil, err
	}
	out.file = file

	return out, nil
}

// NewOutput writes the named container format to w. Closing the Output
// does not close w.
func NewOutput(w io.WriteSeeker, formatName string, reg *audio.Registry) (*Output, error) {
	f, ok := reg.Get(formatName)
	if !ok || f.NewMuxer == nil {
		return nil, fmt.Errorf("%w: %q: %w", audio.ErrOpen, formatName, audio.ErrUnknownFormat)
	}

	return newOutput(w, formatName, f)
}

func newOutput(w io.WriteSeeker, name string, f audio.ContainerFormat) (*Output, error) {
	mux, err := f.NewMuxer(w)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", audio.ErrOpen, name, err)
	}

	return &Output{Path: name, Format: f, mux: mux}, nil
}

// AddStream declares a stream and returns its index. It fails with
// audio.ErrMuxerState once the header was written.
func (o *Output) AddStream(params audio.CodecParams, metadata map[string]string) (int, error) {
	switch o.state {
	case stateClosed:
		return 0, audio.ErrClosed
	case stateHeader:
		return 0, fmt.Errorf("%w: stream added after header", audio.ErrMuxerState)
	}

	idx, err := o.mux.AddStream(params, metadata)
	if err != nil {
		return 0, err
	}
	o.streams++

	return idx, nil
}

func (o *Output) WriteHeader() error {
	switch {
	case o.state == stateClosed:
		return audio.ErrClosed
	case o.state == stateHeader:
		return fmt.Errorf("%w: header already written", audio.ErrMuxerState)
	case o.streams == 0:
		return fmt.Errorf("%w: no streams", audio.ErrMuxerState)
	}

	if err := o.mux.WriteHeader(); err != nil {
		return fmt.Errorf("%w: header: %w", audio.ErrWrite, err)
	}
	o.state = stateHeader

	return nil
}

// WritePacket hands pkt to the muxer. Failures wrap audio.ErrWrite.
func (o *Output) WritePacket(pkt *audio.Packet, interleave bool) error {
	switch o.state {
	case stateClosed:
		return audio.ErrClosed
	case stateCreated:
		return fmt.Errorf("%w: packet before header", audio.ErrMuxerState)
	}

	if err := o.mux.WritePacket(pkt, interleave); err != nil {
		if errors.Is(err, audio.ErrWrite) {
			return err
		}
		return fmt.Errorf("%w: %w", audio.ErrWrite, err)
	}

	return nil
}

// Close finalizes the container and releases the file. Closing after
// AddStream but before WriteHeader is reported as audio.ErrMuxerState, with
// the file released all the same. Later calls return audio.ErrClosed.
func (o *Output) Close() error {
	if o.state == stateClosed {
		return audio.ErrClosed
	}
	prev := o.state
	o.state = stateClosed

	var result *multierror.Error
	switch {
	case prev == stateHeader:
		if err := o.mux.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("muxer: %w", err))
		}
	case o.streams > 0:
		result = multierror.Append(result, fmt.Errorf("%w: closed before header", audio.ErrMuxerState))
	}

	if o.file != nil {
		if err := o.file.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}

	return result.ErrorOrNil()
}
