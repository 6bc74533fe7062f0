// SPDX-License-Identifier: EPL-2.0

package container

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/ik5/audxcode/audio"
)

type options struct {
	logger *slog.Logger
	client *http.Client
}

// Option tunes Open.
type Option func(*options)

// WithLogger sets the logger status lines go to. The default is
// slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithHTTPClient sets the client used for http and https sources.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.client = c }
}

// Input is an open container ready to be read. It is not safe for
// concurrent use.
type Input struct {
	Source string
	Format audio.ContainerFormat

	demux   audio.Demuxer
	file    *os.File
	temp    string
	streams []audio.StreamDescriptor
	closed  bool
	logger  *slog.Logger
}

func isURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// Open opens source, a file path or an http(s) URL, and detects its format
// by probing the leading bytes with every format of reg in registration
// order. Every failure wraps audio.ErrOpen.
func Open(ctx context.Context, source string, reg *audio.Registry, opts ...Option) (*Input, error) {
	o := options{logger: slog.Default(), client: http.DefaultClient}
	for _, opt := range opts {
		opt(&o)
	}

	var (
		f    *os.File
		temp string
		err  error
	)
	if isURL(source) {
		f, err = fetch(ctx, o.client, source)
		if f != nil {
			temp = f.Name()
		}
	} else {
		f, err = os.Open(source)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", audio.ErrOpen, err)
	}

	in, err := open(f, source, reg)
	if err != nil {
		f.Close()
		if temp != "" {
			os.Remove(temp)
		}
		return nil, err
	}

	in.file = f
	in.temp = temp
	in.logger = o.logger.With("component", "container", "source", source)
	in.logger.Debug("opened input",
		slog.String("format", in.Format.Name),
		slog.Int("streams", len(in.streams)))

	return in, nil
}

// OpenReader opens an already available seekable source. name is only used
// in messages. Closing the Input does not close r.
func OpenReader(r io.ReadSeeker, name string, reg *audio.Registry) (*Input, error) {
	in, err := open(r, name, reg)
	if err != nil {
		return nil, err
	}
	in.logger = slog.Default().With("component", "container", "source", name)

	return in, nil
}

// NewInput wraps a demuxer that was set up by other means. Close closes
// demux.
func NewInput(demux audio.Demuxer, name string) *Input {
	return &Input{
		Source:  name,
		Format:  audio.ContainerFormat{Name: demux.Info().Format, LongName: demux.Info().LongName},
		demux:   demux,
		streams: demux.Streams(),
		logger:  slog.Default().With("component", "container", "source", name),
	}
}

func open(r io.ReadSeeker, name string, reg *audio.Registry) (*Input, error) {
	header := make([]byte, audio.ProbeSize)
	n, err := io.ReadFull(r, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %s: %w", audio.ErrOpen, name, err)
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", audio.ErrOpen, name, err)
	}

	f, ok := reg.Probe(header[:n])
	if !ok {
		return nil, fmt.Errorf("%w: %s: %w", audio.ErrOpen, name, audio.ErrUnknownFormat)
	}

	demux, err := f.NewDemuxer(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %s as %s: %w", audio.ErrOpen, name, f.Name, err)
	}

	return &Input{
		Source:  name,
		Format:  f,
		demux:   demux,
		streams: demux.Streams(),
	}, nil
}

// Streams returns the stream descriptors in container order.
func (in *Input) Streams() []audio.StreamDescriptor { return in.streams }

func (in *Input) Info() audio.ContainerInfo { return in.demux.Info() }

// ReadPacket fills pkt with the next packet of any stream. It returns
// io.EOF at the end of the container and wraps audio.ErrRead on failures.
func (in *Input) ReadPacket(pkt *audio.Packet) error {
	if in.closed {
		return audio.ErrClosed
	}

	err := in.demux.ReadPacket(pkt)
	switch {
	case err == nil, errors.Is(err, io.EOF), errors.Is(err, audio.ErrRead):
		return err
	default:
		return fmt.Errorf("%w: %w", audio.ErrRead, err)
	}
}

// Close releases the demuxer and the underlying file. Only the first call
// does anything; later calls return audio.ErrClosed.
func (in *Input) Close() error {
	if in.closed {
		return audio.ErrClosed
	}
	in.closed = true

	var result *multierror.Error
	if err := in.demux.Close(); err != nil {
		result = multierror.Append(result, fmt.Errorf("demuxer: %w", err))
	}
	if in.file != nil {
		if err := in.file.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	if in.temp != "" {
		if err := os.Remove(in.temp); err != nil {
			result = multierror.Append(result, err)
		}
	}

	return result.ErrorOrNil()
}
