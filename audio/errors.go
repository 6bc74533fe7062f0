// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

// Pipeline stage errors. Stage failures are joined with their cause, so both
// errors.Is(err, ErrDecode) and errors.Is(err, cause) hold.
var (
	ErrOpen             = errors.New("cannot open container")
	ErrNoMatchingStream = errors.New("no matching stream with a usable decoder")
	ErrRead             = errors.New("read error")
	ErrDecode           = errors.New("decode error")
	ErrWrite            = errors.New("write error")
)

var (
	ErrClosed           = errors.New("already closed")
	ErrNotOpen          = errors.New("codec not opened")
	ErrNoDecoder        = errors.New("no decoder for stream")
	ErrMuxerState       = errors.New("invalid muxer state")
	ErrUnsupportedCodec = errors.New("unsupported codec")
	ErrUnknownFormat    = errors.New("unknown container format")
	ErrInvalidFormat    = errors.New("invalid audio format")
)
