// SPDX-License-Identifier: EPL-2.0

package mp3

import "errors"

var (
	// ErrNotMP3 indicates no MPEG audio frame could be found
	ErrNotMP3 = errors.New("no MPEG audio frame found")

	// ErrBadHeader indicates four bytes that are not a usable Layer III header
	ErrBadHeader = errors.New("invalid MPEG audio frame header")

	// ErrUnsupportedLayer indicates a Layer I or Layer II stream
	ErrUnsupportedLayer = errors.New("only MPEG Layer III is supported")

	// ErrFreeFormat indicates a free-format bitrate, which has no fixed frame length
	ErrFreeFormat = errors.New("free-format bitrate is not supported")

	// ErrPartialFrame indicates a packet that ends inside a frame
	ErrPartialFrame = errors.New("packet ends inside a frame")
)
