// SPDX-License-Identifier: EPL-2.0

package vorbis

import "errors"

var (
	// ErrNotOgg indicates input that does not start with an Ogg page
	ErrNotOgg = errors.New("not an Ogg stream")

	// ErrBadPage indicates an Ogg page with an unknown version or a truncated body
	ErrBadPage = errors.New("malformed Ogg page")

	// ErrBadChecksum indicates an Ogg page whose CRC does not match its contents
	ErrBadChecksum = errors.New("Ogg page checksum mismatch")

	// ErrBadHeader indicates a Vorbis header packet that cannot be parsed
	ErrBadHeader = errors.New("invalid Vorbis header")

	// ErrMissingHeaders indicates a stream that ended before its three Vorbis headers
	ErrMissingHeaders = errors.New("missing Vorbis headers")
)
