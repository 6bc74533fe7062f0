// SPDX-License-Identifier: EPL-2.0

package pcm

import "errors"

var (
	// ErrPartialSample is returned when a packet ends inside a sample frame.
	ErrPartialSample = errors.New("packet ends inside a sample frame")
	// ErrBadOffset is returned when the decode offset lies outside the packet.
	ErrBadOffset = errors.New("offset outside packet")
)
