// SPDX-License-Identifier: EPL-2.0

package pipeline

import "errors"

var (
	// ErrAlreadyRun indicates a second call to Run
	ErrAlreadyRun = errors.New("pipeline already ran")

	// ErrBadConfig indicates a Config without a usable input or destination
	ErrBadConfig = errors.New("invalid pipeline configuration")

	// ErrZeroConsume indicates a decoder that returned without consuming input
	ErrZeroConsume = errors.New("decoder consumed no input")
)
