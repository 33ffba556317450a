package driver

import "errors"

var (
	// ErrFocusNotSupported is returned by Focus when the hardware can't focus.
	ErrFocusNotSupported = errors.New("driver: focus is not supported")
	// ErrInvalidState is returned when a driver is used out of order, for
	// example recording from a closed driver.
	ErrInvalidState = errors.New("driver: invalid state")

	errNotVideoRecorder = errors.New("adapter has to be a VideoRecorder")
)
