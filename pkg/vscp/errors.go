package vscp

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidMagic indicates the frame does not start with Magic.
	ErrInvalidMagic = errors.New("invalid magic")
	// ErrTruncated indicates the frame ended before a field was complete.
	ErrTruncated = errors.New("truncated frame")
)

// FrameError describes why a frame was rejected.
type FrameError struct {
	// Field is the field being decoded when decoding failed.
	Field string
	// Len is the length of the rejected frame.
	Len int
	Err error
}

// Error implements error.
func (e *FrameError) Error() string {
	return fmt.Sprintf("%v at %s (%d bytes)", e.Err, e.Field, e.Len)
}

// Unwrap returns ErrInvalidMagic or ErrTruncated.
func (e *FrameError) Unwrap() error {
	return e.Err
}
