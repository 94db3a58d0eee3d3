//go:build !linux

package device

import "errors"

// ErrUnsupported is returned on platforms without joystick support.
var ErrUnsupported = errors.New("joystick devices are only supported on linux")

// Open is not supported on this platform.
func Open(index int) (Device, error) {
	return nil, ErrUnsupported
}

// Detect is not supported on this platform.
func Detect(startIndex int) (Device, error) {
	return nil, ErrUnsupported
}
