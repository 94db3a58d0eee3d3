// Package device reads events from Linux joystick devices (/dev/input/jsN).
package device

import (
	"fmt"
	"io"
)

// AxisMax is the magnitude of a fully deflected axis.
const AxisMax = 32767

// Event is an axis or button event.
type Event interface {
	// IsInit indicates the event reports the initial state after open.
	IsInit() bool
	// Index is the axis or button number.
	Index() int
}

// AxisEvent is an axis position in [-AxisMax, AxisMax].
type AxisEvent interface {
	Event
	Value() int
}

// ButtonEvent is a button press or release.
type ButtonEvent interface {
	Event
	Pressed() bool
}

// Device is an opened joystick.
type Device interface {
	io.Closer
	Index() int
	Name() string
	AxisCount() int
	ButtonCount() int
	// ReadEvent blocks until the next event.
	ReadEvent() (Event, error)
}

// Path returns the device path of index.
func Path(index int) string {
	return fmt.Sprintf("/dev/input/js%d", index)
}
