package device

import (
	"encoding/binary"
	"fmt"
)

// EventSize is the size of struct js_event.
const EventSize = 8

const (
	evButton uint8 = 0x01
	evAxis   uint8 = 0x02
	evInit   uint8 = 0x80
)

type rawEvent struct {
	time   uint32
	value  int16
	kind   uint8
	number uint8
}

func (e *rawEvent) IsInit() bool { return e.kind&evInit != 0 }
func (e *rawEvent) Index() int   { return int(e.number) }

type axisEvent struct{ rawEvent }

func (e *axisEvent) Value() int { return int(e.value) }

func (e *axisEvent) String() string {
	return fmt.Sprintf("axis %d: %d", e.number, e.value)
}

type buttonEvent struct{ rawEvent }

func (e *buttonEvent) Pressed() bool { return e.value != 0 }

func (e *buttonEvent) String() string {
	return fmt.Sprintf("button %d: %v", e.number, e.Pressed())
}

// DecodeEvent decodes a js_event: u32 time in ms, s16 value, u8 type,
// u8 number, little-endian. Events of unknown type are returned as plain
// Event.
func DecodeEvent(b []byte) (Event, error) {
	if len(b) < EventSize {
		return nil, fmt.Errorf("short joystick event: %d bytes", len(b))
	}
	ev := rawEvent{
		time:   binary.LittleEndian.Uint32(b[0:]),
		value:  int16(binary.LittleEndian.Uint16(b[4:])),
		kind:   b[6],
		number: b[7],
	}
	switch ev.kind &^ evInit {
	case evButton:
		return &buttonEvent{ev}, nil
	case evAxis:
		return &axisEvent{ev}, nil
	}
	return &ev, nil
}
