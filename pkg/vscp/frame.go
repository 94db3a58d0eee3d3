package vscp

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Magic prefixes every frame.
const Magic uint32 = 0xAABBCCDD

// FrameSize is the number of bytes in an encoded frame.
const FrameSize = 12

const (
	fieldMagic           = "magic"
	fieldForwardBackward = "forward_backward"
	fieldLeftRight       = "left_right"
)

// Command is the decoded control input. Both axes are conceptually in
// [-1, 1]; the codec neither clamps nor rejects other values.
type Command struct {
	ForwardBackward float32
	LeftRight       float32
}

// Neutral is the idle command.
var Neutral = Command{}

// IsNeutral indicates both axes are zero.
func (c Command) IsNeutral() bool {
	return c.ForwardBackward == 0 && c.LeftRight == 0
}

// String implements fmt.Stringer.
func (c Command) String() string {
	return fmt.Sprintf("fb=%.3f lr=%.3f", c.ForwardBackward, c.LeftRight)
}

// Decode decodes one frame. Only the magic is validated.
func Decode(b []byte) (Command, error) {
	var cmd Command
	if len(b) < 4 {
		return cmd, &FrameError{Field: fieldMagic, Len: len(b), Err: ErrTruncated}
	}
	if binary.LittleEndian.Uint32(b) != Magic {
		return cmd, &FrameError{Field: fieldMagic, Len: len(b), Err: ErrInvalidMagic}
	}
	if len(b) < 8 {
		return cmd, &FrameError{Field: fieldForwardBackward, Len: len(b), Err: ErrTruncated}
	}
	if len(b) < FrameSize {
		return cmd, &FrameError{Field: fieldLeftRight, Len: len(b), Err: ErrTruncated}
	}
	cmd.ForwardBackward = math.Float32frombits(binary.LittleEndian.Uint32(b[4:]))
	cmd.LeftRight = math.Float32frombits(binary.LittleEndian.Uint32(b[8:]))
	return cmd, nil
}

// Bytes returns the encoded frame.
func (c Command) Bytes() []byte {
	b := make([]byte, FrameSize)
	binary.LittleEndian.PutUint32(b, Magic)
	binary.LittleEndian.PutUint32(b[4:], math.Float32bits(c.ForwardBackward))
	binary.LittleEndian.PutUint32(b[8:], math.Float32bits(c.LeftRight))
	return b
}

// WriteTo writes the encoded frame in a single Write, so a datagram
// writer emits exactly one frame per call.
func (c Command) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(c.Bytes())
	return int64(n), err
}
