package vscp

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

// encodeFrame builds a frame with encoding/binary, independent of Bytes.
func encodeFrame(t *testing.T, magic uint32, fb, lr float32, extra ...byte) []byte {
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, struct {
		Magic  uint32
		FB, LR float32
	}{magic, fb, lr}))
	buf.Write(extra)
	return buf.Bytes()
}

func TestDecode(t *testing.T) {
	nan := float32(math.NaN())
	testCases := []struct {
		name   string
		fb, lr float32
		extra  []byte
	}{
		{"neutral", 0, 0, nil},
		{"full forward", 1, 0, nil},
		{"full reverse", -1, 0, nil},
		{"full left", 0, -1, nil},
		{"mixed", 0.5, -0.5, nil},
		{"nan", nan, nan, nil},
		{"infinity", float32(math.Inf(1)), float32(math.Inf(-1)), nil},
		{"out of range", 3.5, -42, nil},
		{"trailing bytes", 1, -1, []byte{1, 2, 3, 4}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cmd, err := Decode(encodeFrame(t, Magic, tc.fb, tc.lr, tc.extra...))
			require.NoError(t, err)
			require.Equal(t, math.Float32bits(tc.fb), math.Float32bits(cmd.ForwardBackward))
			require.Equal(t, math.Float32bits(tc.lr), math.Float32bits(cmd.LeftRight))
		})
	}
}

func TestDecodeInvalidMagic(t *testing.T) {
	for _, magic := range []uint32{0, 0xDDCCBBAA, Magic + 1} {
		frame := encodeFrame(t, magic, 1, 1, 0, 0, 0, 0)
		for n := 0; n <= len(frame); n++ {
			_, err := Decode(frame[:n])
			require.Error(t, err)
			if n >= 4 {
				require.True(t, errors.Is(err, ErrInvalidMagic), "len %d: %v", n, err)
			} else {
				require.True(t, errors.Is(err, ErrTruncated), "len %d: %v", n, err)
			}
		}
	}
	_, err := Decode(nil)
	require.Error(t, err)
}

func TestDecodeTruncated(t *testing.T) {
	frame := encodeFrame(t, Magic, 0.25, 0.75)
	testCases := []struct {
		len   int
		field string
	}{
		{0, fieldMagic},
		{3, fieldMagic},
		{4, fieldForwardBackward},
		{7, fieldForwardBackward},
		{8, fieldLeftRight},
		{11, fieldLeftRight},
	}
	for _, tc := range testCases {
		cmd, err := Decode(frame[:tc.len])
		require.True(t, errors.Is(err, ErrTruncated), "len %d: %v", tc.len, err)
		var fe *FrameError
		require.True(t, errors.As(err, &fe))
		require.Equal(t, tc.field, fe.Field)
		require.Equal(t, tc.len, fe.Len)
		require.Equal(t, Neutral, cmd)
	}
}

func TestCommandBytes(t *testing.T) {
	cmd := Command{ForwardBackward: 0.5, LeftRight: -0.5}
	require.Equal(t, encodeFrame(t, Magic, 0.5, -0.5), cmd.Bytes())

	var buf bytes.Buffer
	n, err := cmd.WriteTo(&buf)
	require.NoError(t, err)
	require.Equal(t, int64(FrameSize), n)

	decoded, err := Decode(buf.Bytes())
	require.NoError(t, err)
	require.Equal(t, cmd, decoded)
	require.False(t, decoded.IsNeutral())
	require.True(t, Neutral.IsNeutral())
}
