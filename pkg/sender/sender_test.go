package sender

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/nettest"

	"github.com/robotalks/vscp/pkg/vscp"
)

func receive(t *testing.T, conn net.PacketConn) vscp.Command {
	buf := make([]byte, 64)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	n, _, err := conn.ReadFrom(buf)
	require.NoError(t, err)
	cmd, err := vscp.Decode(buf[:n])
	require.NoError(t, err)
	return cmd
}

func TestSend(t *testing.T) {
	vehicle, err := nettest.NewLocalPacketListener("udp4")
	require.NoError(t, err)
	defer vehicle.Close()

	s, err := New()
	require.NoError(t, err)
	defer s.Close()
	require.Equal(t, ErrNoTarget, s.Send(vscp.Neutral))

	require.NoError(t, s.SetTarget(vehicle.LocalAddr().String()))
	cmd := vscp.Command{ForwardBackward: 0.25, LeftRight: -1}
	require.NoError(t, s.Send(cmd))
	require.Equal(t, cmd, receive(t, vehicle))
}

func TestStream(t *testing.T) {
	vehicle, err := nettest.NewLocalPacketListener("udp4")
	require.NoError(t, err)
	defer vehicle.Close()

	s, err := Dial(vehicle.LocalAddr().String())
	require.NoError(t, err)
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cmd := vscp.Command{ForwardBackward: 0.5}
	done := make(chan error, 1)
	go func() {
		done <- s.Stream(ctx, time.Millisecond, func() vscp.Command { return cmd })
	}()

	for i := 0; i < 3; i++ {
		require.Equal(t, cmd, receive(t, vehicle))
	}
	cancel()
	require.Equal(t, context.Canceled, <-done)

	// the last frame is neutral.
	last := cmd
	require.NoError(t, vehicle.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	buf := make([]byte, 64)
	for {
		n, _, err := vehicle.ReadFrom(buf)
		if err != nil {
			break
		}
		last, err = vscp.Decode(buf[:n])
		require.NoError(t, err)
	}
	require.True(t, last.IsNeutral())
}
