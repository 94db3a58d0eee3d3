package intake

import (
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/vscp/pkg/vscp"
)

type datagram struct {
	data []byte
	from net.Addr
	err  error
}

type queueSource struct {
	queue []datagram
	calls int
}

func (s *queueSource) Recv(buf []byte) (int, net.Addr, error) {
	s.calls++
	if len(s.queue) == 0 {
		return 0, nil, ErrWouldBlock
	}
	d := s.queue[0]
	s.queue = s.queue[1:]
	if d.err != nil {
		return 0, nil, d.err
	}
	return copy(buf, d.data), d.from, nil
}

var testPeer = &net.UDPAddr{IP: net.IPv4(192, 168, 1, 10), Port: 40000}

func valid(fb, lr float32) datagram {
	return datagram{data: vscp.Command{ForwardBackward: fb, LeftRight: lr}.Bytes(), from: testPeer}
}

func invalid() datagram {
	return datagram{data: []byte{0, 0, 0, 0, 1, 2, 3, 4, 5, 6, 7, 8}, from: testPeer}
}

func TestPoll(t *testing.T) {
	testCases := []struct {
		name   string
		queue  []datagram
		expect *vscp.Command
		count  int
	}{
		{
			name: "empty",
		},
		{
			name:   "single",
			queue:  []datagram{valid(0.5, -0.5)},
			expect: &vscp.Command{ForwardBackward: 0.5, LeftRight: -0.5},
			count:  1,
		},
		{
			name:   "latest wins",
			queue:  []datagram{valid(0.1, 0), valid(0.2, 0), valid(0.3, 0.3)},
			expect: &vscp.Command{ForwardBackward: 0.3, LeftRight: 0.3},
			count:  3,
		},
		{
			name:   "last invalid keeps previous",
			queue:  []datagram{valid(0.1, 0), valid(0.2, 0.2), invalid()},
			expect: &vscp.Command{ForwardBackward: 0.2, LeftRight: 0.2},
			count:  2,
		},
		{
			name:  "only invalid",
			queue: []datagram{invalid(), {data: []byte{0xdd, 0xcc}, from: testPeer}},
		},
		{
			name:   "truncated after magic",
			queue:  []datagram{valid(1, 1), {data: vscp.Command{}.Bytes()[:8], from: testPeer}},
			expect: &vscp.Command{ForwardBackward: 1, LeftRight: 1},
			count:  1,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			src := &queueSource{queue: tc.queue}
			c := NewClient(src)
			latest, count := c.Poll()
			require.Equal(t, tc.expect, latest)
			require.Equal(t, tc.count, count)
			require.Empty(t, src.queue)
			require.Equal(t, len(tc.queue)+1, src.calls)
		})
	}
}

func TestPollIOErrorEndsDrain(t *testing.T) {
	src := &queueSource{queue: []datagram{
		valid(0.4, 0),
		{err: errors.New("connection refused")},
		valid(0.9, 0),
	}}
	c := NewClient(src)

	latest, count := c.Poll()
	require.Equal(t, &vscp.Command{ForwardBackward: 0.4}, latest)
	require.Equal(t, 1, count)

	latest, count = c.Poll()
	require.Equal(t, &vscp.Command{ForwardBackward: 0.9}, latest)
	require.Equal(t, 1, count)

	require.Equal(t, Stats{Received: 2, Valid: 2, IOErrors: 1}, c.Stats())
}

func TestPollPeerFilter(t *testing.T) {
	other := valid(-1, -1)
	other.from = &net.UDPAddr{IP: net.IPv4(10, 0, 0, 1), Port: 1}
	src := &queueSource{queue: []datagram{valid(0.5, 0.5), other}}
	c := NewClient(src)
	c.Peer = testPeer.IP

	latest, count := c.Poll()
	require.Equal(t, &vscp.Command{ForwardBackward: 0.5, LeftRight: 0.5}, latest)
	require.Equal(t, 1, count)
	require.Equal(t, Stats{Received: 2, Valid: 1, Rejected: 1}, c.Stats())
}
