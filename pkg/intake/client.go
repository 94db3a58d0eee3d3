// Package intake drains command frames from a non-blocking datagram source.
package intake

import (
	"errors"
	"net"

	"github.com/golang/glog"

	"github.com/robotalks/vscp/pkg/vscp"
)

// MaxDatagramSize is the receive buffer size. Datagrams longer than this
// are truncated by the socket, which is harmless as only the first
// vscp.FrameSize bytes are decoded.
const MaxDatagramSize = 512

// ErrWouldBlock is returned by a Source when no datagram is ready.
var ErrWouldBlock = errors.New("would block")

// Source is a connectionless datagram source. Recv must never block:
// it returns ErrWouldBlock immediately when nothing is queued.
type Source interface {
	Recv(buf []byte) (n int, from net.Addr, err error)
}

// Stats are cumulative counters of a Client.
type Stats struct {
	Received uint64
	Valid    uint64
	Rejected uint64
	IOErrors uint64
}

// Client reads commands from a Source.
type Client struct {
	Source Source
	// Peer, if set, restricts accepted datagrams to this source IP.
	Peer net.IP

	buf   []byte
	stats Stats
}

// NewClient creates a Client.
func NewClient(src Source) *Client {
	return &Client{Source: src, buf: make([]byte, MaxDatagramSize)}
}

// Stats returns the counters accumulated so far.
func (c *Client) Stats() Stats {
	return c.stats
}

// Poll drains every datagram currently queued and returns the most
// recent valid command (nil if none) with the number of valid frames.
// Older commands within the same drain are discarded.
func (c *Client) Poll() (latest *vscp.Command, count int) {
	if c.buf == nil {
		c.buf = make([]byte, MaxDatagramSize)
	}
	for {
		n, from, err := c.Source.Recv(c.buf)
		if err == ErrWouldBlock {
			return
		}
		if err != nil {
			c.stats.IOErrors++
			glog.Errorf("intake: receive error: %v", err)
			return
		}
		c.stats.Received++
		if !c.accept(from) {
			c.stats.Rejected++
			glog.V(2).Infof("intake: dropped datagram from %v", from)
			continue
		}
		cmd, err := vscp.Decode(c.buf[:n])
		if err != nil {
			c.stats.Rejected++
			glog.Warningf("intake: bad frame from %v: %v", from, err)
			continue
		}
		c.stats.Valid++
		count++
		latest = &cmd
		glog.V(4).Infof("intake: %s from %v", cmd, from)
	}
}

func (c *Client) accept(from net.Addr) bool {
	if c.Peer == nil {
		return true
	}
	udp, ok := from.(*net.UDPAddr)
	return ok && udp.IP.Equal(c.Peer)
}
