// Package sender transmits command frames to a vehicle.
package sender

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/vscp/pkg/vscp"
)

// DefaultInterval is the resend rate of Stream, well within the
// vehicle staleness threshold.
const DefaultInterval = 20 * time.Millisecond

// ErrNoTarget is returned when sending before a target is set.
var ErrNoTarget = errors.New("no target")

// Sender sends frames from an unconnected UDP socket so the target can
// change at any time.
type Sender struct {
	Conn net.PacketConn

	lock   sync.RWMutex
	target net.Addr
}

// New creates a Sender on an ephemeral local port.
func New() (*Sender, error) {
	conn, err := net.ListenPacket("udp", ":0")
	if err != nil {
		return nil, err
	}
	return &Sender{Conn: conn}, nil
}

// Dial creates a Sender targeting addr.
func Dial(addr string) (*Sender, error) {
	s, err := New()
	if err != nil {
		return nil, err
	}
	if err := s.SetTarget(addr); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// SetTarget resolves and sets the destination.
func (s *Sender) SetTarget(addr string) error {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return err
	}
	s.lock.Lock()
	s.target = udpAddr
	s.lock.Unlock()
	return nil
}

// Target returns the destination, nil if unset.
func (s *Sender) Target() net.Addr {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.target
}

// Close implements io.Closer.
func (s *Sender) Close() error {
	return s.Conn.Close()
}

// Send sends one frame.
func (s *Sender) Send(cmd vscp.Command) error {
	target := s.Target()
	if target == nil {
		return ErrNoTarget
	}
	_, err := s.Conn.WriteTo(cmd.Bytes(), target)
	return err
}

// Stream sends source() every interval until ctx is done, then sends a
// final neutral frame so the vehicle stops without waiting for its
// fail-safe. Send errors are logged and streaming continues.
func (s *Sender) Stream(ctx context.Context, interval time.Duration, source func() vscp.Command) error {
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if err := s.Send(source()); err != nil && err != ErrNoTarget {
			glog.Warningf("send: %v", err)
		}
		select {
		case <-ctx.Done():
			if err := s.Send(vscp.Neutral); err != nil && err != ErrNoTarget {
				glog.Warningf("send neutral: %v", err)
			}
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
