//go:build !linux

package intake

import (
	"errors"
	"net"
)

// ErrUnsupported is returned by ListenUDP on platforms without
// non-blocking raw socket reads.
var ErrUnsupported = errors.New("non-blocking UDP intake is only supported on linux")

// UDPSource is unavailable on this platform.
type UDPSource struct{}

// ListenUDP always fails on this platform.
func ListenUDP(addr string) (*UDPSource, error) {
	return nil, ErrUnsupported
}

// LocalAddr returns nil.
func (s *UDPSource) LocalAddr() net.Addr { return nil }

// Close implements io.Closer.
func (s *UDPSource) Close() error { return nil }

// Recv implements Source.
func (s *UDPSource) Recv(buf []byte) (int, net.Addr, error) {
	return 0, nil, ErrUnsupported
}
