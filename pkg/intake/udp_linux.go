//go:build linux

package intake

import (
	"fmt"
	"net"
	"syscall"

	"golang.org/x/sys/unix"
)

// UDPSource is a Source backed by a bound UDP socket. Each Recv performs
// a single recvfrom attempt on the raw socket without parking in the
// runtime poller.
type UDPSource struct {
	conn *net.UDPConn
	raw  syscall.RawConn
}

// ListenUDP binds addr (e.g. "0.0.0.0:50001").
func ListenUDP(addr string) (*UDPSource, error) {
	laddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", addr, err)
	}
	conn, err := net.ListenUDP("udp", laddr)
	if err != nil {
		return nil, err
	}
	return NewUDPSource(conn)
}

// NewUDPSource wraps an already bound UDP socket.
func NewUDPSource(conn *net.UDPConn) (*UDPSource, error) {
	raw, err := conn.SyscallConn()
	if err != nil {
		conn.Close()
		return nil, err
	}
	return &UDPSource{conn: conn, raw: raw}, nil
}

// LocalAddr returns the bound address.
func (s *UDPSource) LocalAddr() net.Addr {
	return s.conn.LocalAddr()
}

// Close implements io.Closer.
func (s *UDPSource) Close() error {
	return s.conn.Close()
}

// Recv implements Source.
func (s *UDPSource) Recv(buf []byte) (int, net.Addr, error) {
	var (
		n    int
		sa   unix.Sockaddr
		rerr error
	)
	err := s.raw.Read(func(fd uintptr) bool {
		n, sa, rerr = unix.Recvfrom(int(fd), buf, unix.MSG_DONTWAIT)
		// never wait for readiness.
		return true
	})
	if err != nil {
		return 0, nil, err
	}
	if rerr == unix.EAGAIN || rerr == unix.EWOULDBLOCK || rerr == unix.EINTR {
		return 0, nil, ErrWouldBlock
	}
	if rerr != nil {
		return 0, nil, rerr
	}
	return n, sockaddrToUDP(sa), nil
}

func sockaddrToUDP(sa unix.Sockaddr) net.Addr {
	switch addr := sa.(type) {
	case *unix.SockaddrInet4:
		return &net.UDPAddr{IP: net.IP(append([]byte(nil), addr.Addr[:]...)), Port: addr.Port}
	case *unix.SockaddrInet6:
		return &net.UDPAddr{IP: net.IP(append([]byte(nil), addr.Addr[:]...)), Port: addr.Port}
	}
	return nil
}
