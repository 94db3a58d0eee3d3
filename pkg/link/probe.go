package link

import (
	"bufio"
	"context"
	"net"
	"strings"

	"github.com/golang/glog"
)

// Status is the result of a probe.
type Status struct {
	Interface string
	// Address is the assigned address, nil if none.
	Address net.IP
}

// Reachable indicates the interface holds a routable address. A
// link-local (169.254.x.x auto-configuration) address means the modem
// has no upstream connectivity.
func (s Status) Reachable() bool {
	return s.Address != nil &&
		!s.Address.IsUnspecified() &&
		!s.Address.IsLinkLocalUnicast()
}

// Prober queries the link.
type Prober interface {
	Probe(ctx context.Context) (Status, error)
}

// ProbeFunc is the func form of Prober.
type ProbeFunc func(ctx context.Context) (Status, error)

// Probe implements Prober.
func (f ProbeFunc) Probe(ctx context.Context) (Status, error) {
	return f(ctx)
}

// IfconfigProber reads the interface address from ifconfig output.
type IfconfigProber struct {
	Runner    Runner
	Interface string
	// Command defaults to ifconfig.
	Command string
}

// Probe implements Prober. A missing interface makes ifconfig exit with
// failure; it is reported as no address rather than an error.
func (p *IfconfigProber) Probe(ctx context.Context) (Status, error) {
	status := Status{Interface: p.Interface}
	cmd := p.Command
	if cmd == "" {
		cmd = "ifconfig"
	}
	out, err := p.Runner.Run(ctx, cmd, p.Interface)
	if err != nil {
		if IsExitError(err) {
			glog.V(2).Infof("link: %s %s: %v", cmd, p.Interface, err)
			return status, nil
		}
		return status, err
	}
	status.Address = ParseIfconfig(string(out))
	return status, nil
}

// ParseIfconfig extracts the first IPv4 address of ifconfig output. Both
// "inet 10.1.2.3" and the legacy "inet addr:10.1.2.3" forms are accepted.
func ParseIfconfig(out string) net.IP {
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		for n := 0; n+1 < len(fields); n++ {
			if fields[n] != "inet" {
				continue
			}
			if ip := net.ParseIP(strings.TrimPrefix(fields[n+1], "addr:")); ip != nil {
				return ip
			}
		}
	}
	return nil
}

// InterfaceProber reads the interface address from the OS interface table.
type InterfaceProber struct {
	Interface string
}

// Probe implements Prober. A missing interface is reported as no address.
func (p *InterfaceProber) Probe(ctx context.Context) (Status, error) {
	status := Status{Interface: p.Interface}
	iface, err := net.InterfaceByName(p.Interface)
	if err != nil {
		glog.V(2).Infof("link: %v", err)
		return status, nil
	}
	addrs, err := iface.Addrs()
	if err != nil {
		return status, err
	}
	for _, addr := range addrs {
		if ipnet, ok := addr.(*net.IPNet); ok && ipnet.IP.To4() != nil {
			status.Address = ipnet.IP
			break
		}
	}
	return status, nil
}
