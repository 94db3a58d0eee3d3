package config

import (
	"fmt"
	"net"
	"strings"

	"github.com/robotalks/vscp/pkg/link"
)

// PeerIP parses Peer, nil if unset.
func (c *Config) PeerIP() (net.IP, error) {
	if c.Peer == "" {
		return nil, nil
	}
	ip := net.ParseIP(c.Peer)
	if ip == nil {
		return nil, fmt.Errorf("invalid peer address %q", c.Peer)
	}
	return ip, nil
}

// NewMonitor creates the connectivity watchdog. The publish command, if
// configured, runs before extra publishers.
func (l *LinkConfig) NewMonitor(runner link.Runner, extra ...link.Publisher) *link.Monitor {
	if runner == nil {
		runner = &link.ExecRunner{Timeout: l.CommandTimeout}
	}
	var prober link.Prober
	switch l.Probe {
	case ProbeInterface:
		prober = &link.InterfaceProber{Interface: l.Interface}
	default:
		prober = &link.IfconfigProber{Runner: runner, Interface: l.Interface}
	}
	recoverer := &link.CommandRecoverer{
		Runner: runner,
		Stop:   link.CommandLine(strings.Fields(l.StopCommand)),
		Start:  link.CommandLine(strings.Fields(l.StartCommand)),
	}
	var pubs link.Publishers
	if cmd := strings.Fields(l.PublishCommand); len(cmd) > 0 {
		pubs = append(pubs, &link.CommandPublisher{Runner: runner, Command: cmd})
	}
	for _, p := range extra {
		if p != nil {
			pubs = append(pubs, p)
		}
	}

	m := link.NewMonitor(prober, recoverer, pubs)
	m.Machine = link.NewMachine(l.ConnectTimeout)
	if l.PollInterval > 0 {
		m.PollInterval = l.PollInterval
	}
	return m
}
