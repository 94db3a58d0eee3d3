package link

import (
	"context"
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/vscp/pkg/framework"
)

// DefaultPollInterval is the cadence of link polls.
const DefaultPollInterval = time.Second

// Monitor is the connectivity watchdog. It owns its state machine and
// shares nothing with the control loop.
type Monitor struct {
	Prober       Prober
	Recoverer    Recoverer
	Publisher    Publisher
	Machine      *Machine
	PollInterval time.Duration
	// Now overrides the clock; time.Now if nil.
	Now func() time.Time
}

// NewMonitor creates a Monitor with default timing.
func NewMonitor(prober Prober, recoverer Recoverer, publisher Publisher) *Monitor {
	return &Monitor{
		Prober:       prober,
		Recoverer:    recoverer,
		Publisher:    publisher,
		Machine:      NewMachine(DefaultConnectTimeout),
		PollInterval: DefaultPollInterval,
	}
}

// Name implements framework.Named.
func (m *Monitor) Name() string {
	return "link-monitor"
}

// Run implements framework.Runnable. It only returns when ctx is done.
func (m *Monitor) Run(ctx context.Context) error {
	interval := m.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	glog.Infof("link: monitor started, poll every %v", interval)
	return fx.Supervise(ctx, m.Name(), interval, m.Poll)
}

// Poll runs one watchdog iteration.
func (m *Monitor) Poll(ctx context.Context) error {
	if m.Machine == nil {
		m.Machine = NewMachine(DefaultConnectTimeout)
	}
	status, err := m.Prober.Probe(ctx)
	if err != nil {
		return &ActionError{Op: OpQuery, Err: err}
	}
	now := time.Now
	if m.Now != nil {
		now = m.Now
	}
	tr := m.Machine.Step(now(), status.Reachable())
	if tr.Changed() {
		glog.Infof("link: %s -> %s (address %v)", tr.From, tr.To, status.Address)
	}
	switch tr.Action {
	case ActionRecover:
		if m.Recoverer != nil {
			glog.Warningf("link: %s unreachable, restarting modem connection", status.Interface)
			if err := m.Recoverer.Recover(ctx); err != nil {
				return &ActionError{Op: OpRecover, Err: err}
			}
		}
	case ActionPublish:
		if m.Publisher != nil {
			if err := m.Publisher.Publish(ctx, status); err != nil {
				return &ActionError{Op: OpPublish, Err: err}
			}
		}
	}
	return nil
}
