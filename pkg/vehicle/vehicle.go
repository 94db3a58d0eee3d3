// Package vehicle wires command intake, the fail-safe and the actuator
// mapper into the control loop.
package vehicle

import (
	"context"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/vscp/pkg/actuator"
	"github.com/robotalks/vscp/pkg/config"
	"github.com/robotalks/vscp/pkg/failsafe"
	fx "github.com/robotalks/vscp/pkg/framework"
	"github.com/robotalks/vscp/pkg/intake"
	"github.com/robotalks/vscp/pkg/vscp"
)

// Vehicle owns the last command state. Only the loop controllers touch
// it, in sense, control, acuate order within a tick.
type Vehicle struct {
	Intake      *intake.Client
	Mapper      *actuator.Mapper
	Driver      actuator.Driver
	FrequencyHz float64
	Staleness   time.Duration
	// Monitor runs beside the loop when set, sharing no state with it.
	Monitor fx.Runnable

	state      failsafe.State
	failedSafe bool
}

// New creates a Vehicle from conf reading commands from src and writing
// to drv.
func New(conf *config.Config, src intake.Source, drv actuator.Driver) (*Vehicle, error) {
	peer, err := conf.PeerIP()
	if err != nil {
		return nil, err
	}
	client := intake.NewClient(src)
	client.Peer = peer
	return &Vehicle{
		Intake:      client,
		Mapper:      actuator.NewMapper(drv, conf.Actuator),
		Driver:      drv,
		FrequencyHz: conf.FrequencyHz,
		Staleness:   conf.Staleness,
		// starts failed safe, the first valid command is logged.
		failedSafe: true,
	}, nil
}

// State returns the last command state.
func (v *Vehicle) State() failsafe.State {
	return v.state
}

// Setup resets the driver and sets the PWM frequency.
func (v *Vehicle) Setup(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := v.Driver.Reset(); err != nil {
		return err
	}
	if err := v.Driver.Configure(v.FrequencyHz); err != nil {
		return err
	}
	glog.Infof("vehicle: actuator configured at %vHz", v.FrequencyHz)
	return nil
}

// AddToLoop implements framework.LoopAdder.
func (v *Vehicle) AddToLoop(l *fx.Loop) {
	l.AddController(fx.PrLvSense, fx.ControlFunc(v.sense))
	l.AddController(fx.PrLvControl, fx.ControlFunc(v.control))
	l.AddController(fx.PrLvAcuate, fx.ControlFunc(v.acuate))
	if v.Monitor != nil {
		l.AddRunnable(v.Monitor)
	}
}

func (v *Vehicle) sense(ctx fx.ControlContext) error {
	cmd, count := v.Intake.Poll()
	if cmd == nil {
		return nil
	}
	if count > 1 {
		glog.V(4).Infof("vehicle: %d commands in one tick, using latest", count)
	}
	if v.failedSafe {
		glog.Infof("vehicle: receiving commands")
		v.failedSafe = false
	}
	v.state = v.state.Update(*cmd, ctx.Time())
	return nil
}

func (v *Vehicle) control(ctx fx.ControlContext) error {
	staleness := v.Staleness
	if staleness <= 0 {
		staleness = failsafe.DefaultThreshold
	}
	now := ctx.Time()
	if v.state.Stale(now, staleness) && !v.failedSafe {
		glog.Warningf("vehicle: no command for %v, fail safe to neutral", now.Sub(v.state.LastUpdate))
		v.failedSafe = true
	}
	v.state = failsafe.Apply(v.state, now, staleness)
	return nil
}

func (v *Vehicle) acuate(ctx fx.ControlContext) error {
	return v.Mapper.Drive(ctx.Context(), v.state.Active)
}

// Shutdown writes neutral to both axes then puts the driver to sleep.
func (v *Vehicle) Shutdown(ctx context.Context) error {
	var errs fx.AggregatedError
	errs.Add(v.Mapper.Drive(ctx, vscp.Neutral))
	errs.Add(v.Driver.Sleep())
	stats := v.Intake.Stats()
	glog.Infof("vehicle: stopped, %d datagrams received, %d valid, %d rejected, %d receive errors",
		stats.Received, stats.Valid, stats.Rejected, stats.IOErrors)
	return errs.Aggregate()
}
