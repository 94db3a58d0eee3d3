package actuator

import (
	"context"
	"fmt"
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/vscp/pkg/framework"
	"github.com/robotalks/vscp/pkg/vscp"
)

// Axis names.
const (
	AxisSteering = "steering"
	AxisThrottle = "throttle"
)

// AxisError is a failed write of one axis.
type AxisError struct {
	Axis    string
	Channel int
	Ticks   uint16
	Err     error
}

// Error implements error.
func (e *AxisError) Error() string {
	return fmt.Sprintf("%s channel %d ticks %d: %v", e.Axis, e.Channel, e.Ticks, e.Err)
}

// Unwrap returns the device error.
func (e *AxisError) Unwrap() error {
	return e.Err
}

// Config defines channel assignment and calibration of both axes.
type Config struct {
	SteeringChannel int         `yaml:"steering_channel"`
	ThrottleChannel int         `yaml:"throttle_channel"`
	Steering        Calibration `yaml:"steering"`
	Throttle        Calibration `yaml:"throttle"`
	// WriteDelay separates the two channel writes.
	WriteDelay time.Duration `yaml:"write_delay"`
}

// DefaultConfig returns the reference wiring: steering servo on channel 3,
// throttle ESC on channel 1.
func DefaultConfig() Config {
	return Config{
		SteeringChannel: 3,
		ThrottleChannel: 1,
		Steering:        DefaultCalibration,
		Throttle:        DefaultCalibration,
		WriteDelay:      10 * time.Millisecond,
	}
}

// Mapper converts commands into channel writes.
type Mapper struct {
	Device ChannelSetter
	Config Config
}

// NewMapper creates a Mapper.
func NewMapper(dev ChannelSetter, conf Config) *Mapper {
	return &Mapper{Device: dev, Config: conf}
}

// Ticks computes the steering and throttle off ticks of cmd.
func (m *Mapper) Ticks(cmd vscp.Command) (steering, throttle uint16) {
	return m.Config.Steering.Ticks(cmd.LeftRight), m.Config.Throttle.Ticks(cmd.ForwardBackward)
}

// Drive writes steering then throttle. Both writes are always attempted;
// failures are returned together.
func (m *Mapper) Drive(ctx context.Context, cmd vscp.Command) error {
	steering, throttle := m.Ticks(cmd)
	glog.V(4).Infof("actuator: %s -> steering=%d throttle=%d", cmd, steering, throttle)

	var errs fx.AggregatedError
	errs.Add(m.write(AxisSteering, m.Config.SteeringChannel, steering))
	if err := fx.Sleep(ctx, m.Config.WriteDelay); err != nil {
		return errs.Add(err).Aggregate()
	}
	errs.Add(m.write(AxisThrottle, m.Config.ThrottleChannel, throttle))
	return errs.Aggregate()
}

func (m *Mapper) write(axis string, channel int, ticks uint16) error {
	if err := m.Device.SetChannel(channel, 0, ticks); err != nil {
		return &AxisError{Axis: axis, Channel: channel, Ticks: ticks, Err: err}
	}
	return nil
}
