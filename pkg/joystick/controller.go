// Package joystick turns joystick axes into vehicle commands.
package joystick

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/vscp/pkg/framework"
	"github.com/robotalks/vscp/pkg/joystick/device"
	"github.com/robotalks/vscp/pkg/vscp"
)

// DefaultRetryInterval is the wait before opening the device again.
const DefaultRetryInterval = time.Second

// Controller tracks the command selected by the joystick. The command is
// neutral while no device is open.
type Controller struct {
	// DeviceIndex selects /dev/input/jsN, -1 to detect.
	DeviceIndex    int
	SteeringAxis   int
	ThrottleAxis   int
	InvertThrottle bool
	// Deadzone is the fraction of travel around center read as zero.
	Deadzone      float64
	Verbose       bool
	RetryInterval time.Duration
	// Open overrides opening the device.
	Open func(index int) (device.Device, error)

	lock sync.RWMutex
	cmd  vscp.Command
}

// NewController creates a Controller with the default mapping: axis 0
// steers, axis 1 pushed forward drives forward.
func NewController() *Controller {
	return &Controller{
		DeviceIndex:    defaultConfig.DeviceIndex,
		SteeringAxis:   0,
		ThrottleAxis:   1,
		InvertThrottle: true,
		Deadzone:       defaultConfig.Deadzone,
		Verbose:        defaultConfig.Verbose,
		RetryInterval:  DefaultRetryInterval,
	}
}

// Name implements framework.Named.
func (c *Controller) Name() string {
	return "joystick"
}

// Command returns the current command.
func (c *Controller) Command() vscp.Command {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.cmd
}

// AxisValue scales a raw axis position to [-1, 1] with deadzone applied.
func AxisValue(raw int, deadzone float64) float32 {
	v := math.Max(-1, math.Min(1, float64(raw)/device.AxisMax))
	if math.Abs(v) <= deadzone {
		return 0
	}
	return float32(v)
}

// HandleEvent applies one device event.
func (c *Controller) HandleEvent(ev device.Event) {
	if c.Verbose {
		glog.Infof("joystick: %v", ev)
	}
	axis, ok := ev.(device.AxisEvent)
	if !ok {
		return
	}
	val := AxisValue(axis.Value(), c.Deadzone)
	c.lock.Lock()
	defer c.lock.Unlock()
	switch axis.Index() {
	case c.SteeringAxis:
		c.cmd.LeftRight = val
	case c.ThrottleAxis:
		if c.InvertThrottle {
			val = -val
		}
		c.cmd.ForwardBackward = val
	}
}

func (c *Controller) reset() {
	c.lock.Lock()
	c.cmd = vscp.Neutral
	c.lock.Unlock()
}

// Run implements framework.Runnable. The device is reopened after read
// failures, e.g. when the joystick is unplugged.
func (c *Controller) Run(ctx context.Context) error {
	retry := c.RetryInterval
	if retry <= 0 {
		retry = DefaultRetryInterval
	}
	for {
		js, err := c.open()
		if err != nil {
			glog.V(2).Infof("joystick: %v", err)
		} else {
			glog.Infof("joystick: %d %q opened, %d axes, %d buttons",
				js.Index(), js.Name(), js.AxisCount(), js.ButtonCount())
			err = c.read(ctx, js)
			c.reset()
			if ctx.Err() == nil {
				glog.Warningf("joystick: %v", err)
			}
		}
		if err := fx.Sleep(ctx, retry); err != nil {
			return err
		}
	}
}

func (c *Controller) open() (device.Device, error) {
	if c.Open != nil {
		return c.Open(c.DeviceIndex)
	}
	if c.DeviceIndex < 0 {
		return device.Detect(0)
	}
	return device.Open(c.DeviceIndex)
}

func (c *Controller) read(ctx context.Context, js device.Device) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
		case <-done:
		}
		js.Close()
	}()
	for {
		ev, err := js.ReadEvent()
		if err != nil {
			return err
		}
		c.HandleEvent(ev)
	}
}
