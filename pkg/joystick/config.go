package joystick

import (
	"flag"
	"time"
)

// Config defines the configurations for the joystick streamer.
type Config struct {
	DeviceIndex int
	Deadzone    float64
	Verbose     bool
	Target      string
	Rate        time.Duration
}

var defaultConfig = Config{
	DeviceIndex: -1,
	Deadzone:    0.05,
	Target:      "127.0.0.1:50001",
	Rate:        20 * time.Millisecond,
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.IntVar(&defaultConfig.DeviceIndex, "device", defaultConfig.DeviceIndex, "Device index, -1 for auto detection.")
	flag.Float64Var(&defaultConfig.Deadzone, "deadzone", defaultConfig.Deadzone, "Fraction of axis travel read as center.")
	flag.BoolVar(&defaultConfig.Verbose, "verbose", defaultConfig.Verbose, "Print joystick events.")
	flag.StringVar(&defaultConfig.Target, "target", defaultConfig.Target, "Vehicle command address.")
	flag.DurationVar(&defaultConfig.Rate, "rate", defaultConfig.Rate, "Command send interval.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a config with defaults.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// NewController creates a controller using the config.
func (c *Config) NewController() *Controller {
	ctl := NewController()
	ctl.DeviceIndex = c.DeviceIndex
	ctl.Deadzone = c.Deadzone
	ctl.Verbose = c.Verbose
	return ctl
}
