// Package config resolves vehicle settings from defaults, environment,
// an optional YAML file and command line flags, in increasing precedence.
package config

import (
	"errors"
	"flag"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/robotalks/vscp/pkg/actuator"
	"github.com/robotalks/vscp/pkg/failsafe"
	fx "github.com/robotalks/vscp/pkg/framework"
	"github.com/robotalks/vscp/pkg/link"
	"github.com/robotalks/vscp/pkg/pca9685"
)

// EnvMQTTURL overrides the default broker URL.
const EnvMQTTURL = "VSCP_MQTT_URL"

// Probe kinds.
const (
	ProbeIfconfig  = "ifconfig"
	ProbeInterface = "interface"
)

// Config is the complete vehicle configuration.
type Config struct {
	// ConfigFile is the YAML file merged over the defaults.
	ConfigFile string `yaml:"-"`

	VehicleID    string        `yaml:"vehicle_id"`
	Listen       string        `yaml:"listen"`
	Peer         string        `yaml:"peer"`
	I2CDevice    string        `yaml:"i2c_device"`
	I2CAddress   uint          `yaml:"i2c_address"`
	FrequencyHz  float64       `yaml:"frequency_hz"`
	TickInterval time.Duration `yaml:"tick_interval"`
	Staleness    time.Duration `yaml:"staleness"`
	MQTTURL      string        `yaml:"mqtt_url"`

	Actuator actuator.Config `yaml:"actuator"`
	Link     LinkConfig      `yaml:"link"`
}

// LinkConfig configures the connectivity watchdog.
type LinkConfig struct {
	Enabled        bool          `yaml:"enabled"`
	Interface      string        `yaml:"interface"`
	Probe          string        `yaml:"probe"`
	StopCommand    string        `yaml:"stop_command"`
	StartCommand   string        `yaml:"start_command"`
	PublishCommand string        `yaml:"publish_command"`
	PollInterval   time.Duration `yaml:"poll_interval"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	CommandTimeout time.Duration `yaml:"command_timeout"`
}

// Defaults returns the built-in configuration for the reference vehicle.
func Defaults() Config {
	return Config{
		Listen:       "0.0.0.0:50001",
		I2CDevice:    "/dev/i2c-1",
		I2CAddress:   uint(pca9685.DefaultAddress),
		FrequencyHz:  100,
		TickInterval: fx.DefaultInterval,
		Staleness:    failsafe.DefaultThreshold,
		MQTTURL:      "mqtt://localhost:1883/vscp/",
		Actuator:     actuator.DefaultConfig(),
		Link: LinkConfig{
			Enabled:        true,
			Interface:      "wwan0",
			Probe:          ProbeIfconfig,
			StopCommand:    "qmi-network /dev/cdc-wdm0 stop",
			StartCommand:   "qmi-network /dev/cdc-wdm0 start",
			PublishCommand: "/home/pi/vscp/publish_ip",
			PollInterval:   link.DefaultPollInterval,
			ConnectTimeout: link.DefaultConnectTimeout,
			CommandTimeout: link.DefaultCommandTimeout,
		},
	}
}

var defaultConfig = withEnv(Defaults())

func withEnv(c Config) Config {
	if val := os.Getenv(EnvMQTTURL); val != "" {
		c.MQTTURL = val
	}
	return c
}

// BindFlags registers flags writing into c.
func (c *Config) BindFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.ConfigFile, "config", c.ConfigFile, "YAML configuration file.")
	fs.StringVar(&c.VehicleID, "id", c.VehicleID, "Vehicle ID, machine ID if empty.")
	fs.StringVar(&c.Listen, "listen", c.Listen, "UDP address to receive commands.")
	fs.StringVar(&c.Peer, "peer", c.Peer, "Only accept commands from this IP.")
	fs.StringVar(&c.I2CDevice, "i2c", c.I2CDevice, "I2C bus device of the PWM driver.")
	fs.UintVar(&c.I2CAddress, "i2c-addr", c.I2CAddress, "I2C address of the PWM driver.")
	fs.Float64Var(&c.FrequencyHz, "freq", c.FrequencyHz, "PWM frequency in Hz.")
	fs.DurationVar(&c.TickInterval, "tick", c.TickInterval, "Control loop interval.")
	fs.DurationVar(&c.Staleness, "staleness", c.Staleness, "Fail safe to neutral after no command for this long.")
	fs.StringVar(&c.MQTTURL, "mqtt", c.MQTTURL, "MQTT broker URL, empty to disable.")

	fs.IntVar(&c.Actuator.SteeringChannel, "steering-channel", c.Actuator.SteeringChannel, "PWM channel of the steering servo.")
	fs.IntVar(&c.Actuator.ThrottleChannel, "throttle-channel", c.Actuator.ThrottleChannel, "PWM channel of the throttle.")
	fs.Float64Var(&c.Actuator.Steering.Center, "steering-center", c.Actuator.Steering.Center, "Steering neutral ticks.")
	fs.Float64Var(&c.Actuator.Steering.Scale, "steering-scale", c.Actuator.Steering.Scale, "Steering ticks per unit.")
	fs.TextVar(&c.Actuator.Steering.Policy, "steering-policy", c.Actuator.Steering.Policy, "Steering calibration policy.")
	fs.Float64Var(&c.Actuator.Throttle.Center, "throttle-center", c.Actuator.Throttle.Center, "Throttle neutral ticks.")
	fs.Float64Var(&c.Actuator.Throttle.Scale, "throttle-scale", c.Actuator.Throttle.Scale, "Throttle ticks per unit.")
	fs.TextVar(&c.Actuator.Throttle.Policy, "throttle-policy", c.Actuator.Throttle.Policy, "Throttle calibration policy.")
	fs.DurationVar(&c.Actuator.WriteDelay, "write-delay", c.Actuator.WriteDelay, "Delay between steering and throttle writes.")

	fs.BoolVar(&c.Link.Enabled, "link", c.Link.Enabled, "Run the connectivity watchdog.")
	fs.StringVar(&c.Link.Interface, "link-iface", c.Link.Interface, "Cellular network interface.")
	fs.StringVar(&c.Link.Probe, "link-probe", c.Link.Probe, "Link probe: ifconfig or interface.")
	fs.StringVar(&c.Link.StopCommand, "link-stop", c.Link.StopCommand, "Command stopping the modem connection.")
	fs.StringVar(&c.Link.StartCommand, "link-start", c.Link.StartCommand, "Command starting the modem connection.")
	fs.StringVar(&c.Link.PublishCommand, "link-publish", c.Link.PublishCommand, "Command run when the link is up, empty to disable.")
	fs.DurationVar(&c.Link.PollInterval, "link-poll", c.Link.PollInterval, "Link poll interval.")
	fs.DurationVar(&c.Link.ConnectTimeout, "link-timeout", c.Link.ConnectTimeout, "Give up a recovery attempt after this long.")
	fs.DurationVar(&c.Link.CommandTimeout, "link-cmd-timeout", c.Link.CommandTimeout, "Timeout of each external command.")
}

// SetupFlags registers command line flags.
func SetupFlags() {
	defaultConfig.BindFlags(flag.CommandLine)
}

// Default gets the config the command line flags write into.
func Default() *Config {
	return &defaultConfig
}

// NewConfig resolves the config after flag.Parse.
func NewConfig() (*Config, error) {
	return Resolve(flag.CommandLine, defaultConfig)
}

// Resolve merges the file named by flagged.ConfigFile over the defaults,
// then reapplies the flags explicitly set in fs. flagged holds the values
// fs parsed into.
func Resolve(fs *flag.FlagSet, flagged Config) (*Config, error) {
	conf := flagged
	if flagged.ConfigFile != "" {
		conf = withEnv(Defaults())
		if err := conf.Load(flagged.ConfigFile); err != nil {
			return nil, err
		}
		conf.ConfigFile = flagged.ConfigFile
		overlay := flag.NewFlagSet("overlay", flag.ContinueOnError)
		conf.BindFlags(overlay)
		var err error
		fs.Visit(func(f *flag.Flag) {
			if err == nil && overlay.Lookup(f.Name) != nil {
				err = overlay.Set(f.Name, f.Value.String())
			}
		})
		if err != nil {
			return nil, err
		}
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return &conf, nil
}

// Load merges the YAML file at path into c.
func (c *Config) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// Validate rejects configurations the vehicle cannot run with.
func (c *Config) Validate() error {
	errs := &fx.AggregatedError{}
	if c.Listen == "" {
		errs.Add(errors.New("listen address is required"))
	}
	if c.FrequencyHz < pca9685.MinFrequency || c.FrequencyHz > pca9685.MaxFrequency {
		errs.Add(fmt.Errorf("frequency %vHz out of range [%v, %v]",
			c.FrequencyHz, pca9685.MinFrequency, pca9685.MaxFrequency))
	}
	if c.I2CAddress > 0x7f {
		errs.Add(fmt.Errorf("invalid i2c address 0x%x", c.I2CAddress))
	}
	if c.TickInterval <= 0 {
		errs.Add(errors.New("tick interval must be positive"))
	}
	if c.Staleness <= 0 {
		errs.Add(errors.New("staleness must be positive"))
	}
	for _, ch := range []struct {
		name    string
		channel int
	}{
		{actuator.AxisSteering, c.Actuator.SteeringChannel},
		{actuator.AxisThrottle, c.Actuator.ThrottleChannel},
	} {
		if ch.channel < 0 || ch.channel >= pca9685.Channels {
			errs.Add(fmt.Errorf("%s channel %d out of range", ch.name, ch.channel))
		}
	}
	if c.Actuator.SteeringChannel == c.Actuator.ThrottleChannel {
		errs.Add(fmt.Errorf("steering and throttle share channel %d", c.Actuator.SteeringChannel))
	}
	for name, cal := range map[string]actuator.Calibration{
		actuator.AxisSteering: c.Actuator.Steering,
		actuator.AxisThrottle: c.Actuator.Throttle,
	} {
		if math.IsNaN(cal.Center) || math.IsInf(cal.Center, 0) || math.IsNaN(cal.Scale) || math.IsInf(cal.Scale, 0) {
			errs.Add(fmt.Errorf("%s calibration is not finite", name))
		}
	}
	if c.Actuator.WriteDelay < 0 {
		errs.Add(errors.New("write delay must not be negative"))
	}
	if c.Link.Enabled {
		if c.Link.Interface == "" {
			errs.Add(errors.New("link interface is required"))
		}
		if c.Link.Probe != ProbeIfconfig && c.Link.Probe != ProbeInterface {
			errs.Add(fmt.Errorf("unknown link probe %q", c.Link.Probe))
		}
		if len(strings.Fields(c.Link.StartCommand)) == 0 {
			errs.Add(errors.New("link start command is required"))
		}
		if c.Link.PollInterval <= 0 {
			errs.Add(errors.New("link poll interval must be positive"))
		}
	}
	return errs.Aggregate()
}
