package actuator

import (
	"fmt"
	"math"
)

// Policy selects how an axis value is shaped before the affine transform.
type Policy int

const (
	// FullRange uses the axis value as is.
	FullRange Policy = iota
	// HalvedForward halves positive values and floors negative values at
	// zero, for throttles that must never reverse.
	HalvedForward
)

var policyNames = map[Policy]string{
	FullRange:     "full-range",
	HalvedForward: "halved-forward",
}

// String implements fmt.Stringer.
func (p Policy) String() string {
	if name, ok := policyNames[p]; ok {
		return name
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

// ParsePolicy parses the name of a Policy.
func ParsePolicy(s string) (Policy, error) {
	for p, name := range policyNames {
		if name == s {
			return p, nil
		}
	}
	return FullRange, fmt.Errorf("unknown calibration policy %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (p Policy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Policy) UnmarshalText(text []byte) (err error) {
	*p, err = ParsePolicy(string(text))
	return
}

// Shape applies the policy to an axis value.
func (p Policy) Shape(v float64) float64 {
	if p == HalvedForward {
		if v > 0 {
			return v / 2
		}
		return 0
	}
	return v
}

// Calibration is the affine transform ticks = Center + Scale * value of
// one physical actuator.
type Calibration struct {
	Center float64 `yaml:"center"`
	Scale  float64 `yaml:"scale"`
	Policy Policy  `yaml:"policy"`
}

// DefaultCalibration is the 1-2ms servo pulse on a 100Hz 12-bit PWM.
var DefaultCalibration = Calibration{Center: 614, Scale: 205, Policy: FullRange}

// Ticks converts an axis value into an off tick, clamped to [0, MaxTick]
// and truncated. NaN maps to Center.
func (c Calibration) Ticks(v float32) uint16 {
	value := float64(v)
	if math.IsNaN(value) {
		return c.clamp(c.Center)
	}
	return c.clamp(c.Center + c.Scale*c.Policy.Shape(value))
}

func (c Calibration) clamp(ticks float64) uint16 {
	switch {
	case math.IsNaN(ticks) || ticks <= 0:
		return 0
	case ticks >= float64(MaxTick):
		return MaxTick
	}
	return uint16(ticks)
}
