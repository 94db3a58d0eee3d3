// Package actuator maps commands onto PWM channels of an actuator driver.
package actuator

// MaxTick is the largest on/off tick of a 12-bit PWM driver.
const MaxTick uint16 = 4095

// ChannelSetter writes the on/off ticks of a single PWM channel.
type ChannelSetter interface {
	SetChannel(channel int, on, off uint16) error
}

// Driver is the full contract of a PWM actuator driver.
type Driver interface {
	ChannelSetter
	// Reset turns all outputs off and puts the chip in its operating mode.
	Reset() error
	// Configure sets the PWM frequency.
	Configure(freqHz float64) error
	// SetAll writes on/off ticks to every channel at once.
	SetAll(on, off uint16) error
	// Wake resumes the oscillator.
	Wake() error
	// Sleep stops the oscillator, all outputs go off.
	Sleep() error
}
