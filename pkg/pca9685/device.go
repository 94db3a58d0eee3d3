// Package pca9685 drives the NXP PCA9685 16-channel 12-bit PWM controller.
package pca9685

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/golang/glog"
)

// DefaultAddress is the I2C address with all address pins low.
const DefaultAddress uint16 = 0x40

// Registers
const (
	RegMode1    byte = 0x00
	RegMode2    byte = 0x01
	RegLED0OnL  byte = 0x06
	RegAllOnL   byte = 0xFA
	RegPrescale byte = 0xFE
)

// Mode bits
const (
	Mode1AllCall byte = 0x01
	Mode1Sleep   byte = 0x10
	Mode1Restart byte = 0x80
	Mode2OutDrv  byte = 0x04
)

// Chip limits.
const (
	Channels      = 16
	OscillatorHz  = 25000000
	Resolution    = 4096
	FullTick      = 0x1000
	MinPrescale   = 3
	MaxPrescale   = 255
	MinFrequency  = 24
	MaxFrequency  = 1526
	registerWidth = 4
)

// DefaultOscillatorDelay is the wait after waking the oscillator. The chip
// needs at least 500us; 50ms is what the reference hardware settles on.
const DefaultOscillatorDelay = 50 * time.Millisecond

// Bus provides byte access to the chip registers.
type Bus interface {
	ReadReg(reg byte) (byte, error)
	WriteReg(reg, val byte) error
}

// Device is a PCA9685 chip on a Bus. It implements actuator.Driver.
type Device struct {
	Bus             Bus
	OscillatorDelay time.Duration
	// Delay waits; time.Sleep if nil.
	Delay func(time.Duration)
}

// New creates a Device.
func New(bus Bus) *Device {
	return &Device{Bus: bus, OscillatorDelay: DefaultOscillatorDelay}
}

// Close closes the underlying bus if it is closable.
func (d *Device) Close() error {
	if closer, ok := d.Bus.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// Prescale computes the prescaler for freqHz.
func Prescale(freqHz float64) (byte, error) {
	if freqHz < MinFrequency || freqHz > MaxFrequency || math.IsNaN(freqHz) {
		return 0, fmt.Errorf("pca9685: frequency %vHz out of range [%d, %d]", freqHz, MinFrequency, MaxFrequency)
	}
	prescale := math.Round(OscillatorHz/Resolution/freqHz) - 1
	if prescale < MinPrescale {
		prescale = MinPrescale
	} else if prescale > MaxPrescale {
		prescale = MaxPrescale
	}
	return byte(prescale), nil
}

// Reset turns all channels off, selects totem-pole outputs with
// all-call addressing and wakes the oscillator.
func (d *Device) Reset() error {
	if err := d.SetAll(0, 0); err != nil {
		return err
	}
	if err := d.Bus.WriteReg(RegMode2, Mode2OutDrv); err != nil {
		return err
	}
	if err := d.Bus.WriteReg(RegMode1, Mode1AllCall); err != nil {
		return err
	}
	d.delay(d.OscillatorDelay)
	return d.Wake()
}

// Configure sets the PWM frequency. The prescaler can only be written
// while the oscillator sleeps, so the chip is put to sleep, programmed,
// restored, and restarted once the oscillator is stable.
func (d *Device) Configure(freqHz float64) error {
	prescale, err := Prescale(freqHz)
	if err != nil {
		return err
	}
	oldMode, err := d.Bus.ReadReg(RegMode1)
	if err != nil {
		return err
	}
	if err = d.Bus.WriteReg(RegMode1, (oldMode&^Mode1Restart)|Mode1Sleep); err != nil {
		return err
	}
	if err = d.Bus.WriteReg(RegPrescale, prescale); err != nil {
		return err
	}
	if err = d.Bus.WriteReg(RegMode1, oldMode); err != nil {
		return err
	}
	d.delay(d.OscillatorDelay)
	if err = d.Bus.WriteReg(RegMode1, oldMode|Mode1Restart); err != nil {
		return err
	}
	glog.V(2).Infof("pca9685: frequency %vHz prescale %d", freqHz, prescale)
	return nil
}

// SetChannel writes on/off ticks of one channel.
func (d *Device) SetChannel(channel int, on, off uint16) error {
	if channel < 0 || channel >= Channels {
		return fmt.Errorf("pca9685: invalid channel %d", channel)
	}
	return d.writeTicks(RegLED0OnL+byte(registerWidth*channel), on, off)
}

// SetAll writes on/off ticks of all channels.
func (d *Device) SetAll(on, off uint16) error {
	return d.writeTicks(RegAllOnL, on, off)
}

// Sleep stops the oscillator.
func (d *Device) Sleep() error {
	mode, err := d.Bus.ReadReg(RegMode1)
	if err != nil {
		return err
	}
	return d.Bus.WriteReg(RegMode1, (mode&^Mode1Restart)|Mode1Sleep)
}

// Wake resumes the oscillator and waits until it is stable.
func (d *Device) Wake() error {
	mode, err := d.Bus.ReadReg(RegMode1)
	if err != nil {
		return err
	}
	if err = d.Bus.WriteReg(RegMode1, mode&^(Mode1Sleep|Mode1Restart)); err != nil {
		return err
	}
	d.delay(d.OscillatorDelay)
	return nil
}

func (d *Device) writeTicks(reg byte, on, off uint16) error {
	if on > FullTick || off > FullTick {
		return fmt.Errorf("pca9685: ticks on=%d off=%d out of range", on, off)
	}
	vals := [registerWidth]byte{byte(on), byte(on >> 8), byte(off), byte(off >> 8)}
	for n, val := range vals {
		if err := d.Bus.WriteReg(reg+byte(n), val); err != nil {
			return fmt.Errorf("pca9685: write register 0x%02x: %w", reg+byte(n), err)
		}
	}
	return nil
}

func (d *Device) delay(dur time.Duration) {
	if dur <= 0 {
		return
	}
	if d.Delay != nil {
		d.Delay(dur)
		return
	}
	time.Sleep(dur)
}
