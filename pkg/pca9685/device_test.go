package pca9685

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/vscp/pkg/actuator"
)

var _ actuator.Driver = (*Device)(nil)

type regWrite struct {
	reg, val byte
}

type fakeBus struct {
	regs    [256]byte
	writes  []regWrite
	failReg int
}

func (b *fakeBus) ReadReg(reg byte) (byte, error) {
	return b.regs[reg], nil
}

func (b *fakeBus) WriteReg(reg, val byte) error {
	if b.failReg >= 0 && int(reg) == b.failReg {
		return errors.New("nack")
	}
	b.writes = append(b.writes, regWrite{reg, val})
	b.regs[reg] = val
	return nil
}

func newTestDevice() (*Device, *fakeBus, *[]time.Duration) {
	bus := &fakeBus{failReg: -1}
	var delays []time.Duration
	dev := New(bus)
	dev.Delay = func(d time.Duration) { delays = append(delays, d) }
	return dev, bus, &delays
}

func TestPrescale(t *testing.T) {
	testCases := []struct {
		freq   float64
		expect byte
	}{
		{50, 121},
		{60, 101},
		{100, 60},
		{1000, 5},
		{MinFrequency, 253},
		{MaxFrequency, 3},
	}
	for _, tc := range testCases {
		p, err := Prescale(tc.freq)
		require.NoError(t, err)
		require.Equal(t, tc.expect, p, "%vHz", tc.freq)
	}
	for _, freq := range []float64{0, 23, 1527, -100} {
		_, err := Prescale(freq)
		require.Error(t, err)
	}
}

func TestConfigure(t *testing.T) {
	dev, bus, delays := newTestDevice()
	bus.regs[RegMode1] = Mode1AllCall
	require.NoError(t, dev.Configure(100))
	require.Equal(t, []regWrite{
		{RegMode1, Mode1AllCall | Mode1Sleep},
		{RegPrescale, 60},
		{RegMode1, Mode1AllCall},
		{RegMode1, Mode1AllCall | Mode1Restart},
	}, bus.writes)
	require.Equal(t, []time.Duration{DefaultOscillatorDelay}, *delays)
}

func TestReset(t *testing.T) {
	dev, bus, delays := newTestDevice()
	bus.regs[RegMode1] = Mode1Sleep
	require.NoError(t, dev.Reset())
	require.Equal(t, []regWrite{
		{RegAllOnL, 0}, {RegAllOnL + 1, 0}, {RegAllOnL + 2, 0}, {RegAllOnL + 3, 0},
		{RegMode2, Mode2OutDrv},
		{RegMode1, Mode1AllCall},
		{RegMode1, Mode1AllCall},
	}, bus.writes)
	require.Len(t, *delays, 2)
	require.Equal(t, byte(0), bus.regs[RegMode1]&Mode1Sleep)
}

func TestSetChannel(t *testing.T) {
	dev, bus, _ := newTestDevice()
	require.NoError(t, dev.SetChannel(3, 0, 819))
	require.Equal(t, []regWrite{
		{0x12, 0x00}, {0x13, 0x00}, {0x14, 0x33}, {0x15, 0x03},
	}, bus.writes)

	bus.writes = nil
	require.NoError(t, dev.SetChannel(0, 0x0123, FullTick))
	require.Equal(t, []regWrite{
		{0x06, 0x23}, {0x07, 0x01}, {0x08, 0x00}, {0x09, 0x10},
	}, bus.writes)

	require.Error(t, dev.SetChannel(16, 0, 0))
	require.Error(t, dev.SetChannel(-1, 0, 0))
	require.Error(t, dev.SetChannel(1, 0, FullTick+1))
}

func TestSetChannelBusError(t *testing.T) {
	dev, bus, _ := newTestDevice()
	bus.failReg = 0x0c
	err := dev.SetChannel(1, 0, 614)
	require.Error(t, err)
	require.Contains(t, err.Error(), "0x0c")
}

func TestSleepWake(t *testing.T) {
	dev, bus, delays := newTestDevice()
	bus.regs[RegMode1] = Mode1AllCall | Mode1Restart
	require.NoError(t, dev.Sleep())
	require.Equal(t, Mode1AllCall|Mode1Sleep, bus.regs[RegMode1])
	require.NoError(t, dev.Wake())
	require.Equal(t, Mode1AllCall, bus.regs[RegMode1])
	require.Equal(t, []time.Duration{DefaultOscillatorDelay}, *delays)
}
