//go:build linux

package pca9685

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// i2cSlave is the I2C_SLAVE ioctl of linux/i2c-dev.h.
const i2cSlave = 0x0703

// I2CBus is a Bus over a Linux i2c-dev character device.
type I2CBus struct {
	file *os.File
}

// OpenI2C opens an i2c-dev device (e.g. /dev/i2c-1) bound to addr.
func OpenI2C(path string, addr uint16) (*I2CBus, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}
	if err = unix.IoctlSetInt(int(f.Fd()), i2cSlave, int(addr)); err != nil {
		f.Close()
		return nil, fmt.Errorf("select i2c address 0x%02x on %s: %w", addr, path, err)
	}
	return &I2CBus{file: f}, nil
}

// Open opens the chip at addr on an i2c-dev device.
func Open(path string, addr uint16) (*Device, error) {
	bus, err := OpenI2C(path, addr)
	if err != nil {
		return nil, err
	}
	return New(bus), nil
}

// ReadReg implements Bus.
func (b *I2CBus) ReadReg(reg byte) (byte, error) {
	if _, err := b.file.Write([]byte{reg}); err != nil {
		return 0, err
	}
	var buf [1]byte
	if _, err := b.file.Read(buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

// WriteReg implements Bus.
func (b *I2CBus) WriteReg(reg, val byte) error {
	_, err := b.file.Write([]byte{reg, val})
	return err
}

// Close implements io.Closer.
func (b *I2CBus) Close() error {
	return b.file.Close()
}
