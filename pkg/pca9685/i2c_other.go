//go:build !linux

package pca9685

import "errors"

// Open always fails: i2c-dev is Linux only.
func Open(path string, addr uint16) (*Device, error) {
	return nil, errors.New("pca9685: i2c-dev is only supported on linux")
}
