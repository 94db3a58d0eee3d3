//go:build linux

package device

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// ioctl requests from linux/joystick.h.
const (
	jsIOCGAXES    = 0x80016a11
	jsIOCGBUTTONS = 0x80016a12
	jsIOCGNAME    = 0x80ff6a13 // JSIOCGNAME(255)
)

type joystick struct {
	file    *os.File
	index   int
	name    string
	axes    uint8
	buttons uint8
}

// Open opens /dev/input/js<index>.
func Open(index int) (Device, error) {
	f, err := os.OpenFile(Path(index), os.O_RDONLY, 0)
	if err != nil {
		return nil, err
	}
	js := &joystick{file: f, index: index}
	var name [255]byte
	if err = js.ioctl(jsIOCGAXES, unsafe.Pointer(&js.axes)); err == nil {
		if err = js.ioctl(jsIOCGBUTTONS, unsafe.Pointer(&js.buttons)); err == nil {
			err = js.ioctl(jsIOCGNAME, unsafe.Pointer(&name[0]))
		}
	}
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", Path(index), err)
	}
	if pos := bytes.IndexByte(name[:], 0); pos >= 0 {
		js.name = string(name[:pos])
	} else {
		js.name = string(name[:])
	}
	return js, nil
}

// Detect opens the first available device at or after startIndex. It
// returns os.ErrNotExist if none is present.
func Detect(startIndex int) (Device, error) {
	for index := startIndex; index < 32; index++ {
		js, err := Open(index)
		if os.IsNotExist(err) {
			continue
		}
		return js, err
	}
	return nil, os.ErrNotExist
}

func (j *joystick) Close() error     { return j.file.Close() }
func (j *joystick) Index() int       { return j.index }
func (j *joystick) Name() string     { return j.name }
func (j *joystick) AxisCount() int   { return int(j.axes) }
func (j *joystick) ButtonCount() int { return int(j.buttons) }

func (j *joystick) ReadEvent() (Event, error) {
	var buf [EventSize]byte
	if _, err := io.ReadFull(j.file, buf[:]); err != nil {
		return nil, err
	}
	return DecodeEvent(buf[:])
}

func (j *joystick) ioctl(req uintptr, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, j.file.Fd(), req, uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}
