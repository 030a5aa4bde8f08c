// Copyright 2026 Ewout Prangsma
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// Author Ewout Prangsma
//

package bridge

import (
	"os"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

const (
	// From  /usr/include/linux/i2c-dev.h:
	// ioctl signals
	I2C_SLAVE = 0x0703
	I2C_FUNCS = 0x0705
	I2C_SMBUS = 0x0720
	// Read/write markers
	I2C_SMBUS_READ  = 1
	I2C_SMBUS_WRITE = 0

	// From  /usr/include/linux/i2c.h:
	// Adapter functionality
	I2C_FUNC_SMBUS_QUICK           = 0x00010000
	I2C_FUNC_SMBUS_READ_BYTE_DATA  = 0x00080000
	I2C_FUNC_SMBUS_WRITE_BYTE_DATA = 0x00100000

	// Transaction types
	I2C_SMBUS_QUICK     = 0
	I2C_SMBUS_BYTE_DATA = 2
)

type i2cSmbusIoctlData struct {
	readWrite byte
	command   byte
	size      uint32
	data      uintptr
}

// i2cDevice is an open handle to a single address on the bus.
// It is only used from the queue processor of the bus.
type i2cDevice struct {
	address uint8
	file    *os.File
	funcs   uint64 // adapter functionality mask
}

// newI2CDevice opens the I2C bus at the given location, bound to given address.
func newI2CDevice(location string, address uint8) (*i2cDevice, error) {
	f, err := os.OpenFile(location, os.O_RDWR, os.ModeDevice)
	if err != nil {
		return nil, err
	}
	d := &i2cDevice{
		address: address,
		file:    f,
	}
	if err := d.ioctl(I2C_FUNCS, uintptr(unsafe.Pointer(&d.funcs))); err != nil {
		f.Close()
		return nil, errors.Wrap(err, "query functionality failed")
	}
	if err := d.ioctl(I2C_SLAVE, uintptr(address)); err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "setting address 0x%x failed", address)
	}
	return d, nil
}

func (d *i2cDevice) closeFile() error {
	return d.file.Close()
}

// detect the presence of the device with an SMBus quick write.
func (d *i2cDevice) detect() error {
	if d.funcs&I2C_FUNC_SMBUS_QUICK == 0 {
		return errors.New("SMBus quick not supported")
	}
	return d.smbusAccess(I2C_SMBUS_WRITE, 0, I2C_SMBUS_QUICK, 0)
}

// ReadByteReg reads a byte from given register.
func (d *i2cDevice) ReadByteReg(reg uint8) (uint8, error) {
	if d.funcs&I2C_FUNC_SMBUS_READ_BYTE_DATA == 0 {
		return 0, errors.New("SMBus read byte data not supported")
	}
	var data uint8
	if err := d.smbusAccess(I2C_SMBUS_READ, reg, I2C_SMBUS_BYTE_DATA, uintptr(unsafe.Pointer(&data))); err != nil {
		return 0, errors.Wrapf(err, "readByteData[0x%0x](0x%0x) failed", d.address, reg)
	}
	return data, nil
}

// WriteByteReg writes a byte to given register.
func (d *i2cDevice) WriteByteReg(reg uint8, val uint8) error {
	if d.funcs&I2C_FUNC_SMBUS_WRITE_BYTE_DATA == 0 {
		return errors.New("SMBus write byte data not supported")
	}
	data := val
	if err := d.smbusAccess(I2C_SMBUS_WRITE, reg, I2C_SMBUS_BYTE_DATA, uintptr(unsafe.Pointer(&data))); err != nil {
		return errors.Wrapf(err, "writeByteData[0x%0x](0x%0x, 0x%0x) failed", d.address, reg, val)
	}
	return nil
}

func (d *i2cDevice) smbusAccess(readWrite byte, command byte, size uint32, data uintptr) error {
	smbus := &i2cSmbusIoctlData{
		readWrite: readWrite,
		command:   command,
		size:      size,
		data:      data,
	}
	return d.ioctl(I2C_SMBUS, uintptr(unsafe.Pointer(smbus)))
}

func (d *i2cDevice) ioctl(req, arg uintptr) error {
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, d.file.Fd(), req, arg); errno != 0 {
		return errors.Wrapf(errno, "ioctl 0x%x failed", req)
	}
	return nil
}
