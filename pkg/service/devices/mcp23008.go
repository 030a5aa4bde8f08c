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

package devices

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/binkynet/L298Worker/model"
	"github.com/binkynet/L298Worker/pkg/service/bridge"
)

type mcp23008 struct {
	mutex    sync.Mutex
	onActive func()
	config   model.Device
	bus      bridge.I2CBus
	address  uint8
	iodir    uint8
	olat     uint8
}

const (
	// Register addresses
	mcp23008RegIODIR = 0x00
	mcp23008RegIOCON = 0x05
	mcp23008RegGPIO  = 0x09
	mcp23008RegOLAT  = 0x0a

	mcp23008PinCount = 8
)

// newMcp23008 creates a GPIO instance for a mcp23008 device with given config.
func newMcp23008(config model.Device, bus bridge.I2CBus, onActive func()) (GPIO, error) {
	if config.Type != model.DeviceTypeMCP23008 {
		return nil, model.InvalidArgument("Invalid device type '%s'", string(config.Type))
	}
	address, err := parseAddress(config.Address)
	if err != nil {
		return nil, err
	}
	return &mcp23008{
		onActive: onActive,
		config:   config,
		bus:      bus,
		address:  address,
		iodir:    0xff,
	}, nil
}

// Configure is called once to put the device in the desired state.
func (d *mcp23008) Configure(ctx context.Context) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.onActive()
	return d.bus.Execute(ctx, d.address, func(ctx context.Context, dev bridge.I2CDevice) error {
		// Sequential operation disabled
		if err := dev.WriteByteReg(mcp23008RegIOCON, 0x20); err != nil {
			return err
		}
		d.olat = 0
		if err := dev.WriteByteReg(mcp23008RegOLAT, d.olat); err != nil {
			return err
		}
		d.iodir = 0xff
		return dev.WriteByteReg(mcp23008RegIODIR, d.iodir)
	})
}

// Close brings the device back to a safe state.
func (d *mcp23008) Close(ctx context.Context) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.onActive()
	return d.bus.Execute(ctx, d.address, func(ctx context.Context, dev bridge.I2CDevice) error {
		// Restore all to input
		d.iodir = 0xff
		return dev.WriteByteReg(mcp23008RegIODIR, d.iodir)
	})
}

// PinCount returns the number of pins of the device
func (d *mcp23008) PinCount() uint {
	return mcp23008PinCount
}

// Set the direction of the pin at given index (1...)
func (d *mcp23008) SetDirection(ctx context.Context, pin model.DeviceIndex, direction PinDirection) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	mask, err := d.bitMask(pin)
	if err != nil {
		return err
	}
	iodir := d.iodir
	switch direction {
	case PinDirectionInput:
		iodir |= mask
	case PinDirectionOutput:
		iodir &= ^mask
	default:
		return errors.Wrapf(InvalidDirectionError, "unknown direction %d", direction)
	}
	d.onActive()
	if err := d.bus.Execute(ctx, d.address, func(ctx context.Context, dev bridge.I2CDevice) error {
		return dev.WriteByteReg(mcp23008RegIODIR, iodir)
	}); err != nil {
		return err
	}
	d.iodir = iodir
	return nil
}

// Set the pin at given index (1...) to the given value
func (d *mcp23008) Set(ctx context.Context, pin model.DeviceIndex, value bool) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	mask, err := d.bitMask(pin)
	if err != nil {
		return err
	}
	if d.iodir&mask != 0 {
		return errors.Wrapf(InvalidDirectionError, "pin %d has direction input", pin)
	}
	olat := d.olat
	if value {
		olat |= mask
	} else {
		olat &= ^mask
	}
	d.onActive()
	if err := d.bus.Execute(ctx, d.address, func(ctx context.Context, dev bridge.I2CDevice) error {
		return dev.WriteByteReg(mcp23008RegOLAT, olat)
	}); err != nil {
		return err
	}
	d.olat = olat
	return nil
}

// Get the value of the pin at given index (1...)
func (d *mcp23008) Get(ctx context.Context, pin model.DeviceIndex) (bool, error) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	mask, err := d.bitMask(pin)
	if err != nil {
		return false, err
	}
	var value uint8
	if err := d.bus.Execute(ctx, d.address, func(ctx context.Context, dev bridge.I2CDevice) error {
		var err error
		value, err = dev.ReadByteReg(mcp23008RegGPIO)
		return err
	}); err != nil {
		return false, err
	}
	return mask&value != 0, nil
}

// bitMask returns a byte with only the bit for the given pin set.
func (d *mcp23008) bitMask(pin model.DeviceIndex) (uint8, error) {
	if pin < 1 || pin > mcp23008PinCount {
		return 0, errors.Wrapf(InvalidPinError, "Pin must be between 1 and %d, got %d", mcp23008PinCount, pin)
	}
	return 1 << uint(pin-1), nil
}
