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

// mcp23017 has 2 ports (A=pins 1-8, B=pins 9-16).
// Registers are addressed with IOCON.BANK=0.
type mcp23017 struct {
	mutex    sync.Mutex
	onActive func()
	config   model.Device
	bus      bridge.I2CBus
	address  uint8
	iodir    [2]uint8
	olat     [2]uint8
}

const (
	// Register addresses of port A, port B is at +1
	mcp23017RegIODIR = 0x00
	mcp23017RegIOCON = 0x0a
	mcp23017RegGPIO  = 0x12
	mcp23017RegOLAT  = 0x14

	mcp23017PinCount = 16
)

// newMcp23017 creates a GPIO instance for a mcp23017 device with given config.
func newMcp23017(config model.Device, bus bridge.I2CBus, onActive func()) (GPIO, error) {
	if config.Type != model.DeviceTypeMCP23017 {
		return nil, model.InvalidArgument("Invalid device type '%s'", string(config.Type))
	}
	address, err := parseAddress(config.Address)
	if err != nil {
		return nil, err
	}
	return &mcp23017{
		onActive: onActive,
		config:   config,
		bus:      bus,
		address:  address,
		iodir:    [2]uint8{0xff, 0xff},
	}, nil
}

// Configure is called once to put the device in the desired state.
func (d *mcp23017) Configure(ctx context.Context) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.onActive()
	return d.bus.Execute(ctx, d.address, func(ctx context.Context, dev bridge.I2CDevice) error {
		// BANK=0, sequential operation disabled
		if err := dev.WriteByteReg(mcp23017RegIOCON, 0x20); err != nil {
			return err
		}
		for port := range d.iodir {
			d.olat[port] = 0
			if err := dev.WriteByteReg(uint8(mcp23017RegOLAT+port), 0); err != nil {
				return err
			}
			d.iodir[port] = 0xff
			if err := dev.WriteByteReg(uint8(mcp23017RegIODIR+port), 0xff); err != nil {
				return err
			}
		}
		return nil
	})
}

// Close brings the device back to a safe state.
func (d *mcp23017) Close(ctx context.Context) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.onActive()
	return d.bus.Execute(ctx, d.address, func(ctx context.Context, dev bridge.I2CDevice) error {
		// Restore all to input
		for port := range d.iodir {
			d.iodir[port] = 0xff
			if err := dev.WriteByteReg(uint8(mcp23017RegIODIR+port), 0xff); err != nil {
				return err
			}
		}
		return nil
	})
}

// PinCount returns the number of pins of the device
func (d *mcp23017) PinCount() uint {
	return mcp23017PinCount
}

// Set the direction of the pin at given index (1...)
func (d *mcp23017) SetDirection(ctx context.Context, pin model.DeviceIndex, direction PinDirection) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	port, mask, err := d.portMask(pin)
	if err != nil {
		return err
	}
	iodir := d.iodir[port]
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
		return dev.WriteByteReg(uint8(mcp23017RegIODIR+port), iodir)
	}); err != nil {
		return err
	}
	d.iodir[port] = iodir
	return nil
}

// Set the pin at given index (1...) to the given value
func (d *mcp23017) Set(ctx context.Context, pin model.DeviceIndex, value bool) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	port, mask, err := d.portMask(pin)
	if err != nil {
		return err
	}
	if d.iodir[port]&mask != 0 {
		return errors.Wrapf(InvalidDirectionError, "pin %d has direction input", pin)
	}
	olat := d.olat[port]
	if value {
		olat |= mask
	} else {
		olat &= ^mask
	}
	d.onActive()
	if err := d.bus.Execute(ctx, d.address, func(ctx context.Context, dev bridge.I2CDevice) error {
		return dev.WriteByteReg(uint8(mcp23017RegOLAT+port), olat)
	}); err != nil {
		return err
	}
	d.olat[port] = olat
	return nil
}

// Get the value of the pin at given index (1...)
func (d *mcp23017) Get(ctx context.Context, pin model.DeviceIndex) (bool, error) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	port, mask, err := d.portMask(pin)
	if err != nil {
		return false, err
	}
	var value uint8
	if err := d.bus.Execute(ctx, d.address, func(ctx context.Context, dev bridge.I2CDevice) error {
		var err error
		value, err = dev.ReadByteReg(uint8(mcp23017RegGPIO + port))
		return err
	}); err != nil {
		return false, err
	}
	return mask&value != 0, nil
}

// portMask returns the port (0=A, 1=B) and bit mask of the given pin.
func (d *mcp23017) portMask(pin model.DeviceIndex) (int, uint8, error) {
	if pin < 1 || pin > mcp23017PinCount {
		return 0, 0, errors.Wrapf(InvalidPinError, "Pin must be between 1 and %d, got %d", mcp23017PinCount, pin)
	}
	index := int(pin - 1)
	return index / 8, 1 << uint(index%8), nil
}
