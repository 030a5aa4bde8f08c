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
	"math"
	"sync"

	"github.com/pkg/errors"

	"github.com/binkynet/L298Worker/model"
	"github.com/binkynet/L298Worker/pkg/service/bridge"
)

type pca9685 struct {
	mutex    sync.Mutex
	onActive func()
	config   model.Device
	bus      bridge.I2CBus
	address  uint8
}

const (
	pca9685MODE1Reg      = 0x00
	pca9685LEDBaseReg    = 0x06
	pca9685PRESCALEReg   = 0xFE
	pca9685OnLowRegOfs   = 0
	pca9685OnHighRegOfs  = 1
	pca9685OffLowRegOfs  = 2
	pca9685OffHighRegOfs = 3
	pca9685RegIncrement  = 4

	pca9685OutputCount = 16
	pca9685MaxValue    = 4095
	pca9685FullBit     = 0b00010000
	pca9685Oscillator  = 25000000.0
	// 50Hz gives a 20ms period, so each percent of duty cycle
	// equals 200us of pulse width.
	pca9685Frequency = 50.0
)

// newPCA9685 creates a PWM instance for a pca9685 device with given config.
func newPCA9685(config model.Device, bus bridge.I2CBus, onActive func()) (PWM, error) {
	if config.Type != model.DeviceTypePCA9685 {
		return nil, model.InvalidArgument("Invalid device type '%s'", string(config.Type))
	}
	address, err := parseAddress(config.Address)
	if err != nil {
		return nil, err
	}
	return &pca9685{
		onActive: onActive,
		config:   config,
		bus:      bus,
		address:  address,
	}, nil
}

// pca9685Prescale returns the prescale register value for the given frequency.
func pca9685Prescale(freq float64) uint8 {
	prescaleval := pca9685Oscillator
	prescaleval /= 4096
	prescaleval /= freq
	prescaleval -= 1.0
	return uint8(math.Floor(prescaleval + 0.5))
}

// Configure is called once to put the device in the desired state.
func (d *pca9685) Configure(ctx context.Context) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	prescale := pca9685Prescale(pca9685Frequency)
	d.onActive()
	return d.bus.Execute(ctx, d.address, func(ctx context.Context, dev bridge.I2CDevice) error {
		// Set MODE1: SLEEP=1, ALLCALL=1
		if err := dev.WriteByteReg(pca9685MODE1Reg, 0x11); err != nil {
			return err
		}
		if err := dev.WriteByteReg(pca9685PRESCALEReg, prescale); err != nil {
			return err
		}
		// All outputs fully off
		for output := 1; output <= pca9685OutputCount; output++ {
			regBase := pca9685LEDBaseReg + (output-1)*pca9685RegIncrement
			if err := dev.WriteByteReg(uint8(regBase+pca9685OffHighRegOfs), pca9685FullBit); err != nil {
				return err
			}
		}
		// Set MODE1: SLEEP=0, ALLCALL=1
		return dev.WriteByteReg(pca9685MODE1Reg, 0x01)
	})
}

// Close brings the device back to a safe state.
func (d *pca9685) Close(ctx context.Context) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.onActive()
	return d.bus.Execute(ctx, d.address, func(ctx context.Context, dev bridge.I2CDevice) error {
		// Set MODE1: SLEEP=1, ALLCALL=1
		return dev.WriteByteReg(pca9685MODE1Reg, 0x11)
	})
}

// OutputCount returns the number of pwm outputs of the device
func (d *pca9685) OutputCount() int {
	return pca9685OutputCount
}

// MaxValue returns the maximum valid value for onValue or offValue.
func (d *pca9685) MaxValue() uint32 {
	return pca9685MaxValue
}

// Set the output at given index (1...) to the given value
func (d *pca9685) Set(ctx context.Context, output model.DeviceIndex, onValue, offValue uint32, enabled bool) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	regBase, err := d.regBase(output)
	if err != nil {
		return err
	}
	onHigh := uint8((onValue >> 8) & 0x0F)
	offHigh := uint8((offValue >> 8) & 0x0F)
	switch {
	case !enabled:
		offHigh |= pca9685FullBit
	case offValue > pca9685MaxValue:
		onHigh |= pca9685FullBit
		offHigh = 0
	}
	d.onActive()
	return d.bus.Execute(ctx, d.address, func(ctx context.Context, dev bridge.I2CDevice) error {
		if err := dev.WriteByteReg(uint8(regBase+pca9685OnLowRegOfs), uint8(onValue&0xFF)); err != nil {
			return err
		}
		if err := dev.WriteByteReg(uint8(regBase+pca9685OnHighRegOfs), onHigh); err != nil {
			return err
		}
		if err := dev.WriteByteReg(uint8(regBase+pca9685OffLowRegOfs), uint8(offValue&0xFF)); err != nil {
			return err
		}
		return dev.WriteByteReg(uint8(regBase+pca9685OffHighRegOfs), offHigh)
	})
}

// Get the output at given index (1...)
func (d *pca9685) Get(ctx context.Context, output model.DeviceIndex) (uint32, uint32, bool, error) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	regBase, err := d.regBase(output)
	if err != nil {
		return 0, 0, false, err
	}
	var regs [4]uint8
	if err := d.bus.Execute(ctx, d.address, func(ctx context.Context, dev bridge.I2CDevice) error {
		for i := range regs {
			v, err := dev.ReadByteReg(uint8(regBase + i))
			if err != nil {
				return err
			}
			regs[i] = v
		}
		return nil
	}); err != nil {
		return 0, 0, false, err
	}
	on := uint32(regs[pca9685OnLowRegOfs]) | (uint32(regs[pca9685OnHighRegOfs]&0x0F) << 8)
	off := uint32(regs[pca9685OffLowRegOfs]) | (uint32(regs[pca9685OffHighRegOfs]&0x0F) << 8)
	if regs[pca9685OnHighRegOfs]&pca9685FullBit != 0 {
		off = pca9685MaxValue + 1
	}
	enabled := regs[pca9685OffHighRegOfs]&pca9685FullBit == 0
	return on, off, enabled, nil
}

// regBase returns the first register for the given output.
func (d *pca9685) regBase(output model.DeviceIndex) (int, error) {
	if output < 1 || output > pca9685OutputCount {
		return 0, errors.Wrapf(InvalidPinError, "Output must be in 1..%d range, got %d", pca9685OutputCount, output)
	}
	return pca9685LEDBaseReg + ((int(output) - 1) * pca9685RegIncrement), nil
}
