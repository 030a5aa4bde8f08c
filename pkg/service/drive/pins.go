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

package drive

import (
	"context"
	"math"

	"github.com/pkg/errors"

	"github.com/binkynet/L298Worker/model"
	"github.com/binkynet/L298Worker/pkg/l298"
	"github.com/binkynet/L298Worker/pkg/service/bridge"
	"github.com/binkynet/L298Worker/pkg/service/devices"
)

// digitalPin is a single GPIO pin used as l298.DigitalOutput or
// as an input (button).
type digitalPin struct {
	dev    devices.GPIO
	index  model.DeviceIndex
	invert bool
}

var _ l298.DigitalOutput = &digitalPin{}

// newDigitalPin looks up the GPIO device of the given pin and
// sets the direction of the pin.
func newDigitalPin(ctx context.Context, devService devices.Service, pin model.Pin, direction devices.PinDirection) (*digitalPin, error) {
	dev, found := devService.DeviceByID(pin.DeviceID)
	if !found {
		return nil, errors.Wrapf(model.ValidationError, "device '%s' not found or not configured", pin.DeviceID)
	}
	gpio, ok := dev.(devices.GPIO)
	if !ok {
		return nil, errors.Wrapf(model.ValidationError, "device '%s' is not a GPIO device", pin.DeviceID)
	}
	if uint(pin.Index) > gpio.PinCount() {
		return nil, errors.Wrapf(model.ValidationError, "pin %d is out of range for device '%s'", pin.Index, pin.DeviceID)
	}
	if err := gpio.SetDirection(ctx, pin.Index, direction); err != nil {
		return nil, errors.Wrapf(err, "SetDirection(%s:%d) failed", pin.DeviceID, pin.Index)
	}
	return &digitalPin{
		dev:    gpio,
		index:  pin.Index,
		invert: pin.Invert,
	}, nil
}

// Set the logical value of the pin.
func (p *digitalPin) Set(ctx context.Context, value bool) error {
	return p.dev.Set(ctx, p.index, value != p.invert)
}

// Get the logical value of the pin.
func (p *digitalPin) Get(ctx context.Context) (bool, error) {
	value, err := p.dev.Get(ctx, p.index)
	if err != nil {
		return false, err
	}
	return value != p.invert, nil
}

// pwmChannel is a single output of a PWM device used as l298.PWMOutput.
type pwmChannel struct {
	dev    devices.PWM
	index  model.DeviceIndex
	invert bool
}

var _ l298.PWMOutput = &pwmChannel{}

// newPWMChannel looks up the PWM device of the given pin.
func newPWMChannel(devService devices.Service, pin model.Pin) (*pwmChannel, error) {
	dev, found := devService.DeviceByID(pin.DeviceID)
	if !found {
		return nil, errors.Wrapf(model.ValidationError, "device '%s' not found or not configured", pin.DeviceID)
	}
	pwm, ok := dev.(devices.PWM)
	if !ok {
		return nil, errors.Wrapf(model.ValidationError, "device '%s' is not a PWM device", pin.DeviceID)
	}
	if int(pin.Index) > pwm.OutputCount() {
		return nil, errors.Wrapf(model.ValidationError, "output %d is out of range for device '%s'", pin.Index, pin.DeviceID)
	}
	return &pwmChannel{
		dev:    pwm,
		index:  pin.Index,
		invert: pin.Invert,
	}, nil
}

// SetDuty sets the duty cycle (0..1) of the output.
func (p *pwmChannel) SetDuty(ctx context.Context, duty float64) error {
	if p.invert {
		duty = 1 - duty
	}
	maxValue := p.dev.MaxValue()
	switch {
	case duty <= 0:
		return p.dev.Set(ctx, p.index, 0, 0, false)
	case duty >= 1:
		return p.dev.Set(ctx, p.index, 0, maxValue+1, true)
	default:
		off := uint32(math.Round(duty * float64(maxValue+1)))
		return p.dev.Set(ctx, p.index, 0, off, true)
	}
}

// statusIndicator turns the status LEDs of the bridge off
// when a motor comes to a halt.
type statusIndicator struct {
	bridge bridge.API
}

var _ l298.Indicator = statusIndicator{}

// Clear turns all status LEDs off.
func (i statusIndicator) Clear(ctx context.Context) error {
	for _, color := range bridge.AllLEDColors {
		led, err := i.bridge.StatusLED(color)
		if err != nil {
			continue
		}
		if err := led.Set(false); err != nil {
			return errors.Wrapf(err, "failed to clear %s led", color)
		}
	}
	return nil
}
