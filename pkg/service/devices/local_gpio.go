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

type localGPIO struct {
	mutex    sync.Mutex
	onActive func()
	config   model.Device
	api      bridge.API
	inputs   []bridge.InputPin
	outputs  []bridge.OutputPin
}

// newLocalGPIO creates a GPIO instance for the GPIO header of the bridge.
func newLocalGPIO(config model.Device, api bridge.API, onActive func()) (GPIO, error) {
	if config.Type != model.DeviceTypeGPIO {
		return nil, model.InvalidArgument("Invalid device type '%s'", string(config.Type))
	}
	return &localGPIO{
		onActive: onActive,
		config:   config,
		api:      api,
	}, nil
}

// Configure is called once to put the device in the desired state.
func (d *localGPIO) Configure(ctx context.Context) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.onActive()
	d.inputs = make([]bridge.InputPin, d.PinCount())
	d.outputs = make([]bridge.OutputPin, d.PinCount())
	return nil
}

// Close brings the device back to a safe state.
func (d *localGPIO) Close(ctx context.Context) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.onActive()
	for _, p := range d.outputs {
		if p != nil {
			p.Write(false)
		}
	}
	d.inputs = nil
	d.outputs = nil
	return nil
}

// PinCount returns the number of pins of the device
func (d *localGPIO) PinCount() uint {
	return uint(d.api.PinCount())
}

// Set the direction of the pin at given index (1...)
func (d *localGPIO) SetDirection(ctx context.Context, pin model.DeviceIndex, direction PinDirection) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	index, err := d.index(pin)
	if err != nil {
		return err
	}
	d.onActive()
	switch direction {
	case PinDirectionInput:
		p, err := d.api.Input(int(pin), false)
		if err != nil {
			return errors.Wrapf(err, "Input(%d) failed", pin)
		}
		d.inputs[index] = p
		d.outputs[index] = nil
	case PinDirectionOutput:
		p, err := d.api.Output(int(pin), false, false)
		if err != nil {
			return errors.Wrapf(err, "Output(%d) failed", pin)
		}
		d.inputs[index] = nil
		d.outputs[index] = p
	default:
		return errors.Wrapf(InvalidDirectionError, "unknown direction %d", direction)
	}
	return nil
}

// Set the pin at given index (1...) to the given value
func (d *localGPIO) Set(ctx context.Context, pin model.DeviceIndex, value bool) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	index, err := d.index(pin)
	if err != nil {
		return err
	}
	if p := d.outputs[index]; p != nil {
		d.onActive()
		return p.Write(value)
	}
	return errors.Wrapf(InvalidDirectionError, "pin %d does not have direction output", pin)
}

// Get the value of the pin at given index (1...)
func (d *localGPIO) Get(ctx context.Context, pin model.DeviceIndex) (bool, error) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	index, err := d.index(pin)
	if err != nil {
		return false, err
	}
	if p := d.inputs[index]; p != nil {
		return p.Read()
	}
	return false, errors.Wrapf(InvalidDirectionError, "pin %d does not have direction input", pin)
}

// index returns the 0-based index of the given pin.
// Must be called with mutex held.
func (d *localGPIO) index(pin model.DeviceIndex) (int, error) {
	if d.outputs == nil {
		return 0, errors.Errorf("device '%s' is not configured", d.config.ID)
	}
	if pin < 1 || uint(pin) > d.PinCount() {
		return 0, errors.Wrapf(InvalidPinError, "Pin must be between 1 and %d, got %d", d.PinCount(), pin)
	}
	return int(pin) - 1, nil
}
