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

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/binkynet/L298Worker/model"
)

const (
	mqttPinCount = 64
)

type mqttGPIO struct {
	mqttConnection
	direction [mqttPinCount]PinDirection
}

// newMQTTGPIO creates a virtual GPIO device that publishes pin
// changes to an MQTT broker.
func newMQTTGPIO(log zerolog.Logger, config model.Device, broker model.MQTTConfig, onActive func()) (GPIO, error) {
	if config.Type != model.DeviceTypeMQTTGPIO {
		return nil, model.InvalidArgument("Invalid device type '%s'", string(config.Type))
	}
	d := &mqttGPIO{}
	d.setup(log, config, broker, onActive)
	return d, nil
}

// Configure is called once to put the device in the desired state.
func (d *mqttGPIO) Configure(ctx context.Context) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return d.connect()
}

// Close brings the device back to a safe state.
func (d *mqttGPIO) Close(ctx context.Context) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.disconnect()
	return nil
}

// PinCount returns the number of pins of the device
func (d *mqttGPIO) PinCount() uint {
	return mqttPinCount
}

// Set the direction of the pin at given index (1...)
func (d *mqttGPIO) SetDirection(ctx context.Context, pin model.DeviceIndex, direction PinDirection) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if err := d.checkPin(pin); err != nil {
		return err
	}
	d.direction[pin-1] = direction
	return nil
}

// Set the pin at given index (1...) to the given value
func (d *mqttGPIO) Set(ctx context.Context, pin model.DeviceIndex, value bool) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if err := d.checkPin(pin); err != nil {
		return err
	}
	if d.direction[pin-1] != PinDirectionOutput {
		return errors.Wrapf(InvalidDirectionError, "pin %d does not have direction output", pin)
	}
	return d.publish(mqttPinTopic(pin), formatBool(value))
}

// Get the value of the pin at given index (1...)
func (d *mqttGPIO) Get(ctx context.Context, pin model.DeviceIndex) (bool, error) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if err := d.checkPin(pin); err != nil {
		return false, err
	}
	state, found := d.states[mqttPinTopic(pin)]
	if !found {
		return false, nil
	}
	return parseBool(state)
}

func (d *mqttGPIO) checkPin(pin model.DeviceIndex) error {
	if pin < 1 || pin > mqttPinCount {
		return errors.Wrapf(InvalidPinError, "Pin must be between 1 and %d, got %d", mqttPinCount, pin)
	}
	return nil
}
