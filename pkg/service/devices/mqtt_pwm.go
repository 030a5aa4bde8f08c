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
	"strconv"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/binkynet/L298Worker/model"
)

const (
	mqttPWMOutputCount = 16
	mqttPWMMaxValue    = 4095
)

type mqttPWMValue struct {
	on, off uint32
	enabled bool
}

type mqttPWM struct {
	mqttConnection
	values [mqttPWMOutputCount]mqttPWMValue
}

// newMQTTPWM creates a virtual PWM device that publishes output
// changes to an MQTT broker.
func newMQTTPWM(log zerolog.Logger, config model.Device, broker model.MQTTConfig, onActive func()) (PWM, error) {
	if config.Type != model.DeviceTypeMQTTPWM {
		return nil, model.InvalidArgument("Invalid device type '%s'", string(config.Type))
	}
	d := &mqttPWM{}
	d.setup(log, config, broker, onActive)
	return d, nil
}

// Configure is called once to put the device in the desired state.
func (d *mqttPWM) Configure(ctx context.Context) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return d.connect()
}

// Close brings the device back to a safe state.
func (d *mqttPWM) Close(ctx context.Context) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.disconnect()
	return nil
}

// OutputCount returns the number of pwm outputs of the device
func (d *mqttPWM) OutputCount() int {
	return mqttPWMOutputCount
}

// MaxValue returns the maximum valid value for onValue or offValue.
func (d *mqttPWM) MaxValue() uint32 {
	return mqttPWMMaxValue
}

// Set the output at given index (1...) to the given value.
// The published payload is "OFF", "ON" or the number of active steps.
func (d *mqttPWM) Set(ctx context.Context, output model.DeviceIndex, onValue, offValue uint32, enabled bool) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if err := d.checkOutput(output); err != nil {
		return err
	}
	value := mqttPWMValue{on: onValue, off: offValue, enabled: enabled}
	if err := d.publish(mqttPWMTopic(output), formatPWMPayload(value)); err != nil {
		return err
	}
	d.values[output-1] = value
	return nil
}

// Get the output at given index (1...)
func (d *mqttPWM) Get(ctx context.Context, output model.DeviceIndex) (uint32, uint32, bool, error) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if err := d.checkOutput(output); err != nil {
		return 0, 0, false, err
	}
	v := d.values[output-1]
	return v.on, v.off, v.enabled, nil
}

func (d *mqttPWM) checkOutput(output model.DeviceIndex) error {
	if output < 1 || output > mqttPWMOutputCount {
		return errors.Wrapf(InvalidPinError, "Output must be in 1..%d range, got %d", mqttPWMOutputCount, output)
	}
	return nil
}

func formatPWMPayload(v mqttPWMValue) string {
	switch {
	case !v.enabled:
		return formatBool(false)
	case v.off > mqttPWMMaxValue:
		return formatBool(true)
	case v.off >= v.on:
		return strconv.FormatUint(uint64(v.off-v.on), 10)
	default:
		return strconv.FormatUint(uint64(mqttPWMMaxValue+1-v.on+v.off), 10)
	}
}
