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

	"github.com/binkynet/L298Worker/model"
)

// Device contains the API that is supported by all types of devices.
type Device interface {
	// Configure is called once to put the device in the desired state.
	Configure(ctx context.Context) error
	// Close brings the device back to a safe state.
	Close(ctx context.Context) error
}

// PinDirection is the direction of a GPIO pin.
type PinDirection byte

const (
	PinDirectionInput PinDirection = iota
	PinDirectionOutput
)

// GPIO contains the API that is supported by all general purpose I/O devices.
type GPIO interface {
	Device
	// PinCount returns the number of pins of the device
	PinCount() uint
	// Set the direction of the pin at given index (1...)
	SetDirection(ctx context.Context, pin model.DeviceIndex, direction PinDirection) error
	// Set the pin at given index (1...) to the given value
	Set(ctx context.Context, pin model.DeviceIndex, value bool) error
	// Get the value of the pin at given index (1...)
	Get(ctx context.Context, pin model.DeviceIndex) (bool, error)
}

// PWM contains the API that is supported by all pulse width modulation devices.
type PWM interface {
	Device
	// OutputCount returns the number of pwm outputs of the device
	OutputCount() int
	// MaxValue returns the maximum valid value for onValue or offValue.
	MaxValue() uint32
	// Set the output at given index (1...) to the given value.
	// An offValue above MaxValue turns the output fully on,
	// enabled=false turns the output fully off.
	Set(ctx context.Context, output model.DeviceIndex, onValue, offValue uint32, enabled bool) error
	// Get the output at given index (1...)
	// Returns onValue,offValue,enabled,error
	Get(ctx context.Context, output model.DeviceIndex) (uint32, uint32, bool, error)
}
