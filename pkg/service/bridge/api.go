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
	"time"
)

// API of the bridge, the board that the worker runs on.
// It gives access to the status LEDs, the local GPIO header
// and the I2C bus.
type API interface {
	// StatusLED returns the status LED with given color.
	StatusLED(color LEDColor) (StatusLED, error)

	// Open the I2C bus
	I2CBus() (I2CBus, error)

	// Returns number of local pins
	PinCount() int
	// Input initializes a GPIO input pin with the given pin number.
	Input(pinNumber int, activeLow bool) (InputPin, error)
	// Output initializes a GPIO output pin with the given pin number
	// and initial logical value.
	Output(pinNumber int, activeLow bool, initialValue bool) (OutputPin, error)

	// Close the bridge and all resources opened by it.
	Close() error
}

// LEDColor identifies a status LED.
type LEDColor string

const (
	LEDGreen LEDColor = "green"
	LEDRed   LEDColor = "red"
)

// AllLEDColors contains all colors of status LEDs.
var AllLEDColors = []LEDColor{LEDGreen, LEDRed}

// StatusLED is a single status LED on the bridge.
type StatusLED interface {
	// Set turns the LED on/off and stops blinking.
	Set(on bool) error
	// Blink the LED with given duration between on/off.
	Blink(delay time.Duration) error
}

// InputPin is the interface satisfied by GPIO input pins.
type InputPin interface {
	Read() (bool, error)
}

// OutputPin is the interface satisfied by GPIO output pins.
type OutputPin interface {
	Write(bool) error
}
