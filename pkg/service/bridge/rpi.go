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
	"sync"

	"github.com/ecc1/gpio"
	"github.com/pkg/errors"
)

const (
	greenLedPin = 23
	redLedPin   = 24
	rpiI2CBus   = "/dev/i2c-1"
	rpiPinCount = 27 // BCM GPIO 1..27
)

type piBridge struct {
	mutex sync.Mutex
	leds  map[LEDColor]*blinkingLED
	bus   I2CBus
}

// NewRaspberryPiBridge implements the bridge for Raspberry PI's
func NewRaspberryPiBridge() (API, error) {
	activeLow := true
	initialValue := false
	leds := make(map[LEDColor]*blinkingLED)
	for color, pinNr := range map[LEDColor]int{LEDGreen: greenLedPin, LEDRed: redLedPin} {
		pin, err := gpio.Output(pinNr, activeLow, initialValue)
		if err != nil {
			return nil, errors.Wrapf(err, "Output[%s led] failed", color)
		}
		leds[color] = &blinkingLED{pin: pin}
	}
	return &piBridge{
		leds: leds,
	}, nil
}

// StatusLED returns the status LED with given color.
func (p *piBridge) StatusLED(color LEDColor) (StatusLED, error) {
	if led, found := p.leds[color]; found {
		return led, nil
	}
	return nil, errors.Errorf("no %s status led", color)
}

// Returns number of local pins
func (p *piBridge) PinCount() int {
	return rpiPinCount
}

// Input initializes a GPIO input pin with the given pin number.
func (p *piBridge) Input(pinNumber int, activeLow bool) (InputPin, error) {
	return gpio.Input(pinNumber, activeLow)
}

// Output initializes a GPIO output pin with the given pin number
// and initial logical value.
func (p *piBridge) Output(pinNumber int, activeLow bool, initialValue bool) (OutputPin, error) {
	return gpio.Output(pinNumber, activeLow, initialValue)
}

// Open the I2C bus
func (p *piBridge) I2CBus() (I2CBus, error) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.bus == nil {
		p.bus = NewI2CBus(rpiI2CBus)
	}
	return p.bus, nil
}

func (p *piBridge) Close() error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	for _, led := range p.leds {
		led.Set(false)
	}
	if p.bus != nil {
		bus := p.bus
		p.bus = nil
		if err := bus.Close(); err != nil {
			return errors.Wrap(err, "Close failed")
		}
	}
	return nil
}
