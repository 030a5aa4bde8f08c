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
	"context"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"
)

const (
	virtualPinCount = 32
)

// VirtualBridge implements the bridge in memory.
// It is used for development on machines without GPIO/I2C and in tests.
type VirtualBridge struct {
	mutex     sync.Mutex
	pins      map[int]*virtualPin
	leds      map[LEDColor]*virtualLED
	registers map[uint8]*[256]uint8
}

var _ API = &VirtualBridge{}

// NewVirtualBridge implements the bridge for a virtual worker.
func NewVirtualBridge() *VirtualBridge {
	b := &VirtualBridge{
		pins:      make(map[int]*virtualPin),
		leds:      make(map[LEDColor]*virtualLED),
		registers: make(map[uint8]*[256]uint8),
	}
	for _, color := range AllLEDColors {
		b.leds[color] = &virtualLED{}
	}
	return b
}

// StatusLED returns the status LED with given color.
func (b *VirtualBridge) StatusLED(color LEDColor) (StatusLED, error) {
	if led, found := b.leds[color]; found {
		return led, nil
	}
	return nil, errors.Errorf("no %s status led", color)
}

// LEDState returns the on and blinking state of the status LED
// with given color.
func (b *VirtualBridge) LEDState(color LEDColor) (on, blinking bool) {
	if led, found := b.leds[color]; found {
		led.mutex.Lock()
		defer led.mutex.Unlock()
		return led.on, led.blinking
	}
	return false, false
}

// Returns number of local pins
func (b *VirtualBridge) PinCount() int {
	return virtualPinCount
}

// Input initializes a GPIO input pin with the given pin number.
// Pins that have never been driven are pulled up.
func (b *VirtualBridge) Input(pinNumber int, activeLow bool) (InputPin, error) {
	p, err := b.pin(pinNumber)
	if err != nil {
		return nil, err
	}
	b.mutex.Lock()
	if !p.driven {
		p.level = true
	}
	p.output = false
	b.mutex.Unlock()
	return &virtualInput{bridge: b, pin: p, activeLow: activeLow}, nil
}

// Output initializes a GPIO output pin with the given pin number
// and initial logical value.
func (b *VirtualBridge) Output(pinNumber int, activeLow bool, initialValue bool) (OutputPin, error) {
	p, err := b.pin(pinNumber)
	if err != nil {
		return nil, err
	}
	b.mutex.Lock()
	p.output = true
	p.driven = true
	p.level = initialValue != activeLow
	b.mutex.Unlock()
	return &virtualOutput{bridge: b, pin: p, activeLow: activeLow}, nil
}

// PinLevel returns the physical level of the pin with given number.
// Returns false when the pin has never been initialized.
func (b *VirtualBridge) PinLevel(pinNumber int) (level bool, found bool) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if p, ok := b.pins[pinNumber]; ok {
		return p.level, true
	}
	return false, false
}

// SetPinLevel sets the physical level of the pin with given number,
// as if driven by external hardware.
func (b *VirtualBridge) SetPinLevel(pinNumber int, level bool) error {
	p, err := b.pin(pinNumber)
	if err != nil {
		return err
	}
	b.mutex.Lock()
	defer b.mutex.Unlock()
	p.driven = true
	p.level = level
	return nil
}

func (b *VirtualBridge) pin(pinNumber int) (*virtualPin, error) {
	if pinNumber < 1 || pinNumber > virtualPinCount {
		return nil, errors.Errorf("Invalid pin %d", pinNumber)
	}
	b.mutex.Lock()
	defer b.mutex.Unlock()

	p, found := b.pins[pinNumber]
	if !found {
		p = &virtualPin{}
		b.pins[pinNumber] = p
	}
	return p, nil
}

// Open the I2C bus
func (b *VirtualBridge) I2CBus() (I2CBus, error) {
	return b, nil
}

// Close the bridge.
func (b *VirtualBridge) Close() error {
	for _, led := range b.leds {
		led.Set(false)
	}
	return nil
}

// Execute an operation on the device with given address.
func (b *VirtualBridge) Execute(ctx context.Context, address uint8, op func(ctx context.Context, dev I2CDevice) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mutex.Lock()
	defer b.mutex.Unlock()

	regs, found := b.registers[address]
	if !found {
		regs = &[256]uint8{}
		b.registers[address] = regs
	}
	return op(ctx, virtualI2CDevice{regs: regs})
}

// DetectSlaveAddresses returns all addresses that have been used.
func (b *VirtualBridge) DetectSlaveAddresses() []byte {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	result := make([]byte, 0, len(b.registers))
	for addr := range b.registers {
		result = append(result, addr)
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}

// Register returns the value of the register of the I2C device
// at given address.
func (b *VirtualBridge) Register(address, reg uint8) uint8 {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if regs, found := b.registers[address]; found {
		return regs[reg]
	}
	return 0
}

type virtualPin struct {
	output bool
	driven bool
	level  bool
}

type virtualInput struct {
	bridge    *VirtualBridge
	pin       *virtualPin
	activeLow bool
}

func (p *virtualInput) Read() (bool, error) {
	p.bridge.mutex.Lock()
	defer p.bridge.mutex.Unlock()
	return p.pin.level != p.activeLow, nil
}

type virtualOutput struct {
	bridge    *VirtualBridge
	pin       *virtualPin
	activeLow bool
}

func (p *virtualOutput) Write(value bool) error {
	p.bridge.mutex.Lock()
	defer p.bridge.mutex.Unlock()
	if !p.pin.output {
		return errors.New("pin is not an output")
	}
	p.pin.level = value != p.activeLow
	return nil
}

type virtualI2CDevice struct {
	regs *[256]uint8
}

func (d virtualI2CDevice) ReadByteReg(reg uint8) (uint8, error) {
	return d.regs[reg], nil
}

func (d virtualI2CDevice) WriteByteReg(reg uint8, val uint8) error {
	d.regs[reg] = val
	return nil
}

type virtualLED struct {
	mutex    sync.Mutex
	on       bool
	blinking bool
}

func (l *virtualLED) Set(on bool) error {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.on = on
	l.blinking = false
	return nil
}

func (l *virtualLED) Blink(delay time.Duration) error {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.on = true
	l.blinking = true
	return nil
}
