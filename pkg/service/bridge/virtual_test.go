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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVirtualOutputPin(t *testing.T) {
	b := NewVirtualBridge()
	_, found := b.PinLevel(4)
	assert.False(t, found)

	out, err := b.Output(4, false, true)
	require.NoError(t, err)
	level, found := b.PinLevel(4)
	assert.True(t, found)
	assert.True(t, level)

	require.NoError(t, out.Write(false))
	level, _ = b.PinLevel(4)
	assert.False(t, level)

	inverted, err := b.Output(5, true, false)
	require.NoError(t, err)
	level, _ = b.PinLevel(5)
	assert.True(t, level, "active low pin must be high when logically off")
	require.NoError(t, inverted.Write(true))
	level, _ = b.PinLevel(5)
	assert.False(t, level)
}

func TestVirtualInputPin(t *testing.T) {
	b := NewVirtualBridge()
	in, err := b.Input(6, true)
	require.NoError(t, err)

	require.NoError(t, b.SetPinLevel(6, true))
	value, err := in.Read()
	require.NoError(t, err)
	assert.False(t, value)

	require.NoError(t, b.SetPinLevel(6, false))
	value, err = in.Read()
	require.NoError(t, err)
	assert.True(t, value)
}

func TestVirtualInputPullUp(t *testing.T) {
	b := NewVirtualBridge()
	in, err := b.Input(7, false)
	require.NoError(t, err)
	value, err := in.Read()
	require.NoError(t, err)
	assert.True(t, value, "undriven input must be pulled up")

	require.NoError(t, b.SetPinLevel(8, false))
	in, err = b.Input(8, false)
	require.NoError(t, err)
	value, err = in.Read()
	require.NoError(t, err)
	assert.False(t, value)
}

func TestVirtualPinRange(t *testing.T) {
	b := NewVirtualBridge()
	_, err := b.Output(0, false, false)
	assert.Error(t, err)
	_, err = b.Input(b.PinCount()+1, false)
	assert.Error(t, err)
}

func TestVirtualI2CBus(t *testing.T) {
	b := NewVirtualBridge()
	bus, err := b.I2CBus()
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, bus.Execute(ctx, 0x40, func(ctx context.Context, dev I2CDevice) error {
		return dev.WriteByteReg(0x06, 0xAB)
	}))
	assert.Equal(t, uint8(0xAB), b.Register(0x40, 0x06))
	assert.Equal(t, []byte{0x40}, bus.DetectSlaveAddresses())

	var value uint8
	require.NoError(t, bus.Execute(ctx, 0x40, func(ctx context.Context, dev I2CDevice) error {
		value, err = dev.ReadByteReg(0x06)
		return err
	}))
	assert.Equal(t, uint8(0xAB), value)

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	assert.Error(t, bus.Execute(canceled, 0x40, func(ctx context.Context, dev I2CDevice) error {
		return nil
	}))
}

func TestVirtualStatusLED(t *testing.T) {
	b := NewVirtualBridge()
	led, err := b.StatusLED(LEDGreen)
	require.NoError(t, err)

	require.NoError(t, led.Blink(time.Millisecond))
	on, blinking := b.LEDState(LEDGreen)
	assert.True(t, on)
	assert.True(t, blinking)

	require.NoError(t, led.Set(false))
	on, blinking = b.LEDState(LEDGreen)
	assert.False(t, on)
	assert.False(t, blinking)

	_, err = b.StatusLED(LEDColor("blue"))
	assert.Error(t, err)
}
