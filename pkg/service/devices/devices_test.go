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
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/binkynet/L298Worker/model"
	"github.com/binkynet/L298Worker/pkg/service/bridge"
)

func noActive() {}

func TestParseAddress(t *testing.T) {
	tests := []struct {
		Input    string
		Expected uint8
		Valid    bool
	}{
		{"0x40", 0x40, true},
		{"0X20", 0x20, true},
		{"64", 64, true},
		{"0x80", 0, false},
		{"", 0, false},
		{"pwm", 0, false},
	}
	for _, tc := range tests {
		result, err := parseAddress(tc.Input)
		if tc.Valid {
			require.NoError(t, err, tc.Input)
			assert.Equal(t, tc.Expected, result, tc.Input)
		} else {
			assert.Error(t, err, tc.Input)
		}
	}
}

func TestPCA9685Prescale(t *testing.T) {
	assert.Equal(t, uint8(121), pca9685Prescale(50))
	assert.Equal(t, uint8(3), pca9685Prescale(1526))
}

func TestPCA9685(t *testing.T) {
	ctx := context.Background()
	b := bridge.NewVirtualBridge()
	dev, err := newPCA9685(model.Device{ID: "pwm", Type: model.DeviceTypePCA9685, Address: "0x40"}, b, noActive)
	require.NoError(t, err)
	require.NoError(t, dev.Configure(ctx))

	assert.Equal(t, uint8(121), b.Register(0x40, pca9685PRESCALEReg))
	assert.Equal(t, uint8(0x01), b.Register(0x40, pca9685MODE1Reg))
	// All outputs off after configure
	for output := model.DeviceIndex(1); output <= pca9685OutputCount; output++ {
		_, _, enabled, err := dev.Get(ctx, output)
		require.NoError(t, err)
		assert.False(t, enabled)
	}

	// Partial duty
	require.NoError(t, dev.Set(ctx, 2, 0, 2048, true))
	assert.Equal(t, uint8(0x00), b.Register(0x40, 0x0A))
	assert.Equal(t, uint8(0x00), b.Register(0x40, 0x0B))
	assert.Equal(t, uint8(0x00), b.Register(0x40, 0x0C))
	assert.Equal(t, uint8(0x08), b.Register(0x40, 0x0D))
	on, off, enabled, err := dev.Get(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), on)
	assert.Equal(t, uint32(2048), off)
	assert.True(t, enabled)

	// Full on
	require.NoError(t, dev.Set(ctx, 1, 0, pca9685MaxValue+1, true))
	assert.Equal(t, uint8(pca9685FullBit), b.Register(0x40, 0x07))
	assert.Equal(t, uint8(0x00), b.Register(0x40, 0x09))
	_, off, enabled, err = dev.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, uint32(pca9685MaxValue+1), off)
	assert.True(t, enabled)

	// Full off
	require.NoError(t, dev.Set(ctx, 1, 0, 0, false))
	assert.Equal(t, uint8(pca9685FullBit), b.Register(0x40, 0x09))
	_, _, enabled, err = dev.Get(ctx, 1)
	require.NoError(t, err)
	assert.False(t, enabled)

	// Invalid outputs
	assert.ErrorIs(t, dev.Set(ctx, 0, 0, 0, true), InvalidPinError)
	assert.ErrorIs(t, dev.Set(ctx, 17, 0, 0, true), InvalidPinError)

	require.NoError(t, dev.Close(ctx))
	assert.Equal(t, uint8(0x11), b.Register(0x40, pca9685MODE1Reg))
}

func TestMCP23008(t *testing.T) {
	ctx := context.Background()
	b := bridge.NewVirtualBridge()
	dev, err := newMcp23008(model.Device{ID: "gpio2", Type: model.DeviceTypeMCP23008, Address: "0x20"}, b, noActive)
	require.NoError(t, err)
	require.NoError(t, dev.Configure(ctx))
	assert.Equal(t, uint8(0xff), b.Register(0x20, mcp23008RegIODIR))
	assert.Equal(t, uint(8), dev.PinCount())

	// Output on an input pin is refused
	assert.ErrorIs(t, dev.Set(ctx, 3, true), InvalidDirectionError)

	require.NoError(t, dev.SetDirection(ctx, 3, PinDirectionOutput))
	assert.Equal(t, uint8(0xfb), b.Register(0x20, mcp23008RegIODIR))
	require.NoError(t, dev.Set(ctx, 3, true))
	assert.Equal(t, uint8(0x04), b.Register(0x20, mcp23008RegOLAT))
	require.NoError(t, dev.SetDirection(ctx, 8, PinDirectionOutput))
	require.NoError(t, dev.Set(ctx, 8, true))
	require.NoError(t, dev.Set(ctx, 3, false))
	assert.Equal(t, uint8(0x80), b.Register(0x20, mcp23008RegOLAT))

	assert.ErrorIs(t, dev.Set(ctx, 9, true), InvalidPinError)

	require.NoError(t, dev.Close(ctx))
	assert.Equal(t, uint8(0xff), b.Register(0x20, mcp23008RegIODIR))
}

func TestLocalGPIO(t *testing.T) {
	ctx := context.Background()
	b := bridge.NewVirtualBridge()
	dev, err := newLocalGPIO(model.Device{ID: "gpio", Type: model.DeviceTypeGPIO}, b, noActive)
	require.NoError(t, err)

	// Not configured yet
	assert.Error(t, dev.SetDirection(ctx, 1, PinDirectionOutput))

	require.NoError(t, dev.Configure(ctx))
	require.NoError(t, dev.SetDirection(ctx, 22, PinDirectionOutput))
	require.NoError(t, dev.Set(ctx, 22, true))
	level, found := b.PinLevel(22)
	assert.True(t, found)
	assert.True(t, level)

	require.NoError(t, dev.SetDirection(ctx, 6, PinDirectionInput))
	require.NoError(t, b.SetPinLevel(6, true))
	value, err := dev.Get(ctx, 6)
	require.NoError(t, err)
	assert.True(t, value)

	_, err = dev.Get(ctx, 22)
	assert.ErrorIs(t, err, InvalidDirectionError)
	assert.ErrorIs(t, dev.Set(ctx, 6, true), InvalidDirectionError)
	assert.ErrorIs(t, dev.Set(ctx, 33, true), InvalidPinError)

	require.NoError(t, dev.Close(ctx))
	level, _ = b.PinLevel(22)
	assert.False(t, level)
}

func TestFormatPWMPayload(t *testing.T) {
	assert.Equal(t, "OFF", formatPWMPayload(mqttPWMValue{on: 0, off: 2048, enabled: false}))
	assert.Equal(t, "ON", formatPWMPayload(mqttPWMValue{on: 0, off: 4096, enabled: true}))
	assert.Equal(t, "2048", formatPWMPayload(mqttPWMValue{on: 0, off: 2048, enabled: true}))
	assert.Equal(t, "1096", formatPWMPayload(mqttPWMValue{on: 3000, off: 0, enabled: true}))
}

func TestParseBool(t *testing.T) {
	for _, s := range []string{"1", "true", "ON", "yes"} {
		v, err := parseBool(s)
		require.NoError(t, err, s)
		assert.True(t, v, s)
	}
	for _, s := range []string{"0", "False", "off", "no"} {
		v, err := parseBool(s)
		require.NoError(t, err, s)
		assert.False(t, v, s)
	}
	_, err := parseBool("maybe")
	assert.Error(t, err)
}

func TestMQTTTopicPrefix(t *testing.T) {
	d := &mqttGPIO{}
	d.setup(zerolog.Nop(), model.Device{ID: "remote", Type: model.DeviceTypeMQTTGPIO}, model.MQTTConfig{Host: "broker"}, noActive)
	assert.Equal(t, "/binky/l298/remote/", d.topicPrefix)

	d = &mqttGPIO{}
	d.setup(zerolog.Nop(), model.Device{ID: "remote", Type: model.DeviceTypeMQTTGPIO, Address: "/custom/"}, model.MQTTConfig{Host: "broker"}, noActive)
	assert.Equal(t, "/custom/", d.topicPrefix)
	assert.Equal(t, "pin3", mqttPinTopic(3))
	assert.Equal(t, "pwm12", mqttPWMTopic(12))

	// Unconnected devices refuse commands
	assert.Error(t, d.Set(context.Background(), 1, true))
}

func TestService(t *testing.T) {
	ctx := context.Background()
	b := bridge.NewVirtualBridge()
	configs := []model.Device{
		{ID: "gpio", Type: model.DeviceTypeGPIO},
		{ID: "pwm", Type: model.DeviceTypePCA9685, Address: "0x40"},
	}
	s, err := NewService(configs, nil, b, zerolog.Nop())
	require.NoError(t, err)

	_, found := s.DeviceByID("pwm")
	assert.False(t, found, "devices are only addressable after configure")
	assert.Equal(t, []string{"gpio", "pwm"}, s.GetUnconfiguredDeviceIDs())

	require.NoError(t, s.Configure(ctx))
	assert.Equal(t, []string{"gpio", "pwm"}, s.GetConfiguredDeviceIDs())
	assert.Empty(t, s.GetUnconfiguredDeviceIDs())

	dev, found := s.DeviceByID("pwm")
	require.True(t, found)
	_, ok := dev.(PWM)
	assert.True(t, ok)
	dev, found = s.DeviceByID("gpio")
	require.True(t, found)
	_, ok = dev.(GPIO)
	assert.True(t, ok)

	require.NoError(t, s.Close(ctx))
}

func TestServiceErrors(t *testing.T) {
	b := bridge.NewVirtualBridge()
	_, err := NewService([]model.Device{{ID: "x", Type: "servo"}}, nil, b, zerolog.Nop())
	assert.True(t, model.IsInvalidArgument(err))

	_, err = NewService([]model.Device{{ID: "remote", Type: model.DeviceTypeMQTTPWM}}, nil, b, zerolog.Nop())
	assert.True(t, model.IsInvalidArgument(err))

	_, err = NewService([]model.Device{{ID: "pwm", Type: model.DeviceTypePCA9685, Address: "zz"}}, nil, b, zerolog.Nop())
	assert.Error(t, err)
}

func TestServiceRunActiveNotify(t *testing.T) {
	b := bridge.NewVirtualBridge()
	s, err := NewService([]model.Device{{ID: "gpio", Type: model.DeviceTypeGPIO}}, nil, b, zerolog.Nop())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, s.Run(ctx))
	on, _ := b.LEDState(bridge.LEDRed)
	assert.False(t, on)
}

func TestMCP23017(t *testing.T) {
	ctx := context.Background()
	b := bridge.NewVirtualBridge()
	dev, err := newMcp23017(model.Device{ID: "gpio3", Type: model.DeviceTypeMCP23017, Address: "0x21"}, b, noActive)
	require.NoError(t, err)
	require.NoError(t, dev.Configure(ctx))
	assert.Equal(t, uint(16), dev.PinCount())
	assert.Equal(t, uint8(0xff), b.Register(0x21, mcp23017RegIODIR))
	assert.Equal(t, uint8(0xff), b.Register(0x21, mcp23017RegIODIR+1))

	// Port A
	require.NoError(t, dev.SetDirection(ctx, 2, PinDirectionOutput))
	require.NoError(t, dev.Set(ctx, 2, true))
	assert.Equal(t, uint8(0xfd), b.Register(0x21, mcp23017RegIODIR))
	assert.Equal(t, uint8(0x02), b.Register(0x21, mcp23017RegOLAT))

	// Port B
	require.NoError(t, dev.SetDirection(ctx, 16, PinDirectionOutput))
	require.NoError(t, dev.Set(ctx, 16, true))
	assert.Equal(t, uint8(0x7f), b.Register(0x21, mcp23017RegIODIR+1))
	assert.Equal(t, uint8(0x80), b.Register(0x21, mcp23017RegOLAT+1))
	assert.Equal(t, uint8(0x02), b.Register(0x21, mcp23017RegOLAT), "port A is unchanged")

	// Inputs
	require.NoError(t, b.Execute(ctx, 0x21, func(ctx context.Context, d bridge.I2CDevice) error {
		return d.WriteByteReg(mcp23017RegGPIO+1, 0x01)
	}))
	value, err := dev.Get(ctx, 9)
	require.NoError(t, err)
	assert.True(t, value)
	value, err = dev.Get(ctx, 1)
	require.NoError(t, err)
	assert.False(t, value)

	assert.ErrorIs(t, dev.Set(ctx, 9, true), InvalidDirectionError)
	assert.ErrorIs(t, dev.Set(ctx, 17, true), InvalidPinError)
	require.NoError(t, dev.Close(ctx))
	assert.Equal(t, uint8(0xff), b.Register(0x21, mcp23017RegIODIR+1))
}
