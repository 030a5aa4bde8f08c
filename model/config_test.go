package model

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigurationIsValid(t *testing.T) {
	c := DefaultConfiguration()
	require.NoError(t, c.Validate())
	assert.Equal(t, DefaultSequence(), c.GetSequence())
	d, found := c.DeviceByID("pwm")
	require.True(t, found)
	assert.Equal(t, DeviceTypePCA9685, d.Type)
	_, found = c.DeviceByID("servo")
	assert.False(t, found)
}

func TestConfigurationValidate(t *testing.T) {
	tests := map[string]func(c *LocalConfiguration){
		"missing motor pin": func(c *LocalConfiguration) {
			c.Vehicle.Left.EN = Pin{}
		},
		"zero pin index": func(c *LocalConfiguration) {
			c.Vehicle.Right.IN1.Index = 0
		},
		"same direction pins": func(c *LocalConfiguration) {
			c.Vehicle.Right.IN2 = c.Vehicle.Right.IN1
		},
		"unknown device type": func(c *LocalConfiguration) {
			c.Devices[0].Type = "servo"
		},
		"unknown device": func(c *LocalConfiguration) {
			c.Vehicle.Left.IN1.DeviceID = "expander"
		},
		"duplicate device": func(c *LocalConfiguration) {
			c.Devices = append(c.Devices, Device{ID: "gpio", Type: DeviceTypeGPIO})
		},
		"i2c without address": func(c *LocalConfiguration) {
			c.Devices[1].Address = ""
		},
		"unknown button device": func(c *LocalConfiguration) {
			c.Button = &Pin{DeviceID: "buttons", Index: 1}
		},
		"mqtt device without broker": func(c *LocalConfiguration) {
			c.Devices = append(c.Devices, Device{ID: "remote", Type: DeviceTypeMQTTPWM})
		},
		"mqtt without host": func(c *LocalConfiguration) {
			c.MQTT = &MQTTConfig{Port: 1883}
		},
		"pause without duration": func(c *LocalConfiguration) {
			c.Sequence = []SequenceStep{{Command: Command{Action: ActionPause}}}
		},
		"nested sequence": func(c *LocalConfiguration) {
			c.Sequence = []SequenceStep{{Command: Command{Action: ActionSequence}}}
		},
	}
	for name, modify := range tests {
		c := DefaultConfiguration()
		modify(&c)
		err := c.Validate()
		assert.True(t, IsValidation(err), "%s: %v", name, err)
	}
}

const testConfigYAML = `
devices:
- id: local
  type: gpio
- id: expander
  type: mcp23008
  address: "0x20"
- id: pwm
  type: pca9685
  address: "0x41"
vehicle:
  left:
    in1: {device: expander, index: 1}
    in2: {device: expander, index: 2}
    en: {device: pwm, index: 3}
  right:
    in1: {device: expander, index: 3}
    in2: {device: expander, index: 4, invert: true}
    en: {device: pwm, index: 4}
button:
  device: local
  index: 5
mqtt:
  host: broker.local
  topic-prefix: /robot/
sequence:
- action: drive
  speed: 50
  direction: -10
- action: pause
  duration: 500ms
- action: stop
`

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfiguration(t *testing.T) {
	c, err := LoadConfiguration(writeConfig(t, testConfigYAML))
	require.NoError(t, err)

	assert.Len(t, c.Devices, 3)
	assert.Equal(t, Device{ID: "expander", Type: DeviceTypeMCP23008, Address: "0x20"}, c.Devices[1])
	assert.Equal(t, Pin{DeviceID: "pwm", Index: 3}, c.Vehicle.Left.EN)
	assert.Equal(t, Pin{DeviceID: "expander", Index: 4, Invert: true}, c.Vehicle.Right.IN2)
	require.NotNil(t, c.Button)
	assert.Equal(t, DeviceIndex(5), c.Button.Index)
	require.NotNil(t, c.MQTT)
	assert.Equal(t, "tcp://broker.local:1883", c.MQTT.BrokerURL())
	assert.Equal(t, "/robot/", c.MQTT.GetTopicPrefix())
	assert.Equal(t, []SequenceStep{
		{Command: Command{Action: ActionDrive, Speed: 50, Direction: -10}},
		{Command: Command{Action: ActionPause}, Duration: 500 * time.Millisecond},
		{Command: Command{Action: ActionStop}},
	}, c.GetSequence())
}

func TestLoadConfigurationDefault(t *testing.T) {
	c, err := LoadConfiguration("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfiguration().Vehicle, c.Vehicle)
}

func TestLoadConfigurationErrors(t *testing.T) {
	_, err := LoadConfiguration(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadConfiguration(writeConfig(t, "devices: [:"))
	assert.Error(t, err)

	_, err = LoadConfiguration(writeConfig(t, "devices: []\n"))
	assert.True(t, IsValidation(err))
}

func TestLoadConfigurationEnvironment(t *testing.T) {
	t.Setenv("L298_MQTT_HOST", "mqtt.example")
	t.Setenv("L298_MQTT_PORT", "8883")
	t.Setenv("L298_MQTT_USERNAME", "robot")
	t.Setenv("L298_MQTT_PASSWORD", "secret")

	c, err := LoadConfiguration("")
	require.NoError(t, err)
	require.NotNil(t, c.MQTT)
	assert.Equal(t, "tcp://mqtt.example:8883", c.MQTT.BrokerURL())
	assert.Equal(t, "robot", c.MQTT.UserName)
	assert.Equal(t, "secret", c.MQTT.Password)

	// Environment overrides the file
	c, err = LoadConfiguration(writeConfig(t, testConfigYAML))
	require.NoError(t, err)
	assert.Equal(t, "mqtt.example", c.MQTT.Host)
	assert.Equal(t, "/robot/", c.MQTT.GetTopicPrefix())
}
