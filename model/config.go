package model

import (
	"os"

	"github.com/caarlos0/env"
	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"
)

// LocalConfiguration holds the configuration of a single worker.
type LocalConfiguration struct {
	// List of devices attached to the worker
	Devices []Device `yaml:"devices,omitempty"`
	// The vehicle controlled by the worker
	Vehicle VehicleConfig `yaml:"vehicle"`
	// Optional input pin that starts the sequence when pressed
	Button *Pin `yaml:"button,omitempty"`
	// Optional MQTT broker used for remote commands and MQTT devices
	MQTT *MQTTConfig `yaml:"mqtt,omitempty"`
	// Optional custom sequence
	Sequence []SequenceStep `yaml:"sequence,omitempty"`
}

// DefaultConfiguration returns the configuration used when no configuration
// file is given: a local GPIO header for the direction pins and a PCA9685
// at 0x40 for the enable pins.
func DefaultConfiguration() LocalConfiguration {
	gpio := DeviceID("gpio")
	pwm := DeviceID("pwm")
	return LocalConfiguration{
		Devices: []Device{
			{ID: gpio, Type: DeviceTypeGPIO},
			{ID: pwm, Type: DeviceTypePCA9685, Address: "0x40"},
		},
		Vehicle: VehicleConfig{
			Left: MotorConfig{
				IN1: Pin{DeviceID: gpio, Index: 22},
				IN2: Pin{DeviceID: gpio, Index: 25},
				EN:  Pin{DeviceID: pwm, Index: 2},
			},
			Right: MotorConfig{
				IN1: Pin{DeviceID: gpio, Index: 17},
				IN2: Pin{DeviceID: gpio, Index: 27},
				EN:  Pin{DeviceID: pwm, Index: 1},
			},
		},
		Button: &Pin{DeviceID: gpio, Index: 6, Invert: true},
	}
}

// LoadConfiguration reads the configuration from the YAML file at given path.
// If path is empty, the default configuration is used.
// MQTT settings are overridden by environment variables (if set).
func LoadConfiguration(path string) (LocalConfiguration, error) {
	var c LocalConfiguration
	if path == "" {
		c = DefaultConfiguration()
	} else {
		content, err := os.ReadFile(path)
		if err != nil {
			return LocalConfiguration{}, errors.Wrapf(err, "failed to read '%s'", path)
		}
		if err := yaml.Unmarshal(content, &c); err != nil {
			return LocalConfiguration{}, errors.Wrapf(err, "failed to parse '%s'", path)
		}
	}
	mqtt := MQTTConfig{}
	if c.MQTT != nil {
		mqtt = *c.MQTT
	}
	if err := env.Parse(&mqtt); err != nil {
		return LocalConfiguration{}, errors.Wrap(err, "failed to parse environment")
	}
	if mqtt.Host != "" {
		c.MQTT = &mqtt
	}
	if err := c.Validate(); err != nil {
		return LocalConfiguration{}, maskAny(err)
	}
	return c, nil
}

// GetSequence returns the configured sequence, or the default sequence
// if none is configured.
func (c LocalConfiguration) GetSequence() []SequenceStep {
	if len(c.Sequence) == 0 {
		return DefaultSequence()
	}
	return c.Sequence
}

// DeviceByID returns the device with given ID.
// Return false if not found.
func (c LocalConfiguration) DeviceByID(id DeviceID) (Device, bool) {
	for _, d := range c.Devices {
		if d.ID == id {
			return d, true
		}
	}
	return Device{}, false
}

// Validate the given configuration, returning nil on ok,
// or an error upon validation issues.
func (c LocalConfiguration) Validate() error {
	seen := make(map[DeviceID]struct{})
	hasMQTTDevice := false
	for _, d := range c.Devices {
		if err := d.Validate(); err != nil {
			return maskAny(err)
		}
		if _, found := seen[d.ID]; found {
			return errors.Wrapf(ValidationError, "Device '%s' is configured more than once", d.ID)
		}
		seen[d.ID] = struct{}{}
		hasMQTTDevice = hasMQTTDevice || d.Type.IsMQTT()
	}
	if err := c.Vehicle.Validate(); err != nil {
		return maskAny(err)
	}
	checkDevice := func(p Pin, where string) error {
		if _, found := c.DeviceByID(p.DeviceID); !found {
			return errors.Wrapf(ValidationError, "Device '%s' not found in %s", p.DeviceID, where)
		}
		return nil
	}
	for name, p := range c.Vehicle.Left.Pins() {
		if err := checkDevice(p, "pin '"+name+"' of left motor"); err != nil {
			return err
		}
	}
	for name, p := range c.Vehicle.Right.Pins() {
		if err := checkDevice(p, "pin '"+name+"' of right motor"); err != nil {
			return err
		}
	}
	if c.Button != nil {
		if err := c.Button.Validate(); err != nil {
			return errors.Wrap(err, "button")
		}
		if err := checkDevice(*c.Button, "button"); err != nil {
			return err
		}
	}
	if c.MQTT != nil {
		if err := c.MQTT.Validate(); err != nil {
			return maskAny(err)
		}
	} else if hasMQTTDevice {
		return errors.Wrap(ValidationError, "mqtt devices require an mqtt broker")
	}
	for i, s := range c.Sequence {
		if err := s.Validate(); err != nil {
			return errors.Wrapf(err, "sequence step %d", i+1)
		}
	}
	return nil
}
