package model

import "github.com/pkg/errors"

// DeviceID is the unique identifier of a configured device.
type DeviceID string

// Device holds configuration data for a specific hardware device.
// Typically a hardware device is attached to a bus.
type Device struct {
	// Unique identifier of the device (instance)
	ID DeviceID `yaml:"id"`
	// Address is used to identify the device on a bus.
	// For I2C devices this is the slave address ("0x40"),
	// for MQTT devices this is the topic prefix.
	Address string `yaml:"address,omitempty"`
	// Type of the device
	Type DeviceType `yaml:"type"`
}

// DeviceType identifies a type of devices (typically chip name)
type DeviceType string

const (
	// DeviceTypeGPIO is the GPIO header of the local board.
	DeviceTypeGPIO DeviceType = "gpio"
	// DeviceTypeMCP23008 is an 8-bit I2C GPIO expander.
	DeviceTypeMCP23008 DeviceType = "mcp23008"
	// DeviceTypeMCP23017 is a 16-bit I2C GPIO expander.
	DeviceTypeMCP23017 DeviceType = "mcp23017"
	// DeviceTypePCA9685 is a 16-channel I2C PWM driver.
	DeviceTypePCA9685 DeviceType = "pca9685"
	// DeviceTypeMQTTGPIO is a virtual GPIO device driven through MQTT.
	DeviceTypeMQTTGPIO DeviceType = "mqtt-gpio"
	// DeviceTypeMQTTPWM is a virtual PWM device driven through MQTT.
	DeviceTypeMQTTPWM DeviceType = "mqtt-pwm"
)

// IsI2C returns true for device types attached to the I2C bus.
func (t DeviceType) IsI2C() bool {
	switch t {
	case DeviceTypeMCP23008, DeviceTypeMCP23017, DeviceTypePCA9685:
		return true
	default:
		return false
	}
}

// IsMQTT returns true for device types driven through MQTT.
func (t DeviceType) IsMQTT() bool {
	return t == DeviceTypeMQTTGPIO || t == DeviceTypeMQTTPWM
}

// Validate the given type, returning nil on ok,
// or an error upon validation issues.
func (t DeviceType) Validate() error {
	switch t {
	case DeviceTypeGPIO, DeviceTypeMCP23008, DeviceTypeMCP23017, DeviceTypePCA9685, DeviceTypeMQTTGPIO, DeviceTypeMQTTPWM:
		return nil
	default:
		return errors.Wrapf(ValidationError, "invalid device type '%s'", string(t))
	}
}

// Validate the given configuration, returning nil on ok,
// or an error upon validation issues.
func (d Device) Validate() error {
	if d.ID == "" {
		return errors.Wrap(ValidationError, "ID is empty")
	}
	if err := d.Type.Validate(); err != nil {
		return errors.Wrapf(ValidationError, "Error in Type of '%s': %s", d.ID, err.Error())
	}
	if d.Type.IsI2C() && d.Address == "" {
		return errors.Wrapf(ValidationError, "Address of '%s' is empty", d.ID)
	}
	return nil
}
