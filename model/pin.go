package model

import "github.com/pkg/errors"

// DeviceIndex is the 1-based index of a pin or output on a device.
type DeviceIndex uint

// Pin identifies a connection pin of a hardware device.
type Pin struct {
	// Unique identifier of the device that contains this pin.
	DeviceID DeviceID `yaml:"device"`
	// Pin number (1...)
	Index DeviceIndex `yaml:"index"`
	// If set, the logical value of the pin is inverted.
	Invert bool `yaml:"invert,omitempty"`
}

// IsEmpty returns true when no device is set.
func (p Pin) IsEmpty() bool {
	return p.DeviceID == ""
}

// Validate the given pin, returning nil on ok,
// or an error upon validation issues.
func (p Pin) Validate() error {
	if p.DeviceID == "" {
		return errors.Wrap(ValidationError, "device is empty")
	}
	if p.Index < 1 {
		return errors.Wrapf(ValidationError, "index of pin on device '%s' must be 1 or higher", p.DeviceID)
	}
	return nil
}
