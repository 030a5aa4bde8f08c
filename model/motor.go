package model

import "github.com/pkg/errors"

// MotorConfig holds the connections of a single L298 channel.
type MotorConfig struct {
	// Pin connected to IN1 (or IN3)
	IN1 Pin `yaml:"in1"`
	// Pin connected to IN2 (or IN4)
	IN2 Pin `yaml:"in2"`
	// PWM output connected to ENA (or ENB)
	EN Pin `yaml:"en"`
}

// Pins returns all pins of the motor, keyed by connection name.
func (c MotorConfig) Pins() map[string]Pin {
	return map[string]Pin{
		"in1": c.IN1,
		"in2": c.IN2,
		"en":  c.EN,
	}
}

// Validate the given configuration, returning nil on ok,
// or an error upon validation issues.
func (c MotorConfig) Validate() error {
	for name, p := range c.Pins() {
		if err := p.Validate(); err != nil {
			return errors.Wrapf(err, "pin '%s'", name)
		}
	}
	if c.IN1 == c.IN2 {
		return errors.Wrap(ValidationError, "in1 and in2 must use different pins")
	}
	return nil
}

// VehicleConfig holds the configuration of a differential drive vehicle.
type VehicleConfig struct {
	Left  MotorConfig `yaml:"left"`
	Right MotorConfig `yaml:"right"`
}

// Validate the given configuration, returning nil on ok,
// or an error upon validation issues.
func (c VehicleConfig) Validate() error {
	if err := c.Left.Validate(); err != nil {
		return errors.Wrap(err, "left motor")
	}
	if err := c.Right.Validate(); err != nil {
		return errors.Wrap(err, "right motor")
	}
	return nil
}
