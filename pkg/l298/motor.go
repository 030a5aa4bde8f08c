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

package l298

import (
	"context"
	"math"
	"time"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/binkynet/L298Worker/model"
)

const (
	// MaxSpeed is the speed (in percent) that results in a full scale PWM signal.
	MaxSpeed = 100.0
	// PulsePeriod is the period of the PWM signal in the pulse width convention.
	PulsePeriod = 20 * time.Millisecond
	// pulsePerPercent is the pulse width for each percent of speed.
	pulsePerPercent = PulsePeriod / time.Duration(MaxSpeed)
)

// Turner is implemented by anything that can be turned like a motor.
type Turner interface {
	// Turn the motor at the given speed (-100..100).
	Turn(ctx context.Context, speed float64) error
	// Stop the motor.
	Stop(ctx context.Context) error
}

// Motor controls a single DC motor connected to one channel of an L298.
type Motor struct {
	// forward is connected to IN1/IN3
	forward DigitalOutput
	// reverse is connected to IN2/IN4
	reverse   DigitalOutput
	enable    PWMOutput
	indicator Indicator
}

var _ Turner = &Motor{}

// NewMotor creates a motor on the given pins.
// The indicator is optional.
func NewMotor(forward, reverse DigitalOutput, enable PWMOutput, indicator Indicator) (*Motor, error) {
	if forward == nil || reverse == nil {
		return nil, model.InvalidArgument("Motor requires a forward and a reverse pin")
	}
	if enable == nil {
		return nil, model.InvalidArgument("Motor requires an enable pin")
	}
	if indicator == nil {
		indicator = noIndicator{}
	}
	return &Motor{
		forward:   forward,
		reverse:   reverse,
		enable:    enable,
		indicator: indicator,
	}, nil
}

// Turn the motor at the given speed (-100..100).
// Speeds outside that range are saturated.
// A positive speed drives IN1 low and IN2 high, a negative speed
// drives IN2 low and IN1 high.
// A speed of 0 turns the PWM signal off and clears the indicator.
func (m *Motor) Turn(ctx context.Context, speed float64) error {
	speed = lo.Clamp(speed, -MaxSpeed, MaxSpeed)
	switch {
	case speed > 0:
		if err := m.enable.SetDuty(ctx, Duty(speed)); err != nil {
			return errors.Wrap(err, "SetDuty[enable] failed")
		}
		if err := m.forward.Set(ctx, false); err != nil {
			return errors.Wrap(err, "Set[forward] failed")
		}
		if err := m.reverse.Set(ctx, true); err != nil {
			return errors.Wrap(err, "Set[reverse] failed")
		}
	case speed < 0:
		if err := m.enable.SetDuty(ctx, Duty(speed)); err != nil {
			return errors.Wrap(err, "SetDuty[enable] failed")
		}
		if err := m.reverse.Set(ctx, false); err != nil {
			return errors.Wrap(err, "Set[reverse] failed")
		}
		if err := m.forward.Set(ctx, true); err != nil {
			return errors.Wrap(err, "Set[forward] failed")
		}
	default:
		if err := m.enable.SetDuty(ctx, 0); err != nil {
			return errors.Wrap(err, "SetDuty[enable] failed")
		}
		if err := m.indicator.Clear(ctx); err != nil {
			return errors.Wrap(err, "Clear[indicator] failed")
		}
	}
	return nil
}

// Stop the motor. Same as Turn(ctx, 0).
func (m *Motor) Stop(ctx context.Context) error {
	return m.Turn(ctx, 0)
}

// Duty returns the PWM duty cycle (0..1) for the given speed.
func Duty(speed float64) float64 {
	return math.Min(math.Abs(speed), MaxSpeed) / MaxSpeed
}

// PulseWidth returns the width of the enable pulse for the given speed,
// within a period of PulsePeriod.
func PulseWidth(speed float64) time.Duration {
	return time.Duration(math.Min(math.Abs(speed), MaxSpeed) * float64(pulsePerPercent))
}
