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

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/binkynet/L298Worker/model"
)

const (
	// MaxDirection is the direction at which the inner motor stops.
	MaxDirection = 100.0
)

// Vehicle is a differential drive vehicle with a left and a right motor.
type Vehicle struct {
	left  Turner
	right Turner
}

// NewVehicle creates a vehicle from the given motors.
func NewVehicle(left, right Turner) (*Vehicle, error) {
	if left == nil || right == nil {
		return nil, model.InvalidArgument("Vehicle requires a left and a right motor")
	}
	return &Vehicle{
		left:  left,
		right: right,
	}, nil
}

// Left returns the left motor.
func (v *Vehicle) Left() Turner { return v.left }

// Right returns the right motor.
func (v *Vehicle) Right() Turner { return v.right }

// Drive the vehicle with given speed (-100..100) in the given
// direction (-100=left, 0=straight, 100=right).
// The motor on the inside of the curve is slowed down linearly
// until it stops at a direction of -100 or 100.
func (v *Vehicle) Drive(ctx context.Context, speed, direction float64) error {
	left, right := Blend(speed, direction)
	return v.turn(ctx, left, right)
}

// TurnLeft pivots the vehicle to the left with given speed (0..100).
func (v *Vehicle) TurnLeft(ctx context.Context, speed float64) error {
	return v.turn(ctx, -speed, speed)
}

// TurnRight pivots the vehicle to the right with given speed (0..100).
func (v *Vehicle) TurnRight(ctx context.Context, speed float64) error {
	return v.turn(ctx, speed, -speed)
}

// Stop both motors, left first.
func (v *Vehicle) Stop(ctx context.Context) error {
	if err := v.left.Stop(ctx); err != nil {
		return errors.Wrap(err, "Stop[left] failed")
	}
	if err := v.right.Stop(ctx); err != nil {
		return errors.Wrap(err, "Stop[right] failed")
	}
	return nil
}

func (v *Vehicle) turn(ctx context.Context, left, right float64) error {
	if err := v.left.Turn(ctx, left); err != nil {
		return errors.Wrap(err, "Turn[left] failed")
	}
	if err := v.right.Turn(ctx, right); err != nil {
		return errors.Wrap(err, "Turn[right] failed")
	}
	return nil
}

// Blend returns the speeds of the left and right motor for driving
// with given speed in given direction.
// Directions outside -100..100 are saturated.
func Blend(speed, direction float64) (left, right float64) {
	direction = lo.Clamp(direction, -MaxDirection, MaxDirection)
	if direction <= 0 {
		return speed * (MaxDirection + direction) / MaxDirection, speed
	}
	return speed, speed * (MaxDirection - direction) / MaxDirection
}
