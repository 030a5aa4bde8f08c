package model

import (
	"math"
	"time"

	"github.com/pkg/errors"
)

// Action identifies a vehicle command.
type Action string

const (
	ActionDrive     Action = "drive"
	ActionTurnLeft  Action = "turn-left"
	ActionTurnRight Action = "turn-right"
	ActionStop      Action = "stop"
	// ActionPause waits for the duration of the step.
	// Only valid in a sequence.
	ActionPause Action = "pause"
	// ActionSequence runs the configured sequence.
	// Only valid as a remote command.
	ActionSequence Action = "sequence"
)

// Command is a single request for the vehicle.
type Command struct {
	Action Action `json:"action" yaml:"action"`
	// Speed in percent (-100..100)
	Speed float64 `json:"speed,omitempty" yaml:"speed,omitempty"`
	// Direction in percent (-100=left..100=right)
	Direction float64 `json:"direction,omitempty" yaml:"direction,omitempty"`
}

// Validate the given command, returning nil on ok,
// or an error upon validation issues.
// Speed and direction of a drive command must be in -100..100,
// the speed of a pivot in 0..100.
func (c Command) Validate() error {
	switch c.Action {
	case ActionDrive:
		if err := checkRange("speed", c.Speed, -maxPercent, maxPercent); err != nil {
			return err
		}
		return checkRange("direction", c.Direction, -maxPercent, maxPercent)
	case ActionTurnLeft, ActionTurnRight:
		return checkRange("speed", c.Speed, 0, maxPercent)
	case ActionStop, ActionSequence:
		return nil
	default:
		return errors.Wrapf(ValidationError, "invalid action '%s'", c.Action)
	}
}

const (
	maxPercent = 100.0
)

func checkRange(name string, value, low, high float64) error {
	if math.IsNaN(value) || value < low || value > high {
		return errors.Wrapf(ValidationError, "%s %v out of range %v..%v", name, value, low, high)
	}
	return nil
}

// SequenceStep is a single step in a scripted sequence.
type SequenceStep struct {
	Command `yaml:",inline"`
	// Duration of a pause step
	Duration time.Duration `yaml:"duration,omitempty"`
}

// Validate the given step, returning nil on ok,
// or an error upon validation issues.
func (s SequenceStep) Validate() error {
	switch s.Action {
	case ActionPause:
		if s.Duration <= 0 {
			return errors.Wrap(ValidationError, "pause must have a positive duration")
		}
		return nil
	case ActionSequence:
		return errors.Wrap(ValidationError, "a sequence cannot contain a sequence step")
	default:
		return s.Command.Validate()
	}
}

// DefaultSequence returns the sequence that is run when a button is pressed
// and no custom sequence is configured.
func DefaultSequence() []SequenceStep {
	return []SequenceStep{
		{Command: Command{Action: ActionTurnLeft, Speed: 100}},
		{Command: Command{Action: ActionPause}, Duration: time.Second},
		{Command: Command{Action: ActionDrive, Speed: -80, Direction: 0}},
		{Command: Command{Action: ActionPause}, Duration: time.Second},
		{Command: Command{Action: ActionStop}},
	}
}
