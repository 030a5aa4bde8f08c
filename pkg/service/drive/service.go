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

package drive

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/binkynet/L298Worker/model"
	"github.com/binkynet/L298Worker/pkg/l298"
	"github.com/binkynet/L298Worker/pkg/service/bridge"
	"github.com/binkynet/L298Worker/pkg/service/devices"
)

const (
	// Timeout used to stop the vehicle after its context is canceled.
	stopTimeout = time.Second
)

var (
	// SequenceRunningError is returned when a sequence is requested
	// while another sequence is still running.
	SequenceRunningError = errors.New("sequence already running")
)

// Service controls the vehicle.
type Service interface {
	// Drive the vehicle with given speed (-100..100) and direction (-100..100).
	Drive(ctx context.Context, speed, direction float64) error
	// TurnLeft pivots the vehicle counter clockwise.
	TurnLeft(ctx context.Context, speed float64) error
	// TurnRight pivots the vehicle clockwise.
	TurnRight(ctx context.Context, speed float64) error
	// Stop the vehicle, canceling a running sequence.
	Stop(ctx context.Context) error
	// Execute the given command.
	Execute(ctx context.Context, cmd model.Command) error
	// RunSequence runs the configured sequence and waits until it is done.
	RunSequence(ctx context.Context) error
	// StartSequence runs the configured sequence in the background.
	StartSequence() error
	// Status returns the current state of the vehicle.
	Status() Status
	// Subscribe to status changes.
	// Call the returned function to stop the subscription.
	Subscribe(cb func(Status)) context.CancelFunc
	// Run the service until the given context is canceled.
	// The vehicle is stopped before returning.
	Run(ctx context.Context) error
}

// Status of the vehicle.
type Status struct {
	// Last command that was executed (nil if none)
	LastCommand *model.Command `json:"last_command,omitempty"`
	// Time of the last command
	LastCommandAt time.Time `json:"last_command_at,omitempty"`
	// Requested speed of the left motor
	Left float64 `json:"left"`
	// Requested speed of the right motor
	Right float64 `json:"right"`
	// Set while a sequence is running
	SequenceRunning bool `json:"sequence_running"`
}

// Config of the drive service.
type Config struct {
	Vehicle  model.VehicleConfig
	Button   *model.Pin
	Sequence []model.SequenceStep
	MQTT     *model.MQTTConfig
}

// Dependencies of the drive service.
type Dependencies struct {
	Logger  zerolog.Logger
	Bridge  bridge.API
	Devices devices.Service
}

type service struct {
	Config
	Dependencies

	vehicle     *l298.Vehicle
	button      *digitalPin
	commands    *mqttCommands
	sequenceSem *semaphore.Weighted
	statusFeed  *statusFeed
	// Context of background operations, canceled when Run returns.
	ctx    context.Context
	cancel context.CancelFunc

	mutex          sync.Mutex
	status         Status
	sequenceCancel context.CancelFunc
}

// NewService creates the motors and vehicle from the given configuration.
// All devices must be configured before calling this function.
func NewService(ctx context.Context, conf Config, deps Dependencies) (Service, error) {
	deps.Logger = deps.Logger.With().Str("component", "drive").Logger()
	if err := conf.Vehicle.Validate(); err != nil {
		return nil, err
	}
	indicator := statusIndicator{bridge: deps.Bridge}
	left, err := newMotor(ctx, deps.Devices, conf.Vehicle.Left, indicator)
	if err != nil {
		return nil, errors.Wrap(err, "left motor")
	}
	right, err := newMotor(ctx, deps.Devices, conf.Vehicle.Right, indicator)
	if err != nil {
		return nil, errors.Wrap(err, "right motor")
	}
	vehicle, err := l298.NewVehicle(left, right)
	if err != nil {
		return nil, err
	}
	if len(conf.Sequence) == 0 {
		conf.Sequence = model.DefaultSequence()
	}
	s := &service{
		Config:       conf,
		Dependencies: deps,
		vehicle:      vehicle,
		sequenceSem:  semaphore.NewWeighted(1),
		statusFeed:   newStatusFeed(),
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	if conf.Button != nil {
		s.button, err = newDigitalPin(ctx, deps.Devices, *conf.Button, devices.PinDirectionInput)
		if err != nil {
			return nil, errors.Wrap(err, "button")
		}
	}
	if !conf.MQTT.IsEmpty() {
		s.commands = newMQTTCommands(deps.Logger, *conf.MQTT, s)
	}
	// Bring the vehicle in a known state
	if err := vehicle.Stop(ctx); err != nil {
		return nil, errors.Wrap(err, "initial stop failed")
	}
	return s, nil
}

// newMotor creates a motor for the given configuration.
func newMotor(ctx context.Context, devService devices.Service, conf model.MotorConfig, indicator l298.Indicator) (*l298.Motor, error) {
	forward, err := newDigitalPin(ctx, devService, conf.IN1, devices.PinDirectionOutput)
	if err != nil {
		return nil, errors.Wrap(err, "in1")
	}
	reverse, err := newDigitalPin(ctx, devService, conf.IN2, devices.PinDirectionOutput)
	if err != nil {
		return nil, errors.Wrap(err, "in2")
	}
	enable, err := newPWMChannel(devService, conf.EN)
	if err != nil {
		return nil, errors.Wrap(err, "en")
	}
	return l298.NewMotor(forward, reverse, enable, indicator)
}

// Drive the vehicle with given speed (-100..100) and direction (-100..100).
func (s *service) Drive(ctx context.Context, speed, direction float64) error {
	return s.Execute(ctx, model.Command{Action: model.ActionDrive, Speed: speed, Direction: direction})
}

// TurnLeft pivots the vehicle counter clockwise.
func (s *service) TurnLeft(ctx context.Context, speed float64) error {
	return s.Execute(ctx, model.Command{Action: model.ActionTurnLeft, Speed: speed})
}

// TurnRight pivots the vehicle clockwise.
func (s *service) TurnRight(ctx context.Context, speed float64) error {
	return s.Execute(ctx, model.Command{Action: model.ActionTurnRight, Speed: speed})
}

// Stop the vehicle, canceling a running sequence.
func (s *service) Stop(ctx context.Context) error {
	s.mutex.Lock()
	if cancel := s.sequenceCancel; cancel != nil {
		cancel()
	}
	s.mutex.Unlock()
	return s.Execute(ctx, model.Command{Action: model.ActionStop})
}

// Execute the given command.
func (s *service) Execute(ctx context.Context, cmd model.Command) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	if cmd.Action == model.ActionSequence {
		return s.StartSequence()
	}
	return s.execute(ctx, cmd)
}

// execute a single vehicle command.
func (s *service) execute(ctx context.Context, cmd model.Command) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	log := s.Logger.With().
		Str("action", string(cmd.Action)).
		Float64("speed", cmd.Speed).
		Float64("direction", cmd.Direction).
		Logger()
	var err error
	var left, right float64
	switch cmd.Action {
	case model.ActionDrive:
		left, right = l298.Blend(cmd.Speed, cmd.Direction)
		err = s.vehicle.Drive(ctx, cmd.Speed, cmd.Direction)
	case model.ActionTurnLeft:
		left, right = -cmd.Speed, cmd.Speed
		err = s.vehicle.TurnLeft(ctx, cmd.Speed)
	case model.ActionTurnRight:
		left, right = cmd.Speed, -cmd.Speed
		err = s.vehicle.TurnRight(ctx, cmd.Speed)
	case model.ActionStop:
		err = s.vehicle.Stop(ctx)
	default:
		return errors.Wrapf(model.ValidationError, "action '%s' cannot be executed", cmd.Action)
	}
	commandsTotal.WithLabelValues(string(cmd.Action)).Inc()
	if err != nil {
		commandErrorsTotal.WithLabelValues(string(cmd.Action)).Inc()
		log.Warn().Err(err).Msg("Vehicle command failed")
		return err
	}
	left = lo.Clamp(left, -l298.MaxSpeed, l298.MaxSpeed)
	right = lo.Clamp(right, -l298.MaxSpeed, l298.MaxSpeed)
	log.Debug().
		Float64("left", left).
		Float64("right", right).
		Dur("left-pulse", l298.PulseWidth(left)).
		Dur("right-pulse", l298.PulseWidth(right)).
		Msg("Vehicle command executed")
	motorSpeed.WithLabelValues("left").Set(left)
	motorSpeed.WithLabelValues("right").Set(right)

	s.status.LastCommand = &cmd
	s.status.LastCommandAt = time.Now()
	s.status.Left = left
	s.status.Right = right
	s.statusFeed.Publish(s.status)
	return nil
}

// Status returns the current state of the vehicle.
func (s *service) Status() Status {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.status
}

// Subscribe to status changes.
// Updates are delivered in order, each subscriber on its own goroutine.
func (s *service) Subscribe(cb func(Status)) context.CancelFunc {
	return s.statusFeed.Subscribe(cb)
}

// setSequenceRunning updates the status of the sequence.
func (s *service) setSequenceRunning(cancel context.CancelFunc) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.sequenceCancel = cancel
	s.status.SequenceRunning = cancel != nil
	s.statusFeed.Publish(s.status)
}

// Run the service until the given context is canceled.
func (s *service) Run(ctx context.Context) error {
	defer s.cancel()
	s.Logger.Info().Msg("Drive service started")

	g, ctx := errgroup.WithContext(ctx)
	if s.button != nil {
		g.Go(func() error { return s.runButton(ctx) })
	}
	if s.commands != nil {
		g.Go(func() error {
			// The vehicle remains usable without remote commands
			if err := s.commands.Run(ctx); err != nil {
				s.Logger.Error().Err(err).Msg("MQTT command channel failed")
			}
			return nil
		})
	}
	g.Go(func() error {
		<-ctx.Done()
		return nil
	})
	err := g.Wait()

	// Cancel background sequences & stop the vehicle
	s.cancel()
	stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	if stopErr := s.execute(stopCtx, model.Command{Action: model.ActionStop}); stopErr != nil {
		s.Logger.Error().Err(stopErr).Msg("Failed to stop vehicle")
	}
	s.Logger.Info().Msg("Drive service stopped")
	return err
}
