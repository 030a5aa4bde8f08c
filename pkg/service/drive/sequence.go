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
	"time"

	"github.com/binkynet/L298Worker/model"
	"github.com/binkynet/L298Worker/pkg/service/bridge"
)

// RunSequence runs the configured sequence and waits until it is done.
// Returns SequenceRunningError when another sequence is still running.
func (s *service) RunSequence(ctx context.Context) error {
	if !s.sequenceSem.TryAcquire(1) {
		return SequenceRunningError
	}
	defer s.sequenceSem.Release(1)
	return s.runSequence(ctx)
}

// runSequence runs the configured sequence.
// Must be called with sequenceSem acquired.
func (s *service) runSequence(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	s.setSequenceRunning(cancel)
	defer s.setSequenceRunning(nil)

	if led, err := s.Bridge.StatusLED(bridge.LEDGreen); err != nil {
		s.Logger.Debug().Err(err).Msg("No sequence LED")
	} else {
		if err := led.Blink(time.Millisecond * 250); err != nil {
			s.Logger.Debug().Err(err).Msg("Failed to blink sequence LED")
		}
		defer func() {
			if err := led.Set(false); err != nil {
				s.Logger.Debug().Err(err).Msg("Failed to turn off sequence LED")
			}
		}()
	}
	sequencesTotal.Inc()
	s.Logger.Info().Int("steps", len(s.Sequence)).Msg("Running sequence")
	if err := runSteps(ctx, s.execute, s.Sequence); err != nil {
		s.Logger.Info().Err(err).Msg("Sequence ended early")
		return err
	}
	s.Logger.Info().Msg("Sequence completed")
	return nil
}

// StartSequence runs the configured sequence in the background.
func (s *service) StartSequence() error {
	if err := s.ctx.Err(); err != nil {
		return err
	}
	if !s.sequenceSem.TryAcquire(1) {
		return SequenceRunningError
	}
	go func() {
		defer s.sequenceSem.Release(1)
		if err := s.runSequence(s.ctx); err != nil {
			s.Logger.Debug().Err(err).Msg("Background sequence did not complete")
		}
	}()
	return nil
}

// runSteps executes all given steps in order.
// When the context is canceled or a step fails, the vehicle is stopped.
func runSteps(ctx context.Context, exec func(context.Context, model.Command) error, steps []model.SequenceStep) error {
	for _, step := range steps {
		var err error
		if step.Action == model.ActionPause {
			select {
			case <-ctx.Done():
				err = ctx.Err()
			case <-time.After(step.Duration):
				// Continue
			}
		} else {
			err = exec(ctx, step.Command)
		}
		if err == nil {
			err = ctx.Err()
		}
		if err != nil {
			stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
			exec(stopCtx, model.Command{Action: model.ActionStop})
			cancel()
			return err
		}
	}
	return nil
}
