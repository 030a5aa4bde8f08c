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

	"github.com/pkg/errors"

	"github.com/binkynet/L298Worker/pkg/service/util"
)

// runButton polls the button until the given context is canceled.
// A press starts the sequence, unless a sequence is already running.
func (s *service) runButton(ctx context.Context) error {
	log := s.Logger.With().Str("component", "button").Logger()
	pressed := false
	return util.UntilCanceled(ctx, log, "button polling", func() error {
		value, err := s.button.Get(ctx)
		if err != nil {
			return err
		}
		if value && !pressed {
			log.Info().Msg("Button pressed")
			if err := s.StartSequence(); errors.Is(err, SequenceRunningError) {
				log.Debug().Msg("Ignoring button press, sequence already running")
			} else if err != nil {
				return err
			}
		}
		pressed = value
		return nil
	})
}
