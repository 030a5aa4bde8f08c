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

package util

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

const (
	// Delay between callbacks when the callback succeeds.
	untilMinDelay = time.Millisecond * 10
	// Upper limit of the delay after repeated failures.
	untilMaxDelay = time.Second * 5
	// Factor applied to the delay after each failure.
	untilBackoffFactor = 1.5
)

// UntilCanceled continues to call the given callback
// until the given context is canceled.
// Failures are logged and slow down the polling rate.
func UntilCanceled(ctx context.Context, log zerolog.Logger, description string, cb func() error) error {
	delay := untilMinDelay
	failures := 0
	for {
		if ctx.Err() != nil {
			// Context canceled
			return nil
		}
		if err := cb(); err != nil {
			failures++
			log.Warn().Err(err).Int("failures", failures).Msgf("%s failed", description)
			delay = nextDelay(delay)
		} else {
			if failures > 0 {
				log.Info().Int("failures", failures).Msgf("%s recovered", description)
			}
			failures = 0
			delay = untilMinDelay
		}
		select {
		case <-ctx.Done():
			// Context canceled
			log.Debug().Msgf("Stopping %s; context canceled", description)
			return nil
		case <-time.After(delay):
			// Continue
		}
	}
}

// nextDelay returns the delay following the given delay after a failure.
func nextDelay(delay time.Duration) time.Duration {
	delay = time.Duration(float64(delay) * untilBackoffFactor)
	if delay > untilMaxDelay {
		return untilMaxDelay
	}
	return delay
}
