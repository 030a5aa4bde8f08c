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
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNextDelay(t *testing.T) {
	assert.Equal(t, time.Millisecond*15, nextDelay(time.Millisecond*10))
	assert.Equal(t, untilMaxDelay, nextDelay(time.Second*4))
	assert.Equal(t, untilMaxDelay, nextDelay(untilMaxDelay))
}

func TestUntilCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := UntilCanceled(ctx, zerolog.Nop(), "test", func() error {
		calls++
		if calls == 2 {
			return errors.New("failure")
		}
		if calls == 4 {
			cancel()
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 4, calls)
}

func TestUntilCanceledAlreadyCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	assert.NoError(t, UntilCanceled(ctx, zerolog.Nop(), "test", func() error {
		called = true
		return nil
	}))
	assert.False(t, called)
}
