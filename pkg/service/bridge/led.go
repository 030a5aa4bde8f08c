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

package bridge

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// blinkingLED implements StatusLED on top of an output pin.
type blinkingLED struct {
	mutex       sync.Mutex
	pin         OutputPin
	cancelBlink context.CancelFunc
}

// Set turns the LED on/off, cancels blinking.
func (l *blinkingLED) Set(on bool) error {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	l.stopBlinking()
	if err := l.pin.Write(on); err != nil {
		return errors.Wrap(err, "Write failed")
	}
	return nil
}

// Blink the LED on/off with given delay.
func (l *blinkingLED) Blink(delay time.Duration) error {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	l.stopBlinking()
	ctx, cancel := context.WithCancel(context.Background())
	l.cancelBlink = cancel
	go func() {
		value := true
		for {
			l.mutex.Lock()
			if ctx.Err() == nil {
				l.pin.Write(value)
				value = !value
			}
			l.mutex.Unlock()
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}

// stopBlinking cancels the blink loop (if any).
// Must be called with mutex held.
func (l *blinkingLED) stopBlinking() {
	if cancel := l.cancelBlink; cancel != nil {
		l.cancelBlink = nil
		cancel()
	}
}
