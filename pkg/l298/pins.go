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

import "context"

// DigitalOutput is a binary output line, such as IN1 or IN2 of an H-bridge.
type DigitalOutput interface {
	// Set the output to the given logical level.
	Set(ctx context.Context, value bool) error
}

// PWMOutput is a pulse width modulated output, such as EN of an H-bridge.
type PWMOutput interface {
	// SetDuty sets the duty cycle of the output, 0.0 (off) ... 1.0 (full on).
	SetDuty(ctx context.Context, duty float64) error
}

// Indicator is a visual indicator that is cleared whenever a motor stops.
type Indicator interface {
	// Clear turns the indicator off.
	Clear(ctx context.Context) error
}

type noIndicator struct{}

func (noIndicator) Clear(context.Context) error { return nil }
