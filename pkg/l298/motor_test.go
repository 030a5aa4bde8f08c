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
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/binkynet/L298Worker/model"
)

func TestNewMotorRequiresPins(t *testing.T) {
	rec := &recorder{}
	pin := &fakePin{rec: rec}
	pwm := &fakePWM{rec: rec}

	_, err := NewMotor(nil, pin, pwm, nil)
	assert.True(t, model.IsInvalidArgument(err))
	_, err = NewMotor(pin, nil, pwm, nil)
	assert.True(t, model.IsInvalidArgument(err))
	_, err = NewMotor(pin, pin, nil, nil)
	assert.True(t, model.IsInvalidArgument(err))

	m, err := NewMotor(pin, pin, pwm, nil)
	require.NoError(t, err)
	assert.NoError(t, m.Stop(context.Background()))
}

func TestMotorTurnForward(t *testing.T) {
	for _, speed := range []float64{1, 25, 60, 100} {
		t.Run(fmt.Sprintf("speed=%g", speed), func(t *testing.T) {
			rec := &recorder{}
			m := newFakeMotor("", rec)
			require.NoError(t, m.Turn(context.Background(), speed))
			assert.Equal(t, []string{
				fmt.Sprintf("en=%g", speed/100),
				"in1=false",
				"in2=true",
			}, rec.events)
		})
	}
}

func TestMotorTurnBackward(t *testing.T) {
	for _, speed := range []float64{-1, -25, -80, -100} {
		t.Run(fmt.Sprintf("speed=%g", speed), func(t *testing.T) {
			rec := &recorder{}
			m := newFakeMotor("", rec)
			require.NoError(t, m.Turn(context.Background(), speed))
			assert.Equal(t, []string{
				fmt.Sprintf("en=%g", -speed/100),
				"in2=false",
				"in1=true",
			}, rec.events)
		})
	}
}

func TestMotorTurnZeroClearsIndicator(t *testing.T) {
	rec := &recorder{}
	m := newFakeMotor("", rec)
	require.NoError(t, m.Turn(context.Background(), 0))
	assert.Equal(t, []string{"en=0", "indicator=clear"}, rec.events)
}

func TestMotorStopEqualsTurnZero(t *testing.T) {
	turnRec := &recorder{}
	require.NoError(t, newFakeMotor("", turnRec).Turn(context.Background(), 0))
	stopRec := &recorder{}
	require.NoError(t, newFakeMotor("", stopRec).Stop(context.Background()))
	assert.Equal(t, turnRec.events, stopRec.events)
}

func TestMotorWritesEveryCall(t *testing.T) {
	rec := &recorder{}
	m := newFakeMotor("", rec)
	ctx := context.Background()
	require.NoError(t, m.Turn(ctx, 50))
	require.NoError(t, m.Turn(ctx, 50))
	assert.Len(t, rec.events, 6)
}

func TestMotorTurnSaturates(t *testing.T) {
	rec := &recorder{}
	m := newFakeMotor("", rec)
	require.NoError(t, m.Turn(context.Background(), 150))
	require.NoError(t, m.Turn(context.Background(), -250))
	assert.Equal(t, []string{
		"en=1", "in1=false", "in2=true",
		"en=1", "in2=false", "in1=true",
	}, rec.events)
}

func TestMotorTurnReportsPinErrors(t *testing.T) {
	rec := &recorder{}
	failure := errors.New("bus failure")
	m, err := NewMotor(
		&fakePin{name: "in1", rec: rec, err: failure},
		&fakePin{name: "in2", rec: rec},
		&fakePWM{name: "en", rec: rec},
		nil)
	require.NoError(t, err)

	err = m.Turn(context.Background(), 40)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "forward")
	assert.Contains(t, err.Error(), "bus failure")
	// in2 is not written after in1 failed
	assert.Equal(t, []string{"en=0.4", "in1=false"}, rec.events)
}

func TestDutyAndPulseWidth(t *testing.T) {
	assert.Equal(t, 0.0, Duty(0))
	assert.Equal(t, 1.0, Duty(100))
	assert.Equal(t, 1.0, Duty(-120))
	assert.InDelta(t, 0.4, Duty(-40), 1e-9)

	assert.Equal(t, 20*time.Millisecond, PulseWidth(100))
	assert.Equal(t, 8*time.Millisecond, PulseWidth(-40))
	assert.Equal(t, time.Duration(0), PulseWidth(0))
	assert.Equal(t, 20*time.Millisecond, PulseWidth(300))
}
