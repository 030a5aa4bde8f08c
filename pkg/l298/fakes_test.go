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
	"fmt"
)

// recorder collects all pin writes in the order they happen.
type recorder struct {
	events []string
}

func (r *recorder) add(format string, args ...interface{}) {
	r.events = append(r.events, fmt.Sprintf(format, args...))
}

type fakePin struct {
	name string
	rec  *recorder
	err  error
}

func (p *fakePin) Set(ctx context.Context, value bool) error {
	p.rec.add("%s=%t", p.name, value)
	return p.err
}

type fakePWM struct {
	name string
	rec  *recorder
	err  error
}

func (p *fakePWM) SetDuty(ctx context.Context, duty float64) error {
	p.rec.add("%s=%g", p.name, duty)
	return p.err
}

type fakeIndicator struct {
	rec *recorder
}

func (i *fakeIndicator) Clear(ctx context.Context) error {
	i.rec.add("indicator=clear")
	return nil
}

// newFakeMotor creates a motor whose writes are recorded with given prefix.
func newFakeMotor(prefix string, rec *recorder) *Motor {
	m, err := NewMotor(
		&fakePin{name: prefix + "in1", rec: rec},
		&fakePin{name: prefix + "in2", rec: rec},
		&fakePWM{name: prefix + "en", rec: rec},
		&fakeIndicator{rec: rec})
	if err != nil {
		panic(err)
	}
	return m
}

// turnCall is a single call on a fakeTurner.
type turnCall struct {
	motor string
	speed float64
	stop  bool
}

type fakeTurner struct {
	name  string
	calls *[]turnCall
	err   error
}

func (t *fakeTurner) Turn(ctx context.Context, speed float64) error {
	*t.calls = append(*t.calls, turnCall{motor: t.name, speed: speed})
	return t.err
}

func (t *fakeTurner) Stop(ctx context.Context) error {
	*t.calls = append(*t.calls, turnCall{motor: t.name, stop: true})
	return t.err
}
