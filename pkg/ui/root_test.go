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

package ui

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/binkynet/L298Worker/model"
	"github.com/binkynet/L298Worker/pkg/service/drive"
)

// fakeDrive records executed commands.
type fakeDrive struct {
	mutex    sync.Mutex
	commands []model.Command
}

func (d *fakeDrive) Drive(ctx context.Context, speed, direction float64) error {
	return d.Execute(ctx, model.Command{Action: model.ActionDrive, Speed: speed, Direction: direction})
}
func (d *fakeDrive) TurnLeft(ctx context.Context, speed float64) error {
	return d.Execute(ctx, model.Command{Action: model.ActionTurnLeft, Speed: speed})
}
func (d *fakeDrive) TurnRight(ctx context.Context, speed float64) error {
	return d.Execute(ctx, model.Command{Action: model.ActionTurnRight, Speed: speed})
}
func (d *fakeDrive) Stop(ctx context.Context) error {
	return d.Execute(ctx, model.Command{Action: model.ActionStop})
}
func (d *fakeDrive) Execute(ctx context.Context, cmd model.Command) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.commands = append(d.commands, cmd)
	return nil
}
func (d *fakeDrive) RunSequence(ctx context.Context) error { return nil }
func (d *fakeDrive) StartSequence() error                  { return nil }
func (d *fakeDrive) Status() drive.Status {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if len(d.commands) == 0 {
		return drive.Status{}
	}
	last := d.commands[len(d.commands)-1]
	return drive.Status{LastCommand: &last, LastCommandAt: time.Now()}
}
func (d *fakeDrive) Subscribe(cb func(drive.Status)) context.CancelFunc { return func() {} }
func (d *fakeDrive) Run(ctx context.Context) error                      { return nil }

func (d *fakeDrive) last() model.Command {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return d.commands[len(d.commands)-1]
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press sends the given key to the model and runs the resulting command.
func press(t *testing.T, m tea.Model, msg tea.KeyMsg) tea.Model {
	m, cmd := m.Update(msg)
	require.NotNil(t, cmd)
	result := cmd()
	m, _ = m.Update(result)
	return m
}

func TestDriveKeys(t *testing.T) {
	d := &fakeDrive{}
	var m tea.Model = NewRoot(d, "xterm")

	m = press(t, m, tea.KeyMsg{Type: tea.KeyUp})
	m = press(t, m, runes("w"))
	assert.Equal(t, model.Command{Action: model.ActionDrive, Speed: 20}, d.last())

	m = press(t, m, runes("a"))
	assert.Equal(t, model.Command{Action: model.ActionDrive, Speed: 20, Direction: -10}, d.last())

	m = press(t, m, tea.KeyMsg{Type: tea.KeyRight})
	m = press(t, m, runes("d"))
	assert.Equal(t, model.Command{Action: model.ActionDrive, Speed: 20, Direction: 10}, d.last())

	m = press(t, m, runes("q"))
	assert.Equal(t, model.Command{Action: model.ActionTurnLeft, Speed: 20}, d.last())

	for i := 0; i < 15; i++ {
		m = press(t, m, runes("s"))
	}
	assert.Equal(t, model.Command{Action: model.ActionDrive, Speed: -100, Direction: 10}, d.last())

	m = press(t, m, runes("e"))
	assert.Equal(t, model.Command{Action: model.ActionTurnRight, Speed: 100}, d.last())

	m = press(t, m, tea.KeyMsg{Type: tea.KeySpace})
	assert.Equal(t, model.Command{Action: model.ActionStop}, d.last())
	assert.Equal(t, 0.0, m.(Root).speed)

	m = press(t, m, runes("q"))
	assert.Equal(t, model.Command{Action: model.ActionTurnLeft, Speed: defaultPivotSpeed}, d.last())

	m = press(t, m, runes("p"))
	assert.Equal(t, model.ActionSequence, d.last().Action)

	view := m.View()
	assert.True(t, strings.Contains(view, "sequence"), view)
}

func TestQuitStops(t *testing.T) {
	d := &fakeDrive{}
	var m tea.Model = NewRoot(d, "xterm")
	_, cmd := m.Update(runes("x"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.Sequence()(), cmd(), "quit must stop before quitting")
}

func TestFormatCommand(t *testing.T) {
	assert.Equal(t, "drive +60% direction -20%", formatCommand(model.Command{Action: model.ActionDrive, Speed: 60, Direction: -20}))
	assert.Equal(t, "turn-left 100%", formatCommand(model.Command{Action: model.ActionTurnLeft, Speed: 100}))
	assert.Equal(t, "stop", formatCommand(model.Command{Action: model.ActionStop}))
}
