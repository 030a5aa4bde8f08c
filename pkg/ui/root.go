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
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/ssh"
	"github.com/dustin/go-humanize"
	"github.com/samber/lo"

	"github.com/binkynet/L298Worker/model"
	"github.com/binkynet/L298Worker/pkg/l298"
	"github.com/binkynet/L298Worker/pkg/service/drive"
)

const (
	// Change of speed or direction per key press
	stepSize = 10.0
	// Speed used to pivot when not driving
	defaultPivotSpeed = 60.0
	// Timeout of a single vehicle command
	commandTimeout = time.Second * 2
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	labelStyle = lipgloss.NewStyle().Width(12).Foreground(lipgloss.Color("241"))
	valueStyle = lipgloss.NewStyle().Bold(true)
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// UI creates drive consoles for SSH sessions.
type UI struct {
	drive drive.Service
}

// New creates a new UI for the given drive service.
func New(driveService drive.Service) *UI {
	return &UI{drive: driveService}
}

// Handler creates a drive console for the given SSH session.
func (u *UI) Handler(s ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, _ := s.Pty()
	return NewRoot(u.drive, pty.Term), []tea.ProgramOption{tea.WithAltScreen()}
}

// Root is the model of the drive console.
type Root struct {
	drive   drive.Service
	term    string
	width   int
	height  int
	loadAvg string

	speed     float64
	direction float64
	status    drive.Status
	lastErr   error

	keys keyMap
	help help.Model
}

var _ tea.Model = Root{}

// NewRoot creates the model of a drive console.
func NewRoot(driveService drive.Service, term string) Root {
	return Root{
		drive:  driveService,
		term:   term,
		status: driveService.Status(),
		keys:   defaultKeyMap,
		help:   help.New(),
	}
}

// Init is the first function that will be called. It returns an optional
// initial command. To not perform an initial command return nil.
func (r Root) Init() tea.Cmd {
	return tea.Batch(doReloadCPULoadAvg(), doRefreshStatus())
}

// Update is called when a message is received. Use it to inspect messages
// and, in response, update the model and/or send a command.
func (r Root) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadAvgMsg:
		r.loadAvg = string(msg)
		return r, doReloadCPULoadAvg()
	case refreshStatusMsg:
		r.status = r.drive.Status()
		return r, doRefreshStatus()
	case commandResultMsg:
		r.lastErr = msg.err
		r.status = r.drive.Status()
	case tea.WindowSizeMsg:
		r.height = msg.Height
		r.width = msg.Width
		r.help.Width = msg.Width
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, r.keys.Quit):
			return r, tea.Sequence(r.stop(), tea.Quit)
		case key.Matches(msg, r.keys.Faster):
			r.speed = lo.Clamp(r.speed+stepSize, -l298.MaxSpeed, l298.MaxSpeed)
			return r, r.driveCmd()
		case key.Matches(msg, r.keys.Slower):
			r.speed = lo.Clamp(r.speed-stepSize, -l298.MaxSpeed, l298.MaxSpeed)
			return r, r.driveCmd()
		case key.Matches(msg, r.keys.Left):
			r.direction = lo.Clamp(r.direction-stepSize, -l298.MaxDirection, l298.MaxDirection)
			return r, r.driveCmd()
		case key.Matches(msg, r.keys.Right):
			r.direction = lo.Clamp(r.direction+stepSize, -l298.MaxDirection, l298.MaxDirection)
			return r, r.driveCmd()
		case key.Matches(msg, r.keys.PivotLeft):
			return r, r.execute(model.Command{Action: model.ActionTurnLeft, Speed: r.pivotSpeed()})
		case key.Matches(msg, r.keys.PivotRight):
			return r, r.execute(model.Command{Action: model.ActionTurnRight, Speed: r.pivotSpeed()})
		case key.Matches(msg, r.keys.Stop):
			r.speed, r.direction = 0, 0
			return r, r.stop()
		case key.Matches(msg, r.keys.Sequence):
			return r, r.execute(model.Command{Action: model.ActionSequence})
		case key.Matches(msg, r.keys.Help):
			r.help.ShowAll = !r.help.ShowAll
		}
	}
	return r, nil
}

// View renders the program's UI, which is just a string. The view is
// rendered after every Update.
func (r Root) View() string {
	var sb strings.Builder
	sb.WriteString(r.headerView())
	sb.WriteString("\n")
	row := func(label, value string) {
		sb.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Speed", fmt.Sprintf("%+.0f%%", r.speed))
	row("Direction", fmt.Sprintf("%+.0f%%", r.direction))
	row("Motors", fmt.Sprintf("left %+.0f%%  right %+.0f%%", r.status.Left, r.status.Right))
	if cmd := r.status.LastCommand; cmd != nil {
		row("Last", fmt.Sprintf("%s (%s)", formatCommand(*cmd), humanize.Time(r.status.LastCommandAt)))
	} else {
		row("Last", "-")
	}
	if r.status.SequenceRunning {
		row("Sequence", "running")
	}
	if r.lastErr != nil {
		sb.WriteString(errorStyle.Render(r.lastErr.Error()) + "\n")
	}
	sb.WriteString("\n" + r.help.View(r.keys) + "\n")
	return sb.String()
}

func (r Root) headerView() string {
	return lipgloss.JoinHorizontal(lipgloss.Left,
		titleStyle.Render("BinkyNet L298 worker "),
		r.loadAvg,
		labelStyle.Render(" "+r.term),
	) + "\n"
}

// pivotSpeed returns the speed used to pivot the vehicle.
func (r Root) pivotSpeed() float64 {
	if r.speed == 0 {
		return defaultPivotSpeed
	}
	if r.speed < 0 {
		return -r.speed
	}
	return r.speed
}

func (r Root) driveCmd() tea.Cmd {
	return r.execute(model.Command{Action: model.ActionDrive, Speed: r.speed, Direction: r.direction})
}

func (r Root) stop() tea.Cmd {
	svc := r.drive
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		return commandResultMsg{err: svc.Stop(ctx)}
	}
}

// execute the given command in the background.
func (r Root) execute(cmd model.Command) tea.Cmd {
	svc := r.drive
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		return commandResultMsg{err: svc.Execute(ctx, cmd)}
	}
}

// formatCommand returns a human readable form of the given command.
func formatCommand(cmd model.Command) string {
	switch cmd.Action {
	case model.ActionDrive:
		return fmt.Sprintf("drive %+.0f%% direction %+.0f%%", cmd.Speed, cmd.Direction)
	case model.ActionTurnLeft, model.ActionTurnRight:
		return fmt.Sprintf("%s %.0f%%", cmd.Action, cmd.Speed)
	default:
		return string(cmd.Action)
	}
}

type commandResultMsg struct {
	err error
}

type refreshStatusMsg time.Time

func doRefreshStatus() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return refreshStatusMsg(t)
	})
}

type loadAvgMsg string

func doReloadCPULoadAvg() tea.Cmd {
	return tea.Tick(time.Second*2, func(t time.Time) tea.Msg {
		if content, err := os.ReadFile("/proc/loadavg"); err != nil {
			return loadAvgMsg(err.Error())
		} else {
			return loadAvgMsg(strings.TrimSpace(string(content)))
		}
	})
}
