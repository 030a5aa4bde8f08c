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
	"github.com/charmbracelet/bubbles/key"
)

// keyMap contains all key bindings of the drive console.
type keyMap struct {
	Faster     key.Binding
	Slower     key.Binding
	Left       key.Binding
	Right      key.Binding
	PivotLeft  key.Binding
	PivotRight key.Binding
	Stop       key.Binding
	Sequence   key.Binding
	Help       key.Binding
	Quit       key.Binding
}

var defaultKeyMap = keyMap{
	Faster: key.NewBinding(
		key.WithKeys("up", "w"),
		key.WithHelp("↑/w", "faster"),
	),
	Slower: key.NewBinding(
		key.WithKeys("down", "s"),
		key.WithHelp("↓/s", "slower"),
	),
	Left: key.NewBinding(
		key.WithKeys("left", "a"),
		key.WithHelp("←/a", "steer left"),
	),
	Right: key.NewBinding(
		key.WithKeys("right", "d"),
		key.WithHelp("→/d", "steer right"),
	),
	PivotLeft: key.NewBinding(
		key.WithKeys("q"),
		key.WithHelp("q", "pivot left"),
	),
	PivotRight: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "pivot right"),
	),
	Stop: key.NewBinding(
		key.WithKeys(" "),
		key.WithHelp("space", "stop"),
	),
	Sequence: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "run sequence"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "toggle help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("x", "ctrl+c"),
		key.WithHelp("x", "stop & disconnect"),
	),
}

// ShortHelp returns the bindings shown in the short help view.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Faster, k.Slower, k.Left, k.Right, k.Stop, k.Help, k.Quit}
}

// FullHelp returns the bindings shown in the full help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Faster, k.Slower, k.Left, k.Right},
		{k.PivotLeft, k.PivotRight, k.Stop, k.Sequence},
		{k.Help, k.Quit},
	}
}
