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
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/binkynet/L298Worker/model"
)

func TestMQTTHandleCommand(t *testing.T) {
	_, _, svc := newTestService(t, nil)
	m := newMQTTCommands(zerolog.Nop(), model.MQTTConfig{Host: "localhost"}, svc)

	require.NoError(t, m.handleCommand([]byte(`{"action":"drive","speed":60,"direction":-20}`)))
	status := svc.Status()
	require.NotNil(t, status.LastCommand)
	assert.Equal(t, model.Command{Action: model.ActionDrive, Speed: 60, Direction: -20}, *status.LastCommand)
	assert.Equal(t, 48.0, status.Left)
	assert.Equal(t, 60.0, status.Right)

	require.NoError(t, m.handleCommand([]byte(`{"action":"stop"}`)))
	assert.Equal(t, model.ActionStop, svc.Status().LastCommand.Action)

	assert.True(t, model.IsInvalidArgument(m.handleCommand([]byte(`not json`))))
	assert.True(t, model.IsValidation(m.handleCommand([]byte(`{"action":"pause"}`))))
	assert.True(t, model.IsValidation(m.handleCommand([]byte(`{}`))))
	assert.True(t, model.IsValidation(m.handleCommand([]byte(`{"action":"drive","speed":150,"direction":500}`))))
	assert.True(t, model.IsValidation(m.handleCommand([]byte(`{"action":"turn-left","speed":-40}`))))
	assert.Equal(t, model.ActionStop, svc.Status().LastCommand.Action, "rejected commands are not recorded")
}
