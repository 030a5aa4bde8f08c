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
	"context"
	"encoding/json"
	"time"

	mqttapi "github.com/eclipse/paho.mqtt.golang"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/binkynet/L298Worker/model"
)

const (
	mqttCommandTopic   = "command"
	mqttStateTopic     = "state"
	mqttConnectTimeout = time.Second * 5
	mqttPublishTimeout = time.Millisecond * 200
)

// mqttCommands receives vehicle commands from an MQTT broker
// and publishes the vehicle status after each change.
type mqttCommands struct {
	log    zerolog.Logger
	config model.MQTTConfig
	svc    Service
	// Context used for received commands
	ctx context.Context
}

func newMQTTCommands(log zerolog.Logger, config model.MQTTConfig, svc Service) *mqttCommands {
	return &mqttCommands{
		log:    log.With().Str("component", "mqtt-commands").Logger(),
		config: config,
		svc:    svc,
		ctx:    context.Background(),
	}
}

// Run the command channel until the given context is canceled.
func (m *mqttCommands) Run(ctx context.Context) error {
	m.ctx = ctx
	opts := mqttapi.NewClientOptions().
		AddBroker(m.config.BrokerURL()).
		SetClientID(m.config.GetClientID("commands")).
		SetUsername(m.config.UserName).
		SetPassword(m.config.Password).
		SetAutoReconnect(true)
	opts.SetKeepAlive(2 * time.Second)
	opts.SetPingTimeout(1 * time.Second)

	client := mqttapi.NewClient(opts)
	if token := client.Connect(); !token.WaitTimeout(mqttConnectTimeout) {
		return errors.Errorf("timeout connecting to mqtt broker %s", m.config.BrokerURL())
	} else if err := token.Error(); err != nil {
		return errors.Wrap(err, "failed to connect to mqtt")
	}
	defer client.Disconnect(250)

	commandTopic := m.config.GetTopicPrefix() + mqttCommandTopic
	stateTopic := m.config.GetTopicPrefix() + mqttStateTopic
	if token := client.Subscribe(commandTopic, 0, func(c mqttapi.Client, msg mqttapi.Message) {
		if err := m.handleCommand(msg.Payload()); err != nil {
			m.log.Warn().Err(err).Str("payload", string(msg.Payload())).Msg("Invalid command received")
		}
	}); token.Wait() && token.Error() != nil {
		return errors.Wrapf(token.Error(), "failed to subscribe to '%s'", commandTopic)
	}
	m.log.Info().Str("topic", commandTopic).Msg("Listening for commands")

	unsubscribe := m.svc.Subscribe(func(status Status) {
		payload, err := json.Marshal(status)
		if err != nil {
			m.log.Error().Err(err).Msg("Failed to encode status")
			return
		}
		token := client.Publish(stateTopic, 0, true, payload)
		if !token.WaitTimeout(mqttPublishTimeout) {
			m.log.Warn().Str("topic", stateTopic).Msg("Failed to deliver state in time")
		} else if err := token.Error(); err != nil {
			m.log.Warn().Err(err).Str("topic", stateTopic).Msg("Failed to publish state")
		}
	})
	defer unsubscribe()

	<-ctx.Done()
	client.Unsubscribe(commandTopic).WaitTimeout(mqttPublishTimeout)
	return nil
}

// handleCommand decodes and executes the given command payload.
func (m *mqttCommands) handleCommand(payload []byte) error {
	var cmd model.Command
	if err := json.Unmarshal(payload, &cmd); err != nil {
		return errors.Wrapf(model.InvalidArgumentError, "invalid command payload: %s", err)
	}
	if err := cmd.Validate(); err != nil {
		return err
	}
	m.log.Debug().Str("action", string(cmd.Action)).Msg("Received command")
	return m.svc.Execute(m.ctx, cmd)
}
