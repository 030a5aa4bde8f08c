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

package devices

import (
	"fmt"
	"strings"
	"sync"
	"time"

	mqttapi "github.com/eclipse/paho.mqtt.golang"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/binkynet/L298Worker/model"
)

const (
	mqttPublishTimeout = time.Millisecond * 200
	mqttConnectTimeout = time.Second * 5
)

// mqttConnection is the connection to the broker shared by
// the MQTT device types.
type mqttConnection struct {
	log         zerolog.Logger
	mutex       sync.Mutex
	onActive    func()
	config      model.Device
	broker      model.MQTTConfig
	topicPrefix string
	client      mqttapi.Client
	// Last received state payload per topic (without prefix & "/state" suffix)
	states map[string]string
}

// setup the connection settings.
func (c *mqttConnection) setup(log zerolog.Logger, config model.Device, broker model.MQTTConfig, onActive func()) {
	topicPrefix := config.Address
	if topicPrefix == "" {
		topicPrefix = broker.GetTopicPrefix() + string(config.ID)
	}
	c.log = log.With().Str("device-id", string(config.ID)).Logger()
	c.onActive = onActive
	c.config = config
	c.broker = broker
	c.topicPrefix = strings.TrimSuffix(topicPrefix, "/") + "/"
	c.states = make(map[string]string)
}

// connect to the broker and subscribe to all state topics.
// Must be called with mutex held.
func (c *mqttConnection) connect() error {
	opts := mqttapi.NewClientOptions().
		AddBroker(c.broker.BrokerURL()).
		SetClientID(c.broker.GetClientID(string(c.config.ID))).
		SetUsername(c.broker.UserName).
		SetPassword(c.broker.Password)
	opts.SetKeepAlive(2 * time.Second)
	opts.SetPingTimeout(1 * time.Second)
	opts.SetOrderMatters(false)
	opts.SetDefaultPublishHandler(func(c mqttapi.Client, m mqttapi.Message) {
		// Ignore messages when no subscription match
	})

	c.client = mqttapi.NewClient(opts)
	if token := c.client.Connect(); !token.WaitTimeout(mqttConnectTimeout) {
		return errors.Errorf("timeout connecting to mqtt broker %s", c.broker.BrokerURL())
	} else if err := token.Error(); err != nil {
		return errors.Wrap(err, "failed to connect to mqtt")
	}
	topic := c.topicPrefix + "+/state"
	if token := c.client.Subscribe(topic, 0, c.onMessage); token.Wait() && token.Error() != nil {
		return errors.Wrapf(token.Error(), "failed to subscribe to '%s'", topic)
	}
	c.onActive()
	return nil
}

// disconnect from the broker.
// Must be called with mutex held.
func (c *mqttConnection) disconnect() {
	if c.client != nil {
		c.client.Disconnect(250)
		c.client = nil
	}
	c.onActive()
}

// publish a command for the given sub topic.
// Must be called with mutex held.
func (c *mqttConnection) publish(subTopic, payload string) error {
	if c.client == nil {
		return errors.Errorf("device '%s' is not configured", c.config.ID)
	}
	topic := c.topicPrefix + subTopic + "/command"
	token := c.client.Publish(topic, 0, false, payload)
	if !token.WaitTimeout(mqttPublishTimeout) {
		c.log.Error().
			Str("topic", topic).
			Str("payload", payload).
			Msg("failed to deliver MQTT command in time")
	} else if err := token.Error(); err != nil {
		return errors.Wrapf(err, "failed to publish to '%s'", topic)
	}
	c.onActive()
	return nil
}

// Receive state messages
func (c *mqttConnection) onMessage(client mqttapi.Client, msg mqttapi.Message) {
	topic := strings.TrimPrefix(msg.Topic(), c.topicPrefix)
	if !strings.HasSuffix(topic, "/state") {
		return
	}
	topic = strings.TrimSuffix(topic, "/state")

	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.states[topic] = string(msg.Payload())
}

func mqttPinTopic(pin model.DeviceIndex) string {
	return fmt.Sprintf("pin%d", pin)
}

func mqttPWMTopic(output model.DeviceIndex) string {
	return fmt.Sprintf("pwm%d", output)
}

// Parse a string into a bool
func parseBool(str string) (bool, error) {
	switch strings.ToLower(str) {
	case "1", "t", "true", "on", "yes":
		return true, nil
	case "0", "f", "false", "off", "no":
		return false, nil
	}
	return false, errors.Errorf("invalid bool value '%s'", str)
}

// format a bool as string
func formatBool(v bool) string {
	if v {
		return "ON"
	}
	return "OFF"
}
