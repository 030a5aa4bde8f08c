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

package logging

import (
	"time"

	mqttapi "github.com/eclipse/paho.mqtt.golang"
	"github.com/pkg/errors"

	"github.com/binkynet/L298Worker/model"
)

const (
	publishTimeout = time.Millisecond * 200
	connectTimeout = time.Second * 5
)

type mqttPublisher struct {
	client mqttapi.Client
}

// NewMQTTPublisher connects to the given broker and returns a Publisher
// for it.
func NewMQTTPublisher(config model.MQTTConfig, clientIDSuffix string) (Publisher, error) {
	opts := mqttapi.NewClientOptions().
		AddBroker(config.BrokerURL()).
		SetClientID(config.GetClientID(clientIDSuffix)).
		SetUsername(config.UserName).
		SetPassword(config.Password).
		SetAutoReconnect(true)
	client := mqttapi.NewClient(opts)
	if token := client.Connect(); !token.WaitTimeout(connectTimeout) {
		return nil, errors.Errorf("timeout connecting to mqtt broker %s", config.BrokerURL())
	} else if err := token.Error(); err != nil {
		return nil, errors.Wrap(err, "failed to connect to mqtt")
	}
	return &mqttPublisher{client: client}, nil
}

// Publish the given payload on the given topic.
func (p *mqttPublisher) Publish(topic string, payload []byte) error {
	token := p.client.Publish(topic, 0, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		return errors.Errorf("timeout publishing to '%s'", topic)
	}
	return token.Error()
}
