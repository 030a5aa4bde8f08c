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
	"context"
	"sort"
	"sync/atomic"
	"time"

	aerr "github.com/ewoutp/go-aggregate-error"
	"github.com/rs/zerolog"

	"github.com/binkynet/L298Worker/model"
	"github.com/binkynet/L298Worker/pkg/service/bridge"
)

// Service manages all configured devices.
type Service interface {
	// DeviceByID returns the configured device with given ID.
	// Return false if not found or not configured.
	DeviceByID(id model.DeviceID) (Device, bool)
	// Configure is called once to put all devices in the desired state.
	Configure(ctx context.Context) error
	// Run the service until the given context is canceled.
	Run(ctx context.Context) error
	// Close brings all devices back to a safe state.
	Close(context.Context) error
	// Get a list of configured device IDs
	GetConfiguredDeviceIDs() []string
	// Get a list of unconfigured device IDs
	GetUnconfiguredDeviceIDs() []string
}

type service struct {
	log               zerolog.Logger
	bAPI              bridge.API
	devices           map[model.DeviceID]Device
	configuredDevices map[model.DeviceID]Device
	activeCount       uint32
}

// NewService creates all devices from the given configurations.
// The broker is only needed for MQTT devices.
func NewService(configs []model.Device, broker *model.MQTTConfig, bAPI bridge.API, log zerolog.Logger) (Service, error) {
	s := &service{
		log:               log.With().Str("component", "device-service").Logger(),
		bAPI:              bAPI,
		devices:           make(map[model.DeviceID]Device),
		configuredDevices: make(map[model.DeviceID]Device),
	}
	var bus bridge.I2CBus
	for _, c := range configs {
		if c.Type.IsI2C() && bus == nil {
			var err error
			if bus, err = bAPI.I2CBus(); err != nil {
				return nil, err
			}
		}
		if c.Type.IsMQTT() && broker.IsEmpty() {
			return nil, model.InvalidArgument("Device '%s' requires an MQTT broker", c.ID)
		}
		var dev Device
		var err error
		switch c.Type {
		case model.DeviceTypeGPIO:
			dev, err = newLocalGPIO(c, bAPI, s.onActive)
		case model.DeviceTypeMCP23008:
			dev, err = newMcp23008(c, bus, s.onActive)
		case model.DeviceTypeMCP23017:
			dev, err = newMcp23017(c, bus, s.onActive)
		case model.DeviceTypePCA9685:
			dev, err = newPCA9685(c, bus, s.onActive)
		case model.DeviceTypeMQTTGPIO:
			dev, err = newMQTTGPIO(s.log, c, *broker, s.onActive)
		case model.DeviceTypeMQTTPWM:
			dev, err = newMQTTPWM(s.log, c, *broker, s.onActive)
		default:
			return nil, model.InvalidArgument("Unsupported device type '%s'", c.Type)
		}
		if err != nil {
			return nil, err
		}
		s.devices[c.ID] = dev
	}
	devicesCreatedTotal.Set(float64(len(s.devices)))
	return s, nil
}

// DeviceByID returns the configured device with given ID.
func (s *service) DeviceByID(id model.DeviceID) (Device, bool) {
	dev, ok := s.configuredDevices[id]
	return dev, ok
}

// Configure is called once to put all devices in the desired state.
func (s *service) Configure(ctx context.Context) error {
	var ae aerr.AggregateError
	configuredDevices := make(map[model.DeviceID]Device)
	for id, d := range s.devices {
		log := s.log.With().Str("device-id", string(id)).Logger()
		log.Debug().Msg("configuring device...")
		if err := d.Configure(ctx); err != nil {
			log.Error().Err(err).Msg("Failed to configure device")
			ae.Add(err)
		} else {
			configuredDevices[id] = d
			log.Debug().Msg("configured device")
		}
	}
	s.configuredDevices = configuredDevices
	s.log.Info().Int("count", len(configuredDevices)).Msg("Configured devices")
	devicesConfiguredTotal.Set(float64(len(configuredDevices)))
	return ae.AsError()
}

// Run the service until the given context is canceled.
func (s *service) Run(ctx context.Context) error {
	return s.runActiveNotify(ctx)
}

// Close brings all devices back to a safe state.
func (s *service) Close(ctx context.Context) error {
	var ae aerr.AggregateError
	for _, d := range s.devices {
		if err := d.Close(ctx); err != nil {
			ae.Add(err)
		}
	}
	return ae.AsError()
}

func (s *service) onActive() {
	atomic.AddUint32(&s.activeCount, 1)
}

// runActiveNotify blinks the red status LED while devices are active.
func (s *service) runActiveNotify(ctx context.Context) error {
	led, err := s.bAPI.StatusLED(bridge.LEDRed)
	if err != nil {
		s.log.Warn().Err(err).Msg("No activity LED")
		<-ctx.Done()
		return nil
	}
	lastActiveCount := uint32(0)
	count := 0
	for {
		select {
		case <-ctx.Done():
			// Context canceled
			led.Set(false)
			return nil
		case <-time.After(time.Second / 10):
			newActiveCount := atomic.LoadUint32(&s.activeCount)
			if newActiveCount != lastActiveCount {
				lastActiveCount = newActiveCount
				led.Blink(time.Second / 10)
				count = 0
			} else if count < 20 {
				count++
			} else {
				count = 0
				led.Set(false)
			}
		}
	}
}

// Get a list of configured device IDs
func (s *service) GetConfiguredDeviceIDs() []string {
	result := make([]string, 0, len(s.configuredDevices))
	for k := range s.configuredDevices {
		result = append(result, string(k))
	}
	sort.Strings(result)
	return result
}

// Get a list of unconfigured device IDs
func (s *service) GetUnconfiguredDeviceIDs() []string {
	result := make([]string, 0, len(s.devices))
	for id := range s.devices {
		if _, found := s.configuredDevices[id]; !found {
			result = append(result, string(id))
		}
	}
	sort.Strings(result)
	return result
}
