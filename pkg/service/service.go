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

package service

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/binkynet/L298Worker/model"
	"github.com/binkynet/L298Worker/pkg/service/bridge"
	"github.com/binkynet/L298Worker/pkg/service/devices"
	"github.com/binkynet/L298Worker/pkg/service/drive"
)

// Service runs the worker: devices and the vehicle.
type Service interface {
	// Run the worker until the given context is cancelled.
	Run(ctx context.Context) error
	// Drive returns the service that controls the vehicle.
	Drive() drive.Service
	// Devices returns the service that manages the devices.
	Devices() devices.Service
	// HostID returns the ID of the host the worker runs on.
	HostID() string
}

type Config struct {
	ProgramVersion string
	// Configuration of devices & vehicle
	Configuration model.LocalConfiguration
	// If set, the sequence is started as soon as the worker runs
	SequenceOnStart bool
	HostID          string // Only used if not empty
}

type Dependencies struct {
	Logger zerolog.Logger
	Bridge bridge.API
}

type service struct {
	Config
	Dependencies

	hostID     string
	startedAt  time.Time
	devService devices.Service
	drvService drive.Service
}

// NewService creates a Service instance and returns it.
// All devices are configured before this function returns.
func NewService(ctx context.Context, conf Config, deps Dependencies) (Service, error) {
	deps.Logger = deps.Logger.With().Str("component", "service").Logger()
	// Create host ID
	hostID := conf.HostID
	if hostID == "" {
		var err error
		hostID, err = createHostID()
		if err != nil {
			return nil, errors.Wrap(err, "Failed to create host ID")
		}
	}
	deps.Logger = deps.Logger.With().Str("host-id", hostID).Logger()
	local := conf.Configuration
	if err := local.Validate(); err != nil {
		return nil, errors.Wrap(err, "Invalid configuration")
	}
	if local.MQTT != nil && local.MQTT.ClientID == "" {
		mqtt := *local.MQTT
		mqtt.ClientID = "l298-" + hostID
		local.MQTT = &mqtt
	}

	// Create & configure devices
	devService, err := devices.NewService(local.Devices, local.MQTT, deps.Bridge, deps.Logger)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to create devices")
	}
	if err := devService.Configure(ctx); err != nil {
		deps.Logger.Warn().Err(err).
			Strs("unconfigured", devService.GetUnconfiguredDeviceIDs()).
			Msg("Not all devices could be configured")
	}
	configureCounter.Inc()

	// Create vehicle
	drvService, err := drive.NewService(ctx, drive.Config{
		Vehicle:  local.Vehicle,
		Button:   local.Button,
		Sequence: local.GetSequence(),
		MQTT:     local.MQTT,
	}, drive.Dependencies{
		Logger:  deps.Logger,
		Bridge:  deps.Bridge,
		Devices: devService,
	})
	if err != nil {
		devService.Close(context.Background())
		return nil, errors.Wrap(err, "Failed to create vehicle")
	}
	return &service{
		Config:       conf,
		Dependencies: deps,
		hostID:       hostID,
		devService:   devService,
		drvService:   drvService,
	}, nil
}

// Drive returns the service that controls the vehicle.
func (s *service) Drive() drive.Service { return s.drvService }

// Devices returns the service that manages the devices.
func (s *service) Devices() devices.Service { return s.devService }

// HostID returns the ID of the host the worker runs on.
func (s *service) HostID() string { return s.hostID }

// Run the worker until the given context is canceled.
// The vehicle is stopped and all devices are closed before returning.
func (s *service) Run(ctx context.Context) error {
	log := s.Logger
	s.startedAt = time.Now()
	defer s.Bridge.Close()

	if led, err := s.Bridge.StatusLED(bridge.LEDGreen); err == nil {
		led.Set(true)
	}
	log.Info().Str("version", s.ProgramVersion).Msg("Worker started")
	runningGauge.Set(1)
	defer runningGauge.Set(0)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.devService.Run(gctx) })
	g.Go(func() error { return s.drvService.Run(gctx) })
	if s.SequenceOnStart {
		if err := s.drvService.StartSequence(); err != nil {
			log.Warn().Err(err).Msg("Failed to start sequence")
		}
	}
	err := g.Wait()

	closeCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()
	if closeErr := s.devService.Close(closeCtx); closeErr != nil {
		log.Warn().Err(closeErr).Msg("Failed to close devices")
	}
	log.Info().Dur("uptime", time.Since(s.startedAt)).Msg("Worker stopped")
	return err
}
