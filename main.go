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

package main

import (
	"context"
	"fmt"
	"os"

	terminate "github.com/pulcy/go-terminate"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/binkynet/L298Worker/model"
	"github.com/binkynet/L298Worker/pkg/environment"
	"github.com/binkynet/L298Worker/pkg/logging"
	"github.com/binkynet/L298Worker/pkg/server"
	"github.com/binkynet/L298Worker/pkg/service"
	"github.com/binkynet/L298Worker/pkg/service/bridge"
	"github.com/binkynet/L298Worker/pkg/ui"
)

const (
	projectName     = "BinkyNet L298 Worker"
	defaultHTTPPort = 7129
	defaultSSHPort  = 7122
)

var (
	projectVersion = "dev"
	projectBuild   = "dev"
)

func main() {
	var levelFlag string
	var bridgeFlag string
	var configPath string
	var hostID string
	var serverHost string
	var httpPort int
	var sshPort int
	var sequenceOnStart bool

	pflag.StringVarP(&levelFlag, "level", "l", "info", "Set log level")
	pflag.StringVarP(&bridgeFlag, "bridge", "b", "auto", "Type of bridge to use (rpi|virtual|auto)")
	pflag.StringVarP(&configPath, "config", "c", "", "Path of the YAML configuration file (uses built-in default when empty)")
	pflag.StringVar(&hostID, "host-id", "", "ID of this host (derived from the machine when empty)")
	pflag.StringVar(&serverHost, "host", "0.0.0.0", "Host address the servers will listen on")
	pflag.IntVar(&httpPort, "http-port", defaultHTTPPort, "Port the HTTP server will listen on")
	pflag.IntVar(&sshPort, "ssh-port", defaultSSHPort, "Port the SSH server will listen on (0 to disable)")
	pflag.BoolVar(&sequenceOnStart, "sequence-on-start", false, "Run the sequence once when the worker starts")
	pflag.Parse()

	level, err := zerolog.ParseLevel(levelFlag)
	if err != nil {
		Exitf("Invalid log level '%s': %v\n", levelFlag, err)
	}

	// Prepare to shutdown in a controlled manor
	ctx, cancel := context.WithCancel(context.Background())
	mqttLog := logging.NewMQTTWriter(ctx)
	logger := zerolog.New(logging.NewMultiWriter(zerolog.ConsoleWriter{Out: os.Stderr}, mqttLog)).
		With().Timestamp().Logger().Level(level)
	t := terminate.NewTerminator(func(template string, args ...interface{}) {
		logger.Info().Msgf(template, args...)
	}, cancel)
	go t.ListenSignals()

	conf, err := model.LoadConfiguration(configPath)
	if err != nil {
		Exitf("Failed to load configuration: %v\n", err)
	}
	if !conf.MQTT.IsEmpty() {
		// Forward logs to the broker
		if pub, err := logging.NewMQTTPublisher(*conf.MQTT, "log"); err != nil {
			logger.Warn().Err(err).Msg("Failed to connect log forwarding to MQTT broker")
		} else {
			mqttLog.SetDestination(conf.MQTT.GetTopicPrefix()+"log", pub)
			mqttLog.Enable(true)
		}
	}

	bridgeType, err := environment.ParseBridgeType(bridgeFlag)
	if err != nil {
		Exitf("%v (rpi|virtual|auto)\n", err)
	}
	if bridgeType == environment.BridgeTypeAuto {
		bridgeType = environment.AutoDetectBridgeType(logger)
	}
	var br bridge.API
	switch bridgeType {
	case environment.BridgeTypeRPI:
		br, err = bridge.NewRaspberryPiBridge()
		if err != nil {
			Exitf("Failed to initialize Raspberry Pi Bridge: %v\n", err)
		}
	case environment.BridgeTypeVirtual:
		br = bridge.NewVirtualBridge()
	}
	logger.Info().Str("bridge", string(bridgeType)).Msg("Using bridge")

	svc, err := service.NewService(ctx, service.Config{
		ProgramVersion:  projectVersion,
		Configuration:   conf,
		SequenceOnStart: sequenceOnStart,
		HostID:          hostID,
	}, service.Dependencies{
		Logger: logger,
		Bridge: br,
	})
	if err != nil {
		br.Close()
		Exitf("Failed to initialize Service: %v\n", err)
	}

	srv, err := server.New(server.Config{
		Host:     serverHost,
		HTTPPort: httpPort,
		SSHPort:  sshPort,
	}, logger, ui.New(svc.Drive()), svc.Drive(), svc.Devices())
	if err != nil {
		Exitf("Failed to initialize Server: %v\n", err)
	}

	fmt.Printf("Starting %s (version %s build %s)\n", projectName, projectVersion, projectBuild)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return svc.Run(ctx) })
	g.Go(func() error { return srv.Run(ctx) })
	if err := g.Wait(); err != nil {
		Exitf("Service run failed: %v\n", err)
	}
}

// Print the given error message and exit with code 1
func Exitf(message string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, message, args...)
	os.Exit(1)
}
