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

package server

import (
	"context"
	"net"
	"net/http"
	"net/http/pprof"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/bubbletea"
	"github.com/charmbracelet/wish/logging"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/binkynet/L298Worker/pkg/service/drive"
)

// Config for the HTTP & SSH server.
type Config struct {
	// Host interface to listen on
	Host string
	// Port to listen on for HTTP requests
	HTTPPort int
	// Port to listen on for SSH requests (0 to disable)
	SSHPort int
	// Path of the SSH host key (created when it does not exist)
	SSHHostKeyPath string
}

// Server runs the HTTP & SSH server for the service.
type Server struct {
	Config
	log       zerolog.Logger
	ui        UI
	drive     drive.Service
	devices   Devices
	startedAt time.Time
}

type UI interface {
	// Handler creates a bubbletea model for the given SSH session.
	Handler(s ssh.Session) (tea.Model, []tea.ProgramOption)
}

// Devices provides the state of the configured devices.
type Devices interface {
	// Get a list of configured device IDs
	GetConfiguredDeviceIDs() []string
	// Get a list of unconfigured device IDs
	GetUnconfiguredDeviceIDs() []string
}

// New configures a new Server.
func New(cfg Config, log zerolog.Logger, ui UI, driveService drive.Service, devices Devices) (*Server, error) {
	if cfg.SSHHostKeyPath == "" {
		cfg.SSHHostKeyPath = ".ssh/id_ed25519"
	}
	return &Server{
		Config:    cfg,
		log:       log.With().Str("component", "server").Logger(),
		ui:        ui,
		drive:     driveService,
		devices:   devices,
		startedAt: time.Now(),
	}, nil
}

// Run the server until the given context is canceled.
func (s *Server) Run(ctx context.Context) error {
	// Prepare HTTP listener
	log := s.log
	httpAddr := net.JoinHostPort(s.Host, strconv.Itoa(s.HTTPPort))
	httpLis, err := net.Listen("tcp", httpAddr)
	if err != nil {
		return errors.Wrapf(err, "failed to listen on address %s", httpAddr)
	}

	// Prepare HTTP server
	httpSrv := http.Server{
		Handler: s.newRouter(),
	}

	// Prepare SSH server
	var sshServer *ssh.Server
	sshAddr := net.JoinHostPort(s.Host, strconv.Itoa(s.SSHPort))
	if s.SSHPort != 0 {
		sshServer, err = wish.NewServer(
			wish.WithAddress(sshAddr),
			// Creates a ED25519 keypair when it does not exist yet.
			wish.WithHostKeyPath(s.SSHHostKeyPath),
			// The last item in the chain is the first to be called.
			wish.WithMiddleware(
				bubbletea.Middleware(s.ui.Handler),
				activeterm.Middleware(),
				logging.Middleware(),
			),
		)
		if err != nil {
			httpLis.Close()
			return errors.Wrap(err, "could not create SSH server")
		}
	}

	// Serve apis
	log.Info().Str("address", httpAddr).Msg("Serving HTTP")
	go func() {
		if err := httpSrv.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to serve HTTP server")
		}
		log.Debug().Str("address", httpAddr).Msg("Done Serving HTTP")
	}()
	// Serve UI
	if sshServer != nil {
		log.Info().Str("address", sshAddr).Msg("Serving SSH")
		go func() {
			if err := sshServer.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
				log.Fatal().Err(err).Msg("failed to serve SSH server")
			}
			log.Debug().Str("address", sshAddr).Msg("Done Serving SSH")
		}()
	}

	// Wait until context closed
	<-ctx.Done()

	log.Info().Msg("Closing servers")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()
	httpSrv.Shutdown(shutdownCtx)
	if sshServer != nil {
		sshServer.Shutdown(shutdownCtx)
	}
	return nil
}

// newRouter creates the HTTP routes.
func (s *Server) newRouter() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.GET("/health", s.handleHealth)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/debug/pprof/*", echo.WrapHandler(http.HandlerFunc(pprof.Index)))
	v1 := e.Group("/v1")
	v1.GET("/status", s.handleStatus)
	v1.POST("/drive", s.handleDrive)
	v1.POST("/turn-left", s.handleTurnLeft)
	v1.POST("/turn-right", s.handleTurnRight)
	v1.POST("/stop", s.handleStop)
	v1.POST("/sequence", s.handleSequence)
	return e
}
