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
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/binkynet/L298Worker/model"
	"github.com/binkynet/L298Worker/pkg/service/drive"
)

type driveRequest struct {
	Speed     float64 `json:"speed"`
	Direction float64 `json:"direction"`
}

type turnRequest struct {
	Speed float64 `json:"speed"`
}

type statusResponse struct {
	drive.Status
	ConfiguredDevices   []string  `json:"configured_devices"`
	UnconfiguredDevices []string  `json:"unconfigured_devices,omitempty"`
	StartedAt           time.Time `json:"started_at"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func (s *Server) handleStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, s.status())
}

func (s *Server) handleDrive(c echo.Context) error {
	var req driveRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := (model.Command{Action: model.ActionDrive, Speed: req.Speed, Direction: req.Direction}).Validate(); err != nil {
		return s.respond(c, err)
	}
	return s.respond(c, s.drive.Drive(c.Request().Context(), req.Speed, req.Direction))
}

func (s *Server) handleTurnLeft(c echo.Context) error {
	var req turnRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := (model.Command{Action: model.ActionTurnLeft, Speed: req.Speed}).Validate(); err != nil {
		return s.respond(c, err)
	}
	return s.respond(c, s.drive.TurnLeft(c.Request().Context(), req.Speed))
}

func (s *Server) handleTurnRight(c echo.Context) error {
	var req turnRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := (model.Command{Action: model.ActionTurnRight, Speed: req.Speed}).Validate(); err != nil {
		return s.respond(c, err)
	}
	return s.respond(c, s.drive.TurnRight(c.Request().Context(), req.Speed))
}

func (s *Server) handleStop(c echo.Context) error {
	return s.respond(c, s.drive.Stop(c.Request().Context()))
}

func (s *Server) handleSequence(c echo.Context) error {
	return s.respond(c, s.drive.StartSequence())
}

// respond with the status of the vehicle, or the given error.
func (s *Server) respond(c echo.Context, err error) error {
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, s.status())
	case model.IsValidation(err), model.IsInvalidArgument(err):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, drive.SequenceRunningError):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		s.log.Warn().Err(err).Str("path", c.Path()).Msg("Request failed")
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) status() statusResponse {
	result := statusResponse{
		Status:    s.drive.Status(),
		StartedAt: s.startedAt,
	}
	if s.devices != nil {
		result.ConfiguredDevices = s.devices.GetConfiguredDeviceIDs()
		result.UnconfiguredDevices = s.devices.GetUnconfiguredDeviceIDs()
	}
	return result
}
