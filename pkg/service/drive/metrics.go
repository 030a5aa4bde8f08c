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
	"github.com/binkynet/L298Worker/pkg/metrics"
)

const (
	subSystem = "drive"
)

var (
	// Number of vehicle commands, per action
	commandsTotal = metrics.MustRegisterCounterVec(subSystem,
		"commands_total",
		"Number of vehicle commands", "action")
	// Number of failed vehicle commands, per action
	commandErrorsTotal = metrics.MustRegisterCounterVec(subSystem,
		"command_errors_total",
		"Number of failed vehicle commands", "action")
	// Requested speed per motor
	motorSpeed = metrics.MustRegisterGaugeVec(subSystem,
		"motor_speed",
		"Requested speed of a motor in percent", "motor")
	// Number of sequences started
	sequencesTotal = metrics.MustRegisterCounter(subSystem,
		"sequences_total",
		"Number of started sequences")
	// Number of status updates dropped for slow subscribers
	droppedStatusTotal = metrics.MustRegisterCounter(subSystem,
		"dropped_status_total",
		"Number of status updates dropped because a subscriber queue was full")
)
