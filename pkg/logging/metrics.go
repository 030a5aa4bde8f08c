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
	"github.com/binkynet/L298Worker/pkg/metrics"
)

const (
	subSystem = "logging"
)

var (
	// Number of log lines dropped because the queue was full
	droppedLogLinesTotal = metrics.MustRegisterCounter(subSystem,
		"dropped_lines_total",
		"Number of log lines dropped because the MQTT queue was full")
	// Number of failed log line publications
	publishErrorsTotal = metrics.MustRegisterCounter(subSystem,
		"publish_errors_total",
		"Number of log lines that could not be published")
)
