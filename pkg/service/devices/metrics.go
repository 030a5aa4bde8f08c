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
	"github.com/binkynet/L298Worker/pkg/metrics"
)

const (
	subSystem = "devices"
)

var (
	// Number of created devices
	devicesCreatedTotal = metrics.MustRegisterGauge(subSystem,
		"devices_created_total",
		"Number of created devices")
	// Number of configured devices
	devicesConfiguredTotal = metrics.MustRegisterGauge(subSystem,
		"devices_configured_total",
		"Number of configured devices")
)
