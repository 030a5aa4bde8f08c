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

package environment

import (
	"strings"

	"github.com/binkynet/L298Worker/model"
)

// BridgeType identifies the kind of bridge the worker runs on.
type BridgeType string

const (
	BridgeTypeAuto    BridgeType = "auto"
	BridgeTypeRPI     BridgeType = "rpi"
	BridgeTypeVirtual BridgeType = "virtual"
)

// ParseBridgeType parses the given bridge type name.
func ParseBridgeType(s string) (BridgeType, error) {
	switch t := BridgeType(strings.ToLower(strings.TrimSpace(s))); t {
	case BridgeTypeAuto, BridgeTypeRPI, BridgeTypeVirtual:
		return t, nil
	case "":
		return BridgeTypeAuto, nil
	default:
		return "", model.InvalidArgument("unknown bridge type '%s'", s)
	}
}

// bridgeTypeForMachine returns the bridge type for a machine
// hardware name as reported by uname.
func bridgeTypeForMachine(machine string) BridgeType {
	if strings.HasPrefix(machine, "arm") || machine == "aarch64" {
		return BridgeTypeRPI
	}
	return BridgeTypeVirtual
}
