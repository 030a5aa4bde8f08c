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
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var (
	// InvalidPinError is returned for pins (or outputs) out of range.
	InvalidPinError = errors.New("invalid pin")
	// InvalidDirectionError is returned when a pin is used in a direction
	// it is not configured for.
	InvalidDirectionError = errors.New("invalid direction")
)

// parseAddress parses a string containing a numeric address.
func parseAddress(addr string) (uint8, error) {
	base := 10
	if strings.HasPrefix(addr, "0x") || strings.HasPrefix(addr, "0X") {
		addr = addr[2:]
		base = 16
	}
	result, err := strconv.ParseUint(addr, base, 7)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid address '%s'", addr)
	}
	return uint8(result), nil
}
