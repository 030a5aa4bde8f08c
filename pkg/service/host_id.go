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
	"crypto/sha1"
	"fmt"
	"net"
	"os"
	"runtime"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// createHostID returns a stable ID of the host, derived from
// the machine ID or the hardware addresses of its network interfaces.
func createHostID() (string, error) {
	if content, err := os.ReadFile("/etc/machine-id"); err == nil {
		if id := strings.TrimSpace(string(content)); id != "" {
			return hashHostID(id), nil
		}
	}

	ifs, err := net.Interfaces()
	if err != nil {
		return "", errors.WithStack(err)
	}
	list := make([]string, 0, len(ifs))
	for _, v := range ifs {
		if v.Flags&net.FlagUp != 0 && v.Flags&net.FlagLoopback == 0 {
			if h := v.HardwareAddr.String(); h != "" {
				list = append(list, h)
			}
		}
	}
	sort.Strings(list)
	list = append(list, runtime.GOOS, runtime.GOARCH)
	return hashHostID(strings.Join(list, ",")), nil
}

// hashHostID returns the first 10 hex characters of the SHA1 of the given source.
func hashHostID(source string) string {
	return fmt.Sprintf("%x", sha1.Sum([]byte(source)))[:10]
}
