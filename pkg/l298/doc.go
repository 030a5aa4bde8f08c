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

// Package l298 drives DC motors through an L298 style H-bridge and combines
// two of them into a differential drive vehicle.
//
// Each H-bridge channel has two direction inputs (IN1, IN2) and one enable
// input (EN) that carries a PWM signal. Speeds are expressed in percent of
// full scale, -100..100, where negative values run the motor backwards.
//
// Neither Motor nor Vehicle keeps state between calls. Every call results in
// immediate writes to the pin capabilities given at construction time.
package l298
