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

package bridge

import (
	"context"
	"runtime"
	"strconv"

	aerr "github.com/ewoutp/go-aggregate-error"
	"github.com/pkg/errors"
)

// I2CBus gives serialized access to the devices on an I2C bus.
type I2CBus interface {
	// Execute an operation on the device with given address.
	Execute(ctx context.Context, address uint8, op func(ctx context.Context, dev I2CDevice) error) error
	// DetectSlaveAddresses probes the bus to detect available addresses.
	DetectSlaveAddresses() []byte
	// Close the bus and all devices on it
	Close() error
}

// I2CDevice communicates with a device on the I2C Bus that has a specific address.
type I2CDevice interface {
	// Read a byte from given register
	ReadByteReg(reg uint8) (uint8, error)
	// Write a byte to given register
	WriteByteReg(reg uint8, val uint8) error
}

type i2cBus struct {
	location string
	devices  map[uint8]*i2cDevice
	queue    chan func()
}

// NewI2CBus returns accessors the the I2C bus at the given location.
// All operations on the bus are executed on a single OS thread.
func NewI2CBus(location string) I2CBus {
	b := &i2cBus{
		location: location,
		devices:  make(map[uint8]*i2cDevice),
		queue:    make(chan func()),
	}
	go b.queueProcessor()
	return b
}

// Execute an operation on the device with given address.
func (b *i2cBus) Execute(ctx context.Context, address uint8, op func(context.Context, I2CDevice) error) error {
	result := make(chan error, 1)
	req := func() {
		result <- b.execute(ctx, address, op)
	}

	// Put request in queue
	select {
	case b.queue <- req:
		// Request is on the queue
	case <-ctx.Done():
		return ctx.Err()
	}
	return <-result
}

// Process bus requests from the queue until the queue is closed.
func (b *i2cBus) queueProcessor() {
	// Ensure we're always using the same OS thread
	runtime.LockOSThread()

	for req := range b.queue {
		req()
	}
}

func (b *i2cBus) execute(ctx context.Context, address uint8, op func(context.Context, I2CDevice) error) error {
	label := strconv.Itoa(int(address))
	i2cExecuteCounters.WithLabelValues(label).Inc()

	var err error
	for attempt := 0; attempt < 2; attempt++ {
		var dev *i2cDevice
		dev, err = b.openDevice(address)
		if err != nil {
			i2cExecuteErrorCounters.WithLabelValues(label).Inc()
			return errors.Wrapf(err, "openDevice(0x%x) failed", address)
		}
		if err = op(ctx, dev); err == nil {
			return nil
		}

		// Device call failed, close all devices and retry with fresh handles
		for addr, d := range b.devices {
			d.closeFile()
			delete(b.devices, addr)
		}
	}
	i2cExecuteErrorCounters.WithLabelValues(label).Inc()
	return errors.Wrapf(err, "execute operation on i2c device 0x%x failed", address)
}

// Open a connection to a device at the given address.
func (b *i2cBus) openDevice(address uint8) (*i2cDevice, error) {
	if d, found := b.devices[address]; found {
		return d, nil
	}
	d, err := newI2CDevice(b.location, address)
	if err != nil {
		return nil, err
	}
	b.devices[address] = d
	return d, nil
}

// DetectSlaveAddresses probes the bus to detect available addresses.
func (b *i2cBus) DetectSlaveAddresses() []byte {
	result := make(chan []byte, 1)
	b.queue <- func() {
		var addrs []byte
		for addr := uint8(1); addr < 128; addr++ {
			if d, err := newI2CDevice(b.location, addr); err == nil {
				if err := d.detect(); err == nil {
					addrs = append(addrs, addr)
				}
				d.closeFile()
			}
		}
		result <- addrs
	}
	return <-result
}

// Close the bus and all devices on it
func (b *i2cBus) Close() error {
	result := make(chan error, 1)
	b.queue <- func() {
		var ae aerr.AggregateError
		for addr, d := range b.devices {
			if err := d.closeFile(); err != nil {
				ae.Add(err)
			}
			delete(b.devices, addr)
		}
		result <- ae.AsError()
	}
	err := <-result
	close(b.queue)
	return err
}
