// go-rc522
// Copyright (c) 2025 The Boardlab Project Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-rc522.
//
// go-rc522 is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-rc522 is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-rc522; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

// Package i2c provides the I2C transport for the MFRC522. Register
// access on I2C is plain register-addressed: a write sends the address
// followed by the value, a read sends the address and reads the value
// back.
package i2c

import (
	"fmt"
	"time"

	rc522 "github.com/boardlab/go-rc522"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

const (
	// DefaultAddress is the MFRC522 I2C address with the EA strap pins
	// at their default levels.
	DefaultAddress = 0x28

	// The chip supports fast mode.
	maxClockFreq = 400 * physic.KiloHertz
)

// Transport implements the rc522.Transport interface over I2C.
type Transport struct {
	dev     *i2c.Dev
	bus     i2c.BusCloser
	busName string
	addr    uint16
}

// Option configures the I2C transport.
type Option func(*Transport)

// WithAddress overrides the default chip address for boards with
// re-strapped EA pins.
func WithAddress(addr uint16) Option {
	return func(t *Transport) {
		t.addr = addr
	}
}

// New creates an I2C transport on the named bus, e.g. "/dev/i2c-1" or
// "1".
func New(busName string, opts ...Option) (*Transport, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph host: %w", err)
	}

	transport := &Transport{
		busName: busName,
		addr:    DefaultAddress,
	}
	for _, opt := range opts {
		opt(transport)
	}

	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("failed to open I2C bus %s: %w", busName, err)
	}

	// Best effort; the kernel default is fine too.
	_ = bus.SetSpeed(maxClockFreq)

	transport.bus = bus
	transport.dev = &i2c.Dev{Addr: transport.addr, Bus: bus}
	return transport, nil
}

// ReadRegister reads a single register.
func (t *Transport) ReadRegister(reg byte) (byte, error) {
	buf := make([]byte, 1)
	if err := t.dev.Tx([]byte{reg}, buf); err != nil {
		return 0, rc522.NewReadError("ReadRegister", t.busName, err)
	}
	return buf[0], nil
}

// WriteRegister writes a single register.
func (t *Transport) WriteRegister(reg, value byte) error {
	if err := t.dev.Tx([]byte{reg, value}, nil); err != nil {
		return rc522.NewWriteError("WriteRegister", t.busName, err)
	}
	return nil
}

// Reset is a no-op: the I2C wiring has no reset line, so the device
// layer relies on the soft-reset command.
func (*Transport) Reset() error {
	return nil
}

// SetTimeout is a no-op: I2C transfers complete synchronously.
func (*Transport) SetTimeout(time.Duration) error {
	return nil
}

// Close releases the I2C bus.
func (t *Transport) Close() error {
	if t.bus == nil {
		return nil
	}
	if err := t.bus.Close(); err != nil {
		return fmt.Errorf("failed to close I2C bus: %w", err)
	}
	t.bus = nil
	t.dev = nil
	return nil
}

// IsConnected returns true while the bus is open.
func (t *Transport) IsConnected() bool {
	return t.dev != nil
}

// Type returns the transport type.
func (*Transport) Type() rc522.TransportType {
	return rc522.TransportI2C
}

// Ensure Transport implements rc522.Transport
var _ rc522.Transport = (*Transport)(nil)
