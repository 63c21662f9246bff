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

package rc522

import (
	"time"
)

// Transport is the register-bus capability the MFRC522 protocol core runs
// on. Every access is a blocking round-trip; the register file it mirrors
// is physical device state, invisible between accesses.
// Implemented by the SPI, UART, and I2C backends.
type Transport interface {
	// ReadRegister reads a single 8-bit register
	ReadRegister(reg byte) (byte, error)

	// WriteRegister writes a single 8-bit register
	WriteRegister(reg, value byte) error

	// Reset pulses the hardware reset line where one is wired
	// (assert low >=10ms, release, settle >=10ms). Transports without a
	// reset line return nil; the soft-reset command covers them.
	Reset() error

	// Close closes the transport connection
	Close() error

	// SetTimeout sets the per-access timeout for the transport
	SetTimeout(timeout time.Duration) error

	// IsConnected returns true if the transport is connected
	IsConnected() bool

	// Type returns the transport type
	Type() TransportType
}

// TransportType represents the type of transport
type TransportType string

const (
	// TransportSPI represents SPI bus transport.
	TransportSPI TransportType = "spi"
	// TransportUART represents UART/serial-mode transport.
	TransportUART TransportType = "uart"
	// TransportI2C represents I2C bus transport.
	TransportI2C TransportType = "i2c"
	// TransportMock represents a simulated transport for testing
	TransportMock TransportType = "mock"
)

// TransportCapability represents specific capabilities or behaviors of a transport
type TransportCapability string

const (
	// CapabilityHardwareReset indicates the transport has a wired reset
	// line and Reset performs a real power-style reset pulse.
	CapabilityHardwareReset TransportCapability = "hardware_reset"
)

// TransportCapabilityChecker defines an interface for querying transport capabilities
type TransportCapabilityChecker interface {
	// HasCapability returns true if the transport has the specified capability
	HasCapability(capability TransportCapability) bool
}

// SetBits sets the given mask bits in a register through a read-modify-write.
func SetBits(t Transport, reg, mask byte) error {
	v, err := t.ReadRegister(reg)
	if err != nil {
		return err
	}
	return t.WriteRegister(reg, v|mask)
}

// ClearBits clears the given mask bits in a register through a read-modify-write.
func ClearBits(t Transport, reg, mask byte) error {
	v, err := t.ReadRegister(reg)
	if err != nil {
		return err
	}
	return t.WriteRegister(reg, v&^mask)
}
