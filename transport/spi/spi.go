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

// Package spi provides the SPI transport for the MFRC522. SPI is the
// chip's native interface and the one its breakout boards wire up.
package spi

import (
	"fmt"
	"time"

	rc522 "github.com/boardlab/go-rc522"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

const (
	// The MFRC522 is specified to 10 MHz in SPI mode 0.
	defaultSpeed = 10 * physic.MegaHertz

	// Register address framing on the SPI bus: the address occupies
	// bits 1..6, bit 7 distinguishes read from write.
	addrShiftMask = 0x7E
	addrReadBit   = 0x80

	// resetPulse is how long the reset line is held low. The bare chip
	// wakes on a 100 ns pulse, but boards with RC filtering on NRSTPD
	// need the full 10 ms hold.
	resetPulse = 10 * time.Millisecond
	// resetSettle covers the oscillator start-up after reset releases.
	resetSettle = 50 * time.Millisecond
)

// Transport implements the rc522.Transport interface over SPI.
type Transport struct {
	port     spi.PortCloser
	conn     spi.Conn
	resetPin gpio.PinOut
	sleep    func(time.Duration)
	portName string
	speed    physic.Frequency
}

// Option configures the SPI transport.
type Option func(*Transport)

// WithResetPin routes hardware reset through the named GPIO pin wired
// to the chip's NRSTPD line, e.g. "GPIO22".
func WithResetPin(name string) Option {
	return func(t *Transport) {
		t.resetPin = gpioreg.ByName(name)
	}
}

// WithSpeed overrides the bus clock. Long wires sometimes need less
// than the chip's rated 10 MHz.
func WithSpeed(speed physic.Frequency) Option {
	return func(t *Transport) {
		t.speed = speed
	}
}

// New creates an SPI transport on the named port, e.g. "SPI0.0".
func New(portName string, opts ...Option) (*Transport, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph host: %w", err)
	}

	transport := &Transport{
		portName: portName,
		speed:    defaultSpeed,
		sleep:    time.Sleep,
	}
	for _, opt := range opts {
		opt(transport)
	}

	port, err := spireg.Open(portName)
	if err != nil {
		return nil, fmt.Errorf("failed to open SPI port %s: %w", portName, err)
	}

	conn, err := port.Connect(transport.speed, spi.Mode0, 8)
	if err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("failed to connect on SPI port %s: %w", portName, err)
	}

	transport.port = port
	transport.conn = conn

	if transport.resetPin != nil {
		// The chip only runs with NRSTPD high.
		if err := transport.resetPin.Out(gpio.High); err != nil {
			_ = port.Close()
			return nil, fmt.Errorf("failed to drive reset pin: %w", err)
		}
	}

	return transport, nil
}

// ReadRegister reads a single register.
func (t *Transport) ReadRegister(reg byte) (byte, error) {
	tx := []byte{(reg<<1)&addrShiftMask | addrReadBit, 0x00}
	rx := make([]byte, len(tx))
	if err := t.conn.Tx(tx, rx); err != nil {
		return 0, rc522.NewReadError("ReadRegister", t.portName, err)
	}
	// The value clocks out during the second byte.
	return rx[1], nil
}

// WriteRegister writes a single register.
func (t *Transport) WriteRegister(reg, value byte) error {
	tx := []byte{(reg << 1) & addrShiftMask, value}
	if err := t.conn.Tx(tx, nil); err != nil {
		return rc522.NewWriteError("WriteRegister", t.portName, err)
	}
	return nil
}

// Reset pulses the NRSTPD line when a reset pin is configured, then
// waits out the oscillator start-up. Without a pin it is a no-op; the
// device layer falls back to the soft-reset command.
func (t *Transport) Reset() error {
	if t.resetPin == nil {
		return nil
	}

	if err := t.resetPin.Out(gpio.Low); err != nil {
		return fmt.Errorf("failed to assert reset: %w", err)
	}
	t.sleep(resetPulse)
	if err := t.resetPin.Out(gpio.High); err != nil {
		return fmt.Errorf("failed to release reset: %w", err)
	}
	t.sleep(resetSettle)
	return nil
}

// HasCapability reports hardware reset support when a reset pin is
// wired.
func (t *Transport) HasCapability(capability rc522.TransportCapability) bool {
	return capability == rc522.CapabilityHardwareReset && t.resetPin != nil
}

// SetTimeout is a no-op: SPI transfers complete synchronously.
func (*Transport) SetTimeout(time.Duration) error {
	return nil
}

// Close releases the SPI port.
func (t *Transport) Close() error {
	if t.port == nil {
		return nil
	}
	if err := t.port.Close(); err != nil {
		return fmt.Errorf("failed to close SPI port: %w", err)
	}
	t.port = nil
	t.conn = nil
	return nil
}

// IsConnected returns true while the port is open.
func (t *Transport) IsConnected() bool {
	return t.conn != nil
}

// Type returns the transport type.
func (*Transport) Type() rc522.TransportType {
	return rc522.TransportSPI
}

// Ensure Transport implements rc522.Transport
var _ rc522.Transport = (*Transport)(nil)
