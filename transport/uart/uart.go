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

// Package uart provides the serial-mode transport for the MFRC522.
//
// In serial mode every register access is a short exchange: a read
// sends the address with the high bit set and receives the value; a
// write sends address and value, and the chip echoes the address back
// as its acknowledge.
package uart

import (
	"fmt"
	"io"
	"time"

	rc522 "github.com/boardlab/go-rc522"
	"go.bug.st/serial"
)

const (
	// defaultBaudRate is the chip's power-on serial speed.
	defaultBaudRate = 9600

	// Serial-mode address framing: bit 7 selects read, the address
	// occupies the low 6 bits unshifted.
	addrMask    = 0x3F
	addrReadBit = 0x80

	defaultTimeout = 100 * time.Millisecond

	// dtrResetPulse is how long the DTR-wired reset is held asserted:
	// the same 10 ms hold a GPIO-wired reset line gets.
	dtrResetPulse = 10 * time.Millisecond
	// dtrResetSettle covers the oscillator start-up after release.
	dtrResetSettle = 50 * time.Millisecond
)

// Transport implements the rc522.Transport interface over a serial
// port.
type Transport struct {
	port     serial.Port
	sleep    func(time.Duration)
	portName string
	baudRate int
	timeout  time.Duration
	dtrReset bool
}

// Option configures the UART transport.
type Option func(*Transport)

// WithBaudRate overrides the 9600 baud power-on default. The chip must
// already be configured for the new rate.
func WithBaudRate(baud int) Option {
	return func(t *Transport) {
		t.baudRate = baud
	}
}

// WithDTRReset enables hardware reset through the adapter's DTR line,
// for boards that wire DTR to NRSTPD.
func WithDTRReset() Option {
	return func(t *Transport) {
		t.dtrReset = true
	}
}

// New creates a UART transport on the named port, e.g. "/dev/ttyUSB0"
// or "COM3".
func New(portName string, opts ...Option) (*Transport, error) {
	transport := &Transport{
		portName: portName,
		baudRate: defaultBaudRate,
		timeout:  defaultTimeout,
		sleep:    time.Sleep,
	}
	for _, opt := range opts {
		opt(transport)
	}

	mode := &serial.Mode{
		BaudRate: transport.baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", portName, err)
	}

	if err := port.SetReadTimeout(transport.timeout); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("failed to set read timeout: %w", err)
	}

	transport.port = port
	return transport, nil
}

// ReadRegister reads a single register.
func (t *Transport) ReadRegister(reg byte) (byte, error) {
	if _, err := t.port.Write([]byte{reg&addrMask | addrReadBit}); err != nil {
		return 0, rc522.NewReadError("ReadRegister", t.portName, err)
	}

	value, err := t.readByte()
	if err != nil {
		return 0, rc522.NewReadError("ReadRegister", t.portName, err)
	}
	return value, nil
}

// WriteRegister writes a single register and consumes the chip's
// address echo.
func (t *Transport) WriteRegister(reg, value byte) error {
	addr := reg & addrMask
	if _, err := t.port.Write([]byte{addr, value}); err != nil {
		return rc522.NewWriteError("WriteRegister", t.portName, err)
	}

	echo, err := t.readByte()
	if err != nil {
		return rc522.NewWriteError("WriteRegister", t.portName, err)
	}
	if echo != addr {
		return rc522.NewTransportError("WriteRegister", t.portName,
			fmt.Errorf("write echo 0x%02X, want 0x%02X: %w", echo, addr, rc522.ErrCommunicationFailed),
			rc522.ErrorTypeTransient)
	}
	return nil
}

// readByte reads exactly one byte, mapping a drained read deadline to a
// timeout error.
func (t *Transport) readByte() (byte, error) {
	buf := make([]byte, 1)
	n, err := io.ReadFull(readerFunc(t.port.Read), buf)
	if err != nil || n != 1 {
		if err == nil || err == io.EOF || err == io.ErrUnexpectedEOF {
			return 0, rc522.ErrTransportTimeout
		}
		return 0, err
	}
	return buf[0], nil
}

// readerFunc adapts the serial port's Read for io.ReadFull. A zero-byte
// read means the timeout elapsed; surface it as EOF so ReadFull stops.
type readerFunc func([]byte) (int, error)

func (f readerFunc) Read(p []byte) (int, error) {
	n, err := f(p)
	if n == 0 && err == nil {
		return 0, io.EOF
	}
	return n, err
}

// Reset pulses the DTR line when DTR reset is enabled; otherwise it is
// a no-op and the device layer falls back to the soft-reset command.
func (t *Transport) Reset() error {
	if !t.dtrReset {
		return nil
	}

	if err := t.port.SetDTR(true); err != nil {
		return fmt.Errorf("failed to assert DTR reset: %w", err)
	}
	t.sleep(dtrResetPulse)
	if err := t.port.SetDTR(false); err != nil {
		return fmt.Errorf("failed to release DTR reset: %w", err)
	}
	t.sleep(dtrResetSettle)

	return t.drainInput()
}

// drainInput discards bytes clocked out during a reset pulse.
func (t *Transport) drainInput() error {
	if err := t.port.ResetInputBuffer(); err != nil {
		return fmt.Errorf("failed to drain serial input: %w", err)
	}
	return nil
}

// HasCapability reports hardware reset support when DTR reset is
// enabled.
func (t *Transport) HasCapability(capability rc522.TransportCapability) bool {
	return capability == rc522.CapabilityHardwareReset && t.dtrReset
}

// SetTimeout sets the per-byte read timeout.
func (t *Transport) SetTimeout(timeout time.Duration) error {
	t.timeout = timeout
	if t.port == nil {
		return nil
	}
	if err := t.port.SetReadTimeout(timeout); err != nil {
		return fmt.Errorf("failed to set read timeout: %w", err)
	}
	return nil
}

// Close closes the serial port.
func (t *Transport) Close() error {
	if t.port == nil {
		return nil
	}
	if err := t.port.Close(); err != nil {
		return fmt.Errorf("failed to close serial port: %w", err)
	}
	t.port = nil
	return nil
}

// IsConnected returns true while the port is open.
func (t *Transport) IsConnected() bool {
	return t.port != nil
}

// Type returns the transport type.
func (*Transport) Type() rc522.TransportType {
	return rc522.TransportUART
}

// Ensure Transport implements rc522.Transport
var _ rc522.Transport = (*Transport)(nil)
