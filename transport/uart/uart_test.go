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

package uart

import (
	"testing"
	"time"

	rc522 "github.com/boardlab/go-rc522"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial"
)

// fakePort scripts the chip's side of the serial exchange.
type fakePort struct {
	written []byte
	pending []byte
	dtr     []bool
	drained bool
	closed  bool
}

func (f *fakePort) Write(p []byte) (int, error) {
	f.written = append(f.written, p...)
	return len(p), nil
}

func (f *fakePort) Read(p []byte) (int, error) {
	if len(f.pending) == 0 {
		// Timeout: the real port returns a zero-byte read.
		return 0, nil
	}
	n := copy(p, f.pending)
	f.pending = f.pending[n:]
	return n, nil
}

func (f *fakePort) SetDTR(dtr bool) error {
	f.dtr = append(f.dtr, dtr)
	return nil
}

func (f *fakePort) ResetInputBuffer() error {
	f.drained = true
	return nil
}

func (f *fakePort) Close() error {
	f.closed = true
	return nil
}

func (*fakePort) SetMode(*serial.Mode) error                      { return nil }
func (*fakePort) Drain() error                                    { return nil }
func (*fakePort) ResetOutputBuffer() error                        { return nil }
func (*fakePort) SetRTS(bool) error                               { return nil }
func (*fakePort) GetModemStatusBits() (*serial.ModemStatusBits, error) { return nil, nil }
func (*fakePort) SetReadTimeout(time.Duration) error              { return nil }
func (*fakePort) Break(time.Duration) error                       { return nil }

func fakeTransport(port *fakePort, opts ...Option) *Transport {
	transport := &Transport{
		port:     port,
		portName: "fake",
		baudRate: defaultBaudRate,
		timeout:  defaultTimeout,
		sleep:    func(time.Duration) {},
	}
	for _, opt := range opts {
		opt(transport)
	}
	return transport
}

func TestReadRegisterFraming(t *testing.T) {
	t.Parallel()

	port := &fakePort{pending: []byte{0x91}}
	transport := fakeTransport(port)

	// Version register 0x37 reads as address 0x37|0x80 = 0xB7.
	value, err := transport.ReadRegister(0x37)
	require.NoError(t, err)
	assert.Equal(t, byte(0x91), value)
	assert.Equal(t, []byte{0xB7}, port.written)
}

func TestWriteRegisterEcho(t *testing.T) {
	t.Parallel()

	// The chip acknowledges a write by echoing the address byte.
	port := &fakePort{pending: []byte{0x01}}
	transport := fakeTransport(port)

	require.NoError(t, transport.WriteRegister(0x01, 0x0F))
	assert.Equal(t, []byte{0x01, 0x0F}, port.written)
}

func TestWriteRegisterBadEcho(t *testing.T) {
	t.Parallel()

	port := &fakePort{pending: []byte{0x7F}}
	transport := fakeTransport(port)

	err := transport.WriteRegister(0x01, 0x0F)
	require.Error(t, err)
	assert.ErrorIs(t, err, rc522.ErrCommunicationFailed)
}

func TestReadRegisterTimeout(t *testing.T) {
	t.Parallel()

	port := &fakePort{}
	transport := fakeTransport(port)

	_, err := transport.ReadRegister(0x04)
	require.Error(t, err)
	assert.True(t, rc522.IsRetryable(err))
}

func TestResetRequiresDTROption(t *testing.T) {
	t.Parallel()

	port := &fakePort{}
	transport := fakeTransport(port)

	require.NoError(t, transport.Reset())
	assert.Empty(t, port.dtr)
	assert.False(t, transport.HasCapability(rc522.CapabilityHardwareReset))
}

func TestResetPulsesDTR(t *testing.T) {
	t.Parallel()

	port := &fakePort{}
	transport := fakeTransport(port, WithDTRReset())

	require.NoError(t, transport.Reset())
	assert.Equal(t, []bool{true, false}, port.dtr)
	assert.True(t, port.drained)
	assert.True(t, transport.HasCapability(rc522.CapabilityHardwareReset))
}

func TestResetHoldTiming(t *testing.T) {
	t.Parallel()

	// RC-filtered reset wiring needs the line held a full 10 ms; a
	// shorter DTR pulse resets some boards only intermittently.
	port := &fakePort{}
	transport := fakeTransport(port, WithDTRReset())

	var slept []time.Duration
	transport.sleep = func(d time.Duration) {
		slept = append(slept, d)
	}

	require.NoError(t, transport.Reset())
	require.Equal(t, []time.Duration{dtrResetPulse, dtrResetSettle}, slept)
	assert.GreaterOrEqual(t, dtrResetPulse, 10*time.Millisecond)
}

func TestClose(t *testing.T) {
	t.Parallel()

	port := &fakePort{}
	transport := fakeTransport(port)

	require.NoError(t, transport.Close())
	assert.True(t, port.closed)
	assert.False(t, transport.IsConnected())

	// Closing again is harmless.
	require.NoError(t, transport.Close())
}

func TestTransportType(t *testing.T) {
	t.Parallel()

	transport := &Transport{}
	assert.Equal(t, rc522.TransportUART, transport.Type())
}
