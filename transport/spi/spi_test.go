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

package spi

import (
	"testing"
	"time"

	rc522 "github.com/boardlab/go-rc522"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/conntest"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spitest"
)

// playbackTransport builds a Transport over a scripted bus.
func playbackTransport(t *testing.T, ops []conntest.IO) *Transport {
	t.Helper()

	playback := &spitest.Playback{
		Playback: conntest.Playback{Ops: ops, DontPanic: true},
	}
	conn, err := playback.Connect(defaultSpeed, spi.Mode0, 8)
	require.NoError(t, err)

	return &Transport{conn: conn, portName: "playback"}
}

func TestReadRegisterFraming(t *testing.T) {
	t.Parallel()

	// Version register 0x37: address byte is (0x37<<1)|0x80 = 0xEE,
	// value clocks out in the second byte.
	transport := playbackTransport(t, []conntest.IO{
		{W: []byte{0xEE, 0x00}, R: []byte{0x00, 0x92}},
	})

	value, err := transport.ReadRegister(0x37)
	require.NoError(t, err)
	assert.Equal(t, byte(0x92), value)
}

func TestWriteRegisterFraming(t *testing.T) {
	t.Parallel()

	// Command register 0x01: address byte is 0x01<<1 = 0x02 with the
	// read bit clear.
	transport := playbackTransport(t, []conntest.IO{
		{W: []byte{0x02, 0x0F}},
	})

	require.NoError(t, transport.WriteRegister(0x01, 0x0F))
}

func TestReadRegisterError(t *testing.T) {
	t.Parallel()

	// Empty script: any transfer fails.
	transport := playbackTransport(t, nil)

	_, err := transport.ReadRegister(0x37)
	require.Error(t, err)
	assert.Equal(t, rc522.ErrorTypeTransient, rc522.GetErrorType(err))
}

func TestTransportType(t *testing.T) {
	t.Parallel()

	transport := &Transport{}
	assert.Equal(t, rc522.TransportSPI, transport.Type())
}

func TestCapabilities(t *testing.T) {
	t.Parallel()

	bare := &Transport{}
	assert.False(t, bare.HasCapability(rc522.CapabilityHardwareReset))
	require.NoError(t, bare.Reset())
}

func TestResetHoldsLineLow(t *testing.T) {
	t.Parallel()

	// RC-filtered NRSTPD wiring needs the line held a full 10 ms; a
	// shorter pulse resets some boards only intermittently.
	pin := &gpiotest.Pin{N: "RST"}
	transport := &Transport{resetPin: pin, portName: "test"}

	var slept []time.Duration
	transport.sleep = func(d time.Duration) {
		if len(slept) == 0 {
			// The hold elapses with the line still asserted.
			assert.Equal(t, gpio.Low, pin.Read())
		}
		slept = append(slept, d)
	}

	require.NoError(t, transport.Reset())
	assert.Equal(t, gpio.High, pin.Read())
	require.Equal(t, []time.Duration{resetPulse, resetSettle}, slept)
	assert.GreaterOrEqual(t, resetPulse, 10*time.Millisecond)
	assert.True(t, transport.HasCapability(rc522.CapabilityHardwareReset))
}
