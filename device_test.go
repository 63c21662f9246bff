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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestDevice builds a device over a fresh SimTransport with instant
// timing: no settle sleeps and a short IRQ spin bound.
func newTestDevice(t *testing.T, opts ...Option) (*Device, *SimTransport) {
	t.Helper()

	sim := NewSimTransport()
	sim.SetRegister(regVersion, 0x92)

	base := []Option{
		WithTiming(&Timing{SoftResetSettle: 0, PollIterations: 16, CRCPollIterations: 16}),
		WithSleepFunc(func(time.Duration) {}),
	}
	device, err := New(sim, append(base, opts...)...)
	require.NoError(t, err)
	return device, sim
}

func TestInitConfiguresAfterSoftReset(t *testing.T) {
	t.Parallel()

	device, sim := newTestDevice(t)
	require.NoError(t, device.Init())

	assert.Equal(t, 1, sim.Resets)

	// The soft reset must land before any mode-configuration write.
	order := sim.WriteOrder(regCommand, regTMode, regTPrescaler, regTReloadL, regTReloadH, regTxASK, regMode, regTxControl)
	for _, pos := range order {
		assert.NotEqual(t, -1, pos)
	}
	softReset := order[0]
	for _, pos := range order[1:] {
		assert.Greater(t, pos, softReset)
	}

	// First command write is the soft reset itself.
	assert.Equal(t, RegWrite{Reg: regCommand, Value: cmdSoftReset}, sim.Writes[softReset])

	// Antenna drivers end up enabled.
	txControl, err := sim.ReadRegister(regTxControl)
	require.NoError(t, err)
	assert.Equal(t, byte(txControlAntennaOn), txControl&txControlAntennaOn)
}

func TestInitFailsOnDeadTransport(t *testing.T) {
	t.Parallel()

	device, sim := newTestDevice(t)
	require.NoError(t, sim.Close())

	err := device.Init()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransportWrite)
}

func TestVersion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		version byte
		wantErr error
	}{
		{name: "plausible version", version: 0x92},
		{name: "older silicon", version: 0xB2},
		{name: "bus reads zero", version: 0x00, wantErr: ErrDeviceNotFound},
		{name: "bus floats high", version: 0xFF, wantErr: ErrDeviceNotFound},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			device, sim := newTestDevice(t)
			sim.SetRegister(regVersion, tt.version)

			version, err := device.Version()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.version, version)
		})
	}
}

func TestNewRejectsBadOptions(t *testing.T) {
	t.Parallel()

	sim := NewSimTransport()

	_, err := New(sim, WithTiming(nil))
	assert.ErrorIs(t, err, ErrInvalidParameter)

	_, err = New(sim, WithSleepFunc(nil))
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestDeviceClose(t *testing.T) {
	t.Parallel()

	device, sim := newTestDevice(t)
	require.NoError(t, device.Close())
	assert.False(t, sim.IsConnected())
}

func TestConnectDeviceWithFactory(t *testing.T) {
	t.Parallel()

	sim := NewSimTransport()
	sim.SetRegister(regVersion, 0x92)

	device, err := ConnectDevice("mock",
		WithTransportFactory(func(path string) (Transport, error) {
			assert.Equal(t, "mock", path)
			return sim, nil
		}),
		WithDeviceOptions(
			WithTiming(&Timing{SoftResetSettle: 0, PollIterations: 16, CRCPollIterations: 16}),
			WithSleepFunc(func(time.Duration) {}),
		),
	)
	require.NoError(t, err)
	defer func() { _ = device.Close() }()

	version, err := device.Version()
	require.NoError(t, err)
	assert.Equal(t, byte(0x92), version)
	assert.Equal(t, 1, sim.Resets)
}

func TestConnectDeviceWithoutFactory(t *testing.T) {
	t.Parallel()

	_, err := ConnectDevice("SPI0.0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transport factory not provided")
}
