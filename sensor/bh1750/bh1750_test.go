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

package bh1750

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/i2c/i2ctest"
)

func TestNewInitSequence(t *testing.T) {
	t.Parallel()

	playback := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: DefaultAddress, W: []byte{cmdPowerOn}},
			{Addr: DefaultAddress, W: []byte{cmdReset}},
			{Addr: DefaultAddress, W: []byte{cmdContHighRes}},
		},
		DontPanic: true,
	}

	var slept []time.Duration
	dev, err := New(playback, WithSleepFunc(func(d time.Duration) {
		slept = append(slept, d)
	}))
	require.NoError(t, err)
	require.NotNil(t, dev)
	assert.Equal(t, []time.Duration{powerOnSettle, resetSettle, firstMeasurement}, slept)
}

func TestSense(t *testing.T) {
	t.Parallel()

	// Raw 0x4C5A = 19546 counts -> 19546 / 1.2 lux.
	playback := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: DefaultAddress, W: []byte{cmdPowerOn}},
			{Addr: DefaultAddress, W: []byte{cmdReset}},
			{Addr: DefaultAddress, W: []byte{cmdContHighRes}},
			{Addr: DefaultAddress, R: []byte{0x4C, 0x5A}},
		},
		DontPanic: true,
	}

	dev, err := New(playback, WithSleepFunc(func(time.Duration) {}))
	require.NoError(t, err)

	lux, err := dev.Sense()
	require.NoError(t, err)
	assert.InDelta(t, 19546.0/1.2, lux, 0.01)
}

func TestAltAddress(t *testing.T) {
	t.Parallel()

	playback := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: AltAddress, W: []byte{cmdPowerOn}},
			{Addr: AltAddress, W: []byte{cmdReset}},
			{Addr: AltAddress, W: []byte{cmdContHighRes}},
		},
		DontPanic: true,
	}

	_, err := New(playback, WithAddress(AltAddress), WithSleepFunc(func(time.Duration) {}))
	require.NoError(t, err)
}

func TestNewFailsOnBusError(t *testing.T) {
	t.Parallel()

	// Empty script: the first command fails.
	playback := &i2ctest.Playback{DontPanic: true}

	_, err := New(playback, WithSleepFunc(func(time.Duration) {}))
	require.Error(t, err)
}
