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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boardlab/go-rc522/internal/iso14443"
)

func TestCalculateCRC(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
	}{
		{name: "halt frame", data: []byte{0x50, 0x00}},
		{name: "select prefix", data: []byte{0x93, 0x70, 0xDE, 0xAD, 0xBE, 0xEF, 0x94}},
		{name: "single byte", data: []byte{0x00}},
		{name: "empty", data: nil},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			device, _ := newTestDevice(t)

			crc, err := device.CalculateCRC(tt.data)
			require.NoError(t, err)

			want := iso14443.CRCA(tt.data)
			assert.Equal(t, byte(want), crc[0], "low byte first")
			assert.Equal(t, byte(want>>8), crc[1])
		})
	}
}

func TestCalculateCRCHaltVector(t *testing.T) {
	t.Parallel()

	device, _ := newTestDevice(t)

	// Known vector: CRC_A over "50 00" is 57 CD on the wire.
	crc, err := device.CalculateCRC([]byte{0x50, 0x00})
	require.NoError(t, err)
	assert.Equal(t, [2]byte{0x57, 0xCD}, crc)
}

func TestCalculateCRCRejectsOversizedInput(t *testing.T) {
	t.Parallel()

	device, _ := newTestDevice(t)

	_, err := device.CalculateCRC(make([]byte, fifoDepth+1))
	assert.ErrorIs(t, err, ErrDataTooLarge)
}

func TestCalculateCRCCoprocessorStall(t *testing.T) {
	t.Parallel()

	device, sim := newTestDevice(t)
	sim.SetReadHook(regDivIrq, func() byte { return 0 })

	_, err := device.CalculateCRC([]byte{0x50, 0x00})
	assert.ErrorIs(t, err, ErrTimeout)
}
