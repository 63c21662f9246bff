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

package iso14443

import "testing"

func TestBCC(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		data []byte
		want byte
	}{
		{
			name: "empty data",
			data: []byte{},
			want: 0,
		},
		{
			name: "single byte",
			data: []byte{0x42},
			want: 0x42,
		},
		{
			name: "identical bytes cancel",
			data: []byte{0xAA, 0xAA},
			want: 0x00,
		},
		{
			name: "typical serial number",
			data: []byte{0xDE, 0xAD, 0xBE, 0xEF},
			want: 0xDE ^ 0xAD ^ 0xBE ^ 0xEF,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := BCC(tt.data); got != tt.want {
				t.Errorf("BCC() = %#02x, want %#02x", got, tt.want)
			}
		})
	}
}

func TestCRCA(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		data []byte
		want uint16
	}{
		{
			name: "empty data keeps the preset",
			data: []byte{},
			want: 0x6363,
		},
		{
			name: "halt frame",
			// ISO 14443-3 gives CRC_A(50 00) = 57 CD on the wire.
			data: []byte{0x50, 0x00},
			want: 0xCD57,
		},
		{
			name: "single zero byte",
			data: []byte{0x00},
			want: 0x51FE,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := CRCA(tt.data); got != tt.want {
				t.Errorf("CRCA() = %#04x, want %#04x", got, tt.want)
			}
		})
	}
}

func TestAppendAndCheckCRCA(t *testing.T) {
	t.Parallel()

	frame := AppendCRCA([]byte{0x50, 0x00})
	if len(frame) != 4 {
		t.Fatalf("AppendCRCA length = %d, want 4", len(frame))
	}
	// Low byte first on the wire.
	if frame[2] != 0x57 || frame[3] != 0xCD {
		t.Errorf("AppendCRCA tail = %#02x %#02x, want 0x57 0xcd", frame[2], frame[3])
	}

	if !CheckCRCA(frame) {
		t.Error("CheckCRCA rejected a valid frame")
	}

	frame[1] ^= 0xFF
	if CheckCRCA(frame) {
		t.Error("CheckCRCA accepted a corrupted frame")
	}

	if CheckCRCA([]byte{0x01}) {
		t.Error("CheckCRCA accepted a short frame")
	}
}
