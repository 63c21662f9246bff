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

// Package iso14443 provides ISO 14443-3 Type A checksum helpers shared
// by the protocol core and the simulated reader.
package iso14443

// BCC computes the block check character of an anti-collision frame:
// the XOR of the serial-number bytes. The card appends it to its
// 4-byte serial; the reader recomputes it to catch corrupted frames.
func BCC(data []byte) byte {
	var bcc byte
	for _, b := range data {
		bcc ^= b
	}
	return bcc
}

// CRCA computes the ISO 14443-3 CRC_A checksum: initial value 0x6363,
// reflected polynomial 0x8408, transmitted low byte first. The reader's
// coprocessor produces the same value in hardware.
func CRCA(data []byte) uint16 {
	crc := uint16(0x6363)
	for _, b := range data {
		b ^= byte(crc)
		b ^= b << 4
		crc = (crc >> 8) ^ (uint16(b) << 8) ^ (uint16(b) << 3) ^ (uint16(b) >> 4)
	}
	return crc
}

// AppendCRCA appends the CRC_A of data to it, low byte first, as the
// checksum appears on the wire.
func AppendCRCA(data []byte) []byte {
	crc := CRCA(data)
	return append(data, byte(crc), byte(crc>>8))
}

// CheckCRCA verifies a frame whose final two bytes are its CRC_A.
func CheckCRCA(frame []byte) bool {
	if len(frame) < 3 {
		return false
	}
	payload := frame[:len(frame)-2]
	crc := CRCA(payload)
	return frame[len(frame)-2] == byte(crc) && frame[len(frame)-1] == byte(crc>>8)
}
