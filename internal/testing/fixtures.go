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

// Package testing provides shared card fixtures for tests across the
// module. It must not import the root package.
package testing

// Canonical card identities used across tests.
var (
	// UIDClassic1K is a typical MIFARE Classic 1K serial number.
	UIDClassic1K = [4]byte{0xDE, 0xAD, 0xBE, 0xEF}

	// ATQAClassic1K is the answer-to-request of a Classic 1K.
	ATQAClassic1K = [2]byte{0x00, 0x04}

	// SAKClassic1K is the select-acknowledge of a Classic 1K.
	SAKClassic1K = byte(0x08)

	// FactoryKey is the transport-configuration key of a factory-fresh
	// card.
	FactoryKey = [6]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}
)

// TextRecordTLV wraps a short NDEF text record (language "en") in the
// message TLV layout found on NDEF-formatted Classic sectors.
func TextRecordTLV(text string) []byte {
	payload := append([]byte{0x02, 'e', 'n'}, []byte(text)...)

	record := []byte{
		0xD1,                // MB, ME, SR, TNF well-known
		0x01,                // type length
		byte(len(payload)),  // payload length
		'T',                 // type: text
	}
	record = append(record, payload...)

	tlv := []byte{0x03, byte(len(record))}
	tlv = append(tlv, record...)
	return append(tlv, 0xFE)
}

// PadToBlocks zero-pads data up to a whole number of 16-byte blocks,
// the shape block reads return.
func PadToBlocks(data []byte) []byte {
	const blockSize = 16
	rem := len(data) % blockSize
	if rem == 0 {
		return data
	}
	padded := make([]byte, len(data)+blockSize-rem)
	copy(padded, data)
	return padded
}
