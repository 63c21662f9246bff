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
	"errors"
	"fmt"

	"github.com/hsanjuan/go-ndef"
)

// NDEF TLV block types used on NDEF-formatted MIFARE Classic sectors
const (
	tlvNull        = 0x00
	tlvNDEFMessage = 0x03
	tlvTerminator  = 0xFE
)

// ErrNoNDEF indicates the sector data carried no NDEF message TLV
var ErrNoNDEF = errors.New("no ndef message found")

// extractNDEFPayload scans TLV blocks for the first NDEF message and
// returns its payload bytes.
func extractNDEFPayload(data []byte) ([]byte, error) {
	for i := 0; i < len(data); {
		switch data[i] {
		case tlvNull:
			i++
		case tlvTerminator:
			return nil, ErrNoNDEF
		case tlvNDEFMessage:
			if i+1 >= len(data) {
				return nil, fmt.Errorf("truncated tlv length: %w", ErrNoNDEF)
			}
			length := int(data[i+1])
			start := i + 2
			// Three-byte length form for messages over 254 bytes
			if length == 0xFF {
				if i+3 >= len(data) {
					return nil, fmt.Errorf("truncated tlv length: %w", ErrNoNDEF)
				}
				length = int(data[i+2])<<8 | int(data[i+3])
				start = i + 4
			}
			if start+length > len(data) {
				return nil, fmt.Errorf("tlv length %d past end of data: %w", length, ErrNoNDEF)
			}
			return data[start : start+length], nil
		default:
			// Unknown TLV: skip over it by its declared length
			if i+1 >= len(data) {
				return nil, ErrNoNDEF
			}
			i += 2 + int(data[i+1])
		}
	}
	return nil, ErrNoNDEF
}

// DecodeNDEFMessage parses the first NDEF message from raw sector data
// read off an NDEF-formatted card.
func DecodeNDEFMessage(data []byte) (*ndef.Message, error) {
	payload, err := extractNDEFPayload(data)
	if err != nil {
		return nil, err
	}

	msg := &ndef.Message{}
	if _, err := msg.Unmarshal(payload); err != nil {
		return nil, fmt.Errorf("ndef unmarshal failed: %w", err)
	}
	return msg, nil
}

// DecodeNDEFText parses the first NDEF message from raw sector data and
// returns its human-readable content.
func DecodeNDEFText(data []byte) (string, error) {
	msg, err := DecodeNDEFMessage(data)
	if err != nil {
		return "", err
	}
	return msg.String(), nil
}
