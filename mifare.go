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
	"fmt"
)

// MIFAREBlockSize is the size of a MIFARE Classic data block
const MIFAREBlockSize = 16

// KeyType selects which of a sector's two Crypto1 keys to authenticate with
type KeyType byte

const (
	// KeyA authenticates with the sector's key A
	KeyA KeyType = piccAuthKeyA
	// KeyB authenticates with the sector's key B
	KeyB KeyType = piccAuthKeyB
)

// Key is a 6-byte MIFARE Classic sector key
type Key [6]byte

// DefaultKey is the transport-configuration key factory-fresh cards ship with
var DefaultKey = Key{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}

// Authenticate runs the Crypto1 authentication handshake for the sector
// containing block, using the MFAuthent device command. On success the
// reader holds an encrypted channel to the card until StopCrypto is
// called or the card leaves the field.
func (d *Device) Authenticate(keyType KeyType, block byte, key Key, uid UID) error {
	frame := make([]byte, 0, 12)
	frame = append(frame, byte(keyType), block)
	frame = append(frame, key[:]...)
	frame = append(frame, uid.Bytes()...)

	if _, _, err := d.transceive(cmdMFAuthent, frame); err != nil {
		return fmt.Errorf("mifare auth block %d: %w", block, err)
	}

	// MFAuthent reports success only through the crypto flag.
	status2, err := d.transport.ReadRegister(regStatus2)
	if err != nil {
		return fmt.Errorf("status read failed: %w", err)
	}
	if status2&status2MFCrypto1On == 0 {
		return fmt.Errorf("crypto unit not engaged for block %d: %w", block, ErrAuthFailed)
	}
	return nil
}

// StopCrypto drops the Crypto1 channel. Required before the card can be
// selected again or another sector authenticated with a different key.
func (d *Device) StopCrypto() error {
	if err := ClearBits(d.transport, regStatus2, status2MFCrypto1On); err != nil {
		return fmt.Errorf("crypto stop failed: %w", err)
	}
	return nil
}

// setWireCRC toggles hardware CRC_A generation and checking on RF frames.
// Block reads and writes run with it on so a 16-byte block arrives as
// exactly 16 FIFO bytes; request/anti-collision frames run with it off.
func (d *Device) setWireCRC(enabled bool) error {
	for _, reg := range []byte{regTxMode, regRxMode} {
		var err error
		if enabled {
			err = SetBits(d.transport, reg, modeCRCEnable)
		} else {
			err = ClearBits(d.transport, reg, modeCRCEnable)
		}
		if err != nil {
			return fmt.Errorf("wire crc toggle failed: %w", err)
		}
	}
	return nil
}

// ReadBlock reads a 16-byte block from an authenticated card.
func (d *Device) ReadBlock(block byte) ([]byte, error) {
	if err := d.setWireCRC(true); err != nil {
		return nil, err
	}
	defer func() { _ = d.setWireCRC(false) }()

	back, bits, err := d.transceive(cmdTransceive, []byte{piccRead, block})
	if err != nil {
		return nil, fmt.Errorf("mifare read block %d: %w", block, err)
	}
	if bits != MIFAREBlockSize*8 || len(back) < MIFAREBlockSize {
		return nil, fmt.Errorf("read response %d bits: %w", bits, ErrProtocol)
	}
	return back[:MIFAREBlockSize], nil
}

// WriteBlock writes a 16-byte block to an authenticated card. The
// exchange is two-step: the write command must be acknowledged before the
// data frame is sent, and the data frame acknowledged before the write is
// committed.
func (d *Device) WriteBlock(block byte, data []byte) error {
	if len(data) != MIFAREBlockSize {
		return fmt.Errorf("block data must be %d bytes, got %d: %w", MIFAREBlockSize, len(data), ErrInvalidParameter)
	}

	if err := d.setWireCRC(true); err != nil {
		return err
	}
	defer func() { _ = d.setWireCRC(false) }()

	if err := d.expectAck(cmdTransceive, []byte{piccWrite, block}); err != nil {
		return fmt.Errorf("mifare write block %d: %w", block, err)
	}
	if err := d.expectAck(cmdTransceive, data); err != nil {
		return fmt.Errorf("mifare write block %d data: %w", block, err)
	}
	return nil
}

// expectAck sends a frame and requires the card's 4-bit ACK in response.
func (d *Device) expectAck(cmd byte, send []byte) error {
	back, bits, err := d.transceive(cmd, send)
	if err != nil {
		return err
	}
	if bits != 4 || len(back) < 1 || back[0]&0x0F != piccAck {
		return fmt.Errorf("card nak (%d bits): %w", bits, ErrProtocol)
	}
	return nil
}
