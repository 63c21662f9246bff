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
	"context"
	"encoding/hex"
	"fmt"

	"github.com/boardlab/go-rc522/internal/iso14443"
)

// UID is a cascade-level-1 card serial number. It is recomputed on every
// detection cycle and never cached across polls.
type UID [4]byte

// String returns the UID as uppercase hex
func (u UID) String() string {
	const hexDigits = "0123456789ABCDEF"
	buf := make([]byte, 0, 8)
	for _, b := range u {
		buf = append(buf, hexDigits[b>>4], hexDigits[b&0x0F])
	}
	return string(buf)
}

// Bytes returns the UID as a byte slice
func (u UID) Bytes() []byte {
	return []byte{u[0], u[1], u[2], u[3]}
}

// ParseUID parses an 8-hex-digit UID string
func ParseUID(s string) (UID, error) {
	var uid UID
	raw, err := hex.DecodeString(s)
	if err != nil {
		return uid, fmt.Errorf("malformed uid %q: %w", s, ErrInvalidParameter)
	}
	if len(raw) != len(uid) {
		return uid, fmt.Errorf("uid must be %d bytes: %w", len(uid), ErrInvalidParameter)
	}
	copy(uid[:], raw)
	return uid, nil
}

// ATQA is the 2-byte answer-to-request a card sends in response to
// REQA/WUPA.
type ATQA [2]byte

// DetectedCard is the result of a full request + anti-collision cycle.
type DetectedCard struct {
	ATQA ATQA
	UID  UID
}

// RequestCard probes the field for a card with the given request mode
// (PICCRequestIdle or PICCRequestAll) and returns its ATQA.
//
// A valid ATQA is always exactly two bytes; any other response bit count,
// and any transceive failure, reports ErrNoCardDetected. A transceive
// failure keeps its cause in the chain, so errors.Is can still pick out
// transport faults behind the no-card answer.
func (d *Device) RequestCard(mode byte) (ATQA, error) {
	return d.RequestCardContext(context.Background(), mode)
}

// RequestCardContext probes for a card with context support
func (d *Device) RequestCardContext(ctx context.Context, mode byte) (ATQA, error) {
	var atqa ATQA
	if err := ctx.Err(); err != nil {
		return atqa, fmt.Errorf("request cancelled: %w", err)
	}

	// Permit a short final byte: REQA/WUPA are 7-bit frames.
	if err := d.transport.WriteRegister(regBitFraming, bitFramingShortByte); err != nil {
		return atqa, fmt.Errorf("bit framing failed: %w", err)
	}

	back, bits, err := d.transceive(cmdTransceive, []byte{mode})
	if err != nil {
		debugf("card request: err=%v", err)
		return atqa, fmt.Errorf("%w: %w", ErrNoCardDetected, err)
	}
	if bits != 16 {
		debugf("card request: bits=%d", bits)
		return atqa, ErrNoCardDetected
	}

	atqa[0] = back[0]
	atqa[1] = back[1]
	return atqa, nil
}

// Anticollision runs the cascade-level-1 anti-collision exchange and
// returns the card's 4-byte serial number.
//
// The 5-byte response carries the serial in bytes 0..3 and their XOR in
// byte 4 (BCC). A BCC mismatch reports ErrChecksumMismatch and the serial
// is discarded, not corrected.
func (d *Device) Anticollision() (UID, error) {
	return d.AnticollisionContext(context.Background())
}

// AnticollisionContext runs the anti-collision exchange with context support
func (d *Device) AnticollisionContext(ctx context.Context) (UID, error) {
	var uid UID
	if err := ctx.Err(); err != nil {
		return uid, fmt.Errorf("anticollision cancelled: %w", err)
	}

	// Full-byte framing again after the short REQA frame.
	if err := d.transport.WriteRegister(regBitFraming, 0x00); err != nil {
		return uid, fmt.Errorf("bit framing failed: %w", err)
	}

	back, _, err := d.transceive(cmdTransceive, []byte{piccSelectCL1, piccNVBSelect})
	if err != nil {
		return uid, fmt.Errorf("anticollision exchange failed: %w", err)
	}
	if len(back) < 5 {
		return uid, fmt.Errorf("anticollision response %d bytes: %w", len(back), ErrProtocol)
	}

	bcc := iso14443.BCC(back[:4])
	if bcc != back[4] {
		return uid, fmt.Errorf("bcc %02X != %02X: %w", bcc, back[4], ErrChecksumMismatch)
	}

	copy(uid[:], back[:4])
	return uid, nil
}

// DetectCard runs a full request + anti-collision cycle with the given
// request mode (PICCRequestIdle or PICCRequestAll) and returns the
// detected card, or an error if no card answered cleanly.
func (d *Device) DetectCard(mode byte) (*DetectedCard, error) {
	return d.DetectCardContext(context.Background(), mode)
}

// DetectCardContext runs a full detection cycle with context support
func (d *Device) DetectCardContext(ctx context.Context, mode byte) (*DetectedCard, error) {
	atqa, err := d.RequestCardContext(ctx, mode)
	if err != nil {
		return nil, err
	}

	uid, err := d.AnticollisionContext(ctx)
	if err != nil {
		return nil, err
	}

	return &DetectedCard{ATQA: atqa, UID: uid}, nil
}

// SelectCard selects a card by its serial number, making it the active
// target for block operations. Returns the card's SAK byte.
func (d *Device) SelectCard(uid UID) (byte, error) {
	frame := make([]byte, 0, 9)
	frame = append(frame, piccSelectCL1, piccNVBSelect)
	frame = append(frame, uid.Bytes()...)
	frame = append(frame, iso14443.BCC(uid.Bytes()))

	crc, err := d.CalculateCRC(frame)
	if err != nil {
		return 0, fmt.Errorf("select crc failed: %w", err)
	}
	frame = append(frame, crc[0], crc[1])

	back, bits, err := d.transceive(cmdTransceive, frame)
	if err != nil {
		return 0, fmt.Errorf("select exchange failed: %w", err)
	}
	// SAK is one byte plus CRC_A: 24 bits.
	if bits != 24 || len(back) < 1 {
		return 0, fmt.Errorf("select response %d bits: %w", bits, ErrProtocol)
	}
	return back[0], nil
}

// HaltCard puts the selected card into the halted state so it stops
// answering REQA until woken with PICCRequestAll.
func (d *Device) HaltCard() error {
	frame := []byte{piccHalt, 0x00}
	crc, err := d.CalculateCRC(frame)
	if err != nil {
		return fmt.Errorf("halt crc failed: %w", err)
	}
	frame = append(frame, crc[0], crc[1])

	// A halted card does not acknowledge; the expected outcome is a
	// timeout. Any other error is a real failure.
	if _, _, err := d.transceive(cmdTransceive, frame); err != nil && !IsTimeout(err) {
		return fmt.Errorf("halt exchange failed: %w", err)
	}
	return nil
}
