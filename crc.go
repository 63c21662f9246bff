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

// divIrqCRCDone is the DivIrq bit raised when the CRC coprocessor
// finishes.
const divIrqCRCDone = 0x04

// CalculateCRC runs the reader's CRC_A coprocessor over data and returns
// the 2-byte checksum, low byte first, as it appears on the wire in
// ISO 14443-3 frames.
//
// The wait follows the same bounded-spin discipline as a transceive: the
// calculation either completes within the iteration bound or reports
// ErrTimeout.
func (d *Device) CalculateCRC(data []byte) ([2]byte, error) {
	var crc [2]byte
	if len(data) > fifoDepth {
		return crc, fmt.Errorf("crc input %d bytes exceeds FIFO depth: %w", len(data), ErrDataTooLarge)
	}

	if err := d.transport.WriteRegister(regCommand, cmdIdle); err != nil {
		return crc, fmt.Errorf("command cancel failed: %w", err)
	}
	if err := ClearBits(d.transport, regDivIrq, divIrqCRCDone); err != nil {
		return crc, fmt.Errorf("crc irq clear failed: %w", err)
	}
	if err := SetBits(d.transport, regFIFOLevel, fifoFlush); err != nil {
		return crc, fmt.Errorf("fifo flush failed: %w", err)
	}

	for _, b := range data {
		if err := d.transport.WriteRegister(regFIFOData, b); err != nil {
			return crc, fmt.Errorf("fifo load failed: %w", err)
		}
	}
	if err := d.transport.WriteRegister(regCommand, cmdCalcCRC); err != nil {
		return crc, fmt.Errorf("command write failed: %w", err)
	}

	done := false
	for i := d.config.Timing.CRCPollIterations; i > 0; i-- {
		flags, err := d.transport.ReadRegister(regDivIrq)
		if err != nil {
			return crc, fmt.Errorf("crc irq poll failed: %w", err)
		}
		if flags&divIrqCRCDone != 0 {
			done = true
			break
		}
	}
	if !done {
		return crc, fmt.Errorf("crc coprocessor: %w", ErrTimeout)
	}

	lo, err := d.transport.ReadRegister(regCRCResultL)
	if err != nil {
		return crc, fmt.Errorf("crc result read failed: %w", err)
	}
	hi, err := d.transport.ReadRegister(regCRCResultH)
	if err != nil {
		return crc, fmt.Errorf("crc result read failed: %w", err)
	}

	crc[0] = lo
	crc[1] = hi
	return crc, nil
}
