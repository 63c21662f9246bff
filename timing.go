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

import "time"

// Timing holds the device-characterization parameters of the protocol
// core. The defaults match the common MFRC522 breakout clocked at
// 13.56 MHz with a 6.78 MHz timer; a different board revision overrides
// them here instead of touching protocol code.
type Timing struct {
	// SoftResetSettle is the wait after issuing the soft-reset command
	// before the register file may be touched again.
	SoftResetSettle time.Duration

	// PollIterations bounds the busy-spin on the interrupt-flag register
	// inside a transceive. The spin exits early on a timer or wait IRQ;
	// exhausting the bound reports ErrTimeout.
	PollIterations int

	// CRCPollIterations bounds the spin on the CRC-coprocessor done flag.
	CRCPollIterations int
}

// DefaultTiming returns the characterization values observed on standard
// MFRC522 boards: 50ms soft-reset settle and a 2000-iteration IRQ spin
// (comfortably past the ~24ms timer window at bus speeds of 1 MHz and up).
func DefaultTiming() *Timing {
	return &Timing{
		SoftResetSettle:   50 * time.Millisecond,
		PollIterations:    2000,
		CRCPollIterations: 2000,
	}
}

// SleepFunc is the time source used for settle delays. Tests inject a
// no-op to run the reset sequences instantly.
type SleepFunc func(time.Duration)
