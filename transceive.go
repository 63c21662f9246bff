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

// irqMasksFor selects the interrupt-enable and wait masks for a device
// command. MFAuthent and Transceive complete on different interrupt
// sources; any other command leaves the wait mask empty so the poll loop
// degrades to a plain timer wait.
func irqMasksFor(cmd byte) (irqEn, waitIRQ byte) {
	switch cmd {
	case cmdMFAuthent:
		return irqIdle | irqErr, irqIdle
	case cmdTransceive:
		return irqTx | irqRx | irqIdle | irqErr | irqLoAlert | irqTimer, irqRx | irqIdle
	default:
		return 0, 0
	}
}

// transceive executes one command exchange against the card: load the
// FIFO, run the command, busy-poll for completion, and drain the
// response. It returns the response bytes and their exact bit length
// (protocol responses are not always byte-aligned).
//
// The poll is a bounded spin, not an event wait: it blocks the caller for
// up to Timing.PollIterations register reads and cannot be aborted
// mid-exchange.
func (d *Device) transceive(cmd byte, send []byte) (backData []byte, backBits int, err error) {
	if len(send) > fifoDepth {
		return nil, 0, fmt.Errorf("send buffer %d bytes exceeds FIFO depth: %w", len(send), ErrDataTooLarge)
	}

	irqEn, waitIRQ := irqMasksFor(cmd)

	if err := d.transport.WriteRegister(regComIEn, irqEn|irqSet); err != nil {
		return nil, 0, fmt.Errorf("irq enable failed: %w", err)
	}
	if err := ClearBits(d.transport, regComIrq, irqSet); err != nil {
		return nil, 0, fmt.Errorf("irq clear failed: %w", err)
	}
	if err := SetBits(d.transport, regFIFOLevel, fifoFlush); err != nil {
		return nil, 0, fmt.Errorf("fifo flush failed: %w", err)
	}
	// Cancel any in-flight operation deterministically before starting.
	if err := d.transport.WriteRegister(regCommand, cmdIdle); err != nil {
		return nil, 0, fmt.Errorf("command cancel failed: %w", err)
	}

	// Load the FIFO before the command write. The reverse order would
	// start execution on an empty buffer.
	for _, b := range send {
		if err := d.transport.WriteRegister(regFIFOData, b); err != nil {
			return nil, 0, fmt.Errorf("fifo load failed: %w", err)
		}
	}
	if err := d.transport.WriteRegister(regCommand, cmd); err != nil {
		return nil, 0, fmt.Errorf("command write failed: %w", err)
	}
	if cmd == cmdTransceive {
		if err := SetBits(d.transport, regBitFraming, bitFramingStartSend); err != nil {
			return nil, 0, fmt.Errorf("start send failed: %w", err)
		}
	}

	flags, exhausted, err := d.waitIRQFlags(waitIRQ)
	if err != nil {
		return nil, 0, err
	}

	// StartSend is cleared unconditionally; a no-op for other commands.
	if err := ClearBits(d.transport, regBitFraming, bitFramingStartSend); err != nil {
		return nil, 0, fmt.Errorf("start send clear failed: %w", err)
	}

	if exhausted {
		return nil, 0, fmt.Errorf("no irq within poll bound: %w", ErrTimeout)
	}

	errBits, err := d.transport.ReadRegister(regError)
	if err != nil {
		return nil, 0, fmt.Errorf("error register read failed: %w", err)
	}
	if errBits&errCheckMask != 0 {
		return nil, 0, fmt.Errorf("error register 0x%02X: %w", errBits, ErrProtocol)
	}

	// The timer expiring before the wait IRQ means the window closed with
	// no response from the card.
	if flags&irqEn&irqTimer != 0 {
		return nil, 0, fmt.Errorf("response window expired: %w", ErrTimeout)
	}

	if cmd != cmdTransceive {
		return nil, 0, nil
	}
	return d.drainFIFO()
}

// waitIRQFlags busy-polls the interrupt-flag register until the timer
// flag or any bit of waitIRQ is raised, or the iteration bound is spent.
func (d *Device) waitIRQFlags(waitIRQ byte) (flags byte, exhausted bool, err error) {
	for i := d.config.Timing.PollIterations; i > 0; i-- {
		flags, err = d.transport.ReadRegister(regComIrq)
		if err != nil {
			return 0, false, fmt.Errorf("irq poll failed: %w", err)
		}
		if flags&irqTimer != 0 || flags&waitIRQ != 0 {
			return flags, false, nil
		}
	}
	return flags, true, nil
}

// drainFIFO reads the response out of the FIFO, computing the exact bit
// length from the fill level and the valid-bit count of the final byte.
func (d *Device) drainFIFO() (data []byte, bits int, err error) {
	level, err := d.transport.ReadRegister(regFIFOLevel)
	if err != nil {
		return nil, 0, fmt.Errorf("fifo level read failed: %w", err)
	}
	control, err := d.transport.ReadRegister(regControl)
	if err != nil {
		return nil, 0, fmt.Errorf("control read failed: %w", err)
	}

	lastBits := int(control & controlRxLastBits)
	switch {
	case lastBits != 0 && level > 0:
		bits = (int(level)-1)*8 + lastBits
	case lastBits != 0:
		bits = lastBits
	default:
		bits = int(level) * 8
	}

	// Level clamp: 0 still drains one byte, anything past the FIFO depth
	// drains exactly the FIFO depth.
	n := int(level)
	if n == 0 {
		n = 1
	}
	if n > fifoDepth {
		n = fifoDepth
	}

	data = make([]byte, n)
	for i := range data {
		data[i], err = d.transport.ReadRegister(regFIFOData)
		if err != nil {
			return nil, 0, fmt.Errorf("fifo drain failed: %w", err)
		}
	}
	return data, bits, nil
}
