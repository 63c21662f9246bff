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

/*
Package rc522 provides a pure Go library for interfacing with NXP MFRC522
contactless reader ICs.

The MFRC522 is a 13.56 MHz reader/writer for ISO/IEC 14443 A cards, exposed
to the host as an 8-bit register file behind a synchronous serial bus. This
library drives the register-mapped command protocol (request, anti-collision,
transceive, CRC coprocessor, MIFARE Classic authentication) over any
transport that can read and write a single register.

Features:
  - Multiple transport support: SPI, UART (serial mode), I2C
  - REQA/WUPA card request and cascade-level-1 anti-collision
  - MIFARE Classic 1K/4K block read/write with Crypto1 authentication
  - NDEF text extraction from NDEF-formatted sectors
  - Retry logic with configurable backoff
  - Simulated register file for hardware-free testing

Basic Usage:

	import (
	    "github.com/boardlab/go-rc522"
	    "github.com/boardlab/go-rc522/transport/spi"
	)

	// Create an SPI transport with a GPIO-wired reset line
	transport, err := spi.New("SPI0.0", spi.WithResetPin("GPIO22"))
	if err != nil {
	    log.Fatal(err)
	}
	defer transport.Close()

	// Create and initialize the reader
	device, err := rc522.New(transport)
	if err != nil {
	    log.Fatal(err)
	}
	if err := device.Init(); err != nil {
	    log.Fatal(err)
	}

	// Poll for a card
	card, err := device.DetectCard(rc522.PICCRequestIdle)
	if err != nil {
	    log.Fatal(err)
	}
	if card != nil {
	    fmt.Printf("Card detected: %s (ATQA %02X %02X)\n",
	        card.UID, card.ATQA[0], card.ATQA[1])
	}

Transport Selection:

The MFRC522 selects its host interface by pin strapping. All three are
supported:

  - SPI: the common breakout-board wiring, up to 10 MHz
  - UART: serial mode through USB-to-serial adapters
  - I2C: for boards that strap the EA pin

Error Handling:

Every card exchange resolves to one of three outcomes: success, timeout
(no response inside the reader's timer window), or protocol error (the
reader flagged collision, parity, CRC, or buffer faults). The latter two
surface as sentinel errors that can be inspected:

	if errors.Is(err, rc522.ErrTimeout) {
	    // no card answered, try again on the next poll
	}

All non-success outcomes are recoverable by retrying on the next polling
cycle; nothing in an exchange is fatal to the device session.

Thread Safety:

Device operations are not thread-safe. The register file is a single
shared resource; if you need concurrent access, serialize it in your
application.
*/
package rc522
