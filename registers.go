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

// MFRC522 register addresses (datasheet section 9)
const (
	regCommand    = 0x01
	regComIEn     = 0x02
	regDivIEn     = 0x03
	regComIrq     = 0x04
	regDivIrq     = 0x05
	regError      = 0x06
	regStatus1    = 0x07
	regStatus2    = 0x08
	regFIFOData   = 0x09
	regFIFOLevel  = 0x0A
	regControl    = 0x0C
	regBitFraming = 0x0D
	regMode       = 0x11
	regTxMode     = 0x12
	regRxMode     = 0x13
	regTxControl  = 0x14
	regTxASK      = 0x15
	regCRCResultH = 0x21
	regCRCResultL = 0x22
	regRFCfg      = 0x26
	regTMode      = 0x2A
	regTPrescaler = 0x2B
	regTReloadH   = 0x2C
	regTReloadL   = 0x2D
	regVersion    = 0x37
)

// Device commands, written to regCommand. Exactly one command is active at
// a time; writing a new one supersedes the prior.
const (
	cmdIdle       = 0x00
	cmdMem        = 0x01
	cmdGenRandID  = 0x02
	cmdCalcCRC    = 0x03
	cmdTransmit   = 0x04
	cmdNoChange   = 0x07
	cmdReceive    = 0x08
	cmdTransceive = 0x0C
	cmdMFAuthent  = 0x0E
	cmdSoftReset  = 0x0F
)

// ComIrq bits
const (
	irqSet     = 0x80 // Set1: write 1s set, write 0s clear
	irqTx      = 0x40
	irqRx      = 0x20
	irqIdle    = 0x10
	irqHiAlert = 0x08
	irqLoAlert = 0x04
	irqErr     = 0x02
	irqTimer   = 0x01
)

// Error register bits
const (
	errWr          = 0x80
	errTemp        = 0x40
	errBufferOvfl  = 0x10
	errCollision   = 0x08
	errCRC         = 0x04
	errParity      = 0x02
	errProtocolBit = 0x01
)

// errCheckMask is the set of error-register faults that invalidate an
// exchange. The reserved and overtemperature bits stay out: temperature
// warnings do not corrupt a frame already in the FIFO.
const errCheckMask = errWr | errBufferOvfl | errCollision | errCRC | errParity | errProtocolBit

// Control register: low 3 bits give the valid bit count of the last
// received byte (0 means the whole byte is valid).
const controlRxLastBits = 0x07

// BitFraming register bits
const (
	bitFramingStartSend = 0x80 // starts transmission of FIFO data (Transceive only)
	bitFramingShortByte = 0x07 // transmit only 7 bits of the final byte (REQA/WUPA framing)
)

// Status2 register bits
const status2MFCrypto1On = 0x08

// TxMode/RxMode register: high bit enables hardware CRC_A generation and
// checking on the RF frames.
const modeCRCEnable = 0x80

// FIFOLevel register: writing the high bit flushes the buffer.
const fifoFlush = 0x80

// fifoDepth is the hardware FIFO capacity in bytes. Responses never exceed
// this; level reads beyond it are clamped before draining.
const fifoDepth = 16

// TxControl register: bits 0..1 drive the antenna output stages.
const txControlAntennaOn = 0x03

// ISO 14443-3 Type A (PICC) command set
const (
	// PICCRequestIdle (REQA) probes for cards not already halted.
	PICCRequestIdle = 0x26
	// PICCRequestAll (WUPA) additionally wakes halted cards.
	PICCRequestAll = 0x52

	piccSelectCL1 = 0x93
	piccNVBSelect = 0x70 // NVB for a full cascade-level-1 select
	piccHalt      = 0x50

	piccAuthKeyA = 0x60
	piccAuthKeyB = 0x61
	piccRead     = 0x30
	piccWrite    = 0xA0

	// piccAck is the 4-bit acknowledge a MIFARE card returns after the
	// first step of a write.
	piccAck = 0x0A
)

// Initialization values (datasheet sections 9.3.3.10 and 9.3.2.x).
// TPrescaler * TReload / 6.78 MHz yields the ~24 ms response window.
const (
	tModeValue      = 0x8D
	tPrescalerValue = 0x3E
	tReloadLow      = 30
	tReloadHigh     = 0
	txASKForce100   = 0x40 // force 100% ASK modulation, the single supported bit rate
	modeValue       = 0x3D // CRC preset 0x6363, transmitter defaults
)
