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
	"sync"
	"time"

	"github.com/boardlab/go-rc522/internal/iso14443"
)

// RegWrite is one entry of a SimTransport's ordered write log.
type RegWrite struct {
	Reg   byte
	Value byte
}

// VirtualCard is a simulated ISO 14443-3 card a SimTransport answers
// for. Memory is block-addressed; only the blocks a test populates
// exist.
type VirtualCard struct {
	Memory map[byte][]byte
	UID    UID
	ATQA   ATQA
	SAK    byte
	KeyA   Key
	KeyB   Key

	// CorruptBCC makes the anti-collision response carry a broken
	// checksum byte.
	CorruptBCC bool
}

// NewVirtualCard creates a MIFARE Classic 1K style virtual card with
// factory-default keys.
func NewVirtualCard(uid UID) *VirtualCard {
	return &VirtualCard{
		UID:    uid,
		ATQA:   ATQA{0x00, 0x04},
		SAK:    0x08,
		KeyA:   DefaultKey,
		KeyB:   DefaultKey,
		Memory: make(map[byte][]byte),
	}
}

// SimTransport is a simulated register file implementing Transport. It
// models the command/IRQ/FIFO behavior the protocol core depends on,
// answers for an optional VirtualCard, and keeps an ordered log of every
// register write so tests can assert sequencing invariants.
//
// Without a card present, transceive commands expire the response timer,
// exactly like an unpopulated antenna field.
type SimTransport struct {
	// Writes is the ordered register write log.
	Writes []RegWrite

	// OnCommand, when set, replaces the virtual-card logic: it runs
	// whenever an executing command (transceive, authenticate, CRC) is
	// written, with the bytes loaded into the FIFO since the last flush.
	OnCommand func(cmd byte, fifo []byte)

	card      *VirtualCard
	regs      [0x40]byte
	readHooks map[byte]func() byte

	txFIFO     []byte
	rxFIFO     []byte
	rxLastBits byte

	// pendingWrite tracks the block awaiting its data frame mid way
	// through the two-step MIFARE write.
	pendingWrite  *byte
	authenticated bool

	Resets int
	closed bool
	mu     sync.Mutex
}

// NewSimTransport creates a simulated register file with no card in the
// field.
func NewSimTransport() *SimTransport {
	return &SimTransport{
		readHooks: make(map[byte]func() byte),
	}
}

// PresentCard places a virtual card in the simulated field.
func (s *SimTransport) PresentCard(card *VirtualCard) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.card = card
	s.authenticated = false
}

// RemoveCard empties the simulated field.
func (s *SimTransport) RemoveCard() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.card = nil
	s.authenticated = false
}

// SetRegister seeds a raw register value, e.g. a version byte or error
// flags.
func (s *SimTransport) SetRegister(reg, value byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.regs[reg] = value
}

// SetReadHook overrides reads of a single register.
func (s *SimTransport) SetReadHook(reg byte, hook func() byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readHooks[reg] = hook
}

// QueueResponse loads a raw card response: FIFO content, the valid-bit
// count of the final byte (0 = whole byte), and the interrupt flags to
// raise. Used with OnCommand for exchanges the virtual card does not
// model.
func (s *SimTransport) QueueResponse(data []byte, lastBits byte, irqFlags byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queueLocked(data, lastBits, irqFlags)
}

func (s *SimTransport) queueLocked(data []byte, lastBits byte, irqFlags byte) {
	s.rxFIFO = append([]byte(nil), data...)
	s.rxLastBits = lastBits
	s.regs[regComIrq] |= irqFlags
}

// ReadRegister implements Transport
func (s *SimTransport) ReadRegister(reg byte) (byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrTransportRead
	}
	if hook, ok := s.readHooks[reg]; ok {
		return hook(), nil
	}

	switch reg {
	case regFIFOData:
		if len(s.rxFIFO) == 0 {
			return 0, nil
		}
		b := s.rxFIFO[0]
		s.rxFIFO = s.rxFIFO[1:]
		return b, nil
	case regFIFOLevel:
		return byte(len(s.rxFIFO)), nil
	case regControl:
		return s.rxLastBits, nil
	default:
		return s.regs[reg], nil
	}
}

// WriteRegister implements Transport
func (s *SimTransport) WriteRegister(reg, value byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrTransportWrite
	}
	s.Writes = append(s.Writes, RegWrite{Reg: reg, Value: value})

	switch reg {
	case regFIFOData:
		s.txFIFO = append(s.txFIFO, value)
	case regFIFOLevel:
		if value&fifoFlush != 0 {
			s.txFIFO = nil
			s.rxFIFO = nil
			s.rxLastBits = 0
		}
	case regComIrq:
		// Any flag write clears pending interrupts
		s.regs[regComIrq] = 0
	case regCommand:
		s.regs[reg] = value
		s.execute(value)
	default:
		s.regs[reg] = value
	}
	return nil
}

// execute runs command side effects. Idle and soft reset have none worth
// modeling beyond the register write itself.
func (s *SimTransport) execute(cmd byte) {
	switch cmd {
	case cmdTransceive, cmdMFAuthent:
		frame := append([]byte(nil), s.txFIFO...)
		if s.OnCommand != nil {
			// Run the hook unlocked so it may call QueueResponse or
			// SetRegister.
			cb := s.OnCommand
			s.mu.Unlock()
			cb(cmd, frame)
			s.mu.Lock()
			return
		}
		s.answer(cmd, frame)
	case cmdCalcCRC:
		crc := iso14443.CRCA(s.txFIFO)
		s.regs[regCRCResultL] = byte(crc)
		s.regs[regCRCResultH] = byte(crc >> 8)
		s.regs[regDivIrq] |= divIrqCRCDone
	}
}

// answer plays the virtual card's side of an exchange. No card means the
// response timer expires.
func (s *SimTransport) answer(cmd byte, frame []byte) {
	card := s.card
	if card == nil {
		s.regs[regComIrq] |= irqTimer
		return
	}

	if cmd == cmdMFAuthent {
		s.answerAuth(card, frame)
		return
	}

	if s.pendingWrite != nil {
		block := *s.pendingWrite
		s.pendingWrite = nil
		data := append([]byte(nil), frame...)
		card.Memory[block] = data
		s.queueLocked([]byte{piccAck}, 4, irqRx|irqIdle)
		return
	}

	switch {
	case len(frame) == 1 && (frame[0] == PICCRequestIdle || frame[0] == PICCRequestAll):
		s.queueLocked([]byte{card.ATQA[0], card.ATQA[1]}, 0, irqRx|irqIdle)

	case len(frame) == 2 && frame[0] == piccSelectCL1 && frame[1] == piccNVBSelect:
		resp := append([]byte(nil), card.UID.Bytes()...)
		bcc := iso14443.BCC(resp)
		if card.CorruptBCC {
			bcc ^= 0xFF
		}
		s.queueLocked(append(resp, bcc), 0, irqRx|irqIdle)

	case len(frame) == 9 && frame[0] == piccSelectCL1 && frame[1] == piccNVBSelect:
		s.queueLocked([]byte{card.SAK, 0x00, 0x00}, 0, irqRx|irqIdle)

	case len(frame) >= 2 && frame[0] == piccHalt:
		// Halted cards do not acknowledge
		s.regs[regComIrq] |= irqTimer

	case len(frame) == 2 && frame[0] == piccRead:
		if !s.authenticated {
			s.regs[regComIrq] |= irqTimer
			return
		}
		data, ok := card.Memory[frame[1]]
		if !ok {
			data = make([]byte, MIFAREBlockSize)
		}
		s.queueLocked(data, 0, irqRx|irqIdle)

	case len(frame) == 2 && frame[0] == piccWrite:
		if !s.authenticated {
			s.regs[regComIrq] |= irqTimer
			return
		}
		block := frame[1]
		s.pendingWrite = &block
		s.queueLocked([]byte{piccAck}, 4, irqRx|irqIdle)

	default:
		s.regs[regComIrq] |= irqTimer
	}
}

// answerAuth models the Crypto1 handshake: a wrong key gets silence, the
// right one engages the crypto unit.
func (s *SimTransport) answerAuth(card *VirtualCard, frame []byte) {
	if len(frame) != 12 {
		s.regs[regComIrq] |= irqTimer
		return
	}

	var key Key
	copy(key[:], frame[2:8])

	want := card.KeyA
	if frame[0] == piccAuthKeyB {
		want = card.KeyB
	}
	if key != want {
		s.regs[regComIrq] |= irqTimer
		return
	}

	s.authenticated = true
	s.regs[regStatus2] |= status2MFCrypto1On
	s.regs[regComIrq] |= irqIdle
}

// Reset implements Transport: it counts reset pulses and clears the
// simulated register file, like a real power-style reset.
func (s *SimTransport) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Resets++
	version := s.regs[regVersion]
	s.regs = [0x40]byte{}
	s.regs[regVersion] = version
	s.txFIFO = nil
	s.rxFIFO = nil
	s.rxLastBits = 0
	s.pendingWrite = nil
	s.authenticated = false
	return nil
}

// Close implements Transport
func (s *SimTransport) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// SetTimeout implements Transport; the simulation completes instantly
func (*SimTransport) SetTimeout(time.Duration) error {
	return nil
}

// IsConnected implements Transport
func (s *SimTransport) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed
}

// Type returns TransportMock
func (*SimTransport) Type() TransportType {
	return TransportMock
}

// WriteOrder returns the positions of the first write of each given
// register, in the order requested, with -1 for registers never written.
// Helper for sequencing assertions.
func (s *SimTransport) WriteOrder(regs ...byte) []int {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]int, len(regs))
	for i, reg := range regs {
		out[i] = -1
		for pos, w := range s.Writes {
			if w.Reg == reg {
				out[i] = pos
				break
			}
		}
	}
	return out
}

// Ensure SimTransport implements Transport
var _ Transport = (*SimTransport)(nil)
