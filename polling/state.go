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

package polling

import (
	"errors"
	"time"
)

// CardDetectionState is the monitor's finite state machine. A card in
// the field moves Idle -> Detected; a callback that reads blocks moves
// Detected -> Reading -> PostReadGrace; removal returns to Idle.
type CardDetectionState int

const (
	StateIdle CardDetectionState = iota
	StateCardDetected
	StateReading
	StatePostReadGrace
)

// CardState tracks the card currently on the reader.
type CardState struct {
	LastSeenTime   time.Time
	ReadStartTime  time.Time
	RemovalTimer   *time.Timer
	LastUID        string
	HandledUID     string
	DetectionState CardDetectionState
	Present        bool
}

// ErrNoCardInPoll indicates an empty polling cycle. Not a fault: fields
// are empty most of the time.
var ErrNoCardInPoll = errors.New("no card detected in polling cycle")

// safeTimerStop stops a timer and drains a fire that raced the stop.
func safeTimerStop(timer *time.Timer) {
	if timer == nil {
		return
	}
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
}

// TransitionToDetected arms the removal timer for a card seen in the
// field.
func (cs *CardState) TransitionToDetected(timeout time.Duration, onRemoval func()) {
	cs.DetectionState = StateCardDetected
	cs.LastSeenTime = time.Now()
	safeTimerStop(cs.RemovalTimer)
	cs.RemovalTimer = time.AfterFunc(timeout, onRemoval)
}

// TransitionToReading suspends the removal timer while a callback holds
// the card, so a slow block read is not mistaken for removal.
func (cs *CardState) TransitionToReading() {
	cs.DetectionState = StateReading
	cs.ReadStartTime = time.Now()
	safeTimerStop(cs.RemovalTimer)
	cs.RemovalTimer = nil
}

// TransitionToPostReadGrace re-arms removal with a shortened window
// after a read completes.
func (cs *CardState) TransitionToPostReadGrace(timeout time.Duration, onRemoval func()) {
	cs.DetectionState = StatePostReadGrace
	safeTimerStop(cs.RemovalTimer)
	cs.RemovalTimer = time.AfterFunc(timeout/2, onRemoval)
}

// TransitionToIdle clears all card tracking.
func (cs *CardState) TransitionToIdle() {
	cs.DetectionState = StateIdle
	cs.Present = false
	cs.LastUID = ""
	cs.HandledUID = ""
	cs.LastSeenTime = time.Time{}
	cs.ReadStartTime = time.Time{}
	safeTimerStop(cs.RemovalTimer)
	cs.RemovalTimer = nil
}
