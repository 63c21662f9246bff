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

// Package polling turns the reader's one-shot detect cycle into
// continuous card monitoring with presence tracking and callbacks.
package polling

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	rc522 "github.com/boardlab/go-rc522"
)

// Config tunes the monitor's polling behavior.
type Config struct {
	// PollInterval is the pause between detect cycles.
	PollInterval time.Duration
	// CardRemovalTimeout is how long a card may go unseen before it
	// counts as removed.
	CardRemovalTimeout time.Duration
	// WakeHalted polls with the wake-all request so halted cards are
	// seen again.
	WakeHalted bool
}

// DefaultConfig returns the monitor defaults.
func DefaultConfig() *Config {
	return &Config{
		PollInterval:       100 * time.Millisecond,
		CardRemovalTimeout: 500 * time.Millisecond,
	}
}

// Monitor runs the continuous detection loop over a device.
//
// Callbacks fire from the polling goroutine or the removal timer:
// OnCardDetected when a card enters an empty field, OnCardChanged when a
// different card replaces it, OnCardRemoved when the field empties. A
// callback error does not stop the loop. Callbacks run with the
// monitor's state held and must not call GetState or Close.
type Monitor struct {
	device         *rc522.Device
	config         *Config
	OnCardDetected func(card *rc522.DetectedCard) error
	OnCardChanged  func(card *rc522.DetectedCard) error
	OnCardRemoved  func()

	// mu guards state and removalGen against the removal timer, which
	// fires on its own goroutine.
	mu         sync.Mutex
	state      CardState
	removalGen uint64
}

// NewMonitor creates a monitor over an initialized device.
func NewMonitor(device *rc522.Device, config *Config) *Monitor {
	if config == nil {
		config = DefaultConfig()
	}
	return &Monitor{
		device: device,
		config: config,
		state:  CardState{},
	}
}

// Start polls until the context ends. It returns the context's error.
func (m *Monitor) Start(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		card, err := m.pollOnce(ctx)
		switch {
		case err == nil:
			m.processCard(card)
		case errors.Is(err, ErrNoCardInPoll):
			// Removal is the timer's job.
		default:
			m.handlePollingError(err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(m.config.PollInterval):
		}
	}
}

// GetState returns a snapshot of the card state.
func (m *Monitor) GetState() CardState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// GetDevice returns the underlying device, for callbacks that need to
// authenticate or read blocks.
func (m *Monitor) GetDevice() *rc522.Device {
	return m.device
}

// Close stops the removal timer and closes the device.
func (m *Monitor) Close() error {
	m.mu.Lock()
	m.removalGen++
	safeTimerStop(m.state.RemovalTimer)
	m.state.RemovalTimer = nil
	m.mu.Unlock()
	if err := m.device.Close(); err != nil {
		return fmt.Errorf("failed to close device: %w", err)
	}
	return nil
}

// pollOnce runs one detect cycle.
func (m *Monitor) pollOnce(ctx context.Context) (*rc522.DetectedCard, error) {
	request := byte(rc522.PICCRequestIdle)
	if m.config.WakeHalted {
		request = rc522.PICCRequestAll
	}

	card, err := m.device.DetectCardContext(ctx, request)
	if err != nil {
		if errors.Is(err, rc522.ErrNoCardDetected) || rc522.IsTimeout(err) {
			return nil, ErrNoCardInPoll
		}
		return nil, fmt.Errorf("card detection failed: %w", err)
	}
	return card, nil
}

// handlePollingError treats persistent device faults as removal, so a
// disconnected reader does not leave a card marked present forever.
func (m *Monitor) handlePollingError(err error) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeLocked()
}

// armRemoval advances the removal generation and returns a timer
// callback bound to it. A later arm or stop supersedes the generation,
// so a timer that fired while the polling goroutine was re-arming
// cannot remove a card it just saw. Callers must hold mu.
func (m *Monitor) armRemoval() func() {
	m.removalGen++
	gen := m.removalGen
	return func() { m.onRemovalTimeout(gen) }
}

// onRemovalTimeout runs on the timer goroutine.
func (m *Monitor) onRemovalTimeout(gen uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.removalGen {
		return
	}
	m.removeLocked()
}

// removeLocked fires the removal callback and resets tracking. Callers
// must hold mu.
func (m *Monitor) removeLocked() {
	if !m.state.Present {
		return
	}
	if m.OnCardRemoved != nil {
		m.OnCardRemoved()
	}
	m.removalGen++
	m.state.TransitionToIdle()
}

// processCard updates the state machine for a card seen this cycle.
func (m *Monitor) processCard(card *rc522.DetectedCard) {
	if card == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	changed := m.updateCardState(card)

	if m.state.DetectionState != StateReading {
		m.state.TransitionToDetected(m.config.CardRemovalTimeout, m.armRemoval())
	}

	if changed || m.state.HandledUID != card.UID.String() {
		m.handleCard(card)
	}
}

// updateCardState reconciles the seen card against the tracked one and
// fires the detection callbacks. Returns whether the card is new.
// Callers must hold mu.
func (m *Monitor) updateCardState(card *rc522.DetectedCard) bool {
	uid := card.UID.String()

	if !m.state.Present {
		if m.OnCardDetected != nil {
			_ = m.OnCardDetected(card)
		}
		m.state.Present = true
		m.state.LastUID = uid
		m.state.HandledUID = ""
		return true
	}

	if m.state.LastUID != uid {
		if m.OnCardChanged != nil {
			_ = m.OnCardChanged(card)
		}
		m.state.LastUID = uid
		m.state.HandledUID = ""
		return true
	}

	return false
}

// handleCard marks the card handled so callbacks fire once per visit,
// bracketed by the reading state so the removal timer stays quiet.
// Callers must hold mu.
func (m *Monitor) handleCard(card *rc522.DetectedCard) {
	m.removalGen++
	m.state.TransitionToReading()
	m.state.HandledUID = card.UID.String()
	m.state.TransitionToPostReadGrace(m.config.CardRemovalTimeout, m.armRemoval())
}
