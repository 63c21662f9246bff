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
	"context"
	"sync"
	"testing"
	"time"

	rc522 "github.com/boardlab/go-rc522"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestRig builds a monitor over a simulated reader with fast
// timings.
func newTestRig(t *testing.T) (*rc522.SimTransport, *Monitor) {
	t.Helper()

	sim := rc522.NewSimTransport()
	device, err := rc522.New(sim,
		rc522.WithTiming(&rc522.Timing{
			SoftResetSettle:   0,
			PollIterations:    16,
			CRCPollIterations: 16,
		}),
		rc522.WithSleepFunc(func(time.Duration) {}),
	)
	require.NoError(t, err)

	monitor := NewMonitor(device, &Config{
		PollInterval:       2 * time.Millisecond,
		CardRemovalTimeout: 40 * time.Millisecond,
	})
	return sim, monitor
}

// waitSignal fails the test if the channel stays silent.
func waitSignal(t *testing.T, ch <-chan string, want string) {
	t.Helper()
	select {
	case got := <-ch:
		assert.Equal(t, want, got)
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %q", want)
	}
}

func TestMonitorDetectsAndRemoves(t *testing.T) {
	t.Parallel()

	sim, monitor := newTestRig(t)

	events := make(chan string, 8)
	monitor.OnCardDetected = func(card *rc522.DetectedCard) error {
		events <- "detected:" + card.UID.String()
		return nil
	}
	monitor.OnCardRemoved = func() {
		events <- "removed"
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		_ = monitor.Start(ctx)
		close(done)
	}()

	sim.PresentCard(rc522.NewVirtualCard(rc522.UID{0xDE, 0xAD, 0xBE, 0xEF}))
	waitSignal(t, events, "detected:DEADBEEF")

	sim.RemoveCard()
	waitSignal(t, events, "removed")

	cancel()
	<-done
}

func TestMonitorReportsCardChange(t *testing.T) {
	t.Parallel()

	sim, monitor := newTestRig(t)

	events := make(chan string, 8)
	monitor.OnCardDetected = func(card *rc522.DetectedCard) error {
		events <- "detected:" + card.UID.String()
		return nil
	}
	monitor.OnCardChanged = func(card *rc522.DetectedCard) error {
		events <- "changed:" + card.UID.String()
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		_ = monitor.Start(ctx)
		close(done)
	}()

	sim.PresentCard(rc522.NewVirtualCard(rc522.UID{0x01, 0x02, 0x03, 0x04}))
	waitSignal(t, events, "detected:01020304")

	// Swap cards without the field ever reading as empty.
	sim.PresentCard(rc522.NewVirtualCard(rc522.UID{0xAA, 0xBB, 0xCC, 0xDD}))
	waitSignal(t, events, "changed:AABBCCDD")

	cancel()
	<-done
}

func TestMonitorCallbackFiresOncePerVisit(t *testing.T) {
	t.Parallel()

	sim, monitor := newTestRig(t)

	detections := make(chan string, 16)
	monitor.OnCardDetected = func(card *rc522.DetectedCard) error {
		detections <- card.UID.String()
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		_ = monitor.Start(ctx)
		close(done)
	}()

	sim.PresentCard(rc522.NewVirtualCard(rc522.UID{0x11, 0x22, 0x33, 0x44}))
	waitSignal(t, detections, "11223344")

	// The same card staying in the field must not re-fire.
	time.Sleep(30 * time.Millisecond)
	select {
	case uid := <-detections:
		t.Fatalf("unexpected second detection for %s", uid)
	default:
	}

	cancel()
	<-done
}

func TestMonitorIgnoresStaleRemovalTimer(t *testing.T) {
	t.Parallel()

	_, monitor := newTestRig(t)

	removed := make(chan struct{}, 4)
	monitor.OnCardRemoved = func() {
		removed <- struct{}{}
	}

	card := &rc522.DetectedCard{UID: rc522.UID{0x11, 0x22, 0x33, 0x44}}
	monitor.processCard(card)

	// Detach the armed timer so only the explicit timeout calls below
	// can drive removal.
	monitor.mu.Lock()
	safeTimerStop(monitor.state.RemovalTimer)
	stale := monitor.removalGen
	monitor.mu.Unlock()

	// Seeing the card again supersedes the pending timeout.
	monitor.processCard(card)
	monitor.mu.Lock()
	safeTimerStop(monitor.state.RemovalTimer)
	live := monitor.removalGen
	monitor.mu.Unlock()

	// A timeout that raced the re-arm must not clear the card.
	monitor.onRemovalTimeout(stale)
	assert.True(t, monitor.GetState().Present)
	select {
	case <-removed:
		t.Fatal("stale removal timer fired the callback")
	default:
	}

	monitor.onRemovalTimeout(live)
	assert.False(t, monitor.GetState().Present)
	select {
	case <-removed:
	default:
		t.Fatal("live removal timer never fired the callback")
	}
}

func TestMonitorTimerRemovalRace(t *testing.T) {
	t.Parallel()

	// Removal timeouts land on a timer goroutine while polling mutates
	// the same state; run both at once so the race detector can watch.
	_, monitor := newTestRig(t)
	monitor.OnCardRemoved = func() {}

	card := &rc522.DetectedCard{UID: rc522.UID{0x11, 0x22, 0x33, 0x44}}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			monitor.processCard(card)
		}
	}()
	go func() {
		defer wg.Done()
		for gen := uint64(1); gen <= 400; gen++ {
			monitor.onRemovalTimeout(gen)
		}
	}()
	wg.Wait()

	if state := monitor.GetState(); state.Present {
		assert.Equal(t, "11223344", state.LastUID)
	}
}

func TestMonitorStartStopsOnContext(t *testing.T) {
	t.Parallel()

	_, monitor := newTestRig(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := monitor.Start(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	config := DefaultConfig()
	assert.Positive(t, config.PollInterval)
	assert.Positive(t, config.CardRemovalTimeout)
	assert.False(t, config.WakeHalted)
}

func TestCardStateTransitions(t *testing.T) {
	t.Parallel()

	state := &CardState{}

	fired := make(chan struct{}, 1)
	state.TransitionToDetected(10*time.Millisecond, func() {
		fired <- struct{}{}
	})
	assert.Equal(t, StateCardDetected, state.DetectionState)

	// Reading suspends the removal timer.
	state.TransitionToReading()
	assert.Equal(t, StateReading, state.DetectionState)
	assert.Nil(t, state.RemovalTimer)
	select {
	case <-fired:
		t.Fatal("removal timer fired during read")
	case <-time.After(30 * time.Millisecond):
	}

	state.TransitionToPostReadGrace(10*time.Millisecond, func() {
		fired <- struct{}{}
	})
	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("post-read grace timer never fired")
	}

	state.TransitionToIdle()
	assert.Equal(t, StateIdle, state.DetectionState)
	assert.False(t, state.Present)
	assert.Empty(t, state.LastUID)
}
