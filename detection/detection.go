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

// Package detection discovers MFRC522 readers attached to the host.
// Transport-specific detectors register themselves on import:
//
//	import (
//	    _ "github.com/boardlab/go-rc522/detection/spi"
//	    _ "github.com/boardlab/go-rc522/detection/uart"
//	)
//
// DetectAll then runs every registered detector and merges the results.
package detection

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Mode controls how intrusive detection is allowed to be.
type Mode int

const (
	// Passive lists candidate devices without touching them.
	Passive Mode = iota
	// Safe additionally probes candidates with a harmless register read.
	Safe
	// Full probes every plausible device, including unrecognized ones.
	Full
)

// Confidence rates how likely a detected device is an actual MFRC522.
type Confidence int

const (
	// Low means the device merely exists on a plausible bus.
	Low Confidence = iota
	// Medium means the device matches a known reader location or adapter.
	Medium
	// High means a probe confirmed an MFRC522 version register.
	High
)

// Detection errors
var (
	// ErrNoDevicesFound indicates no candidate devices were discovered
	ErrNoDevicesFound = errors.New("no devices found")
	// ErrDetectionTimeout indicates detection was cut short by its deadline
	ErrDetectionTimeout = errors.New("detection timed out")
	// ErrUnsupportedPlatform indicates the transport cannot be enumerated
	// on this operating system
	ErrUnsupportedPlatform = errors.New("detection not supported on this platform")
)

// DeviceInfo describes one detected reader candidate.
type DeviceInfo struct {
	Metadata   map[string]string
	Transport  string // "spi", "uart" or "i2c"
	Path       string // transport-specific open path
	Name       string // human-readable description
	Confidence Confidence
}

// Options configures a detection run.
type Options struct {
	// IgnorePaths lists device paths detection must skip.
	IgnorePaths []string
	// Blocklist lists VID:PID pairs of adapters never to probe.
	Blocklist []string
	// Timeout bounds the whole detection run.
	Timeout time.Duration
	// Mode selects how intrusive detection may be.
	Mode Mode
}

// DefaultOptions returns the options DetectAll uses when given nil.
func DefaultOptions() Options {
	return Options{
		Mode:      Passive,
		Timeout:   2 * time.Second,
		Blocklist: DefaultBlocklist(),
	}
}

// Detector enumerates reader candidates on one transport.
type Detector interface {
	// Transport names the transport this detector covers.
	Transport() string
	// Detect returns the candidates found under the given options.
	Detect(ctx context.Context, opts *Options) ([]DeviceInfo, error)
}

var (
	registryMu sync.RWMutex
	registry   []Detector
)

// RegisterDetector adds a detector to the global registry. Transport
// subpackages call this from their init functions.
func RegisterDetector(d Detector) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = append(registry, d)
}

// Detectors returns the currently registered detectors.
func Detectors() []Detector {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return append([]Detector(nil), registry...)
}

// DetectAll runs every registered detector and merges their results,
// highest confidence first within each transport's ordering. Detectors
// that find nothing are not an error; DetectAll fails only when no
// detector finds anything.
func DetectAll(opts *Options) ([]DeviceInfo, error) {
	if opts == nil {
		defaults := DefaultOptions()
		opts = &defaults
	}

	ctx := context.Background()
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}
	return DetectAllContext(ctx, opts)
}

// DetectAllContext is DetectAll with caller-supplied cancellation.
func DetectAllContext(ctx context.Context, opts *Options) ([]DeviceInfo, error) {
	if opts == nil {
		defaults := DefaultOptions()
		opts = &defaults
	}

	var devices []DeviceInfo
	for _, d := range Detectors() {
		select {
		case <-ctx.Done():
			if len(devices) > 0 {
				return devices, nil
			}
			return nil, ErrDetectionTimeout
		default:
		}

		found, err := d.Detect(ctx, opts)
		if err != nil {
			// A transport with nothing attached, or one this platform
			// cannot enumerate, should not sink the whole run.
			if errors.Is(err, ErrNoDevicesFound) || errors.Is(err, ErrUnsupportedPlatform) {
				continue
			}
			return devices, err
		}
		devices = append(devices, found...)
	}

	if len(devices) == 0 {
		return nil, ErrNoDevicesFound
	}
	sortByConfidence(devices)
	return devices, nil
}

// sortByConfidence orders candidates best first, keeping the detector
// ordering stable within equal confidence.
func sortByConfidence(devices []DeviceInfo) {
	for i := 1; i < len(devices); i++ {
		for j := i; j > 0 && devices[j].Confidence > devices[j-1].Confidence; j-- {
			devices[j], devices[j-1] = devices[j-1], devices[j]
		}
	}
}
