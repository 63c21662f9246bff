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

// Package uart detects MFRC522 readers behind serial ports. Importing
// it registers the detector with the detection registry.
//
// An MFRC522 in serial mode sits behind a USB-serial bridge on desktop
// hosts, so ports on recognized bridge chips rank above bare ports.
package uart

import (
	"context"

	"github.com/boardlab/go-rc522/detection"
)

// serialPort is one enumerated port with whatever USB metadata the
// platform exposes.
type serialPort struct {
	Path         string
	Name         string
	VIDPID       string
	Manufacturer string
	Product      string
	SerialNumber string
}

// detector implements detection.Detector for serial ports
type detector struct{}

// New creates a new UART detector
func New() detection.Detector {
	return &detector{}
}

func init() {
	detection.RegisterDetector(New())
}

// Transport returns the transport type
func (*detector) Transport() string {
	return "uart"
}

// Detect enumerates serial ports and ranks them by how likely they host
// a reader. Safe mode keeps only ports on recognized USB-serial
// bridges; nothing is written to any port.
func (*detector) Detect(ctx context.Context, opts *detection.Options) ([]detection.DeviceInfo, error) {
	ports, err := getSerialPorts(ctx)
	if err != nil {
		return nil, err
	}

	devices := make([]detection.DeviceInfo, 0, len(ports))
	for _, port := range ports {
		if detection.IsPathIgnored(port.Path, opts.IgnorePaths) {
			continue
		}
		if port.VIDPID != "" && detection.IsBlocked(port.VIDPID, opts.Blocklist) {
			continue
		}

		device := detection.DeviceInfo{
			Transport:  "uart",
			Path:       port.Path,
			Name:       port.Name,
			Confidence: detection.Low,
			Metadata:   map[string]string{},
		}
		if port.VIDPID != "" {
			device.Metadata["vid_pid"] = port.VIDPID
		}
		if port.Manufacturer != "" {
			device.Metadata["manufacturer"] = port.Manufacturer
		}
		if port.Product != "" {
			device.Metadata["product"] = port.Product
		}
		if port.SerialNumber != "" {
			device.Metadata["serial_number"] = port.SerialNumber
		}

		if bridge, ok := detection.KnownSerialBridge(port.VIDPID); ok {
			device.Confidence = detection.Medium
			device.Metadata["bridge"] = bridge
		} else if opts.Mode == detection.Safe {
			// Safe mode does not offer up arbitrary ports.
			continue
		}

		devices = append(devices, device)
	}

	if len(devices) == 0 {
		return nil, detection.ErrNoDevicesFound
	}
	return devices, nil
}
