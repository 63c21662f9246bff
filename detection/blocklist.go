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

package detection

import (
	"path/filepath"
	"strings"
)

// knownSerialBridges maps VID:PID pairs of USB-serial adapters commonly
// wired to MFRC522 boards in serial mode. A port behind one of these is
// a better UART candidate than an arbitrary COM port.
var knownSerialBridges = map[string]string{
	"1A86:7523": "WCH CH340",
	"1A86:55D4": "WCH CH9102",
	"10C4:EA60": "Silicon Labs CP210x",
	"0403:6001": "FTDI FT232R",
	"067B:2303": "Prolific PL2303",
}

// KnownSerialBridge reports whether a VID:PID belongs to a recognized
// USB-serial adapter, and its name if so.
func KnownSerialBridge(vidpid string) (name string, ok bool) {
	name, ok = knownSerialBridges[strings.ToUpper(strings.TrimSpace(vidpid))]
	return name, ok
}

// DefaultBlocklist returns VID:PID pairs of devices that must never be
// probed. Probing writes register-frame bytes at the port, which can
// confuse devices that speak their own protocol.
func DefaultBlocklist() []string {
	return []string{
		// Populated as problematic adapters are reported.
	}
}

// IsBlocked reports whether a VID:PID appears in the blocklist.
// Comparison is case-insensitive.
func IsBlocked(vidpid string, blocklist []string) bool {
	vidpid = strings.ToUpper(strings.TrimSpace(vidpid))
	for _, blocked := range blocklist {
		if vidpid == strings.ToUpper(strings.TrimSpace(blocked)) {
			return true
		}
	}
	return false
}

// IsPathIgnored reports whether a device path matches an entry of the
// ignore list, comparing both verbatim and in normalized form.
func IsPathIgnored(devicePath string, ignorePaths []string) bool {
	if devicePath == "" || len(ignorePaths) == 0 {
		return false
	}

	normalized := normalizePath(devicePath)
	for _, ignore := range ignorePaths {
		if ignore == "" {
			continue
		}
		if devicePath == ignore || normalized == normalizePath(ignore) {
			return true
		}
	}
	return false
}

// normalizePath cleans a device path and lowercases it so Windows-style
// paths compare case-insensitively.
func normalizePath(path string) string {
	return strings.ToLower(filepath.Clean(path))
}
