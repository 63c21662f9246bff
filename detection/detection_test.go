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
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsPathIgnored(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		devicePath  string
		ignorePaths []string
		want        bool
	}{
		{
			name:        "empty ignore list",
			devicePath:  "/dev/ttyUSB0",
			ignorePaths: nil,
			want:        false,
		},
		{
			name:        "exact match",
			devicePath:  "/dev/ttyUSB0",
			ignorePaths: []string{"/dev/ttyUSB0"},
			want:        true,
		},
		{
			name:        "no match",
			devicePath:  "/dev/ttyUSB1",
			ignorePaths: []string{"/dev/ttyUSB0"},
			want:        false,
		},
		{
			name:        "case-insensitive windows port",
			devicePath:  "COM3",
			ignorePaths: []string{"com3"},
			want:        true,
		},
		{
			name:        "unclean path",
			devicePath:  "/dev/../dev/spidev0.0",
			ignorePaths: []string{"/dev/spidev0.0"},
			want:        true,
		},
		{
			name:        "empty entries skipped",
			devicePath:  "/dev/i2c-1:0x28",
			ignorePaths: []string{"", "/dev/i2c-1:0x28"},
			want:        true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IsPathIgnored(tt.devicePath, tt.ignorePaths))
		})
	}
}

func TestIsBlocked(t *testing.T) {
	t.Parallel()

	blocklist := []string{"1234:5678", " abcd:ef01 "}

	assert.True(t, IsBlocked("1234:5678", blocklist))
	assert.True(t, IsBlocked("ABCD:EF01", blocklist))
	assert.False(t, IsBlocked("1111:2222", blocklist))
	assert.False(t, IsBlocked("", blocklist))
}

func TestKnownSerialBridge(t *testing.T) {
	t.Parallel()

	name, ok := KnownSerialBridge("1a86:7523")
	require.True(t, ok)
	assert.Contains(t, name, "CH340")

	_, ok = KnownSerialBridge("0000:0000")
	assert.False(t, ok)
}

// fakeDetector answers with fixed devices for registry tests.
type fakeDetector struct {
	devices []DeviceInfo
	err     error
}

func (*fakeDetector) Transport() string { return "fake" }

func (f *fakeDetector) Detect(_ context.Context, _ *Options) ([]DeviceInfo, error) {
	return f.devices, f.err
}

func TestDetectAllMergesAndSorts(t *testing.T) {
	RegisterDetector(&fakeDetector{devices: []DeviceInfo{
		{Transport: "fake", Path: "low", Confidence: Low},
		{Transport: "fake", Path: "high", Confidence: High},
	}})
	RegisterDetector(&fakeDetector{err: ErrNoDevicesFound})
	RegisterDetector(&fakeDetector{err: ErrUnsupportedPlatform})

	opts := DefaultOptions()
	devices, err := DetectAll(&opts)
	require.NoError(t, err)
	require.Len(t, devices, 2)
	assert.Equal(t, "high", devices[0].Path)
	assert.Equal(t, "low", devices[1].Path)
}

func TestDefaultOptions(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	assert.Equal(t, Passive, opts.Mode)
	assert.Positive(t, opts.Timeout)
}
