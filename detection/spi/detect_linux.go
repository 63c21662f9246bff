//go:build linux

package spi

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/boardlab/go-rc522/detection"

	"golang.org/x/sys/unix"
)

// detectLinux lists /dev/spidev* nodes as reader candidates. The path
// reported is the periph.io port name ("SPI0.0") the spi transport
// opens.
func detectLinux(_ context.Context, opts *detection.Options) ([]detection.DeviceInfo, error) {
	matches, err := filepath.Glob("/dev/spidev*")
	if err != nil {
		return nil, fmt.Errorf("spidev scan failed: %w", err)
	}
	if len(matches) == 0 {
		return nil, detection.ErrNoDevicesFound
	}

	devices := make([]detection.DeviceInfo, 0, len(matches))
	for _, node := range matches {
		var bus, cs int
		if _, err := fmt.Sscanf(filepath.Base(node), "spidev%d.%d", &bus, &cs); err != nil {
			continue
		}

		portName := fmt.Sprintf("SPI%d.%d", bus, cs)
		if detection.IsPathIgnored(portName, opts.IgnorePaths) ||
			detection.IsPathIgnored(node, opts.IgnorePaths) {
			continue
		}

		device := detection.DeviceInfo{
			Transport: "spi",
			Path:      portName,
			Name:      fmt.Sprintf("SPI bus %d chip-select %d", bus, cs),
			Metadata: map[string]string{
				"device_node": node,
			},
		}

		// RC522 breakout wiring guides put the reader on the first
		// bus's chip-select 0.
		if bus == 0 && cs == 0 {
			device.Confidence = detection.Medium
		} else {
			device.Confidence = detection.Low
		}

		if opts.Mode != detection.Passive && !nodeAccessible(node) {
			// A node we cannot open is not a usable candidate.
			continue
		}

		devices = append(devices, device)
	}

	if len(devices) == 0 {
		return nil, detection.ErrNoDevicesFound
	}
	return devices, nil
}

// nodeAccessible checks the device node opens read-write without
// touching the bus.
func nodeAccessible(node string) bool {
	fd, err := unix.Open(node, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return false
	}
	_ = unix.Close(fd)
	return true
}
