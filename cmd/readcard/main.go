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

// readcard waits for ISO 14443-A cards on an MFRC522 reader and prints
// their identity; it can also dump an authenticated data block and
// decode NDEF text.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	rc522 "github.com/boardlab/go-rc522"
	"github.com/boardlab/go-rc522/detection"
	// Import all detectors to register them
	_ "github.com/boardlab/go-rc522/detection/i2c"
	_ "github.com/boardlab/go-rc522/detection/spi"
	_ "github.com/boardlab/go-rc522/detection/uart"
	"github.com/boardlab/go-rc522/polling"
	"github.com/boardlab/go-rc522/transport/i2c"
	"github.com/boardlab/go-rc522/transport/spi"
	"github.com/boardlab/go-rc522/transport/uart"
)

type config struct {
	devicePath   *string
	resetPin     *string
	timeout      *time.Duration
	pollInterval *time.Duration
	readBlock    *int
	ndef         *bool
	debug        *bool
}

func parseFlags() *config {
	cfg := &config{
		devicePath: flag.String("device", "",
			"Device path (e.g., SPI0.0, /dev/ttyUSB0 or /dev/i2c-1). Leave empty for auto-detection."),
		resetPin: flag.String("reset-pin", "",
			"GPIO pin wired to NRSTPD for SPI transports (e.g., GPIO22)"),
		timeout: flag.Duration("timeout", 30*time.Second, "How long to wait for cards"),
		pollInterval: flag.Duration("poll-interval", 100*time.Millisecond,
			"Polling interval for card detection"),
		readBlock: flag.Int("block", -1,
			"Data block to read after detection (requires factory-default key A)"),
		ndef:  flag.Bool("ndef", false, "Decode NDEF text from the read block"),
		debug: flag.Bool("debug", false, "Enable debug output"),
	}
	flag.Parse()

	if *cfg.debug {
		rc522.SetDebugEnabled(true)
	}

	return cfg
}

// newTransport creates a transport from a device path.
func newTransport(cfg *config) rc522.TransportFactory {
	return func(path string) (rc522.Transport, error) {
		if path == "" {
			return nil, errors.New("empty device path")
		}

		pathLower := strings.ToLower(path)

		if strings.Contains(pathLower, "i2c") {
			transport, err := i2c.New(path)
			if err != nil {
				return nil, fmt.Errorf("failed to create I2C transport: %w", err)
			}
			return transport, nil
		}

		if strings.Contains(pathLower, "spi") {
			var opts []spi.Option
			if *cfg.resetPin != "" {
				opts = append(opts, spi.WithResetPin(*cfg.resetPin))
			}
			transport, err := spi.New(path, opts...)
			if err != nil {
				return nil, fmt.Errorf("failed to create SPI transport: %w", err)
			}
			return transport, nil
		}

		transport, err := uart.New(path)
		if err != nil {
			return nil, fmt.Errorf("failed to create UART transport: %w", err)
		}
		return transport, nil
	}
}

// newTransportFromDevice creates a transport from a detected device.
func newTransportFromDevice(device detection.DeviceInfo) (rc522.Transport, error) {
	switch strings.ToLower(device.Transport) {
	case "spi":
		transport, err := spi.New(device.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to create SPI transport: %w", err)
		}
		return transport, nil
	case "uart":
		transport, err := uart.New(device.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to create UART transport: %w", err)
		}
		return transport, nil
	case "i2c":
		transport, err := i2c.New(device.Metadata["bus"])
		if err != nil {
			return nil, fmt.Errorf("failed to create I2C transport: %w", err)
		}
		return transport, nil
	default:
		return nil, fmt.Errorf("unsupported transport type: %s", device.Transport)
	}
}

func buildConnectOptions(cfg *config) []rc522.ConnectOption {
	var connectOpts []rc522.ConnectOption

	if *cfg.devicePath == "" {
		connectOpts = append(connectOpts,
			rc522.WithAutoDetection(),
			rc522.WithTransportFromDeviceFactory(newTransportFromDevice))
		fmt.Println("Auto-detecting MFRC522 readers...")
	} else {
		connectOpts = append(connectOpts, rc522.WithTransportFactory(newTransport(cfg)))
		fmt.Printf("Opening device: %s\n", *cfg.devicePath)
	}

	connectOpts = append(connectOpts, rc522.WithConnectTimeout(*cfg.timeout))
	return connectOpts
}

func connectToDevice(cfg *config) (*rc522.Device, error) {
	device, err := rc522.ConnectDevice(*cfg.devicePath, buildConnectOptions(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MFRC522: %w", err)
	}

	if version, versionErr := device.Version(); versionErr == nil {
		fmt.Printf("MFRC522 version: 0x%02X\n", version)
	}

	return device, nil
}

// handleCard prints the card identity and optionally dumps a block.
func handleCard(device *rc522.Device, cfg *config, card *rc522.DetectedCard) error {
	fmt.Printf("Card detected: UID %s, ATQA %02X %02X\n", card.UID, card.ATQA[0], card.ATQA[1])

	if *cfg.readBlock < 0 {
		return nil
	}

	block := byte(*cfg.readBlock)
	if err := device.Authenticate(rc522.KeyA, block, rc522.DefaultKey, card.UID); err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}
	defer func() { _ = device.StopCrypto() }()

	data, err := device.ReadBlock(block)
	if err != nil {
		return fmt.Errorf("block read failed: %w", err)
	}
	fmt.Printf("Block %d: % 02X\n", block, data)

	if *cfg.ndef {
		text, err := rc522.DecodeNDEFText(data)
		if err != nil {
			return fmt.Errorf("ndef decode failed: %w", err)
		}
		fmt.Printf("NDEF: %s\n", text)
	}
	return nil
}

func run() error {
	cfg := parseFlags()

	device, err := connectToDevice(cfg)
	if err != nil {
		return err
	}

	monitor := polling.NewMonitor(device, &polling.Config{
		PollInterval:       *cfg.pollInterval,
		CardRemovalTimeout: 500 * time.Millisecond,
	})
	defer func() { _ = monitor.Close() }()

	monitor.OnCardDetected = func(card *rc522.DetectedCard) error {
		if err := handleCard(device, cfg, card); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
		}
		return nil
	}
	monitor.OnCardRemoved = func() {
		fmt.Println("Card removed - ready for next card...")
	}

	fmt.Printf("Waiting for cards (timeout: %s, poll interval: %s)...\n", *cfg.timeout, *cfg.pollInterval)

	ctx, cancel := context.WithTimeout(context.Background(), *cfg.timeout)
	defer cancel()
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := monitor.Start(ctx); err != nil &&
		!errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
