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
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/boardlab/go-rc522/detection"
)

// DeviceConfig contains configuration options for the Device
type DeviceConfig struct {
	// RetryConfig configures retry behavior for transport operations
	RetryConfig *RetryConfig
	// Timing holds the device-characterization parameters
	Timing *Timing
	// Timeout is the default timeout for transport accesses
	Timeout time.Duration
}

// DefaultDeviceConfig returns default device configuration
func DefaultDeviceConfig() *DeviceConfig {
	return &DeviceConfig{
		RetryConfig: DefaultRetryConfig(),
		Timing:      DefaultTiming(),
		Timeout:     1 * time.Second,
	}
}

// Device represents an MFRC522 reader behind a register-bus transport.
//
// Thread Safety: Device is NOT thread-safe. The reader's register file is
// a single shared resource and every method is a sequence of blocking
// register round-trips; callers needing concurrency must serialize access
// themselves.
type Device struct {
	transport Transport
	config    *DeviceConfig
	sleep     SleepFunc
}

// New creates a new MFRC522 device with the given transport
func New(transport Transport, opts ...Option) (*Device, error) {
	device := &Device{
		transport: transport,
		config:    DefaultDeviceConfig(),
		sleep:     time.Sleep,
	}

	for _, opt := range opts {
		if err := opt(device); err != nil {
			return nil, err
		}
	}

	return device, nil
}

// Transport returns the underlying transport
func (d *Device) Transport() Transport {
	return d.transport
}

// hasCapability checks if the transport has the specified capability
func (d *Device) hasCapability(capability TransportCapability) bool {
	if checker, ok := d.transport.(TransportCapabilityChecker); ok {
		return checker.HasCapability(capability)
	}
	return false
}

// Init initializes the reader: hardware reset, soft reset, timer and
// modulation setup, antenna on.
func (d *Device) Init() error {
	return d.InitContext(context.Background())
}

// InitContext initializes the reader with context support.
//
// An absent or unresponsive device is not detected here; Init configures
// registers blind and the condition only becomes observable through a
// later Version call. This favors availability for hot-plugged readers.
func (d *Device) InitContext(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("init cancelled: %w", err)
	}

	// Hardware reset first where the transport has the line wired.
	if err := d.transport.Reset(); err != nil {
		return fmt.Errorf("hardware reset failed: %w", err)
	}

	// Soft reset must precede every mode-configuration write.
	if err := d.transport.WriteRegister(regCommand, cmdSoftReset); err != nil {
		return fmt.Errorf("soft reset failed: %w", err)
	}
	d.sleep(d.config.Timing.SoftResetSettle)

	// Timer: TPrescaler * TReload / 6.78MHz = ~24ms response window
	setup := []struct{ reg, value byte }{
		{regTMode, tModeValue},
		{regTPrescaler, tPrescalerValue},
		{regTReloadL, tReloadLow},
		{regTReloadH, tReloadHigh},
		{regTxASK, txASKForce100},
		{regMode, modeValue},
	}
	for _, w := range setup {
		if err := d.transport.WriteRegister(w.reg, w.value); err != nil {
			return fmt.Errorf("mode configuration failed: %w", err)
		}
	}

	// Enable the antenna drivers
	if err := SetBits(d.transport, regTxControl, txControlAntennaOn); err != nil {
		return fmt.Errorf("antenna enable failed: %w", err)
	}

	if version, err := d.Version(); err != nil {
		debugf("version sanity read failed: %v", err)
	} else {
		debugf("reader version 0x%02X", version)
	}

	return nil
}

// Version reads the version register. A value of 0x00 or 0xFF is
// implausible and reported as ErrDeviceNotFound: the bus answered but no
// reader is driving it.
func (d *Device) Version() (byte, error) {
	version, err := d.transport.ReadRegister(regVersion)
	if err != nil {
		return 0, fmt.Errorf("version read failed: %w", err)
	}
	if version == 0x00 || version == 0xFF {
		return version, fmt.Errorf("implausible version 0x%02X: %w", version, ErrDeviceNotFound)
	}
	return version, nil
}

// SetTimeout sets the default timeout for transport accesses
func (d *Device) SetTimeout(timeout time.Duration) error {
	d.config.Timeout = timeout
	if err := d.transport.SetTimeout(timeout); err != nil {
		return fmt.Errorf("failed to set timeout on transport: %w", err)
	}
	return nil
}

// SetRetryConfig updates the retry configuration
func (d *Device) SetRetryConfig(config *RetryConfig) {
	d.config.RetryConfig = config
	if tr, ok := d.transport.(*TransportWithRetry); ok {
		tr.SetRetryConfig(config)
	}
}

// Close closes the device connection
func (d *Device) Close() error {
	if d.transport != nil {
		if err := d.transport.Close(); err != nil {
			return fmt.Errorf("failed to close transport: %w", err)
		}
	}
	return nil
}

// TransportFactory is a function type for creating transports
type TransportFactory func(path string) (Transport, error)

// TransportFromDeviceFactory is a function type for creating transports from detected devices
type TransportFromDeviceFactory func(device detection.DeviceInfo) (Transport, error)

// ConnectOption represents a functional option for ConnectDevice
type ConnectOption func(*connectConfig) error

// connectConfig holds configuration options for device connection
type connectConfig struct {
	transportFactory       TransportFactory
	transportDeviceFactory TransportFromDeviceFactory
	deviceOptions          []Option
	timeout                time.Duration
	autoDetect             bool
}

// WithAutoDetection enables automatic device detection instead of using a specific path
func WithAutoDetection() ConnectOption {
	return func(c *connectConfig) error {
		c.autoDetect = true
		return nil
	}
}

// WithDeviceOptions adds device-level options
func WithDeviceOptions(opts ...Option) ConnectOption {
	return func(c *connectConfig) error {
		c.deviceOptions = append(c.deviceOptions, opts...)
		return nil
	}
}

// WithConnectTimeout sets the device connection timeout
func WithConnectTimeout(timeout time.Duration) ConnectOption {
	return func(c *connectConfig) error {
		c.timeout = timeout
		return nil
	}
}

// WithTransportFactory sets the transport factory function
func WithTransportFactory(factory TransportFactory) ConnectOption {
	return func(c *connectConfig) error {
		c.transportFactory = factory
		return nil
	}
}

// WithTransportFromDeviceFactory sets the transport from device factory function
func WithTransportFromDeviceFactory(factory TransportFromDeviceFactory) ConnectOption {
	return func(c *connectConfig) error {
		c.transportDeviceFactory = factory
		return nil
	}
}

func applyConnectOptions(opts []ConnectOption) (*connectConfig, error) {
	config := &connectConfig{
		timeout: 30 * time.Second,
	}

	for _, opt := range opts {
		if err := opt(config); err != nil {
			return nil, fmt.Errorf("failed to apply connect option: %w", err)
		}
	}

	return config, nil
}

func createTransport(path string, config *connectConfig) (Transport, error) {
	if config.autoDetect || path == "" {
		return createAutoDetectedTransport(config.transportDeviceFactory)
	}
	return createManualTransport(path, config.transportFactory)
}

func setupDevice(transport Transport, config *connectConfig) (*Device, error) {
	device, err := New(transport, config.deviceOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to create device: %w", err)
	}

	if config.timeout > 0 {
		if err := device.SetTimeout(config.timeout); err != nil {
			return nil, fmt.Errorf("failed to set timeout: %w", err)
		}
	}

	if err := device.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize device: %w", err)
	}

	return device, nil
}

// ConnectDevice creates and initializes an MFRC522 device from a path or
// auto-detection. This is a high-level convenience that handles transport
// creation and device initialization.
//
// Example usage:
//
//	// Connect to a specific SPI port
//	device, err := rc522.ConnectDevice("SPI0.0",
//	    rc522.WithTransportFactory(newTransport))
//
//	// Auto-detect a reader
//	device, err := rc522.ConnectDevice("",
//	    rc522.WithAutoDetection(),
//	    rc522.WithTransportFromDeviceFactory(newTransportFromDevice))
func ConnectDevice(path string, opts ...ConnectOption) (*Device, error) {
	config, err := applyConnectOptions(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to apply connect options: %w", err)
	}

	transport, err := createTransport(path, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create transport: %w", err)
	}

	device, err := setupDevice(transport, config)
	if err != nil {
		_ = transport.Close()
		return nil, err
	}

	return device, nil
}

// createManualTransport handles creation of transport for a specific path
func createManualTransport(path string, factory TransportFactory) (Transport, error) {
	if factory == nil {
		return nil, errors.New("transport factory not provided")
	}

	transport, err := factory(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create transport for path %s: %w", path, err)
	}

	return transport, nil
}

// createAutoDetectedTransport handles auto-detection of devices
func createAutoDetectedTransport(factory TransportFromDeviceFactory) (Transport, error) {
	opts := detection.DefaultOptions()
	opts.Mode = detection.Safe

	devices, err := detection.DetectAll(&opts)
	if err != nil {
		return nil, fmt.Errorf("failed to detect devices: %w", err)
	}

	if len(devices) == 0 {
		return nil, errors.New("no MFRC522 devices found")
	}

	// Use the first detected device
	device := devices[0]
	if factory == nil {
		return nil, errors.New("transport device factory not provided")
	}
	return factory(device)
}
