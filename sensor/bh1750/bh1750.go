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

// Package bh1750 drives the BH1750 ambient light sensor in continuous
// high-resolution mode over I2C.
package bh1750

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/i2c"
)

const (
	// DefaultAddress is the sensor address with the ADDR pin pulled low.
	DefaultAddress = 0x23
	// AltAddress is the sensor address with the ADDR pin pulled high.
	AltAddress = 0x5C

	cmdPowerOn     = 0x01
	cmdReset       = 0x07
	cmdContHighRes = 0x10 // 1 lx resolution, 120 ms typical

	powerOnSettle = 10 * time.Millisecond
	resetSettle   = 10 * time.Millisecond
	// First measurement in high-resolution mode takes up to 180 ms.
	firstMeasurement = 180 * time.Millisecond
)

// Dev is a handle to a configured BH1750.
type Dev struct {
	dev   *i2c.Dev
	sleep func(time.Duration)
	addr  uint16
}

// Option configures the driver.
type Option func(*Dev)

// WithAddress selects the alternate sensor address.
func WithAddress(addr uint16) Option {
	return func(d *Dev) {
		d.addr = addr
	}
}

// WithSleepFunc substitutes the settle-time sleeps, for tests.
func WithSleepFunc(sleep func(time.Duration)) Option {
	return func(d *Dev) {
		d.sleep = sleep
	}
}

// New powers the sensor on, resets its data register, and starts
// continuous high-resolution measurement.
func New(bus i2c.Bus, opts ...Option) (*Dev, error) {
	d := &Dev{
		addr:  DefaultAddress,
		sleep: time.Sleep,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.dev = &i2c.Dev{Addr: d.addr, Bus: bus}

	if err := d.command(cmdPowerOn); err != nil {
		return nil, fmt.Errorf("bh1750 power-on failed: %w", err)
	}
	d.sleep(powerOnSettle)

	if err := d.command(cmdReset); err != nil {
		return nil, fmt.Errorf("bh1750 reset failed: %w", err)
	}
	d.sleep(resetSettle)

	if err := d.command(cmdContHighRes); err != nil {
		return nil, fmt.Errorf("bh1750 mode select failed: %w", err)
	}
	d.sleep(firstMeasurement)

	return d, nil
}

// command sends a single opcode.
func (d *Dev) command(op byte) error {
	if err := d.dev.Tx([]byte{op}, nil); err != nil {
		return fmt.Errorf("command 0x%02X: %w", op, err)
	}
	return nil
}

// Sense reads the current illuminance in lux.
func (d *Dev) Sense() (float64, error) {
	buf := make([]byte, 2)
	if err := d.dev.Tx(nil, buf); err != nil {
		return 0, fmt.Errorf("bh1750 read failed: %w", err)
	}

	raw := uint16(buf[0])<<8 | uint16(buf[1])
	// Datasheet conversion for the default measurement accuracy.
	return float64(raw) / 1.2, nil
}

// Halt powers the sensor down.
func (d *Dev) Halt() error {
	if err := d.dev.Tx([]byte{0x00}, nil); err != nil {
		return fmt.Errorf("bh1750 power-down failed: %w", err)
	}
	return nil
}
