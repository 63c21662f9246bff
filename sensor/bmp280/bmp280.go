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

// Package bmp280 drives the BMP280 barometric pressure and temperature
// sensor over I2C, in normal mode with the datasheet's integer
// compensation.
package bmp280

import (
	"encoding/binary"
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

const (
	// DefaultAddress is the sensor address with SDO pulled low.
	DefaultAddress = 0x76
	// AltAddress is the sensor address with SDO pulled high.
	AltAddress = 0x77

	regConfig      = 0xF5
	regCtrlMeas    = 0xF4
	regPressureMSB = 0xF7
	regCalibStart  = 0x88

	calibLen = 24

	// Standby 500 ms, IIR filter coefficient 16.
	configValue = ((0x04 << 5) | (0x05 << 2)) & 0xFC
	// Temperature x1, pressure x4 oversampling, normal mode.
	ctrlMeasValue = (0x01 << 5) | (0x03 << 2) | 0x03
)

// calibration holds the factory trim read from the sensor's NVM.
type calibration struct {
	t1                             uint16
	t2, t3                         int16
	p1                             uint16
	p2, p3, p4, p5, p6, p7, p8, p9 int16
}

// Dev is a handle to a configured BMP280.
type Dev struct {
	dev   *i2c.Dev
	calib calibration
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

// New reads the factory calibration and puts the sensor into normal
// mode.
func New(bus i2c.Bus, opts ...Option) (*Dev, error) {
	d := &Dev{addr: DefaultAddress}
	for _, opt := range opts {
		opt(d)
	}
	d.dev = &i2c.Dev{Addr: d.addr, Bus: bus}

	if err := d.readCalibration(); err != nil {
		return nil, err
	}

	if err := d.dev.Tx([]byte{regConfig, configValue}, nil); err != nil {
		return nil, fmt.Errorf("bmp280 config write failed: %w", err)
	}
	if err := d.dev.Tx([]byte{regCtrlMeas, ctrlMeasValue}, nil); err != nil {
		return nil, fmt.Errorf("bmp280 mode write failed: %w", err)
	}

	return d, nil
}

// readCalibration loads the little-endian trim block at 0x88.
func (d *Dev) readCalibration() error {
	buf := make([]byte, calibLen)
	if err := d.dev.Tx([]byte{regCalibStart}, buf); err != nil {
		return fmt.Errorf("bmp280 calibration read failed: %w", err)
	}

	u := func(i int) uint16 { return binary.LittleEndian.Uint16(buf[i:]) }
	d.calib = calibration{
		t1: u(0),
		t2: int16(u(2)),
		t3: int16(u(4)),
		p1: u(6),
		p2: int16(u(8)),
		p3: int16(u(10)),
		p4: int16(u(12)),
		p5: int16(u(14)),
		p6: int16(u(16)),
		p7: int16(u(18)),
		p8: int16(u(20)),
		p9: int16(u(22)),
	}
	return nil
}

// SenseEnv reads one compensated sample into e. Humidity stays zero;
// the BMP280 has no humidity element.
func (d *Dev) SenseEnv(e *physic.Env) error {
	rawTemp, rawPress, err := d.readRaw()
	if err != nil {
		return err
	}

	tFine := d.calib.tFine(rawTemp)
	centiC := (tFine*5 + 128) >> 8
	pascal := d.calib.pressure(rawPress, tFine)

	e.Temperature = physic.ZeroCelsius + physic.Temperature(centiC)*physic.Kelvin/100
	e.Pressure = physic.Pressure(pascal) * physic.Pascal
	return nil
}

// readRaw burst-reads the 20-bit pressure and temperature registers.
func (d *Dev) readRaw() (rawTemp, rawPress int32, err error) {
	buf := make([]byte, 6)
	if err := d.dev.Tx([]byte{regPressureMSB}, buf); err != nil {
		return 0, 0, fmt.Errorf("bmp280 measurement read failed: %w", err)
	}

	rawPress = int32(buf[0])<<12 | int32(buf[1])<<4 | int32(buf[2])>>4
	rawTemp = int32(buf[3])<<12 | int32(buf[4])<<4 | int32(buf[5])>>4
	return rawTemp, rawPress, nil
}

// tFine computes the shared fine temperature term of the datasheet's
// integer compensation.
func (c *calibration) tFine(rawTemp int32) int32 {
	var1 := ((rawTemp >> 3) - int32(c.t1)<<1) * int32(c.t2) >> 11
	var2 := (((rawTemp>>4 - int32(c.t1)) * (rawTemp>>4 - int32(c.t1))) >> 12) * int32(c.t3) >> 14
	return var1 + var2
}

// pressure runs the 32-bit compensation and returns Pascal.
func (c *calibration) pressure(rawPress, tFine int32) uint32 {
	var1 := (tFine >> 1) - 64000
	var2 := ((var1 >> 2) * (var1 >> 2) >> 11) * int32(c.p6)
	var2 += (var1 * int32(c.p5)) << 1
	var2 = (var2 >> 2) + int32(c.p4)<<16
	var1 = ((int32(c.p3)*((var1>>2)*(var1>>2)>>13))>>3 + (int32(c.p2)*var1)>>1) >> 18
	var1 = (32768 + var1) * int32(c.p1) >> 15
	if var1 == 0 {
		return 0
	}

	p := uint32(1048576-rawPress-(var2>>12)) * 3125
	if p < 0x80000000 {
		p = (p << 1) / uint32(var1)
	} else {
		p = p / uint32(var1) * 2
	}

	var1 = int32(c.p9) * int32((p>>3)*(p>>3)>>13) >> 12
	var2 = int32(p>>2) * int32(c.p8) >> 13
	return uint32(int32(p) + (var1+var2+int32(c.p7))>>4)
}
