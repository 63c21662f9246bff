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

// envread samples the BH1750 light sensor and BMP280 pressure sensor
// on a shared I2C bus and prints a reading per interval.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"

	"github.com/boardlab/go-rc522/sensor/bh1750"
	"github.com/boardlab/go-rc522/sensor/bmp280"
)

func run() error {
	busName := flag.String("bus", "", "I2C bus name (e.g., /dev/i2c-1). Leave empty for the first available bus.")
	interval := flag.Duration("interval", 2*time.Second, "Sampling interval")
	flag.Parse()

	if _, err := host.Init(); err != nil {
		return fmt.Errorf("host init failed: %w", err)
	}

	bus, err := i2creg.Open(*busName)
	if err != nil {
		return fmt.Errorf("failed to open I2C bus: %w", err)
	}
	defer func() { _ = bus.Close() }()

	light, err := bh1750.New(bus)
	if err != nil {
		return fmt.Errorf("failed to initialize BH1750: %w", err)
	}
	defer func() { _ = light.Halt() }()

	baro, err := bmp280.New(bus)
	if err != nil {
		return fmt.Errorf("failed to initialize BMP280: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	fmt.Printf("Sampling every %s (Ctrl-C to stop)...\n", *interval)
	for {
		lux, err := light.Sense()
		if err != nil {
			fmt.Fprintf(os.Stderr, "light read failed: %v\n", err)
		}

		var env physic.Env
		if err := baro.SenseEnv(&env); err != nil {
			fmt.Fprintf(os.Stderr, "pressure read failed: %v\n", err)
		}

		fmt.Printf("%.1f lux  %.2f degC  %.1f hPa\n",
			lux, env.Temperature.Celsius(), float64(env.Pressure)/float64(100*physic.Pascal))

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
