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
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransportErrorFormatting(t *testing.T) {
	t.Parallel()

	withPort := NewTransportError("ReadRegister", "/dev/ttyUSB0", ErrTransportRead, ErrorTypeTransient)
	assert.Equal(t, "rc522: ReadRegister /dev/ttyUSB0: transport read failed", withPort.Error())

	withoutPort := NewTransportError("WriteRegister", "", ErrTransportWrite, ErrorTypeTransient)
	assert.Equal(t, "rc522: WriteRegister: transport write failed", withoutPort.Error())
}

func TestTransportErrorUnwrap(t *testing.T) {
	t.Parallel()

	inner := errors.New("bus collapsed")
	err := NewTransportError("ReadRegister", "SPI0.0", inner, ErrorTypeTransient)

	assert.ErrorIs(t, err, inner)

	var te *TransportError
	require.ErrorAs(t, fmt.Errorf("wrapped: %w", err), &te)
	assert.Equal(t, "ReadRegister", te.Op)
	assert.Equal(t, "SPI0.0", te.Port)
}

func TestTransportErrorConstructors(t *testing.T) {
	t.Parallel()

	timeout := NewTimeoutError("ReadRegister", "/dev/i2c-1")
	assert.Equal(t, ErrorTypeTimeout, timeout.Type)
	assert.True(t, timeout.Retryable)
	assert.ErrorIs(t, timeout, ErrTransportTimeout)

	read := NewReadError("ReadRegister", "SPI0.0", errors.New("short read"))
	assert.Equal(t, ErrorTypeTransient, read.Type)
	assert.True(t, read.Retryable)
	assert.ErrorIs(t, read, ErrTransportRead)

	write := NewWriteError("WriteRegister", "SPI0.0", errors.New("nak"))
	assert.Equal(t, ErrorTypeTransient, write.Type)
	assert.True(t, write.Retryable)
	assert.ErrorIs(t, write, ErrTransportWrite)

	tooLarge := NewDataTooLargeError("WriteRegister", "SPI0.0")
	assert.Equal(t, ErrorTypePermanent, tooLarge.Type)
	assert.False(t, tooLarge.Retryable)
	assert.ErrorIs(t, tooLarge, ErrDataTooLarge)
}

func TestIsRetryable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "exchange timeout", err: ErrTimeout, want: true},
		{name: "protocol error", err: ErrProtocol, want: true},
		{name: "transport timeout", err: ErrTransportTimeout, want: true},
		{name: "checksum mismatch", err: ErrChecksumMismatch, want: true},
		{name: "wrapped sentinel", err: fmt.Errorf("op: %w", ErrCommunicationFailed), want: true},
		{name: "device not found", err: ErrDeviceNotFound, want: false},
		{name: "auth failure", err: ErrAuthFailed, want: false},
		{name: "invalid parameter", err: ErrInvalidParameter, want: false},
		{name: "arbitrary error", err: errors.New("boom"), want: false},
		{
			name: "transport error flag wins",
			err:  NewDataTooLargeError("WriteRegister", ""),
			want: false,
		},
		{
			name: "retryable transport error",
			err:  fmt.Errorf("op: %w", NewTimeoutError("ReadRegister", "")),
			want: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

func TestIsTimeout(t *testing.T) {
	t.Parallel()

	assert.True(t, IsTimeout(ErrTimeout))
	assert.True(t, IsTimeout(ErrTransportTimeout))
	assert.True(t, IsTimeout(fmt.Errorf("exchange: %w", ErrTimeout)))
	assert.False(t, IsTimeout(ErrProtocol))
	assert.False(t, IsTimeout(nil))
}

func TestGetErrorType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{name: "nil", err: nil, want: ErrorTypePermanent},
		{name: "timeout", err: ErrTimeout, want: ErrorTypeTimeout},
		{name: "transport timeout", err: ErrTransportTimeout, want: ErrorTypeTimeout},
		{name: "protocol", err: ErrProtocol, want: ErrorTypeTransient},
		{name: "read failure", err: ErrTransportRead, want: ErrorTypeTransient},
		{name: "device missing", err: ErrDeviceNotFound, want: ErrorTypePermanent},
		{
			name: "transport error type wins",
			err:  NewTransportError("ReadRegister", "", ErrTimeout, ErrorTypePermanent),
			want: ErrorTypePermanent,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, GetErrorType(tt.err))
		})
	}
}
