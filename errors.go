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
)

// Exchange outcomes. Every card exchange resolves to success (nil),
// timeout, or protocol error; nothing escalates beyond these.
var (
	// ErrTimeout indicates no interrupt flag was raised within the bounded
	// poll window: the card (if any) did not answer.
	ErrTimeout = errors.New("operation timeout")

	// ErrProtocol indicates the reader flagged a collision, parity, CRC,
	// buffer-overflow, or write fault during the exchange. No response data
	// is interpreted.
	ErrProtocol = errors.New("protocol error")

	// ErrNoCardDetected indicates a card request completed without a valid
	// ATQA. Indistinguishable by design from a corrupted request exchange.
	ErrNoCardDetected = errors.New("no card detected")
)

// Transport and device errors
var (
	ErrTransportRead       = errors.New("transport read failed")
	ErrTransportWrite      = errors.New("transport write failed")
	ErrTransportTimeout    = errors.New("transport timeout")
	ErrCommunicationFailed = errors.New("communication failed")
	ErrChecksumMismatch    = errors.New("checksum mismatch")
	ErrDeviceNotFound      = errors.New("device not found")
	ErrAuthFailed          = errors.New("authentication failed")
	ErrInvalidParameter    = errors.New("invalid parameter")
	ErrDataTooLarge        = errors.New("data too large")
	ErrNotImplemented      = errors.New("not implemented")
)

// ErrorType classifies errors for retry decisions
type ErrorType int

const (
	// ErrorTypePermanent indicates an error that will not resolve by retrying
	ErrorTypePermanent ErrorType = iota
	// ErrorTypeTransient indicates an error that may resolve by retrying
	ErrorTypeTransient
	// ErrorTypeTimeout indicates a timeout that may resolve by retrying
	ErrorTypeTimeout
)

// TransportError wraps a transport-level failure with the operation and
// port it occurred on.
type TransportError struct {
	Err       error
	Op        string
	Port      string
	Type      ErrorType
	Retryable bool
}

// Error implements the error interface
func (e *TransportError) Error() string {
	if e.Port != "" {
		return fmt.Sprintf("rc522: %s %s: %v", e.Op, e.Port, e.Err)
	}
	return fmt.Sprintf("rc522: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error
func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewTransportError creates a new transport error
func NewTransportError(op, port string, err error, errType ErrorType) *TransportError {
	return &TransportError{
		Op:        op,
		Port:      port,
		Err:       err,
		Type:      errType,
		Retryable: errType == ErrorTypeTransient || errType == ErrorTypeTimeout,
	}
}

// NewTimeoutError creates a transport error for a timed-out operation
func NewTimeoutError(op, port string) *TransportError {
	return NewTransportError(op, port, ErrTransportTimeout, ErrorTypeTimeout)
}

// NewReadError creates a transport error for a failed register read
func NewReadError(op, port string, err error) *TransportError {
	return NewTransportError(op, port, fmt.Errorf("%w: %w", ErrTransportRead, err), ErrorTypeTransient)
}

// NewWriteError creates a transport error for a failed register write
func NewWriteError(op, port string, err error) *TransportError {
	return NewTransportError(op, port, fmt.Errorf("%w: %w", ErrTransportWrite, err), ErrorTypeTransient)
}

// NewDataTooLargeError creates a transport error for an oversized payload
func NewDataTooLargeError(op, port string) *TransportError {
	return NewTransportError(op, port, ErrDataTooLarge, ErrorTypePermanent)
}

// retryableSentinels lists sentinel errors that are worth retrying.
var retryableSentinels = []error{
	ErrTransportTimeout,
	ErrTransportRead,
	ErrTransportWrite,
	ErrCommunicationFailed,
	ErrChecksumMismatch,
	ErrTimeout,
	ErrProtocol,
}

// IsRetryable reports whether an operation that failed with err may
// succeed if retried. A TransportError's explicit Retryable flag wins over
// sentinel classification.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var te *TransportError
	if errors.As(err, &te) {
		return te.Retryable
	}

	for _, sentinel := range retryableSentinels {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// IsTimeout reports whether err is a timeout outcome, at either the
// exchange or transport level.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout) || errors.Is(err, ErrTransportTimeout)
}

// GetErrorType classifies an error for backoff decisions
func GetErrorType(err error) ErrorType {
	if err == nil {
		return ErrorTypePermanent
	}

	var te *TransportError
	if errors.As(err, &te) {
		return te.Type
	}

	switch {
	case errors.Is(err, ErrTransportTimeout), errors.Is(err, ErrTimeout):
		return ErrorTypeTimeout
	case errors.Is(err, ErrTransportRead),
		errors.Is(err, ErrTransportWrite),
		errors.Is(err, ErrCommunicationFailed),
		errors.Is(err, ErrChecksumMismatch),
		errors.Is(err, ErrProtocol):
		return ErrorTypeTransient
	default:
		return ErrorTypePermanent
	}
}
