// Package api
// Author: momentics <momentics@gmail.com>
//
// Common error types and error handling utilities for hioload-devchan.

package api

import (
	"errors"
	"fmt"
)

// Common errors used across the library.
var (
	// ErrChannelFull: producer found no contiguous room for the item or frame.
	ErrChannelFull = errors.New("channel full")
	// ErrNoConsumer: producer is not attached to any consumer storage.
	ErrNoConsumer = errors.New("no consumer attached")
	// ErrProtocolViolation: stored frame header is inconsistent with the storage.
	ErrProtocolViolation = errors.New("channel protocol violation")
	// ErrConstruction: wait primitive or backing storage could not be created.
	ErrConstruction = errors.New("channel construction failed")
	// ErrChannelClosed: blocking call issued against a torn-down wait primitive.
	ErrChannelClosed = errors.New("channel closed")

	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrNotSupported    = fmt.Errorf("operation not supported")
)

// ErrorCode represents specific error conditions in the library.
type ErrorCode int

const (
	ErrCodeOK ErrorCode = iota
	ErrCodeInvalidArgument
	ErrCodeChannelFull
	ErrCodeNoConsumer
	ErrCodeProtocolViolation
	ErrCodeConstruction
	ErrCodeClosed
	ErrCodeNotSupported
	ErrCodeInternal
)

// Error represents a structured error with code and context.
type Error struct {
	Code    ErrorCode
	Message string
	Context map[string]any
	Err     error // sentinel or cause, reachable through errors.Is
}

// Error implements the error interface.
func (e *Error) Error() string {
	if len(e.Context) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (context: %+v)", e.Message, e.Context)
}

// Unwrap exposes the underlying sentinel.
func (e *Error) Unwrap() error { return e.Err }

// NewError creates a new structured error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Context: make(map[string]any),
		Err:     sentinelFor(code),
	}
}

// WithContext adds context information to the error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// Wrap replaces the cause of the error.
func (e *Error) Wrap(err error) *Error {
	e.Err = err
	return e
}

func sentinelFor(code ErrorCode) error {
	switch code {
	case ErrCodeInvalidArgument:
		return ErrInvalidArgument
	case ErrCodeChannelFull:
		return ErrChannelFull
	case ErrCodeNoConsumer:
		return ErrNoConsumer
	case ErrCodeProtocolViolation:
		return ErrProtocolViolation
	case ErrCodeConstruction:
		return ErrConstruction
	case ErrCodeClosed:
		return ErrChannelClosed
	case ErrCodeNotSupported:
		return ErrNotSupported
	default:
		return nil
	}
}
