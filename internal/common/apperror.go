// -*- mode: Go; indent-tabs-mode: t -*-
//
// Copyright (C) 2017-2018 Canonical Ltd
//
// SPDX-License-Identifier: Apache-2.0

package common

import "github.com/pkg/errors"

// ErrorCode classifies an AppError into the taxonomy described in §7 of the
// specification.
type ErrorCode string

const (
	// CodeConstruction marks a fatal startup error: bad config, unknown
	// device_type, missing parent.
	CodeConstruction ErrorCode = "construction"
	// CodeIO marks a non-fatal serial open/read/write failure.
	CodeIO ErrorCode = "io"
	// CodeRouting marks a command that named an unknown device_id,
	// addressed a device_type that does not accept commands, or supplied
	// a mismatched param variant.
	CodeRouting ErrorCode = "routing"
	// CodeRange marks an address out of bounds for a controller or the
	// DMX frame.
	CodeRange ErrorCode = "range"
)

// AppError is the common shape of every taxonomy member: a normal Go error
// additionally tagged with a classification, so callers can decide whether
// to abort (construction) or log-and-continue (everything else) without
// string-matching messages.
type AppError interface {
	error
	Code() ErrorCode
}

type appError struct {
	code ErrorCode
	err  error
}

func (e *appError) Error() string { return e.err.Error() }
func (e *appError) Code() ErrorCode { return e.code }
func (e *appError) Unwrap() error { return e.err }

// NewConstructionError builds an error whose message identifies the
// offending device and field, with a stack trace captured at the call site
// via github.com/pkg/errors, since construction errors abort startup and
// the trace is the only diagnostic a human will see.
func NewConstructionError(deviceID, field, msg string) AppError {
	return &appError{code: CodeConstruction, err: errors.Errorf("device %q: field %q: %s", deviceID, field, msg)}
}

// NewIOError wraps cause as a non-fatal bus I/O failure.
func NewIOError(deviceID string, cause error) AppError {
	return &appError{code: CodeIO, err: errors.Wrapf(cause, "device %q: I/O error", deviceID)}
}

// NewRoutingError reports a command that could not be routed.
func NewRoutingError(deviceID, msg string) AppError {
	return &appError{code: CodeRouting, err: errors.Errorf("device %q: %s", deviceID, msg)}
}

// NewRangeError reports an out-of-bounds address.
func NewRangeError(deviceID, msg string) AppError {
	return &appError{code: CodeRange, err: errors.Errorf("device %q: %s", deviceID, msg)}
}
