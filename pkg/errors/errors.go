/*
 * Copyright 2026 The Workpad Authors. All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package errors provides status-coded errors used across the server.
// Component boundaries decide by status whether an error crosses into
// a client-visible response or is absorbed where it occurred.
package errors

import (
	"errors"
)

// StatusError is an error that carries a status and an optional
// machine-readable code.
type StatusError interface {
	error
	Status() StatusCode
	Code() string
	WithCode(code string) StatusError
}

type statusError struct {
	err    error
	status StatusCode
	code   string
}

// Error returns the error message.
func (e statusError) Error() string {
	return e.err.Error()
}

// Status returns the status of this error.
func (e statusError) Status() StatusCode {
	return e.status
}

// Code returns the machine-readable code of this error, if any.
func (e statusError) Code() string {
	return e.code
}

// Unwrap returns the underlying error for error chain compatibility.
func (e statusError) Unwrap() error {
	return e.err
}

// WithCode returns a copy of this error carrying the given code.
func (e statusError) WithCode(code string) StatusError {
	return statusError{
		err:    e.err,
		status: e.status,
		code:   code,
	}
}

func newStatusError(message string, status StatusCode) StatusError {
	return statusError{
		err:    errors.New(message),
		status: status,
	}
}

// NotFound creates an error for a requested entity that does not exist.
func NotFound(message string) StatusError {
	return newStatusError(message, ErrCodeNotFound)
}

// InvalidArgument creates an error for invalid client input.
func InvalidArgument(message string) StatusError {
	return newStatusError(message, ErrCodeInvalidArgument)
}

// AlreadyExists creates an error for a create that collided with an
// existing entity.
func AlreadyExists(message string) StatusError {
	return newStatusError(message, ErrCodeAlreadyExists)
}

// FailedPrecond creates an error for an operation rejected because the
// system is not in the required state.
func FailedPrecond(message string) StatusError {
	return newStatusError(message, ErrCodeFailedPrecondition)
}

// DeadlineExceeded creates an error for an operation that could not
// complete within its bounded wait. Callers may retry with backoff.
func DeadlineExceeded(message string) StatusError {
	return newStatusError(message, ErrCodeDeadlineExceeded)
}

// ResourceExhausted creates an error for an exhausted resource or quota.
func ResourceExhausted(message string) StatusError {
	return newStatusError(message, ErrCodeResourceExhausted)
}

// Internal creates an error for an unexpected server-side failure.
func Internal(message string) StatusError {
	return newStatusError(message, ErrCodeInternal)
}

// Unavailable creates an error for a temporarily unavailable service.
func Unavailable(message string) StatusError {
	return newStatusError(message, ErrCodeUnavailable)
}

// StatusOf extracts the status from an error or any error it wraps.
// It returns 0 when the chain carries no status.
func StatusOf(err error) StatusCode {
	if err == nil {
		return 0
	}

	var se StatusError
	if errors.As(err, &se) {
		return se.Status()
	}
	return 0
}

// CodeOf extracts the machine-readable code from an error or any error
// it wraps. It returns "" when the chain carries no code.
func CodeOf(err error) string {
	if err == nil {
		return ""
	}

	var se StatusError
	if errors.As(err, &se) {
		return se.Code()
	}
	return ""
}
