// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package apperr defines the centralized error type for the harvester.

It bridges low-level storage and transport errors and the two places errors
surface: the scheduler host (which logs them) and the ops HTTP endpoints
(which render them).

Architecture:

  - AppError: a struct containing a machine-readable Code and a readable message.
  - Mapping: each constructor carries the HTTP status used by the ops endpoints.
  - Precondition: the only error class allowed to escape a scheduler run.
*/
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Machine-readable error codes.
const (
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodeValidation   = "VALIDATION_ERROR"
	CodePrecondition = "PRECONDITION_FAILED"
	CodeInternal     = "INTERNAL_ERROR"
)

// AppError is the canonical error type for the harvester.
//
// # Security
//
// The Cause field is for server-side logging only and is never rendered by
// the ops endpoints.
type AppError struct {
	// Code is a machine-readable error identifier (e.g. "NOT_FOUND", "CONFLICT").
	Code string `json:"code"`
	// Message is a human-readable description.
	Message string `json:"error"`
	// HTTPStatus is the status code used when rendered over HTTP.
	HTTPStatus int `json:"-"`
	// Cause is the underlying error, used for logging only.
	Cause error `json:"-"`
	// Details holds per-field validation errors.
	Details []FieldError `json:"details,omitempty"`
}

// FieldError represents a single field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *AppError) Unwrap() error { return e.Cause }

// # Client Errors

// NotFound creates a NOT_FOUND [AppError] for a named resource.
//
// Example:
//
//	apperr.NotFound("Artist") // Returns "Artist not found"
func NotFound(resource string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    resource + " not found",
		HTTPStatus: http.StatusNotFound,
	}
}

// Conflict creates a CONFLICT [AppError] for unique-constraint violations.
func Conflict(msg string) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    msg,
		HTTPStatus: http.StatusConflict,
	}
}

// ValidationError creates a VALIDATION_ERROR [AppError] with optional per-field details.
func ValidationError(msg string, details ...FieldError) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
		Details:    details,
	}
}

// Precondition creates a PRECONDITION_FAILED [AppError].
//
// It marks a fatal run precondition (a blank artist key or external id):
// the run aborts before any side effect and the error propagates to the host.
func Precondition(msg string, details ...FieldError) *AppError {
	return &AppError{
		Code:       CodePrecondition,
		Message:    msg,
		HTTPStatus: http.StatusPreconditionFailed,
		Details:    details,
	}
}

// # Server Errors

// Internal creates an INTERNAL_ERROR [AppError] wrapping an unexpected failure.
func Internal(cause error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "An unexpected error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// # Helpers

// As extracts the [*AppError] from err's chain. It returns nil if not found.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

// IsPrecondition reports whether err carries the PRECONDITION_FAILED code.
func IsPrecondition(err error) bool {
	ae := As(err)
	return ae != nil && ae.Code == CodePrecondition
}

// IsNotFound reports whether err carries the NOT_FOUND code.
func IsNotFound(err error) bool {
	ae := As(err)
	return ae != nil && ae.Code == CodeNotFound
}
