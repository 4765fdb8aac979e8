// Package errors provides structured error types for the qtopo application.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI, the sync engine, and the live channel
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - CONNECTION_*: graph connection failures (a single connection-error family)
//   - ENDPOINT_*: node lookup failures
//   - TRANSPORT_*: live channel failures (dial, send, parse)
//   - PERSISTENCE_*: HTTP persistence failures (non-2xx, body parse)
//   - IMPORT_*: snapshot decode failures
//
// # Usage
//
//	err := errors.New(errors.ErrCodeEndpointNotFound, "no node named %q", name)
//	if errors.Is(err, errors.ErrCodeEndpointNotFound) {
//	    // Handle missing node
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodePersistence, origErr, "save topology %s", id)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Graph connection errors. Both codes belong to the connection-error
	// family (see InConnectionFamily).
	ErrCodeConnectionExists   Code = "CONNECTION_EXISTS"
	ErrCodeConnectionNotFound Code = "CONNECTION_NOT_FOUND"

	// Node lookup errors
	ErrCodeEndpointNotFound Code = "ENDPOINT_NOT_FOUND"
	ErrCodeUnknownKind      Code = "UNKNOWN_NODE_KIND"
	ErrCodeDuplicateName    Code = "DUPLICATE_NODE_NAME"

	// Network/zone errors
	ErrCodeNetworkNotFound Code = "NETWORK_NOT_FOUND"
	ErrCodePeerAssigned    Code = "ADAPTER_PEER_ASSIGNED"

	// Live channel errors
	ErrCodeTransport      Code = "TRANSPORT_ERROR"
	ErrCodeInvalidAddress Code = "INVALID_ADDRESS"
	ErrCodeNotConnected   Code = "NOT_CONNECTED"

	// Persistence errors
	ErrCodePersistence Code = "PERSISTENCE_ERROR"
	ErrCodeNotFound    Code = "NOT_FOUND"

	// Snapshot errors
	ErrCodeImport        Code = "IMPORT_ERROR"
	ErrCodeEmptyTopology Code = "EMPTY_TOPOLOGY"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// InConnectionFamily reports whether err belongs to the connection-error
// family (duplicate connection or connection not found). Callers that only
// care about "the connect/disconnect failed" can check the family instead
// of matching individual codes.
func InConnectionFamily(err error) bool {
	switch GetCode(err) {
	case ErrCodeConnectionExists, ErrCodeConnectionNotFound:
		return true
	}
	return false
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
