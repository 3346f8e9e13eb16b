package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a node error with a structured error code.
//
// Code identifies the error inside the process (e.g., "MN-WIRE-4000").
// RPCCode, when non-zero, is the protocol error code sent back to a client
// whose request was rejected; errors without one are fatal to the node.
type DomainError struct {
	Code    string // Error code (e.g., "MN-WIRE-4000")
	RPCCode int    // Protocol error code for error replies (0 = fatal, never replied)
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Details != "" {
		msg += ": " + e.Details
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support for error comparison.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// newRPCError creates a DomainError that is reported to the client.
func newRPCError(code string, rpcCode int, message string) *DomainError {
	return &DomainError{
		Code:    code,
		RPCCode: rpcCode,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	c := *e
	c.Details = details
	return &c
}

// WithDetailsf is WithDetails with fmt.Sprintf formatting.
func (e *DomainError) WithDetailsf(format string, args ...any) *DomainError {
	return e.WithDetails(fmt.Sprintf(format, args...))
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	c := *e
	c.Cause = cause
	return &c
}

// Wrap wraps an error with this domain error as the cause.
func (e *DomainError) Wrap(cause error) *DomainError {
	return e.WithCause(cause)
}

// Reportable reports whether the error should become an error reply
// instead of stopping the node.
func (e *DomainError) Reportable() bool {
	return e.RPCCode != 0
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks if the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true
		}
		return de.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// AsReportable returns the DomainError in err's chain when it carries
// a protocol error code.
func AsReportable(err error) (*DomainError, bool) {
	var de *DomainError
	if errors.As(err, &de) && de.Reportable() {
		return de, true
	}
	return nil, false
}

// ============================================================================
// Protocol error codes
// ============================================================================

// Error codes carried by error replies on the wire.
const (
	RPCTimeout                = 0
	RPCNodeNotFound           = 1
	RPCNotSupported           = 10
	RPCTemporarilyUnavailable = 11
	RPCMalformedRequest       = 12
	RPCCrash                  = 13
	RPCAbort                  = 14
	RPCKeyDoesNotExist        = 20
	RPCKeyAlreadyExists       = 21
	RPCPreconditionFailed     = 22
	RPCTxnConflict            = 30
)

// ============================================================================
// Handshake Errors (INIT)
// ============================================================================

var (
	// ErrHandshake is returned when the first inbound line is missing,
	// undecodable or not an init request.
	ErrHandshake = NewDomainError("MN-INIT-4000", "handshake failed")

	// ErrNotInitialized is returned when a node is started without a roster.
	ErrNotInitialized = NewDomainError("MN-INIT-4001", "node not initialized")
)

// ============================================================================
// Wire Errors (WIRE)
// ============================================================================

var (
	// ErrMalformedMessage is returned when an inbound line cannot be decoded.
	ErrMalformedMessage = NewDomainError("MN-WIRE-4000", "malformed message")

	// ErrUnknownMessageType is returned for a body type outside the workload's variant set.
	ErrUnknownMessageType = NewDomainError("MN-WIRE-4001", "unknown message type")

	// ErrEncode is returned when an outbound message cannot be serialized or written.
	ErrEncode = NewDomainError("MN-WIRE-5000", "failed to encode message")
)

// ============================================================================
// Request Errors (REQ), replied to the client
// ============================================================================

var (
	// ErrMalformedRequest rejects a request whose fields are invalid.
	ErrMalformedRequest = newRPCError("MN-REQ-4000", RPCMalformedRequest, "malformed request")

	// ErrNotSupported rejects a request the workload does not serve.
	ErrNotSupported = newRPCError("MN-REQ-4010", RPCNotSupported, "operation not supported")

	// ErrTemporarilyUnavailable rejects a request that may succeed if retried.
	ErrTemporarilyUnavailable = newRPCError("MN-REQ-5030", RPCTemporarilyUnavailable, "temporarily unavailable")

	// ErrKeyDoesNotExist rejects a request naming an unknown key.
	ErrKeyDoesNotExist = newRPCError("MN-REQ-4040", RPCKeyDoesNotExist, "key does not exist")
)

// ============================================================================
// Configuration Errors (CONF)
// ============================================================================

var (
	// ErrInvalidConfig is returned when the node configuration fails validation.
	ErrInvalidConfig = NewDomainError("MN-CONF-4000", "invalid configuration")

	// ErrUnknownWorkload is returned for a workload name the binary does not know.
	ErrUnknownWorkload = NewDomainError("MN-CONF-4001", "unknown workload")
)
