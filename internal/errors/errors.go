// Package errors defines the typed error taxonomy for the Autotask API
// client and the sync engine.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind categorizes an API error for retry and handling decisions.
type Kind string

const (
	// KindTransport covers connection, timeout and TLS failures.
	KindTransport Kind = "transport"
	// KindClient covers 4xx responses other than 403/404.
	KindClient Kind = "client"
	// KindServer covers 5xx responses.
	KindServer Kind = "server"
	// KindNotFound covers 404, used to detect upstream deletions.
	KindNotFound Kind = "not_found"
	// KindPermission covers 403.
	KindPermission Kind = "permission"
)

// APIError represents a failure talking to the remote API.
type APIError struct {
	Kind       Kind
	StatusCode int
	Message    string
	Body       string
	Cause      error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	switch {
	case e.Cause != nil && e.StatusCode > 0:
		return fmt.Sprintf("autotask api %s error (status %d): %s (caused by: %v)", e.Kind, e.StatusCode, e.Message, e.Cause)
	case e.Cause != nil:
		return fmt.Sprintf("autotask api %s error: %s (caused by: %v)", e.Kind, e.Message, e.Cause)
	case e.StatusCode > 0:
		return fmt.Sprintf("autotask api %s error (status %d): %s", e.Kind, e.StatusCode, e.Message)
	default:
		return fmt.Sprintf("autotask api %s error: %s", e.Kind, e.Message)
	}
}

// Unwrap returns the underlying cause.
func (e *APIError) Unwrap() error {
	return e.Cause
}

// NewTransportError wraps a connection, timeout or TLS failure.
func NewTransportError(message string, cause error) *APIError {
	return &APIError{
		Kind:    KindTransport,
		Message: message,
		Cause:   cause,
	}
}

// NewHTTPError builds the typed error for a non-2xx response, selecting the
// kind from the status code.
func NewHTTPError(statusCode int, body string) *APIError {
	e := &APIError{
		StatusCode: statusCode,
		Message:    http.StatusText(statusCode),
		Body:       body,
	}
	switch {
	case statusCode == http.StatusNotFound:
		e.Kind = KindNotFound
	case statusCode == http.StatusForbidden:
		e.Kind = KindPermission
	case statusCode >= 400 && statusCode < 500:
		e.Kind = KindClient
	default:
		e.Kind = KindServer
	}
	return e
}

// IsRetryable reports whether the error is worth retrying: transport
// failures and server-side (5xx) errors. Client-class errors are never
// retried because the request itself is at fault.
func IsRetryable(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Kind == KindTransport || apiErr.Kind == KindServer
}

// IsNotFound reports whether the error is a 404 from the remote API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == KindNotFound
}

// IsPermission reports whether the error is a 403 from the remote API.
func IsPermission(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == KindPermission
}

// IsClientError reports whether the error is any 4xx from the remote API.
func IsClientError(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Kind == KindClient || apiErr.Kind == KindNotFound || apiErr.Kind == KindPermission
}

// InvalidObjectError marks a single remote record that cannot be mapped or
// persisted locally (unresolvable required relation, integrity conflict).
// The sync run skips exactly this record and continues.
type InvalidObjectError struct {
	Entity   string
	RemoteID int64
	Reason   string
	Cause    error
}

// Error implements the error interface.
func (e *InvalidObjectError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid %s object %d: %s (caused by: %v)", e.Entity, e.RemoteID, e.Reason, e.Cause)
	}
	return fmt.Sprintf("invalid %s object %d: %s", e.Entity, e.RemoteID, e.Reason)
}

// Unwrap returns the underlying cause.
func (e *InvalidObjectError) Unwrap() error {
	return e.Cause
}

// NewInvalidObjectError creates an invalid object error for one record.
func NewInvalidObjectError(entity string, remoteID int64, reason string, cause error) *InvalidObjectError {
	return &InvalidObjectError{
		Entity:   entity,
		RemoteID: remoteID,
		Reason:   reason,
		Cause:    cause,
	}
}

// IsInvalidObject reports whether the error is a record-level invalid
// object condition.
func IsInvalidObject(err error) bool {
	var invErr *InvalidObjectError
	return errors.As(err, &invErr)
}
