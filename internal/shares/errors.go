package shares

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"syscall"
)

// Error types for share validation and connection operations

// ErrorType represents the category of error that occurred
type ErrorType int

const (
	// ErrTypeInvalidHostname indicates an empty or malformed host name
	ErrTypeInvalidHostname ErrorType = iota
	// ErrTypeInvalidSharePath indicates an empty or malformed share path
	ErrTypeInvalidSharePath
	// ErrTypeUnsupportedProtocol indicates a share URL with a scheme this
	// tool does not speak
	ErrTypeUnsupportedProtocol
	// ErrTypeHostUnreachable indicates the host could not be reached
	ErrTypeHostUnreachable
	// ErrTypeAuth indicates an authentication failure (invalid credentials)
	ErrTypeAuth
	// ErrTypeShareNotFound indicates the host is up but does not export
	// the requested share
	ErrTypeShareNotFound
	// ErrTypeTimeout indicates the operation did not complete before its
	// deadline
	ErrTypeTimeout
	// ErrTypeNetworkUnavailable indicates no usable local network
	ErrTypeNetworkUnavailable
	// ErrTypeConnectionFailed indicates a connection-level failure that
	// does not fit a more specific category
	ErrTypeConnectionFailed
	// ErrTypeUnknown indicates an unknown or unexpected error
	ErrTypeUnknown
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeInvalidHostname:
		return "Invalid Hostname"
	case ErrTypeInvalidSharePath:
		return "Invalid Share Path"
	case ErrTypeUnsupportedProtocol:
		return "Unsupported Protocol"
	case ErrTypeHostUnreachable:
		return "Host Unreachable"
	case ErrTypeAuth:
		return "Authentication Failed"
	case ErrTypeShareNotFound:
		return "Share Not Found"
	case ErrTypeTimeout:
		return "Timeout"
	case ErrTypeNetworkUnavailable:
		return "Network Unavailable"
	case ErrTypeConnectionFailed:
		return "Connection Failed"
	case ErrTypeUnknown:
		return "Unknown Error"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// ShareError represents an error from validating or connecting to a share.
// It carries enough context (host, share name) to render a user-facing
// message without consulting the original call site.
type ShareError struct {
	Type      ErrorType // Category of error
	Host      string    // Host name or address (for context)
	ShareName string    // Share name (for context)
	Protocol  string    // Offending scheme, for unsupported-protocol errors
	Message   string    // Human-readable error message
	Err       error     // Underlying error (if any)
}

// Error implements the error interface
func (e *ShareError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for error chain inspection
func (e *ShareError) Unwrap() error {
	return e.Err
}

// NewInvalidHostnameError creates an error for an unusable host name
func NewInvalidHostnameError(host string) *ShareError {
	return &ShareError{
		Type:    ErrTypeInvalidHostname,
		Host:    host,
		Message: fmt.Sprintf("invalid hostname %q", host),
	}
}

// NewInvalidSharePathError creates an error for an unusable share path
func NewInvalidSharePathError(path string) *ShareError {
	return &ShareError{
		Type:      ErrTypeInvalidSharePath,
		ShareName: path,
		Message:   fmt.Sprintf("invalid share path %q", path),
	}
}

// NewUnsupportedProtocolError creates an error for a share URL scheme this
// tool cannot handle
func NewUnsupportedProtocolError(scheme string) *ShareError {
	return &ShareError{
		Type:     ErrTypeUnsupportedProtocol,
		Protocol: scheme,
		Message:  fmt.Sprintf("unsupported protocol %q", scheme),
	}
}

// NewHostUnreachableError creates an error for an unreachable host
func NewHostUnreachableError(host string, err error) *ShareError {
	return &ShareError{
		Type:    ErrTypeHostUnreachable,
		Host:    host,
		Message: fmt.Sprintf("host %s is unreachable", host),
		Err:     err,
	}
}

// NewAuthError creates an authentication error
func NewAuthError(host string, err error) *ShareError {
	return &ShareError{
		Type:    ErrTypeAuth,
		Host:    host,
		Message: "authentication failed",
		Err:     err,
	}
}

// NewShareNotFoundError creates an error for a share the host does not export
func NewShareNotFoundError(host, shareName string, err error) *ShareError {
	return &ShareError{
		Type:      ErrTypeShareNotFound,
		Host:      host,
		ShareName: shareName,
		Message:   fmt.Sprintf("share %q not found on %s", shareName, host),
		Err:       err,
	}
}

// NewTimeoutError creates a timeout error. Timeouts are a distinguished
// kind so callers can special-case retry logic.
func NewTimeoutError(host string, err error) *ShareError {
	return &ShareError{
		Type:    ErrTypeTimeout,
		Host:    host,
		Message: "connection timed out",
		Err:     err,
	}
}

// ClassifyConnectionError analyzes a raw network error from a connection
// attempt against host and returns a typed ShareError
func ClassifyConnectionError(host string, err error) *ShareError {
	if err == nil {
		return nil
	}

	// A pre-classified error passes through unchanged
	var shareErr *ShareError
	if errors.As(err, &shareErr) {
		return shareErr
	}

	// Deadline and timeout errors
	if errors.Is(err, context.DeadlineExceeded) || os.IsTimeout(err) {
		return NewTimeoutError(host, err)
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &ShareError{
			Type:    ErrTypeInvalidHostname,
			Host:    host,
			Message: fmt.Sprintf("cannot resolve hostname %q", dnsErr.Name),
			Err:     err,
		}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		switch {
		case errors.Is(opErr.Err, syscall.EHOSTUNREACH),
			errors.Is(opErr.Err, syscall.EHOSTDOWN),
			errors.Is(opErr.Err, syscall.ECONNREFUSED):
			return NewHostUnreachableError(host, err)
		case errors.Is(opErr.Err, syscall.ENETUNREACH),
			errors.Is(opErr.Err, syscall.ENETDOWN):
			return &ShareError{
				Type:    ErrTypeNetworkUnavailable,
				Host:    host,
				Message: "network is unavailable",
				Err:     err,
			}
		}
	}

	return &ShareError{
		Type:    ErrTypeConnectionFailed,
		Host:    host,
		Message: "connection failed",
		Err:     err,
	}
}

// IsTimeout checks if an error is a timeout error
func IsTimeout(err error) bool {
	var shareErr *ShareError
	return errors.As(err, &shareErr) && shareErr.Type == ErrTypeTimeout
}

// IsAuthError checks if an error is an authentication error
func IsAuthError(err error) bool {
	var shareErr *ShareError
	return errors.As(err, &shareErr) && shareErr.Type == ErrTypeAuth
}

// IsUnsupportedProtocol checks if an error is an unsupported-protocol error
func IsUnsupportedProtocol(err error) bool {
	var shareErr *ShareError
	return errors.As(err, &shareErr) && shareErr.Type == ErrTypeUnsupportedProtocol
}

// ShortMessage returns a concise, user-friendly message for an error.
// It is used both for CLI output and as the reason on Offline statuses.
func ShortMessage(err error) string {
	var shareErr *ShareError
	if !errors.As(err, &shareErr) {
		return err.Error()
	}

	switch shareErr.Type {
	case ErrTypeHostUnreachable:
		return "Host unreachable"
	case ErrTypeAuth:
		return "Authentication failed"
	case ErrTypeShareNotFound:
		return fmt.Sprintf("Share %q not found", shareErr.ShareName)
	case ErrTypeTimeout:
		return "Connection timed out"
	case ErrTypeNetworkUnavailable:
		return "Network unavailable"
	case ErrTypeInvalidHostname:
		return "Invalid hostname"
	case ErrTypeInvalidSharePath:
		return "Invalid share path"
	case ErrTypeUnsupportedProtocol:
		return fmt.Sprintf("Unsupported protocol %q", shareErr.Protocol)
	case ErrTypeConnectionFailed:
		return "Connection failed"
	default:
		return shareErr.Message
	}
}
