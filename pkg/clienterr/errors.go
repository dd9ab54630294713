package clienterr

import (
	"errors"
	"fmt"
)

// Host Command error codes with dedicated meaning.
const (
	// CodeLoginRequired is returned when a command needs an authenticated session.
	CodeLoginRequired = 21

	// CodeLoginFailed is returned when LOGIN is rejected.
	CodeLoginFailed = 23
)

// Sentinel errors.
var (
	// ErrConnection matches every *ConnectionError.
	ErrConnection = errors.New("connection error")

	// ErrConnectionClosed indicates I/O on a closed connection.
	ErrConnectionClosed = errors.New("connection closed")

	// ErrTimeout indicates a connect or read deadline was exceeded.
	ErrTimeout = errors.New("timeout")

	// ErrLoginRequired indicates the service requires authentication.
	ErrLoginRequired = errors.New("login required")

	// ErrLoginFailed indicates the credentials were rejected.
	ErrLoginFailed = errors.New("login failed")

	// ErrProtocol matches every *ProtocolError.
	ErrProtocol = errors.New("protocol error")
)

// ConnectionError describes a failure to open or use a connection.
type ConnectionError struct {
	// Op is the operation that failed ("dial", "handshake", "read", "write").
	Op string

	// Addr is the remote address.
	Addr string

	// Err is the underlying cause.
	Err error
}

// Error implements error.
func (e *ConnectionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %s failed", e.Op, e.Addr)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Addr, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrConnection.
func (e *ConnectionError) Is(target error) bool {
	return target == ErrConnection
}

// CommandError is an "R:ERROR:<code> <message>" reply from the Host Command service.
type CommandError struct {
	Code    int
	Message string
}

// Error implements error.
func (e *CommandError) Error() string {
	return fmt.Sprintf("%s (error code %d)", e.Message, e.Code)
}

// Is maps the authentication codes onto their sentinels.
func (e *CommandError) Is(target error) bool {
	switch target {
	case ErrLoginRequired:
		return e.Code == CodeLoginRequired
	case ErrLoginFailed:
		return e.Code == CodeLoginFailed
	}
	return false
}

// ProtocolError indicates a response whose shape did not match the request.
type ProtocolError struct {
	// Op names the request being parsed, e.g. "IConfiguration.OpenFilter".
	Op string

	// Message describes what was missing or malformed.
	Message string
}

// Error implements error.
func (e *ProtocolError) Error() string {
	if e.Op == "" {
		return e.Message
	}
	return e.Op + ": " + e.Message
}

// Is reports whether target is ErrProtocol.
func (e *ProtocolError) Is(target error) bool {
	return target == ErrProtocol
}
