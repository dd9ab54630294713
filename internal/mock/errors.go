package mock

import "errors"

// Mock package errors.
var (
	// ErrServerClosed is returned when operating on a stopped server.
	ErrServerClosed = errors.New("mock server closed")

	// ErrNoConnections is returned by Push when no client is connected.
	ErrNoConnections = errors.New("no client connected")
)
