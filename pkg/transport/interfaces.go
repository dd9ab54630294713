package transport

import (
	"context"
	"time"
)

// LineConn is a terminator-delimited, reconnectable socket.
// Implemented by Conn.
type LineConn interface {
	// Open dials if the connection is closed.
	Open(ctx context.Context) error

	// Write sends bytes in full.
	Write(p []byte) error

	// ReadUntil returns bytes up to and including the terminator.
	ReadUntil(terminator []byte, timeout time.Duration) ([]byte, error)

	// Close closes the socket; idempotent.
	Close() error

	// Closed reports whether the socket is unusable.
	Closed() bool

	// ID returns the current socket identifier.
	ID() string
}

// Compile-time interface satisfaction check.
var _ LineConn = (*Conn)(nil)
