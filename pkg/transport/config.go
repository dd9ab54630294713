package transport

import (
	"crypto/tls"
	"errors"
	"log/slog"
	"time"

	"github.com/vantage-controls/vantage-go/pkg/log"
)

// Transport defaults.
const (
	// DefaultConnectTimeout bounds dialing plus the TLS handshake.
	DefaultConnectTimeout = 5 * time.Second

	// DefaultBufferLimit is the maximum number of buffered bytes without a
	// terminator before a read fails (1 MiB).
	DefaultBufferLimit = 1 << 20

	// readChunkSize is the size of a single socket read.
	readChunkSize = 4096
)

// Config configures a Conn.
type Config struct {
	// Host is the controller hostname or IP address.
	Host string

	// Port is the TCP port.
	Port int

	// TLS enables TLS on the socket.
	TLS bool

	// TLSConfig overrides the default insecure TLS configuration.
	TLSConfig *tls.Config

	// ConnectTimeout bounds Open (default: 5s).
	ConnectTimeout time.Duration

	// WriteTimeout bounds a single Write (0 = no deadline).
	WriteTimeout time.Duration

	// BufferLimit is the maximum unterminated buffer size (default: 1 MiB).
	BufferLimit int

	// Service tags capture events.
	Service log.Service

	// ProtocolLogger receives every line written and read (optional).
	ProtocolLogger log.Logger

	// Logger receives operational logs (optional).
	Logger *slog.Logger
}

// DefaultConfig returns a configuration for host:port with default timeouts.
func DefaultConfig(host string, port int) Config {
	return Config{
		Host:           host,
		Port:           port,
		ConnectTimeout: DefaultConnectTimeout,
		BufferLimit:    DefaultBufferLimit,
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Host == "" {
		return errors.New("host is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return errors.New("port must be between 1 and 65535")
	}
	if c.ConnectTimeout < 0 || c.WriteTimeout < 0 {
		return errors.New("timeouts must not be negative")
	}
	if c.BufferLimit < 0 {
		return errors.New("buffer limit must not be negative")
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.ConnectTimeout == 0 {
		c.ConnectTimeout = DefaultConnectTimeout
	}
	if c.BufferLimit == 0 {
		c.BufferLimit = DefaultBufferLimit
	}
	if c.ProtocolLogger == nil {
		c.ProtocolLogger = log.NoopLogger{}
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}
}
