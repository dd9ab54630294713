package aci

import (
	"crypto/tls"
	"errors"
	"log/slog"
	"time"

	"github.com/vantage-controls/vantage-go/pkg/log"
	"github.com/vantage-controls/vantage-go/pkg/transport"
)

// Default ports, timeouts and sizes.
const (
	// DefaultPort is the plain-text ACI port.
	DefaultPort = 2001

	// DefaultTLSPort is the TLS ACI port.
	DefaultTLSPort = 2010

	// DefaultConnectTimeout bounds opening a connection.
	DefaultConnectTimeout = 5 * time.Second

	// DefaultReadTimeout bounds waiting for a response.
	DefaultReadTimeout = 30 * time.Second

	// DefaultBufferLimit bounds a single response document (1 MiB).
	DefaultBufferLimit = transport.DefaultBufferLimit

	// DefaultPageSize is the number of objects fetched per
	// GetFilterResults call.
	DefaultPageSize = 50
)

// Config configures a Client.
type Config struct {
	// Host is the controller hostname or IP address.
	Host string

	// Port overrides the default port for the TLS setting.
	Port int

	// TLS enables TLS (default: true).
	TLS bool

	// TLSConfig overrides the default insecure TLS configuration.
	TLSConfig *tls.Config

	// Username and Password, when both set, are sent with ILogin.Login on
	// every freshly opened connection.
	Username string
	Password string

	// ConnectTimeout bounds opening a connection (default: 5s).
	ConnectTimeout time.Duration

	// ReadTimeout bounds waiting for a response (default: 30s).
	ReadTimeout time.Duration

	// BufferLimit bounds a response document (default: 1 MiB).
	BufferLimit int

	// PageSize is the object count per GetFilterResults (default: 50).
	PageSize int

	// ProtocolLogger receives every document sent and received (optional).
	ProtocolLogger log.Logger

	// Logger receives operational logs (optional).
	Logger *slog.Logger
}

// DefaultConfig returns a TLS configuration for host with default timeouts.
func DefaultConfig(host string) Config {
	return Config{
		Host:           host,
		TLS:            true,
		ConnectTimeout: DefaultConnectTimeout,
		ReadTimeout:    DefaultReadTimeout,
		BufferLimit:    DefaultBufferLimit,
		PageSize:       DefaultPageSize,
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Host == "" {
		return errors.New("host is required")
	}
	if c.Port < 0 || c.Port > 65535 {
		return errors.New("port must be between 0 and 65535")
	}
	if c.ConnectTimeout < 0 || c.ReadTimeout < 0 {
		return errors.New("timeouts must not be negative")
	}
	if c.PageSize < 0 || c.BufferLimit < 0 {
		return errors.New("page size and buffer limit must not be negative")
	}
	if (c.Username == "") != (c.Password == "") {
		return errors.New("username and password must be set together")
	}
	return nil
}

// EffectivePort returns Port, or the default port for the TLS setting.
func (c *Config) EffectivePort() int {
	if c.Port != 0 {
		return c.Port
	}
	if c.TLS {
		return DefaultTLSPort
	}
	return DefaultPort
}

func (c *Config) applyDefaults() {
	if c.ConnectTimeout == 0 {
		c.ConnectTimeout = DefaultConnectTimeout
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = DefaultReadTimeout
	}
	if c.BufferLimit == 0 {
		c.BufferLimit = DefaultBufferLimit
	}
	if c.PageSize == 0 {
		c.PageSize = DefaultPageSize
	}
}
