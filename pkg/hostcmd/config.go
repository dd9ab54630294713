package hostcmd

import (
	"crypto/tls"
	"errors"
	"log/slog"
	"time"

	"github.com/vantage-controls/vantage-go/pkg/log"
)

// Default ports and timeouts.
const (
	// DefaultPort is the plain-text Host Command port.
	DefaultPort = 3001

	// DefaultTLSPort is the TLS Host Command port.
	DefaultTLSPort = 3010

	// DefaultConnectTimeout bounds opening a connection.
	DefaultConnectTimeout = 30 * time.Second

	// DefaultReadTimeout bounds waiting for a reply.
	DefaultReadTimeout = 60 * time.Second
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

	// Username and Password, when both set, are sent with LOGIN on every
	// freshly opened connection.
	Username string
	Password string

	// ConnectTimeout bounds opening a connection (default: 30s).
	ConnectTimeout time.Duration

	// ReadTimeout bounds waiting for a reply (default: 60s). A reply that
	// does not arrive in time closes the connection.
	ReadTimeout time.Duration

	// ProtocolLogger receives every line sent and received (optional).
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

func (c *Config) hasCredentials() bool {
	return c.Username != "" && c.Password != ""
}
