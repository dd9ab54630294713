package events

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/vantage-controls/vantage-go/pkg/connection"
	"github.com/vantage-controls/vantage-go/pkg/hostcmd"
	"github.com/vantage-controls/vantage-go/pkg/transport"
)

// DefaultQueueSize is the number of parsed events buffered between the
// connection reader and subscriber dispatch.
const DefaultQueueSize = 256

// Config configures an EventStream.
type Config struct {
	// Client configures the stream's own Host Command connection.
	Client hostcmd.Config

	// KeepAlive configures the ECHO probe (default: every 30s).
	KeepAlive transport.KeepAliveConfig

	// DisableKeepAlive turns the ECHO probe off.
	DisableKeepAlive bool

	// Reconnect configures backoff after the link drops.
	Reconnect connection.ManagerConfig

	// QueueSize bounds buffered events (default: 256). A full queue
	// blocks the connection reader.
	QueueSize int

	// Logger receives operational logs (optional).
	Logger *slog.Logger
}

// DefaultConfig returns a configuration for host with keep-alive and
// automatic reconnect enabled.
func DefaultConfig(host string) Config {
	return Config{
		Client:    hostcmd.DefaultConfig(host),
		KeepAlive: transport.DefaultKeepAliveConfig(),
		Reconnect: connection.DefaultManagerConfig(),
		QueueSize: DefaultQueueSize,
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if err := c.Client.Validate(); err != nil {
		return fmt.Errorf("client: %w", err)
	}
	if c.QueueSize < 0 {
		return errors.New("queue size must not be negative")
	}
	if c.KeepAlive.Interval < 0 || c.KeepAlive.Timeout < 0 {
		return errors.New("keep-alive durations must not be negative")
	}
	return nil
}
