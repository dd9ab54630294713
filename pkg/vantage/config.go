package vantage

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vantage-controls/vantage-go/pkg/aci"
	"github.com/vantage-controls/vantage-go/pkg/events"
	"github.com/vantage-controls/vantage-go/pkg/hostcmd"
	"github.com/vantage-controls/vantage-go/pkg/log"
)

// Config configures a Client. It can be loaded from YAML:
//
//	host: 192.168.1.20
//	username: administrator
//	password: secret
//	tls: true
//	read_timeout: 10s
type Config struct {
	// Host is the controller hostname or IP address.
	Host string `yaml:"host"`

	// Username and Password authenticate both services when set.
	Username string `yaml:"username"`
	Password string `yaml:"password"`

	// TLS selects the encrypted ports (default: true).
	TLS bool `yaml:"tls"`

	// ACIPort and HostCommandPort override the default ports.
	ACIPort         int `yaml:"aci_port"`
	HostCommandPort int `yaml:"host_command_port"`

	// ConnectTimeout and ReadTimeout override the per-service defaults.
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`

	// KeepAlive is the event stream probe interval; negative disables it.
	KeepAlive time.Duration `yaml:"keep_alive"`

	// CaptureFile, when set, records all protocol traffic to a .vlog file.
	CaptureFile string `yaml:"capture_file"`

	// ProtocolLogger receives protocol traffic in addition to CaptureFile.
	ProtocolLogger log.Logger `yaml:"-"`

	// Logger receives operational logs (optional).
	Logger *slog.Logger `yaml:"-"`
}

// DefaultConfig returns a TLS configuration for host.
func DefaultConfig(host string) Config {
	return Config{
		Host: host,
		TLS:  true,
	}
}

// LoadConfig reads a YAML configuration file. Keys absent from the file
// keep their DefaultConfig values.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes a YAML configuration.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig("")
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Host == "" {
		return errors.New("host is required")
	}
	if (c.Username == "") != (c.Password == "") {
		return errors.New("username and password must be set together")
	}
	if c.ConnectTimeout < 0 || c.ReadTimeout < 0 {
		return errors.New("timeouts must not be negative")
	}
	return nil
}

func (c *Config) aciConfig(protocol log.Logger) aci.Config {
	cfg := aci.DefaultConfig(c.Host)
	cfg.Port = c.ACIPort
	cfg.TLS = c.TLS
	cfg.Username = c.Username
	cfg.Password = c.Password
	if c.ConnectTimeout > 0 {
		cfg.ConnectTimeout = c.ConnectTimeout
	}
	if c.ReadTimeout > 0 {
		cfg.ReadTimeout = c.ReadTimeout
	}
	cfg.ProtocolLogger = protocol
	cfg.Logger = c.Logger
	return cfg
}

func (c *Config) hostCommandConfig(protocol log.Logger) hostcmd.Config {
	cfg := hostcmd.DefaultConfig(c.Host)
	cfg.Port = c.HostCommandPort
	cfg.TLS = c.TLS
	cfg.Username = c.Username
	cfg.Password = c.Password
	if c.ConnectTimeout > 0 {
		cfg.ConnectTimeout = c.ConnectTimeout
	}
	if c.ReadTimeout > 0 {
		cfg.ReadTimeout = c.ReadTimeout
	}
	cfg.ProtocolLogger = protocol
	cfg.Logger = c.Logger
	return cfg
}

func (c *Config) eventsConfig(protocol log.Logger) events.Config {
	cfg := events.DefaultConfig(c.Host)
	cfg.Client = c.hostCommandConfig(protocol)
	switch {
	case c.KeepAlive < 0:
		cfg.DisableKeepAlive = true
	case c.KeepAlive > 0:
		cfg.KeepAlive.Interval = c.KeepAlive
	}
	cfg.Logger = c.Logger
	return cfg
}
