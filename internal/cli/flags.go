// Package cli holds the connection flags shared by the vantage commands.
package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/vantage-controls/vantage-go/pkg/vantage"
)

// Options are the connection flags registered on a FlagSet.
type Options struct {
	fs *flag.FlagSet

	ConfigFile  string
	Host        string
	Username    string
	Password    string
	NoTLS       bool
	CaptureFile string
	LogLevel    string
}

// Register adds the connection flags to fs.
func Register(fs *flag.FlagSet) *Options {
	o := &Options{fs: fs}
	fs.StringVar(&o.ConfigFile, "config", "", "YAML configuration file")
	fs.StringVar(&o.Host, "host", "", "Controller hostname or IP address")
	fs.StringVar(&o.Username, "username", "", "Controller username")
	fs.StringVar(&o.Password, "password", "", "Controller password")
	fs.BoolVar(&o.NoTLS, "no-tls", false, "Use the unencrypted ports")
	fs.StringVar(&o.CaptureFile, "capture", "", "Record protocol traffic to a .vlog file")
	fs.StringVar(&o.LogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	return o
}

// Config builds the client configuration. Values from -config are loaded
// first; flags given on the command line override them.
func (o *Options) Config() (vantage.Config, error) {
	cfg := vantage.DefaultConfig("")
	if o.ConfigFile != "" {
		loaded, err := vantage.LoadConfig(o.ConfigFile)
		if err != nil {
			return vantage.Config{}, err
		}
		cfg = loaded
	}

	set := make(map[string]bool)
	o.fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if set["host"] || cfg.Host == "" {
		cfg.Host = o.Host
	}
	if set["username"] {
		cfg.Username = o.Username
	}
	if set["password"] {
		cfg.Password = o.Password
	}
	if set["no-tls"] {
		cfg.TLS = !o.NoTLS
	}
	if set["capture"] {
		cfg.CaptureFile = o.CaptureFile
	}

	logger, err := o.NewLogger(os.Stderr)
	if err != nil {
		return vantage.Config{}, err
	}
	cfg.Logger = logger

	if err := cfg.Validate(); err != nil {
		return vantage.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// NewLogger returns a text logger writing to w at the -log-level level.
func (o *Options) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := ParseLevel(o.LogLevel)
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), nil
}

// ParseLevel parses a log level name.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level: %s", s)
}
