package discovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/vantage-controls/vantage-go/pkg/clienterr"
	"github.com/vantage-controls/vantage-go/pkg/hostcmd"
	"github.com/vantage-controls/vantage-go/pkg/vantage"
)

// DefaultProbeTimeout bounds each connection attempt of a probe.
const DefaultProbeTimeout = 5 * time.Second

// ControllerDetails describes how to talk to a controller.
type ControllerDetails struct {
	Host         string
	SupportsTLS  bool
	RequiresAuth bool
}

// ProbeConfig configures connection probes against the Host Command
// service.
type ProbeConfig struct {
	// Host is the controller hostname or IP address.
	Host string

	// Port and TLSPort override the default plain and TLS ports.
	Port    int
	TLSPort int

	// Timeout bounds each attempt (default: 5s).
	Timeout time.Duration

	// Logger receives operational logs (optional).
	Logger *slog.Logger
}

// DefaultProbeConfig returns a probe configuration for host.
func DefaultProbeConfig(host string) ProbeConfig {
	return ProbeConfig{Host: host, Timeout: DefaultProbeTimeout}
}

func (p ProbeConfig) client(tls bool, username, password string) (*hostcmd.Client, error) {
	cfg := hostcmd.DefaultConfig(p.Host)
	cfg.TLS = tls
	cfg.Port = p.Port
	if tls {
		cfg.Port = p.TLSPort
	}
	if p.Timeout > 0 {
		cfg.ConnectTimeout = p.Timeout
		cfg.ReadTimeout = p.Timeout
	}
	cfg.Username = username
	cfg.Password = password
	cfg.Logger = p.Logger
	return hostcmd.NewClient(cfg)
}

// GetControllerDetails connects with TLS, falling back to plain text, and
// reports which worked and whether commands need a login.
func GetControllerDetails(ctx context.Context, p ProbeConfig) (ControllerDetails, error) {
	details := ControllerDetails{Host: p.Host, SupportsTLS: true}

	requiresAuth, err := IsAuthRequired(ctx, p, true)
	if errors.Is(err, clienterr.ErrConnection) {
		details.SupportsTLS = false
		requiresAuth, err = IsAuthRequired(ctx, p, false)
	}
	if err != nil {
		return ControllerDetails{}, fmt.Errorf("probe %s: %w", p.Host, err)
	}

	details.RequiresAuth = requiresAuth
	return details, nil
}

// IsAuthRequired reports whether the controller rejects commands before
// LOGIN.
func IsAuthRequired(ctx context.Context, p ProbeConfig, tls bool) (bool, error) {
	client, err := p.client(tls, "", "")
	if err != nil {
		return false, err
	}
	defer client.Close()

	_, err = client.Command(ctx, "VERSION")
	switch {
	case err == nil:
		return false, nil
	case errors.Is(err, clienterr.ErrLoginRequired):
		return true, nil
	default:
		return false, err
	}
}

// ValidateCredentials reports whether the controller accepts username and
// password. A rejected login is not an error.
func ValidateCredentials(ctx context.Context, p ProbeConfig, tls bool, username, password string) (bool, error) {
	client, err := p.client(tls, username, password)
	if err != nil {
		return false, err
	}
	defer client.Close()

	_, err = client.Command(ctx, "VERSION")
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, clienterr.ErrLoginFailed):
		return false, nil
	default:
		return false, err
	}
}

// GetSerialFromController reads the serial number of the first master
// from the configuration service.
func GetSerialFromController(ctx context.Context, cfg vantage.Config) (int, error) {
	v, err := vantage.New(cfg)
	if err != nil {
		return 0, err
	}
	defer v.Close()

	if err := v.Masters.Initialize(ctx, false); err != nil {
		return 0, err
	}
	masters := v.Masters.All()
	if len(masters) == 0 {
		return 0, ErrNoMaster
	}
	return masters[0].SerialNumber, nil
}
