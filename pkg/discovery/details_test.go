package discovery

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vantage-controls/vantage-go/internal/mock"
	"github.com/vantage-controls/vantage-go/pkg/clienterr"
	"github.com/vantage-controls/vantage-go/pkg/vantage"
)

func newProbeServer(t *testing.T, username, password string) *mock.HostCommandServer {
	t.Helper()
	srv, err := mock.NewHostCommandServer()
	require.NoError(t, err)
	srv.Username = username
	srv.Password = password
	srv.Handle("VERSION", mock.Reply("R:VERSION 4.5.1"))
	t.Cleanup(func() { srv.Close() })
	return srv
}

// closedPort returns a local port with nothing listening on it.
func closedPort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return port
}

func probeConfig(t *testing.T, srv *mock.HostCommandServer) ProbeConfig {
	p := DefaultProbeConfig(srv.Host())
	p.Port = srv.Port()
	p.TLSPort = closedPort(t)
	p.Timeout = time.Second
	return p
}

func TestGetControllerDetails(t *testing.T) {
	ctx := context.Background()

	t.Run("open controller", func(t *testing.T) {
		srv := newProbeServer(t, "", "")
		details, err := GetControllerDetails(ctx, probeConfig(t, srv))
		require.NoError(t, err)
		assert.Equal(t, ControllerDetails{Host: srv.Host(), SupportsTLS: false, RequiresAuth: false}, details)
	})

	t.Run("login required", func(t *testing.T) {
		srv := newProbeServer(t, "admin", "secret")
		details, err := GetControllerDetails(ctx, probeConfig(t, srv))
		require.NoError(t, err)
		assert.True(t, details.RequiresAuth)
		assert.False(t, details.SupportsTLS)
	})

	t.Run("unreachable", func(t *testing.T) {
		p := DefaultProbeConfig("127.0.0.1")
		p.Port = closedPort(t)
		p.TLSPort = closedPort(t)
		p.Timeout = time.Second
		_, err := GetControllerDetails(ctx, p)
		assert.ErrorIs(t, err, clienterr.ErrConnection)
	})
}

func TestValidateCredentials(t *testing.T) {
	ctx := context.Background()
	srv := newProbeServer(t, "admin", "secret")
	p := probeConfig(t, srv)

	ok, err := ValidateCredentials(ctx, p, false, "admin", "secret")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ValidateCredentials(ctx, p, false, "admin", "wrong")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = ValidateCredentials(ctx, p, true, "admin", "secret")
	assert.ErrorIs(t, err, clienterr.ErrConnection)
}

func TestGetSerialFromController(t *testing.T) {
	srv, err := mock.NewACIServer()
	require.NoError(t, err)
	t.Cleanup(func() { srv.Close() })

	served := false
	srv.Handle("IConfiguration.OpenFilter", func(string) string { return "1" })
	srv.Handle("IConfiguration.GetFilterResults", func(string) string {
		if served {
			return ""
		}
		served = true
		return `<Object><Master VID="1"><Name>Main</Name><SerialNumber>87654321</SerialNumber></Master></Object>`
	})
	srv.Handle("IConfiguration.CloseFilter", func(string) string { return "true" })

	cfg := vantage.DefaultConfig(srv.Host())
	cfg.TLS = false
	cfg.ACIPort = srv.Port()
	cfg.ReadTimeout = time.Second

	serial, err := GetSerialFromController(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, 87654321, serial)
}
