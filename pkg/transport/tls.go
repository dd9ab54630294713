package transport

import (
	"crypto/tls"
)

// NewInsecureTLSConfig returns the TLS configuration used when the caller
// supplies none. Controllers present self-signed certificates, so chain
// verification is skipped.
func NewInsecureTLSConfig() *tls.Config {
	return &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: true,
	}
}

// tlsConfigFor returns the effective client TLS configuration for host.
func tlsConfigFor(cfg *tls.Config, host string) *tls.Config {
	if cfg == nil {
		cfg = NewInsecureTLSConfig()
	} else {
		cfg = cfg.Clone()
	}
	if cfg.ServerName == "" && !cfg.InsecureSkipVerify {
		cfg.ServerName = host
	}
	return cfg
}
