// Package log provides protocol capture for the Host Command and ACI clients.
//
// This package defines the Logger interface and Event types for recording
// every line written to or read from a controller connection, plus
// connection state changes and errors. It is separate from operational
// logging (slog): capture produces a complete machine-readable trace that
// can be replayed or filtered after the fact.
//
// # Basic Usage
//
//	// For development: log to console via slog
//	cfg.ProtocolLogger = log.NewSlogAdapter(slog.Default())
//
//	// For field captures: write to a binary file
//	cfg.ProtocolLogger, _ = log.NewFileLogger("/tmp/controller.vlog")
//
//	// Both: use MultiLogger
//	cfg.ProtocolLogger = log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    fileLogger,
//	)
//
// # File Format
//
// Capture files are a concatenation of CBOR-encoded events (.vlog). The
// vantage-log tool views and filters them.
package log
