package log

import (
	"context"
	"log/slog"
)

// SlogAdapter mirrors capture events into an slog.Logger. Lines and state
// changes are logged at Debug, errors at Warn.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter returns an adapter writing to logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes event.
func (a *SlogAdapter) Log(event Event) {
	level := slog.LevelDebug
	msg := "protocol"
	attrs := make([]slog.Attr, 0, 8)
	attrs = append(attrs,
		slog.String("conn_id", event.ConnectionID),
		slog.String("service", event.Service.String()),
	)
	if event.RemoteAddr != "" {
		attrs = append(attrs, slog.String("remote_addr", event.RemoteAddr))
	}

	switch {
	case event.Line != nil:
		msg = "protocol line"
		attrs = append(attrs, slog.String("direction", event.Direction.String()), slog.String("text", event.Line.Text))
		if event.Line.Truncated {
			attrs = append(attrs, slog.Int("size", event.Line.Size))
		}

	case event.StateChange != nil:
		msg = "protocol state"
		attrs = append(attrs, slog.String("state", event.StateChange.NewState))
		if event.StateChange.OldState != "" {
			attrs = append(attrs, slog.String("previous", event.StateChange.OldState))
		}
		if event.StateChange.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.StateChange.Reason))
		}

	case event.Error != nil:
		level = slog.LevelWarn
		msg = "protocol error"
		attrs = append(attrs, slog.String("error", event.Error.Message))
		if event.Error.Code != nil {
			attrs = append(attrs, slog.Int("error_code", *event.Error.Code))
		}
		if event.Error.Context != "" {
			attrs = append(attrs, slog.String("op", event.Error.Context))
		}
	}

	a.logger.LogAttrs(context.Background(), level, msg, attrs...)
}

var _ Logger = (*SlogAdapter)(nil)
