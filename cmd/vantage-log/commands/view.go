// Package commands implements the vantage-log CLI commands.
package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/vantage-controls/vantage-go/pkg/log"
)

const timeFormat = "2006-01-02T15:04:05.000000Z"

// RunView prints the events matching filter in human-readable form.
func RunView(path string, filter log.Filter, w io.Writer) error {
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	for event, err := range reader.All() {
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		formatEvent(w, event)
	}
	return nil
}

// formatEvent writes one event. Lines are printed on the header line;
// state changes and errors get indented detail lines.
func formatEvent(w io.Writer, event log.Event) {
	ts := event.Timestamp.UTC().Format(timeFormat)
	connID := shortenConnID(event.ConnectionID)

	switch {
	case event.Line != nil:
		arrow := "<-"
		if event.Direction == log.DirectionOut {
			arrow = "->"
		}
		text := event.Line.Text
		if event.Line.Truncated {
			text += fmt.Sprintf(" ... (%d bytes)", event.Line.Size)
		}
		fmt.Fprintf(w, "%s [conn:%s] %-7s %s %s\n", ts, connID, event.Service, arrow, text)

	case event.StateChange != nil:
		fmt.Fprintf(w, "%s [conn:%s] %-7s STATE ", ts, connID, event.Service)
		if event.StateChange.OldState != "" {
			fmt.Fprintf(w, "%s -> %s", event.StateChange.OldState, event.StateChange.NewState)
		} else {
			fmt.Fprintf(w, "-> %s", event.StateChange.NewState)
		}
		if event.RemoteAddr != "" {
			fmt.Fprintf(w, " (%s)", event.RemoteAddr)
		}
		fmt.Fprintln(w)
		if event.StateChange.Reason != "" {
			fmt.Fprintf(w, "  Reason: %s\n", event.StateChange.Reason)
		}

	case event.Error != nil:
		fmt.Fprintf(w, "%s [conn:%s] %-7s ERROR %s\n", ts, connID, event.Service, event.Error.Message)
		if event.Error.Code != nil {
			fmt.Fprintf(w, "  Code: %d\n", *event.Error.Code)
		}
		if event.Error.Context != "" {
			fmt.Fprintf(w, "  Context: %s\n", event.Error.Context)
		}

	default:
		fmt.Fprintf(w, "%s [conn:%s] %-7s %s\n", ts, connID, event.Service, event.Category)
	}
}

// shortenConnID returns the first 8 characters of the connection ID.
func shortenConnID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

// ParseDirectionFlag parses a direction flag value.
func ParseDirectionFlag(s string) (log.Direction, error) {
	switch strings.ToLower(s) {
	case "in":
		return log.DirectionIn, nil
	case "out":
		return log.DirectionOut, nil
	}
	return 0, fmt.Errorf("invalid direction: %s (use in, out)", s)
}

// ParseServiceFlag parses a service flag value.
func ParseServiceFlag(s string) (log.Service, error) {
	svc, ok := log.ParseService(s)
	if !ok {
		return 0, fmt.Errorf("invalid service: %s (use hostcmd, aci)", s)
	}
	return svc, nil
}

// ParseCategoryFlag parses a category flag value.
func ParseCategoryFlag(s string) (log.Category, error) {
	switch strings.ToLower(s) {
	case "line":
		return log.CategoryLine, nil
	case "state":
		return log.CategoryState, nil
	case "error":
		return log.CategoryError, nil
	}
	return 0, fmt.Errorf("invalid category: %s (use line, state, error)", s)
}
