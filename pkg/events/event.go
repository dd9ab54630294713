package events

import (
	"strconv"
	"strings"

	"github.com/vantage-controls/vantage-go/pkg/clienterr"
	"github.com/vantage-controls/vantage-go/pkg/hostcmd"
)

// EventType identifies the kind of an Event.
type EventType uint8

const (
	// EventStatus is a STATUS push: "S:<TYPE> <vid> <args...>".
	EventStatus EventType = iota

	// EventEnhancedLog is an enhanced log push. Interface status lines
	// start with the object vid, "EL: <vid> <Interface.Method> <args...>",
	// and carry no kind; other lines are "EL: <kind> <log...>".
	EventEnhancedLog

	// EventLog is a plain log push: "L: <log>".
	EventLog

	// EventConnected is emitted once the first connection is up.
	EventConnected

	// EventDisconnected is emitted when the link drops.
	EventDisconnected

	// EventReconnected is emitted after a reconnect has replayed all
	// registrations.
	EventReconnected
)

// String returns the event type name.
func (t EventType) String() string {
	switch t {
	case EventStatus:
		return "STATUS"
	case EventEnhancedLog:
		return "ENHANCED_LOG"
	case EventLog:
		return "LOG"
	case EventConnected:
		return "CONNECTED"
	case EventDisconnected:
		return "DISCONNECTED"
	case EventReconnected:
		return "RECONNECTED"
	default:
		return "UNKNOWN"
	}
}

// LogTypeLog is the enhanced-log kind under which plain "L:" lines are
// delivered.
const LogTypeLog = "LOG"

// Event is one push notification or connection lifecycle change.
type Event struct {
	Type EventType

	// StatusType, VID and Args are set for EventStatus.
	StatusType string
	VID        int
	Args       []string

	// LogType and Log are set for EventEnhancedLog and EventLog. LogType is
	// empty for interface status lines.
	LogType string
	Log     string

	// Line is the raw push line. Empty for lifecycle events.
	Line string
}

// ParseLine parses a push line. Lines with other prefixes, or malformed
// ones, return a ProtocolError.
func ParseLine(line string) (Event, error) {
	switch {
	case strings.HasPrefix(line, hostcmd.PrefixStatus):
		return parseStatus(line)
	case strings.HasPrefix(line, hostcmd.PrefixEnhancedLog):
		return parseEnhancedLog(line)
	case strings.HasPrefix(line, hostcmd.PrefixLog):
		return Event{
			Type:    EventLog,
			LogType: LogTypeLog,
			Log:     strings.TrimSpace(line[len(hostcmd.PrefixLog):]),
			Line:    line,
		}, nil
	default:
		return Event{}, &clienterr.ProtocolError{Op: "parse event", Message: "not an event line: " + strconv.Quote(line)}
	}
}

func parseStatus(line string) (Event, error) {
	tokens := hostcmd.Tokenize(line[len(hostcmd.PrefixStatus):])
	if len(tokens) < 2 {
		return Event{}, &clienterr.ProtocolError{Op: "parse status", Message: "short status line " + strconv.Quote(line)}
	}

	vid, err := strconv.Atoi(tokens[1])
	if err != nil {
		return Event{}, &clienterr.ProtocolError{Op: "parse status", Message: "invalid vid " + strconv.Quote(tokens[1])}
	}

	return Event{
		Type:       EventStatus,
		StatusType: strings.ToUpper(tokens[0]),
		VID:        vid,
		Args:       tokens[2:],
		Line:       line,
	}, nil
}

func parseEnhancedLog(line string) (Event, error) {
	rest := strings.TrimSpace(line[len(hostcmd.PrefixEnhancedLog):])
	if rest == "" {
		return Event{}, &clienterr.ProtocolError{Op: "parse enhanced log", Message: "empty log line " + strconv.Quote(line)}
	}

	first, log, _ := strings.Cut(rest, " ")
	if _, err := strconv.Atoi(first); err == nil {
		return Event{Type: EventEnhancedLog, Log: rest, Line: line}, nil
	}

	return Event{
		Type:    EventEnhancedLog,
		LogType: strings.ToUpper(first),
		Log:     strings.TrimSpace(log),
		Line:    line,
	}, nil
}
