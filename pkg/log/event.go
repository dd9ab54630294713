package log

import (
	"strings"
	"time"
)

// MaxLogLineSize is the maximum line length stored in an event (4 KB).
// Longer lines (ACI responses can be large) are truncated.
const MaxLogLineSize = 4096

// Event represents a protocol capture event.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// ConnectionID uniquely identifies the connection (UUID).
	ConnectionID string `cbor:"2,keyasint"`

	// Direction indicates data flow.
	Direction Direction `cbor:"3,keyasint"`

	// Service is the controller service the connection talks to.
	Service Service `cbor:"4,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"5,keyasint"`

	// RemoteAddr is the peer address (host:port).
	RemoteAddr string `cbor:"6,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Line        *LineEvent        `cbor:"7,keyasint,omitempty"`
	StateChange *StateChangeEvent `cbor:"8,keyasint,omitempty"`
	Error       *ErrorEventData   `cbor:"9,keyasint,omitempty"`
}

// Direction indicates the direction of data flow.
type Direction uint8

const (
	// DirectionIn indicates data read from the controller.
	DirectionIn Direction = 0
	// DirectionOut indicates data written to the controller.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Service identifies which controller service a connection talks to.
type Service uint8

const (
	// ServiceHostCommand is the line-oriented Host Command service.
	ServiceHostCommand Service = 0
	// ServiceACI is the XML configuration service.
	ServiceACI Service = 1
)

// String returns the service name.
func (s Service) String() string {
	switch s {
	case ServiceHostCommand:
		return "HOSTCMD"
	case ServiceACI:
		return "ACI"
	default:
		return "UNKNOWN"
	}
}

// ParseService parses a service name as returned by String.
func ParseService(s string) (Service, bool) {
	switch strings.ToUpper(s) {
	case "HOSTCMD":
		return ServiceHostCommand, true
	case "ACI":
		return ServiceACI, true
	}
	return 0, false
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryLine indicates a protocol line or document.
	CategoryLine Category = 0
	// CategoryState indicates a connection state change.
	CategoryState Category = 1
	// CategoryError indicates an error event.
	CategoryError Category = 2
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryLine:
		return "LINE"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// LineEvent captures one line (Host Command) or document (ACI).
type LineEvent struct {
	// Size is the original length in bytes.
	Size int `cbor:"1,keyasint"`

	// Text is the line with its terminator stripped (may be truncated).
	Text string `cbor:"2,keyasint,omitempty"`

	// Truncated indicates if Text was truncated.
	Truncated bool `cbor:"3,keyasint,omitempty"`
}

// StateChangeEvent captures connection lifecycle.
type StateChangeEvent struct {
	// OldState is the previous state (may be empty).
	OldState string `cbor:"1,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"2,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"3,keyasint,omitempty"`
}

// ErrorEventData captures errors.
type ErrorEventData struct {
	// Message is the error message.
	Message string `cbor:"1,keyasint"`

	// Code is the Host Command error code (if applicable).
	Code *int `cbor:"2,keyasint,omitempty"`

	// Context describes what operation was being performed.
	Context string `cbor:"3,keyasint,omitempty"`
}

// NewLineEvent builds a line event, trimming the terminator and truncating
// text longer than MaxLogLineSize.
func NewLineEvent(connID string, svc Service, dir Direction, text string) Event {
	text = strings.TrimRight(text, "\r\n")
	size := len(text)
	truncated := false
	if size > MaxLogLineSize {
		text = text[:MaxLogLineSize]
		truncated = true
	}

	return Event{
		Timestamp:    time.Now(),
		ConnectionID: connID,
		Direction:    dir,
		Service:      svc,
		Category:     CategoryLine,
		Line: &LineEvent{
			Size:      size,
			Text:      text,
			Truncated: truncated,
		},
	}
}
