package controller

import (
	"context"
	"iter"
	"slices"

	"github.com/vantage-controls/vantage-go/pkg/events"
	"github.com/vantage-controls/vantage-go/pkg/model"
)

// EventType identifies an object change.
type EventType uint8

const (
	// ObjectAdded is emitted when an object first appears.
	ObjectAdded EventType = iota + 1

	// ObjectUpdated is emitted when configuration or state changes.
	ObjectUpdated

	// ObjectDeleted is emitted when an object disappears.
	ObjectDeleted
)

// String returns the event type name.
func (e EventType) String() string {
	switch e {
	case ObjectAdded:
		return "OBJECT_ADDED"
	case ObjectUpdated:
		return "OBJECT_UPDATED"
	case ObjectDeleted:
		return "OBJECT_DELETED"
	default:
		return "UNKNOWN"
	}
}

// EventData carries event metadata.
type EventData struct {
	// AttrsChanged names the changed fields of an ObjectUpdated event.
	AttrsChanged []string
}

// State is the reconciliation state of a controller.
type State uint8

const (
	// StateUninitialized means Initialize has not completed.
	StateUninitialized State = iota

	// StateInitialized means the first Initialize completed.
	StateInitialized

	// StateReinitialized means Initialize completed more than once.
	StateReinitialized
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "UNINITIALIZED"
	case StateInitialized:
		return "INITIALIZED"
	case StateReinitialized:
		return "REINITIALIZED"
	default:
		return "UNKNOWN"
	}
}

// ObjectSource enumerates configuration objects. Implemented by
// *aci.Client.
type ObjectSource interface {
	GetObjects(ctx context.Context, types ...string) iter.Seq2[model.Object, error]
}

// EventSource delivers live status traffic. Implemented by
// *events.EventStream.
type EventSource interface {
	Start(ctx context.Context) error
	SubscribeStatus(ctx context.Context, h events.Handler, types ...string) (func(), error)
	SubscribeEnhancedLog(ctx context.Context, h events.Handler, kinds ...string) (func(), error)
}

// Scheduler runs scheduled handlers. conc.WaitGroup and conc pools
// satisfy it.
type Scheduler interface {
	Go(func())
}

// Callback receives object events.
type Callback[T model.Object] func(event EventType, obj T, data EventData)

// Handler is a Callback tagged with how it is run: inline during Emit, or
// handed to the controller's Scheduler.
type Handler[T model.Object] struct {
	fn        Callback[T]
	scheduled bool
}

// Immediate runs fn inline, before Emit returns.
func Immediate[T model.Object](fn Callback[T]) Handler[T] {
	return Handler[T]{fn: fn}
}

// Scheduled runs fn on the controller's Scheduler. Scheduled handlers for
// one event are all submitted before the next event is emitted; their
// relative order is not defined.
func Scheduled[T model.Object](fn Callback[T]) Handler[T] {
	return Handler[T]{fn: fn, scheduled: true}
}

// IsScheduled reports whether h runs on the Scheduler.
func (h Handler[T]) IsScheduled() bool {
	return h.scheduled
}

type subscribeOptions struct {
	ids    []int
	events []EventType
}

// SubscribeOption restricts a subscription.
type SubscribeOption func(*subscribeOptions)

// WithIDs restricts a subscription to objects with the given vids.
func WithIDs(ids ...int) SubscribeOption {
	return func(o *subscribeOptions) {
		o.ids = append(o.ids, ids...)
	}
}

// WithEvents restricts a subscription to the given event types.
func WithEvents(types ...EventType) SubscribeOption {
	return func(o *subscribeOptions) {
		o.events = append(o.events, types...)
	}
}

type subscription[T model.Object] struct {
	handler Handler[T]
	events  []EventType
}

func (s *subscription[T]) wants(e EventType) bool {
	return len(s.events) == 0 || slices.Contains(s.events, e)
}
