package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/sourcegraph/conc"

	"github.com/vantage-controls/vantage-go/pkg/events"
	"github.com/vantage-controls/vantage-go/pkg/interfaces"
	"github.com/vantage-controls/vantage-go/pkg/model"
)

// Enhanced-log kinds carrying interface status.
var interfaceStatusKinds = []string{"STATUS", "STATUSEX"}

// Controller errors.
var (
	ErrNoObjectSource = errors.New("controller has no object source")
	ErrNoEventSource  = errors.New("controller has no event source")
)

// Hooks customize a Controller for one object category. All hooks are
// optional and run outside the controller's lock.
type Hooks[T model.Object] struct {
	// FetchState returns the live state of obj as field values.
	FetchState func(ctx context.Context, obj T) (map[string]any, error)

	// HandleStatus receives STATUS events for managed objects.
	HandleStatus func(obj T, statusType string, args []string)

	// HandleInterfaceStatus receives interface status for managed objects
	// whose method is one of the declared interface status types.
	HandleInterfaceStatus func(obj T, status interfaces.Response)
}

// Definition describes one object category.
type Definition[T model.Object] struct {
	// Name identifies the controller in logs.
	Name string

	// Types are the element names fetched from the configuration service.
	Types []string

	// StatusTypes are the STATUS types followed for live state.
	StatusTypes []string

	// InterfaceStatusTypes are the interface methods, such as
	// "Load.GetLevel", followed through the enhanced log.
	InterfaceStatusTypes []string

	Hooks Hooks[T]
}

// Deps are the collaborators shared by all controllers.
type Deps struct {
	// Objects enumerates configuration objects.
	Objects ObjectSource

	// Events delivers live status. Required only by controllers that
	// follow live state.
	Events EventSource

	// Invoker issues object interface calls for state fetches.
	Invoker interfaces.Invoker

	// Scheduler runs Scheduled handlers (default: a conc.WaitGroup).
	Scheduler Scheduler

	// Logger receives operational logs (optional).
	Logger *slog.Logger
}

// Controller caches the objects of one category and keeps them in sync.
type Controller[T model.Object] struct {
	def       Definition[T]
	objects   ObjectSource
	events    EventSource
	scheduler Scheduler
	logger    *slog.Logger

	// initMu serializes Initialize runs; subMu serializes subscribing to
	// live updates.
	initMu sync.Mutex
	subMu  sync.Mutex

	mu            sync.Mutex
	items         map[int]T
	subs          []*subscription[T]
	idSubs        map[int][]*subscription[T]
	state         State
	subscribed    bool
	unsubscribers []func()
}

// New creates a controller for def.
func New[T model.Object](def Definition[T], deps Deps) *Controller[T] {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	scheduler := deps.Scheduler
	if scheduler == nil {
		scheduler = &conc.WaitGroup{}
	}

	return &Controller[T]{
		def:       def,
		objects:   deps.Objects,
		events:    deps.Events,
		scheduler: scheduler,
		logger:    logger.With("controller", def.Name),
		items:     make(map[int]T),
		idSubs:    make(map[int][]*subscription[T]),
	}
}

// Name returns the controller name.
func (c *Controller[T]) Name() string {
	return c.def.Name
}

// Types returns the element names this controller manages.
func (c *Controller[T]) Types() []string {
	return slices.Clone(c.def.Types)
}

// Stateful reports whether the controller manages live state.
func (c *Controller[T]) Stateful() bool {
	return c.def.Hooks.FetchState != nil || c.followsLiveState()
}

func (c *Controller[T]) followsLiveState() bool {
	return len(c.def.StatusTypes) > 0 || len(c.def.InterfaceStatusTypes) > 0
}

// State returns the reconciliation state.
func (c *Controller[T]) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Initialized reports whether Initialize has completed at least once.
func (c *Controller[T]) Initialized() bool {
	return c.State() != StateUninitialized
}

// SubscribedToStateChanges reports whether live updates are followed. Once
// set it stays set for the life of the controller; only Close clears it.
func (c *Controller[T]) SubscribedToStateChanges() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.subscribed
}

// Initialize reconciles the cache against the configuration service:
// new objects are added (and their state fetched when fetchState is set),
// changed objects are updated in place, and missing ones removed. With
// fetchState a stateful controller then follows live updates.
func (c *Controller[T]) Initialize(ctx context.Context, fetchState bool) error {
	if c.objects == nil {
		return ErrNoObjectSource
	}

	c.initMu.Lock()
	defer c.initMu.Unlock()

	prev := c.KnownIDs()
	seen := make(map[int]struct{})

	for obj, err := range c.objects.GetObjects(ctx, c.def.Types...) {
		if err != nil {
			return fmt.Errorf("initialize %s: %w", c.def.Name, err)
		}
		item, ok := obj.(T)
		if !ok {
			c.logger.Warn("ignoring object of unexpected type", "vid", obj.ID(), "type", obj.ObjectType())
			continue
		}
		seen[item.ID()] = struct{}{}

		added, changed, cached := c.merge(item)
		switch {
		case added:
			c.Emit(ObjectAdded, item, EventData{})
			if fetchState && c.Stateful() {
				if err := c.fetchObjectState(ctx, item); err != nil {
					return err
				}
			}
		case len(changed) > 0:
			c.Emit(ObjectUpdated, cached, EventData{AttrsChanged: changed})
		}
	}

	for _, vid := range prev {
		if _, ok := seen[vid]; ok {
			continue
		}
		c.mu.Lock()
		obj, ok := c.items[vid]
		delete(c.items, vid)
		c.mu.Unlock()
		if ok {
			c.Emit(ObjectDeleted, obj, EventData{})
		}
	}

	if fetchState && c.Len() > 0 {
		if err := c.SubscribeToStateChanges(ctx); err != nil {
			return err
		}
	}

	c.mu.Lock()
	first := c.state == StateUninitialized
	if first {
		c.state = StateInitialized
	} else {
		c.state = StateReinitialized
	}
	n := len(c.items)
	c.mu.Unlock()

	if first {
		c.logger.Info("initialized", "objects", n)
	} else {
		c.logger.Info("reinitialized", "objects", n)
	}
	return nil
}

// merge inserts item if its vid is unknown. Otherwise the changed
// configuration fields, and mtime, are copied onto a clone of the cached
// instance, which replaces it and is returned. Live state on the cached
// instance is kept.
func (c *Controller[T]) merge(item T) (added bool, changed []string, cached T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cached, known := c.items[item.ID()]
	if !known {
		c.items[item.ID()] = item
		return true, nil, item
	}

	changed = model.Diff(cached, item)
	if len(changed) == 0 {
		return false, nil, cached
	}
	next := model.Clone(cached)
	for _, name := range changed {
		if err := model.Copy(next, item, name); err != nil {
			c.logger.Warn("object has no attribute", "vid", item.ID(), "attr", name, "error", err)
		}
	}
	_ = model.Copy(next, item, model.FieldMTime)
	c.items[item.ID()] = next
	return false, changed, next
}

// FetchFullState fetches the state of every cached object. It does nothing
// for stateless controllers.
func (c *Controller[T]) FetchFullState(ctx context.Context) error {
	if !c.Stateful() {
		return nil
	}
	for _, obj := range c.All() {
		if err := c.fetchObjectState(ctx, obj); err != nil {
			return err
		}
	}
	c.logger.Info("fetched state")
	return nil
}

// FetchObjectState fetches the state of one cached object.
func (c *Controller[T]) FetchObjectState(ctx context.Context, vid int) error {
	obj, ok := c.Get(vid)
	if !ok {
		return fmt.Errorf("%s: unknown object %d", c.def.Name, vid)
	}
	return c.fetchObjectState(ctx, obj)
}

func (c *Controller[T]) fetchObjectState(ctx context.Context, obj T) error {
	if c.def.Hooks.FetchState == nil {
		return nil
	}
	state, err := c.def.Hooks.FetchState(ctx, obj)
	if err != nil {
		return fmt.Errorf("fetch state of %s %d: %w", c.def.Name, obj.ID(), err)
	}
	c.UpdateState(obj.ID(), state)
	return nil
}

// SubscribeToStateChanges starts the event stream and registers for the
// controller's STATUS types and, when it follows interface status, the
// STATUS and STATUSEX enhanced logs. It takes effect once; later calls do
// nothing.
func (c *Controller[T]) SubscribeToStateChanges(ctx context.Context) error {
	c.subMu.Lock()
	defer c.subMu.Unlock()

	if c.SubscribedToStateChanges() || !c.followsLiveState() {
		return nil
	}
	if c.events == nil {
		return ErrNoEventSource
	}

	if err := c.events.Start(ctx); err != nil {
		return fmt.Errorf("%s: start event stream: %w", c.def.Name, err)
	}

	var unsubs []func()
	rollback := func() {
		for _, u := range unsubs {
			u()
		}
	}

	if len(c.def.StatusTypes) > 0 {
		unsub, err := c.events.SubscribeStatus(ctx, c.handleEvent, c.def.StatusTypes...)
		if err != nil {
			return fmt.Errorf("%s: subscribe status: %w", c.def.Name, err)
		}
		unsubs = append(unsubs, unsub)
	}

	if len(c.def.InterfaceStatusTypes) > 0 {
		unsub, err := c.events.SubscribeEnhancedLog(ctx, c.handleEvent, interfaceStatusKinds...)
		if err != nil {
			rollback()
			return fmt.Errorf("%s: subscribe enhanced log: %w", c.def.Name, err)
		}
		unsubs = append(unsubs, unsub)
	}

	c.mu.Lock()
	c.subscribed = true
	c.unsubscribers = unsubs
	c.mu.Unlock()

	c.logger.Info("subscribed to state changes")
	return nil
}

// Subscribe registers h for object events and returns a func that removes
// exactly this registration. With WithIDs the handler only sees those
// objects; with WithEvents only those event types.
func (c *Controller[T]) Subscribe(h Handler[T], opts ...SubscribeOption) func() {
	var o subscribeOptions
	for _, opt := range opts {
		opt(&o)
	}
	sub := &subscription[T]{handler: h, events: slices.Clone(o.events)}
	ids := slices.Clone(o.ids)

	c.mu.Lock()
	if len(ids) == 0 {
		c.subs = append(c.subs, sub)
	} else {
		for _, vid := range ids {
			c.idSubs[vid] = append(c.idSubs[vid], sub)
		}
	}
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if len(ids) == 0 {
				c.subs = removeSub(c.subs, sub)
				return
			}
			for _, vid := range ids {
				c.idSubs[vid] = removeSub(c.idSubs[vid], sub)
				if len(c.idSubs[vid]) == 0 {
					delete(c.idSubs, vid)
				}
			}
		})
	}
}

func removeSub[T model.Object](subs []*subscription[T], sub *subscription[T]) []*subscription[T] {
	if i := slices.Index(subs, sub); i >= 0 {
		return slices.Delete(subs, i, i+1)
	}
	return subs
}

// Emit delivers an event to the global subscribers and to those registered
// for obj's vid, skipping handlers filtered to other event types.
func (c *Controller[T]) Emit(event EventType, obj T, data EventData) {
	c.mu.Lock()
	candidates := slices.Concat(c.subs, c.idSubs[obj.ID()])
	c.mu.Unlock()

	for _, sub := range candidates {
		if !sub.wants(event) {
			continue
		}
		fn := sub.handler.fn
		if sub.handler.scheduled {
			c.scheduler.Go(func() { fn(event, obj, data) })
		} else {
			fn(event, obj, data)
		}
	}
}

// Wait blocks until scheduled handlers have finished, when the scheduler
// supports waiting.
func (c *Controller[T]) Wait() {
	if w, ok := c.scheduler.(interface{ Wait() }); ok {
		w.Wait()
	}
}

// UpdateState applies field values to a cached object and emits one
// ObjectUpdated naming the fields that actually changed. Unknown vids are
// ignored; unknown or mistyped fields are logged and skipped.
//
// Changes are applied to a clone that replaces the cached instance, so an
// object returned by Get or a query is never written after it was handed
// out.
func (c *Controller[T]) UpdateState(vid int, state map[string]any) []string {
	c.mu.Lock()
	cur, ok := c.items[vid]
	if !ok {
		c.mu.Unlock()
		return nil
	}

	obj := model.Clone(cur)
	f := model.FieldsOf(obj)
	var changed []string
	for _, key := range slices.Sorted(maps.Keys(state)) {
		value := state[key]
		equal, err := f.Equal(obj, key, value)
		if err != nil {
			c.logger.Warn("object has no attribute", "vid", vid, "attr", key)
			continue
		}
		if equal {
			continue
		}
		if err := f.Set(obj, key, value); err != nil {
			c.logger.Warn("cannot set attribute", "vid", vid, "attr", key, "error", err)
			continue
		}
		changed = append(changed, key)
	}
	if len(changed) > 0 {
		c.items[vid] = obj
	}
	c.mu.Unlock()

	if len(changed) > 0 {
		c.Emit(ObjectUpdated, obj, EventData{AttrsChanged: changed})
	}
	return changed
}

// handleEvent routes live events to the hooks. Events for vids not in the
// cache are dropped, including objects added after the last Initialize.
func (c *Controller[T]) handleEvent(ev events.Event) {
	switch ev.Type {
	case events.EventStatus:
		obj, ok := c.Get(ev.VID)
		if !ok {
			return
		}
		if h := c.def.Hooks.HandleStatus; h != nil {
			h(obj, ev.StatusType, ev.Args)
		}

	case events.EventEnhancedLog:
		status, err := interfaces.FromStatus(ev.Log)
		if err != nil {
			c.logger.Debug("ignoring unparseable interface status", "log", ev.Log, "error", err)
			return
		}
		obj, ok := c.Get(status.VID)
		if !ok {
			return
		}
		if !slices.Contains(c.def.InterfaceStatusTypes, status.Method) {
			return
		}
		if h := c.def.Hooks.HandleInterfaceStatus; h != nil {
			h(obj, status)
		}
	}
}

// Close drops the controller's event subscriptions and clears
// SubscribedToStateChanges, so a later SubscribeToStateChanges registers
// again. The cache is kept.
func (c *Controller[T]) Close() {
	c.subMu.Lock()
	defer c.subMu.Unlock()

	c.mu.Lock()
	unsubs := c.unsubscribers
	c.unsubscribers = nil
	c.subscribed = false
	c.mu.Unlock()

	for _, u := range unsubs {
		u()
	}
}
