package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/vantage-controls/vantage-go/pkg/clienterr"
	"github.com/vantage-controls/vantage-go/pkg/connection"
	"github.com/vantage-controls/vantage-go/pkg/hostcmd"
	"github.com/vantage-controls/vantage-go/pkg/transport"
)

// Stream errors.
var (
	ErrStopped  = errors.New("event stream stopped")
	ErrNoTopics = errors.New("at least one type or kind is required")
)

// Handler receives events. Handlers run on the stream's dispatch goroutine,
// one event at a time, and may call back into the stream.
type Handler func(Event)

type subscription struct {
	handler Handler
	topics  []string
}

// EventStream owns a Host Command connection dedicated to push traffic.
type EventStream struct {
	config    Config
	client    *hostcmd.Client
	manager   *connection.Manager
	keepAlive *transport.KeepAlive
	logger    *slog.Logger
	queue     chan Event

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// lifeMu serializes Start and Stop.
	lifeMu      sync.Mutex
	started     bool
	stopped     bool
	dispatching bool

	// regMu serializes sending registrations with replaying them.
	regMu sync.Mutex

	mu          sync.Mutex
	nextID      uint64
	statusSubs  map[uint64]subscription
	logSubs     map[uint64]subscription
	connSubs    map[uint64]Handler
	statusTypes []string
	logKinds    []string
}

// NewEventStream creates a stream. No connection is opened until Start.
func NewEventStream(config Config) (*EventStream, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid event stream config: %w", err)
	}
	if config.QueueSize == 0 {
		config.QueueSize = DefaultQueueSize
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if config.Client.Logger == nil {
		config.Client.Logger = logger
	}

	client, err := hostcmd.NewClient(config.Client)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &EventStream{
		config:     config,
		client:     client,
		logger:     logger.With("component", "events"),
		queue:      make(chan Event, config.QueueSize),
		ctx:        ctx,
		cancel:     cancel,
		statusSubs: make(map[uint64]subscription),
		logSubs:    make(map[uint64]subscription),
		connSubs:   make(map[uint64]Handler),
	}

	mc := config.Reconnect
	if mc.Logger == nil {
		mc.Logger = s.logger
	}
	s.manager = connection.NewManager(mc, s.connect, connection.Hooks{
		OnConnected:    s.onConnected,
		OnDisconnected: s.onDisconnected,
		OnReconnecting: func(attempt int, delay time.Duration) {
			s.logger.Debug("reconnecting", "attempt", attempt, "delay", delay)
		},
	})
	s.keepAlive = transport.NewKeepAlive(config.KeepAlive, s.probe, s.onProbeTimeout)

	client.SetEventHandler(s.handleLine)
	client.OnStateChange(func(_, newState transport.ConnectionState) {
		if newState == transport.StateClosed {
			s.manager.NotifyConnectionLost()
		}
	})

	return s, nil
}

// Start connects, enables the enhanced log and sends every registration
// made so far. Calling Start on a running stream has no effect.
func (s *EventStream) Start(ctx context.Context) error {
	s.lifeMu.Lock()
	defer s.lifeMu.Unlock()

	if s.stopped {
		return ErrStopped
	}
	if s.started {
		return nil
	}

	if !s.dispatching {
		s.dispatching = true
		s.wg.Add(1)
		go s.dispatchLoop()
	}

	if err := s.manager.Connect(ctx); err != nil && !errors.Is(err, connection.ErrAlreadyConnected) {
		return fmt.Errorf("start event stream: %w", err)
	}
	s.started = true
	return nil
}

// Stop closes the connection and waits for the stream's goroutines. The
// stream cannot be restarted. Stop must not be called from a Handler.
func (s *EventStream) Stop() {
	s.lifeMu.Lock()
	defer s.lifeMu.Unlock()

	if s.stopped {
		return
	}
	s.stopped = true

	s.manager.Close()
	s.keepAlive.Stop()
	_ = s.client.Close()
	s.cancel()
	s.wg.Wait()
}

// Started reports whether Start has succeeded.
func (s *EventStream) Started() bool {
	s.lifeMu.Lock()
	defer s.lifeMu.Unlock()
	return s.started && !s.stopped
}

// State returns the link state.
func (s *EventStream) State() connection.State {
	return s.manager.State()
}

// StatusTypes returns the registered STATUS types, in registration order.
func (s *EventStream) StatusTypes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.statusTypes)
}

// LogKinds returns the registered enhanced-log kinds, in registration order.
func (s *EventStream) LogKinds() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.logKinds)
}

// SubscribeStatus delivers STATUS events of the given types to h. Each type
// not yet registered is sent to the controller as "STATUS <type>". The
// returned func removes the handler; the controller-side registration
// stays.
func (s *EventStream) SubscribeStatus(ctx context.Context, h Handler, types ...string) (func(), error) {
	return s.subscribe(ctx, h, types, s.statusSubs, &s.statusTypes, statusCommand)
}

// SubscribeEnhancedLog delivers enhanced-log events of the given kinds to h.
// Each kind not yet registered is sent as "ELLOG <kind> ON". Interface
// status lines carry no kind and reach every subscriber of a kind other
// than LOG. Plain "L:" lines are delivered to subscribers of kind LOG.
func (s *EventStream) SubscribeEnhancedLog(ctx context.Context, h Handler, kinds ...string) (func(), error) {
	return s.subscribe(ctx, h, kinds, s.logSubs, &s.logKinds, enhancedLogCommand)
}

// SubscribeConnection delivers EventConnected, EventDisconnected and
// EventReconnected to h.
func (s *EventStream) SubscribeConnection(h Handler) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	s.connSubs[id] = h
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.connSubs, id)
	}
}

func statusCommand(topic string) (string, []any) {
	return "STATUS", []any{topic}
}

func enhancedLogCommand(topic string) (string, []any) {
	return "ELLOG", []any{topic, "ON"}
}

func (s *EventStream) subscribe(
	ctx context.Context,
	h Handler,
	topics []string,
	subs map[uint64]subscription,
	registered *[]string,
	command func(string) (string, []any),
) (func(), error) {
	if len(topics) == 0 {
		return nil, ErrNoTopics
	}
	normalized := make([]string, len(topics))
	for i, t := range topics {
		normalized[i] = strings.ToUpper(t)
	}

	s.regMu.Lock()
	defer s.regMu.Unlock()

	s.mu.Lock()
	var added []string
	for _, t := range normalized {
		if !slices.Contains(*registered, t) && !slices.Contains(added, t) {
			added = append(added, t)
		}
	}
	*registered = append(*registered, added...)
	s.nextID++
	id := s.nextID
	subs[id] = subscription{handler: h, topics: normalized}
	s.mu.Unlock()

	// Before Start, or while the link is down, registrations are replayed
	// by the next connect.
	if s.client.Connected() {
		for _, t := range added {
			name, params := command(t)
			if _, err := s.client.Command(ctx, name, params...); err != nil {
				if isLinkError(err) {
					s.logger.Debug("registration deferred to reconnect", "command", name, "topic", t, "error", err)
					break
				}
				s.mu.Lock()
				delete(subs, id)
				*registered = slices.DeleteFunc(*registered, func(r string) bool { return slices.Contains(added, r) })
				s.mu.Unlock()
				return nil, fmt.Errorf("%s %s: %w", name, t, err)
			}
		}
	}

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(subs, id)
	}, nil
}

func isLinkError(err error) bool {
	return errors.Is(err, clienterr.ErrConnectionClosed) ||
		errors.Is(err, clienterr.ErrTimeout) ||
		errors.Is(err, clienterr.ErrConnection)
}

// connect opens the link and replays every registration. It is the
// connection manager's ConnectFunc.
func (s *EventStream) connect(ctx context.Context) error {
	s.regMu.Lock()
	defer s.regMu.Unlock()

	if err := s.client.Connect(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	statusTypes := slices.Clone(s.statusTypes)
	logKinds := slices.Clone(s.logKinds)
	s.mu.Unlock()

	type request struct {
		name   string
		params []any
	}
	requests := []request{{"ELENHANCE", []any{"ON"}}}
	for _, t := range statusTypes {
		name, params := statusCommand(t)
		requests = append(requests, request{name, params})
	}
	for _, k := range logKinds {
		name, params := enhancedLogCommand(k)
		requests = append(requests, request{name, params})
	}

	for _, r := range requests {
		if _, err := s.client.Command(ctx, r.name, r.params...); err != nil {
			_ = s.client.Close()
			return fmt.Errorf("%s: %w", r.name, err)
		}
	}

	s.logger.Debug("event stream registered", "status_types", statusTypes, "log_kinds", logKinds)
	return nil
}

func (s *EventStream) onConnected(reconnect bool) {
	if !s.config.DisableKeepAlive {
		s.keepAlive.Start(s.ctx)
	}

	ev := Event{Type: EventConnected}
	if reconnect {
		ev.Type = EventReconnected
	}
	s.logger.Info("event stream connected", "reconnect", reconnect)
	s.enqueue(ev)
}

func (s *EventStream) onDisconnected() {
	s.keepAlive.Stop()
	s.enqueue(Event{Type: EventDisconnected})
}

func (s *EventStream) probe(ctx context.Context) error {
	// Pinging a closed client would silently reopen it without replay
	if !s.client.Connected() {
		return clienterr.ErrConnectionClosed
	}
	return s.client.Ping(ctx)
}

func (s *EventStream) onProbeTimeout(err error) {
	s.logger.Warn("keep-alive failed, closing event connection", "error", err)
	_ = s.client.Close()
	s.manager.NotifyConnectionLost()
}

// handleLine runs on the client's reader goroutine.
func (s *EventStream) handleLine(line string) {
	ev, err := ParseLine(line)
	if err != nil {
		s.logger.Warn("dropping malformed event", "line", line, "error", err)
		return
	}
	s.enqueue(ev)
}

func (s *EventStream) enqueue(ev Event) {
	select {
	case s.queue <- ev:
	case <-s.ctx.Done():
	}
}

func (s *EventStream) dispatchLoop() {
	defer s.wg.Done()

	for {
		select {
		case <-s.ctx.Done():
			return
		case ev := <-s.queue:
			for _, h := range s.handlersFor(ev) {
				h(ev)
			}
		}
	}
}

// handlersFor snapshots the handlers interested in ev, in subscription
// order.
func (s *EventStream) handlersFor(ev Event) []Handler {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		subs  map[uint64]subscription
		topic string
	)
	switch ev.Type {
	case EventStatus:
		subs, topic = s.statusSubs, ev.StatusType
	case EventEnhancedLog, EventLog:
		subs, topic = s.logSubs, ev.LogType
	default:
		ids := slices.Sorted(maps.Keys(s.connSubs))
		handlers := make([]Handler, 0, len(ids))
		for _, id := range ids {
			handlers = append(handlers, s.connSubs[id])
		}
		return handlers
	}

	wants := func(topics []string) bool { return slices.Contains(topics, topic) }
	if ev.Type == EventEnhancedLog && ev.LogType == "" {
		wants = func(topics []string) bool {
			return slices.ContainsFunc(topics, func(t string) bool { return t != LogTypeLog })
		}
	}

	var handlers []Handler
	for _, id := range slices.Sorted(maps.Keys(subs)) {
		if wants(subs[id].topics) {
			handlers = append(handlers, subs[id].handler)
		}
	}
	return handlers
}
