package connection

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// Manager errors.
var (
	ErrManagerClosed    = errors.New("connection manager closed")
	ErrAlreadyConnected = errors.New("already connected")
)

// DefaultAttemptTimeout bounds a single reconnection attempt.
const DefaultAttemptTimeout = 30 * time.Second

// State represents the link state.
type State uint8

const (
	// StateDisconnected indicates no active link.
	StateDisconnected State = iota

	// StateConnecting indicates an explicit Connect is in progress.
	StateConnecting

	// StateConnected indicates an active link.
	StateConnected

	// StateReconnecting indicates the background loop is retrying.
	StateReconnecting

	// StateClosed indicates the manager has been closed.
	StateClosed
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "DISCONNECTED"
	case StateConnecting:
		return "CONNECTING"
	case StateConnected:
		return "CONNECTED"
	case StateReconnecting:
		return "RECONNECTING"
	case StateClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// ConnectFunc establishes the link. It returns nil on success.
type ConnectFunc func(ctx context.Context) error

// Hooks are optional callbacks invoked outside the manager's lock.
type Hooks struct {
	// OnStateChange is called for every transition.
	OnStateChange func(oldState, newState State)

	// OnConnected is called after Connect succeeds. reconnect is true
	// when the success came from the background loop.
	OnConnected func(reconnect bool)

	// OnDisconnected is called when the link is reported lost.
	OnDisconnected func()

	// OnReconnecting is called before each backoff delay.
	OnReconnecting func(attempt int, delay time.Duration)
}

// ManagerConfig configures a Manager.
type ManagerConfig struct {
	// Backoff configures the delay between attempts.
	Backoff BackoffConfig

	// AttemptTimeout bounds one reconnection attempt (default: 30s).
	AttemptTimeout time.Duration

	// AutoReconnect retries in the background after a loss (default: on
	// when built with DefaultManagerConfig).
	AutoReconnect bool

	// Logger receives operational logs (optional).
	Logger *slog.Logger
}

// DefaultManagerConfig returns the default manager configuration.
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		Backoff:        DefaultBackoffConfig(),
		AttemptTimeout: DefaultAttemptTimeout,
		AutoReconnect:  true,
	}
}

// Manager tracks a link and re-establishes it with backoff when it drops.
type Manager struct {
	config    ManagerConfig
	connectFn ConnectFunc
	hooks     Hooks
	backoff   *Backoff
	logger    *slog.Logger

	mu    sync.Mutex
	state State

	ctx         context.Context
	cancel      context.CancelFunc
	reconnectCh chan struct{}
	wg          sync.WaitGroup
}

// NewManager creates a manager and starts its reconnect loop.
// Close must be called to stop the loop.
func NewManager(config ManagerConfig, connectFn ConnectFunc, hooks Hooks) *Manager {
	if config.AttemptTimeout <= 0 {
		config.AttemptTimeout = DefaultAttemptTimeout
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		config:      config,
		connectFn:   connectFn,
		hooks:       hooks,
		backoff:     NewBackoff(config.Backoff),
		logger:      logger,
		state:       StateDisconnected,
		ctx:         ctx,
		cancel:      cancel,
		reconnectCh: make(chan struct{}, 1),
	}

	m.wg.Add(1)
	go m.reconnectLoop()
	return m
}

// State returns the current link state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// IsConnected returns true if the link is up.
func (m *Manager) IsConnected() bool {
	return m.State() == StateConnected
}

// Attempts returns the number of reconnection attempts since the last success.
func (m *Manager) Attempts() int {
	return m.backoff.Attempts()
}

// Connect establishes the link once, without retrying.
func (m *Manager) Connect(ctx context.Context) error {
	m.mu.Lock()
	switch m.state {
	case StateConnected:
		m.mu.Unlock()
		return ErrAlreadyConnected
	case StateClosed:
		m.mu.Unlock()
		return ErrManagerClosed
	}
	old := m.state
	m.state = StateConnecting
	m.mu.Unlock()
	m.notifyState(old, StateConnecting)

	if err := m.connectFn(ctx); err != nil {
		if m.transition(StateConnecting, StateDisconnected) {
			m.notifyState(StateConnecting, StateDisconnected)
		}
		return err
	}

	if !m.transition(StateConnecting, StateConnected) {
		return ErrManagerClosed
	}
	m.backoff.Reset()
	m.notifyState(StateConnecting, StateConnected)
	if m.hooks.OnConnected != nil {
		m.hooks.OnConnected(false)
	}
	return nil
}

// NotifyConnectionLost reports that the link dropped. With AutoReconnect
// the background loop starts retrying. Calls while not connected are
// ignored.
func (m *Manager) NotifyConnectionLost() {
	next := StateDisconnected
	if m.config.AutoReconnect {
		next = StateReconnecting
	}
	if !m.transition(StateConnected, next) {
		return
	}

	m.logger.Info("connection lost", "auto_reconnect", m.config.AutoReconnect)
	m.notifyState(StateConnected, next)
	if m.hooks.OnDisconnected != nil {
		m.hooks.OnDisconnected()
	}

	if next == StateReconnecting {
		select {
		case m.reconnectCh <- struct{}{}:
		default:
		}
	}
}

// Close stops the reconnect loop. It is safe to call more than once.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.state == StateClosed {
		m.mu.Unlock()
		return
	}
	old := m.state
	m.state = StateClosed
	m.mu.Unlock()

	m.cancel()
	m.wg.Wait()
	m.notifyState(old, StateClosed)
}

// transition moves from one state to another if the current state matches.
func (m *Manager) transition(from, to State) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != from {
		return false
	}
	m.state = to
	return true
}

func (m *Manager) notifyState(from, to State) {
	if m.hooks.OnStateChange != nil {
		m.hooks.OnStateChange(from, to)
	}
}

func (m *Manager) reconnectLoop() {
	defer m.wg.Done()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-m.reconnectCh:
			m.reconnect()
		}
	}
}

// reconnect retries connectFn until it succeeds or the manager closes.
func (m *Manager) reconnect() {
	for m.State() == StateReconnecting {
		delay := m.backoff.Next()
		attempt := m.backoff.Attempts()
		if m.hooks.OnReconnecting != nil {
			m.hooks.OnReconnecting(attempt, delay)
		}

		select {
		case <-m.ctx.Done():
			return
		case <-time.After(delay):
		}

		ctx, cancel := context.WithTimeout(m.ctx, m.config.AttemptTimeout)
		err := m.connectFn(ctx)
		cancel()

		if err != nil {
			m.logger.Debug("reconnect failed", "attempt", attempt, "error", err)
			continue
		}

		if !m.transition(StateReconnecting, StateConnected) {
			return
		}
		m.logger.Info("reconnected", "attempts", attempt)
		m.backoff.Reset()
		m.notifyState(StateReconnecting, StateConnected)
		if m.hooks.OnConnected != nil {
			m.hooks.OnConnected(true)
		}
		return
	}
}
