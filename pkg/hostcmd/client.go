package hostcmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/vantage-controls/vantage-go/pkg/clienterr"
	"github.com/vantage-controls/vantage-go/pkg/log"
	"github.com/vantage-controls/vantage-go/pkg/transport"
)

var lineTerminator = []byte("\r\n")

// EventHandler receives unsolicited lines ("S:", "L:", "EL:") from the
// reader goroutine. It must not block and must not call back into the
// Client synchronously.
type EventHandler func(line string)

// StateHandler is notified when the connection opens or closes.
type StateHandler func(oldState, newState transport.ConnectionState)

// Client sends commands to the Host Command service over one shared
// connection. It is safe for concurrent use; exchanges are serialized.
type Client struct {
	config Config
	conn   *transport.Conn
	logger *slog.Logger

	// connMu serializes connection acquisition (open plus LOGIN).
	// Lock order: connMu before cmdMu.
	connMu sync.Mutex

	// cmdMu allows one exchange on the wire at a time.
	cmdMu sync.Mutex

	// stateMu orders the open and close notifications of a session.
	stateMu sync.Mutex

	mu      sync.Mutex
	sess    *session
	onEvent EventHandler
	onState StateHandler
}

// session is the reader state for one opened socket.
type session struct {
	id   string
	done chan struct{}

	mu      sync.Mutex
	pending *exchange
	ended   bool
	opened  bool
	err     error
}

// exchange is the request currently waiting for its reply.
type exchange struct {
	lines  []string
	result chan exchangeResult
}

type exchangeResult struct {
	lines []string
	err   error
}

// NewClient creates a Client. No connection is opened until first use.
func NewClient(config Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid host command config: %w", err)
	}
	if config.ConnectTimeout == 0 {
		config.ConnectTimeout = DefaultConnectTimeout
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	tc := transport.DefaultConfig(config.Host, config.EffectivePort())
	tc.TLS = config.TLS
	tc.TLSConfig = config.TLSConfig
	tc.ConnectTimeout = config.ConnectTimeout
	tc.Service = log.ServiceHostCommand
	tc.ProtocolLogger = config.ProtocolLogger
	tc.Logger = logger

	conn, err := transport.NewConn(tc)
	if err != nil {
		return nil, err
	}

	return &Client{
		config: config,
		conn:   conn,
		logger: logger.With("component", "hostcmd"),
	}, nil
}

// Addr returns the host:port the client connects to.
func (c *Client) Addr() string {
	return c.conn.Addr()
}

// SetEventHandler sets the handler for unsolicited lines. With no handler
// they are logged and discarded.
func (c *Client) SetEventHandler(h EventHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onEvent = h
}

// OnStateChange sets the handler for connection open/close transitions.
func (c *Client) OnStateChange(h StateHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onState = h
}

// Connected reports whether a connection is currently open.
func (c *Client) Connected() bool {
	c.mu.Lock()
	sess := c.sess
	c.mu.Unlock()
	return sess != nil && !sess.isEnded() && !c.conn.Closed()
}

// Connect returns once a connection is open and, when credentials are
// configured, logged in. It opens a new connection only if the current one
// is closed.
func (c *Client) Connect(ctx context.Context) error {
	_, err := c.session(ctx)
	return err
}

func (c *Client) session(ctx context.Context) (*session, error) {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	c.mu.Lock()
	old := c.sess
	c.mu.Unlock()

	if old != nil {
		if !old.isEnded() && !c.conn.Closed() {
			return old, nil
		}
		// The previous reader must be gone before the socket is reused
		c.conn.Close()
		<-old.done
	}

	if err := c.conn.Open(ctx); err != nil {
		return nil, err
	}

	sess := &session{id: c.conn.ID(), done: make(chan struct{})}
	c.mu.Lock()
	c.sess = sess
	onState := c.onState
	c.mu.Unlock()

	go c.readLoop(sess)

	if c.config.hasCredentials() {
		c.cmdMu.Lock()
		lines, err := c.exchange(ctx, sess, "LOGIN "+mustEncode(c.config.Username, c.config.Password))
		c.cmdMu.Unlock()
		if err == nil {
			_, err = NewResponse(lines)
		}
		if err != nil {
			c.drop(sess)
			return nil, fmt.Errorf("login: %w", err)
		}
		c.logger.Debug("logged in", "addr", c.conn.Addr(), "user", c.config.Username)
	}

	c.stateMu.Lock()
	err := sess.markOpened()
	if err == nil && onState != nil {
		onState(transport.StateClosed, transport.StateOpen)
	}
	c.stateMu.Unlock()
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// RawRequest sends one request line and returns the reply lines: any data
// lines followed by the "R:" reply line. Event lines are never included.
//
// If the reply does not arrive within the read timeout, or ctx is done
// first, the connection is closed so that a late reply cannot be attributed
// to a later request.
func (c *Client) RawRequest(ctx context.Context, request string) ([]string, error) {
	sess, err := c.session(ctx)
	if err != nil {
		return nil, err
	}

	c.cmdMu.Lock()
	defer c.cmdMu.Unlock()

	return c.exchange(ctx, sess, request)
}

// Command sends "<command> <params...>" and parses the reply.
func (c *Client) Command(ctx context.Context, command string, params ...any) (*Response, error) {
	return c.command(ctx, false, command, params...)
}

// CommandQuoted is Command with every string parameter quoted.
func (c *Client) CommandQuoted(ctx context.Context, command string, params ...any) (*Response, error) {
	return c.command(ctx, true, command, params...)
}

func (c *Client) command(ctx context.Context, forceQuotes bool, command string, params ...any) (*Response, error) {
	request, err := buildRequest(forceQuotes, command, params...)
	if err != nil {
		return nil, err
	}

	lines, err := c.RawRequest(ctx, request)
	if err != nil {
		return nil, err
	}
	return NewResponse(lines)
}

// Invoke sends "INVOKE <vid> <method> <params...>" and parses the reply.
func (c *Client) Invoke(ctx context.Context, vid int, method string, params ...any) (*InvokeResponse, error) {
	request, err := buildRequest(false, "INVOKE "+strconv.Itoa(vid)+" "+method, params...)
	if err != nil {
		return nil, err
	}

	lines, err := c.RawRequest(ctx, request)
	if err != nil {
		return nil, err
	}
	return NewInvokeResponse(lines)
}

// Ping sends ECHO and waits for the reply. It is used as a keep-alive probe.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.RawRequest(ctx, "ECHO")
	return err
}

// Close closes the connection. A request in flight fails with
// clienterr.ErrConnectionClosed. The next request reconnects.
func (c *Client) Close() error {
	return c.conn.Close()
}

func buildRequest(forceQuotes bool, prefix string, params ...any) (string, error) {
	if len(params) == 0 {
		return prefix, nil
	}
	encoded, err := EncodeParams(forceQuotes, params...)
	if err != nil {
		return "", err
	}
	return prefix + " " + encoded, nil
}

func mustEncode(params ...any) string {
	s, err := EncodeParams(false, params...)
	if err != nil {
		panic(err)
	}
	return s
}

// exchange writes one request on sess and waits for its completion.
// The caller holds cmdMu.
func (c *Client) exchange(ctx context.Context, sess *session, request string) ([]string, error) {
	ex := &exchange{result: make(chan exchangeResult, 1)}
	if err := sess.begin(ex); err != nil {
		return nil, err
	}
	defer sess.finish(ex)

	if c.conn.ID() != sess.id {
		return nil, clienterr.ErrConnectionClosed
	}

	c.logger.Debug("sending command", "request", redact(request))
	if err := c.conn.Write([]byte(request + "\n")); err != nil {
		return nil, err
	}

	var timeout <-chan time.Time
	if c.config.ReadTimeout > 0 {
		timer := time.NewTimer(c.config.ReadTimeout)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case r := <-ex.result:
		return c.complete(r)
	case <-sess.done:
		select {
		case r := <-ex.result:
			return c.complete(r)
		default:
		}
		return nil, sess.endErr()
	case <-timeout:
		c.drop(sess)
		return nil, fmt.Errorf("no reply to %q within %s: %w", commandName(request), c.config.ReadTimeout, clienterr.ErrTimeout)
	case <-ctx.Done():
		c.drop(sess)
		return nil, ctx.Err()
	}
}

func (c *Client) complete(r exchangeResult) ([]string, error) {
	if r.err != nil {
		return nil, r.err
	}
	c.logger.Debug("received response", "lines", strings.Join(r.lines, "\n"))
	return r.lines, nil
}

// drop closes sess's socket if it is still the current one.
func (c *Client) drop(sess *session) {
	if c.conn.ID() == sess.id {
		c.conn.Close()
	}
}

// readLoop is the only reader of sess's socket.
func (c *Client) readLoop(sess *session) {
	for {
		raw, err := c.conn.ReadUntil(lineTerminator, 0)
		if err != nil {
			c.endSession(sess, err)
			return
		}

		line := strings.TrimRight(string(raw), " \t\r\n")
		if line == "" {
			continue
		}

		if IsEventLine(line) {
			c.mu.Lock()
			h := c.onEvent
			c.mu.Unlock()
			if h != nil {
				h(line)
			} else {
				c.logger.Debug("ignoring event line", "line", line)
			}
			continue
		}

		if !sess.deliver(line) {
			c.logger.Warn("unexpected line with no request in flight", "line", line)
		}
	}
}

func (c *Client) endSession(sess *session, cause error) {
	err := clienterr.ErrConnectionClosed
	if !errors.Is(cause, clienterr.ErrConnectionClosed) {
		err = fmt.Errorf("%w: %w", clienterr.ErrConnectionClosed, cause)
		c.logger.Debug("reader stopped", "error", cause)
	}
	sess.end(err)
	c.drop(sess)

	// Sessions that never reported open, such as a failed LOGIN, end
	// silently.
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	if !sess.wasOpened() {
		return
	}
	c.mu.Lock()
	onState := c.onState
	c.mu.Unlock()
	if onState != nil {
		onState(transport.StateOpen, transport.StateClosed)
	}
}

// markOpened records that the session was reported open. It returns the
// session's error if it has already ended.
func (s *session) markOpened() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return s.err
	}
	s.opened = true
	return nil
}

func (s *session) wasOpened() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opened
}

func (s *session) begin(ex *exchange) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return s.err
	}
	s.pending = ex
	return nil
}

func (s *session) finish(ex *exchange) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == ex {
		s.pending = nil
	}
}

// deliver routes a non-event line to the pending exchange. It returns false
// if no exchange is waiting.
func (s *session) deliver(line string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	ex := s.pending
	if ex == nil {
		return false
	}

	switch {
	case strings.HasPrefix(line, errorPrefix):
		s.pending = nil
		ex.result <- exchangeResult{err: parseCommandError(line)}
	case strings.HasPrefix(line, replyPrefix):
		s.pending = nil
		ex.result <- exchangeResult{lines: append(ex.lines, line)}
	default:
		ex.lines = append(ex.lines, line)
	}
	return true
}

func (s *session) end(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return
	}
	s.ended = true
	s.err = err
	if s.pending != nil {
		s.pending.result <- exchangeResult{err: err}
		s.pending = nil
	}
	close(s.done)
}

func (s *session) isEnded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ended
}

func (s *session) endErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func commandName(request string) string {
	name, _, _ := strings.Cut(request, " ")
	return name
}

// redact hides LOGIN credentials from operational logs.
func redact(request string) string {
	if strings.HasPrefix(strings.ToUpper(request), "LOGIN ") {
		return "LOGIN ***"
	}
	return request
}
