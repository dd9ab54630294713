package transport

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vantage-controls/vantage-go/pkg/clienterr"
	"github.com/vantage-controls/vantage-go/pkg/log"
)

// ErrBufferOverflow is returned by ReadUntil when BufferLimit bytes have
// accumulated without a terminator.
var ErrBufferOverflow = errors.New("read buffer limit exceeded")

// ConnectionState is the lifecycle state of a Conn.
type ConnectionState int

const (
	// StateClosed indicates no usable socket.
	StateClosed ConnectionState = iota

	// StateConnecting indicates a dial is in progress.
	StateConnecting

	// StateOpen indicates an active socket.
	StateOpen
)

// String returns the connection state name.
func (s ConnectionState) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateConnecting:
		return "CONNECTING"
	case StateOpen:
		return "OPEN"
	default:
		return "UNKNOWN"
	}
}

// Conn is a reconnectable line socket. Write and ReadUntil may be called
// concurrently with each other; Close may be called from any goroutine and
// unblocks both.
type Conn struct {
	config Config
	addr   string

	mu    sync.Mutex
	state ConnectionState
	nc    net.Conn
	id    string

	readMu sync.Mutex
	buf    []byte

	writeMu sync.Mutex
}

// NewConn creates a closed Conn. Nothing is dialed until Open.
func NewConn(config Config) (*Conn, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid transport config: %w", err)
	}
	config.applyDefaults()

	return &Conn{
		config: config,
		addr:   net.JoinHostPort(config.Host, strconv.Itoa(config.Port)),
	}, nil
}

// Addr returns the host:port this Conn dials.
func (c *Conn) Addr() string {
	return c.addr
}

// ID returns the identifier of the current socket (empty when closed).
// A new identifier is assigned on every successful Open.
func (c *Conn) ID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.id
}

// State returns the current connection state.
func (c *Conn) State() ConnectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Closed reports whether the Conn has no usable socket.
func (c *Conn) Closed() bool {
	return c.State() != StateOpen
}

// Open dials the controller if the Conn is not already open.
func (c *Conn) Open(ctx context.Context) error {
	c.mu.Lock()
	if c.state == StateOpen {
		c.mu.Unlock()
		return nil
	}
	c.state = StateConnecting
	c.mu.Unlock()

	nc, err := c.dial(ctx)
	if err != nil {
		c.mu.Lock()
		c.state = StateClosed
		c.mu.Unlock()
		c.logError(err, "open")
		return err
	}

	id := uuid.New().String()

	c.mu.Lock()
	c.nc = nc
	c.id = id
	c.state = StateOpen
	c.mu.Unlock()

	c.readMu.Lock()
	c.buf = c.buf[:0]
	c.readMu.Unlock()

	c.logState(id, StateClosed, StateOpen, "")
	c.config.Logger.Debug("connection opened", "addr", c.addr, "conn_id", id, "tls", c.config.TLS)
	return nil
}

func (c *Conn) dial(ctx context.Context) (net.Conn, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.ConnectTimeout)
		defer cancel()
	}

	dialer := &net.Dialer{}
	nc, err := dialer.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		return nil, &clienterr.ConnectionError{Op: "dial", Addr: c.addr, Err: classify(err)}
	}

	if !c.config.TLS {
		return nc, nil
	}

	tlsConn := tls.Client(nc, tlsConfigFor(c.config.TLSConfig, c.config.Host))
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		nc.Close()
		return nil, &clienterr.ConnectionError{Op: "handshake", Addr: c.addr, Err: classify(err)}
	}
	return tlsConn, nil
}

// Write sends p in full.
func (c *Conn) Write(p []byte) error {
	nc, id, ok := c.current()
	if !ok {
		return clienterr.ErrConnectionClosed
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.config.WriteTimeout > 0 {
		nc.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
		defer nc.SetWriteDeadline(time.Time{})
	}

	if _, err := nc.Write(p); err != nil {
		if c.closeIfCurrent(nc, "write failed") {
			return &clienterr.ConnectionError{Op: "write", Addr: c.addr, Err: classify(err)}
		}
		return clienterr.ErrConnectionClosed
	}

	c.logLine(id, log.DirectionOut, p)
	return nil
}

// ReadUntil reads until terminator appears, returning the data up to and
// including it. Bytes after the terminator are kept for the next call.
// A timeout of 0 waits indefinitely. A timeout leaves the socket open and
// the partial data buffered; any other failure closes the socket.
func (c *Conn) ReadUntil(terminator []byte, timeout time.Duration) ([]byte, error) {
	if len(terminator) == 0 {
		return nil, errors.New("empty terminator")
	}

	c.readMu.Lock()
	defer c.readMu.Unlock()

	nc, id, ok := c.current()
	if !ok {
		return nil, clienterr.ErrConnectionClosed
	}

	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}
	nc.SetReadDeadline(deadline)

	chunk := make([]byte, readChunkSize)
	searchFrom := 0
	for {
		if i := bytes.Index(c.buf[searchFrom:], terminator); i >= 0 {
			end := searchFrom + i + len(terminator)
			out := make([]byte, end)
			copy(out, c.buf[:end])
			c.buf = append(c.buf[:0], c.buf[end:]...)
			c.logLine(id, log.DirectionIn, out)
			return out, nil
		}

		if len(c.buf) >= c.config.BufferLimit {
			c.closeIfCurrent(nc, "buffer overflow")
			return nil, ErrBufferOverflow
		}

		// The terminator may straddle two reads
		searchFrom = max(0, len(c.buf)-len(terminator)+1)

		n, err := nc.Read(chunk)
		c.buf = append(c.buf, chunk[:n]...)
		if err == nil {
			continue
		}
		if n > 0 && isTimeout(err) {
			// Check what arrived before giving up
			if bytes.Contains(c.buf[searchFrom:], terminator) {
				continue
			}
		}

		if isTimeout(err) {
			return nil, fmt.Errorf("read %s: %w", c.addr, clienterr.ErrTimeout)
		}
		if c.closeIfCurrent(nc, "read failed") {
			return nil, &clienterr.ConnectionError{Op: "read", Addr: c.addr, Err: err}
		}
		return nil, clienterr.ErrConnectionClosed
	}
}

// Close closes the socket. It is safe to call Close in any state and more
// than once.
func (c *Conn) Close() error {
	c.mu.Lock()
	nc := c.nc
	c.mu.Unlock()
	if nc == nil {
		return nil
	}
	c.closeIfCurrent(nc, "closed")
	return nil
}

// current returns the live socket, if any.
func (c *Conn) current() (net.Conn, string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateOpen || c.nc == nil {
		return nil, "", false
	}
	return c.nc, c.id, true
}

// closeIfCurrent closes nc if it is still the active socket. It reports
// whether it did; false means another goroutine already closed or replaced it.
func (c *Conn) closeIfCurrent(nc net.Conn, reason string) bool {
	c.mu.Lock()
	if c.nc != nc {
		c.mu.Unlock()
		return false
	}
	id := c.id
	c.nc = nil
	c.id = ""
	c.state = StateClosed
	c.mu.Unlock()

	nc.Close()
	c.logState(id, StateOpen, StateClosed, reason)
	c.config.Logger.Debug("connection closed", "addr", c.addr, "conn_id", id, "reason", reason)
	return true
}

func (c *Conn) logLine(id string, dir log.Direction, p []byte) {
	ev := log.NewLineEvent(id, c.config.Service, dir, string(p))
	ev.RemoteAddr = c.addr
	c.config.ProtocolLogger.Log(ev)
}

func (c *Conn) logState(id string, from, to ConnectionState, reason string) {
	c.config.ProtocolLogger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: id,
		Service:      c.config.Service,
		Category:     log.CategoryState,
		RemoteAddr:   c.addr,
		StateChange: &log.StateChangeEvent{
			OldState: from.String(),
			NewState: to.String(),
			Reason:   reason,
		},
	})
}

func (c *Conn) logError(err error, op string) {
	c.config.ProtocolLogger.Log(log.Event{
		Timestamp:  time.Now(),
		Service:    c.config.Service,
		Category:   log.CategoryError,
		RemoteAddr: c.addr,
		Error: &log.ErrorEventData{
			Message: err.Error(),
			Context: op,
		},
	})
}

func isTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// classify maps deadline errors onto clienterr.ErrTimeout, keeping the cause.
func classify(err error) error {
	if isTimeout(err) {
		return fmt.Errorf("%w: %v", clienterr.ErrTimeout, err)
	}
	return err
}
