package aci

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/vantage-controls/vantage-go/pkg/clienterr"
	"github.com/vantage-controls/vantage-go/pkg/log"
	"github.com/vantage-controls/vantage-go/pkg/transport"
)

// Client talks to the ACI service over one connection.
type Client struct {
	config Config
	conn   *transport.Conn
	logger *slog.Logger

	// mu serializes connecting, logging in and request round trips.
	mu sync.Mutex
}

// NewClient creates a Client. No connection is opened until first use.
func NewClient(config Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid aci config: %w", err)
	}
	config.applyDefaults()
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	tc := transport.DefaultConfig(config.Host, config.EffectivePort())
	tc.TLS = config.TLS
	tc.TLSConfig = config.TLSConfig
	tc.ConnectTimeout = config.ConnectTimeout
	tc.BufferLimit = config.BufferLimit
	tc.Service = log.ServiceACI
	tc.ProtocolLogger = config.ProtocolLogger
	tc.Logger = logger

	conn, err := transport.NewConn(tc)
	if err != nil {
		return nil, err
	}

	return &Client{
		config: config,
		conn:   conn,
		logger: logger.With("component", "aci"),
	}, nil
}

// Addr returns the host:port the client connects to.
func (c *Client) Addr() string {
	return c.conn.Addr()
}

// Close closes the connection. The next request reconnects.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Request calls "Interface.Method" with call as the inner XML of <call> and
// returns the inner XML of <return>. A response without the method element
// or without a return value is a ProtocolError.
func (c *Client) Request(ctx context.Context, method, call string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureConnected(ctx); err != nil {
		return "", err
	}
	return c.roundTrip(ctx, method, call)
}

// ensureConnected opens the connection and logs in if it is closed.
// Caller must hold c.mu.
func (c *Client) ensureConnected(ctx context.Context) error {
	if !c.conn.Closed() {
		return nil
	}
	if err := c.conn.Open(ctx); err != nil {
		return err
	}

	if c.config.Username == "" {
		return nil
	}

	ret, err := c.roundTrip(ctx, MethodLogin, loginCall(c.config.Username, c.config.Password))
	if err == nil {
		var ok bool
		ok, err = parseBool(MethodLogin, ret)
		if err == nil && !ok {
			err = clienterr.ErrLoginFailed
		}
	}
	if err != nil {
		c.conn.Close()
		return fmt.Errorf("login: %w", err)
	}
	c.logger.Debug("logged in", "addr", c.conn.Addr(), "user", c.config.Username)
	return nil
}

// roundTrip writes one request document and reads its response. A failed
// or abandoned read closes the connection so a late response is never
// read by the next request. Caller must hold c.mu.
func (c *Client) roundTrip(ctx context.Context, method, call string) (string, error) {
	iface, name, ok := strings.Cut(method, ".")
	if !ok || iface == "" || name == "" {
		return "", fmt.Errorf("invalid method %q: want Interface.Method", method)
	}

	var req strings.Builder
	fmt.Fprintf(&req, "<%s><%s><call>%s</call></%s></%s>", iface, name, call, name, iface)

	stop := context.AfterFunc(ctx, func() { c.conn.Close() })
	defer stop()

	if err := c.conn.Write([]byte(req.String())); err != nil {
		return "", c.ctxErr(ctx, err)
	}

	timeout := c.config.ReadTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = min(timeout, time.Until(deadline))
	}
	resp, err := c.conn.ReadUntil([]byte("</"+iface+">"), max(timeout, time.Millisecond))
	if err != nil {
		c.conn.Close()
		return "", c.ctxErr(ctx, fmt.Errorf("%s: %w", method, err))
	}

	return extractReturn(method, name, resp)
}

func (c *Client) ctxErr(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return err
}

type responseDocument struct {
	XMLName xml.Name
	Methods []responseMethod `xml:",any"`
}

type responseMethod struct {
	XMLName xml.Name
	Return  *innerXML `xml:"return"`
}

type innerXML struct {
	Inner string `xml:",innerxml"`
}

func extractReturn(method, name string, resp []byte) (string, error) {
	// Skip anything before the document, such as whitespace left over
	// from a previous response
	if i := bytes.IndexByte(resp, '<'); i > 0 {
		resp = resp[i:]
	}

	var doc responseDocument
	if err := xml.Unmarshal(resp, &doc); err != nil {
		return "", &clienterr.ProtocolError{Op: method, Message: "malformed response: " + err.Error()}
	}

	for _, m := range doc.Methods {
		if m.XMLName.Local != name {
			continue
		}
		if m.Return == nil {
			return "", &clienterr.ProtocolError{Op: method, Message: "response did not contain a return value"}
		}
		return m.Return.Inner, nil
	}
	return "", &clienterr.ProtocolError{Op: method, Message: "<" + name + "> element missing from response"}
}

func escape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

func parseBool(method, ret string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(ret)) {
	case "true", "1":
		return true, nil
	case "false", "0":
		return false, nil
	}
	return false, &clienterr.ProtocolError{Op: method, Message: fmt.Sprintf("invalid boolean %q", ret)}
}
