package transport

import (
	"context"
	"errors"
	"net"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vantage-controls/vantage-go/pkg/clienterr"
	"github.com/vantage-controls/vantage-go/pkg/log"
)

// testServer accepts one connection at a time and hands it to the test.
type testServer struct {
	ln    net.Listener
	conns chan net.Conn
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := &testServer{ln: ln, conns: make(chan net.Conn, 4)}
	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			s.conns <- c
		}
	}()
	t.Cleanup(func() { ln.Close() })
	return s
}

func (s *testServer) port() int {
	return s.ln.Addr().(*net.TCPAddr).Port
}

func (s *testServer) accept(t *testing.T) net.Conn {
	t.Helper()
	select {
	case c := <-s.conns:
		t.Cleanup(func() { c.Close() })
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("no connection accepted")
		return nil
	}
}

// captureLogger records capture events.
type captureLogger struct {
	mu     sync.Mutex
	events []log.Event
}

func (c *captureLogger) Log(e log.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
}

func (c *captureLogger) lines(dir log.Direction) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []string
	for _, e := range c.events {
		if e.Line != nil && e.Direction == dir {
			out = append(out, e.Line.Text)
		}
	}
	return out
}

func newTestConn(t *testing.T, port int, mutate ...func(*Config)) *Conn {
	t.Helper()
	cfg := DefaultConfig("127.0.0.1", port)
	for _, m := range mutate {
		m(&cfg)
	}
	c, err := NewConn(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", DefaultConfig("controller.local", 3001), false},
		{"missing host", DefaultConfig("", 3001), true},
		{"zero port", DefaultConfig("h", 0), true},
		{"port too large", DefaultConfig("h", 70000), true},
		{"negative timeout", Config{Host: "h", Port: 1, ConnectTimeout: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConnOpenWriteRead(t *testing.T) {
	srv := newTestServer(t)
	capture := &captureLogger{}
	c := newTestConn(t, srv.port(), func(cfg *Config) { cfg.ProtocolLogger = capture })

	assert.True(t, c.Closed())
	require.NoError(t, c.Open(context.Background()))
	assert.False(t, c.Closed())
	assert.NotEmpty(t, c.ID())

	peer := srv.accept(t)

	require.NoError(t, c.Write([]byte("ECHO\n")))
	buf := make([]byte, 16)
	n, err := peer.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "ECHO\n", string(buf[:n]))

	_, err = peer.Write([]byte("R:ECHO\r\n"))
	require.NoError(t, err)

	line, err := c.ReadUntil([]byte("\r\n"), time.Second)
	require.NoError(t, err)
	assert.Equal(t, "R:ECHO\r\n", string(line))

	assert.Equal(t, []string{"ECHO"}, capture.lines(log.DirectionOut))
	assert.Equal(t, []string{"R:ECHO"}, capture.lines(log.DirectionIn))
}

func TestConnOpenIsIdempotent(t *testing.T) {
	srv := newTestServer(t)
	c := newTestConn(t, srv.port())

	require.NoError(t, c.Open(context.Background()))
	id := c.ID()
	require.NoError(t, c.Open(context.Background()))
	assert.Equal(t, id, c.ID())
}

func TestConnRetainsRemainder(t *testing.T) {
	srv := newTestServer(t)
	c := newTestConn(t, srv.port())
	require.NoError(t, c.Open(context.Background()))
	peer := srv.accept(t)

	_, err := peer.Write([]byte("S:LOAD 12 50.000\r\nR:GETLOAD 12 50.000\r\nR:ECH"))
	require.NoError(t, err)

	first, err := c.ReadUntil([]byte("\r\n"), time.Second)
	require.NoError(t, err)
	assert.Equal(t, "S:LOAD 12 50.000\r\n", string(first))

	second, err := c.ReadUntil([]byte("\r\n"), time.Second)
	require.NoError(t, err)
	assert.Equal(t, "R:GETLOAD 12 50.000\r\n", string(second))

	_, err = peer.Write([]byte("O\r\n"))
	require.NoError(t, err)

	third, err := c.ReadUntil([]byte("\r\n"), time.Second)
	require.NoError(t, err)
	assert.Equal(t, "R:ECHO\r\n", string(third))
}

func TestConnTerminatorSplitAcrossReads(t *testing.T) {
	srv := newTestServer(t)
	c := newTestConn(t, srv.port())
	require.NoError(t, c.Open(context.Background()))
	peer := srv.accept(t)

	go func() {
		peer.Write([]byte("<Interface>ok</Inter"))
		time.Sleep(20 * time.Millisecond)
		peer.Write([]byte("face>tail"))
	}()

	doc, err := c.ReadUntil([]byte("</Interface>"), time.Second)
	require.NoError(t, err)
	assert.Equal(t, "<Interface>ok</Interface>", string(doc))
}

func TestConnReadTimeoutKeepsConnection(t *testing.T) {
	srv := newTestServer(t)
	c := newTestConn(t, srv.port())
	require.NoError(t, c.Open(context.Background()))
	peer := srv.accept(t)

	_, err := peer.Write([]byte("R:GET"))
	require.NoError(t, err)

	_, err = c.ReadUntil([]byte("\r\n"), 50*time.Millisecond)
	assert.ErrorIs(t, err, clienterr.ErrTimeout)
	assert.False(t, c.Closed(), "timeout must not close the connection")

	_, err = peer.Write([]byte("LOAD 1 0\r\n"))
	require.NoError(t, err)

	line, err := c.ReadUntil([]byte("\r\n"), time.Second)
	require.NoError(t, err)
	assert.Equal(t, "R:GETLOAD 1 0\r\n", string(line))
}

func TestConnPeerCloseClosesConnection(t *testing.T) {
	srv := newTestServer(t)
	c := newTestConn(t, srv.port())
	require.NoError(t, c.Open(context.Background()))
	peer := srv.accept(t)
	peer.Close()

	_, err := c.ReadUntil([]byte("\r\n"), time.Second)
	require.Error(t, err)
	assert.ErrorIs(t, err, clienterr.ErrConnection)
	assert.True(t, c.Closed())

	assert.ErrorIs(t, c.Write([]byte("ECHO\n")), clienterr.ErrConnectionClosed)
}

func TestConnCloseUnblocksRead(t *testing.T) {
	srv := newTestServer(t)
	c := newTestConn(t, srv.port())
	require.NoError(t, c.Open(context.Background()))
	srv.accept(t)

	errCh := make(chan error, 1)
	go func() {
		_, err := c.ReadUntil([]byte("\r\n"), 0)
		errCh <- err
	}()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, c.Close())

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, clienterr.ErrConnectionClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("ReadUntil did not return after Close")
	}

	// Close is idempotent
	assert.NoError(t, c.Close())
}

func TestConnReopenAssignsNewID(t *testing.T) {
	srv := newTestServer(t)
	c := newTestConn(t, srv.port())

	require.NoError(t, c.Open(context.Background()))
	first := c.ID()
	srv.accept(t)
	require.NoError(t, c.Close())
	assert.Empty(t, c.ID())

	require.NoError(t, c.Open(context.Background()))
	srv.accept(t)
	assert.NotEqual(t, first, c.ID())
}

func TestConnBufferOverflow(t *testing.T) {
	srv := newTestServer(t)
	c := newTestConn(t, srv.port(), func(cfg *Config) { cfg.BufferLimit = 64 })
	require.NoError(t, c.Open(context.Background()))
	peer := srv.accept(t)

	_, err := peer.Write(make([]byte, 128))
	require.NoError(t, err)

	_, err = c.ReadUntil([]byte("\r\n"), time.Second)
	assert.ErrorIs(t, err, ErrBufferOverflow)
	assert.True(t, c.Closed())
}

func TestConnOpenRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	c := newTestConn(t, port)
	err = c.Open(context.Background())
	require.Error(t, err)

	var connErr *clienterr.ConnectionError
	require.True(t, errors.As(err, &connErr))
	assert.Equal(t, "dial", connErr.Op)
	assert.Equal(t, net.JoinHostPort("127.0.0.1", strconv.Itoa(port)), connErr.Addr)
	assert.True(t, c.Closed())
}

func TestConnWriteWhenClosed(t *testing.T) {
	c := newTestConn(t, 3001)
	assert.ErrorIs(t, c.Write([]byte("ECHO\n")), clienterr.ErrConnectionClosed)

	_, err := c.ReadUntil([]byte("\n"), time.Millisecond)
	assert.ErrorIs(t, err, clienterr.ErrConnectionClosed)
}

func TestConnectionStateString(t *testing.T) {
	assert.Equal(t, "CLOSED", StateClosed.String())
	assert.Equal(t, "CONNECTING", StateConnecting.String())
	assert.Equal(t, "OPEN", StateOpen.String())
	assert.Equal(t, "UNKNOWN", ConnectionState(42).String())
}
