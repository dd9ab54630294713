package mock

import (
	"bufio"
	"net"
	"strconv"
	"strings"
	"sync"
)

// CommandHandler answers one request. args are the whitespace-separated
// tokens after the command name. The returned lines are written in order,
// each followed by "\r\n"; returning nil sends nothing.
type CommandHandler func(args []string) []string

// HostCommandServer is a fake Host Command service.
type HostCommandServer struct {
	// Username and Password, when set, make every command other than
	// LOGIN and ECHO fail with error 21 until the connection logs in.
	Username string
	Password string

	ln net.Listener

	mu       sync.Mutex
	handlers map[string]CommandHandler
	invokes  map[string]CommandHandler
	conns    map[*hcConn]struct{}
	received []string
	accepted int
	closed   bool
	wg       sync.WaitGroup
}

type hcConn struct {
	nc      net.Conn
	writeMu sync.Mutex
	authed  bool
}

// NewHostCommandServer starts a fake Host Command service on 127.0.0.1.
func NewHostCommandServer() (*HostCommandServer, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, err
	}

	s := &HostCommandServer{
		ln:       ln,
		handlers: make(map[string]CommandHandler),
		invokes:  make(map[string]CommandHandler),
		conns:    make(map[*hcConn]struct{}),
	}

	s.wg.Add(1)
	go s.acceptLoop()
	return s, nil
}

// Host returns the listen host.
func (s *HostCommandServer) Host() string {
	return "127.0.0.1"
}

// Port returns the listen port.
func (s *HostCommandServer) Port() int {
	return s.ln.Addr().(*net.TCPAddr).Port
}

// Handle registers a handler for a command name (case-insensitive).
func (s *HostCommandServer) Handle(command string, h CommandHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[strings.ToUpper(command)] = h
}

// HandleInvoke registers a handler for "INVOKE <vid> <method> ...".
// The handler receives the vid as args[0] followed by the method arguments.
func (s *HostCommandServer) HandleInvoke(method string, h CommandHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invokes[method] = h
}

// Reply returns a handler that always answers with the given lines.
func Reply(lines ...string) CommandHandler {
	return func([]string) []string { return lines }
}

// Received returns a copy of every request line received, in order.
func (s *HostCommandServer) Received() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.received))
	copy(out, s.received)
	return out
}

// Accepted returns the number of connections accepted so far.
func (s *HostCommandServer) Accepted() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accepted
}

// Connections returns the number of live connections.
func (s *HostCommandServer) Connections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

// Push writes an unsolicited line to every connected client.
func (s *HostCommandServer) Push(line string) error {
	s.mu.Lock()
	conns := make([]*hcConn, 0, len(s.conns))
	for c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	if len(conns) == 0 {
		return ErrNoConnections
	}
	for _, c := range conns {
		c.write([]string{line})
	}
	return nil
}

// DropConnections closes every client connection but keeps listening.
func (s *HostCommandServer) DropConnections() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.conns {
		c.nc.Close()
	}
}

// Close stops the server and closes all connections.
func (s *HostCommandServer) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	for c := range s.conns {
		c.nc.Close()
	}
	s.mu.Unlock()

	err := s.ln.Close()
	s.wg.Wait()
	return err
}

func (s *HostCommandServer) acceptLoop() {
	defer s.wg.Done()
	for {
		nc, err := s.ln.Accept()
		if err != nil {
			return
		}

		c := &hcConn{nc: nc}
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			nc.Close()
			return
		}
		s.conns[c] = struct{}{}
		s.accepted++
		s.mu.Unlock()

		s.wg.Add(1)
		go s.serve(c)
	}
}

func (s *HostCommandServer) serve(c *hcConn) {
	defer s.wg.Done()
	defer func() {
		s.mu.Lock()
		delete(s.conns, c)
		s.mu.Unlock()
		c.nc.Close()
	}()

	scanner := bufio.NewScanner(c.nc)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}

		s.mu.Lock()
		s.received = append(s.received, line)
		s.mu.Unlock()

		c.write(s.dispatch(c, line))
	}
}

func (s *HostCommandServer) dispatch(c *hcConn, line string) []string {
	fields := strings.Fields(line)
	cmd := strings.ToUpper(fields[0])
	args := fields[1:]

	switch cmd {
	case "LOGIN":
		if len(args) == 2 && args[0] == s.Username && args[1] == s.Password {
			c.authed = true
			return []string{"R:LOGIN"}
		}
		return []string{"R:ERROR:23 Login failed"}
	case "ECHO":
		if h := s.handler(cmd); h != nil {
			return h(args)
		}
		return []string{"R:" + line}
	}

	if s.Username != "" && !c.authed {
		return []string{"R:ERROR:21 Login Required"}
	}

	if cmd == "INVOKE" && len(args) >= 2 {
		s.mu.Lock()
		h := s.invokes[args[1]]
		s.mu.Unlock()
		if h != nil {
			return h(append([]string{args[0]}, args[2:]...))
		}
	}

	if h := s.handler(cmd); h != nil {
		return h(args)
	}
	return []string{"R:ERROR:4 Invalid command " + strconv.Quote(fields[0])}
}

func (s *HostCommandServer) handler(cmd string) CommandHandler {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handlers[cmd]
}

func (c *hcConn) write(lines []string) {
	if len(lines) == 0 {
		return
	}
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l)
		b.WriteString("\r\n")
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.nc.Write([]byte(b.String()))
}
