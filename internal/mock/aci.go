package mock

import (
	"bytes"
	"net"
	"regexp"
	"sync"
)

// ACIHandler answers one ACI method call. call is the inner XML of the
// <call> element; the returned string becomes the inner XML of <return>.
type ACIHandler func(call string) string

// ACIRawHandler answers with a complete response document.
type ACIRawHandler func(call string) string

// ACIServer is a fake ACI configuration service.
type ACIServer struct {
	// Username and Password are the credentials ILogin.Login accepts.
	// When empty, any credentials succeed.
	Username string
	Password string

	ln net.Listener

	mu       sync.Mutex
	handlers map[string]ACIHandler
	raw      map[string]ACIRawHandler
	calls    []string
	closed   bool
	conns    map[net.Conn]struct{}
	wg       sync.WaitGroup
}

var (
	openTagPattern = regexp.MustCompile(`^\s*<([A-Za-z]+)>`)
	requestPattern = regexp.MustCompile(`(?s)^\s*<([A-Za-z]+)>\s*<([A-Za-z]+)>\s*(?:<call>(.*)</call>)?\s*</([A-Za-z]+)>`)
	loginPattern   = regexp.MustCompile(`(?s)<User>(.*)</User>\s*<Password>(.*)</Password>`)
)

// NewACIServer starts a fake ACI service on 127.0.0.1.
func NewACIServer() (*ACIServer, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, err
	}

	s := &ACIServer{
		ln:       ln,
		handlers: make(map[string]ACIHandler),
		raw:      make(map[string]ACIRawHandler),
		conns:    make(map[net.Conn]struct{}),
	}
	s.wg.Add(1)
	go s.acceptLoop()
	return s, nil
}

// Host returns the listen host.
func (s *ACIServer) Host() string {
	return "127.0.0.1"
}

// Port returns the listen port.
func (s *ACIServer) Port() int {
	return s.ln.Addr().(*net.TCPAddr).Port
}

// Handle registers a handler for "Interface.Method".
func (s *ACIServer) Handle(method string, h ACIHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[method] = h
}

// HandleRaw registers a handler that writes the whole response document.
func (s *ACIServer) HandleRaw(method string, h ACIRawHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.raw[method] = h
}

// Calls returns every "Interface.Method" received, in order.
func (s *ACIServer) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.calls))
	copy(out, s.calls)
	return out
}

// Close stops the server.
func (s *ACIServer) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	for c := range s.conns {
		c.Close()
	}
	s.mu.Unlock()

	err := s.ln.Close()
	s.wg.Wait()
	return err
}

func (s *ACIServer) acceptLoop() {
	defer s.wg.Done()
	for {
		nc, err := s.ln.Accept()
		if err != nil {
			return
		}
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			nc.Close()
			return
		}
		s.conns[nc] = struct{}{}
		s.mu.Unlock()

		s.wg.Add(1)
		go s.serve(nc)
	}
}

func (s *ACIServer) serve(nc net.Conn) {
	defer s.wg.Done()
	defer func() {
		s.mu.Lock()
		delete(s.conns, nc)
		s.mu.Unlock()
		nc.Close()
	}()

	var buf []byte
	chunk := make([]byte, 4096)
	for {
		doc, rest, ok := nextDocument(buf)
		if ok {
			buf = rest
			if resp := s.respond(doc); resp != "" {
				nc.Write([]byte(resp))
			}
			continue
		}

		n, err := nc.Read(chunk)
		if err != nil {
			return
		}
		buf = append(buf, chunk[:n]...)
	}
}

// nextDocument splits off the first complete <Interface>...</Interface>.
func nextDocument(buf []byte) (doc []byte, rest []byte, ok bool) {
	m := openTagPattern.FindSubmatch(buf)
	if m == nil {
		return nil, buf, false
	}
	closeTag := []byte("</" + string(m[1]) + ">")
	i := bytes.Index(buf, closeTag)
	if i < 0 {
		return nil, buf, false
	}
	end := i + len(closeTag)
	return buf[:end], buf[end:], true
}

func (s *ACIServer) respond(doc []byte) string {
	m := requestPattern.FindSubmatch(doc)
	if m == nil {
		return ""
	}
	iface, method, call := string(m[1]), string(m[2]), string(m[3])
	name := iface + "." + method

	s.mu.Lock()
	s.calls = append(s.calls, name)
	raw := s.raw[name]
	h := s.handlers[name]
	s.mu.Unlock()

	if raw != nil {
		return raw(call)
	}

	var ret string
	switch {
	case h != nil:
		ret = h(call)
	case name == "ILogin.Login":
		ret = "false"
		if lm := loginPattern.FindStringSubmatch(call); lm != nil {
			if s.Username == "" || (lm[1] == s.Username && lm[2] == s.Password) {
				ret = "true"
			}
		}
	default:
		return "<" + iface + "><" + method + "></" + method + "></" + iface + ">"
	}

	return "<" + iface + "><" + method + "><return>" + ret + "</return></" + method + "></" + iface + ">"
}
