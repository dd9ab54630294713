package aci

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vantage-controls/vantage-go/internal/mock"
	"github.com/vantage-controls/vantage-go/pkg/clienterr"
	"github.com/vantage-controls/vantage-go/pkg/model"
)

func newTestServer(t *testing.T) *mock.ACIServer {
	t.Helper()
	srv, err := mock.NewACIServer()
	require.NoError(t, err)
	t.Cleanup(func() { srv.Close() })
	return srv
}

func newTestClient(t *testing.T, srv *mock.ACIServer, mutate ...func(*Config)) *Client {
	t.Helper()
	cfg := DefaultConfig(srv.Host())
	cfg.Port = srv.Port()
	cfg.TLS = false
	cfg.ReadTimeout = time.Second
	for _, m := range mutate {
		m(&cfg)
	}
	c, err := NewClient(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func withCredentials(user, password string) func(*Config) {
	return func(c *Config) {
		c.Username = user
		c.Password = password
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig("controller")
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultTLSPort, cfg.EffectivePort())

	cfg.TLS = false
	assert.Equal(t, DefaultPort, cfg.EffectivePort())

	cfg.Password = "secret"
	assert.Error(t, cfg.Validate())
	assert.Error(t, (&Config{}).Validate())
}

func TestRequest(t *testing.T) {
	srv := newTestServer(t)
	srv.Handle("IIntrospection.GetVersion", func(string) string {
		return "<kernel>4.9</kernel><rootfs>2.1</rootfs><app>3.8.1</app>"
	})
	c := newTestClient(t, srv)

	ret, err := c.Request(context.Background(), MethodGetVersion, "")
	require.NoError(t, err)
	assert.Equal(t, "<kernel>4.9</kernel><rootfs>2.1</rootfs><app>3.8.1</app>", ret)

	v, err := c.GetVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Version{Kernel: "4.9", RootFS: "2.1", App: "3.8.1"}, v)
}

func TestRequestInvalidMethod(t *testing.T) {
	c := newTestClient(t, newTestServer(t))
	_, err := c.Request(context.Background(), "GetVersion", "")
	assert.Error(t, err)
}

func TestRequestMissingReturn(t *testing.T) {
	srv := newTestServer(t)
	c := newTestClient(t, srv)

	_, err := c.Request(context.Background(), "IConfiguration.Unhandled", "")
	assert.ErrorIs(t, err, clienterr.ErrProtocol)
	assert.Contains(t, err.Error(), "return value")
}

func TestRequestMissingElement(t *testing.T) {
	srv := newTestServer(t)
	srv.HandleRaw("IIntrospection.GetVersion", func(string) string {
		return "<IIntrospection><GetSomethingElse><return>1</return></GetSomethingElse></IIntrospection>"
	})
	c := newTestClient(t, srv)

	_, err := c.GetVersion(context.Background())
	assert.ErrorIs(t, err, clienterr.ErrProtocol)
	assert.Contains(t, err.Error(), "<GetVersion> element missing")
}

func TestLoginOnFreshConnection(t *testing.T) {
	srv := newTestServer(t)
	srv.Username, srv.Password = "admin", "s3cret"
	srv.Handle("IIntrospection.GetVersion", func(string) string { return "<app>1</app>" })
	c := newTestClient(t, srv, withCredentials("admin", "s3cret"))
	ctx := context.Background()

	_, err := c.GetVersion(ctx)
	require.NoError(t, err)
	_, err = c.GetVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{MethodLogin, MethodGetVersion, MethodGetVersion}, srv.Calls())

	require.NoError(t, c.Close())
	_, err = c.GetVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, MethodLogin, srv.Calls()[3])
}

func TestNoLoginWithoutCredentials(t *testing.T) {
	srv := newTestServer(t)
	srv.Handle("IIntrospection.GetVersion", func(string) string { return "<app>1</app>" })
	c := newTestClient(t, srv)

	_, err := c.GetVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{MethodGetVersion}, srv.Calls())
}

func TestLoginFailed(t *testing.T) {
	srv := newTestServer(t)
	srv.Username, srv.Password = "admin", "right"
	c := newTestClient(t, srv, withCredentials("admin", "wrong"))

	_, err := c.GetVersion(context.Background())
	assert.ErrorIs(t, err, clienterr.ErrLoginFailed)
	assert.Equal(t, []string{MethodLogin}, srv.Calls())
}

func TestLoginMethod(t *testing.T) {
	srv := newTestServer(t)
	srv.Username, srv.Password = "admin", "right"
	c := newTestClient(t, srv)
	ctx := context.Background()

	ok, err := c.Login(ctx, "admin", "wrong")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = c.Login(ctx, "admin", "right")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestReadTimeoutClosesConnection(t *testing.T) {
	srv := newTestServer(t)
	srv.HandleRaw("IIntrospection.GetVersion", func(string) string { return "" })
	c := newTestClient(t, srv, func(cfg *Config) { cfg.ReadTimeout = 50 * time.Millisecond })

	_, err := c.GetVersion(context.Background())
	assert.ErrorIs(t, err, clienterr.ErrTimeout)
	assert.True(t, c.conn.Closed())
}

func TestContextCanceled(t *testing.T) {
	srv := newTestServer(t)
	srv.HandleRaw("IIntrospection.GetVersion", func(string) string { return "" })
	c := newTestClient(t, srv, func(cfg *Config) { cfg.ReadTimeout = 5 * time.Second })

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(30*time.Millisecond, cancel)

	start := time.Now()
	_, err := c.GetVersion(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestGetBackup(t *testing.T) {
	project := []byte(`<Project><Objects/></Project>`)
	encoded := base64.StdEncoding.EncodeToString(project)

	t.Run("plain", func(t *testing.T) {
		srv := newTestServer(t)
		var got string
		srv.Handle(MethodGetFile, func(call string) string {
			got = call
			return encoded
		})
		c := newTestClient(t, srv)

		data, err := c.GetBackup(context.Background())
		require.NoError(t, err)
		assert.Equal(t, project, data)
		assert.Equal(t, `Backup\Project.dc`, got)
	})

	t.Run("file element", func(t *testing.T) {
		srv := newTestServer(t)
		srv.Handle(MethodGetFile, func(string) string {
			return "<Signature>abc</Signature><File>" + encoded[:10] + "\n" + encoded[10:] + "</File>"
		})
		c := newTestClient(t, srv)

		data, err := c.GetBackup(context.Background())
		require.NoError(t, err)
		assert.Equal(t, project, data)
	})

	t.Run("invalid", func(t *testing.T) {
		srv := newTestServer(t)
		srv.Handle(MethodGetFile, func(string) string { return "!!!" })
		c := newTestClient(t, srv)

		_, err := c.GetBackup(context.Background())
		assert.ErrorIs(t, err, clienterr.ErrProtocol)
	})
}

// filterServer serves pages of objects through the filter methods.
type filterServer struct {
	mu     sync.Mutex
	pages  []string
	next   int
	opened string
	closed []string
	counts []string
}

func (f *filterServer) install(srv *mock.ACIServer) {
	srv.Handle(MethodOpenFilter, func(call string) string {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.opened = call
		return "77"
	})
	srv.Handle(MethodGetFilterResults, func(call string) string {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.counts = append(f.counts, call)
		if f.next >= len(f.pages) {
			return ""
		}
		p := f.pages[f.next]
		f.next++
		return p
	})
	srv.Handle(MethodCloseFilter, func(call string) string {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.closed = append(f.closed, call)
		return "true"
	})
}

func loadElement(vid int, name string) string {
	return fmt.Sprintf(`<Object><Load VID="%d" Master="1"><Name>%s</Name><Area>2</Area></Load></Object>`, vid, name)
}

func TestGetObjectsPaging(t *testing.T) {
	srv := newTestServer(t)
	f := &filterServer{pages: []string{
		loadElement(1, "A") + loadElement(2, "B"),
		`<Object><Thermostat VID="9"/></Object>`,
		loadElement(3, "C"),
	}}
	f.install(srv)
	c := newTestClient(t, srv, func(cfg *Config) { cfg.PageSize = 2 })

	var ids []int
	for obj, err := range c.GetObjects(context.Background(), "Load") {
		require.NoError(t, err)
		ids = append(ids, obj.ID())
		assert.IsType(t, &model.Load{}, obj)
	}

	assert.Equal(t, []int{1, 2, 3}, ids)
	assert.Equal(t, "<Objects><ObjectType>Load</ObjectType></Objects>", f.opened)
	assert.Len(t, f.counts, 4, "three pages then an empty one")
	assert.Contains(t, f.counts[0], "<Count>2</Count>")
	assert.Contains(t, f.counts[0], "<hFilter>77</hFilter>")
	assert.Equal(t, []string{"77"}, f.closed)
	assert.Equal(t, MethodCloseFilter, srv.Calls()[len(srv.Calls())-1])
}

func TestGetObjectsEarlyStopClosesFilter(t *testing.T) {
	srv := newTestServer(t)
	f := &filterServer{pages: []string{loadElement(1, "A") + loadElement(2, "B"), loadElement(3, "C")}}
	f.install(srv)
	c := newTestClient(t, srv)

	for obj, err := range c.GetObjects(context.Background(), "Load") {
		require.NoError(t, err)
		assert.Equal(t, 1, obj.ID())
		break
	}

	assert.Len(t, f.counts, 1)
	assert.Equal(t, []string{"77"}, f.closed)
}

func TestGetObjectsOpenFails(t *testing.T) {
	srv := newTestServer(t)
	srv.Handle(MethodOpenFilter, func(string) string { return "not-a-handle" })
	c := newTestClient(t, srv)

	var errs []error
	for _, err := range c.GetObjects(context.Background(), "Area") {
		errs = append(errs, err)
	}
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], clienterr.ErrProtocol)
}

func TestGetObjectsAllTypes(t *testing.T) {
	srv := newTestServer(t)
	f := &filterServer{}
	f.install(srv)
	c := newTestClient(t, srv)

	for range c.GetObjects(context.Background()) {
		t.Fatal("expected no objects")
	}
	assert.Empty(t, f.opened)
}

func TestEscape(t *testing.T) {
	assert.Equal(t, "a&amp;b&lt;c&gt;", escape("a&b<c>"))
	assert.True(t, strings.HasPrefix(loginCall("u", "p<"), "<User>u</User>"))
}
