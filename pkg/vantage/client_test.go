package vantage

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vantage-controls/vantage-go/internal/mock"
	"github.com/vantage-controls/vantage-go/pkg/controller"
	"github.com/vantage-controls/vantage-go/pkg/model"
)

var (
	objectTypePattern = regexp.MustCompile(`<ObjectType>([^<]+)</ObjectType>`)
	handlePattern     = regexp.MustCompile(`<hFilter>(\d+)</hFilter>`)
)

// system serves a small project through the ACI filter methods.
type system struct {
	mu      sync.Mutex
	objects map[string][]string
	filters map[string][]string
	next    int
}

func newSystem() *system {
	return &system{
		objects: map[string][]string{
			"Master":              {`<Master VID="1"><Name>Main</Name><SerialNumber>12345</SerialNumber></Master>`},
			"Area":                {`<Area VID="2"><Name>Home</Name></Area>`},
			"Keypad":              {`<Keypad VID="4"><Name>Entry</Name><Area>2</Area></Keypad>`},
			"Load":                {`<Load VID="3"><Name>Pendant</Name><Area>2</Area><LoadType>Incandescent</LoadType></Load>`},
			"Vantage.DGColorLoad": {`<Vantage.DGColorLoad VID="5"><Name>Strip</Name><Area>2</Area></Vantage.DGColorLoad>`},
		},
		filters: make(map[string][]string),
	}
}

func (s *system) install(srv *mock.ACIServer) {
	srv.Handle("IConfiguration.OpenFilter", func(call string) string {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.next++
		handle := fmt.Sprint(s.next)
		var elements []string
		for _, m := range objectTypePattern.FindAllStringSubmatch(call, -1) {
			for _, el := range s.objects[m[1]] {
				elements = append(elements, "<Object>"+el+"</Object>")
			}
		}
		s.filters[handle] = elements
		return handle
	})
	srv.Handle("IConfiguration.GetFilterResults", func(call string) string {
		s.mu.Lock()
		defer s.mu.Unlock()
		m := handlePattern.FindStringSubmatch(call)
		if m == nil {
			return ""
		}
		page := strings.Join(s.filters[m[1]], "")
		s.filters[m[1]] = nil
		return page
	})
	srv.Handle("IConfiguration.CloseFilter", func(string) string { return "true" })
}

func newHostCommandServer(t *testing.T) *mock.HostCommandServer {
	t.Helper()
	srv, err := mock.NewHostCommandServer()
	require.NoError(t, err)
	srv.Handle("ELENHANCE", mock.Reply("R:ELENHANCE ON"))
	srv.Handle("STATUS", func(args []string) []string {
		return []string{"R:STATUS " + args[0]}
	})
	srv.Handle("ELLOG", func(args []string) []string {
		return []string{"R:ELLOG " + args[0] + " ON"}
	})
	srv.HandleInvoke("Introspection.GetFirmwareVersion", func(args []string) []string {
		return []string{"R:INVOKE " + args[0] + " 4.5.1 Introspection.GetFirmwareVersion " + args[1]}
	})
	srv.HandleInvoke("Load.GetLevel", func(args []string) []string {
		return []string{"R:INVOKE " + args[0] + " 100.000 Load.GetLevel"}
	})
	t.Cleanup(func() { srv.Close() })
	return srv
}

func newTestClient(t *testing.T) (*Client, *mock.HostCommandServer) {
	t.Helper()
	aciSrv, err := mock.NewACIServer()
	require.NoError(t, err)
	t.Cleanup(func() { aciSrv.Close() })
	newSystem().install(aciSrv)
	hcSrv := newHostCommandServer(t)

	cfg := DefaultConfig("127.0.0.1")
	cfg.TLS = false
	cfg.ACIPort = aciSrv.Port()
	cfg.HostCommandPort = hcSrv.Port()
	cfg.ReadTimeout = time.Second
	cfg.KeepAlive = -1

	c, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c, hcSrv
}

func TestClientInitialize(t *testing.T) {
	c, srv := newTestClient(t)
	require.NoError(t, c.Initialize(context.Background()))

	master, ok := c.Masters.Get(1)
	require.True(t, ok)
	assert.Equal(t, 12345, master.SerialNumber)
	assert.Equal(t, "4.5.1", master.FirmwareVersion)

	assert.Equal(t, []int{2}, c.Areas.KnownIDs())
	assert.Equal(t, []int{4}, c.Stations.KnownIDs())

	load, ok := c.Loads.Get(3)
	require.True(t, ok)
	assert.Equal(t, "Pendant", load.Name)
	require.NotNil(t, load.Level)
	assert.True(t, load.Level.Equal(decimal.NewFromInt(100)))

	strip, ok := c.RGBLoads.Get(5)
	require.True(t, ok)
	assert.True(t, strip.IsOn())

	assert.True(t, c.Loads.SubscribedToStateChanges())
	assert.True(t, c.RGBLoads.SubscribedToStateChanges())
	assert.False(t, c.Areas.SubscribedToStateChanges())
	assert.ElementsMatch(t, []string{"LOAD"}, c.Events().StatusTypes())
	assert.ElementsMatch(t, []string{"STATUS", "STATUSEX"}, c.Events().LogKinds())
	assert.Contains(t, srv.Received(), "STATUS LOAD")
}

func TestClientFollowsLoadStatus(t *testing.T) {
	c, srv := newTestClient(t)
	require.NoError(t, c.Initialize(context.Background()))

	levels := make(chan string, 4)
	c.Loads.Subscribe(controller.Immediate(func(event controller.EventType, obj *model.Load, data controller.EventData) {
		if event == controller.ObjectUpdated && obj.Level != nil {
			levels <- obj.Level.String()
		}
	}), controller.WithIDs(3))

	require.NoError(t, srv.Push("S:LOAD 3 25.000"))

	select {
	case level := <-levels:
		assert.Equal(t, "25", level)
	case <-time.After(2 * time.Second):
		t.Fatal("no load update")
	}
}

func TestClientFollowsInterfaceStatus(t *testing.T) {
	c, srv := newTestClient(t)
	require.NoError(t, c.Initialize(context.Background()))

	levels := make(chan string, 4)
	c.Loads.Subscribe(controller.Immediate(func(event controller.EventType, obj *model.Load, data controller.EventData) {
		if event == controller.ObjectUpdated && obj.Level != nil {
			levels <- obj.Level.String()
		}
	}), controller.WithIDs(3))
	strips := make(chan bool, 4)
	c.RGBLoads.Subscribe(controller.Immediate(func(event controller.EventType, obj *model.RGBLoad, data controller.EventData) {
		if event == controller.ObjectUpdated {
			strips <- obj.IsOn()
		}
	}), controller.WithIDs(5))

	require.NoError(t, srv.Push("EL: 3 Load.GetLevel 25000"))
	require.NoError(t, srv.Push("EL: 5 Load.GetLevel 0"))

	select {
	case level := <-levels:
		assert.Equal(t, "25", level)
	case <-time.After(2 * time.Second):
		t.Fatal("no load update")
	}
	select {
	case on := <-strips:
		assert.False(t, on)
	case <-time.After(2 * time.Second):
		t.Fatal("no rgb load update")
	}

	load, _ := c.Loads.Get(3)
	assert.True(t, load.Level.Equal(decimal.NewFromInt(25)))
}

func TestClientInitializeConfigOnly(t *testing.T) {
	c, srv := newTestClient(t)
	require.NoError(t, c.InitializeConfig(context.Background()))

	load, ok := c.Loads.Get(3)
	require.True(t, ok)
	assert.Nil(t, load.Level)
	assert.False(t, c.Loads.SubscribedToStateChanges())
	assert.False(t, c.Events().Started())
	assert.Empty(t, srv.Received())
}

func TestNewInvalidConfig(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}
