package discovery

import (
	"context"
	"maps"
	"net"
	"slices"
	"sync"

	"github.com/enbility/zeroconf/v3"
)

// BrowserConfig configures browser behavior.
type BrowserConfig struct {
	// Interface specifies which network interface to use.
	// Empty string means all interfaces.
	Interface string
}

// Browser finds controllers.
type Browser interface {
	// Browse streams controllers as they are found or change. Each value
	// is a snapshot. The channel closes when ctx is done or Stop is called.
	Browse(ctx context.Context) (<-chan Controller, error)

	// Stop ends all active browsing.
	Stop()
}

// serviceEvent is one answer from one of the two browses.
type serviceEvent struct {
	entry   ServiceEntry
	removed bool
}

// MDNSBrowser implements Browser using zeroconf.
type MDNSBrowser struct {
	config BrowserConfig

	mu      sync.Mutex
	stopped bool
	cancels []context.CancelFunc
}

// NewMDNSBrowser creates a new mDNS browser.
func NewMDNSBrowser(config BrowserConfig) *MDNSBrowser {
	return &MDNSBrowser{config: config}
}

// Browse browses both ACI service types. Controllers are keyed by host:
// addresses from several interfaces and the plain and TLS services are
// merged into one entry.
func (b *MDNSBrowser) Browse(ctx context.Context) (<-chan Controller, error) {
	b.mu.Lock()
	if b.stopped {
		b.mu.Unlock()
		return nil, context.Canceled
	}
	ctx, cancel := context.WithCancel(ctx)
	b.cancels = append(b.cancels, cancel)
	b.mu.Unlock()

	events := make(chan serviceEvent)
	out := make(chan Controller)

	var wg sync.WaitGroup
	for _, service := range []string{ServiceTypeACI, ServiceTypeSecureACI} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.browse(ctx, service, events)
		}()
	}
	go func() {
		wg.Wait()
		close(events)
	}()

	go func() {
		defer close(out)
		defer cancel()
		aggregate(ctx, events, out)
	}()

	return out, nil
}

// aggregate merges service events by host and emits a snapshot whenever a
// controller is added or gains a service or address.
func aggregate(ctx context.Context, events <-chan serviceEvent, out chan<- Controller) {
	controllers := make(map[string]*Controller)

	for {
		var ev serviceEvent
		var ok bool
		select {
		case ev, ok = <-events:
			if !ok {
				return
			}
		case <-ctx.Done():
			return
		}

		c := ev.entry.ToController()
		if c == nil {
			continue
		}

		existing, found := controllers[c.Host]
		if ev.removed {
			if found {
				existing.Addresses = removeAddresses(existing.Addresses, c.Addresses)
				if len(existing.Addresses) == 0 {
					delete(controllers, c.Host)
				}
			}
			continue
		}

		if found {
			before := snapshot(existing)
			existing.merge(c)
			if equalController(before, *existing) {
				continue
			}
		} else {
			controllers[c.Host] = c
			existing = c
		}

		select {
		case out <- snapshot(existing):
		case <-ctx.Done():
			return
		}
	}
}

func (b *MDNSBrowser) browse(ctx context.Context, service string, events chan<- serviceEvent) {
	entries := make(chan *zeroconf.ServiceEntry)
	removed := make(chan *zeroconf.ServiceEntry)

	go func() {
		_ = zeroconf.Browse(ctx, service, Domain, entries, removed, b.browserOptions()...)
	}()

	send := func(entry *zeroconf.ServiceEntry, gone bool) bool {
		select {
		case events <- serviceEvent{entry: toServiceEntry(service, entry), removed: gone}:
			return true
		case <-ctx.Done():
			return false
		}
	}

	for {
		select {
		case entry, ok := <-entries:
			if !ok {
				return
			}
			if !send(entry, false) {
				return
			}
		case entry, ok := <-removed:
			if !ok {
				removed = nil
				continue
			}
			if !send(entry, true) {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// FindControllers browses until ctx is done and returns every controller
// seen, ordered by host.
func (b *MDNSBrowser) FindControllers(ctx context.Context) ([]Controller, error) {
	ch, err := b.Browse(ctx)
	if err != nil {
		return nil, err
	}

	found := make(map[string]Controller)
	for c := range ch {
		found[c.Host] = c
	}

	hosts := slices.Sorted(maps.Keys(found))
	controllers := make([]Controller, 0, len(hosts))
	for _, h := range hosts {
		controllers = append(controllers, found[h])
	}
	return controllers, nil
}

// FindController browses until a controller with the given serial number
// appears.
func (b *MDNSBrowser) FindController(ctx context.Context, serial int) (Controller, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ch, err := b.Browse(ctx)
	if err != nil {
		return Controller{}, err
	}
	for c := range ch {
		if n, ok := c.SerialNumber(); ok && n == serial {
			return c, nil
		}
	}
	return Controller{}, ErrNotFound
}

// Stop ends all active browsing.
func (b *MDNSBrowser) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.stopped = true
	for _, cancel := range b.cancels {
		cancel()
	}
	b.cancels = nil
}

// browserOptions returns zeroconf client options based on config.
func (b *MDNSBrowser) browserOptions() []zeroconf.ClientOption {
	var opts []zeroconf.ClientOption

	// Select specific interface if configured
	if b.config.Interface != "" {
		iface, err := net.InterfaceByName(b.config.Interface)
		if err == nil {
			opts = append(opts, zeroconf.SelectIfaces([]net.Interface{*iface}))
		}
	}

	return opts
}

func toServiceEntry(service string, entry *zeroconf.ServiceEntry) ServiceEntry {
	addrs := make([]net.IP, 0, len(entry.AddrIPv4)+len(entry.AddrIPv6))
	addrs = append(addrs, entry.AddrIPv4...)
	addrs = append(addrs, entry.AddrIPv6...)

	return ServiceEntry{
		Instance: entry.Instance,
		Service:  service,
		Host:     entry.HostName,
		Port:     entry.Port,
		Addrs:    addrs,
	}
}

func snapshot(c *Controller) Controller {
	s := *c
	s.Addresses = slices.Clone(c.Addresses)
	return s
}

func equalController(a, b Controller) bool {
	return a.Instance == b.Instance && a.Host == b.Host && a.Port == b.Port &&
		a.TLSPort == b.TLSPort && slices.Equal(a.Addresses, b.Addresses)
}

// Ensure MDNSBrowser implements Browser interface.
var _ Browser = (*MDNSBrowser)(nil)
