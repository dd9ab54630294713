package transport

import (
	"context"
	"sync"
	"time"
)

// Keep-alive constants.
const (
	// DefaultProbeInterval is the default interval between probes.
	DefaultProbeInterval = 30 * time.Second

	// DefaultProbeTimeout is the default timeout for a single probe.
	DefaultProbeTimeout = 5 * time.Second

	// DefaultMaxFailures is the default number of consecutive failed probes
	// before the link is considered dead.
	DefaultMaxFailures = 1
)

// KeepAliveConfig configures keep-alive behavior.
type KeepAliveConfig struct {
	// Interval is the time between probes.
	Interval time.Duration

	// Timeout bounds a single probe.
	Timeout time.Duration

	// MaxFailures is the number of consecutive failures before timeout.
	MaxFailures int
}

// DefaultKeepAliveConfig returns the default keep-alive configuration.
func DefaultKeepAliveConfig() KeepAliveConfig {
	return KeepAliveConfig{
		Interval:    DefaultProbeInterval,
		Timeout:     DefaultProbeTimeout,
		MaxFailures: DefaultMaxFailures,
	}
}

// DetectionDelay calculates the maximum time to detect a dead link.
func (c KeepAliveConfig) DetectionDelay() time.Duration {
	return c.Interval*time.Duration(c.MaxFailures) + c.Timeout
}

// KeepAlive runs a liveness probe on an interval.
type KeepAlive struct {
	config KeepAliveConfig

	probe     func(ctx context.Context) error
	onTimeout func(err error)

	mu          sync.Mutex
	running     bool
	stopCh      chan struct{}
	done        chan struct{}
	failures    int
	lastProbe   time.Time
	lastSuccess time.Time
	lastLatency time.Duration
}

// NewKeepAlive creates a keep-alive manager. probe is called with a context
// bounded by config.Timeout; onTimeout is called once, with the last probe
// error, when MaxFailures consecutive probes fail. The loop stops after
// onTimeout.
func NewKeepAlive(config KeepAliveConfig, probe func(ctx context.Context) error, onTimeout func(err error)) *KeepAlive {
	if config.Interval == 0 {
		config.Interval = DefaultProbeInterval
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultProbeTimeout
	}
	if config.MaxFailures == 0 {
		config.MaxFailures = DefaultMaxFailures
	}

	return &KeepAlive{
		config:    config,
		probe:     probe,
		onTimeout: onTimeout,
	}
}

// Start begins the probe loop. Calling Start while running has no effect.
func (ka *KeepAlive) Start(ctx context.Context) {
	ka.mu.Lock()
	if ka.running {
		ka.mu.Unlock()
		return
	}
	ka.running = true
	ka.failures = 0
	ka.stopCh = make(chan struct{})
	ka.done = make(chan struct{})
	stopCh, done := ka.stopCh, ka.done
	ka.mu.Unlock()

	go ka.loop(ctx, stopCh, done)
}

// Stop stops the probe loop and waits for it to exit.
func (ka *KeepAlive) Stop() {
	ka.mu.Lock()
	if !ka.running {
		ka.mu.Unlock()
		return
	}
	ka.running = false
	close(ka.stopCh)
	done := ka.done
	ka.mu.Unlock()

	<-done
}

// IsRunning returns true if the probe loop is active.
func (ka *KeepAlive) IsRunning() bool {
	ka.mu.Lock()
	defer ka.mu.Unlock()
	return ka.running
}

// Stats returns current keep-alive statistics.
func (ka *KeepAlive) Stats() KeepAliveStats {
	ka.mu.Lock()
	defer ka.mu.Unlock()
	return KeepAliveStats{
		LastProbe:   ka.lastProbe,
		LastSuccess: ka.lastSuccess,
		LastLatency: ka.lastLatency,
		Failures:    ka.failures,
	}
}

// KeepAliveStats contains keep-alive statistics.
type KeepAliveStats struct {
	LastProbe   time.Time
	LastSuccess time.Time
	LastLatency time.Duration
	Failures    int
}

func (ka *KeepAlive) loop(ctx context.Context, stopCh <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(ka.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			ka.markStopped(stopCh)
			return
		case <-stopCh:
			return
		case <-ticker.C:
			if err := ka.runProbe(ctx); err != nil {
				ka.markStopped(stopCh)
				if ka.onTimeout != nil {
					ka.onTimeout(err)
				}
				return
			}
		}
	}
}

// runProbe runs one probe and returns an error only once the failure budget
// is exhausted.
func (ka *KeepAlive) runProbe(ctx context.Context) error {
	probeCtx, cancel := context.WithTimeout(ctx, ka.config.Timeout)
	defer cancel()

	start := time.Now()
	err := ka.probe(probeCtx)

	ka.mu.Lock()
	defer ka.mu.Unlock()

	ka.lastProbe = start
	if err == nil {
		ka.failures = 0
		ka.lastSuccess = time.Now()
		ka.lastLatency = ka.lastSuccess.Sub(start)
		return nil
	}

	ka.failures++
	if ka.failures >= ka.config.MaxFailures {
		return err
	}
	return nil
}

// markStopped clears running if the loop identified by stopCh is still the
// current one.
func (ka *KeepAlive) markStopped(stopCh <-chan struct{}) {
	ka.mu.Lock()
	defer ka.mu.Unlock()
	if ka.running && ka.stopCh == stopCh {
		ka.running = false
	}
}
