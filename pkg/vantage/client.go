package vantage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/pool"

	"github.com/vantage-controls/vantage-go/pkg/aci"
	"github.com/vantage-controls/vantage-go/pkg/controller"
	"github.com/vantage-controls/vantage-go/pkg/events"
	"github.com/vantage-controls/vantage-go/pkg/hostcmd"
	"github.com/vantage-controls/vantage-go/pkg/log"
)

// Compile-time interface satisfaction checks.
var (
	_ controller.ObjectSource = (*aci.Client)(nil)
	_ controller.EventSource  = (*events.EventStream)(nil)
)

// initializer is the part of a controller Initialize drives.
type initializer interface {
	Name() string
	Initialize(ctx context.Context, fetchState bool) error
	Close()
	Wait()
}

// Client is a connected view of one Vantage system.
type Client struct {
	config Config
	logger *slog.Logger

	aci     *aci.Client
	command *hostcmd.Client
	events  *events.EventStream
	capture *log.FileLogger
	wg      *conc.WaitGroup

	Masters  *controller.Masters
	Areas    *controller.Areas
	Stations *controller.Stations
	Loads    *controller.Loads
	RGBLoads *controller.RGBLoads

	closeOnce sync.Once
}

// New creates a client. No connection is opened until the first request.
func New(config Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	config.Logger = logger

	c := &Client{config: config, logger: logger, wg: &conc.WaitGroup{}}

	var protocol []log.Logger
	if config.ProtocolLogger != nil {
		protocol = append(protocol, config.ProtocolLogger)
	}
	if config.CaptureFile != "" {
		capture, err := log.NewFileLogger(config.CaptureFile)
		if err != nil {
			return nil, fmt.Errorf("open capture file: %w", err)
		}
		c.capture = capture
		protocol = append(protocol, capture)
	}
	var protocolLogger log.Logger
	switch len(protocol) {
	case 0:
	case 1:
		protocolLogger = protocol[0]
	default:
		protocolLogger = log.NewMultiLogger(protocol...)
	}

	var err error
	if c.aci, err = aci.NewClient(config.aciConfig(protocolLogger)); err != nil {
		c.closeCapture()
		return nil, err
	}
	if c.command, err = hostcmd.NewClient(config.hostCommandConfig(protocolLogger)); err != nil {
		c.closeCapture()
		return nil, err
	}
	if c.events, err = events.NewEventStream(config.eventsConfig(protocolLogger)); err != nil {
		c.closeCapture()
		return nil, err
	}

	deps := controller.Deps{
		Objects:   c.aci,
		Events:    c.events,
		Invoker:   c.command,
		Scheduler: c.wg,
		Logger:    logger,
	}
	c.Masters = controller.NewMasters(deps)
	c.Areas = controller.NewAreas(deps)
	c.Stations = controller.NewStations(deps)
	c.Loads = controller.NewLoads(deps)
	c.RGBLoads = controller.NewRGBLoads(deps)

	return c, nil
}

func (c *Client) controllers() []initializer {
	return []initializer{c.Masters, c.Areas, c.Stations, c.Loads, c.RGBLoads}
}

// Initialize loads every controller, fetches live state and follows
// state changes. It can be called again to reconcile with the current
// configuration.
func (c *Client) Initialize(ctx context.Context) error {
	return c.initialize(ctx, true)
}

// InitializeConfig loads every controller without fetching state.
func (c *Client) InitializeConfig(ctx context.Context) error {
	return c.initialize(ctx, false)
}

func (c *Client) initialize(ctx context.Context, fetchState bool) error {
	p := pool.New().WithContext(ctx).WithCancelOnError()
	for _, ctrl := range c.controllers() {
		p.Go(func(ctx context.Context) error {
			if err := ctrl.Initialize(ctx, fetchState); err != nil {
				return fmt.Errorf("%s: %w", ctrl.Name(), err)
			}
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return err
	}
	c.logger.Info("vantage initialized",
		"masters", c.Masters.Len(),
		"areas", c.Areas.Len(),
		"stations", c.Stations.Len(),
		"loads", c.Loads.Len(),
		"rgb_loads", c.RGBLoads.Len())
	return nil
}

// Command returns the shared Host Command client.
func (c *Client) Command() *hostcmd.Client {
	return c.command
}

// Config returns the configuration client.
func (c *Client) Config() *aci.Client {
	return c.aci
}

// Events returns the event stream.
func (c *Client) Events() *events.EventStream {
	return c.events
}

// GetBackup fetches the Design Center project file.
func (c *Client) GetBackup(ctx context.Context) ([]byte, error) {
	return c.aci.GetBackup(ctx)
}

// Close stops the event stream, waits for scheduled callbacks and closes
// both clients. Cached objects stay readable.
func (c *Client) Close() error {
	var errs []error
	c.closeOnce.Do(func() {
		for _, ctrl := range c.controllers() {
			ctrl.Close()
		}
		c.events.Stop()
		c.wg.Wait()
		if err := c.command.Close(); err != nil {
			errs = append(errs, err)
		}
		if err := c.aci.Close(); err != nil {
			errs = append(errs, err)
		}
		if err := c.closeCapture(); err != nil {
			errs = append(errs, err)
		}
	})
	return errors.Join(errs...)
}

func (c *Client) closeCapture() error {
	if c.capture == nil {
		return nil
	}
	if err := c.capture.Err(); err != nil {
		c.logger.Warn("capture incomplete", "path", c.capture.Path(), "events", c.capture.Events(), "error", err)
	}
	return c.capture.Close()
}
