package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/shopspring/decimal"

	"github.com/vantage-controls/vantage-go/pkg/controller"
	"github.com/vantage-controls/vantage-go/pkg/model"
	"github.com/vantage-controls/vantage-go/pkg/vantage"
)

const requestTimeout = 10 * time.Second

// Shell is the interactive console.
type Shell struct {
	client *vantage.Client
	rl     *readline.Instance
}

// NewShell creates the console. The client is attached before Run.
func NewShell() (*Shell, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "vantage> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	return &Shell{rl: rl}, nil
}

// Stdout returns a writer that coordinates with the prompt.
func (s *Shell) Stdout() io.Writer {
	return s.rl.Stdout()
}

// Stderr returns a writer that coordinates with the prompt.
func (s *Shell) Stderr() io.Writer {
	return s.rl.Stderr()
}

// sync fetches the loads with their levels and prints every change the
// controller reports afterwards.
func (s *Shell) sync(ctx context.Context) error {
	s.client.Loads.Subscribe(controller.Immediate(func(ev controller.EventType, load *model.Load, data controller.EventData) {
		if ev != controller.ObjectUpdated || !s.client.Loads.Initialized() {
			return
		}
		fmt.Fprintf(s.Stdout(), "* [%d] %s %s\n", load.VID, load.Name, formatLevel(load.Level))
	}))

	ctx, cancel := context.WithTimeout(ctx, 2*requestTimeout)
	defer cancel()
	if err := s.client.Loads.Initialize(ctx, true); err != nil {
		return err
	}
	fmt.Fprintf(s.Stdout(), "%d loads\n", s.client.Loads.Len())
	return nil
}

// Run starts the command loop.
func (s *Shell) Run(ctx context.Context, cancel context.CancelFunc) {
	defer s.rl.Close()

	s.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := s.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(s.Stdout(), "Exiting...")
			cancel()
			return
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		args := parts[1:]

		switch strings.ToLower(parts[0]) {
		case "help", "?":
			s.printHelp()

		case "quit", "exit", "q":
			fmt.Fprintln(s.Stdout(), "Exiting...")
			cancel()
			return

		case "loads", "l":
			s.cmdLoads(args)

		case "on":
			s.withLoad(ctx, args, 1, func(ctx context.Context, vid int) error {
				return s.client.Loads.TurnOn(ctx, vid)
			})

		case "off":
			s.withLoad(ctx, args, 1, func(ctx context.Context, vid int) error {
				return s.client.Loads.TurnOff(ctx, vid)
			})

		case "level":
			s.withLoad(ctx, args, 2, func(ctx context.Context, vid int) error {
				level, err := decimal.NewFromString(args[1])
				if err != nil {
					return fmt.Errorf("invalid level %q", args[1])
				}
				return s.client.Loads.SetLevel(ctx, vid, level)
			})

		case "ramp":
			s.withLoad(ctx, args, 3, func(ctx context.Context, vid int) error {
				seconds, err := decimal.NewFromString(args[1])
				if err != nil {
					return fmt.Errorf("invalid seconds %q", args[1])
				}
				level, err := decimal.NewFromString(args[2])
				if err != nil {
					return fmt.Errorf("invalid level %q", args[2])
				}
				return s.client.Loads.Ramp(ctx, vid, seconds, level)
			})

		default:
			s.cmdRaw(ctx, input)
		}
	}
}

func (s *Shell) printHelp() {
	fmt.Fprint(s.Stdout(), `
Commands:
  loads [on|off]            List cached loads
  on <vid>                  Turn a load on
  off <vid>                 Turn a load off
  level <vid> <percent>     Set a load level
  ramp <vid> <sec> <pct>    Ramp a load to a level
  help                      Show this help
  quit                      Exit

Anything else is sent as a raw Host Command request, e.g.
  VERSION
  INVOKE 118 Load.GetLevel

`)
}

func (s *Shell) cmdLoads(args []string) {
	loads := s.client.Loads.All()
	if len(args) > 0 {
		switch args[0] {
		case "on":
			loads = s.client.Loads.On()
		case "off":
			loads = s.client.Loads.Off()
		default:
			fmt.Fprintf(s.Stdout(), "Usage: loads [on|off]\n")
			return
		}
	}
	for _, load := range loads {
		fmt.Fprintf(s.Stdout(), "[%d] %-30s %s\n", load.VID, load.Name, formatLevel(load.Level))
	}
}

func (s *Shell) withLoad(ctx context.Context, args []string, n int, fn func(context.Context, int) error) {
	if len(args) < n {
		fmt.Fprintf(s.Stdout(), "Error: expected %d argument(s)\n", n)
		return
	}
	vid, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Fprintf(s.Stdout(), "Error: invalid vid %q\n", args[0])
		return
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	if err := fn(ctx, vid); err != nil {
		fmt.Fprintf(s.Stdout(), "Error: %v\n", err)
		return
	}
	fmt.Fprintln(s.Stdout(), "OK")
}

func (s *Shell) cmdRaw(ctx context.Context, request string) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	lines, err := s.client.Command().RawRequest(ctx, request)
	if err != nil {
		fmt.Fprintf(s.Stdout(), "Error: %v\n", err)
		return
	}
	for _, line := range lines {
		fmt.Fprintln(s.Stdout(), line)
	}
}

func formatLevel(level *decimal.Decimal) string {
	if level == nil {
		return "-"
	}
	return level.StringFixed(1) + "%"
}
