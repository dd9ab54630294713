// Command vantage-shell is an interactive Host Command console.
//
// Lines typed at the prompt are sent to the controller verbatim and the
// reply lines are printed. A few built-in commands operate on loads
// through the object cache; type "help" for the list.
//
// Usage:
//
//	vantage-shell [flags]
//
// Examples:
//
//	vantage-shell -host 192.168.1.20 -username administrator -password secret
//	vantage-shell -config /etc/vantage.yaml -capture session.vlog
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/vantage-controls/vantage-go/internal/cli"
	"github.com/vantage-controls/vantage-go/pkg/vantage"
)

var (
	opts   *cli.Options
	noSync bool
)

func init() {
	opts = cli.Register(flag.CommandLine)
	flag.BoolVar(&noSync, "no-sync", false, "Do not fetch loads or follow their state")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Ltime | log.Lmicroseconds)

	cfg, err := opts.Config()
	if err != nil {
		log.Fatalf("%v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	sh, err := NewShell()
	if err != nil {
		log.Fatalf("%v", err)
	}
	if cfg.Logger, err = opts.NewLogger(sh.Stderr()); err != nil {
		log.Fatalf("%v", err)
	}
	log.SetOutput(sh.Stderr())

	client, err := vantage.New(cfg)
	if err != nil {
		log.Fatalf("create client: %v", err)
	}
	defer client.Close()
	sh.client = client

	if !noSync {
		if err := sh.sync(ctx); err != nil {
			log.Printf("load sync failed: %v", err)
		}
	}

	sh.Run(ctx, cancel)
}
