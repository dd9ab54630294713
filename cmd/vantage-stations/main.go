// Command vantage-stations lists the stations configured on a controller.
//
// Usage:
//
//	vantage-stations [flags]
//
// Flags:
//
//	-host string       Controller hostname or IP address
//	-username string   Controller username
//	-password string   Controller password
//	-config string     YAML configuration file
//	-no-tls            Use the unencrypted ports
//	-capture string    Record protocol traffic to a .vlog file
//	-log-level string  Log level: debug, info, warn, error (default "info")
//
// Examples:
//
//	vantage-stations -host 192.168.1.20 -username administrator -password secret
//	vantage-stations -config /etc/vantage.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vantage-controls/vantage-go/internal/cli"
	"github.com/vantage-controls/vantage-go/pkg/vantage"
)

var (
	opts    *cli.Options
	timeout time.Duration
)

func init() {
	opts = cli.Register(flag.CommandLine)
	flag.DurationVar(&timeout, "timeout", 30*time.Second, "Overall timeout")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Ltime)

	cfg, err := opts.Config()
	if err != nil {
		log.Fatalf("%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := run(ctx, cfg); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg vantage.Config) error {
	client, err := vantage.New(cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.Stations.Initialize(ctx, false); err != nil {
		return fmt.Errorf("fetch stations: %w", err)
	}

	for _, station := range client.Stations.All() {
		fmt.Printf("[%d] '%s'\n", station.VID, station.Name)
	}
	return nil
}
