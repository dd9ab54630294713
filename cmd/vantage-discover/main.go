// Command vantage-discover finds Vantage controllers on the local network.
//
// Controllers advertise their ACI service over mDNS. Each one found is
// listed with its serial number and ports; with -probe the Host Command
// service is also asked whether it takes TLS and requires a login.
//
// Usage:
//
//	vantage-discover [flags]
//
// Flags:
//
//	-timeout duration  How long to browse (default 5s)
//	-interface string  Network interface to browse on (default: all)
//	-probe             Probe each controller's Host Command service
//	-serial int        Stop at the controller with this serial number
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/vantage-controls/vantage-go/pkg/discovery"
)

var (
	timeout time.Duration
	iface   string
	probe   bool
	serial  int
)

func init() {
	flag.DurationVar(&timeout, "timeout", discovery.BrowseTimeout, "How long to browse")
	flag.StringVar(&iface, "interface", "", "Network interface to browse on (default: all)")
	flag.BoolVar(&probe, "probe", false, "Probe each controller's Host Command service")
	flag.IntVar(&serial, "serial", 0, "Stop at the controller with this serial number")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Ltime)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	browser := discovery.NewMDNSBrowser(discovery.BrowserConfig{Interface: iface})
	defer browser.Stop()

	controllers, err := find(ctx, browser)
	if err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
	if len(controllers) == 0 {
		log.Println("No controllers found")
		os.Exit(1)
	}

	for _, c := range controllers {
		printController(ctx, c)
	}
}

func find(ctx context.Context, browser *discovery.MDNSBrowser) ([]discovery.Controller, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if serial == 0 {
		return browser.FindControllers(ctx)
	}
	c, err := browser.FindController(ctx, serial)
	if errors.Is(err, discovery.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []discovery.Controller{c}, nil
}

func printController(ctx context.Context, c discovery.Controller) {
	name := c.Instance
	if n, ok := c.SerialNumber(); ok {
		name = fmt.Sprintf("%s (serial %d)", name, n)
	}
	fmt.Printf("%s\n", name)
	fmt.Printf("  Host:      %s\n", c.Host)
	fmt.Printf("  Addresses: %s\n", strings.Join(c.Addresses, ", "))
	if c.Port != 0 {
		fmt.Printf("  ACI:       %d\n", c.Port)
	}
	if c.SupportsTLS() {
		fmt.Printf("  ACI (TLS): %d\n", c.TLSPort)
	}

	if probe {
		details, err := discovery.GetControllerDetails(ctx, discovery.DefaultProbeConfig(c.Address()))
		if err != nil {
			fmt.Printf("  Probe:     %v\n", err)
		} else {
			fmt.Printf("  Host Command TLS: %t, login required: %t\n", details.SupportsTLS, details.RequiresAuth)
		}
	}
	fmt.Println()
}
