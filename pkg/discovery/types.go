package discovery

import (
	"errors"
	"net"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Service types and domain.
const (
	// ServiceTypeACI is the plain configuration service.
	ServiceTypeACI = "_aci._tcp"

	// ServiceTypeSecureACI is the TLS configuration service.
	ServiceTypeSecureACI = "_secure_aci._tcp"

	// Domain is the mDNS domain.
	Domain = "local"
)

// BrowseTimeout is the default time FindControllers collects answers.
const BrowseTimeout = 5 * time.Second

// Discovery errors.
var (
	ErrNotFound = errors.New("controller not found")
	ErrNoMaster = errors.New("controller has no master object")
)

// Controller is a discovered Vantage controller.
type Controller struct {
	// Instance is the DNS-SD instance name.
	Instance string

	// Host is the advertised hostname, without the trailing dot.
	Host string

	// Addresses are the advertised IPv4 and IPv6 addresses.
	Addresses []string

	// Port is the plain ACI port, or 0 if only TLS was advertised.
	Port int

	// TLSPort is the TLS ACI port, or 0 if not advertised.
	TLSPort int
}

// SupportsTLS reports whether the secure service was advertised.
func (c *Controller) SupportsTLS() bool {
	return c.TLSPort != 0
}

// Address returns the first advertised address, or the hostname.
func (c *Controller) Address() string {
	if len(c.Addresses) > 0 {
		return c.Addresses[0]
	}
	return c.Host
}

// SerialNumber returns the serial encoded in the hostname.
func (c *Controller) SerialNumber() (int, bool) {
	s, ok := SerialFromHostname(c.Host)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	return n, err == nil
}

func (c *Controller) merge(o *Controller) {
	c.Addresses = mergeAddresses(c.Addresses, o.Addresses)
	if o.Port != 0 {
		c.Port = o.Port
	}
	if o.TLSPort != 0 {
		c.TLSPort = o.TLSPort
	}
}

// ServiceEntry is a resolved mDNS answer.
type ServiceEntry struct {
	Instance string
	Service  string
	Host     string
	Port     int
	Addrs    []net.IP
}

// ToController converts an entry. It returns nil for services other than
// the two ACI types.
func (e *ServiceEntry) ToController() *Controller {
	c := &Controller{
		Instance: e.Instance,
		Host:     strings.TrimSuffix(e.Host, "."),
	}
	for _, ip := range e.Addrs {
		c.Addresses = append(c.Addresses, ip.String())
	}

	switch e.Service {
	case ServiceTypeACI:
		c.Port = e.Port
	case ServiceTypeSecureACI:
		c.TLSPort = e.Port
	default:
		return nil
	}
	return c
}

var serialPattern = regexp.MustCompile(`(?i)^ic-ii-(\d+)`)

// SerialFromHostname extracts the serial number from a controller
// hostname such as "IC-II-12345678.local".
func SerialFromHostname(hostname string) (string, bool) {
	m := serialPattern.FindStringSubmatch(hostname)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// mergeAddresses adds new addresses to existing list, avoiding duplicates.
func mergeAddresses(existing, added []string) []string {
	for _, addr := range added {
		if !slices.Contains(existing, addr) {
			existing = append(existing, addr)
		}
	}
	return existing
}

// removeAddresses drops removed from addresses.
func removeAddresses(addresses, removed []string) []string {
	return slices.DeleteFunc(addresses, func(addr string) bool {
		return slices.Contains(removed, addr)
	})
}
