// Package discovery finds Vantage controllers on the local network and
// probes their capabilities.
//
// Controllers advertise their configuration service through mDNS/DNS-SD:
//
//   - _aci._tcp: plain ACI (port 2001)
//   - _secure_aci._tcp: TLS ACI (port 2010)
//
// A controller usually advertises both. Browsing merges them into one
// Controller per host, with TLS set when the secure service was seen.
// Hostnames follow "IC-II-<serial>", from which SerialFromHostname recovers
// the serial number without connecting.
//
// GetControllerDetails, IsAuthRequired and ValidateCredentials connect to
// the Host Command service to learn whether TLS is available and whether
// a login is needed.
package discovery
