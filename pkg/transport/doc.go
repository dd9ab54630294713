// Package transport provides the line-oriented socket shared by the Host
// Command and ACI clients.
//
// A Conn is a reconnectable, buffered, terminator-delimited text socket:
//   - TCP, optionally wrapped in TLS (controller certificates are
//     self-signed, so verification is off unless a tls.Config says otherwise)
//   - Connect, write and read deadlines
//   - ReadUntil returns everything up to and including a terminator and
//     keeps the remainder for the next read
//   - Any read or write failure other than a read timeout closes the socket;
//     the next Open dials again
//
// # Protocol Stack
//
//	┌────────────────────────────────┐
//	│  Host Command lines / ACI XML  │
//	├────────────────────────────────┤
//	│   Terminator-delimited reads   │
//	├────────────────────────────────┤
//	│       TLS (optional)           │
//	├────────────────────────────────┤
//	│           TCP                  │
//	└────────────────────────────────┘
//
// # Keep-Alive
//
// KeepAlive runs a caller-supplied probe (the Host Command client uses
// ECHO) on an interval and reports when the probe keeps failing.
package transport
