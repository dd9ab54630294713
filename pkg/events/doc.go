// Package events maintains a dedicated Host Command connection for push
// traffic.
//
// An EventStream registers STATUS types and enhanced-log kinds on the
// controller, parses the resulting "S:", "EL:" and "L:" lines into Events
// and fans them out to subscribers. It probes the link with ECHO and, when
// the link drops, reconnects with backoff and replays every registration.
package events
