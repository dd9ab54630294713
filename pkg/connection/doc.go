// Package connection provides reconnection management for long-lived
// controller links such as the event stream.
//
// This package handles:
//   - Exponential backoff with jitter between attempts
//   - Tracking whether the link is up, down or being re-established
//   - Running the reconnect loop in the background until it succeeds or the
//     manager is closed
//
// # Reconnection Strategy
//
// When a link is lost, attempts are spaced with exponential backoff:
//
//  1. Initial delay: 1 second
//  2. Exponential increase: 2s, 4s, 8s, 16s
//  3. Maximum delay: 30 seconds
//  4. Continue at 30s until successful
//  5. Reset to 1s on success
//
// Each delay gets up to 25% random jitter so that several clients restarted
// together do not hammer the controller in lockstep.
package connection
