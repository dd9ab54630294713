// Package clienterr defines the error kinds shared by the Host Command and
// ACI clients.
//
// # Taxonomy
//
//   - ErrConnection / *ConnectionError: open refused, reset, handshake failure
//   - ErrTimeout: connect or read deadline exceeded
//   - ErrConnectionClosed: I/O attempted on (or interrupted by) a closed connection
//   - ErrLoginRequired / ErrLoginFailed: authentication (Host Command codes 21/23)
//   - *CommandError: any other Host Command error, carries code and message
//   - ErrProtocol / *ProtocolError: malformed or unexpected response shape
//
// All typed errors work with errors.Is and errors.As:
//
//	if errors.Is(err, clienterr.ErrLoginRequired) {
//	    // prompt for credentials
//	}
//
//	var cmdErr *clienterr.CommandError
//	if errors.As(err, &cmdErr) {
//	    log.Printf("controller rejected command: code %d", cmdErr.Code)
//	}
//
// Nothing in this module retries automatically in the request path. Retry
// policy belongs to the caller.
package clienterr
