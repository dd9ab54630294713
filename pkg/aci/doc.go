// Package aci is a client for the controller's XML configuration service
// (ACI).
//
// Requests are XML documents of the form
//
//	<IConfiguration><OpenFilter><call>...</call></OpenFilter></IConfiguration>
//
// and the response is read up to the matching closing interface tag. The
// client connects and logs in lazily and sends one request at a time.
package aci
