// Package client is the transport layer of the HangarKeeper client.
//
// # Overview
//
// HTTPClient is the single chokepoint for requests to the remote REST API.
// It is built once at start-up with New and injected into the services.
// Cross-cutting behaviour is expressed as hooks instead of global
// interceptors:
//
//   - AuthHook reads the bearer token fresh on every request.
//   - BypassHook sets the tunnelling proxy interstitial bypass header.
//   - RequestIDHook tags requests with X-Request-ID.
//   - SessionExpiryHook forwards 401 responses to the session handler.
//
// # Error Handling
//
// 401 maps to ErrUnauthorized, any other non-2xx to *APIError carrying the
// server message, transport failures to ErrUnavailable. Classify groups them
// into auth, validation and server kinds. No request is ever retried.
//
// # Local Database
//
// OpenDatabase opens the SQLite file backing durable client state and applies
// the embedded goose migrations.
package client
