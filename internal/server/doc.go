// Package server exposes the staff directory as a loopback JSON API.
//
// # Router Infrastructure
//
// [Router] wraps a gorilla/mux router with a [Middleware] stack. Middleware wraps handlers in reverse
// order (last added executes first), following the standard Go pattern.
//
// # Handlers
//
// Custom handlers implement [Handler], registering their own routes on the router so route definitions
// stay with the implementation. [APIHandler] serves employees, grade levels, backups and storage info
// over the same repositories the CLI and TUI use.
//
// # Metrics
//
// [Metrics] counts requests and observes latency on a private Prometheus registry served at /metrics.
//
// # Binding
//
// [Server.Run] refuses non-loopback hosts: the store is a file owned by the invoking user and the API
// has no authentication.
package server
