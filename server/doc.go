// Package server provides the HTTP server: a Gin engine mounted on a
// ServeMux, wrapped in the net/http middleware chain and served over
// HTTP/1.1 and h2c on one port.
//
// # Middleware
//
// Built-in middleware (server/middleware), outermost first:
//
//   - Recovery: panic recovery with structured logging
//   - RequestID: X-Request-Id generation and propagation
//   - RequestLogger: method, path, status and duration per request
//   - CORS: cross-origin headers and preflight
//   - BodySizeLimit: upload size cap
//
// # Endpoints
//
// Built-in endpoints (server/endpoint):
//
//   - /health: component health aggregation
//   - /livez: liveness probe
package server
