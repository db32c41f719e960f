// Package errors provides the structured error type shared by every layer of
// the service. Each failure carries a machine-readable code, an HTTP status
// hint for the API layer, and optional details for the client.
//
// Vendor failures are split by cause: protocol (non-2xx or unparseable
// payload), auth (rejected credentials or signature), business (the vendor
// reports a failed job), empty result, and poll timeout.
package errors
