// Package api holds the HTTP handlers: the upload endpoint that validates a
// request and streams task progress as server-sent events, and the vendor
// catalogue.
package api
