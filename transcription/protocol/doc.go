// Package protocol implements the request strategies vendor adapters are
// built from: a synchronous call, submit then poll, chunked upload then
// merge then poll, and signed submit then poll. It also maps transport
// failures onto vendor error codes.
package protocol
