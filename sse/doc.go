// Package sse writes a Server-Sent Events response for a single producer.
//
// Each event is framed as
//
//	event: <name>
//	data: <json>
//
// followed by a blank line and flushed immediately. A keep-alive loop may
// write comment lines between events so proxies do not close a connection
// while a vendor job is being polled.
package sse
