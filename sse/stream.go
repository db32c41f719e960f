package sse

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// ErrStreamingUnsupported is returned by Open when w cannot be flushed.
var ErrStreamingUnsupported = errors.New("sse: streaming not supported")

// ErrClosed is returned by Send after the client has gone away.
var ErrClosed = errors.New("sse: stream closed")

// Stream writes events to one client.
type Stream struct {
	mu      sync.Mutex
	w       http.ResponseWriter
	flusher http.Flusher
	ctx     context.Context
	closed  bool
}

// Open sets the event-stream headers, disables the server write deadline
// and writes the response header. ctx is the request context; once it is
// done Send returns ErrClosed.
func Open(ctx context.Context, w http.ResponseWriter) (*Stream, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, ErrStreamingUnsupported
	}

	// Long-lived responses must outlive the server's WriteTimeout. Writers
	// that do not support deadlines (e.g. test recorders) are fine as is.
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	return &Stream{w: w, flusher: flusher, ctx: ctx}, nil
}

// Send marshals data as JSON and writes one event.
func (s *Stream) Send(event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("sse: marshal %s: %w", event, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.usable(); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, payload); err != nil {
		s.closed = true
		return fmt.Errorf("sse: write %s: %w", event, err)
	}
	s.flusher.Flush()
	return nil
}

// Comment writes an SSE comment line, which clients ignore.
func (s *Stream) Comment(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.usable(); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, ": %s\n\n", text); err != nil {
		s.closed = true
		return err
	}
	s.flusher.Flush()
	return nil
}

// Close marks the stream finished. It waits for any write in progress, and
// later Send or Comment calls return ErrClosed. Call it before the handler
// that owns w returns.
func (s *Stream) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

// KeepAlive writes a comment every interval until ctx is done or a write
// fails. Run it in its own goroutine.
func (s *Stream) KeepAlive(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case t := <-ticker.C:
			if err := s.Comment(fmt.Sprintf("keepalive %d", t.Unix())); err != nil {
				return
			}
		}
	}
}

func (s *Stream) usable() error {
	if s.closed || s.ctx.Err() != nil {
		s.closed = true
		return ErrClosed
	}
	return nil
}
