package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// Recorded is one request received by a VendorServer.
type Recorded struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   []byte
}

// VendorServer is an httptest server with method+path routing that keeps
// every request it receives.
type VendorServer struct {
	*httptest.Server
	t        *testing.T
	mu       sync.Mutex
	mux      *http.ServeMux
	requests []Recorded
}

// NewVendorServer starts a server closed automatically at test end.
func NewVendorServer(t *testing.T) *VendorServer {
	t.Helper()
	vs := &VendorServer{t: t, mux: http.NewServeMux()}
	vs.Server = httptest.NewServer(http.HandlerFunc(vs.serve))
	t.Cleanup(vs.Close)
	return vs
}

func (vs *VendorServer) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	vs.mu.Lock()
	vs.requests = append(vs.requests, Recorded{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.RawQuery,
		Header: r.Header.Clone(),
		Body:   body,
	})
	vs.mu.Unlock()
	r.Body = io.NopCloser(&replay{data: body})
	vs.mux.ServeHTTP(w, r)
}

// Handle registers h for a ServeMux pattern such as "POST /v1/files".
func (vs *VendorServer) Handle(pattern string, h http.HandlerFunc) {
	vs.mux.HandleFunc(pattern, h)
}

// HandleJSON registers a fixed JSON response.
func (vs *VendorServer) HandleJSON(pattern string, status int, v any) {
	vs.Handle(pattern, func(w http.ResponseWriter, _ *http.Request) {
		WriteJSON(w, status, v)
	})
}

// HandleSequence serves the handlers in turn; the last one repeats.
func (vs *VendorServer) HandleSequence(pattern string, hs ...http.HandlerFunc) {
	var mu sync.Mutex
	i := 0
	vs.Handle(pattern, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		h := hs[i]
		if i < len(hs)-1 {
			i++
		}
		mu.Unlock()
		h(w, r)
	})
}

// Requests returns a copy of every request received so far.
func (vs *VendorServer) Requests() []Recorded {
	vs.mu.Lock()
	defer vs.mu.Unlock()
	out := make([]Recorded, len(vs.requests))
	copy(out, vs.requests)
	return out
}

// Count returns how many requests matched method and path.
func (vs *VendorServer) Count(method, path string) int {
	n := 0
	for _, r := range vs.Requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

// WriteJSON encodes v with status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// JSON returns a handler that writes v with status.
func JSON(status int, v any) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) { WriteJSON(w, status, v) }
}

type replay struct {
	data []byte
	off  int
}

func (r *replay) Read(p []byte) (int, error) {
	if r.off >= len(r.data) {
		return 0, io.EOF
	}
	n := copy(p, r.data[r.off:])
	r.off += n
	return n, nil
}
