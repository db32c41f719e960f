package llm

import (
	"fmt"
	"sync"
)

// Dialect maps universal LLM types to/from a specific vendor's HTTP format.
//
// Dialect implementations live outside this package (see llm/openai).
// Register dialects at startup using [RegisterDialect], or pass directly to [NewWithDialect].
type Dialect interface {
	// Name returns the dialect identifier (e.g., "openai").
	Name() string

	// ChatPath returns the API endpoint path for chat completion (e.g., "/chat/completions").
	ChatPath() string

	// BuildRequest maps a universal CompletionRequest to the vendor's JSON request body.
	BuildRequest(req CompletionRequest) (any, error)

	// ParseResponse maps the vendor's JSON response body to a universal CompletionResponse.
	ParseResponse(body []byte) (*CompletionResponse, error)
}

// --- Dialect Registry ---

var (
	dialectsMu sync.RWMutex
	dialects   = map[string]Dialect{}
)

// RegisterDialect adds a dialect to the global registry.
// Typically called from init() in dialect packages:
//
//	func init() {
//	    llm.RegisterDialect("openai", Dialect{})
//	}
func RegisterDialect(name string, d Dialect) {
	dialectsMu.Lock()
	defer dialectsMu.Unlock()
	dialects[name] = d
}

// GetDialect retrieves a dialect by name from the global registry.
func GetDialect(name string) (Dialect, error) {
	dialectsMu.RLock()
	defer dialectsMu.RUnlock()
	d, ok := dialects[name]
	if !ok {
		return nil, fmt.Errorf("llm: unknown dialect %q (forgot to import driver?)", name)
	}
	return d, nil
}
