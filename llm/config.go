package llm

import (
	"time"

	"github.com/kbukum/scribe/httpclient"
)

// DefaultTimeout bounds a completion call.
const DefaultTimeout = 120 * time.Second

// Config holds configuration for creating an LLM adapter.
// The Dialect field selects the wire mapping.
type Config struct {
	// Name identifies this adapter instance in logs and errors, usually the vendor id.
	Name string `yaml:"name" json:"name"`

	// Dialect selects the request/response mapping (e.g., "openai").
	// Must match a dialect registered via RegisterDialect.
	Dialect string `yaml:"dialect" json:"dialect"`

	// BaseURL is the vendor's API base URL (e.g., "https://api.openai.com/v1").
	BaseURL string `yaml:"base_url" json:"base_url"`

	// Model is the default model to use.
	Model string `yaml:"model" json:"model"`

	// Temperature is the default sampling temperature (0.0-1.0).
	Temperature float64 `yaml:"temperature" json:"temperature"`

	// MaxTokens is the default maximum tokens for responses. 0 means vendor default.
	MaxTokens int `yaml:"max_tokens" json:"max_tokens"`

	// Timeout for HTTP requests. Defaults to 120s.
	Timeout time.Duration `yaml:"timeout" json:"timeout"`

	// ProxyURL routes calls through a proxy. Empty means direct.
	ProxyURL string `yaml:"proxy_url" json:"proxy_url"`

	// Auth configures authentication (Bearer token, API key, etc.).
	Auth *httpclient.AuthConfig `yaml:"-" json:"-"`

	// Headers are additional HTTP headers sent with every request.
	Headers map[string]string `yaml:"headers" json:"headers"`

	// Query parameters added to every chat call (e.g., Minimax GroupId).
	Query map[string]string `yaml:"query" json:"query"`
}

// applyDefaults sets default values for unset config fields.
func (c *Config) applyDefaults() {
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Name == "" && c.Dialect != "" {
		c.Name = c.Dialect + "-llm"
	}
}
