package transcription

import (
	"context"
	"time"

	"github.com/kbukum/scribe/httpclient"
	"github.com/kbukum/scribe/logger"
)

// Adapter drives one vendor's recognition protocol to a Transcript.
// Adapters are stateless; one instance serves concurrent tasks.
type Adapter interface {
	Vendor() Vendor
	Transcribe(ctx context.Context, file MediaFile, creds Credentials) (*Transcript, error)
}

const (
	DefaultUploadTimeout   = 5 * time.Minute
	DefaultControlTimeout  = 30 * time.Second
	DefaultMaxPollAttempts = 200
)

// Options is the explicit transport configuration every adapter receives.
type Options struct {
	// ProxyURL routes vendor traffic through a proxy. The environment is
	// never consulted.
	ProxyURL string
	// UploadTimeout bounds calls that carry media.
	UploadTimeout time.Duration
	// ControlTimeout bounds submit, status and fetch calls.
	ControlTimeout time.Duration
	// PollInterval overrides the vendor's default status check interval.
	PollInterval time.Duration
	// MaxPollAttempts is the status check ceiling.
	MaxPollAttempts int
	// BaseURL replaces the vendor's API host. Used by tests.
	BaseURL string
	// Sleep replaces the wait between status checks. Used by tests.
	Sleep func(ctx context.Context, d time.Duration) error
	// Now replaces the clock for request signatures. Used by tests.
	Now func() time.Time
	Logger *logger.Logger
}

// ApplyDefaults fills zero-valued fields.
func (o *Options) ApplyDefaults() {
	if o.UploadTimeout <= 0 {
		o.UploadTimeout = DefaultUploadTimeout
	}
	if o.ControlTimeout <= 0 {
		o.ControlTimeout = DefaultControlTimeout
	}
	if o.MaxPollAttempts <= 0 {
		o.MaxPollAttempts = DefaultMaxPollAttempts
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Logger == nil {
		o.Logger = logger.Nop()
	}
}

// Interval returns the configured poll interval or def.
func (o Options) Interval(def time.Duration) time.Duration {
	if o.PollInterval > 0 {
		return o.PollInterval
	}
	return def
}

// URL returns the BaseURL override or def.
func (o Options) URL(def string) string {
	if o.BaseURL != "" {
		return o.BaseURL
	}
	return def
}

// UploadClient builds the client for calls that carry media.
func (o Options) UploadClient(v Vendor, baseURL string) (*httpclient.Client, error) {
	return httpclient.New(httpclient.Config{
		Name:     string(v),
		BaseURL:  baseURL,
		Timeout:  o.UploadTimeout,
		ProxyURL: o.ProxyURL,
	})
}

// ControlClient builds the client for submit, status and fetch calls.
func (o Options) ControlClient(v Vendor, baseURL string) (*httpclient.Client, error) {
	return httpclient.New(httpclient.Config{
		Name:     string(v),
		BaseURL:  baseURL,
		Timeout:  o.ControlTimeout,
		ProxyURL: o.ProxyURL,
	})
}
