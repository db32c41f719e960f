package llm

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/kbukum/scribe/errors"
	"github.com/kbukum/scribe/httpclient"
	"github.com/kbukum/scribe/util"
)

// ErrNoDialect is returned by NewWithDialect for a nil dialect.
var ErrNoDialect = stderrors.New("llm: dialect is required")

// Completer is anything that can run a completion request.
type Completer interface {
	Execute(ctx context.Context, req CompletionRequest) (CompletionResponse, error)
}

// Adapter is a config-driven LLM client that works with any vendor via the Dialect pattern.
//
// It composes the HTTP client (timeouts, proxy, auth) with a Dialect that
// handles vendor-specific request/response mapping.
type Adapter struct {
	http      *httpclient.Client
	dialect   Dialect
	name      string
	model     string
	temp      float64
	maxTokens int
	query     map[string]string
}

// New creates an LLM adapter from config using the global dialect registry.
// The config's Dialect field must match a registered dialect name.
func New(cfg Config) (*Adapter, error) {
	cfg.applyDefaults()

	dialect, err := GetDialect(cfg.Dialect)
	if err != nil {
		return nil, err
	}

	return newAdapter(dialect, cfg)
}

// NewWithDialect creates an LLM adapter with an explicit dialect instance.
func NewWithDialect(dialect Dialect, cfg Config) (*Adapter, error) {
	if dialect == nil {
		return nil, ErrNoDialect
	}
	cfg.applyDefaults()
	if cfg.Name == "" {
		cfg.Name = dialect.Name() + "-llm"
	}
	return newAdapter(dialect, cfg)
}

func newAdapter(dialect Dialect, cfg Config) (*Adapter, error) {
	client, err := httpclient.New(httpclient.Config{
		Name:     cfg.Name,
		BaseURL:  cfg.BaseURL,
		Timeout:  cfg.Timeout,
		ProxyURL: cfg.ProxyURL,
		Auth:     cfg.Auth,
		Headers:  cfg.Headers,
	})
	if err != nil {
		return nil, fmt.Errorf("llm: create http client: %w", err)
	}

	return &Adapter{
		http:      client,
		dialect:   dialect,
		name:      cfg.Name,
		model:     cfg.Model,
		temp:      cfg.Temperature,
		maxTokens: cfg.MaxTokens,
		query:     cfg.Query,
	}, nil
}

// Name returns the adapter name.
func (a *Adapter) Name() string { return a.name }

// Dialect returns the dialect used by this adapter.
func (a *Adapter) Dialect() Dialect { return a.dialect }

// Execute sends a completion request and returns the full response.
// Failures are vendor errors: VENDOR_AUTH_ERROR for 401/403, TIMEOUT when
// the call deadline passes, VENDOR_PROTOCOL_ERROR otherwise.
func (a *Adapter) Execute(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	a.applyDefaults(&req)

	body, err := a.dialect.BuildRequest(req)
	if err != nil {
		return CompletionResponse{}, errors.Internal(fmt.Errorf("llm: build request: %w", err))
	}

	resp, err := a.http.Do(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   a.dialect.ChatPath(),
		Query:  a.query,
		Body:   body,
	})
	if err != nil {
		return CompletionResponse{}, a.vendorError(err)
	}

	result, err := a.dialect.ParseResponse(resp.Body)
	if err != nil {
		return CompletionResponse{}, errors.VendorProtocol(a.name, "malformed response").WithCause(err)
	}
	return *result, nil
}

func (a *Adapter) vendorError(err error) error {
	if httpclient.IsTimeout(err) {
		return errors.Timeout(a.name + " completion").WithCause(err)
	}
	hErr, ok := httpclient.AsError(err)
	if !ok {
		return errors.VendorProtocol(a.name, err.Error()).WithCause(err)
	}
	detail := hErr.Message
	if len(hErr.Body) > 0 {
		detail = util.TruncateBytes(string(hErr.Body), 500)
	}
	if hErr.StatusCode > 0 {
		detail = fmt.Sprintf("HTTP %d: %s", hErr.StatusCode, detail)
	}
	if httpclient.IsAuth(err) {
		return errors.VendorAuth(a.name, detail).WithCause(err)
	}
	return errors.VendorProtocol(a.name, detail).WithCause(err).WithDetail("status", hErr.StatusCode)
}

func (a *Adapter) applyDefaults(req *CompletionRequest) {
	if req.Model == "" {
		req.Model = a.model
	}
	if req.Temperature == 0 {
		req.Temperature = a.temp
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = a.maxTokens
	}
}
