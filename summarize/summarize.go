// Package summarize turns a transcript into a summary through one of the
// chat-completion vendors in the catalogue.
package summarize

import (
	"context"
	"strings"
	"time"

	"github.com/kbukum/scribe/errors"
	"github.com/kbukum/scribe/httpclient"
	"github.com/kbukum/scribe/llm"
	"github.com/kbukum/scribe/llm/openai"
	"github.com/kbukum/scribe/transcription"
	"github.com/kbukum/scribe/util"
)

const (
	SystemPrompt = "你是一个专业的文本摘要助手。请对以下内容进行详细的总结和摘要，保留关键信息，使用中文回复。"
	userPrefix   = "请对以下转录文本进行总结：\n\n"

	Temperature = 0.3
	MaxTokens   = 4096
)

// Summarizer produces a summary of text with per-request credentials.
type Summarizer interface {
	Vendor() Vendor
	Summarize(ctx context.Context, text string, creds transcription.Credentials) (string, error)
}

// Options configures the outbound chat call.
type Options struct {
	ProxyURL string
	// Timeout bounds one completion call. Defaults to 120s.
	Timeout time.Duration
	// BaseURL replaces the vendor's API base. Used by tests.
	BaseURL string
	// Now is the clock for Zhipu token generation.
	Now func() time.Time
}

// Factory creates a Summarizer; the task orchestrator takes one so tests
// can substitute fakes.
type Factory func(v Vendor, opts Options) (Summarizer, error)

type summarizer struct {
	vendor Vendor
	opts   Options
}

// New returns the Summarizer for v.
func New(v Vendor, opts Options) (Summarizer, error) {
	if _, ok := endpoints[v]; !ok {
		return nil, errors.UnsupportedVendor("llm", string(v))
	}
	if opts.Timeout <= 0 {
		opts.Timeout = llm.DefaultTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &summarizer{vendor: v, opts: opts}, nil
}

func (s *summarizer) Vendor() Vendor { return s.vendor }

// Summarize sends the fixed summary prompt. A blank answer is EMPTY_RESULT.
func (s *summarizer) Summarize(ctx context.Context, text string, creds transcription.Credentials) (string, error) {
	if err := s.vendor.CheckCredentials(creds); err != nil {
		return "", err
	}
	cfg, err := s.config(creds)
	if err != nil {
		return "", err
	}
	adapter, err := llm.NewWithDialect(openai.Dialect{}, cfg)
	if err != nil {
		return "", errors.Internal(err)
	}
	out, err := llm.Complete(ctx, adapter, SystemPrompt, userPrefix+text)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(out) == "" {
		return "", errors.EmptyResult("summary")
	}
	return out, nil
}

// config resolves the vendor's base URL, model and auth from creds.
func (s *summarizer) config(creds transcription.Credentials) (llm.Config, error) {
	ep := endpoints[s.vendor]
	cfg := llm.Config{
		Name:        string(s.vendor),
		BaseURL:     ep.baseURL,
		Model:       ep.model,
		Temperature: Temperature,
		MaxTokens:   MaxTokens,
		Timeout:     s.opts.Timeout,
		ProxyURL:    s.opts.ProxyURL,
		Auth:        httpclient.BearerAuth(creds.Get("api_key")),
	}

	switch s.vendor {
	case VendorZhipu:
		token, err := ZhipuToken(creds.Get("api_key"), s.opts.Now())
		if err != nil {
			return llm.Config{}, err
		}
		cfg.Auth = httpclient.BearerAuth(token)
	case VendorMinimaxCN, VendorMinimaxGlobal:
		if id := creds.Get("group_id"); id != "" {
			cfg.Query = map[string]string{"GroupId": id}
		}
	case VendorTencent:
		cfg.Auth = httpclient.BearerAuth(creds.Get("secret_key"))
	case VendorAliyun:
		cfg.BaseURL = util.Coalesce(AliyunBaseURL(creds.Get("url")), ep.baseURL)
	}

	cfg.BaseURL = util.Coalesce(s.opts.BaseURL, cfg.BaseURL)
	return cfg, nil
}

// AliyunBaseURL normalizes a user-supplied endpoint: trailing slashes and a
// pasted "/chat/completions" suffix are removed.
func AliyunBaseURL(raw string) string {
	u := strings.TrimRight(strings.TrimSpace(raw), "/")
	return strings.TrimSuffix(u, "/chat/completions")
}
