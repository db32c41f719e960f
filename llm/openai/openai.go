// Package openai is the OpenAI chat-completions dialect. Every summary
// vendor speaks it, differing only in base URL, model and auth.
package openai

import (
	"encoding/json"
	"fmt"

	"github.com/kbukum/scribe/llm"
)

// Name is the registered dialect name.
const Name = "openai"

func init() {
	llm.RegisterDialect(Name, Dialect{})
}

// Dialect maps llm requests onto POST {base}/chat/completions.
type Dialect struct{}

func (Dialect) Name() string     { return Name }
func (Dialect) ChatPath() string { return "/chat/completions" }

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []llm.Message `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage llm.Usage `json:"usage"`
}

func (Dialect) BuildRequest(req llm.CompletionRequest) (any, error) {
	if req.Model == "" {
		return nil, fmt.Errorf("openai: model is required")
	}
	return chatRequest{
		Model:       req.Model,
		Messages:    req.AllMessages(),
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}, nil
}

// ParseResponse reads choices[0].message.content. A body without it is an
// error; an empty string content is not.
func (Dialect) ParseResponse(body []byte) (*llm.CompletionResponse, error) {
	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("openai: decode response: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == nil {
		return nil, fmt.Errorf("openai: response has no choices[0].message.content")
	}
	return &llm.CompletionResponse{
		Content: *resp.Choices[0].Message.Content,
		Model:   resp.Model,
		Usage:   resp.Usage,
	}, nil
}
