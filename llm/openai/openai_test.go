package openai

import (
	"testing"

	"github.com/kbukum/scribe/llm"
)

func TestRegistered(t *testing.T) {
	d, err := llm.GetDialect(Name)
	if err != nil {
		t.Fatalf("expected dialect to be registered: %v", err)
	}
	if d.ChatPath() != "/chat/completions" {
		t.Errorf("unexpected chat path %q", d.ChatPath())
	}
}

func TestBuildRequest(t *testing.T) {
	body, err := Dialect{}.BuildRequest(llm.CompletionRequest{
		Model:        "gpt-4o",
		SystemPrompt: "be brief",
		Messages:     []llm.Message{{Role: "user", Content: "hi"}},
		Temperature:  0.3,
		MaxTokens:    4096,
	})
	if err != nil {
		t.Fatalf("BuildRequest: %v", err)
	}
	req := body.(chatRequest)
	if len(req.Messages) != 2 || req.Messages[0].Role != "system" || req.Messages[1].Content != "hi" {
		t.Errorf("unexpected messages %+v", req.Messages)
	}
	if req.Temperature != 0.3 || req.MaxTokens != 4096 {
		t.Errorf("unexpected sampling params %+v", req)
	}

	if _, err := (Dialect{}).BuildRequest(llm.CompletionRequest{}); err == nil {
		t.Error("expected missing model to fail")
	}
}

func TestParseResponse(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr bool
	}{
		{"content", `{"model":"m","choices":[{"message":{"content":"summary"}}],"usage":{"total_tokens":12}}`, "summary", false},
		{"empty content", `{"choices":[{"message":{"content":""}}]}`, "", false},
		{"no choices", `{"choices":[]}`, "", true},
		{"null content", `{"choices":[{"message":{"content":null}}]}`, "", true},
		{"not json", `<html>`, "", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := Dialect{}.ParseResponse([]byte(tc.body))
			if tc.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if resp.Content != tc.want {
				t.Errorf("expected %q, got %q", tc.want, resp.Content)
			}
		})
	}
}
