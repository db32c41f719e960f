package llm

import "context"

// Complete is a convenience helper: sends system + user prompts and returns the text response.
func Complete(ctx context.Context, c Completer, system, user string) (string, error) {
	resp, err := c.Execute(ctx, CompletionRequest{
		SystemPrompt: system,
		Messages:     []Message{{Role: "user", Content: user}},
	})
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}
