package llm

import "context"

// Request is one completion call. Model is required; the service picks the
// cheap or advanced tier per operation.
type Request struct {
	Prompt      string
	Model       string
	Temperature float64
	MaxTokens   int
}

// Provider sends a prompt to an LLM and returns the raw text response.
type Provider interface {
	Complete(ctx context.Context, req Request) (string, error)
}
