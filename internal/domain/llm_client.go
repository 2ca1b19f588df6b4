package domain

import "context"

// CompletionOptions carries the sampling parameters sent with a completion request.
type CompletionOptions struct {
	Temperature      float64
	MaxTokens        int
	TopP             float64
	FrequencyPenalty float64
	PresencePenalty  float64
}

// DefaultCompletionOptions mirrors the parameters the answer prompt was tuned with.
func DefaultCompletionOptions() CompletionOptions {
	return CompletionOptions{
		Temperature:      0,
		MaxTokens:        300,
		TopP:             1,
		FrequencyPenalty: 0,
		PresencePenalty:  0,
	}
}

// LLMClient defines the capability to send a prompt to a completion model and receive its text.
// Implementations return an error wrapping ErrCompletion on any upstream failure.
type LLMClient interface {
	Complete(ctx context.Context, prompt string, opts CompletionOptions) (string, error)
	Version() string
}
