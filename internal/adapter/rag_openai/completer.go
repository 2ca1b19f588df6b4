package rag_openai

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"sheetqa/internal/domain"

	"github.com/openai/openai-go"
)

// Completer sends prompts to the legacy completions endpoint of an OpenAI-compatible API.
type Completer struct {
	client openai.Client
	model  string
	logger *slog.Logger
}

// NewCompleter constructs a completer for the given model.
func NewCompleter(client openai.Client, model string, logger *slog.Logger) *Completer {
	return &Completer{
		client: client,
		model:  model,
		logger: logger,
	}
}

// Complete returns the text of the first choice. Failures, including an empty choice list, wrap domain.ErrCompletion.
func (c *Completer) Complete(ctx context.Context, prompt string, opts domain.CompletionOptions) (string, error) {
	start := time.Now()

	resp, err := c.client.Completions.New(ctx, openai.CompletionNewParams{
		Model: openai.CompletionNewParamsModel(c.model),
		Prompt: openai.CompletionNewParamsPromptUnion{
			OfString: openai.String(prompt),
		},
		Temperature:      openai.Float(opts.Temperature),
		MaxTokens:        openai.Int(int64(opts.MaxTokens)),
		TopP:             openai.Float(opts.TopP),
		FrequencyPenalty: openai.Float(opts.FrequencyPenalty),
		PresencePenalty:  openai.Float(opts.PresencePenalty),
	})
	if err != nil {
		c.logger.ErrorContext(ctx, "completion_failed",
			slog.String("model", c.model),
			slog.String("error", err.Error()),
			slog.Duration("elapsed", time.Since(start)),
		)
		return "", fmt.Errorf("%w: %w", domain.ErrCompletion, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: response contained no choices", domain.ErrCompletion)
	}

	c.logger.InfoContext(ctx, "completion_finished",
		slog.String("model", c.model),
		slog.String("finish_reason", string(resp.Choices[0].FinishReason)),
		slog.Int64("total_tokens", resp.Usage.TotalTokens),
		slog.Duration("elapsed", time.Since(start)),
	)
	return resp.Choices[0].Text, nil
}

// Version returns the completion model name.
func (c *Completer) Version() string {
	return c.model
}

var _ domain.LLMClient = (*Completer)(nil)
