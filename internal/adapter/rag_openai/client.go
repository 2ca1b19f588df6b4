package rag_openai

import (
	"net/http"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// ClientConfig holds the connection settings shared by the embedder and completer.
type ClientConfig struct {
	BaseURL    string
	APIKey     string
	MaxRetries int
	HTTPClient *http.Client
}

// NewClient builds an OpenAI-compatible API client. Per-call timeouts come from the
// supplied http.Client.
func NewClient(cfg ClientConfig) openai.Client {
	opts := []option.RequestOption{
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimRight(cfg.BaseURL, "/")+"/"))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}
	return openai.NewClient(opts...)
}
