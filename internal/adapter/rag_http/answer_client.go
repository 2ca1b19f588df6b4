package rag_http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"sheetqa/internal/infra/httpclient"
)

// AnswerClient calls POST /generateAnswer on a running server.
type AnswerClient struct {
	BaseURL string
	Client  *http.Client
}

func NewAnswerClient(baseURL string, timeout time.Duration) *AnswerClient {
	return &AnswerClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  httpclient.NewPooledClient(timeout),
	}
}

// Ask returns the answer text. An empty string with a nil error means the
// server could not produce an answer.
func (c *AnswerClient) Ask(ctx context.Context, question string) (string, error) {
	body, err := json.Marshal(AnswerRequest{Question: question})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/generateAnswer", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call server: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("server returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}
	return string(payload), nil
}
