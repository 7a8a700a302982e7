package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	anthropicMessagesURL  = "https://api.anthropic.com/v1/messages"
	anthropicDefaultModel = "claude-3-5-haiku-20241022"
	anthropicVersion      = "2023-06-01"
	anthropicMaxTokens    = 512
)

// AnthropicClient calls the messages API.
type AnthropicClient struct {
	apiKey     string
	model      string
	endpoint   string
	httpClient *http.Client
}

func NewAnthropicClient(apiKey, model string, timeout time.Duration, opts ...Option) *AnthropicClient {
	if model == "" {
		model = anthropicDefaultModel
	}
	o := buildOptions(anthropicMessagesURL, timeout, opts)
	return &AnthropicClient{
		apiKey:     apiKey,
		model:      model,
		endpoint:   o.endpoint,
		httpClient: o.httpClient,
	}
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *AnthropicClient) Complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(anthropicRequest{
		Model:     c.model,
		MaxTokens: anthropicMaxTokens,
		Messages:  []anthropicMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("llm.AnthropicClient.Complete: marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("llm.AnthropicClient.Complete: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	respBody, status, err := do(c.httpClient, req)
	if err != nil {
		return "", fmt.Errorf("llm.AnthropicClient.Complete: %w", err)
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("llm.AnthropicClient.Complete: status %d: %s", status, truncateBody(respBody))
	}

	var result anthropicResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("llm.AnthropicClient.Complete: unmarshal: %w", err)
	}
	if result.Error != nil {
		return "", fmt.Errorf("llm.AnthropicClient.Complete: api error: %s", result.Error.Message)
	}

	var sb strings.Builder
	for _, block := range result.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", errors.New("llm.AnthropicClient.Complete: no text content returned")
	}
	return strings.TrimSpace(sb.String()), nil
}
