package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	openAIChatURL      = "https://api.openai.com/v1/chat/completions"
	openAIDefaultModel = "gpt-4o-mini"
)

// OpenAIClient calls the chat completions API.
type OpenAIClient struct {
	apiKey     string
	model      string
	endpoint   string
	httpClient *http.Client
}

func NewOpenAIClient(apiKey, model string, timeout time.Duration, opts ...Option) *OpenAIClient {
	if model == "" {
		model = openAIDefaultModel
	}
	o := buildOptions(openAIChatURL, timeout, opts)
	return &OpenAIClient{
		apiKey:     apiKey,
		model:      model,
		endpoint:   o.endpoint,
		httpClient: o.httpClient,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float32       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *OpenAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: 0,
	})
	if err != nil {
		return "", fmt.Errorf("llm.OpenAIClient.Complete: marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("llm.OpenAIClient.Complete: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	respBody, status, err := do(c.httpClient, req)
	if err != nil {
		return "", fmt.Errorf("llm.OpenAIClient.Complete: %w", err)
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("llm.OpenAIClient.Complete: status %d: %s", status, truncateBody(respBody))
	}

	var result chatResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("llm.OpenAIClient.Complete: unmarshal: %w", err)
	}
	if result.Error != nil {
		return "", fmt.Errorf("llm.OpenAIClient.Complete: api error: %s", result.Error.Message)
	}
	if len(result.Choices) == 0 {
		return "", errors.New("llm.OpenAIClient.Complete: no choices returned")
	}

	return strings.TrimSpace(result.Choices[0].Message.Content), nil
}

// do executes req and reads at most 1 MiB of the response.
func do(client *http.Client, req *http.Request) ([]byte, int, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}
	return body, resp.StatusCode, nil
}

func truncateBody(b []byte) string {
	const maxLen = 256
	if len(b) > maxLen {
		return string(b[:maxLen]) + "..."
	}
	return string(b)
}
