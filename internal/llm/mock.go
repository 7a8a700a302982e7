package llm

import (
	"context"
	"sync"
)

// MockClient is a scripted client for tests and local runs.
// Set Response or Err to control what Complete returns.
type MockClient struct {
	mu sync.Mutex

	Response string
	Err      error

	// Calls records every prompt received.
	Calls []string
}

func NewMockClient() *MockClient {
	return &MockClient{Response: "UNKNOWN"}
}

func (c *MockClient) Complete(ctx context.Context, prompt string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.Calls = append(c.Calls, prompt)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if c.Err != nil {
		return "", c.Err
	}
	return c.Response, nil
}

// CallCount returns the number of prompts received.
func (c *MockClient) CallCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.Calls)
}
