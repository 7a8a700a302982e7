// Package llm holds the completion clients behind the generative fallback.
package llm

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Provider constants.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderMock      = "mock"
)

// Client completes a single prompt. Implementations must honor ctx
// cancellation and must not retry.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Option customizes an HTTP-backed client.
type Option func(*options)

type options struct {
	endpoint   string
	httpClient *http.Client
}

// WithEndpoint overrides the provider URL.
func WithEndpoint(url string) Option {
	return func(o *options) { o.endpoint = url }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

func buildOptions(defaultEndpoint string, timeout time.Duration, opts []Option) options {
	o := options{
		endpoint:   defaultEndpoint,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewClient creates a client for the named provider. An empty model selects
// the provider default.
func NewClient(provider, apiKey, model string, timeout time.Duration, opts ...Option) (Client, error) {
	switch provider {
	case ProviderOpenAI:
		if apiKey == "" {
			return nil, fmt.Errorf("llm.NewClient: api key is required for provider %s", provider)
		}
		return NewOpenAIClient(apiKey, model, timeout, opts...), nil

	case ProviderAnthropic:
		if apiKey == "" {
			return nil, fmt.Errorf("llm.NewClient: api key is required for provider %s", provider)
		}
		return NewAnthropicClient(apiKey, model, timeout, opts...), nil

	case ProviderMock:
		return NewMockClient(), nil

	default:
		return nil, fmt.Errorf("llm.NewClient: unknown provider %q (valid options: openai, anthropic, mock)", provider)
	}
}
