package agent

import (
	"context"
	"fmt"
)

// LLMProvider is an interface for LLM completion APIs: ordered turns in, one
// text blob out.
type LLMProvider interface {
	// Complete requests the model's next message.
	Complete(ctx context.Context, request LLMRequest) (*LLMResponse, error)

	// Provider returns the provider name
	Provider() string
}

// LLMRequest contains the request parameters for a completion call
type LLMRequest struct {
	Model     string
	Messages  []Turn
	MaxTokens int
}

// LLMResponse contains the response from the LLM
type LLMResponse struct {
	Content string
	Usage   *TokenUsage
}

// ProviderFactory creates LLM providers
type ProviderFactory struct{}

// NewProvider creates a new LLM provider by name
func (f *ProviderFactory) NewProvider(provider, apiKey string) (LLMProvider, error) {
	switch provider {
	case "openai":
		return NewOpenAIProvider(apiKey), nil
	case "anthropic":
		return NewAnthropicProvider(apiKey), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}
