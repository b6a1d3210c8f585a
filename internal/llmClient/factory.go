package llmclient

import (
	"context"
	"fmt"
	"strings"
)

const (
	ProviderGemini = "gemini"
	ProviderGroq   = "groq"
	ProviderFake   = "fake"
)

// New builds a provider client by name. Provider names are case-insensitive.
func New(ctx context.Context, provider, apiKey, model string) (TextClient, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "", ProviderGemini:
		return NewGeminiClient(ctx, apiKey, model)
	case ProviderGroq:
		return NewGroqClient(apiKey, model), nil
	case ProviderFake:
		return NewFakeClient(), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", provider)
	}
}
