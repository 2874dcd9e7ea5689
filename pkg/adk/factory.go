package adk

import (
	"context"
	"errors"
	"fmt"
)

// ErrNoAPIKey means no Gemini key was configured.
var ErrNoAPIKey = errors.New("no API key configured; run 'vsce-audit config set-key --key <KEY>' or set GOOGLE_API_KEY")

// NewProvider returns the backend for providerName. Only "gemini" is
// supported; an empty name selects it.
func NewProvider(ctx context.Context, providerName, apiKey, modelName string) (LLMProvider, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	switch providerName {
	case "", "gemini":
		return NewGeminiProvider(ctx, apiKey, modelName)
	default:
		return nil, fmt.Errorf("unknown provider: %s", providerName)
	}
}
