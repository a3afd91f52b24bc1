package llm

import (
	"context"

	"github.com/example/gemini-relay/internal/config"
	"google.golang.org/api/option"
)

// NewFromConfig returns the Client selected by cfg:
//   - LLM_PROVIDER=mock: MockClient
//   - GEMINI_API_URL set: GeminiHTTPClient against that base URL
//   - otherwise: GeminiClient over the SDK
//
// The returned close func releases the SDK connection and is never nil.
func NewFromConfig(ctx context.Context, cfg config.Config) (Client, func() error, error) {
	noop := func() error { return nil }
	switch {
	case cfg.Provider == config.ProviderMock:
		return &MockClient{}, noop, nil
	case cfg.BaseURL != "":
		return NewGeminiHTTPClient(cfg.APIKey, cfg.Model, cfg.BaseURL, cfg.HTTPTimeout), noop, nil
	}
	g, err := NewGeminiClient(ctx, cfg.APIKey, cfg.Model, option.WithUserAgent("gemini-relay"))
	if err != nil {
		return nil, noop, err
	}
	return g, g.Close, nil
}
