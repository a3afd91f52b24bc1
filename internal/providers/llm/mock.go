package llm

import (
	"context"
	"strings"
)

// MockClient is used for offline development (LLM_PROVIDER=mock).
type MockClient struct{}

func (m *MockClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", classify("mock", err)
	}
	return "You said: " + strings.TrimSpace(prompt), nil
}

func (m *MockClient) ModelName() string { return "mock" }
