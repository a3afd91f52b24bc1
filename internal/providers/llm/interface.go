package llm

import (
	"context"
)

// Client is a minimal interface used by the relay.
// Any provider implementation should satisfy this; errors it returns are *Error.
type Client interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// Model is implemented by clients that know which model they call.
type Model interface {
	ModelName() string
}
