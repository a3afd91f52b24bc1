package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const providerGemini = "gemini"

// GeminiClient calls Gemini through the official SDK.
type GeminiClient struct {
	client *genai.Client
	model  *genai.GenerativeModel
	name   string
}

func NewGeminiClient(ctx context.Context, apiKey, model string, opts ...option.ClientOption) (*GeminiClient, error) {
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	c, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	name := normalizeModel(model)
	return &GeminiClient{client: c, model: c.GenerativeModel(name), name: name}, nil
}

func (g *GeminiClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		var blocked *genai.BlockedError
		if errors.As(err, &blocked) {
			return "", &Error{Provider: providerGemini, Kind: KindMalformed, Err: err}
		}
		return "", classify(providerGemini, err)
	}
	txt := firstText(resp)
	if txt == "" {
		return "", classify(providerGemini, ErrEmptyResponse)
	}
	return txt, nil
}

func (g *GeminiClient) ModelName() string { return g.name }

func (g *GeminiClient) Close() error { return g.client.Close() }

// firstText joins the text parts of the first candidate that has any.
func firstText(r *genai.GenerateContentResponse) string {
	if r == nil {
		return ""
	}
	for _, c := range r.Candidates {
		if c == nil || c.Content == nil {
			continue
		}
		var b strings.Builder
		for _, part := range c.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
		if b.Len() > 0 {
			return b.String()
		}
	}
	return ""
}

// normalizeModel drops the "models/" resource prefix; both forms name the same model.
func normalizeModel(m string) string {
	return strings.TrimPrefix(strings.TrimSpace(m), "models/")
}
