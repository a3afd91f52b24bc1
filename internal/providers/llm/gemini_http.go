package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiHTTPClient calls the generateContent REST endpoint directly. It is used
// when the endpoint is overridden (proxies, local fakes).
type GeminiHTTPClient struct {
	APIKey  string
	Model   string
	BaseURL string
	HTTP    *http.Client
}

func NewGeminiHTTPClient(apiKey, model, baseURL string, timeout time.Duration) *GeminiHTTPClient {
	if baseURL == "" {
		baseURL = DefaultGeminiBaseURL
	}
	return &GeminiHTTPClient{
		APIKey:  apiKey,
		Model:   normalizeModel(model),
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
	}
}

func (c *GeminiHTTPClient) ModelName() string { return c.Model }

func (c *GeminiHTTPClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.BaseURL, url.PathEscape(c.Model), url.QueryEscape(c.APIKey))
	body := map[string]any{
		"contents": []map[string]any{{
			"role":  "user",
			"parts": []map[string]string{{"text": prompt}},
		}},
	}
	b, err := json.Marshal(body)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("content-type", "application/json")

	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	res, err := httpClient.Do(req)
	if err != nil {
		// *url.Error carries the key in the query string.
		return "", classify(providerGemini, redactKey(err, c.APIKey))
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(res.Body, 64<<10))
		return "", &Error{
			Provider: providerGemini,
			Kind:     statusKind(res.StatusCode, string(raw)),
			Status:   res.StatusCode,
			Err:      fmt.Errorf("gemini status %d: %s", res.StatusCode, strings.TrimSpace(string(raw))),
		}
	}

	var out struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return "", &Error{Provider: providerGemini, Kind: KindMalformed, Status: res.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	for _, cand := range out.Candidates {
		var sb strings.Builder
		for _, p := range cand.Content.Parts {
			sb.WriteString(p.Text)
		}
		if sb.Len() > 0 {
			return sb.String(), nil
		}
	}
	return "", &Error{Provider: providerGemini, Kind: KindMalformed, Status: res.StatusCode, Err: ErrEmptyResponse}
}

type redactedError struct {
	msg string
	err error
}

func (r *redactedError) Error() string { return r.msg }
func (r *redactedError) Unwrap() error { return r.err }

func redactKey(err error, key string) error {
	if key == "" {
		return err
	}
	msg := err.Error()
	for _, k := range []string{url.QueryEscape(key), key} {
		msg = strings.ReplaceAll(msg, "key="+k, "key=REDACTED")
	}
	if msg == err.Error() {
		return err
	}
	return &redactedError{msg: msg, err: err}
}
