package providers

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

// geminiEndpoint is the generateContent REST endpoint; the model segment is
// filled in per request.
const geminiEndpoint = "https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent"

// defaultGeminiModel balances quality and latency for chat replies.
const defaultGeminiModel = "gemini-1.5-flash"

// Gemini answers free-text questions via the Generative Language API.
// Implements the commands.AIProvider contract.
type Gemini struct {
	http  *resty.Client
	key   string
	model string

	// endpoint is overridable in tests.
	endpoint string
}

// NewGemini creates a Gemini provider. Returns nil when no key is configured
// so callers can wire the degraded path.
func NewGemini(key string) *Gemini {
	if key == "" {
		return nil
	}
	return &Gemini{
		http:     resty.New().SetTimeout(60 * time.Second),
		key:      key,
		model:    defaultGeminiModel,
		endpoint: geminiEndpoint,
	}
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

// Ask sends the question and returns the first candidate's text.
func (g *Gemini) Ask(ctx context.Context, question string) (string, error) {
	if g == nil || g.key == "" {
		return "", ErrNotConfigured
	}

	body := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: question}}}},
	}

	resp, err := g.http.R().
		SetContext(ctx).
		SetQueryParam("key", g.key).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(fmt.Sprintf(g.endpoint, g.model))
	if err != nil {
		return "", fmt.Errorf("gemini request: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("gemini: unexpected status %d: %s",
			resp.StatusCode(), gjson.Get(resp.String(), "error.message").String())
	}

	text := gjson.Get(resp.String(), "candidates.0.content.parts.0.text").String()
	if text == "" {
		return "", fmt.Errorf("gemini: empty response")
	}
	return text, nil
}
