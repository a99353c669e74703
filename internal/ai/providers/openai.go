package providers

import (
	"context"
	"encoding/json"
	"fmt"
)

const openAIDefaultBaseURL = "https://api.openai.com/v1"

// openAICompat is the shared adapter for vendors exposing an OpenAI-style
// chat-completions endpoint with bearer authentication (OpenAI, Grok,
// OpenRouter). Each vendor wraps it with its own name and base URL.
type openAICompat struct {
	httpCore
	name    string
	baseURL string
	cfg     Config
	headers map[string]string
}

func newOpenAICompat(name, defaultBaseURL string, cfg Config, extraHeaders map[string]string) *openAICompat {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &openAICompat{
		httpCore: httpCore{client: cfg.httpClient()},
		name:     name,
		baseURL:  baseURL,
		cfg:      cfg,
		headers:  extraHeaders,
	}
}

func newOpenAI(cfg Config) *openAICompat {
	return newOpenAICompat("openai", openAIDefaultBaseURL, cfg, nil)
}

func (p *openAICompat) Name() string {
	return p.name
}

func (p *openAICompat) authHeaders() map[string]string {
	headers := map[string]string{
		"Authorization": "Bearer " + p.cfg.APIKey,
	}
	for k, v := range p.headers {
		headers[k] = v
	}
	return headers
}

func (p *openAICompat) SendRawRequest(ctx context.Context, body []byte) ([]byte, error) {
	return p.post(ctx, p.baseURL+"/chat/completions", p.authHeaders(), body)
}

func (p *openAICompat) SendRawStreamingRequest(ctx context.Context, body []byte, onChunk func(chunk []byte)) error {
	return p.stream(ctx, p.baseURL+"/chat/completions", p.authHeaders(), body, onChunk)
}

func (p *openAICompat) RawModels(ctx context.Context) ([]string, error) {
	data, err := p.get(ctx, p.baseURL+"/models", p.authHeaders())
	if err != nil {
		return nil, err
	}

	var listing struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(data, &listing); err != nil {
		return nil, fmt.Errorf("parse %s model listing: %w", p.name, err)
	}

	models := make([]string, 0, len(listing.Data))
	for _, m := range listing.Data {
		models = append(models, m.ID)
	}
	return models, nil
}
