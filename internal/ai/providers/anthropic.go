package providers

import (
	"context"
	"encoding/json"
	"fmt"
)

const (
	anthropicDefaultBaseURL = "https://api.anthropic.com/v1"
	anthropicVersion        = "2023-06-01"
)

type anthropicProvider struct {
	httpCore
	baseURL string
	cfg     Config
}

func newAnthropic(cfg Config) *anthropicProvider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = anthropicDefaultBaseURL
	}
	return &anthropicProvider{
		httpCore: httpCore{client: cfg.httpClient()},
		baseURL:  baseURL,
		cfg:      cfg,
	}
}

func (p *anthropicProvider) Name() string {
	return "anthropic"
}

func (p *anthropicProvider) authHeaders() map[string]string {
	return map[string]string{
		"x-api-key":         p.cfg.APIKey,
		"anthropic-version": anthropicVersion,
	}
}

func (p *anthropicProvider) SendRawRequest(ctx context.Context, body []byte) ([]byte, error) {
	return p.post(ctx, p.baseURL+"/messages", p.authHeaders(), body)
}

func (p *anthropicProvider) SendRawStreamingRequest(ctx context.Context, body []byte, onChunk func(chunk []byte)) error {
	return p.stream(ctx, p.baseURL+"/messages", p.authHeaders(), body, onChunk)
}

func (p *anthropicProvider) RawModels(ctx context.Context) ([]string, error) {
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
		return nil, fmt.Errorf("parse anthropic model listing: %w", err)
	}

	models := make([]string, 0, len(listing.Data))
	for _, m := range listing.Data {
		models = append(models, m.ID)
	}
	return models, nil
}
