package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

const geminiDefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

type geminiProvider struct {
	httpCore
	baseURL string
	cfg     Config
}

func newGemini(cfg Config) *geminiProvider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = geminiDefaultBaseURL
	}
	return &geminiProvider{
		httpCore: httpCore{client: cfg.httpClient()},
		baseURL:  baseURL,
		cfg:      cfg,
	}
}

func (p *geminiProvider) Name() string {
	return "gemini"
}

func (p *geminiProvider) authHeaders() map[string]string {
	return map[string]string{
		"x-goog-api-key": p.cfg.APIKey,
	}
}

// extractModel pops the model field the request normalizer embeds in the
// body; Gemini addresses the model through the URL rather than the payload.
func (p *geminiProvider) extractModel(body []byte) (string, []byte, error) {
	var request map[string]any
	if err := json.Unmarshal(body, &request); err != nil {
		return "", nil, fmt.Errorf("unmarshal gemini request: %w", err)
	}

	model, _ := request["model"].(string)
	if model == "" {
		model = p.cfg.Model
	}
	if model == "" {
		return "", nil, fmt.Errorf("no model configured for gemini")
	}
	delete(request, "model")

	cleaned, err := json.Marshal(request)
	if err != nil {
		return "", nil, fmt.Errorf("marshal gemini request: %w", err)
	}
	return model, cleaned, nil
}

func (p *geminiProvider) SendRawRequest(ctx context.Context, body []byte) ([]byte, error) {
	model, cleaned, err := p.extractModel(body)
	if err != nil {
		return nil, err
	}
	url := fmt.Sprintf("%s/models/%s:generateContent", p.baseURL, model)
	return p.post(ctx, url, p.authHeaders(), cleaned)
}

func (p *geminiProvider) SendRawStreamingRequest(ctx context.Context, body []byte, onChunk func(chunk []byte)) error {
	model, cleaned, err := p.extractModel(body)
	if err != nil {
		return err
	}
	url := fmt.Sprintf("%s/models/%s:streamGenerateContent?alt=sse", p.baseURL, model)
	return p.stream(ctx, url, p.authHeaders(), cleaned, onChunk)
}

func (p *geminiProvider) RawModels(ctx context.Context) ([]string, error) {
	data, err := p.get(ctx, p.baseURL+"/models", p.authHeaders())
	if err != nil {
		return nil, err
	}

	var listing struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.Unmarshal(data, &listing); err != nil {
		return nil, fmt.Errorf("parse gemini model listing: %w", err)
	}

	models := make([]string, 0, len(listing.Models))
	for _, m := range listing.Models {
		models = append(models, strings.TrimPrefix(m.Name, "models/"))
	}
	return models, nil
}
