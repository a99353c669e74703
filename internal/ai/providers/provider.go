package providers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

// Provider is the capability surface of one LLM vendor: send a wire-format
// request, send its streaming variant, and list models. Adapters are
// stateless beyond their held configuration, so a single instance can be
// cached for a process lifetime.
type Provider interface {
	Name() string
	SendRawRequest(ctx context.Context, body []byte) ([]byte, error)
	SendRawStreamingRequest(ctx context.Context, body []byte, onChunk func(chunk []byte)) error
	RawModels(ctx context.Context) ([]string, error)
}

// Config holds the per-provider settings an adapter needs to reach its
// endpoint.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	Timeout     time.Duration
}

func (c Config) httpClient() *http.Client {
	timeout := c.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// UnsupportedError names a provider outside the supported set.
type UnsupportedError struct {
	Name string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("provider %q is not supported", e.Name)
}

// New constructs the adapter for a provider name. The set is closed; adding
// a vendor means adding a case here and a file next to the others.
func New(name string, cfg Config) (Provider, error) {
	switch strings.ToLower(name) {
	case "openai":
		return newOpenAI(cfg), nil
	case "anthropic":
		return newAnthropic(cfg), nil
	case "gemini":
		return newGemini(cfg), nil
	case "grok":
		return newGrok(cfg), nil
	case "openrouter":
		return newOpenRouter(cfg), nil
	default:
		return nil, &UnsupportedError{Name: name}
	}
}

// Names returns the supported provider names.
func Names() []string {
	return []string{"openai", "anthropic", "gemini", "grok", "openrouter"}
}
