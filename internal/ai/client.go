package ai

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/forumkit/aibot/internal/ai/providers"
)

// ProviderSettings are the stored per-provider credentials and defaults.
type ProviderSettings struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
}

// ClientConfig configures a Client. A client built without a default
// provider is marked unconfigured and answers every request with a uniform
// error instead of attempting network I/O.
type ClientConfig struct {
	DefaultProvider string
	Timeout         time.Duration
	Providers       map[string]ProviderSettings
}

// Client drives the normalize → call → normalize pipeline against any of the
// supported providers. Adapters and resolved provider configs are cached for
// the client's lifetime, construct-once per key.
type Client struct {
	cfg    ClientConfig
	logger *slog.Logger

	mu           sync.Mutex
	providers    map[string]providers.Provider
	providerCfgs map[string]providers.Config

	configured bool
}

func NewClient(cfg ClientConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:          cfg,
		logger:       logger,
		providers:    make(map[string]providers.Provider),
		providerCfgs: make(map[string]providers.Config),
		configured:   cfg.DefaultProvider != "",
	}
}

// IsConfigured reports whether the client holds a usable default provider.
func (c *Client) IsConfigured() bool {
	return c.configured
}

func (c *Client) resolveProviderName(providerName string) string {
	if providerName == "" {
		return c.cfg.DefaultProvider
	}
	return strings.ToLower(providerName)
}

// getProviderConfig resolves and caches the settings for a provider name.
// Two lookups of the same name within one client always observe equal
// configuration.
func (c *Client) getProviderConfig(providerName string) providers.Config {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cfg, ok := c.providerCfgs[providerName]; ok {
		return cfg
	}

	settings := c.cfg.Providers[providerName]
	cfg := providers.Config{
		APIKey:      settings.APIKey,
		BaseURL:     settings.BaseURL,
		Model:       settings.Model,
		Temperature: settings.Temperature,
		Timeout:     c.cfg.Timeout,
	}
	c.providerCfgs[providerName] = cfg
	return cfg
}

// getProvider returns the cached adapter for a name, constructing it on
// first use. The construct-once guard keeps concurrent callers from racing
// duplicate adapters into the cache.
func (c *Client) getProvider(providerName string) (providers.Provider, error) {
	cfg := c.getProviderConfig(providerName)

	c.mu.Lock()
	defer c.mu.Unlock()

	if provider, ok := c.providers[providerName]; ok {
		return provider, nil
	}

	provider, err := providers.New(providerName, cfg)
	if err != nil {
		return nil, err
	}
	c.providers[providerName] = provider
	return provider, nil
}

// SendRequest runs the full pipeline and never returns an error: validation,
// configuration, unsupported-provider, transport, and parse failures are all
// captured into the response envelope.
func (c *Client) SendRequest(ctx context.Context, req Request, providerName string) Response {
	// An unconfigured client fails closed on every request, even when the
	// caller names a provider explicitly.
	if !c.configured {
		return errorResponse(ErrNotConfigured.Error(), "none")
	}

	providerName = c.resolveProviderName(providerName)

	if err := validateRequest(req); err != nil {
		return errorResponse(err.Error(), providerName)
	}

	provider, err := c.getProvider(providerName)
	if err != nil {
		return errorResponse(err.Error(), providerName)
	}

	providerCfg := c.getProviderConfig(providerName)
	providerRequest, err := normalizeRequest(req, providerName, providerCfg)
	if err != nil {
		return errorResponse(err.Error(), providerName)
	}

	raw, err := provider.SendRawRequest(ctx, providerRequest)
	if err != nil {
		c.logger.Warn("provider request failed", "provider", providerName, "error", err)
		return errorResponse(err.Error(), providerName)
	}

	data, err := normalizeResponse(raw, providerName)
	if err != nil {
		c.logger.Warn("response normalization failed", "provider", providerName, "error", err)
		return errorResponse(err.Error(), providerName)
	}

	return Response{
		Success:  true,
		Data:     data,
		Provider: providerName,
		Raw:      raw,
	}
}

// SendStreamingRequest opens a streaming call and feeds each decoded partial
// content delta to onChunk, returning the accumulated text. Unlike
// SendRequest it fails by returning an error: output may already have been
// emitted, and a silently empty result would be worse than a visible
// failure.
func (c *Client) SendStreamingRequest(ctx context.Context, req Request, providerName string, onChunk func(content string)) (string, error) {
	if !c.configured {
		return "", ErrNotConfigured
	}

	providerName = c.resolveProviderName(providerName)

	if err := validateRequest(req); err != nil {
		return "", err
	}

	provider, err := c.getProvider(providerName)
	if err != nil {
		return "", err
	}

	providerCfg := c.getProviderConfig(providerName)
	providerRequest, err := normalizeRequest(req, providerName, providerCfg)
	if err != nil {
		return "", err
	}

	streamingRequest, err := normalizeStreamingRequest(providerRequest, providerName)
	if err != nil {
		return "", err
	}

	var full strings.Builder
	err = provider.SendRawStreamingRequest(ctx, streamingRequest, func(chunk []byte) {
		content, ok := processStreamingChunk(chunk, providerName)
		if !ok {
			return
		}
		full.WriteString(content)
		if onChunk != nil {
			onChunk(content)
		}
	})
	if err != nil {
		return full.String(), err
	}
	return full.String(), nil
}

// ContinueWithToolResults packages executed tool results into the provider's
// continuation convention and resumes the conversation. With a non-nil
// onChunk the continuation streams; otherwise it follows the SendRequest
// path. Errors propagate to the caller on this entry point.
func (c *Client) ContinueWithToolResults(ctx context.Context, cont Continuation, results []ToolResult, providerName string, onChunk func(content string)) (Response, error) {
	providerName = c.resolveProviderName(providerName)

	req, err := normalizeForContinuation(results, cont)
	if err != nil {
		return errorResponse(err.Error(), providerName), err
	}

	if onChunk != nil {
		content, err := c.SendStreamingRequest(ctx, req, providerName, onChunk)
		if err != nil {
			return errorResponse(err.Error(), providerName), err
		}
		return Response{
			Success:  true,
			Data:     &ResponseData{Content: content},
			Provider: providerName,
		}, nil
	}

	return c.SendRequest(ctx, req, providerName), nil
}

// TestConnection validates the provider's configuration and, when it looks
// usable, issues a minimal probe request. Configuration problems
// short-circuit without network I/O.
func (c *Client) TestConnection(ctx context.Context, providerName string) TestResult {
	providerName = c.resolveProviderName(providerName)
	if providerName == "" {
		return testResult("none", ErrNotConfigured)
	}

	providerCfg := c.getProviderConfig(providerName)
	if err := validateProviderConfig(providerName, providerCfg); err != nil {
		return testResult(providerName, err)
	}

	provider, err := c.getProvider(providerName)
	if err != nil {
		return testResult(providerName, err)
	}

	providerRequest, err := normalizeRequest(testRequest(), providerName, providerCfg)
	if err != nil {
		return testResult(providerName, err)
	}

	raw, err := provider.SendRawRequest(ctx, providerRequest)
	if err != nil {
		return testResult(providerName, err)
	}

	if _, err := normalizeResponse(raw, providerName); err != nil {
		return testResult(providerName, err)
	}
	return testResult(providerName, nil)
}

// AvailableModels lists the provider's models. Discovery is advisory: any
// failure yields nil rather than an error.
func (c *Client) AvailableModels(ctx context.Context, providerName string) []string {
	providerName = c.resolveProviderName(providerName)
	if providerName == "" {
		return nil
	}

	provider, err := c.getProvider(providerName)
	if err != nil {
		c.logger.Warn("model discovery failed", "provider", providerName, "error", err)
		return nil
	}

	models, err := provider.RawModels(ctx)
	if err != nil {
		c.logger.Warn("model discovery failed", "provider", providerName, "error", err)
		return nil
	}
	return models
}

func errorResponse(message, providerName string) Response {
	return Response{
		Success:  false,
		Data:     nil,
		Error:    message,
		Provider: providerName,
	}
}
