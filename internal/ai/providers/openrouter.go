package providers

const openRouterDefaultBaseURL = "https://openrouter.ai/api/v1"

// OpenRouter is OpenAI-compatible; the referer/title headers identify the
// calling application per its API guidelines.
func newOpenRouter(cfg Config) *openAICompat {
	return newOpenAICompat("openrouter", openRouterDefaultBaseURL, cfg, map[string]string{
		"HTTP-Referer": "https://github.com/forumkit/aibot",
		"X-Title":      "aibot",
	})
}
