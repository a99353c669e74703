package providers

const grokDefaultBaseURL = "https://api.x.ai/v1"

// Grok speaks the OpenAI chat-completions dialect.
func newGrok(cfg Config) *openAICompat {
	return newOpenAICompat("grok", grokDefaultBaseURL, cfg, nil)
}
