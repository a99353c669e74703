package ai

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/forumkit/aibot/internal/ai/providers"
)

// normalizeStreamingRequest turns a provider wire request into its streaming
// variant. Gemini switches endpoints instead of flagging the payload, so its
// request passes through unchanged.
func normalizeStreamingRequest(providerRequest []byte, providerName string) ([]byte, error) {
	switch providerName {
	case "openai", "grok", "openrouter", "anthropic":
		var request map[string]any
		if err := json.Unmarshal(providerRequest, &request); err != nil {
			return nil, fmt.Errorf("unmarshal %s request: %w", providerName, err)
		}
		request["stream"] = true
		return json.Marshal(request)
	case "gemini":
		return providerRequest, nil
	default:
		return nil, &providers.UnsupportedError{Name: providerName}
	}
}

// processStreamingChunk decodes one raw provider chunk into a partial-content
// delta. Chunks with no renderable text, and malformed chunks, report ok =
// false and are skipped; a broken chunk never aborts the stream. The decoder
// keeps no state between chunks.
func processStreamingChunk(chunk []byte, providerName string) (content string, ok bool) {
	if !gjson.ValidBytes(chunk) {
		return "", false
	}

	var delta gjson.Result
	switch providerName {
	case "openai", "grok", "openrouter":
		delta = gjson.GetBytes(chunk, "choices.0.delta.content")
	case "anthropic":
		if gjson.GetBytes(chunk, "type").String() != "content_block_delta" {
			return "", false
		}
		delta = gjson.GetBytes(chunk, "delta.text")
	case "gemini":
		delta = gjson.GetBytes(chunk, "candidates.0.content.parts.0.text")
	default:
		return "", false
	}

	if !delta.Exists() || delta.Type != gjson.String || delta.String() == "" {
		return "", false
	}
	return delta.String(), true
}
