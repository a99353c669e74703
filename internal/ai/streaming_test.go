package ai

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeStreamingRequest_AddsStreamFlag(t *testing.T) {
	for _, provider := range []string{"openai", "grok", "openrouter", "anthropic"} {
		out, err := normalizeStreamingRequest([]byte(`{"messages":[]}`), provider)
		require.NoError(t, err, "provider %s", provider)

		var decoded map[string]any
		require.NoError(t, json.Unmarshal(out, &decoded))
		assert.Equal(t, true, decoded["stream"], "provider %s", provider)
	}
}

func TestNormalizeStreamingRequest_GeminiPassthrough(t *testing.T) {
	// Gemini streams via a different endpoint, not a payload flag.
	in := []byte(`{"contents":[]}`)
	out, err := normalizeStreamingRequest(in, "gemini")
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestProcessStreamingChunk(t *testing.T) {
	testCases := []struct {
		name     string
		provider string
		chunk    string
		want     string
		wantOK   bool
	}{
		{
			name:     "openai delta content",
			provider: "openai",
			chunk:    `{"choices":[{"delta":{"content":"Hel"}}]}`,
			want:     "Hel",
			wantOK:   true,
		},
		{
			name:     "openai empty delta",
			provider: "openai",
			chunk:    `{"choices":[{"delta":{}}]}`,
			wantOK:   false,
		},
		{
			name:     "openai finish chunk",
			provider: "openai",
			chunk:    `{"choices":[{"delta":{},"finish_reason":"stop"}]}`,
			wantOK:   false,
		},
		{
			name:     "anthropic content block delta",
			provider: "anthropic",
			chunk:    `{"type":"content_block_delta","delta":{"type":"text_delta","text":"lo "}}`,
			want:     "lo ",
			wantOK:   true,
		},
		{
			name:     "anthropic message start skipped",
			provider: "anthropic",
			chunk:    `{"type":"message_start","message":{"id":"msg_1"}}`,
			wantOK:   false,
		},
		{
			name:     "gemini part text",
			provider: "gemini",
			chunk:    `{"candidates":[{"content":{"parts":[{"text":"world"}]}}]}`,
			want:     "world",
			wantOK:   true,
		},
		{
			name:     "malformed chunk skipped",
			provider: "openai",
			chunk:    `{"choices":[{"delta":`,
			wantOK:   false,
		},
		{
			name:     "unknown provider",
			provider: "mistral",
			chunk:    `{"choices":[{"delta":{"content":"x"}}]}`,
			wantOK:   false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			content, ok := processStreamingChunk([]byte(tc.chunk), tc.provider)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.want, content)
		})
	}
}

func TestProcessStreamingChunk_Accumulation(t *testing.T) {
	chunks := []string{
		`{"choices":[{"delta":{"content":"Hel"}}]}`,
		`{"choices":[{"delta":{"content":"lo "}}]}`,
		`{"choices":[{"delta":`, // broken chunk must not abort the stream
		`{"choices":[{"delta":{"content":"world"}}]}`,
	}

	var full string
	for _, chunk := range chunks {
		if content, ok := processStreamingChunk([]byte(chunk), "openai"); ok {
			full += content
		}
	}
	assert.Equal(t, "Hello world", full)
}
