package ai

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeResponse_OpenAI_Content(t *testing.T) {
	raw := []byte(`{
		"choices": [{"message": {"content": "Hello there!"}}],
		"usage": {"prompt_tokens": 12, "completion_tokens": 5}
	}`)

	data, err := normalizeResponse(raw, "openai")
	require.NoError(t, err)
	assert.Equal(t, "Hello there!", data.Content)
	assert.Empty(t, data.ToolCalls)
	require.NotNil(t, data.Usage)
	assert.Equal(t, 12, data.Usage.InputTokens)
	assert.Equal(t, 5, data.Usage.OutputTokens)
}

func TestNormalizeResponse_OpenAI_ToolCalls(t *testing.T) {
	raw := []byte(`{
		"choices": [{"message": {
			"content": null,
			"tool_calls": [{
				"id": "call_123",
				"type": "function",
				"function": {"name": "local_search", "arguments": "{\"query\":\"widgets\",\"limit\":5}"}
			}]
		}}]
	}`)

	data, err := normalizeResponse(raw, "openai")
	require.NoError(t, err)
	assert.Empty(t, data.Content)
	require.Len(t, data.ToolCalls, 1)

	call := data.ToolCalls[0]
	assert.Equal(t, "local_search", call.Name)
	assert.Equal(t, "call_123", call.CallID)
	assert.Equal(t, "widgets", call.Parameters["query"])
	assert.Equal(t, float64(5), call.Parameters["limit"])
}

func TestNormalizeResponse_OpenAI_MalformedArguments(t *testing.T) {
	raw := []byte(`{
		"choices": [{"message": {
			"tool_calls": [{
				"id": "call_bad",
				"function": {"name": "local_search", "arguments": "not json"}
			}]
		}}]
	}`)

	data, err := normalizeResponse(raw, "openai")
	require.NoError(t, err)
	require.Len(t, data.ToolCalls, 1)
	// Unparseable arguments degrade to an empty parameter set.
	assert.Empty(t, data.ToolCalls[0].Parameters)
}

func TestNormalizeResponse_OpenAI_ErrorEnvelope(t *testing.T) {
	raw := []byte(`{"error": {"message": "Invalid API key", "type": "invalid_request_error"}}`)

	_, err := normalizeResponse(raw, "openai")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid API key")
}

func TestNormalizeResponse_OpenAI_EmptyIsSuccess(t *testing.T) {
	data, err := normalizeResponse([]byte(`{"choices": []}`), "openai")
	require.NoError(t, err)
	assert.Empty(t, data.Content)
	assert.Empty(t, data.ToolCalls)
}

func TestNormalizeResponse_Anthropic(t *testing.T) {
	raw := []byte(`{
		"content": [
			{"type": "text", "text": "Let me search. "},
			{"type": "tool_use", "id": "toolu_01", "name": "local_search", "input": {"query": "widgets"}},
			{"type": "text", "text": "One moment."}
		],
		"usage": {"input_tokens": 30, "output_tokens": 14}
	}`)

	data, err := normalizeResponse(raw, "anthropic")
	require.NoError(t, err)
	assert.Equal(t, "Let me search. One moment.", data.Content)
	require.Len(t, data.ToolCalls, 1)
	assert.Equal(t, "toolu_01", data.ToolCalls[0].CallID)
	assert.Equal(t, "widgets", data.ToolCalls[0].Parameters["query"])
	require.NotNil(t, data.Usage)
	assert.Equal(t, 30, data.Usage.InputTokens)
}

func TestNormalizeResponse_Anthropic_ErrorEnvelope(t *testing.T) {
	raw := []byte(`{"error": {"type": "authentication_error", "message": "invalid x-api-key"}}`)

	_, err := normalizeResponse(raw, "anthropic")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid x-api-key")
}

func TestNormalizeResponse_Gemini_Text(t *testing.T) {
	raw := []byte(`{
		"candidates": [{"content": {"parts": [{"text": "Hello!"}]}}],
		"usageMetadata": {"promptTokenCount": 8, "candidatesTokenCount": 3}
	}`)

	data, err := normalizeResponse(raw, "gemini")
	require.NoError(t, err)
	assert.Equal(t, "Hello!", data.Content)
	require.NotNil(t, data.Usage)
	assert.Equal(t, 8, data.Usage.InputTokens)
	assert.Equal(t, 3, data.Usage.OutputTokens)
}

func TestNormalizeResponse_Gemini_SynthesizesCallID(t *testing.T) {
	raw := []byte(`{
		"candidates": [{"content": {"parts": [
			{"functionCall": {"name": "local_search", "args": {"query": "widgets"}}}
		]}}]
	}`)

	data, err := normalizeResponse(raw, "gemini")
	require.NoError(t, err)
	require.Len(t, data.ToolCalls, 1)

	call := data.ToolCalls[0]
	assert.Equal(t, "local_search", call.Name)
	assert.True(t, strings.HasPrefix(call.CallID, "call_"), "synthesized id %q", call.CallID)
	assert.Greater(t, len(call.CallID), len("call_"))
}

func TestNormalizeResponse_Gemini_ErrorEnvelope(t *testing.T) {
	raw := []byte(`{"error": {"code": 400, "message": "API key not valid"}}`)

	_, err := normalizeResponse(raw, "gemini")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key not valid")
}

func TestNormalizeResponse_InvalidJSON(t *testing.T) {
	for _, provider := range []string{"openai", "anthropic", "gemini"} {
		_, err := normalizeResponse([]byte("<html>bad gateway</html>"), provider)
		assert.Error(t, err, "provider %s", provider)
	}
}

func TestNormalizeResponse_UnsupportedProvider(t *testing.T) {
	_, err := normalizeResponse([]byte(`{}`), "mistral")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mistral")
}
