package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(defaultProvider, baseURL string) *Client {
	return NewClient(ClientConfig{
		DefaultProvider: defaultProvider,
		Providers: map[string]ProviderSettings{
			defaultProvider: {
				APIKey:  "test-key",
				BaseURL: baseURL,
				Model:   "test-model",
			},
		},
	}, testLogger())
}

func TestSendRequest_NotConfigured(t *testing.T) {
	client := NewClient(ClientConfig{}, testLogger())

	assert.False(t, client.IsConfigured())

	resp := client.SendRequest(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	}, "")

	assert.False(t, resp.Success)
	assert.Nil(t, resp.Data)
	assert.Contains(t, resp.Error, "not configured")
}

func TestSendRequest_NotConfigured_ExplicitProvider(t *testing.T) {
	// Naming a provider does not open up an unconfigured client: it still
	// fails closed on every request.
	client := NewClient(ClientConfig{
		Providers: map[string]ProviderSettings{
			"openai": {APIKey: "test-key", BaseURL: "http://127.0.0.1:1"},
		},
	}, testLogger())

	resp := client.SendRequest(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	}, "openai")

	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "not configured")
}

func TestSendRequest_EmptyMessages(t *testing.T) {
	client := newTestClient("openai", "http://localhost:1")

	resp := client.SendRequest(context.Background(), Request{}, "")

	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "messages")
}

func TestSendRequest_UnsupportedProvider(t *testing.T) {
	client := newTestClient("openai", "http://localhost:1")

	resp := client.SendRequest(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	}, "mistral")

	assert.False(t, resp.Success)
	assert.Equal(t, "mistral", resp.Provider)
	assert.Contains(t, resp.Error, "not supported")
}

func TestSendRequest_TransportFailureIsCaptured(t *testing.T) {
	// Nothing listens here; the failure must land in the envelope, not panic
	// or surface as a Go error.
	client := newTestClient("openai", "http://127.0.0.1:1")

	resp := client.SendRequest(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	}, "")

	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Error)
	assert.Equal(t, "openai", resp.Provider)
}

func TestSendRequest_Success(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"choices":[{"message":{"content":"Hello back"}}],"usage":{"prompt_tokens":4,"completion_tokens":2}}`)
	}))
	defer server.Close()

	client := newTestClient("openai", server.URL)

	resp := client.SendRequest(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	}, "")

	require.True(t, resp.Success, "error: %s", resp.Error)
	require.NotNil(t, resp.Data)
	assert.Equal(t, "Hello back", resp.Data.Content)
	assert.Equal(t, "openai", resp.Provider)
	assert.NotEmpty(t, resp.Raw)

	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "test-model", gotBody["model"])
}

func TestSendRequest_UpstreamErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"rate limited"}}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := newTestClient("openai", server.URL)

	resp := client.SendRequest(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	}, "")

	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "429")
}

func TestSendStreamingRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, true, body["stream"])

		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"Hel\"}}]}\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"lo\"}}]}\n\n")
		fmt.Fprint(w, "data: not-json\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer server.Close()

	client := newTestClient("openai", server.URL)

	var chunks []string
	full, err := client.SendStreamingRequest(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	}, "", func(content string) {
		chunks = append(chunks, content)
	})

	require.NoError(t, err)
	assert.Equal(t, "Hello", full)
	assert.Equal(t, []string{"Hel", "lo"}, chunks)
}

func TestSendStreamingRequest_NotConfigured(t *testing.T) {
	client := NewClient(ClientConfig{}, testLogger())

	_, err := client.SendStreamingRequest(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	}, "", nil)

	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = client.SendStreamingRequest(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	}, "openai", nil)

	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestContinueWithToolResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		// Tool results must arrive as tool-role messages with the call id.
		messages := body["messages"].([]any)
		last := messages[len(messages)-1].(map[string]any)
		assert.Equal(t, "tool", last["role"])
		assert.Equal(t, "call_1", last["tool_call_id"])

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"choices":[{"message":{"content":"Found 3 results."}}]}`)
	}))
	defer server.Close()

	client := newTestClient("openai", server.URL)

	cont := Continuation{
		Messages: []Message{{Role: RoleUser, Content: "find widgets"}},
		ToolCalls: []ToolCallIntent{
			{Name: "local_search", Parameters: map[string]any{"query": "widgets"}, CallID: "call_1"},
		},
	}
	results := []ToolResult{
		{ToolName: "local_search", CallID: "call_1", Result: map[string]any{"hits": 3}},
	}

	resp, err := client.ContinueWithToolResults(context.Background(), cont, results, "", nil)
	require.NoError(t, err)
	require.True(t, resp.Success, "error: %s", resp.Error)
	assert.Equal(t, "Found 3 results.", resp.Data.Content)
}

func TestContinueWithToolResults_NoCallsErrors(t *testing.T) {
	client := newTestClient("openai", "http://localhost:1")

	resp, err := client.ContinueWithToolResults(context.Background(), Continuation{}, nil, "", nil)
	require.Error(t, err)
	assert.False(t, resp.Success)
}

func TestTestConnection_MissingAPIKey(t *testing.T) {
	client := NewClient(ClientConfig{
		DefaultProvider: "openai",
		Providers: map[string]ProviderSettings{
			"openai": {BaseURL: "http://localhost:1"},
		},
	}, testLogger())

	// No network I/O should happen; the config check short-circuits.
	result := client.TestConnection(context.Background(), "")
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "API key")
}

func TestTestConnection_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"choices":[{"message":{"content":"Hi"}}]}`)
	}))
	defer server.Close()

	client := newTestClient("openai", server.URL)

	result := client.TestConnection(context.Background(), "")
	assert.True(t, result.Success, "message: %s", result.Message)
	assert.Equal(t, "openai", result.Provider)
}

func TestAvailableModels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/models", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"data":[{"id":"gpt-4o"},{"id":"gpt-4o-mini"}]}`)
	}))
	defer server.Close()

	client := newTestClient("openai", server.URL)

	models := client.AvailableModels(context.Background(), "")
	assert.Equal(t, []string{"gpt-4o", "gpt-4o-mini"}, models)
}

func TestAvailableModels_FailureYieldsNil(t *testing.T) {
	client := newTestClient("openai", "http://127.0.0.1:1")

	assert.Nil(t, client.AvailableModels(context.Background(), ""))
	assert.Nil(t, client.AvailableModels(context.Background(), "mistral"))
}

func TestGetProviderConfig_Cached(t *testing.T) {
	client := newTestClient("openai", "http://localhost:1")

	first := client.getProviderConfig("openai")
	second := client.getProviderConfig("openai")
	assert.Equal(t, first, second)
}
