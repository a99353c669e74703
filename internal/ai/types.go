package ai

import "encoding/json"

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"

	ToolChoiceAuto = "auto"
	ToolChoiceNone = "none"
)

// Request is the provider-agnostic chat request. Adapters never see it
// directly; the request normalizer translates it to each vendor's wire shape.
type Request struct {
	Messages    []Message        `json:"messages"`
	Tools       []ToolDefinition `json:"tools,omitempty"`
	ToolChoice  string           `json:"tool_choice,omitempty"`
	Model       string           `json:"model,omitempty"`
	Temperature float64          `json:"temperature,omitempty"`
}

// Message is one turn in a conversation. A tool-role message carries the
// serialized tool result in Content and references the intent it answers
// through ToolCallID.
type Message struct {
	Role       string           `json:"role"`
	Content    string           `json:"content"`
	ToolCalls  []ToolCallIntent `json:"tool_calls,omitempty"`
	ToolCallID string           `json:"tool_call_id,omitempty"`
}

// ToolDefinition describes a callable tool offered to the model.
type ToolDefinition struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Parameters  Schema `json:"parameters"`
}

// Schema is the JSON-Schema-like parameter description vendors expect.
type Schema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties,omitempty"`
	Required   []string            `json:"required,omitempty"`
}

type Property struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// ToolCallIntent is a model-issued request to invoke a named tool. CallID is
// the provider's correlation id and must be echoed back verbatim on the
// matching tool-result message.
type ToolCallIntent struct {
	Name       string         `json:"name"`
	Parameters map[string]any `json:"parameters"`
	CallID     string         `json:"call_id"`
}

// Response is the provider-agnostic result of a request. Error is set only
// when Success is false; Raw holds the untouched vendor payload.
type Response struct {
	Success  bool            `json:"success"`
	Data     *ResponseData   `json:"data"`
	Error    string          `json:"error,omitempty"`
	Provider string          `json:"provider"`
	Raw      json.RawMessage `json:"raw_response,omitempty"`
}

// ResponseData carries the normalized assistant output. At most one of
// Content and ToolCalls is meaningfully populated per turn; both empty is a
// valid empty completion, not a failure.
type ResponseData struct {
	Content   string           `json:"content"`
	ToolCalls []ToolCallIntent `json:"tool_calls,omitempty"`
	Usage     *Usage           `json:"usage,omitempty"`
}

type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// ToolResult pairs an executed tool with its outcome for the continuation
// request. CallID carries the intent's correlation id through unchanged.
type ToolResult struct {
	ToolName string `json:"tool_name"`
	CallID   string `json:"call_id"`
	Result   any    `json:"result"`
}

// Continuation is the context needed to resume a conversation after tool
// execution: the full message history so far plus the tool-call intents the
// assistant issued.
type Continuation struct {
	Messages    []Message
	ToolCalls   []ToolCallIntent
	Model       string
	Temperature float64
}

// TestResult reports the outcome of a connection probe.
type TestResult struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Provider string `json:"provider"`
}
