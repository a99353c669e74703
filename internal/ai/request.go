package ai

import (
	"encoding/json"
	"fmt"

	"github.com/forumkit/aibot/internal/ai/providers"
)

const anthropicDefaultMaxTokens = 4096

// normalizeRequest maps a canonical request into the wire JSON a provider's
// chat endpoint expects. Fields the provider does not support are dropped,
// never an error. A model or temperature set on the request wins over the
// stored provider configuration.
func normalizeRequest(req Request, providerName string, cfg providers.Config) ([]byte, error) {
	model := req.Model
	if model == "" {
		model = cfg.Model
	}
	if req.Temperature == 0 {
		req.Temperature = cfg.Temperature
	}

	switch providerName {
	case "openai", "grok", "openrouter":
		return json.Marshal(buildOpenAIRequest(req, model))
	case "anthropic":
		return json.Marshal(buildAnthropicRequest(req, model))
	case "gemini":
		return json.Marshal(buildGeminiRequest(req, model))
	default:
		return nil, &providers.UnsupportedError{Name: providerName}
	}
}

func buildOpenAIRequest(req Request, model string) map[string]any {
	messages := make([]any, 0, len(req.Messages))
	for _, msg := range req.Messages {
		m := map[string]any{"role": msg.Role}

		if len(msg.ToolCalls) > 0 {
			m["content"] = nil
			m["tool_calls"] = openAIToolCalls(msg.ToolCalls)
		} else {
			m["content"] = msg.Content
		}

		if msg.ToolCallID != "" {
			m["tool_call_id"] = msg.ToolCallID
		}

		messages = append(messages, m)
	}

	request := map[string]any{"messages": messages}
	if model != "" {
		request["model"] = model
	}
	if req.Temperature != 0 {
		request["temperature"] = req.Temperature
	}

	if len(req.Tools) > 0 {
		tools := make([]any, 0, len(req.Tools))
		for _, tool := range req.Tools {
			tools = append(tools, map[string]any{
				"type": "function",
				"function": map[string]any{
					"name":        tool.Name,
					"description": tool.Description,
					"parameters":  tool.Parameters,
				},
			})
		}
		request["tools"] = tools
		if req.ToolChoice != "" {
			request["tool_choice"] = req.ToolChoice
		}
	}

	return request
}

func openAIToolCalls(calls []ToolCallIntent) []any {
	out := make([]any, 0, len(calls))
	for _, call := range calls {
		arguments := "{}"
		if call.Parameters != nil {
			if data, err := json.Marshal(call.Parameters); err == nil {
				arguments = string(data)
			}
		}
		out = append(out, map[string]any{
			"id":   call.CallID,
			"type": "function",
			"function": map[string]any{
				"name":      call.Name,
				"arguments": arguments,
			},
		})
	}
	return out
}

func buildAnthropicRequest(req Request, model string) map[string]any {
	var system string
	messages := make([]any, 0, len(req.Messages))

	for _, msg := range req.Messages {
		switch msg.Role {
		case RoleSystem:
			// Anthropic takes system text at the top level.
			if system != "" {
				system += "\n\n"
			}
			system += msg.Content

		case RoleAssistant:
			if len(msg.ToolCalls) > 0 {
				content := make([]any, 0, len(msg.ToolCalls)+1)
				if msg.Content != "" {
					content = append(content, map[string]any{"type": "text", "text": msg.Content})
				}
				for _, call := range msg.ToolCalls {
					content = append(content, map[string]any{
						"type":  "tool_use",
						"id":    call.CallID,
						"name":  call.Name,
						"input": call.Parameters,
					})
				}
				messages = append(messages, map[string]any{"role": RoleAssistant, "content": content})
			} else {
				messages = append(messages, map[string]any{"role": RoleAssistant, "content": msg.Content})
			}

		case RoleTool:
			// Tool results ride in a user message as tool_result blocks.
			messages = append(messages, map[string]any{
				"role": RoleUser,
				"content": []any{
					map[string]any{
						"type":        "tool_result",
						"tool_use_id": msg.ToolCallID,
						"content":     msg.Content,
					},
				},
			})

		default:
			messages = append(messages, map[string]any{"role": RoleUser, "content": msg.Content})
		}
	}

	request := map[string]any{
		"messages":   messages,
		"max_tokens": anthropicDefaultMaxTokens,
	}
	if model != "" {
		request["model"] = model
	}
	if system != "" {
		request["system"] = system
	}
	if req.Temperature != 0 {
		request["temperature"] = req.Temperature
	}

	if len(req.Tools) > 0 {
		tools := make([]any, 0, len(req.Tools))
		for _, tool := range req.Tools {
			tools = append(tools, map[string]any{
				"name":         tool.Name,
				"description":  tool.Description,
				"input_schema": tool.Parameters,
			})
		}
		request["tools"] = tools

		switch req.ToolChoice {
		case ToolChoiceAuto:
			request["tool_choice"] = map[string]any{"type": "auto"}
		case ToolChoiceNone:
			// Anthropic has no "none"; omitting tools entirely would lose
			// definitions the caller supplied, so leave the choice unset.
		case "":
		default:
			request["tool_choice"] = map[string]any{"type": "tool", "name": req.ToolChoice}
		}
	}

	return request
}

func buildGeminiRequest(req Request, model string) map[string]any {
	var systemParts []any
	contents := make([]any, 0, len(req.Messages))

	for _, msg := range req.Messages {
		switch msg.Role {
		case RoleSystem:
			systemParts = append(systemParts, map[string]any{"text": msg.Content})

		case RoleAssistant:
			parts := make([]any, 0, len(msg.ToolCalls)+1)
			if msg.Content != "" {
				parts = append(parts, map[string]any{"text": msg.Content})
			}
			for _, call := range msg.ToolCalls {
				parts = append(parts, map[string]any{
					"functionCall": map[string]any{
						"name": call.Name,
						"args": call.Parameters,
					},
				})
			}
			contents = append(contents, map[string]any{"role": "model", "parts": parts})

		case RoleTool:
			name := toolNameForCall(req.Messages, msg.ToolCallID)
			var response any
			if err := json.Unmarshal([]byte(msg.Content), &response); err != nil {
				response = msg.Content
			}
			contents = append(contents, map[string]any{
				"role": RoleUser,
				"parts": []any{
					map[string]any{
						"functionResponse": map[string]any{
							"name":     name,
							"response": map[string]any{"result": response},
						},
					},
				},
			})

		default:
			contents = append(contents, map[string]any{
				"role":  RoleUser,
				"parts": []any{map[string]any{"text": msg.Content}},
			})
		}
	}

	request := map[string]any{"contents": contents}
	if model != "" {
		// The adapter pops this to build the URL; Gemini does not accept a
		// model field in the payload.
		request["model"] = model
	}
	if len(systemParts) > 0 {
		request["systemInstruction"] = map[string]any{"parts": systemParts}
	}
	if req.Temperature != 0 {
		request["generationConfig"] = map[string]any{"temperature": req.Temperature}
	}

	if len(req.Tools) > 0 {
		declarations := make([]any, 0, len(req.Tools))
		for _, tool := range req.Tools {
			declarations = append(declarations, map[string]any{
				"name":        tool.Name,
				"description": tool.Description,
				"parameters":  geminiSchema(tool.Parameters),
			})
		}
		request["tools"] = []any{map[string]any{"functionDeclarations": declarations}}

		switch req.ToolChoice {
		case ToolChoiceAuto:
			request["toolConfig"] = map[string]any{"functionCallingConfig": map[string]any{"mode": "AUTO"}}
		case ToolChoiceNone:
			request["toolConfig"] = map[string]any{"functionCallingConfig": map[string]any{"mode": "NONE"}}
		}
	}

	return request
}

// geminiSchema uppercases schema type names the way the Gemini API expects
// (OBJECT, STRING, INTEGER) while keeping the structure intact.
func geminiSchema(schema Schema) map[string]any {
	properties := make(map[string]any, len(schema.Properties))
	for name, prop := range schema.Properties {
		p := map[string]any{"type": geminiType(prop.Type)}
		if prop.Description != "" {
			p["description"] = prop.Description
		}
		properties[name] = p
	}

	out := map[string]any{"type": geminiType(schema.Type)}
	if len(properties) > 0 {
		out["properties"] = properties
	}
	if len(schema.Required) > 0 {
		out["required"] = schema.Required
	}
	return out
}

func geminiType(t string) string {
	switch t {
	case "object":
		return "OBJECT"
	case "string":
		return "STRING"
	case "integer":
		return "INTEGER"
	case "number":
		return "NUMBER"
	case "boolean":
		return "BOOLEAN"
	case "array":
		return "ARRAY"
	default:
		if t == "" {
			return "STRING"
		}
		return t
	}
}

// toolNameForCall finds the tool name an earlier assistant message issued
// under the given call id. Gemini correlates function responses by name, not
// id, so the name has to be recovered from the history.
func toolNameForCall(messages []Message, callID string) string {
	for _, msg := range messages {
		for _, call := range msg.ToolCalls {
			if call.CallID == callID {
				return call.Name
			}
		}
	}
	return fmt.Sprintf("unknown_%s", callID)
}
