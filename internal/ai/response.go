package ai

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/forumkit/aibot/internal/ai/providers"
)

// normalizeResponse extracts assistant text and tool-call intents from a
// provider's raw response envelope. A response carrying neither content nor
// tool calls is a valid empty success; only an unparseable envelope or a
// vendor-reported error fails.
func normalizeResponse(raw []byte, providerName string) (*ResponseData, error) {
	switch providerName {
	case "openai", "grok", "openrouter":
		return parseOpenAIResponse(raw, providerName)
	case "anthropic":
		return parseAnthropicResponse(raw)
	case "gemini":
		return parseGeminiResponse(raw)
	default:
		return nil, &providers.UnsupportedError{Name: providerName}
	}
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content   *string `json:"content"`
			ToolCalls []struct {
				ID       string `json:"id"`
				Function struct {
					Name      string `json:"name"`
					Arguments string `json:"arguments"`
				} `json:"function"`
			} `json:"tool_calls"`
		} `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func parseOpenAIResponse(raw []byte, providerName string) (*ResponseData, error) {
	var resp openAIResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal %s response: %w", providerName, err)
	}

	if resp.Error != nil {
		return nil, fmt.Errorf("%s error: %s", providerName, resp.Error.Message)
	}

	data := &ResponseData{}
	if resp.Usage != nil {
		data.Usage = &Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		}
	}

	if len(resp.Choices) == 0 {
		return data, nil
	}

	message := resp.Choices[0].Message
	if message.Content != nil {
		data.Content = *message.Content
	}

	for _, call := range message.ToolCalls {
		parameters := map[string]any{}
		if call.Function.Arguments != "" {
			// Tolerate unparseable arguments; the loop surfaces them to the
			// tool as an empty parameter set rather than failing the turn.
			_ = json.Unmarshal([]byte(call.Function.Arguments), &parameters)
		}
		data.ToolCalls = append(data.ToolCalls, ToolCallIntent{
			Name:       call.Function.Name,
			Parameters: parameters,
			CallID:     call.ID,
		})
	}

	return data, nil
}

type anthropicAPIResponse struct {
	Content []struct {
		Type  string         `json:"type"`
		Text  string         `json:"text"`
		ID    string         `json:"id"`
		Name  string         `json:"name"`
		Input map[string]any `json:"input"`
	} `json:"content"`
	Usage *struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func parseAnthropicResponse(raw []byte) (*ResponseData, error) {
	var resp anthropicAPIResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal anthropic response: %w", err)
	}

	if resp.Error != nil {
		return nil, fmt.Errorf("anthropic error: %s", resp.Error.Message)
	}

	data := &ResponseData{}
	if resp.Usage != nil {
		data.Usage = &Usage{
			InputTokens:  resp.Usage.InputTokens,
			OutputTokens: resp.Usage.OutputTokens,
		}
	}

	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			data.Content += block.Text
		case "tool_use":
			parameters := block.Input
			if parameters == nil {
				parameters = map[string]any{}
			}
			data.ToolCalls = append(data.ToolCalls, ToolCallIntent{
				Name:       block.Name,
				Parameters: parameters,
				CallID:     block.ID,
			})
		}
	}

	return data, nil
}

type geminiAPIResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text         string `json:"text"`
				FunctionCall *struct {
					Name string         `json:"name"`
					Args map[string]any `json:"args"`
				} `json:"functionCall"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	UsageMetadata *struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
	} `json:"usageMetadata"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func parseGeminiResponse(raw []byte) (*ResponseData, error) {
	var resp geminiAPIResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal gemini response: %w", err)
	}

	if resp.Error != nil {
		return nil, fmt.Errorf("gemini error: %s", resp.Error.Message)
	}

	data := &ResponseData{}
	if resp.UsageMetadata != nil {
		data.Usage = &Usage{
			InputTokens:  resp.UsageMetadata.PromptTokenCount,
			OutputTokens: resp.UsageMetadata.CandidatesTokenCount,
		}
	}

	if len(resp.Candidates) == 0 {
		return data, nil
	}

	for _, part := range resp.Candidates[0].Content.Parts {
		if part.FunctionCall != nil {
			parameters := part.FunctionCall.Args
			if parameters == nil {
				parameters = map[string]any{}
			}
			// Gemini issues no call id; synthesize one so the loop can
			// correlate results the same way as for other providers.
			data.ToolCalls = append(data.ToolCalls, ToolCallIntent{
				Name:       part.FunctionCall.Name,
				Parameters: parameters,
				CallID:     "call_" + uuid.NewString(),
			})
			continue
		}
		data.Content += part.Text
	}

	return data, nil
}
