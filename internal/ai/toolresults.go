package ai

import (
	"encoding/json"
	"fmt"
)

// normalizeForContinuation builds the canonical follow-up request that feeds
// executed tool results back to the model: the history so far, one assistant
// message restating the tool-call intents, and one tool message per result
// carrying the provider-issued call id unchanged. Tools are stripped so the
// continuation cannot recurse on its own.
func normalizeForContinuation(results []ToolResult, cont Continuation) (Request, error) {
	if len(cont.ToolCalls) == 0 {
		return Request{}, fmt.Errorf("continuation carries no tool calls to answer")
	}

	messages := make([]Message, 0, len(cont.Messages)+len(results)+1)
	messages = append(messages, cont.Messages...)
	messages = append(messages, Message{
		Role:      RoleAssistant,
		ToolCalls: cont.ToolCalls,
	})

	for _, result := range results {
		serialized, err := json.Marshal(result.Result)
		if err != nil {
			return Request{}, fmt.Errorf("serialize result for tool %s: %w", result.ToolName, err)
		}
		messages = append(messages, Message{
			Role:       RoleTool,
			Content:    string(serialized),
			ToolCallID: result.CallID,
		})
	}

	return Request{
		Messages:    messages,
		Model:       cont.Model,
		Temperature: cont.Temperature,
	}, nil
}
