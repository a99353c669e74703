// Package tools holds the registry of callable tools the bot can offer to
// the model, and the built-in search tools.
package tools

import (
	"context"
	"fmt"

	"github.com/forumkit/aibot/internal/ai"
)

const CategorySearch = "search"

// Executor runs one tool invocation. Parameters arrive as the model issued
// them, merged with any caller-injected context values.
type Executor func(ctx context.Context, parameters map[string]any) (any, error)

// Tool pairs a definition the model sees with the executor that backs it.
type Tool struct {
	Definition ai.ToolDefinition
	Category   string
	Execute    Executor
}

// Registry maps tool names to tools. Dependencies are injected explicitly;
// there is no ambient lookup.
type Registry struct {
	tools map[string]Tool
}

func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

func (r *Registry) Register(tool Tool) {
	r.tools[tool.Definition.Name] = tool
}

// List returns the definitions of every tool in a category, or all tools
// when category is empty.
func (r *Registry) List(category string) []ai.ToolDefinition {
	var defs []ai.ToolDefinition
	for _, tool := range r.tools {
		if category == "" || tool.Category == category {
			defs = append(defs, tool.Definition)
		}
	}
	return defs
}

// Execute invokes a registered tool by name.
func (r *Registry) Execute(ctx context.Context, name string, parameters map[string]any) (any, error) {
	tool, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
	return tool.Execute(ctx, parameters)
}

// Helpers for reading loosely-typed tool parameters.

func stringParam(parameters map[string]any, key string) string {
	if v, ok := parameters[key].(string); ok {
		return v
	}
	return ""
}

func intParam(parameters map[string]any, key string, fallback int) int {
	switch v := parameters[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	default:
		return fallback
	}
}

func int64Param(parameters map[string]any, key string) int64 {
	switch v := parameters[key].(type) {
	case float64:
		return int64(v)
	case int:
		return int64(v)
	case int64:
		return v
	default:
		return 0
	}
}
