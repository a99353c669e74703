package tools

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forumkit/aibot/internal/ai"
)

func TestRegistry_RegisterAndExecute(t *testing.T) {
	registry := NewRegistry()
	registry.Register(Tool{
		Definition: ai.ToolDefinition{Name: "echo"},
		Category:   CategorySearch,
		Execute: func(_ context.Context, parameters map[string]any) (any, error) {
			return parameters["value"], nil
		},
	})

	result, err := registry.Execute(context.Background(), "echo", map[string]any{"value": "hi"})
	require.NoError(t, err)
	assert.Equal(t, "hi", result)
}

func TestRegistry_ExecuteUnknownTool(t *testing.T) {
	registry := NewRegistry()

	_, err := registry.Execute(context.Background(), "missing", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
}

func TestRegistry_ListByCategory(t *testing.T) {
	registry := NewRegistry()
	registry.Register(Tool{
		Definition: ai.ToolDefinition{Name: "search_a"},
		Category:   CategorySearch,
		Execute:    func(context.Context, map[string]any) (any, error) { return nil, nil },
	})
	registry.Register(Tool{
		Definition: ai.ToolDefinition{Name: "other"},
		Category:   "admin",
		Execute:    func(context.Context, map[string]any) (any, error) { return nil, nil },
	})

	search := registry.List(CategorySearch)
	require.Len(t, search, 1)
	assert.Equal(t, "search_a", search[0].Name)

	assert.Len(t, registry.List(""), 2)
	assert.Empty(t, registry.List("nope"))
}

func TestRegistry_ExecuteErrorPropagates(t *testing.T) {
	registry := NewRegistry()
	boom := errors.New("boom")
	registry.Register(Tool{
		Definition: ai.ToolDefinition{Name: "fails"},
		Execute: func(context.Context, map[string]any) (any, error) {
			return nil, boom
		},
	})

	_, err := registry.Execute(context.Background(), "fails", nil)
	assert.ErrorIs(t, err, boom)
}

func TestParamHelpers(t *testing.T) {
	parameters := map[string]any{
		"s":   "text",
		"f":   float64(7), // JSON numbers decode as float64
		"i":   3,
		"i64": int64(9),
	}

	assert.Equal(t, "text", stringParam(parameters, "s"))
	assert.Equal(t, "", stringParam(parameters, "f"))
	assert.Equal(t, "", stringParam(parameters, "missing"))

	assert.Equal(t, 7, intParam(parameters, "f", 1))
	assert.Equal(t, 3, intParam(parameters, "i", 1))
	assert.Equal(t, 9, intParam(parameters, "i64", 1))
	assert.Equal(t, 1, intParam(parameters, "missing", 1))

	assert.Equal(t, int64(7), int64Param(parameters, "f"))
	assert.Equal(t, int64(0), int64Param(parameters, "missing"))
}
