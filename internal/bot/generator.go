package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/forumkit/aibot/internal/ai"
	"github.com/forumkit/aibot/internal/config"
	"github.com/forumkit/aibot/internal/forum"
	"github.com/forumkit/aibot/internal/tools"
)

// fallbackReply is posted when the model produces nothing usable, so the
// thread never shows a triggered bot going silent.
const fallbackReply = "I received your message but I'm having some technical difficulties right now. Please try again in a few minutes!"

// AIClient is the slice of the LLM client the generator needs.
type AIClient interface {
	SendRequest(ctx context.Context, req ai.Request, providerName string) ai.Response
	ContinueWithToolResults(ctx context.Context, cont ai.Continuation, results []ai.ToolResult, providerName string, onChunk func(content string)) (ai.Response, error)
}

// Generator produces a reply for a triggering post: it assembles the prompt,
// runs the model with search tools, executes any tool calls, and resumes the
// conversation with the results.
type Generator struct {
	client        AIClient
	store         forum.Store
	registry      *tools.Registry
	prompts       *PromptBuilder
	contexts      *ContextBuilder
	logger        *slog.Logger
	botCfg        config.Bot
	maxToolRounds int
}

func NewGenerator(client AIClient, store forum.Store, registry *tools.Registry, botCfg config.Bot, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}

	rounds := botCfg.MaxToolRounds
	if rounds < 1 {
		rounds = 1
	}

	return &Generator{
		client:        client,
		store:         store,
		registry:      registry,
		prompts:       NewPromptBuilder(store),
		contexts:      NewContextBuilder(store, botCfg.UserID, botCfg.ReplyHistoryLimit, botCfg.HistoryTokenBudget, logger),
		logger:        logger,
		botCfg:        botCfg,
		maxToolRounds: rounds,
	}
}

// GenerateReply returns the text to post in response to the given post. It
// always returns something postable: when the model fails or comes back
// empty, the fixed fallback reply is used.
func (g *Generator) GenerateReply(ctx context.Context, post *forum.Post) string {
	topic, err := g.store.Topic(post.TopicID)
	if err != nil {
		g.logger.Error("topic lookup failed", "topic_id", post.TopicID, "error", err)
		return fallbackReply
	}

	forumTitle, err := g.store.ForumTitle(topic.ForumID)
	if err != nil {
		forumTitle = ""
	}

	system := g.prompts.BuildSystemPrompt(g.botCfg.Username, g.botCfg.SystemPrompt) +
		g.prompts.ResponseInstructions(g.botCfg.Username, post.AuthorSlug)

	messages := []ai.Message{{Role: ai.RoleSystem, Content: system}}
	messages = append(messages, g.contexts.ConversationMessages(post.TopicID, post.ID)...)
	messages = append(messages, ai.Message{
		Role:    ai.RoleUser,
		Content: g.contexts.CurrentInteractionContext(post, topic, forumTitle),
	})

	req := ai.Request{
		Messages:   messages,
		Tools:      g.registry.List(tools.CategorySearch),
		ToolChoice: ai.ToolChoiceAuto,
	}

	resp := g.client.SendRequest(ctx, req, "")
	if !resp.Success {
		g.logger.Error("initial model request failed", "provider", resp.Provider, "error", resp.Error)
		return fallbackReply
	}

	resp = g.runToolRounds(ctx, req, resp, post)

	if resp.Data == nil || resp.Data.Content == "" {
		g.logger.Warn("model returned empty content", "provider", resp.Provider)
		return fallbackReply
	}
	return resp.Data.Content
}

// runToolRounds executes the model's tool calls and continues the
// conversation with the results, up to the configured round limit. Each
// continuation echoes the provider's call ids back unchanged.
func (g *Generator) runToolRounds(ctx context.Context, req ai.Request, resp ai.Response, post *forum.Post) ai.Response {
	messages := req.Messages

	for round := 0; round < g.maxToolRounds; round++ {
		if resp.Data == nil || len(resp.Data.ToolCalls) == 0 {
			return resp
		}

		calls := resp.Data.ToolCalls
		g.logger.Info("executing tool calls", "round", round+1, "count", len(calls))

		results := make([]ai.ToolResult, 0, len(calls))
		for _, call := range calls {
			results = append(results, ai.ToolResult{
				ToolName: call.Name,
				CallID:   call.CallID,
				Result:   g.executeTool(ctx, call, post),
			})
		}

		cont := ai.Continuation{
			Messages:    messages,
			ToolCalls:   calls,
			Model:       req.Model,
			Temperature: req.Temperature,
		}

		next, err := g.client.ContinueWithToolResults(ctx, cont, results, "", nil)
		if err != nil || !next.Success {
			g.logger.Error("tool continuation failed", "error", err, "response_error", next.Error)
			return next
		}

		// Extend the history for a possible further round.
		assistant := ai.Message{Role: ai.RoleAssistant, ToolCalls: calls}
		messages = append(messages, assistant)
		for _, result := range results {
			messages = append(messages, ai.Message{
				Role:       ai.RoleTool,
				Content:    encodeToolResult(result.Result),
				ToolCallID: result.CallID,
			})
		}

		resp = next
	}

	// Round budget exhausted with calls still pending: surface whatever
	// content came along with them.
	return resp
}

// executeTool runs one tool call, injecting the thread context the search
// tools need to exclude content the model already sees. Failures become a
// payload the model can read, never a dropped turn.
func (g *Generator) executeTool(ctx context.Context, call ai.ToolCallIntent, post *forum.Post) any {
	parameters := make(map[string]any, len(call.Parameters)+2)
	for k, v := range call.Parameters {
		parameters[k] = v
	}
	parameters["exclude_post_id"] = post.ID
	parameters["topic_id"] = post.TopicID

	result, err := g.registry.Execute(ctx, call.Name, parameters)
	if err != nil {
		g.logger.Warn("tool execution failed", "tool", call.Name, "error", err)
		return map[string]any{"error": fmt.Sprintf("tool execution failed: %v", err)}
	}
	return result
}

func encodeToolResult(result any) string {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Sprintf("%v", result)
	}
	return string(data)
}
