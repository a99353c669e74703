package bot

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/pkoukk/tiktoken-go"

	"github.com/forumkit/aibot/internal/ai"
	"github.com/forumkit/aibot/internal/forum"
)

const historyEncoding = "cl100k_base"

// ContextBuilder turns thread content into conversation messages for the
// model: the topic starter, recent replies, and the triggering post, trimmed
// to a token budget.
type ContextBuilder struct {
	store       forum.Store
	botUserID   int64
	replyLimit  int
	tokenBudget int
	logger      *slog.Logger
	encoder     *tiktoken.Tiktoken
}

func NewContextBuilder(store forum.Store, botUserID int64, replyLimit, tokenBudget int, logger *slog.Logger) *ContextBuilder {
	if logger == nil {
		logger = slog.Default()
	}

	b := &ContextBuilder{
		store:       store,
		botUserID:   botUserID,
		replyLimit:  replyLimit,
		tokenBudget: tokenBudget,
		logger:      logger,
	}

	encoder, err := tiktoken.GetEncoding(historyEncoding)
	if err != nil {
		// Fall back to a character heuristic; trimming stays approximate.
		logger.Warn("token encoder unavailable, using character estimate", "error", err)
	} else {
		b.encoder = encoder
	}

	return b
}

// CurrentInteractionContext formats the triggering post as the final user
// message. The search tool needs the ids, so they travel with the text.
func (b *ContextBuilder) CurrentInteractionContext(post *forum.Post, topic *forum.Topic, forumTitle string) string {
	var sb strings.Builder
	sb.WriteString("--- CURRENT INTERACTION ---\n")
	if forumTitle != "" {
		sb.WriteString(fmt.Sprintf("Forum: %s\n", forumTitle))
	}
	if topic != nil {
		sb.WriteString(fmt.Sprintf("Topic: %s\n", topic.Title))
	}
	sb.WriteString(fmt.Sprintf("User @%s wrote:\n%s\n", post.AuthorSlug, post.Content))
	sb.WriteString("--- END CURRENT INTERACTION ---")
	return sb.String()
}

// ConversationMessages builds the chronological history of the thread: the
// topic starter first, then recent replies oldest-first, with the bot's own
// posts as assistant turns. The triggering post is excluded; it goes into the
// current-interaction message instead.
func (b *ContextBuilder) ConversationMessages(topicID int64, triggeringPostID int64) []ai.Message {
	var messages []ai.Message

	starter, err := b.store.TopicStarter(topicID)
	if err != nil {
		b.logger.Warn("topic starter unavailable", "topic_id", topicID, "error", err)
	} else if starter != nil && starter.ID != triggeringPostID {
		messages = append(messages, b.postMessage(starter))
	}

	excludeIDs := []int64{triggeringPostID}
	if starter != nil {
		excludeIDs = append(excludeIDs, starter.ID)
	}

	replies, err := b.store.TopicReplies(topicID, b.replyLimit, excludeIDs)
	if err != nil {
		b.logger.Warn("topic replies unavailable", "topic_id", topicID, "error", err)
		return b.trimToBudget(messages)
	}

	// Replies arrive newest first; history reads oldest first.
	slices.Reverse(replies)
	for i := range replies {
		messages = append(messages, b.postMessage(&replies[i]))
	}

	return b.trimToBudget(messages)
}

func (b *ContextBuilder) postMessage(post *forum.Post) ai.Message {
	if b.botUserID != 0 && post.AuthorID == b.botUserID {
		return ai.Message{Role: ai.RoleAssistant, Content: post.Content}
	}
	return ai.Message{
		Role:    ai.RoleUser,
		Content: fmt.Sprintf("@%s: %s", post.AuthorSlug, post.Content),
	}
}

// trimToBudget drops the oldest messages until the history fits the token
// budget. The newest context matters most, so trimming walks from the front.
func (b *ContextBuilder) trimToBudget(messages []ai.Message) []ai.Message {
	if b.tokenBudget <= 0 || len(messages) == 0 {
		return messages
	}

	total := 0
	counts := make([]int, len(messages))
	for i, msg := range messages {
		counts[i] = b.countTokens(msg.Content)
		total += counts[i]
	}

	start := 0
	for start < len(messages)-1 && total > b.tokenBudget {
		total -= counts[start]
		start++
	}

	if start > 0 {
		b.logger.Debug("trimmed conversation history",
			"dropped", start,
			"kept", len(messages)-start,
			"budget", b.tokenBudget)
	}

	return messages[start:]
}

func (b *ContextBuilder) countTokens(text string) int {
	if b.encoder != nil {
		return len(b.encoder.Encode(text, nil, nil))
	}
	// Rough heuristic: ~4 characters per token.
	return len(text)/4 + 1
}
