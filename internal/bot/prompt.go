package bot

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/forumkit/aibot/internal/forum"
)

// PromptBuilder assembles the system prompt: time context, bot identity,
// forum structure, and the operator's base prompt.
type PromptBuilder struct {
	store forum.Store
	now   func() time.Time
}

func NewPromptBuilder(store forum.Store) *PromptBuilder {
	return &PromptBuilder{store: store, now: time.Now}
}

func (b *PromptBuilder) BuildSystemPrompt(botUsername, basePrompt string) string {
	prompt := b.dateTimeInstruction() + b.identityInstruction(botUsername) + b.forumContextInstruction()
	if basePrompt != "" {
		prompt += "\n\n" + basePrompt
	}
	return prompt
}

// ResponseInstructions tells the model how to address users and format the
// reply for direct rendering in the thread.
func (b *PromptBuilder) ResponseInstructions(botUsername, triggeringUserSlug string) string {
	return fmt.Sprintf(
		"\n--- Your Response Instructions ---\n"+
			"1. Understand the user query from the CURRENT INTERACTION section. The user you are replying to is @%s.\n"+
			"2. Use the conversation history above to maintain context and the flow of discussion.\n"+
			"3. You are @%s. Address @%s directly in your reply if appropriate.\n"+
			"4. When mentioning users from the conversation, use the @username-slug format from their message prefixes.\n"+
			"5. Format your entire response using only HTML tags suitable for direct rendering (<p>, <b>, <i>, <a>, <ul>, <ol>, <li>).\n"+
			"6. Do NOT wrap your response in Markdown code fences or any other non-HTML wrappers.",
		triggeringUserSlug, botUsername, triggeringUserSlug,
	)
}

func (b *PromptBuilder) dateTimeInstruction() string {
	now := b.now()
	date := now.Format("2006-01-02")
	return fmt.Sprintf(
		"--- MANDATORY TIME CONTEXT ---\n"+
			"CURRENT DATE & TIME: %s\n"+
			"RULE: You MUST treat %s as the definitive 'today' for determining past/present/future tense.\n"+
			"CONSTRAINT: DO NOT discuss events completed before %s as if they are still upcoming.\n"+
			"KNOWLEDGE CUTOFF: Your internal knowledge cutoff is irrelevant; operate solely based on this date and provided context.\n"+
			"--- END TIME CONTEXT ---",
		now.Format("2006-01-02 15:04:05"), date, date,
	)
}

func (b *PromptBuilder) identityInstruction(botUsername string) string {
	if botUsername == "" {
		return ""
	}
	return fmt.Sprintf(
		"\n--- YOUR IDENTITY ---\n"+
			"YOUR USERNAME: @%s\n"+
			"IMPORTANT: You are @%s in this forum. When users mention @%s, they are talking TO YOU, not about someone else.\n"+
			"SELF-REFERENCE: You may refer to yourself as @%s when appropriate.\n"+
			"--- END IDENTITY ---",
		botUsername, botUsername, botUsername, botUsername,
	)
}

func (b *PromptBuilder) forumContextInstruction() string {
	forums, err := b.store.ForumStructure()
	if err != nil || len(forums) == 0 {
		return ""
	}

	structure, err := json.Marshal(forums)
	if err != nil {
		return ""
	}

	return "\n--- FORUM CONTEXT ---\n" +
		"The following JSON describes the structure of this forum site. Use it to understand the site's organization when formulating responses:\n" +
		string(structure) +
		"\n--- END FORUM CONTEXT ---\n"
}
