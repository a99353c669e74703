package bot

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/forumkit/aibot/internal/config"
	"github.com/forumkit/aibot/internal/forum"
)

// TriggerService decides whether a new post should get a bot reply: mention
// detection, keyword matching, forum allow-list, and self-post suppression.
type TriggerService struct {
	botUserID     int64
	mentionRe     *regexp.Regexp
	keywordRe     *regexp.Regexp
	allowedForums []int64
}

func NewTriggerService(cfg config.Bot) *TriggerService {
	t := &TriggerService{
		botUserID:     cfg.UserID,
		allowedForums: cfg.AllowedForums,
	}

	if cfg.Username != "" {
		t.mentionRe = regexp.MustCompile(`(?i)@` + regexp.QuoteMeta(cfg.Username))
	}

	if keywords := splitKeywords(cfg.TriggerKeywords); len(keywords) > 0 {
		escaped := make([]string, len(keywords))
		for i, kw := range keywords {
			escaped[i] = regexp.QuoteMeta(kw)
		}
		t.keywordRe = regexp.MustCompile(fmt.Sprintf(`(?i)\b(%s)\b`, strings.Join(escaped, "|")))
	}

	return t
}

// ShouldRespond reports whether the post warrants a reply.
func (t *TriggerService) ShouldRespond(post *forum.Post) bool {
	// Never answer our own posts.
	if t.botUserID != 0 && post.AuthorID == t.botUserID {
		return false
	}

	if !t.forumAllowed(post.ForumID) {
		return false
	}

	if t.mentionRe != nil && t.mentionRe.MatchString(post.Content) {
		return true
	}

	if t.keywordRe != nil && t.keywordRe.MatchString(post.Content) {
		return true
	}

	return false
}

// forumAllowed applies the allow-list; an empty list means every forum.
func (t *TriggerService) forumAllowed(forumID int64) bool {
	if len(t.allowedForums) == 0 {
		return true
	}
	return slices.Contains(t.allowedForums, forumID)
}

// splitKeywords parses the stored comma/whitespace-separated keyword list.
func splitKeywords(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == '\n' || r == ' ' || r == '\t'
	})
	keywords := fields[:0]
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			keywords = append(keywords, f)
		}
	}
	return keywords
}
