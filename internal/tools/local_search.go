package tools

import (
	"context"
	"fmt"

	"github.com/forumkit/aibot/internal/ai"
	"github.com/forumkit/aibot/internal/forum"
)

const (
	localSearchDefaultLimit = 3
	localSearchMaxLimit     = 10
)

// SearchResult is one hit formatted for model consumption.
type SearchResult struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Type    string `json:"type"`
	Date    string `json:"date"`
	Forum   string `json:"forum,omitempty"`
	Content string `json:"content"`
}

// SearchOutput is the payload a search tool hands back to the model.
type SearchOutput struct {
	Query        string         `json:"query"`
	ResultsCount int            `json:"results_count"`
	Results      []SearchResult `json:"results"`
	Error        string         `json:"error,omitempty"`
}

// NewLocalSearch builds the tool that searches forum content through the
// store. exclude_post_id and topic_id are injected by the caller, not the
// model, but stay in the schema so the model understands they exist.
func NewLocalSearch(store forum.Store) Tool {
	return Tool{
		Category: CategorySearch,
		Definition: ai.ToolDefinition{
			Name:        "local_search",
			Description: "Search the forum's own content for relevant information. Use this to find related topics and replies that might help answer the user's question.",
			Parameters: ai.Schema{
				Type: "object",
				Properties: map[string]ai.Property{
					"query": {
						Type:        "string",
						Description: "Search query or keywords to find relevant content",
					},
					"limit": {
						Type:        "integer",
						Description: "Maximum number of results to return (default: 3, max: 10)",
					},
				},
				Required: []string{"query"},
			},
		},
		Execute: func(_ context.Context, parameters map[string]any) (any, error) {
			query := stringParam(parameters, "query")
			if query == "" {
				return SearchOutput{Error: "search query is required"}, nil
			}

			limit := intParam(parameters, "limit", localSearchDefaultLimit)
			if limit < 1 {
				limit = 1
			}
			if limit > localSearchMaxLimit {
				limit = localSearchMaxLimit
			}

			excludePostID := int64Param(parameters, "exclude_post_id")
			topicID := int64Param(parameters, "topic_id")

			posts, err := store.SearchPosts(query, limit, excludePostID, topicID)
			if err != nil {
				return SearchOutput{Query: query, Error: fmt.Sprintf("search failed: %v", err)}, nil
			}

			results := make([]SearchResult, 0, len(posts))
			for _, post := range posts {
				postType := "reply"
				title := ""
				if post.IsTopic {
					postType = "topic"
				}
				if topic, err := store.Topic(post.TopicID); err == nil {
					title = topic.Title
				}

				result := SearchResult{
					ID:      post.ID,
					Title:   title,
					Type:    postType,
					Date:    post.CreatedAt.Format("2006-01-02"),
					Content: post.Content,
				}
				if forumTitle, err := store.ForumTitle(post.ForumID); err == nil {
					result.Forum = forumTitle
				}
				results = append(results, result)
			}

			return SearchOutput{
				Query:        query,
				ResultsCount: len(results),
				Results:      results,
			}, nil
		},
	}
}
