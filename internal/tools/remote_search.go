package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/forumkit/aibot/internal/ai"
)

const remoteSearchTimeout = 15 * time.Second

// NewRemoteSearch builds the tool that queries an external knowledge-base
// endpoint. Transport and format failures come back inside the result
// payload so the model can explain them instead of the turn failing.
func NewRemoteSearch(endpointURL string) Tool {
	client := &http.Client{Timeout: remoteSearchTimeout}

	return Tool{
		Category: CategorySearch,
		Definition: ai.ToolDefinition{
			Name:        "remote_search",
			Description: "Search a remote knowledge base for supplementary information when local forum content is insufficient.",
			Parameters: ai.Schema{
				Type: "object",
				Properties: map[string]ai.Property{
					"query": {
						Type:        "string",
						Description: "Search query or keywords to find relevant content",
					},
					"limit": {
						Type:        "integer",
						Description: "Maximum number of results to return (default: 3)",
					},
				},
				Required: []string{"query"},
			},
		},
		Execute: func(ctx context.Context, parameters map[string]any) (any, error) {
			query := stringParam(parameters, "query")
			if query == "" {
				return SearchOutput{Error: "search query is required"}, nil
			}
			if endpointURL == "" {
				return SearchOutput{Query: query, Error: "remote endpoint URL not configured"}, nil
			}

			limit := intParam(parameters, "limit", localSearchDefaultLimit)

			searchURL, err := url.Parse(endpointURL)
			if err != nil {
				return SearchOutput{Query: query, Error: "invalid remote endpoint URL"}, nil
			}
			values := searchURL.Query()
			values.Set("keyword", query)
			values.Set("limit", strconv.Itoa(limit))
			searchURL.RawQuery = values.Encode()

			req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL.String(), nil)
			if err != nil {
				return SearchOutput{Query: query, Error: fmt.Sprintf("remote request failed: %v", err)}, nil
			}

			resp, err := client.Do(req)
			if err != nil {
				return SearchOutput{Query: query, Error: fmt.Sprintf("remote request failed: %v", err)}, nil
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				return SearchOutput{Query: query, Error: fmt.Sprintf("remote server returned status %d", resp.StatusCode)}, nil
			}

			body, err := io.ReadAll(resp.Body)
			if err != nil {
				return SearchOutput{Query: query, Error: fmt.Sprintf("read remote response: %v", err)}, nil
			}

			var payload struct {
				Results []SearchResult `json:"results"`
			}
			if err := json.Unmarshal(body, &payload); err != nil {
				return SearchOutput{Query: query, Error: "invalid response format from remote server"}, nil
			}

			return SearchOutput{
				Query:        query,
				ResultsCount: len(payload.Results),
				Results:      payload.Results,
			}, nil
		},
	}
}
