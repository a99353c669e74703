package ai

import (
	"fmt"

	"github.com/forumkit/aibot/internal/ai/providers"
)

// validateProviderConfig checks the settings a probe needs before any
// network I/O happens. A missing API key short-circuits with a descriptive
// failure instead of a doomed request.
func validateProviderConfig(providerName string, cfg providers.Config) error {
	if cfg.APIKey == "" {
		return fmt.Errorf("no API key configured for provider %q", providerName)
	}
	if providerName == "gemini" && cfg.Model == "" {
		return fmt.Errorf("gemini requires a configured model")
	}
	return nil
}

// testRequest is the minimal probe sent by TestConnection.
func testRequest() Request {
	return Request{
		Messages: []Message{
			{Role: RoleUser, Content: "Hello"},
		},
	}
}

func testResult(providerName string, err error) TestResult {
	if err != nil {
		return TestResult{
			Success:  false,
			Message:  err.Error(),
			Provider: providerName,
		}
	}
	return TestResult{
		Success:  true,
		Message:  "connection successful",
		Provider: providerName,
	}
}
