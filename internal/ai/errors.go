package ai

import "errors"

var (
	// ErrNotConfigured means the client was built without a usable default
	// provider. Every request-path call short-circuits with it.
	ErrNotConfigured = errors.New("ai client is not configured with a provider")

	// ErrNoMessages is the validation failure for a missing or empty
	// messages array.
	ErrNoMessages = errors.New("request must include a non-empty messages array")
)

func validateRequest(req Request) error {
	if len(req.Messages) == 0 {
		return ErrNoMessages
	}
	return nil
}
