package cmd

import (
	"time"

	"github.com/prepline/prepline/pkg/reasoning"
)

// NewReasoningClient builds the HTTP client for the reasoning service.
// Semantic rules are skipped entirely when no endpoint is configured, so an
// empty endpoint returns nil.
func NewReasoningClient(endpoint, apiKey string, timeout time.Duration) reasoning.Client {
	if endpoint == "" {
		return nil
	}

	return reasoning.NewHTTPClient(endpoint, apiKey, timeout)
}
