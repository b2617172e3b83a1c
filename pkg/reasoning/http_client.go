package reasoning

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultRequestTimeout = 30 * time.Second

// HTTPClient talks to a reasoning service over HTTP. One request per
// Generate call, no built-in retry: a failed call is the caller's signal to
// surface a failing result.
type HTTPClient struct {
	client *resty.Client
}

type generateRequest struct {
	Prompt string `json:"prompt"`
	System string `json:"system,omitempty"`
}

type generateResponse struct {
	Text string `json:"text"`
}

// NewHTTPClient creates a reasoning client for the given endpoint. A zero
// timeout selects the default of 30 seconds.
func NewHTTPClient(endpoint, apiKey string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	client := resty.New().
		SetBaseURL(endpoint).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")

	if apiKey != "" {
		client.SetAuthToken(apiKey)
	}

	return &HTTPClient{client: client}
}

// Generate sends one prompt to the reasoning service and returns its raw
// text answer. Timeouts and rate limits are reported with recognizable
// messages so the semantic evaluator can classify them.
func (c *HTTPClient) Generate(ctx context.Context, prompt, systemInstruction string) (string, error) {
	var response generateResponse

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(generateRequest{Prompt: prompt, System: systemInstruction}).
		SetResult(&response).
		Post("/generate")
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("reasoning request timeout: %w", err)
		}

		return "", fmt.Errorf("reasoning request failed: %w", err)
	}

	switch {
	case resp.StatusCode() == http.StatusTooManyRequests:
		return "", fmt.Errorf("reasoning service rate limit exceeded (status %d)", resp.StatusCode())
	case resp.StatusCode() == http.StatusRequestTimeout, resp.StatusCode() == http.StatusGatewayTimeout:
		return "", fmt.Errorf("reasoning service timeout (status %d)", resp.StatusCode())
	case resp.IsError():
		return "", fmt.Errorf("reasoning service error: status %d: %s", resp.StatusCode(), resp.String())
	}

	return response.Text, nil
}
