// Package reasoning wraps the external natural-language reasoning service
// behind a single Generate capability.
package reasoning

import "context"

// Client is the one capability the semantic evaluator consumes. Generate
// returns the raw text of the service's answer; any failure must surface as
// an error with a descriptive message, since callers classify failures by
// inspecting it.
type Client interface {
	Generate(ctx context.Context, prompt, systemInstruction string) (string, error)
}
