// Package semantic evaluates natural-language rules by delegating each
// (rule, step) pair to an external reasoning service and parsing its
// free-form answer into a pass/fail verdict. Every failure mode of the
// service — timeout, rate limit, connection trouble, unparseable output —
// degrades to a failing ValidationResult; nothing escapes the evaluator.
package semantic

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/prepline/prepline/pkg/models"
	"github.com/prepline/prepline/pkg/reasoning"
)

const maxQuotedResponse = 200

// EvaluateRule evaluates one semantic rule against one step. Disabled and
// non-applicable rules short-circuit without calling the reasoning service.
func EvaluateRule(ctx context.Context, rule models.ValidationRule, step models.Step, workflow *models.Workflow, client reasoning.Client) (result models.ValidationResult) {
	// A misbehaving client implementation must not abort a batch run.
	defer func() {
		if r := recover(); r != nil {
			result = failResult(rule, step.ID,
				fmt.Sprintf("evaluation error: reasoning client panicked: %v", r),
				[]string{fmt.Sprintf("reasoning client error: %v", r)})
		}
	}()

	if !rule.Enabled {
		return models.NewSkippedResult(rule, step.ID, "rule disabled")
	}

	if !rule.AppliesToAction(step.Action()) {
		return models.NewSkippedResult(rule, step.ID, "rule does not apply")
	}

	if client == nil {
		return failResult(rule, step.ID,
			"evaluation error: no reasoning service configured",
			[]string{"reasoning service error: no reasoning service configured"})
	}

	prompt := BuildPrompt(rule, step, workflow)

	text, err := client.Generate(ctx, prompt, rule.Guidance)
	if err != nil {
		return classifyClientError(rule, step.ID, err)
	}

	parsed, ok := parseVerdict(text)
	if !ok {
		return failResult(rule, step.ID,
			fmt.Sprintf("error: could not parse reasoning response: %q", truncate(text)),
			[]string{fmt.Sprintf("unparseable reasoning response error: %q", truncate(text))})
	}

	failures := parsed.Failures
	if !parsed.Pass && len(failures) == 0 {
		// The verdict must explain itself; fall back to its reasoning.
		message := parsed.Reasoning
		if message == "" {
			message = "semantic rule failed without details"
		}

		failures = []string{message}
	}

	if parsed.Pass {
		failures = []string{}
	}

	return models.ValidationResult{
		RuleID:    rule.ID,
		RuleName:  rule.Name,
		RuleType:  rule.Type,
		StepID:    step.ID,
		Pass:      parsed.Pass,
		Failures:  failures,
		Reasoning: parsed.Reasoning,
		Timestamp: time.Now().UTC(),
	}
}

// EvaluateBuild evaluates every semantic rule against every step,
// sequentially. One bad call never aborts the batch; pairs the rule does not
// apply to are still represented by a skip result.
func EvaluateBuild(ctx context.Context, workflow *models.Workflow, rules []models.ValidationRule, client reasoning.Client) []models.ValidationResult {
	results := make([]models.ValidationResult, 0, len(rules)*len(workflow.Steps))

	for _, rule := range rules {
		for _, step := range workflow.Steps {
			results = append(results, EvaluateRule(ctx, rule, step, workflow, client))
		}
	}

	return results
}

// Summary extends the structured summary with the mean reasoning length,
// a cheap signal for how talkative the reasoning service was.
type Summary struct {
	PassCount          int                 `json:"pass_count"`
	FailCount          int                 `json:"fail_count"`
	FailuresByStep     map[string][]string `json:"failures_by_step"`
	AvgReasoningLength float64             `json:"avg_reasoning_length"`
}

// SummarizeResults counts passes and failures, groups failing results by
// step, and averages reasoning length across all results.
func SummarizeResults(results []models.ValidationResult) Summary {
	summary := Summary{FailuresByStep: make(map[string][]string)}

	totalReasoning := 0
	for _, result := range results {
		totalReasoning += len(result.Reasoning)

		if result.Pass {
			summary.PassCount++

			continue
		}

		summary.FailCount++
		summary.FailuresByStep[result.StepID] = append(summary.FailuresByStep[result.StepID], result.Failures...)
	}

	if len(results) > 0 {
		summary.AvgReasoningLength = float64(totalReasoning) / float64(len(results))
	}

	return summary
}

// classifyClientError converts a reasoning client error into a failing
// result. Classification inspects the message: the client contract is that
// timeouts and rate limits are named in it.
func classifyClientError(rule models.ValidationRule, stepID string, err error) models.ValidationResult {
	message := strings.ToLower(err.Error())

	switch {
	case strings.Contains(message, "timeout") || strings.Contains(message, "deadline exceeded"):
		return failResult(rule, stepID,
			"evaluation error: reasoning service timed out",
			[]string{fmt.Sprintf("reasoning service timeout: %v", err)})
	case strings.Contains(message, "rate limit") || strings.Contains(message, "too many requests") || strings.Contains(message, "429"):
		return failResult(rule, stepID,
			"evaluation error: reasoning service rate limited",
			[]string{fmt.Sprintf("reasoning service rate limit: %v", err)})
	default:
		return failResult(rule, stepID,
			fmt.Sprintf("evaluation error: %v", err),
			[]string{fmt.Sprintf("reasoning service error: %v", err)})
	}
}

func failResult(rule models.ValidationRule, stepID, reasoning string, failures []string) models.ValidationResult {
	return models.ValidationResult{
		RuleID:    rule.ID,
		RuleName:  rule.Name,
		RuleType:  rule.Type,
		StepID:    stepID,
		Pass:      false,
		Failures:  failures,
		Reasoning: reasoning,
		Timestamp: time.Now().UTC(),
	}
}

func truncate(text string) string {
	if len(text) <= maxQuotedResponse {
		return text
	}

	return text[:maxQuotedResponse] + "..."
}
