// Package structured evaluates deterministic field-path rules against line
// build steps. Evaluation is pure and synchronous: no I/O, no shared state,
// and no error returns — every outcome, including a malformed rule
// definition, is expressed as a ValidationResult.
package structured

import (
	"fmt"
	"time"

	"github.com/prepline/prepline/pkg/models"
)

// EvaluateRule evaluates one structured rule against one step. Disabled and
// non-applicable rules short-circuit to a passing skip result without
// touching the step's fields.
func EvaluateRule(rule models.ValidationRule, step models.Step, _ *models.Workflow) models.ValidationResult {
	if !rule.Enabled {
		return models.NewSkippedResult(rule, step.ID, "rule disabled")
	}

	if !rule.AppliesToAction(step.Action()) {
		return models.NewSkippedResult(rule, step.ID, "rule does not apply")
	}

	if rule.Condition == nil {
		return failResult(rule, step.ID, "rule error: structured rule has no condition")
	}

	condition := *rule.Condition
	value, present := Resolve(step.Document(), condition.Field)

	switch condition.Operator {
	case models.OperatorEquals:
		return evaluateEquals(rule, step.ID, condition, value, present)
	case models.OperatorIn:
		return evaluateIn(rule, step.ID, condition, value)
	case models.OperatorNotEmpty:
		return evaluateNotEmpty(rule, step.ID, condition, value, present)
	case models.OperatorGreaterThan, models.OperatorLessThan:
		return evaluateComparison(rule, step.ID, condition, value, present)
	default:
		return failResult(rule, step.ID,
			fmt.Sprintf("rule error: unknown operator %q", condition.Operator))
	}
}

// EvaluateBuild evaluates every structured rule against every step of the
// workflow. Output is rules-major, steps-minor, but identity is the
// (RuleID, StepID) pair — callers must not rely on order.
func EvaluateBuild(workflow *models.Workflow, rules []models.ValidationRule) []models.ValidationResult {
	results := make([]models.ValidationResult, 0, len(rules)*len(workflow.Steps))

	for _, rule := range rules {
		for _, step := range workflow.Steps {
			results = append(results, EvaluateRule(rule, step, workflow))
		}
	}

	return results
}

// Summary groups the failing results of one evaluation pass by step.
type Summary struct {
	PassCount      int                 `json:"pass_count"`
	FailCount      int                 `json:"fail_count"`
	FailuresByStep map[string][]string `json:"failures_by_step"`
}

// SummarizeResults counts passes and failures and groups only the failing
// results by step identifier.
func SummarizeResults(results []models.ValidationResult) Summary {
	summary := Summary{FailuresByStep: make(map[string][]string)}

	for _, result := range results {
		if result.Pass {
			summary.PassCount++

			continue
		}

		summary.FailCount++
		summary.FailuresByStep[result.StepID] = append(summary.FailuresByStep[result.StepID], result.Failures...)
	}

	return summary
}

func evaluateEquals(rule models.ValidationRule, stepID string, condition models.RuleCondition, value any, present bool) models.ValidationResult {
	if present && primitiveEqual(value, condition.Value) {
		return passResult(rule, stepID)
	}

	actual := "<missing>"
	if present {
		actual = fmt.Sprintf("%v", value)
	}

	return failResult(rule, stepID,
		fmt.Sprintf("%s: expected %v, got %s", condition.Field, condition.Value, actual))
}

func evaluateIn(rule models.ValidationRule, stepID string, condition models.RuleCondition, value any) models.ValidationResult {
	allowed, ok := condition.Value.([]any)
	if !ok {
		return failResult(rule, stepID,
			fmt.Sprintf("rule error: %q requires an array value, got %T", models.OperatorIn, condition.Value))
	}

	for _, candidate := range allowed {
		if primitiveEqual(value, candidate) {
			return passResult(rule, stepID)
		}
	}

	return failResult(rule, stepID,
		fmt.Sprintf("%s: %v is not one of %v", condition.Field, value, allowed))
}

func evaluateNotEmpty(rule models.ValidationRule, stepID string, condition models.RuleCondition, value any, present bool) models.ValidationResult {
	if !present || isEmpty(value) {
		return failResult(rule, stepID,
			fmt.Sprintf("%s: must not be empty", condition.Field))
	}

	return passResult(rule, stepID)
}

func evaluateComparison(rule models.ValidationRule, stepID string, condition models.RuleCondition, value any, present bool) models.ValidationResult {
	actual, ok := toNumber(value)
	if !present || !ok {
		return failResult(rule, stepID,
			fmt.Sprintf("%s: must be a number, got %v", condition.Field, value))
	}

	threshold, ok := toNumber(condition.Value)
	if !ok {
		return failResult(rule, stepID,
			fmt.Sprintf("rule error: %q requires a numeric value, got %T", condition.Operator, condition.Value))
	}

	passed := actual > threshold
	if condition.Operator == models.OperatorLessThan {
		passed = actual < threshold
	}

	if !passed {
		return failResult(rule, stepID,
			fmt.Sprintf("%s: %v is not %s %v", condition.Field, actual, condition.Operator, threshold))
	}

	return passResult(rule, stepID)
}

func passResult(rule models.ValidationRule, stepID string) models.ValidationResult {
	return models.ValidationResult{
		RuleID:    rule.ID,
		RuleName:  rule.Name,
		RuleType:  rule.Type,
		StepID:    stepID,
		Pass:      true,
		Failures:  []string{},
		Timestamp: time.Now().UTC(),
	}
}

func failResult(rule models.ValidationRule, stepID string, failures ...string) models.ValidationResult {
	return models.ValidationResult{
		RuleID:    rule.ID,
		RuleName:  rule.Name,
		RuleType:  rule.Type,
		StepID:    stepID,
		Pass:      false,
		Failures:  failures,
		Timestamp: time.Now().UTC(),
	}
}

// primitiveEqual compares scalar values only. Numbers compare across int and
// float representations; composite values never compare equal.
func primitiveEqual(a, b any) bool {
	if na, ok := toNumber(a); ok {
		nb, ok := toNumber(b)

		return ok && na == nb
	}

	switch va := a.(type) {
	case string:
		vb, ok := b.(string)

		return ok && va == vb
	case bool:
		vb, ok := b.(bool)

		return ok && va == vb
	case nil:
		return b == nil
	default:
		return false
	}
}

// isEmpty reports whether a resolved value counts as empty for notEmpty.
// Zero and false are values, not emptiness.
func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case []any:
		return len(v) == 0
	case []string:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	default:
		return false
	}
}

func toNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}
