package models

import "time"

// ValidationResult is the outcome of evaluating one rule against one step.
// Identity is the (RuleID, StepID) pair; callers must not rely on ordering.
// Pass == false always implies a non-empty Failures list.
type ValidationResult struct {
	RuleID    string    `json:"rule_id"`
	RuleName  string    `json:"rule_name"`
	RuleType  RuleType  `json:"rule_type"`
	StepID    string    `json:"step_id"`
	Pass      bool      `json:"pass"`
	Failures  []string  `json:"failures"`
	Reasoning string    `json:"reasoning,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewSkippedResult builds the passing result used when a rule is disabled or
// does not apply to the step's action category.
func NewSkippedResult(rule ValidationRule, stepID, reason string) ValidationResult {
	return ValidationResult{
		RuleID:    rule.ID,
		RuleName:  rule.Name,
		RuleType:  rule.Type,
		StepID:    stepID,
		Pass:      true,
		Failures:  []string{},
		Reasoning: reason,
		Timestamp: time.Now().UTC(),
	}
}

// AggregateStatus is the immutable snapshot of one validation run over an
// entire workflow. It is never the source of truth for the workflow's
// lifecycle status; it only feeds the promotion gate and the UI.
type AggregateStatus struct {
	PassCount             int                           `json:"pass_count"`
	FailCount             int                           `json:"fail_count"`
	TotalCount            int                           `json:"total_count"`
	IsValid               bool                          `json:"is_valid"`
	AllResults            []ValidationResult            `json:"all_results"`
	ResultsByRule         map[string][]ValidationResult `json:"results_by_rule"`
	HasStructuredFailures bool                          `json:"has_structured_failures"`
	HasSemanticFailures   bool                          `json:"has_semantic_failures"`
	LastCheckedAt         time.Time                     `json:"last_checked_at"`
	DurationMs            int64                         `json:"duration_ms"`
	Error                 string                        `json:"error,omitempty"`
}

// TransitionResult is the pure output of the promotion gate. It carries no
// ownership over the workflow it was computed for.
type TransitionResult struct {
	Success   bool           `json:"success"`
	NewStatus WorkflowStatus `json:"new_status"`
	Reason    string         `json:"reason,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}
