// Package promotion implements the state machine that gates a line build's
// lifecycle status. Two states, draft and active; demotion is always allowed,
// promotion requires a clean validation snapshot. Everything here is a pure
// function over its inputs — no hidden state, no mutation.
package promotion

import (
	"fmt"
	"time"

	"github.com/prepline/prepline/pkg/models"
)

// GetPossibleTransitions returns the statuses reachable from the current one.
func GetPossibleTransitions(current models.WorkflowStatus) []models.WorkflowStatus {
	switch current {
	case models.WorkflowStatusDraft:
		return []models.WorkflowStatus{models.WorkflowStatusActive}
	case models.WorkflowStatusActive:
		return []models.WorkflowStatus{models.WorkflowStatusDraft}
	default:
		return nil
	}
}

// CanTransition reports whether the lifecycle may move from current to
// target given the latest validation snapshot. Demotion (active to draft) is
// always allowed. Promotion (draft to active) is fail-closed: it requires a
// present, non-errored status with neither failure flag set — an
// infrastructure failure blocks promotion exactly like a data failure.
func CanTransition(current, target models.WorkflowStatus, status *models.AggregateStatus) bool {
	if current == models.WorkflowStatusActive && target == models.WorkflowStatusDraft {
		return true
	}

	if current == models.WorkflowStatusDraft && target == models.WorkflowStatusActive {
		return status != nil &&
			status.Error == "" &&
			!status.HasStructuredFailures &&
			!status.HasSemanticFailures
	}

	return false
}

// TransitionTo mirrors CanTransition and supplies a human-readable reason on
// every failure path.
func TransitionTo(current, target models.WorkflowStatus, status *models.AggregateStatus) models.TransitionResult {
	now := time.Now().UTC()

	if current == target {
		return models.TransitionResult{
			Success:   false,
			NewStatus: current,
			Reason:    "Already in target status",
			Timestamp: now,
		}
	}

	if current == models.WorkflowStatusActive && target == models.WorkflowStatusDraft {
		return models.TransitionResult{
			Success:   true,
			NewStatus: models.WorkflowStatusDraft,
			Timestamp: now,
		}
	}

	if current == models.WorkflowStatusDraft && target == models.WorkflowStatusActive {
		if reason, blocked := promotionBlockReason(status); blocked {
			return models.TransitionResult{
				Success:   false,
				NewStatus: current,
				Reason:    reason,
				Timestamp: now,
			}
		}

		return models.TransitionResult{
			Success:   true,
			NewStatus: models.WorkflowStatusActive,
			Timestamp: now,
		}
	}

	return models.TransitionResult{
		Success:   false,
		NewStatus: current,
		Reason:    fmt.Sprintf("Invalid transition from %s to %s", current, target),
		Timestamp: now,
	}
}

// ApplyTransition returns a copy of the workflow with the new status on
// success, or the original workflow unchanged alongside the failing result.
// The input workflow is never mutated.
func ApplyTransition(workflow *models.Workflow, target models.WorkflowStatus, status *models.AggregateStatus) (*models.Workflow, models.TransitionResult) {
	result := TransitionTo(workflow.Status, target, status)
	if !result.Success {
		return workflow, result
	}

	updated := workflow.Clone()
	updated.Status = result.NewStatus
	updated.UpdatedAt = result.Timestamp

	return updated, result
}

func promotionBlockReason(status *models.AggregateStatus) (string, bool) {
	if status == nil {
		return "No validation results. Run validation first.", true
	}

	if status.Error != "" {
		return fmt.Sprintf("Validation run failed: %s. Run validation again.", status.Error), true
	}

	if status.HasStructuredFailures {
		return fmt.Sprintf("%d structured validation failure(s) found", countFailures(status, models.RuleTypeStructured)), true
	}

	if status.HasSemanticFailures {
		return fmt.Sprintf("%d semantic validation failure(s) found", countFailures(status, models.RuleTypeSemantic)), true
	}

	return "", false
}

func countFailures(status *models.AggregateStatus, ruleType models.RuleType) int {
	count := 0

	for _, result := range status.AllResults {
		if !result.Pass && result.RuleType == ruleType {
			count++
		}
	}

	return count
}
