package web_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prepline/prepline/pkg/models"
	"github.com/prepline/prepline/pkg/web"
)

// TestAPI_PromotionLifecycle walks the full lifecycle over HTTP: create a
// draft with a rule violation, watch promotion get blocked, fix the build,
// promote, then demote.
func TestAPI_PromotionLifecycle(t *testing.T) {
	app, _ := setupTestApp(t)

	_, ruleBody := doJSON(t, app, http.MethodPost, "/rules/", web.CreateRuleRequest{
		Name:      "equipment required for cooking",
		Type:      models.RuleTypeStructured,
		Enabled:   true,
		AppliesTo: []string{"COOK"},
		Condition: &models.RuleCondition{Field: "tags.equipment", Operator: models.OperatorNotEmpty},
	})

	var rule models.ValidationRule
	require.NoError(t, json.Unmarshal(ruleBody, &rule))

	_, workflowBody := doJSON(t, app, http.MethodPost, "/workflows/", web.CreateWorkflowRequest{
		Name:   "Brunch Line",
		Author: "chef",
		Steps: []models.Step{
			{ID: "step-1", Tags: map[string]any{"action": "COOK", "target": "eggs"}},
		},
	})

	var workflow models.Workflow
	require.NoError(t, json.Unmarshal(workflowBody, &workflow))

	// The cooking step has no equipment, so validation reports the failure.
	resp, statusBody := doJSON(t, app, http.MethodPost, "/workflows/"+workflow.ID+"/validate", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var status models.AggregateStatus
	require.NoError(t, json.Unmarshal(statusBody, &status))
	assert.False(t, status.IsValid)
	assert.True(t, status.HasStructuredFailures)

	// Promotion is blocked for the same reason, still HTTP 200.
	resp, promoteBody := doJSON(t, app, http.MethodPost, "/workflows/"+workflow.ID+"/promote", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var blocked web.TransitionResponse
	require.NoError(t, json.Unmarshal(promoteBody, &blocked))
	require.NotNil(t, blocked.Transition)
	assert.False(t, blocked.Transition.Success)
	assert.Contains(t, blocked.Transition.Reason, "structured validation failure")
	assert.Equal(t, models.WorkflowStatusDraft, blocked.Workflow.Status)

	// Fix the step and try again.
	doJSON(t, app, http.MethodPatch, "/workflows/"+workflow.ID, web.UpdateWorkflowRequest{
		Steps: []models.Step{
			{ID: "step-1", Tags: map[string]any{"action": "COOK", "target": "eggs", "equipment": "flat top"}},
		},
	})

	resp, promoteBody = doJSON(t, app, http.MethodPost, "/workflows/"+workflow.ID+"/promote", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var promoted web.TransitionResponse
	require.NoError(t, json.Unmarshal(promoteBody, &promoted))
	require.NotNil(t, promoted.Transition)
	assert.True(t, promoted.Transition.Success)
	assert.Equal(t, models.WorkflowStatusActive, promoted.Workflow.Status)
	assert.Equal(t, 2, promoted.Workflow.Version)

	// Demotion needs no validation run.
	resp, demoteBody := doJSON(t, app, http.MethodPost, "/workflows/"+workflow.ID+"/demote", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var demoted web.TransitionResponse
	require.NoError(t, json.Unmarshal(demoteBody, &demoted))
	assert.True(t, demoted.Transition.Success)
	assert.Equal(t, models.WorkflowStatusDraft, demoted.Workflow.Status)
}

// TestAPI_RuleChangesAffectNextRun ensures a rule mutation through the API is
// visible to the very next validation run.
func TestAPI_RuleChangesAffectNextRun(t *testing.T) {
	app, _ := setupTestApp(t)

	_, ruleBody := doJSON(t, app, http.MethodPost, "/rules/", web.CreateRuleRequest{
		Name:      "equipment required",
		Type:      models.RuleTypeStructured,
		Enabled:   true,
		Condition: &models.RuleCondition{Field: "tags.equipment", Operator: models.OperatorNotEmpty},
	})

	var rule models.ValidationRule
	require.NoError(t, json.Unmarshal(ruleBody, &rule))

	_, workflowBody := doJSON(t, app, http.MethodPost, "/workflows/", web.CreateWorkflowRequest{
		Name:   "Brunch Line",
		Author: "chef",
		Steps: []models.Step{
			{ID: "step-1", Tags: map[string]any{"action": "PREP", "target": "eggs"}},
		},
	})

	var workflow models.Workflow
	require.NoError(t, json.Unmarshal(workflowBody, &workflow))

	_, statusBody := doJSON(t, app, http.MethodPost, "/workflows/"+workflow.ID+"/validate", nil)

	var status models.AggregateStatus
	require.NoError(t, json.Unmarshal(statusBody, &status))
	assert.False(t, status.IsValid)

	// Disable the rule; the next run sees an empty rule set.
	doJSON(t, app, http.MethodPost, "/rules/"+rule.ID+"/toggle", nil)

	_, statusBody = doJSON(t, app, http.MethodPost, "/workflows/"+workflow.ID+"/validate", nil)
	require.NoError(t, json.Unmarshal(statusBody, &status))
	assert.True(t, status.IsValid)
	assert.Equal(t, 0, status.TotalCount)
}
