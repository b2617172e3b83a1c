// Package web provides HTTP request and response types for the line build API.
package web

import "github.com/prepline/prepline/pkg/models"

// CreateWorkflowRequest represents the request body for creating a new line build.
type CreateWorkflowRequest struct {
	Name   string        `json:"name"   validate:"required,min=3"`
	Author string        `json:"author" validate:"required"`
	Steps  []models.Step `json:"steps"`
}

// UpdateWorkflowRequest represents the request body for updating an existing
// line build. All fields are optional to support partial updates; status and
// version are never updatable through this surface.
type UpdateWorkflowRequest struct {
	Name   *string       `json:"name,omitempty"   validate:"omitempty,min=3"`
	Author *string       `json:"author,omitempty"`
	Steps  []models.Step `json:"steps,omitempty"`
}

// CreateRuleRequest represents the request body for creating a validation rule.
// Condition and Prompt are the two variant payloads; the service enforces that
// exactly the one matching Type is present.
type CreateRuleRequest struct {
	Name      string                `json:"name"                 validate:"required,min=3"`
	Type      models.RuleType       `json:"type"                 validate:"required,oneof=structured semantic"`
	Enabled   bool                  `json:"enabled"`
	AppliesTo []string              `json:"applies_to,omitempty"`
	Condition *models.RuleCondition `json:"condition,omitempty"`
	Prompt    string                `json:"prompt,omitempty"`
	Guidance  string                `json:"guidance,omitempty"`
}

// UpdateRuleRequest represents the request body for updating a rule. The type
// is immutable and therefore absent here.
type UpdateRuleRequest struct {
	Name      *string               `json:"name,omitempty"       validate:"omitempty,min=3"`
	Enabled   *bool                 `json:"enabled,omitempty"`
	AppliesTo []string              `json:"applies_to,omitempty"`
	Condition *models.RuleCondition `json:"condition,omitempty"`
	Prompt    *string               `json:"prompt,omitempty"`
	Guidance  *string               `json:"guidance,omitempty"`
}

// TransitionResponse is returned by the promote and demote endpoints: the
// workflow as it stands after the attempt, plus the gate's verdict.
type TransitionResponse struct {
	Workflow   *models.Workflow         `json:"workflow"`
	Transition *models.TransitionResult `json:"transition"`
}
