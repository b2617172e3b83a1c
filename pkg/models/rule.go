package models

import (
	"slices"
	"time"
)

// RuleType tags the two validation rule variants. The tag is immutable once a
// rule is created; evaluators dispatch purely on it.
type RuleType string

const (
	RuleTypeStructured RuleType = "structured" // deterministic field-path condition
	RuleTypeSemantic   RuleType = "semantic"   // delegated to the reasoning service
)

// Operator enumerates the structured condition operators.
type Operator string

const (
	OperatorEquals      Operator = "equals"
	OperatorIn          Operator = "in"
	OperatorNotEmpty    Operator = "notEmpty"
	OperatorGreaterThan Operator = "greaterThan"
	OperatorLessThan    Operator = "lessThan"
)

// RuleCondition is the deterministic condition of a structured rule: one
// dotted field path, one operator, one comparison value.
type RuleCondition struct {
	Field    string   `json:"field"    validate:"required"`
	Operator Operator `json:"operator" validate:"required,oneof=equals in notEmpty greaterThan lessThan"`
	Value    any      `json:"value,omitempty"`
}

// ValidationRule is the tagged union of the two rule variants. Condition is
// set for structured rules; Prompt and Guidance are set for semantic rules.
type ValidationRule struct {
	ID        string   `json:"id"`
	Name      string   `json:"name" validate:"required"`
	Type      RuleType `json:"type" validate:"required,oneof=structured semantic"`
	Enabled   bool     `json:"enabled"`
	AppliesTo []string `json:"applies_to,omitempty"` // empty means every action category

	Condition *RuleCondition `json:"condition,omitempty"`

	Prompt   string `json:"prompt,omitempty"`
	Guidance string `json:"guidance,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AppliesToAction reports whether the rule applies to a step with the given
// action category.
func (r ValidationRule) AppliesToAction(action string) bool {
	if len(r.AppliesTo) == 0 {
		return true
	}

	return slices.Contains(r.AppliesTo, action)
}
