// Package models defines the core domain models for line build authoring and validation.
package models

import (
	"fmt"
	"time"
)

// WorkflowStatus represents the lifecycle state of a line build.
type WorkflowStatus string

const (
	WorkflowStatusDraft  WorkflowStatus = "draft"  // Editable, not servable
	WorkflowStatusActive WorkflowStatus = "active" // Promoted, served to the line
)

// Workflow represents a line build: an ordered collection of steps plus
// lifecycle metadata. Only Status participates in promotion decisions.
type Workflow struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"    validate:"required,min=3"`
	Status    WorkflowStatus `json:"status"  validate:"required,oneof=draft active"`
	Version   int            `json:"version"`
	Author    string         `json:"author"`
	Steps     []Step         `json:"steps"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Clone returns a copy of the workflow with its own steps slice. Tag bags are
// shared; validation treats steps as read-only.
func (w *Workflow) Clone() *Workflow {
	clone := *w
	clone.Steps = make([]Step, len(w.Steps))
	copy(clone.Steps, w.Steps)

	return &clone
}

// Step is one unit of work in a line build. Attributes beyond the identifier
// live in a loosely-typed tag bag so that rules can address them by dotted
// path without the evaluator knowing the full schema.
type Step struct {
	ID        string         `json:"id"   validate:"required"`
	Tags      map[string]any `json:"tags" validate:"required"`
	DependsOn []string       `json:"depends_on,omitempty"`
}

// Document returns the generic value tree used for dotted-path resolution.
// The step identifier and dependencies are addressable alongside the tags.
func (s Step) Document() map[string]any {
	doc := map[string]any{
		"id":   s.ID,
		"tags": s.Tags,
	}
	if len(s.DependsOn) > 0 {
		deps := make([]any, len(s.DependsOn))
		for i, d := range s.DependsOn {
			deps[i] = d
		}

		doc["depends_on"] = deps
	}

	return doc
}

// Action returns the step's action category, or "" when untagged.
func (s Step) Action() string {
	action, _ := s.Tags["action"].(string)

	return action
}

// TargetName returns the name of the step's target. Targets are stored either
// as a plain string or as an object with a "name" key.
func (s Step) TargetName() string {
	switch target := s.Tags["target"].(type) {
	case string:
		return target
	case map[string]any:
		name, _ := target["name"].(string)

		return name
	default:
		return ""
	}
}

// Equipment returns the step's equipment tag, or "" when none is set.
func (s Step) Equipment() string {
	equipment, _ := s.Tags["equipment"].(string)

	return equipment
}

// DurationText renders the step's duration as "<value> <unit>", or "" when
// the step carries no duration tag.
func (s Step) DurationText() string {
	duration, ok := s.Tags["duration"].(map[string]any)
	if !ok {
		return ""
	}

	unit, _ := duration["unit"].(string)

	switch value := duration["value"].(type) {
	case float64:
		return fmt.Sprintf("%g %s", value, unit)
	case int:
		return fmt.Sprintf("%d %s", value, unit)
	case string:
		return value + " " + unit
	default:
		return ""
	}
}
