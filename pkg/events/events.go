// Package events defines event types and structures for line build lifecycle notifications.
package events

import (
	"time"

	"github.com/prepline/prepline/pkg/models"
)

type EventType string

// Topic carries every lifecycle event.
const Topic = "prepline.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	ValidationCompletedEvent EventType = "validation.completed"
	WorkflowPromotedEvent    EventType = "workflow.promoted"
	WorkflowDemotedEvent     EventType = "workflow.demoted"
	RulesInvalidatedEvent    EventType = "rules.invalidated"
)

type BaseEvent struct {
	ID         string         `json:"id"`
	Type       EventType      `json:"type"`
	Timestamp  time.Time      `json:"timestamp"`
	WorkflowID string         `json:"workflow_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// ValidationCompleted is published after every validation run, whether or
// not it passed.
type ValidationCompleted struct {
	BaseEvent

	IsValid               bool   `json:"is_valid"`
	PassCount             int    `json:"pass_count"`
	FailCount             int    `json:"fail_count"`
	HasStructuredFailures bool   `json:"has_structured_failures"`
	HasSemanticFailures   bool   `json:"has_semantic_failures"`
	DurationMs            int64  `json:"duration_ms"`
	Error                 string `json:"error,omitempty"`
}

func (v ValidationCompleted) GetType() EventType {
	return ValidationCompletedEvent
}

// WorkflowPromoted is published when a line build moves from draft to active.
type WorkflowPromoted struct {
	BaseEvent

	NewStatus models.WorkflowStatus `json:"new_status"`
	Version   int                   `json:"version"`
}

func (w WorkflowPromoted) GetType() EventType {
	return WorkflowPromotedEvent
}

// WorkflowDemoted is published when a line build moves from active back to draft.
type WorkflowDemoted struct {
	BaseEvent

	NewStatus models.WorkflowStatus `json:"new_status"`
}

func (w WorkflowDemoted) GetType() EventType {
	return WorkflowDemotedEvent
}

// RulesInvalidated is published after any rule mutation, once the rule cache
// has been dropped.
type RulesInvalidated struct {
	BaseEvent

	RuleID string `json:"rule_id"`
}

func (r RulesInvalidated) GetType() EventType {
	return RulesInvalidatedEvent
}
