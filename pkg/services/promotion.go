package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prepline/prepline/pkg/eventbus"
	"github.com/prepline/prepline/pkg/events"
	"github.com/prepline/prepline/pkg/models"
	"github.com/prepline/prepline/pkg/persistence"
	"github.com/prepline/prepline/pkg/promotion"
	"github.com/prepline/prepline/pkg/validation"
)

// Promotion coordinates validation runs and lifecycle transitions. The
// workflow's own status field stays the single durable source of truth: it
// changes only here, through the gate's output, and every change is
// persisted before an event announces it.
type Promotion struct {
	persistence  persistence.Persistence
	orchestrator *validation.Orchestrator
	eventBus     eventbus.EventBus
	logger       *slog.Logger
}

func NewPromotion(
	p persistence.Persistence,
	orchestrator *validation.Orchestrator,
	eventBus eventbus.EventBus,
	logger *slog.Logger,
) *Promotion {
	return &Promotion{
		persistence:  p,
		orchestrator: orchestrator,
		eventBus:     eventBus,
		logger:       logger,
	}
}

// Validate runs a full validation pass over the workflow and publishes a
// validation.completed event. The returned status is a transient snapshot:
// callers display it or feed it to Promote, they never store it.
func (s *Promotion) Validate(ctx context.Context, workflowID string) (*models.AggregateStatus, error) {
	workflow, err := s.persistence.WorkflowByID(ctx, workflowID)
	if err != nil {
		return nil, fmt.Errorf("failed to load workflow %s: %w", workflowID, err)
	}

	status := s.orchestrator.Run(ctx, workflow)

	s.publish(ctx, workflowID, events.ValidationCompleted{
		BaseEvent:             s.baseEvent(events.ValidationCompletedEvent, workflowID),
		IsValid:               status.IsValid,
		PassCount:             status.PassCount,
		FailCount:             status.FailCount,
		HasStructuredFailures: status.HasStructuredFailures,
		HasSemanticFailures:   status.HasSemanticFailures,
		DurationMs:            status.DurationMs,
		Error:                 status.Error,
	})

	return status, nil
}

// Promote validates the workflow and, if the gate allows it, persists the
// draft-to-active transition. A blocked transition is not an error: the
// failing TransitionResult carries the reason for the caller to display.
func (s *Promotion) Promote(ctx context.Context, workflowID string) (*models.Workflow, *models.TransitionResult, error) {
	workflow, err := s.persistence.WorkflowByID(ctx, workflowID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load workflow %s: %w", workflowID, err)
	}

	status, err := s.Validate(ctx, workflowID)
	if err != nil {
		return nil, nil, err
	}

	updated, result := promotion.ApplyTransition(workflow, models.WorkflowStatusActive, status)
	if !result.Success {
		s.logger.Info("Promotion blocked", "workflow_id", workflowID, "reason", result.Reason)

		return workflow, &result, nil
	}

	updated.Version++

	if err := s.persistence.SaveWorkflow(ctx, updated); err != nil {
		return nil, nil, fmt.Errorf("failed to save promoted workflow %s: %w", workflowID, err)
	}

	s.publish(ctx, workflowID, events.WorkflowPromoted{
		BaseEvent: s.baseEvent(events.WorkflowPromotedEvent, workflowID),
		NewStatus: updated.Status,
		Version:   updated.Version,
	})

	s.logger.Info("Workflow promoted", "workflow_id", workflowID, "version", updated.Version)

	return updated, &result, nil
}

// Demote moves an active workflow back to draft. No validation snapshot is
// needed; demotion is always allowed by the gate.
func (s *Promotion) Demote(ctx context.Context, workflowID string) (*models.Workflow, *models.TransitionResult, error) {
	workflow, err := s.persistence.WorkflowByID(ctx, workflowID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load workflow %s: %w", workflowID, err)
	}

	updated, result := promotion.ApplyTransition(workflow, models.WorkflowStatusDraft, nil)
	if !result.Success {
		return workflow, &result, nil
	}

	if err := s.persistence.SaveWorkflow(ctx, updated); err != nil {
		return nil, nil, fmt.Errorf("failed to save demoted workflow %s: %w", workflowID, err)
	}

	s.publish(ctx, workflowID, events.WorkflowDemoted{
		BaseEvent: s.baseEvent(events.WorkflowDemotedEvent, workflowID),
		NewStatus: updated.Status,
	})

	return updated, &result, nil
}

func (s *Promotion) baseEvent(eventType events.EventType, workflowID string) events.BaseEvent {
	var id string
	if s.eventBus != nil {
		id = s.eventBus.GenerateID()
	}

	return events.BaseEvent{
		ID:         id,
		Type:       eventType,
		Timestamp:  time.Now().UTC(),
		WorkflowID: workflowID,
	}
}

// publish is best-effort: the transition already happened and is persisted,
// so a broken event bus only costs the notification.
func (s *Promotion) publish(ctx context.Context, key string, event eventbus.Event) {
	if s.eventBus == nil {
		return
	}

	if err := s.eventBus.Publish(ctx, key, event); err != nil {
		s.logger.Error("Failed to publish event", "event_type", event.GetType(), "error", err)
	}
}
