package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/prepline/prepline/pkg/eventbus"
	"github.com/prepline/prepline/pkg/events"
	"github.com/prepline/prepline/pkg/models"
	"github.com/prepline/prepline/pkg/persistence"
	"github.com/prepline/prepline/pkg/rules"
)

// Rule owns the rule CRUD surface. Every mutation invalidates the shared
// rule cache, which is how the validation engine learns that rules changed —
// the engine itself never infers it.
type Rule struct {
	persistence persistence.Persistence
	cache       *rules.CachedSource
	eventBus    eventbus.EventBus
	logger      *slog.Logger
}

func NewRule(
	p persistence.Persistence,
	cache *rules.CachedSource,
	eventBus eventbus.EventBus,
	logger *slog.Logger,
) *Rule {
	return &Rule{
		persistence: p,
		cache:       cache,
		eventBus:    eventBus,
		logger:      logger,
	}
}

// List returns every stored rule, enabled or not.
func (s *Rule) List(ctx context.Context) ([]models.ValidationRule, error) {
	return s.persistence.Rules(ctx)
}

func (s *Rule) Get(ctx context.Context, id string) (*models.ValidationRule, error) {
	return s.persistence.RuleByID(ctx, id)
}

// Create validates the variant payload, assigns an identifier and stores the
// rule.
func (s *Rule) Create(ctx context.Context, rule *models.ValidationRule) (*models.ValidationRule, error) {
	if rule == nil {
		return nil, ErrRuleNil
	}

	if err := checkVariant(rule); err != nil {
		return nil, err
	}

	if rule.ID == "" {
		rule.ID = uuid.New().String()
	}

	rule.CreatedAt = time.Now().UTC()
	rule.UpdatedAt = rule.CreatedAt

	if err := s.persistence.SaveRule(ctx, rule); err != nil {
		return nil, fmt.Errorf("failed to save rule: %w", err)
	}

	s.invalidate(ctx, rule.ID)

	return rule, nil
}

// Update replaces a stored rule. The variant tag is immutable: an update
// that changes it is rejected.
func (s *Rule) Update(ctx context.Context, rule *models.ValidationRule) (*models.ValidationRule, error) {
	if rule == nil {
		return nil, ErrRuleNil
	}

	existing, err := s.persistence.RuleByID(ctx, rule.ID)
	if err != nil {
		return nil, err
	}

	if existing.Type != rule.Type {
		return nil, fmt.Errorf("%w: rule type is immutable", ErrInvalidRuleVariant)
	}

	if err := checkVariant(rule); err != nil {
		return nil, err
	}

	rule.CreatedAt = existing.CreatedAt
	rule.UpdatedAt = time.Now().UTC()

	if err := s.persistence.SaveRule(ctx, rule); err != nil {
		return nil, fmt.Errorf("failed to save rule: %w", err)
	}

	s.invalidate(ctx, rule.ID)

	return rule, nil
}

// Toggle flips a rule's enabled flag.
func (s *Rule) Toggle(ctx context.Context, id string) (*models.ValidationRule, error) {
	rule, err := s.persistence.RuleByID(ctx, id)
	if err != nil {
		return nil, err
	}

	rule.Enabled = !rule.Enabled
	rule.UpdatedAt = time.Now().UTC()

	if err := s.persistence.SaveRule(ctx, rule); err != nil {
		return nil, fmt.Errorf("failed to save rule: %w", err)
	}

	s.invalidate(ctx, id)

	return rule, nil
}

func (s *Rule) Delete(ctx context.Context, id string) error {
	if err := s.persistence.DeleteRule(ctx, id); err != nil {
		return err
	}

	s.invalidate(ctx, id)

	return nil
}

func (s *Rule) invalidate(ctx context.Context, ruleID string) {
	s.cache.Invalidate()

	if s.eventBus == nil {
		return
	}

	event := events.RulesInvalidated{
		BaseEvent: events.BaseEvent{
			ID:        s.eventBus.GenerateID(),
			Type:      events.RulesInvalidatedEvent,
			Timestamp: time.Now().UTC(),
		},
		RuleID: ruleID,
	}

	if err := s.eventBus.Publish(ctx, ruleID, event); err != nil {
		s.logger.Error("Failed to publish event", "event_type", event.GetType(), "error", err)
	}
}

// checkVariant enforces the tagged union shape: structured rules carry a
// condition, semantic rules carry a prompt, and never the other way around.
func checkVariant(rule *models.ValidationRule) error {
	switch rule.Type {
	case models.RuleTypeStructured:
		if rule.Condition == nil {
			return fmt.Errorf("%w: structured rule requires a condition", ErrInvalidRuleVariant)
		}

		if rule.Prompt != "" {
			return fmt.Errorf("%w: structured rule cannot carry a prompt", ErrInvalidRuleVariant)
		}
	case models.RuleTypeSemantic:
		if rule.Prompt == "" {
			return fmt.Errorf("%w: semantic rule requires a prompt", ErrInvalidRuleVariant)
		}

		if rule.Condition != nil {
			return fmt.Errorf("%w: semantic rule cannot carry a condition", ErrInvalidRuleVariant)
		}
	default:
		return fmt.Errorf("%w: unknown rule type %q", ErrInvalidRuleVariant, rule.Type)
	}

	return nil
}
