package rules

import (
	"context"
	"fmt"

	"github.com/prepline/prepline/pkg/models"
	"github.com/prepline/prepline/pkg/persistence"
)

// PersistenceSource adapts the storage layer to the Source interface,
// filtering out disabled rules.
type PersistenceSource struct {
	persistence persistence.Persistence
}

func NewPersistenceSource(p persistence.Persistence) *PersistenceSource {
	return &PersistenceSource{persistence: p}
}

func (s *PersistenceSource) LoadEnabledRules(ctx context.Context) ([]models.ValidationRule, error) {
	all, err := s.persistence.Rules(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load validation rules: %w", err)
	}

	enabled := make([]models.ValidationRule, 0, len(all))
	for _, rule := range all {
		if rule.Enabled {
			enabled = append(enabled, rule)
		}
	}

	return enabled, nil
}
