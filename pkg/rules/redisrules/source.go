// Package redisrules loads validation rules from a redis hash, for
// deployments where the rule-management surface lives in another process.
// Each hash field holds one rule document keyed by rule ID.
package redisrules

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	redis "github.com/redis/go-redis/v9"

	"github.com/prepline/prepline/pkg/models"
	"github.com/prepline/prepline/pkg/rules"
)

const defaultHashKey = "prepline:rules"

type Source struct {
	client  redis.UniversalClient
	hashKey string
	logger  *slog.Logger
}

func NewSource(client redis.UniversalClient, hashKey string, logger *slog.Logger) *Source {
	if hashKey == "" {
		hashKey = defaultHashKey
	}

	return &Source{client: client, hashKey: hashKey, logger: logger}
}

// LoadEnabledRules fetches the full rule hash and returns the enabled rules
// that pass schema validation. Malformed documents are skipped with a
// warning, matching the file repository's behavior.
func (s *Source) LoadEnabledRules(ctx context.Context) ([]models.ValidationRule, error) {
	documents, err := s.client.HGetAll(ctx, s.hashKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load rules from redis: %w", err)
	}

	enabled := make([]models.ValidationRule, 0, len(documents))

	for id, document := range documents {
		if err := rules.ValidateDocument([]byte(document)); err != nil {
			s.logger.Warn("Skipping malformed rule document", "rule_id", id, "error", err)

			continue
		}

		var rule models.ValidationRule
		if err := json.Unmarshal([]byte(document), &rule); err != nil {
			s.logger.Warn("Skipping undecodable rule document", "rule_id", id, "error", err)

			continue
		}

		if rule.Enabled {
			enabled = append(enabled, rule)
		}
	}

	return enabled, nil
}
