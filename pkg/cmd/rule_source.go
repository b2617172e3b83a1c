// Package cmd provides common initialization functions for command-line applications.
package cmd

import (
	"fmt"
	"log/slog"

	redis "github.com/redis/go-redis/v9"

	"github.com/prepline/prepline/pkg/persistence"
	"github.com/prepline/prepline/pkg/rules"
	"github.com/prepline/prepline/pkg/rules/redisrules"
)

// NewRuleSource builds the cached rule source the validation engine reads
// from. With an empty rulesURL, rules come from the same persistence layer
// that stores them; a redis:// URL reads them from a redis hash instead, for
// deployments where rule management lives in another process.
func NewRuleSource(rulesURL string, p persistence.Persistence, logger *slog.Logger) (*rules.CachedSource, error) {
	if rulesURL == "" {
		return rules.NewCachedSource(rules.NewPersistenceSource(p)), nil
	}

	options, err := redis.ParseURL(rulesURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse rules URL: %w", err)
	}

	client := redis.NewClient(options)

	return rules.NewCachedSource(redisrules.NewSource(client, "", logger)), nil
}
