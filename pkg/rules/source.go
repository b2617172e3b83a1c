// Package rules supplies validation rule definitions to the evaluation
// engine. Rules are owned by their CRUD surface; this package only reads
// them, through a cache that the owner invalidates explicitly after any
// mutation.
package rules

import (
	"context"
	"sync"

	"github.com/prepline/prepline/pkg/models"
)

// Source supplies the current set of enabled rule definitions.
type Source interface {
	LoadEnabledRules(ctx context.Context) ([]models.ValidationRule, error)
}

// CachedSource wraps a Source with a process-wide, read-mostly cache.
// Population is lazy on first read; the cache never auto-refreshes — the
// rule-owning collaborator calls Invalidate after create/update/delete/toggle.
// Reads are safe under concurrent validation runs.
type CachedSource struct {
	source Source

	mu     sync.RWMutex
	rules  []models.ValidationRule
	loaded bool
}

func NewCachedSource(source Source) *CachedSource {
	return &CachedSource{source: source}
}

// LoadEnabledRules returns the cached rule set, populating it from the
// underlying source on the first call after construction or invalidation.
// A failed load leaves the cache empty so the next call retries.
func (c *CachedSource) LoadEnabledRules(ctx context.Context) ([]models.ValidationRule, error) {
	c.mu.RLock()
	if c.loaded {
		rules := c.rules
		c.mu.RUnlock()

		return rules, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loaded {
		return c.rules, nil
	}

	rules, err := c.source.LoadEnabledRules(ctx)
	if err != nil {
		return nil, err
	}

	c.rules = rules
	c.loaded = true

	return c.rules, nil
}

// Invalidate drops the cached rule set. The next read reloads from the
// underlying source.
func (c *CachedSource) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.rules = nil
	c.loaded = false
}
