package rules

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prepline/prepline/pkg/models"
)

// countingSource records how many times it was asked for rules.
type countingSource struct {
	mu    sync.Mutex
	loads int
	rules []models.ValidationRule
	err   error
}

func (c *countingSource) LoadEnabledRules(context.Context) ([]models.ValidationRule, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.loads++

	if c.err != nil {
		return nil, c.err
	}

	return c.rules, nil
}

func (c *countingSource) loadCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.loads
}

func TestCachedSource_LazyPopulation(t *testing.T) {
	underlying := &countingSource{rules: []models.ValidationRule{{ID: "r1", Enabled: true}}}
	cached := NewCachedSource(underlying)

	assert.Equal(t, 0, underlying.loadCount(), "construction must not load")

	first, err := cached.LoadEnabledRules(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := cached.LoadEnabledRules(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, underlying.loadCount(), "second read must hit the cache")
}

func TestCachedSource_InvalidateForcesReload(t *testing.T) {
	underlying := &countingSource{rules: []models.ValidationRule{{ID: "r1", Enabled: true}}}
	cached := NewCachedSource(underlying)

	_, err := cached.LoadEnabledRules(context.Background())
	require.NoError(t, err)

	cached.Invalidate()

	underlying.mu.Lock()
	underlying.rules = append(underlying.rules, models.ValidationRule{ID: "r2", Enabled: true})
	underlying.mu.Unlock()

	reloaded, err := cached.LoadEnabledRules(context.Background())
	require.NoError(t, err)
	assert.Len(t, reloaded, 2)
	assert.Equal(t, 2, underlying.loadCount())
}

func TestCachedSource_FailedLoadRetriesNextRead(t *testing.T) {
	underlying := &countingSource{err: errors.New("rule store unreachable")}
	cached := NewCachedSource(underlying)

	_, err := cached.LoadEnabledRules(context.Background())
	require.Error(t, err)

	underlying.mu.Lock()
	underlying.err = nil
	underlying.rules = []models.ValidationRule{{ID: "r1", Enabled: true}}
	underlying.mu.Unlock()

	recovered, err := cached.LoadEnabledRules(context.Background())
	require.NoError(t, err)
	assert.Len(t, recovered, 1)
}

func TestCachedSource_ConcurrentReads(t *testing.T) {
	underlying := &countingSource{rules: []models.ValidationRule{{ID: "r1", Enabled: true}}}
	cached := NewCachedSource(underlying)

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			rules, err := cached.LoadEnabledRules(context.Background())
			assert.NoError(t, err)
			assert.Len(t, rules, 1)
		}()
	}

	wg.Wait()
	assert.Equal(t, 1, underlying.loadCount(), "concurrent first reads must load once")
}
