package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prepline/prepline/pkg/log"
	"github.com/prepline/prepline/pkg/models"
	"github.com/prepline/prepline/pkg/persistence"
)

func newTestPersistence(t *testing.T) *Persistence {
	t.Helper()

	return NewPersistence(t.TempDir(), log.WithModule("test"))
}

func sampleWorkflow(id, name string) *models.Workflow {
	return &models.Workflow{
		ID:      id,
		Name:    name,
		Status:  models.WorkflowStatusDraft,
		Version: 1,
		Author:  "chef",
		Steps: []models.Step{
			{ID: "step-1", Tags: map[string]any{"action": "PREP", "target": "onions"}},
		},
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
}

func sampleRule(id, name string) *models.ValidationRule {
	return &models.ValidationRule{
		ID:        id,
		Name:      name,
		Type:      models.RuleTypeStructured,
		Enabled:   true,
		Condition: &models.RuleCondition{Field: "tags.action", Operator: models.OperatorNotEmpty},
	}
}

func TestPersistence_WorkflowRoundTrip(t *testing.T) {
	p := newTestPersistence(t)
	ctx := context.Background()

	workflow := sampleWorkflow("wf-1", "Brunch Line")
	require.NoError(t, p.SaveWorkflow(ctx, workflow))

	loaded, err := p.WorkflowByID(ctx, "wf-1")
	require.NoError(t, err)
	assert.Equal(t, workflow.Name, loaded.Name)
	assert.Equal(t, workflow.Status, loaded.Status)
	require.Len(t, loaded.Steps, 1)
	assert.Equal(t, "PREP", loaded.Steps[0].Action())
}

func TestPersistence_WorkflowsSortedByName(t *testing.T) {
	p := newTestPersistence(t)
	ctx := context.Background()

	require.NoError(t, p.SaveWorkflow(ctx, sampleWorkflow("wf-2", "Zucchini Prep")))
	require.NoError(t, p.SaveWorkflow(ctx, sampleWorkflow("wf-1", "Apple Tart")))

	workflows, err := p.Workflows(ctx)
	require.NoError(t, err)
	require.Len(t, workflows, 2)
	assert.Equal(t, "Apple Tart", workflows[0].Name)
	assert.Equal(t, "Zucchini Prep", workflows[1].Name)
}

func TestPersistence_WorkflowsEmptyStore(t *testing.T) {
	p := newTestPersistence(t)

	workflows, err := p.Workflows(context.Background())
	require.NoError(t, err)
	assert.Empty(t, workflows)
}

func TestPersistence_WorkflowNotFound(t *testing.T) {
	p := newTestPersistence(t)

	_, err := p.WorkflowByID(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, persistence.IsWorkflowNotFound(err))
}

func TestPersistence_DeleteWorkflow(t *testing.T) {
	p := newTestPersistence(t)
	ctx := context.Background()

	require.NoError(t, p.SaveWorkflow(ctx, sampleWorkflow("wf-1", "Brunch Line")))
	require.NoError(t, p.DeleteWorkflow(ctx, "wf-1"))

	_, err := p.WorkflowByID(ctx, "wf-1")
	assert.True(t, persistence.IsWorkflowNotFound(err))

	err = p.DeleteWorkflow(ctx, "wf-1")
	assert.True(t, persistence.IsWorkflowNotFound(err))
}

func TestPersistence_RuleRoundTrip(t *testing.T) {
	p := newTestPersistence(t)
	ctx := context.Background()

	rule := sampleRule("rule-1", "action present")
	require.NoError(t, p.SaveRule(ctx, rule))

	loaded, err := p.RuleByID(ctx, "rule-1")
	require.NoError(t, err)
	assert.Equal(t, rule.Name, loaded.Name)
	require.NotNil(t, loaded.Condition)
	assert.Equal(t, models.OperatorNotEmpty, loaded.Condition.Operator)
}

func TestPersistence_SaveRule_RejectsInvalidDocument(t *testing.T) {
	p := newTestPersistence(t)

	// Structured rule without a condition fails the document schema.
	err := p.SaveRule(context.Background(), &models.ValidationRule{
		ID:      "rule-bad",
		Name:    "broken",
		Type:    models.RuleTypeStructured,
		Enabled: true,
	})
	require.Error(t, err)
}

func TestPersistence_Rules_SkipsMalformedFiles(t *testing.T) {
	root := t.TempDir()
	p := NewPersistence(root, log.WithModule("test"))
	ctx := context.Background()

	require.NoError(t, p.SaveRule(ctx, sampleRule("rule-1", "action present")))

	// Drop a document on disk that no longer matches the schema.
	corrupt := []byte(`{"id": "rule-2", "name": "broken", "type": "structured"}`)
	require.NoError(t, os.WriteFile(filepath.Join(root, "rules", "rule-2.json"), corrupt, 0o644))

	ruleSet, err := p.Rules(ctx)
	require.NoError(t, err)
	require.Len(t, ruleSet, 1, "corrupt documents are skipped, not fatal")
	assert.Equal(t, "rule-1", ruleSet[0].ID)
}

func TestPersistence_RuleNotFound(t *testing.T) {
	p := newTestPersistence(t)

	_, err := p.RuleByID(context.Background(), "missing")
	assert.True(t, persistence.IsRuleNotFound(err))

	err = p.DeleteRule(context.Background(), "missing")
	assert.True(t, persistence.IsRuleNotFound(err))
}

func TestPersistence_HealthCheck(t *testing.T) {
	p := newTestPersistence(t)
	assert.NoError(t, p.HealthCheck(context.Background()))

	gone := NewPersistence(filepath.Join(t.TempDir(), "does-not-exist"), log.WithModule("test"))
	assert.Error(t, gone.HealthCheck(context.Background()))
}

func TestNewPersistence_StripsFileScheme(t *testing.T) {
	dir := t.TempDir()
	p := NewPersistence("file://"+dir, log.WithModule("test"))

	assert.NoError(t, p.HealthCheck(context.Background()))
}
