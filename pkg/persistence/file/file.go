// Package file provides file-based persistence for line builds and
// validation rules. Each entity is one JSON document under the root
// directory: <root>/workflows/<id>.json and <root>/rules/<id>.json.
package file

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/prepline/prepline/pkg/models"
)

// Persistence implements the persistence.Persistence interface using the file system.
type Persistence struct {
	root      string
	workflows *WorkflowRepository
	rules     *RuleRepository
}

// NewPersistence creates a new instance of Persistence with the specified root directory.
func NewPersistence(root string, logger *slog.Logger) *Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Persistence{
		root:      cleanRoot,
		workflows: NewWorkflowRepository(cleanRoot),
		rules:     NewRuleRepository(cleanRoot, logger),
	}
}

// Close performs any necessary cleanup. For file-based persistence, there is nothing to clean up.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}

// HealthCheck verifies the root directory exists.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

func (fp *Persistence) Workflows(ctx context.Context) ([]*models.Workflow, error) {
	return fp.workflows.All(ctx)
}

func (fp *Persistence) WorkflowByID(ctx context.Context, id string) (*models.Workflow, error) {
	return fp.workflows.GetByID(ctx, id)
}

func (fp *Persistence) SaveWorkflow(ctx context.Context, workflow *models.Workflow) error {
	return fp.workflows.Save(ctx, workflow)
}

func (fp *Persistence) DeleteWorkflow(ctx context.Context, id string) error {
	return fp.workflows.Delete(ctx, id)
}

func (fp *Persistence) Rules(ctx context.Context) ([]models.ValidationRule, error) {
	return fp.rules.All(ctx)
}

func (fp *Persistence) RuleByID(ctx context.Context, id string) (*models.ValidationRule, error) {
	return fp.rules.GetByID(ctx, id)
}

func (fp *Persistence) SaveRule(ctx context.Context, rule *models.ValidationRule) error {
	return fp.rules.Save(ctx, rule)
}

func (fp *Persistence) DeleteRule(ctx context.Context, id string) error {
	return fp.rules.Delete(ctx, id)
}
