// Package persistence provides the storage abstraction for line builds and
// validation rules.
package persistence

import (
	"context"

	"github.com/prepline/prepline/pkg/models"
)

type Persistence interface {
	Workflows(ctx context.Context) ([]*models.Workflow, error)
	WorkflowByID(ctx context.Context, id string) (*models.Workflow, error)
	SaveWorkflow(ctx context.Context, workflow *models.Workflow) error
	DeleteWorkflow(ctx context.Context, id string) error

	Rules(ctx context.Context) ([]models.ValidationRule, error)
	RuleByID(ctx context.Context, id string) (*models.ValidationRule, error)
	SaveRule(ctx context.Context, rule *models.ValidationRule) error
	DeleteRule(ctx context.Context, id string) error

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}
