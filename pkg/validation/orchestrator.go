// Package validation runs every enabled rule against every step of a line
// build and merges the outcomes into one aggregate status snapshot.
package validation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"

	"github.com/prepline/prepline/pkg/models"
	"github.com/prepline/prepline/pkg/otelhelper"
	"github.com/prepline/prepline/pkg/reasoning"
	"github.com/prepline/prepline/pkg/rules"
	"github.com/prepline/prepline/pkg/validation/semantic"
	"github.com/prepline/prepline/pkg/validation/structured"
)

const defaultSemanticConcurrency = 4

// Orchestrator coordinates one validation run: structured rules evaluate
// in-process, semantic rules fan out to the reasoning service under bounded
// concurrency. The rule source is typically a *rules.CachedSource; the
// orchestrator never refreshes it mid-run.
type Orchestrator struct {
	rules               rules.Source
	client              reasoning.Client
	logger              *slog.Logger
	tracer              trace.Tracer
	semanticConcurrency int
}

type Option func(*Orchestrator)

// WithTracer attaches an OpenTelemetry tracer; runs are wrapped in a span.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *Orchestrator) {
		o.tracer = tracer
	}
}

// WithSemanticConcurrency bounds the number of in-flight reasoning calls.
func WithSemanticConcurrency(limit int) Option {
	return func(o *Orchestrator) {
		if limit > 0 {
			o.semanticConcurrency = limit
		}
	}
}

func NewOrchestrator(source rules.Source, client reasoning.Client, logger *slog.Logger, opts ...Option) *Orchestrator {
	orchestrator := &Orchestrator{
		rules:               source,
		client:              client,
		logger:              logger,
		tracer:              noop.NewTracerProvider().Tracer("validation"),
		semanticConcurrency: defaultSemanticConcurrency,
	}

	for _, opt := range opts {
		opt(orchestrator)
	}

	return orchestrator
}

// Run evaluates every enabled rule against every step of the workflow and
// returns one immutable AggregateStatus snapshot. Individual rule failures
// are reported inside the snapshot; only a failure to even begin the run —
// the rule source being unreachable — surfaces as a run-level Error, and
// that status is fail-closed (IsValid false, no results).
func (o *Orchestrator) Run(ctx context.Context, workflow *models.Workflow) *models.AggregateStatus {
	started := time.Now().UTC()

	ctx, span := otelhelper.StartSpan(ctx, o.tracer, "validation.run",
		attribute.String(otelhelper.WorkflowIDKey, workflow.ID),
		attribute.String(otelhelper.WorkflowNameKey, workflow.Name),
	)
	defer span.End()

	enabledRules, err := o.rules.LoadEnabledRules(ctx)
	if err != nil {
		o.logger.Error("Validation run could not begin", "workflow_id", workflow.ID, "error", err)
		otelhelper.SetError(span, err)

		return &models.AggregateStatus{
			IsValid:       false,
			AllResults:    []models.ValidationResult{},
			ResultsByRule: map[string][]models.ValidationResult{},
			LastCheckedAt: started,
			DurationMs:    time.Since(started).Milliseconds(),
			Error:         fmt.Sprintf("failed to load validation rules: %v", err),
		}
	}

	var structuredRules, semanticRules []models.ValidationRule

	for _, rule := range enabledRules {
		switch rule.Type {
		case models.RuleTypeStructured:
			structuredRules = append(structuredRules, rule)
		case models.RuleTypeSemantic:
			semanticRules = append(semanticRules, rule)
		default:
			o.logger.Warn("Ignoring rule with unknown type", "rule_id", rule.ID, "type", rule.Type)
		}
	}

	span.SetAttributes(
		attribute.Int(otelhelper.StructuredRulesKey, len(structuredRules)),
		attribute.Int(otelhelper.SemanticRulesKey, len(semanticRules)),
	)

	results := structured.EvaluateBuild(workflow, structuredRules)
	results = append(results, o.runSemantic(ctx, workflow, semanticRules)...)

	status := aggregate(results, started)

	span.SetAttributes(
		attribute.Int(otelhelper.PassCountKey, status.PassCount),
		attribute.Int(otelhelper.FailCountKey, status.FailCount),
	)

	o.logger.Info("Validation run finished",
		"workflow_id", workflow.ID,
		"pass_count", status.PassCount,
		"fail_count", status.FailCount,
		"duration_ms", status.DurationMs,
	)

	return status
}

// runSemantic evaluates every (rule, step) pair against the reasoning
// service with bounded concurrency. Result identity is the (rule, step)
// pair, so slots are pre-assigned and no ordering is promised.
func (o *Orchestrator) runSemantic(ctx context.Context, workflow *models.Workflow, semanticRules []models.ValidationRule) []models.ValidationResult {
	if len(semanticRules) == 0 || len(workflow.Steps) == 0 {
		return nil
	}

	results := make([]models.ValidationResult, len(semanticRules)*len(workflow.Steps))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(o.semanticConcurrency)

	for ruleIndex, rule := range semanticRules {
		for stepIndex, step := range workflow.Steps {
			slot := ruleIndex*len(workflow.Steps) + stepIndex

			group.Go(func() error {
				results[slot] = semantic.EvaluateRule(groupCtx, rule, step, workflow, o.client)

				return nil
			})
		}
	}

	// Evaluations never return errors; failures are embedded in results.
	_ = group.Wait()

	return results
}

func aggregate(results []models.ValidationResult, started time.Time) *models.AggregateStatus {
	status := &models.AggregateStatus{
		TotalCount:    len(results),
		AllResults:    results,
		ResultsByRule: make(map[string][]models.ValidationResult),
		LastCheckedAt: started,
		DurationMs:    time.Since(started).Milliseconds(),
	}

	for _, result := range results {
		status.ResultsByRule[result.RuleID] = append(status.ResultsByRule[result.RuleID], result)

		if result.Pass {
			status.PassCount++

			continue
		}

		status.FailCount++

		switch result.RuleType {
		case models.RuleTypeStructured:
			status.HasStructuredFailures = true
		case models.RuleTypeSemantic:
			status.HasSemanticFailures = true
		}
	}

	status.IsValid = status.FailCount == 0

	return status
}
