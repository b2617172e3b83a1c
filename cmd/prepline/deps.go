package main

import (
	"context"
	"log/slog"

	cli "github.com/urfave/cli/v3"

	"github.com/prepline/prepline/pkg/cmd"
	"github.com/prepline/prepline/pkg/eventbus"
	"github.com/prepline/prepline/pkg/otelhelper"
	"github.com/prepline/prepline/pkg/persistence"
	"github.com/prepline/prepline/pkg/services"
	"github.com/prepline/prepline/pkg/validation"
)

// deps is the shared dependency graph every subcommand builds: persistence,
// the event bus, the cached rule source, the orchestrator, and the services
// on top of them.
type deps struct {
	persistence      persistence.Persistence
	eventBus         eventbus.EventBus
	workflowService  *services.Workflow
	promotionService *services.Promotion
	ruleService      *services.Rule
}

func buildServices(ctx context.Context, command *cli.Command, logger *slog.Logger) (*deps, error) {
	p := cmd.NewPersistence(command.String("database-url"), logger)

	ruleSource, err := cmd.NewRuleSource(command.String("rules-url"), p, logger)
	if err != nil {
		return nil, err
	}

	eventBus := cmd.NewEventBus(command.String("event-bus"), logger)

	client := cmd.NewReasoningClient(
		command.String("reasoning-endpoint"),
		command.String("reasoning-api-key"),
		command.Duration("reasoning-timeout"),
	)

	options := []validation.Option{
		validation.WithSemanticConcurrency(command.Int("semantic-concurrency")),
	}

	if command.Bool("tracing") {
		tracer, err := otelhelper.NewTracer(ctx, "prepline")
		if err != nil {
			return nil, err
		}

		options = append(options, validation.WithTracer(tracer))
	}

	orchestrator := validation.NewOrchestrator(ruleSource, client, logger, options...)

	return &deps{
		persistence:      p,
		eventBus:         eventBus,
		workflowService:  services.NewWorkflow(p),
		promotionService: services.NewPromotion(p, orchestrator, eventBus, logger),
		ruleService:      services.NewRule(p, ruleSource, eventBus, logger),
	}, nil
}

func (d *deps) close(ctx context.Context, logger *slog.Logger) {
	if err := d.eventBus.Close(); err != nil {
		logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
	}

	if err := d.persistence.Close(ctx); err != nil {
		logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
	}
}
