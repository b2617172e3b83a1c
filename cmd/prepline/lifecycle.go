package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/prepline/prepline/pkg/log"
	"github.com/prepline/prepline/pkg/models"
)

// ValidateCommand runs one validation pass over a line build and prints the
// aggregate status. The exit code reflects the verdict so the command can
// gate CI-style pipelines.
func ValidateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Aliases:   []string{"v"},
		Usage:     "Validate a line build against all enabled rules",
		ArgsUsage: "<workflow-id>",
		Flags:     commonFlags(),
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))
			logger := log.WithModule("validate")

			workflowID := command.Args().First()
			if workflowID == "" {
				return fmt.Errorf("workflow ID argument is required")
			}

			deps, err := buildServices(ctx, command, logger)
			if err != nil {
				return err
			}
			defer deps.close(ctx, logger)

			status, err := deps.promotionService.Validate(ctx, workflowID)
			if err != nil {
				return err
			}

			if err := printJSON(status); err != nil {
				return err
			}

			if !status.IsValid {
				return cli.Exit("validation failed", 1)
			}

			return nil
		},
	}
}

func PromoteCommand() *cli.Command {
	return &cli.Command{
		Name:      "promote",
		Usage:     "Validate a line build and activate it if every rule passes",
		ArgsUsage: "<workflow-id>",
		Flags:     commonFlags(),
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))
			logger := log.WithModule("promote")

			workflowID := command.Args().First()
			if workflowID == "" {
				return fmt.Errorf("workflow ID argument is required")
			}

			deps, err := buildServices(ctx, command, logger)
			if err != nil {
				return err
			}
			defer deps.close(ctx, logger)

			workflow, result, err := deps.promotionService.Promote(ctx, workflowID)
			if err != nil {
				return err
			}

			return reportTransition(workflow, result)
		},
	}
}

func DemoteCommand() *cli.Command {
	return &cli.Command{
		Name:      "demote",
		Usage:     "Move an active line build back to draft",
		ArgsUsage: "<workflow-id>",
		Flags:     commonFlags(),
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))
			logger := log.WithModule("demote")

			workflowID := command.Args().First()
			if workflowID == "" {
				return fmt.Errorf("workflow ID argument is required")
			}

			deps, err := buildServices(ctx, command, logger)
			if err != nil {
				return err
			}
			defer deps.close(ctx, logger)

			workflow, result, err := deps.promotionService.Demote(ctx, workflowID)
			if err != nil {
				return err
			}

			return reportTransition(workflow, result)
		},
	}
}

func reportTransition(workflow *models.Workflow, result *models.TransitionResult) error {
	if err := printJSON(map[string]any{
		"workflow":   workflow,
		"transition": result,
	}); err != nil {
		return err
	}

	if !result.Success {
		return cli.Exit("transition blocked: "+result.Reason, 1)
	}

	return nil
}

func printJSON(value any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	return encoder.Encode(value)
}
