// Package main provides the prepline command line interface: an API server
// plus one-shot validate, promote and demote commands for line builds.
package main

import (
	"context"
	"os"
	"time"

	cli "github.com/urfave/cli/v3"

	"github.com/prepline/prepline/pkg/log"
)

const (
	defaultPort               = 9091
	defaultReasoningTimeout   = 30 * time.Second
	defaultSemanticConcurrent = 4
)

func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "database-url",
			Usage:    "Database connection URL for persistence",
			Required: true,
			Sources:  cli.EnvVars("DATABASE_URL"),
		},
		&cli.StringFlag{
			Name:    "rules-url",
			Usage:   "Optional redis URL to load validation rules from (defaults to the database)",
			Sources: cli.EnvVars("RULES_URL"),
		},
		&cli.StringFlag{
			Name:    "event-bus",
			Usage:   "Event bus type (gochannel, kafka)",
			Value:   "gochannel",
			Sources: cli.EnvVars("EVENT_BUS_TYPE"),
		},
		&cli.StringFlag{
			Name:    "reasoning-endpoint",
			Usage:   "Base URL of the reasoning service for semantic rules",
			Sources: cli.EnvVars("REASONING_ENDPOINT"),
		},
		&cli.StringFlag{
			Name:    "reasoning-api-key",
			Usage:   "API key for the reasoning service",
			Sources: cli.EnvVars("REASONING_API_KEY"),
		},
		&cli.DurationFlag{
			Name:    "reasoning-timeout",
			Usage:   "Per-call timeout for the reasoning service",
			Value:   defaultReasoningTimeout,
			Sources: cli.EnvVars("REASONING_TIMEOUT"),
		},
		&cli.IntFlag{
			Name:    "semantic-concurrency",
			Usage:   "Maximum in-flight reasoning service calls per validation run",
			Value:   defaultSemanticConcurrent,
			Sources: cli.EnvVars("SEMANTIC_CONCURRENCY"),
		},
		&cli.BoolFlag{
			Name:    "tracing",
			Usage:   "Export validation run traces over OTLP",
			Sources: cli.EnvVars("TRACING_ENABLED"),
		},
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "Log level (debug, info, warn, error)",
			Value:   "info",
			Sources: cli.EnvVars("LOG_LEVEL"),
		},
	}
}

func main() {
	root := &cli.Command{
		Name:                  "prepline",
		Usage:                 "Manage and validate cooking line builds",
		EnableShellCompletion: true,
		Commands: []*cli.Command{
			APICommand(),
			ValidateCommand(),
			PromoteCommand(),
			DemoteCommand(),
		},
	}

	if err := root.Run(context.Background(), os.Args); err != nil {
		log.WithModule("cli").Error("Command failed", "error", err)
		os.Exit(1)
	}
}
