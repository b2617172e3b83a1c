package main

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
	cli "github.com/urfave/cli/v3"

	"github.com/prepline/prepline/pkg/log"
	"github.com/prepline/prepline/pkg/services"
	"github.com/prepline/prepline/pkg/web"
)

type API struct {
	logger           *slog.Logger
	workflowService  *services.Workflow
	promotionService *services.Promotion
	ruleService      *services.Rule
	validate         *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	workflowService *services.Workflow,
	promotionService *services.Promotion,
	ruleService *services.Rule,
) *API {
	return &API{
		logger:           logger,
		workflowService:  workflowService,
		promotionService: promotionService,
		ruleService:      ruleService,
		validate:         validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	handlers := web.NewAPIHandlers(a.workflowService, a.promotionService, a.ruleService, a.validate)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Prepline API")
	})

	w := app.Group("/workflows")
	w.Get("/", handlers.GetWorkflows)
	w.Post("/", handlers.CreateWorkflow)
	w.Get("/:id", handlers.GetWorkflow)
	w.Patch("/:id", handlers.UpdateWorkflow)
	w.Delete("/:id", handlers.DeleteWorkflow)
	w.Post("/:id/validate", handlers.ValidateWorkflow)
	w.Post("/:id/promote", handlers.PromoteWorkflow)
	w.Post("/:id/demote", handlers.DemoteWorkflow)

	r := app.Group("/rules")
	r.Get("/", handlers.GetRules)
	r.Post("/", handlers.CreateRule)
	r.Get("/:id", handlers.GetRule)
	r.Patch("/:id", handlers.UpdateRule)
	r.Post("/:id/toggle", handlers.ToggleRule)
	r.Delete("/:id", handlers.DeleteRule)

	app.Get("/health", handlers.HealthCheck)

	return app
}

func (a *API) Start(port int) error {
	return a.App().Listen(":" + strconv.Itoa(port))
}

func APICommand() *cli.Command {
	flags := append(commonFlags(),
		&cli.IntFlag{
			Name:    "port",
			Aliases: []string{"p"},
			Usage:   "Port to run the API server on",
			Value:   defaultPort,
			Sources: cli.EnvVars("PORT"),
		},
	)

	return &cli.Command{
		Name:    "api",
		Aliases: []string{"a"},
		Usage:   "Start the line build management API",
		Flags:   flags,
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			logger := log.WithModule("api")
			logger.InfoContext(ctx, "Initializing Prepline API")

			deps, err := buildServices(ctx, command, logger)
			if err != nil {
				return err
			}
			defer deps.close(ctx, logger)

			api := NewAPI(logger, deps.workflowService, deps.promotionService, deps.ruleService)

			return api.Start(command.Int("port"))
		},
	}
}
