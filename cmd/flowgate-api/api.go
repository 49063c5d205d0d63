// Package main provides the flowgate API server.
package main

import (
	"log/slog"
	"strconv"

	"github.com/dukex/flowgate/pkg/augment"
	"github.com/dukex/flowgate/pkg/deployment"
	"github.com/dukex/flowgate/pkg/eventbus"
	"github.com/dukex/flowgate/pkg/locker"
	"github.com/dukex/flowgate/pkg/metrics"
	"github.com/dukex/flowgate/pkg/persistence"
	"github.com/dukex/flowgate/pkg/remote"
	"github.com/dukex/flowgate/pkg/services"
	"github.com/dukex/flowgate/pkg/web"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
)

type API struct {
	logger        *slog.Logger
	persistence   persistence.Persistence
	eventBus      eventbus.EventBus
	locker        locker.Locker
	remote        remote.Factory
	summarizer    *augment.Summarizer
	metrics       *metrics.Metrics
	publicBaseURL string
	validate      *validator.Validate
}

type Config struct {
	PublicBaseURL string
	Remote        remote.Options
	Completion    augment.Options
}

func NewAPI(
	logger *slog.Logger,
	persistence persistence.Persistence,
	eventBus eventbus.EventBus,
	locker locker.Locker,
	config Config,
) *API {
	m := metrics.New()

	config.Remote.Logger = logger
	config.Remote.Metrics = m
	config.Completion.Logger = logger
	config.Completion.Metrics = m

	return &API{
		logger:        logger,
		persistence:   persistence,
		eventBus:      eventBus,
		locker:        locker,
		remote:        remote.NewFactory(config.Remote),
		summarizer:    augment.NewSummarizer(config.Completion),
		metrics:       m,
		publicBaseURL: config.PublicBaseURL,
		validate:      validator.New(validator.WithRequiredStructEnabled()),
	}
}

// App wires the orchestrator, services and handlers into a fiber app.
func (a *API) App() *fiber.App {
	orchestrator := deployment.NewOrchestrator(deployment.Options{
		Workflows:     a.persistence.WorkflowRepository(),
		Accounts:      a.persistence.AccountRepository(),
		Remote:        a.remote,
		Locker:        a.locker,
		Events:        a.eventBus,
		Summarizer:    a.summarizer,
		PublicBaseURL: a.publicBaseURL,
		Metrics:       a.metrics,
		Logger:        a.logger,
	})

	workflowService := services.NewWorkflow(a.persistence, orchestrator, a.logger)
	accountService := services.NewAccount(a.persistence.AccountRepository(), a.remote, a.logger)

	handlers := web.NewAPIHandlers(workflowService, accountService, a.validate)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())
	app.Get("/metrics", adaptor.HTTPHandler(a.metrics.Handler()))

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("flowgate API")
	})

	web.RegisterRoutes(app, handlers)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	err := app.Listen(":" + strconv.Itoa(port))

	return err
}
