package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dukex/flowgate/pkg/augment"
	"github.com/dukex/flowgate/pkg/cmd"
	"github.com/dukex/flowgate/pkg/log"
	"github.com/dukex/flowgate/pkg/otelhelper"
	"github.com/dukex/flowgate/pkg/remote"
	"github.com/joho/godotenv"
	cli "github.com/urfave/cli/v3"
)

const defaultPort = 9091

func main() {
	_ = godotenv.Load()

	logger := log.WithModule("api")

	command := &cli.Command{
		Name:                  "flowgate-api",
		Usage:                 "Analyze workflows and deploy them to a remote workflow server",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence (file:// or postgres://)",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "public-base-url",
				Usage:   "Base URL used in generated trigger URLs instead of the remote server address",
				Sources: cli.EnvVars("PUBLIC_BASE_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus type (gochannel, kafka)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "kafka-brokers",
				Usage:   "Comma separated Kafka brokers",
				Sources: cli.EnvVars("KAFKA_BROKERS"),
			},
			&cli.StringFlag{
				Name:    "redis-url",
				Usage:   "Redis URL for per-workflow locks shared between replicas",
				Sources: cli.EnvVars("REDIS_URL"),
			},
			&cli.StringFlag{
				Name:    "completion-url",
				Usage:   "Base URL of an OpenAI-compatible chat completion API used for summaries",
				Sources: cli.EnvVars("COMPLETION_URL"),
			},
			&cli.StringFlag{
				Name:    "completion-api-key",
				Usage:   "API key for the completion API",
				Sources: cli.EnvVars("COMPLETION_API_KEY"),
			},
			&cli.StringFlag{
				Name:    "completion-model",
				Usage:   "Model name sent to the completion API",
				Value:   augment.DefaultModel,
				Sources: cli.EnvVars("COMPLETION_MODEL"),
			},
			&cli.DurationFlag{
				Name:    "completion-timeout",
				Usage:   "Timeout of a summary request",
				Value:   augment.DefaultTimeout,
				Sources: cli.EnvVars("COMPLETION_TIMEOUT"),
			},
			&cli.DurationFlag{
				Name:    "admin-timeout",
				Usage:   "Timeout of credential and activation calls to the remote server",
				Value:   remote.DefaultAdminTimeout,
				Sources: cli.EnvVars("ADMIN_TIMEOUT"),
			},
			&cli.DurationFlag{
				Name:    "upload-timeout",
				Usage:   "Timeout of workflow create and update calls to the remote server",
				Value:   remote.DefaultUploadTimeout,
				Sources: cli.EnvVars("UPLOAD_TIMEOUT"),
			},
			&cli.BoolFlag{
				Name:    "otel-enabled",
				Usage:   "Export traces over OTLP/HTTP",
				Sources: cli.EnvVars("OTEL_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			logger.InfoContext(ctx, "Initializing flowgate API")

			if command.Bool("otel-enabled") {
				shutdown, err := otelhelper.Setup(ctx, "flowgate-api")
				if err != nil {
					return fmt.Errorf("failed to initialize tracer: %w", err)
				}

				defer func() {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()

					if err := shutdown(shutdownCtx); err != nil {
						logger.ErrorContext(ctx, "Failed to shutdown tracer provider", "error", err)
					}
				}()
			}

			persistence, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
			if err != nil {
				return err
			}

			defer func() {
				err := persistence.Close(ctx)
				if err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			eventBus, err := cmd.NewEventBus(command.String("event-bus"), command.String("kafka-brokers"), "flowgate-api", logger)
			if err != nil {
				return err
			}

			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			workflowLocker, closeLocker, err := cmd.NewLocker(ctx, logger, command.String("redis-url"))
			if err != nil {
				return err
			}

			defer func() {
				if err := closeLocker(); err != nil {
					logger.ErrorContext(ctx, "Failed to close locker", "error", err)
				}
			}()

			api := NewAPI(logger, persistence, eventBus, workflowLocker, Config{
				PublicBaseURL: command.String("public-base-url"),
				Remote: remote.Options{
					AdminTimeout:  command.Duration("admin-timeout"),
					UploadTimeout: command.Duration("upload-timeout"),
				},
				Completion: augment.Options{
					URL:     command.String("completion-url"),
					APIKey:  command.String("completion-api-key"),
					Model:   command.String("completion-model"),
					Timeout: command.Duration("completion-timeout"),
				},
			})

			err = api.Start(command.Int("port"))
			if err != nil {
				logger.ErrorContext(ctx, "Failed to start API server", "error", err)
			}

			return nil
		},
	}

	err := command.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}
