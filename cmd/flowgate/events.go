package main

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dukex/flowgate/pkg/cmd"
	"github.com/dukex/flowgate/pkg/eventbus"
	"github.com/dukex/flowgate/pkg/events"
	"github.com/dukex/flowgate/pkg/log"
	cli "github.com/urfave/cli/v3"
)

func eventsCommand() *cli.Command {
	return &cli.Command{
		Name:  "events",
		Usage: "Print the workflow lifecycle audit trail from the event bus as JSON lines",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus type (kafka, gochannel)",
				Value:   "kafka",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "kafka-brokers",
				Usage:   "Comma separated Kafka brokers",
				Sources: cli.EnvVars("KAFKA_BROKERS"),
			},
			&cli.StringFlag{
				Name:  "group",
				Usage: "Kafka consumer group; a new group starts from the oldest event",
				Value: "flowgate-events",
			},
			&cli.StringFlag{
				Name:  "workflow-id",
				Usage: "Only print events of this workflow",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "warn",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			logger := log.WithModule("events")

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			bus, err := cmd.NewEventBus(
				command.String("event-bus"),
				command.String("kafka-brokers"),
				command.String("group"),
				logger,
			)
			if err != nil {
				return err
			}

			defer func() {
				if err := bus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			err = tailEvents(ctx, bus, command.Root().Writer, command.String("workflow-id"))
			if err != nil {
				return err
			}

			<-ctx.Done()

			return nil
		},
	}
}

// tailEvents writes every lifecycle event to writer, one JSON object per
// line. A non-empty workflowID keeps only that workflow's events.
func tailEvents(ctx context.Context, subscriber eventbus.EventSubscriber, writer io.Writer, workflowID string) error {
	encoder := json.NewEncoder(writer)

	write := func(_ context.Context, event any) error {
		lifecycle, ok := event.(*events.WorkflowLifecycle)
		if !ok {
			return nil
		}

		if workflowID != "" && lifecycle.WorkflowID != workflowID {
			return nil
		}

		return encoder.Encode(lifecycle)
	}

	for _, eventType := range events.AllTypes() {
		err := subscriber.Handle(eventType, write)
		if err != nil {
			return err
		}
	}

	return subscriber.Subscribe(ctx)
}
