package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dukex/flowgate/pkg/analysis"
	"github.com/dukex/flowgate/pkg/augment"
	"github.com/dukex/flowgate/pkg/log"
	"github.com/dukex/flowgate/pkg/models"
	"github.com/dukex/flowgate/pkg/services"
	cli "github.com/urfave/cli/v3"
)

// Report is the offline analysis of one graph document.
type Report struct {
	Name                   string                         `json:"name"`
	Triggers               []models.TriggerDescriptor     `json:"triggers"`
	CredentialRequirements []models.CredentialRequirement `json:"credential_requirements"`
	Summary                models.Summary                 `json:"summary"`
}

func analyzeCommand() *cli.Command {
	return &cli.Command{
		Name:  "analyze",
		Usage: "Classify triggers and list credential requirements of a workflow graph",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "file",
				Aliases:  []string{"f"},
				Usage:    "Path to the workflow graph JSON document",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "base-url",
				Usage:   "Base URL of the remote server used in trigger URLs",
				Sources: cli.EnvVars("PUBLIC_BASE_URL"),
			},
			&cli.StringFlag{
				Name:  "remote-workflow-id",
				Usage: "Build trigger URLs as if deployed under this remote id",
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

			document, err := os.ReadFile(command.String("file"))
			if err != nil {
				return fmt.Errorf("failed to read graph: %w", err)
			}

			report, err := analyzeDocument(document, command.String("base-url"), command.String("remote-workflow-id"), time.Now().UTC())
			if err != nil {
				return err
			}

			log.WithModule("cli").DebugContext(ctx, "graph analyzed",
				"triggers", len(report.Triggers),
				"credential_requirements", len(report.CredentialRequirements),
			)

			encoder := json.NewEncoder(command.Root().Writer)
			encoder.SetIndent("", "  ")

			return encoder.Encode(report)
		},
	}
}

func analyzeDocument(document []byte, baseURL, remoteWorkflowID string, now time.Time) (Report, error) {
	graph, err := services.ParseGraph(document)
	if err != nil {
		return Report{}, err
	}

	result := analysis.AnalyzeAt(graph, now)
	triggers := analysis.DecorateTriggers(baseURL, remoteWorkflowID, graph, result.Triggers)

	return Report{
		Name:                   graph.Name,
		Triggers:               triggers,
		CredentialRequirements: result.Credentials,
		Summary:                augment.Fallback(graph, triggers),
	}, nil
}
