// Package main provides the flowgate command line tool.
package main

import (
	"context"
	"fmt"
	"os"

	cli "github.com/urfave/cli/v3"
)

func newCommand() *cli.Command {
	return &cli.Command{
		Name:                  "flowgate",
		Usage:                 "Inspect workflow graphs and their lifecycle events",
		EnableShellCompletion: true,
		Commands: []*cli.Command{
			analyzeCommand(),
			eventsCommand(),
		},
	}
}

func main() {
	err := newCommand().Run(context.Background(), os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
