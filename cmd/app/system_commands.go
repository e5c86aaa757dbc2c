package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/envelope/cmd/app/commands"
	"github.com/allisson/envelope/internal/app"
	"github.com/allisson/envelope/internal/config"
)

func getSystemCommands(version string) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "server",
			Usage: "Start the HTTP server",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunServer(ctx, version)
			},
		},
		{
			Name:  "suites",
			Usage: "List the algorithm suites and what the commitment policy allows",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container := app.NewContainer(config.Load())
				defer func() { _ = container.Shutdown(ctx) }()

				useCaseConfig, err := container.UseCaseConfig()
				if err != nil {
					return err
				}

				defaultSuite := useCaseConfig.CommitmentPolicy.DefaultSuite()
				if useCaseConfig.DefaultSuite != nil {
					defaultSuite = *useCaseConfig.DefaultSuite
				}

				return commands.RunListSuites(
					commands.DefaultIO().Writer,
					useCaseConfig.CommitmentPolicy,
					defaultSuite,
					cmd.String("format"),
				)
			},
		},
	}
}
