package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/envelope/cmd/app/commands"
	"github.com/allisson/envelope/internal/app"
	"github.com/allisson/envelope/internal/config"
)

func getKeyCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-wrapping-key",
			Usage: "Generate a local wrapping key for development",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "name",
					Aliases: []string{"n"},
					Value:   "default",
					Usage:   "Key name recorded in encrypted data keys",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container := app.NewContainer(config.Load())
				defer func() { _ = container.Shutdown(ctx) }()

				return commands.RunCreateWrappingKey(
					ctx,
					container.KMSService(),
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("name"),
				)
			},
		},
		{
			Name:  "verify-wrapping-key",
			Usage: "Check that a KMS key can wrap and unwrap data keys",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "kms-key-uri",
					Usage: "KMS key URI (defaults to KMS_KEY_URI)",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				keyURI := cmd.String("kms-key-uri")
				if keyURI == "" {
					keyURI = cfg.KMSKeyURI
				}

				return commands.RunVerifyWrappingKey(
					ctx,
					container.KMSService(),
					container.Logger(),
					commands.DefaultIO().Writer,
					keyURI,
				)
			},
		},
	}
}
