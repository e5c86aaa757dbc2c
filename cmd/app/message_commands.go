package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/allisson/envelope/cmd/app/commands"
	"github.com/allisson/envelope/internal/app"
	"github.com/allisson/envelope/internal/config"
)

// ioFlags are shared by encrypt and decrypt.
func ioFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "in",
			Aliases: []string{"i"},
			Value:   "-",
			Usage:   "Input file, '-' for stdin",
		},
		&cli.StringFlag{
			Name:    "out",
			Aliases: []string{"o"},
			Value:   "-",
			Usage:   "Output file, '-' for stdout",
		},
		&cli.BoolFlag{
			Name:  "base64",
			Usage: "Read or write the message base64 encoded",
		},
	}
}

// openIO opens the files named by --in and --out. The returned close function is
// always safe to call.
func openIO(cmd *cli.Command) (commands.IOTuple, func(), error) {
	streams := commands.DefaultIO()
	var closers []func() error

	closeAll := func() {
		for _, c := range closers {
			_ = c()
		}
	}

	if in := cmd.String("in"); in != "-" && in != "" {
		f, err := os.Open(in)
		if err != nil {
			return streams, closeAll, fmt.Errorf("failed to open input: %w", err)
		}
		closers = append(closers, f.Close)
		streams.Reader = f
	}

	if out := cmd.String("out"); out != "-" && out != "" {
		f, err := os.OpenFile(out, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
		if err != nil {
			closeAll()
			return streams, func() {}, fmt.Errorf("failed to open output: %w", err)
		}
		closers = append(closers, f.Close)
		streams.Writer = f
	}

	return streams, closeAll, nil
}

func getMessageCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "encrypt",
			Usage: "Encrypt a plaintext into a message",
			Flags: append(ioFlags(),
				&cli.StringFlag{
					Name:    "context",
					Aliases: []string{"c"},
					Usage:   "Encryption context as comma-separated key=value pairs",
				},
				&cli.StringFlag{
					Name:    "suite",
					Aliases: []string{"s"},
					Usage:   "Algorithm suite id or name (e.g. 0x0578)",
				},
				&cli.IntFlag{
					Name:  "frame-length",
					Usage: "Plaintext bytes per frame (default from FRAME_LENGTH)",
				},
				&cli.BoolFlag{
					Name:  "non-framed",
					Usage: "Write the body as a single non-framed block",
				},
			),
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container := app.NewContainer(config.Load())
				defer func() { _ = container.Shutdown(ctx) }()

				useCase, err := container.MessageUseCase()
				if err != nil {
					return err
				}

				streams, closeIO, err := openIO(cmd)
				defer closeIO()
				if err != nil {
					return err
				}

				return commands.RunEncrypt(ctx, useCase, container.Logger(), streams, commands.EncryptOptions{
					EncryptionContext: cmd.String("context"),
					AlgorithmSuite:    cmd.String("suite"),
					FrameLength:       int(cmd.Int("frame-length")),
					NonFramed:         cmd.Bool("non-framed"),
					Base64:            cmd.Bool("base64"),
				})
			},
		},
		{
			Name:  "decrypt",
			Usage: "Decrypt and verify a message",
			Flags: append(ioFlags(),
				&cli.StringFlag{
					Name:    "require-context",
					Aliases: []string{"c"},
					Usage:   "Fail unless the encryption context holds these key=value pairs",
				},
				&cli.IntFlag{
					Name:  "chunk-size",
					Usage: "Bytes fed to the decrypter per read",
				},
			),
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container := app.NewContainer(config.Load())
				defer func() { _ = container.Shutdown(ctx) }()

				useCase, err := container.MessageUseCase()
				if err != nil {
					return err
				}

				streams, closeIO, err := openIO(cmd)
				defer closeIO()
				if err != nil {
					return err
				}

				return commands.RunDecrypt(ctx, useCase, container.Logger(), streams, commands.DecryptOptions{
					Base64:         cmd.Bool("base64"),
					ChunkSize:      int(cmd.Int("chunk-size")),
					RequireContext: cmd.String("require-context"),
				})
			},
		},
	}
}
