// Package main provides the entry point for the enclave PII encryption
// service, an urfave/cli/v3 binary with a "server" subcommand as its
// primary command.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/allisson/enclaved/cmd/enclaved/commands"
)

const version = "1.0.0"

func main() {
	cmd := &cli.Command{
		Name:    "enclaved",
		Usage:   "Enclave-resident PII field encryption service",
		Version: version,
		Commands: []*cli.Command{
			{
				Name:  "server",
				Usage: "Start the HTTP server",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunServer(ctx, version)
				},
			},
			{
				Name:  "version",
				Usage: "Print the server version",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					fmt.Fprintln(cmd.Writer, version)
					return nil
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
