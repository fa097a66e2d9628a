/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/instance-registry/pkg/logging"
)

const (
	name           = "mneme"
	versionDefault = "dev"
)

var (
	// overridden during build with ldflags
	version = versionDefault
	commit  = "unknown"
	date    = "unknown"
)

var (
	serverFlag = &cli.StringFlag{
		Name:    "server",
		Usage:   "mnemed daemon address",
		Sources: cli.EnvVars("MNEME_SERVER"),
		Value:   "http://localhost:8080",
	}

	outputFlag = &cli.StringFlag{
		Name:  "output",
		Usage: "output file path (default: stdout)",
	}

	formatFlag = &cli.StringFlag{
		Name:  "format",
		Usage: "output format (json, yaml, table)",
		Value: "json",
	}
)

// New builds the root command with all subcommands attached.
func New() *cli.Command {
	return &cli.Command{
		Name:    name,
		Usage:   "Weak-referencing instance registry CLI",
		Version: version,
		Description: fmt.Sprintf(`mneme - instance registry CLI

Version: %s
Commit:  %s
Built:   %s

Manage processor instances hosted by a mnemed daemon: create instances,
dispatch operations against them by id, release them, and inspect the
registry for leak triage.`, version, commit, date),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "log level (debug, info, warn, error)",
				Sources: cli.EnvVars("LOG_LEVEL"),
				Value:   "warn",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			logging.SetDefaultStructuredLoggerWithLevel(name, version, cmd.String("log-level"))
			slog.Debug("starting",
				"name", name,
				"version", version,
				"commit", commit,
				"date", date,
			)
			return ctx, nil
		},
		Commands: []*cli.Command{
			serveCmd(),
			createCmd(),
			listCmd(),
			getCmd(),
			invokeCmd(),
			releaseCmd(),
			diagCmd(),
		},
	}
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := New().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
