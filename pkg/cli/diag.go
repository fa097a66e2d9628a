/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

func diagCmd() *cli.Command {
	return &cli.Command{
		Name:    "diag",
		Aliases: []string{"diagnostics"},
		Usage:   "Inspect the daemon's registry and event journal",
		Description: `Fetch a diagnostics snapshot for leak triage: how many instances the
host still owns, which registry entries are live versus awaiting
reclamation, and the journal's event history when journaling is
enabled.`,
		Flags: []cli.Flag{
			serverFlag,
			outputFlag,
			formatFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			resp, err := newClient(cmd).Diagnostics(ctx)
			if err != nil {
				return fmt.Errorf("error fetching diagnostics: %w", err)
			}
			return writeOutput(ctx, cmd, resp)
		},
	}
}
