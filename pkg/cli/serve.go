/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/instance-registry/pkg/api"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the mnemed daemon in the foreground",
		Description: `Run the instance registry daemon. Equivalent to invoking the mnemed
binary directly; useful for local development.

Configuration is environment driven (PORT, LOG_LEVEL, MNEMED_JOURNAL,
MNEMED_WORK_DIR, MNEMED_MIN_PROCESSOR_VERSION).`,
		Action: func(_ context.Context, _ *cli.Command) error {
			return api.Serve()
		},
	}
}
