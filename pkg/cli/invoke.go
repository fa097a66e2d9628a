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

func invokeCmd() *cli.Command {
	return &cli.Command{
		Name:      "invoke",
		Usage:     "Dispatch an operation against an instance by id",
		ArgsUsage: "<id>",
		Description: `Resolve the id through the daemon's registry and run the named
operation. If the owner has released the instance and it has been
reclaimed, the dispatch fails with NOT_FOUND; a failing operation
returns INVOCATION_ERROR. Both are request-level errors.

# Examples

  mneme invoke 6e5e1c3a-... --operation normalize --arg text="Hello  World"
  mneme invoke 6e5e1c3a-... --operation classify --arg text="hi there"`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "operation",
				Aliases:  []string{"op"},
				Usage:    "operation name to dispatch",
				Required: true,
			},
			&cli.StringSliceFlag{
				Name:  "arg",
				Usage: "operation argument (format: key=value, can be repeated)",
			},
			serverFlag,
			outputFlag,
			formatFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			id, err := requireIDArg(cmd)
			if err != nil {
				return err
			}

			args, err := parseKeyValues(cmd.StringSlice("arg"))
			if err != nil {
				return err
			}

			resp, err := newClient(cmd).Invoke(ctx, id, cmd.String("operation"), args)
			if err != nil {
				return fmt.Errorf("error invoking operation: %w", err)
			}
			return writeOutput(ctx, cmd, resp)
		},
	}
}
