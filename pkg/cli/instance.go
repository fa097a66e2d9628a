/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/instance-registry/pkg/host"
	"github.com/NVIDIA/instance-registry/pkg/serializer"
)

func createCmd() *cli.Command {
	return &cli.Command{
		Name:  "create",
		Usage: "Create a processor instance on the daemon",
		Description: `Create an instance from a spec. The spec can come from a file
(--file, JSON or YAML) or be assembled from flags.

# Examples

From flags:
  mneme create --kind text --set language=tr

From a spec file:
  mneme create --file instance.yaml

With a processor artifact:
  mneme create --kind intent --artifact oci://ghcr.io/nvidia/intent-rules:1.0.0`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "file",
				Usage: "instance spec file (json or yaml)",
			},
			&cli.StringFlag{
				Name:  "kind",
				Usage: "processor kind (e.g., text, intent)",
			},
			&cli.StringFlag{
				Name:  "name",
				Usage: "human-readable instance name",
			},
			&cli.StringFlag{
				Name:  "processor-version",
				Usage: "processor version (e.g., 1.2.0)",
			},
			&cli.StringFlag{
				Name:  "artifact",
				Usage: "processor artifact reference (oci://...)",
			},
			&cli.StringSliceFlag{
				Name:  "set",
				Usage: "processor setting (format: key=value, can be repeated)",
			},
			serverFlag,
			outputFlag,
			formatFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			spec, err := buildSpec(cmd)
			if err != nil {
				return err
			}

			info, err := newClient(cmd).Create(ctx, *spec)
			if err != nil {
				return fmt.Errorf("error creating instance: %w", err)
			}

			return writeOutput(ctx, cmd, info)
		},
	}
}

// buildSpec assembles the instance spec from --file and flag overrides.
func buildSpec(cmd *cli.Command) (*host.Spec, error) {
	spec := &host.Spec{}

	if path := cmd.String("file"); path != "" {
		loaded, err := serializer.FromFile[host.Spec](path)
		if err != nil {
			return nil, fmt.Errorf("error loading spec file: %w", err)
		}
		spec = loaded
	}

	if kind := cmd.String("kind"); kind != "" {
		spec.Kind = kind
	}
	if name := cmd.String("name"); name != "" {
		spec.Name = name
	}
	if v := cmd.String("processor-version"); v != "" {
		spec.Version = v
	}
	if artifact := cmd.String("artifact"); artifact != "" {
		spec.Artifact = artifact
	}

	settings, err := parseKeyValues(cmd.StringSlice("set"))
	if err != nil {
		return nil, err
	}
	if settings != nil {
		if spec.Settings == nil {
			spec.Settings = settings
		} else {
			for k, v := range settings {
				spec.Settings[k] = v
			}
		}
	}

	if spec.Kind == "" {
		return nil, fmt.Errorf("kind is required (--kind or spec file)")
	}
	return spec, nil
}

func listCmd() *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List instances owned by the daemon",
		Flags: []cli.Flag{
			serverFlag,
			outputFlag,
			formatFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			resp, err := newClient(cmd).List(ctx)
			if err != nil {
				return fmt.Errorf("error listing instances: %w", err)
			}
			return writeOutput(ctx, cmd, resp)
		},
	}
}

func getCmd() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Get instance metadata by id",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			serverFlag,
			outputFlag,
			formatFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			id, err := requireIDArg(cmd)
			if err != nil {
				return err
			}

			info, err := newClient(cmd).Get(ctx, id)
			if err != nil {
				return fmt.Errorf("error getting instance: %w", err)
			}
			return writeOutput(ctx, cmd, info)
		},
	}
}

func releaseCmd() *cli.Command {
	return &cli.Command{
		Name:      "release",
		Aliases:   []string{"rm"},
		Usage:     "Release the daemon's owner reference to an instance",
		ArgsUsage: "<id>",
		Description: `Release drops the owning reference. The registry entry disappears on
its own once the instance is reclaimed; stale dispatches against the id
return NOT_FOUND rather than reaching a dead instance.`,
		Flags: []cli.Flag{
			serverFlag,
			outputFlag,
			formatFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			id, err := requireIDArg(cmd)
			if err != nil {
				return err
			}

			resp, err := newClient(cmd).Release(ctx, id)
			if err != nil {
				return fmt.Errorf("error releasing instance: %w", err)
			}
			return writeOutput(ctx, cmd, resp)
		},
	}
}
