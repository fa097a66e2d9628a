/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/instance-registry/pkg/client"
	"github.com/NVIDIA/instance-registry/pkg/serializer"
)

// newClient builds a daemon client from the command flags.
func newClient(cmd *cli.Command) *client.Client {
	return client.New(cmd.String("server"))
}

// writeOutput serializes v per the command's --format and --output flags.
func writeOutput(ctx context.Context, cmd *cli.Command, v any) error {
	outFormat := serializer.Format(cmd.String("format"))
	if outFormat.IsUnknown() {
		return fmt.Errorf("unknown output format: %q", outFormat)
	}

	w := serializer.NewFileWriterOrStdout(outFormat, cmd.String("output"))
	defer w.Close()
	return w.Serialize(ctx, v)
}

// requireIDArg returns the id positional argument or an error.
func requireIDArg(cmd *cli.Command) (string, error) {
	id := cmd.Args().First()
	if id == "" {
		return "", fmt.Errorf("instance id argument is required")
	}
	return id, nil
}

// parseKeyValues converts repeated key=value flags into a settings map.
// Values that parse as bool, int, or float are converted; everything else
// stays a string.
func parseKeyValues(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	out := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid key=value pair: %q", pair)
		}
		out[key] = coerceValue(value)
	}
	return out, nil
}

func coerceValue(value string) any {
	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}
	if i, err := strconv.ParseInt(value, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return f
	}
	return value
}
