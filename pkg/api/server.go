// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package api

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	sddaemon "github.com/coreos/go-systemd/v22/daemon"

	"github.com/NVIDIA/instance-registry/pkg/artifact"
	"github.com/NVIDIA/instance-registry/pkg/dispatcher"
	"github.com/NVIDIA/instance-registry/pkg/host"
	"github.com/NVIDIA/instance-registry/pkg/journal"
	"github.com/NVIDIA/instance-registry/pkg/logging"
	"github.com/NVIDIA/instance-registry/pkg/registry"
	"github.com/NVIDIA/instance-registry/pkg/server"
	"github.com/NVIDIA/instance-registry/pkg/version"

	// Register the built-in processor factories.
	_ "github.com/NVIDIA/instance-registry/pkg/processor/intent"
	_ "github.com/NVIDIA/instance-registry/pkg/processor/text"
)

const (
	name           = "mnemed"
	versionDefault = "dev"
)

// Daemon environment variables.
const (
	// EnvJournalPath points at the SQLite event journal. Empty disables
	// journaling.
	EnvJournalPath = "MNEMED_JOURNAL"

	// EnvWorkDir is where pulled processor artifacts are unpacked.
	EnvWorkDir = "MNEMED_WORK_DIR"

	// EnvMinProcessorVersion rejects instance specs below this version.
	EnvMinProcessorVersion = "MNEMED_MIN_PROCESSOR_VERSION"

	// EnvArtifactPlainHTTP enables plain HTTP for local OCI registries.
	EnvArtifactPlainHTTP = "MNEMED_ARTIFACT_PLAIN_HTTP"
)

var (
	// overridden during build with ldflags to reflect actual version info
	// e.g., -X "github.com/NVIDIA/instance-registry/pkg/api.buildVersion=1.0.0"
	buildVersion = versionDefault
	commit       = "unknown"
	date         = "unknown"
)

// Serve starts the mnemed daemon and blocks until shutdown.
// It configures logging, wires the registry, host, journal, and dispatcher,
// notifies systemd of readiness, and handles graceful shutdown.
func Serve() error {
	logging.SetDefaultStructuredLogger(name, buildVersion)
	slog.Info("starting",
		"name", name,
		"version", buildVersion,
		"commit", commit,
		"date", date,
	)

	deps, j, err := buildDependencies()
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := j.Close(); closeErr != nil {
			slog.Warn("failed to close journal", "error", closeErr)
		}
	}()

	cfg := server.NewConfig()
	cfg.Name = name
	cfg.Version = buildVersion

	// Tell systemd we are up; a no-op outside a systemd unit.
	if ok, notifyErr := sddaemon.SdNotify(false, sddaemon.SdNotifyReady); notifyErr != nil {
		slog.Warn("sd_notify failed", "error", notifyErr)
	} else if ok {
		slog.Debug("notified systemd of readiness")
	}

	if err := server.Run(cfg, deps); err != nil {
		slog.Error("server exited with error", "error", err)
		return err
	}

	return nil
}

// buildDependencies assembles the instance machinery from the environment.
func buildDependencies() (server.Dependencies, *journal.Journal, error) {
	reg := registry.New()

	var j *journal.Journal
	if path := os.Getenv(EnvJournalPath); path != "" {
		opened, err := journal.Open(path)
		if err != nil {
			return server.Dependencies{}, nil, fmt.Errorf("failed to open journal: %w", err)
		}
		j = opened
		slog.Info("journal enabled", "path", path)
	}

	var minVersion version.Version
	if raw := os.Getenv(EnvMinProcessorVersion); raw != "" {
		parsed, err := version.Parse(raw)
		if err != nil {
			return server.Dependencies{}, nil, fmt.Errorf("invalid %s: %w", EnvMinProcessorVersion, err)
		}
		minVersion = parsed
	}

	workDir := os.Getenv(EnvWorkDir)
	if workDir == "" {
		workDir = os.TempDir()
	}

	plainHTTP, _ := strconv.ParseBool(os.Getenv(EnvArtifactPlainHTTP))

	h := host.New(host.Config{
		Registry:            reg,
		Journal:             j,
		Puller:              artifact.NewPuller(artifact.WithPlainHTTP(plainHTTP)),
		WorkDir:             workDir,
		MinProcessorVersion: minVersion,
	})

	return server.Dependencies{
		Host:       h,
		Registry:   reg,
		Dispatcher: dispatcher.New(reg, j),
		Journal:    j,
	}, j, nil
}
