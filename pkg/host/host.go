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

package host

import (
	"context"
	"log/slog"
	"path/filepath"
	"sort"
	"sync"

	"github.com/google/uuid"

	apperrors "github.com/NVIDIA/instance-registry/pkg/errors"
	"github.com/NVIDIA/instance-registry/pkg/instance"
	"github.com/NVIDIA/instance-registry/pkg/journal"
	"github.com/NVIDIA/instance-registry/pkg/registry"
	"github.com/NVIDIA/instance-registry/pkg/version"
)

// ArtifactPuller fetches a processor bundle to a local directory.
// Implemented by pkg/artifact.
type ArtifactPuller interface {
	Pull(ctx context.Context, ref, destDir string) error
}

// Spec describes the instance to create.
type Spec struct {
	Kind     string         `json:"kind" yaml:"kind"`
	Name     string         `json:"name,omitempty" yaml:"name,omitempty"`
	Version  string         `json:"version,omitempty" yaml:"version,omitempty"`
	Artifact string         `json:"artifact,omitempty" yaml:"artifact,omitempty"`
	Settings map[string]any `json:"settings,omitempty" yaml:"settings,omitempty"`
}

// Config holds host configuration.
type Config struct {
	// Registry receives a non-owning reference for every created instance.
	Registry *registry.Registry

	// Journal records lifecycle events. May be nil.
	Journal *journal.Journal

	// Puller fetches processor artifacts. May be nil when artifact
	// references are not in use.
	Puller ArtifactPuller

	// WorkDir is where pulled artifacts are unpacked.
	WorkDir string

	// MinProcessorVersion rejects instance specs below this version.
	// Zero value disables the check.
	MinProcessorVersion version.Version

	// Factories overrides the global factory registry; used in tests.
	Factories Factories
}

// Host is the rightful owner of all instances in this process: it holds
// the only strong references. The registry, the dispatcher, and every
// other consumer see instances exclusively through non-owning references,
// so releasing an instance here is what ends its life.
type Host struct {
	mu        sync.RWMutex
	instances map[string]*instance.Instance

	registry   *registry.Registry
	journal    *journal.Journal
	puller     ArtifactPuller
	workDir    string
	minVersion version.Version
	factories  Factories
}

// New creates a Host. If cfg.Factories is nil, the globally registered
// processor factories are used.
func New(cfg Config) *Host {
	factories := cfg.Factories
	if factories == nil {
		factories = globalSnapshot()
	}
	return &Host{
		instances:  make(map[string]*instance.Instance),
		registry:   cfg.Registry,
		journal:    cfg.Journal,
		puller:     cfg.Puller,
		workDir:    cfg.WorkDir,
		minVersion: cfg.MinProcessorVersion,
		factories:  factories,
	}
}

// Create builds an instance from the spec, takes ownership of it, and
// registers a non-owning reference in the registry.
func (h *Host) Create(ctx context.Context, spec Spec) (*instance.Instance, error) {
	if spec.Kind == "" {
		return nil, apperrors.New(apperrors.ErrCodeInvalidRequest, "processor kind is required")
	}

	factory, ok := h.factories[spec.Kind]
	if !ok {
		return nil, apperrors.NewWithContext(apperrors.ErrCodeInvalidRequest,
			"unknown processor kind", map[string]any{"kind": spec.Kind})
	}

	var v version.Version
	if spec.Version != "" {
		parsed, err := version.Parse(spec.Version)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeInvalidRequest,
				"invalid processor version", err)
		}
		v = parsed
	}
	if !h.minVersion.IsZero() && !v.AtLeast(h.minVersion) {
		return nil, apperrors.NewWithContext(apperrors.ErrCodeInvalidRequest,
			"processor version below configured minimum", map[string]any{
				"version": spec.Version,
				"minimum": h.minVersion.String(),
			})
	}

	opts := Options{Settings: spec.Settings}
	if spec.Artifact != "" {
		if h.puller == nil {
			return nil, apperrors.New(apperrors.ErrCodeInvalidRequest,
				"artifact references are not supported by this host")
		}
		destDir := filepath.Join(h.workDir, uuid.New().String())
		if err := h.puller.Pull(ctx, spec.Artifact, destDir); err != nil {
			return nil, apperrors.WrapWithContext(apperrors.ErrCodeInternal,
				"failed to pull processor artifact", err, map[string]any{
					"artifact": spec.Artifact,
				})
		}
		opts.ArtifactDir = destDir
	}

	proc, err := factory(opts)
	if err != nil {
		return nil, apperrors.WrapWithContext(apperrors.ErrCodeInternal,
			"failed to create processor", err, map[string]any{"kind": spec.Kind})
	}

	inst := instance.New(spec.Kind, spec.Name, v, spec.Artifact, proc)

	h.mu.Lock()
	h.instances[inst.ID()] = inst
	h.mu.Unlock()

	h.registry.Register(inst.ID(), inst)

	if recErr := h.journal.Record(ctx, journal.Event{
		Type:       journal.EventRegistered,
		InstanceID: inst.ID(),
		Kind:       inst.Kind(),
		Detail:     spec.Name,
	}); recErr != nil {
		slog.Warn("failed to journal registration", "id", inst.ID(), "error", recErr)
	}

	slog.Info("created instance", "id", inst.ID(), "kind", inst.Kind(), "name", spec.Name)
	return inst, nil
}

// Release drops the host's strong reference to the instance.
//
// The registry entry is deliberately left in place: its weak reference
// goes stale on reclamation and the entry prunes itself. Relying on that
// instead of an explicit unregister is what keeps a forgotten teardown
// from ever leaking an instance.
func (h *Host) Release(ctx context.Context, id string) error {
	h.mu.Lock()
	inst, ok := h.instances[id]
	if ok {
		delete(h.instances, id)
	}
	h.mu.Unlock()

	if !ok {
		return apperrors.NewWithContext(apperrors.ErrCodeNotFound,
			"instance not owned by this host", map[string]any{"id": id})
	}

	if recErr := h.journal.Record(ctx, journal.Event{
		Type:       journal.EventReleased,
		InstanceID: id,
		Kind:       inst.Kind(),
	}); recErr != nil {
		slog.Warn("failed to journal release", "id", id, "error", recErr)
	}

	slog.Info("released instance", "id", id, "kind", inst.Kind())
	return nil
}

// ReleaseAll drops every strong reference the host holds.
func (h *Host) ReleaseAll(ctx context.Context) {
	h.mu.Lock()
	ids := make([]string, 0, len(h.instances))
	for id := range h.instances {
		ids = append(ids, id)
	}
	h.mu.Unlock()

	for _, id := range ids {
		if err := h.Release(ctx, id); err != nil && !apperrors.IsNotFound(err) {
			slog.Warn("failed to release instance", "id", id, "error", err)
		}
	}
}

// Get returns the owned instance for id, if any.
func (h *Host) Get(id string) (*instance.Instance, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	inst, ok := h.instances[id]
	return inst, ok
}

// List returns descriptions of all owned instances, oldest first.
func (h *Host) List() []instance.Info {
	h.mu.RLock()
	infos := make([]instance.Info, 0, len(h.instances))
	for _, inst := range h.instances {
		infos = append(infos, inst.Info())
	}
	h.mu.RUnlock()

	sort.Slice(infos, func(i, j int) bool {
		if infos[i].CreatedAt.Equal(infos[j].CreatedAt) {
			return infos[i].ID < infos[j].ID
		}
		return infos[i].CreatedAt.Before(infos[j].CreatedAt)
	})
	return infos
}

// Len returns the number of owned instances.
func (h *Host) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.instances)
}

// Kinds returns the processor kinds this host can create, sorted.
func (h *Host) Kinds() []string {
	kinds := make([]string, 0, len(h.factories))
	for k := range h.factories {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
