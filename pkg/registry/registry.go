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

package registry

import (
	"log/slog"
	"runtime"
	"sync"
	"time"
	"weak"

	apperrors "github.com/NVIDIA/instance-registry/pkg/errors"
	"github.com/NVIDIA/instance-registry/pkg/instance"
)

// entry is a single registry slot: a weak reference to the instance plus
// the bookkeeping needed to prune the slot safely after reclamation.
type entry struct {
	ref weak.Pointer[instance.Instance]

	// generation of the registration that created this entry. Cleanup and
	// stale-pruning only remove the entry while the generation still
	// matches, so a concurrently re-registered id is never clobbered.
	generation uint64

	kind         string
	registeredAt time.Time
}

// EntryInfo describes one registry entry for diagnostics.
type EntryInfo struct {
	ID           string    `json:"id" yaml:"id"`
	Kind         string    `json:"kind" yaml:"kind"`
	Live         bool      `json:"live" yaml:"live"`
	RegisteredAt time.Time `json:"registeredAt" yaml:"registeredAt"`
}

// Registry is a process-wide mapping from instance identifier to a
// non-owning reference to that instance. It lets out-of-band dispatch code
// resolve an identifier to a live instance without extending the
// instance's lifetime: once the owner releases its last strong reference,
// Resolve reports NotFound regardless of what the map still holds.
//
// All operations are safe for concurrent use.
type Registry struct {
	mu         sync.RWMutex
	entries    map[string]*entry
	generation uint64
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{
		entries: make(map[string]*entry),
	}
}

// Register inserts a non-owning reference to inst keyed by id. It does not
// extend the lifetime of inst. Re-registering an existing id overwrites the
// previous entry. Once inst is reclaimed, the entry removes itself.
func (r *Registry) Register(id string, inst *instance.Instance) {
	r.mu.Lock()
	_, overwrite := r.entries[id]
	r.generation++
	generation := r.generation
	r.entries[id] = &entry{
		ref:          weak.Make(inst),
		generation:   generation,
		kind:         inst.Kind(),
		registeredAt: time.Now().UTC(),
	}
	r.mu.Unlock()

	registrationsTotal.Inc()
	if !overwrite {
		entriesGauge.Inc()
	}
	slog.Debug("registered instance", "id", id, "kind", inst.Kind(), "overwrite", overwrite)

	// Drop the entry after the instance is reclaimed. The cleanup argument
	// must not reference inst itself; the generation check keeps a reused
	// id from losing its newer entry.
	runtime.AddCleanup(inst, func(g uint64) {
		if r.removeIfGeneration(id, g) {
			prunedTotal.WithLabelValues("cleanup").Inc()
			slog.Debug("pruned reclaimed instance", "id", id)
		}
	}, generation)
}

// Resolve looks up the current mapping for id and returns a fully usable
// strong reference, or a NOT_FOUND error when the id was never registered,
// was unregistered, or the instance has already been reclaimed by its
// owners. A stale entry found during resolution is pruned in place.
// Callers must treat NotFound as a normal, expected outcome.
func (r *Registry) Resolve(id string) (*instance.Instance, error) {
	r.mu.RLock()
	e, ok := r.entries[id]
	r.mu.RUnlock()

	if !ok {
		resolutionsTotal.WithLabelValues("miss").Inc()
		return nil, apperrors.NewWithContext(apperrors.ErrCodeNotFound,
			"instance not registered", map[string]any{"id": id})
	}

	// Value either resurrects a strong reference or reports nil; there is
	// no half-valid outcome to guard against.
	inst := e.ref.Value()
	if inst == nil {
		if r.removeIfGeneration(id, e.generation) {
			prunedTotal.WithLabelValues("resolve").Inc()
		}
		resolutionsTotal.WithLabelValues("stale").Inc()
		return nil, apperrors.NewWithContext(apperrors.ErrCodeNotFound,
			"instance has been reclaimed", map[string]any{"id": id})
	}

	resolutionsTotal.WithLabelValues("hit").Inc()
	return inst, nil
}

// Unregister removes the entry for id. The registry prunes reclaimed
// entries automatically, so calling Unregister is optional; it exists for
// owners that want eager teardown.
func (r *Registry) Unregister(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[id]; !ok {
		return apperrors.NewWithContext(apperrors.ErrCodeNotFound,
			"instance not registered", map[string]any{"id": id})
	}

	delete(r.entries, id)
	entriesGauge.Dec()
	return nil
}

// Prune removes all stale entries and returns how many were removed.
// Pruning is housekeeping only: stale entries already resolve to NotFound.
func (r *Registry) Prune() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, e := range r.entries {
		if e.ref.Value() == nil {
			delete(r.entries, id)
			removed++
		}
	}
	if removed > 0 {
		entriesGauge.Sub(float64(removed))
		prunedTotal.WithLabelValues("sweep").Add(float64(removed))
	}
	return removed
}

// Snapshot returns a point-in-time description of all entries, including
// stale ones that have not been pruned yet. Liveness is probed per entry.
func (r *Registry) Snapshot() []EntryInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]EntryInfo, 0, len(r.entries))
	for id, e := range r.entries {
		infos = append(infos, EntryInfo{
			ID:           id,
			Kind:         e.kind,
			Live:         e.ref.Value() != nil,
			RegisteredAt: e.registeredAt,
		})
	}
	return infos
}

// IDs returns all currently registered identifiers, stale entries included.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	return ids
}

// Len returns the number of entries, stale entries included.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// IsEmpty returns true if the registry holds no entries.
func (r *Registry) IsEmpty() bool {
	return r.Len() == 0
}

// removeIfGeneration deletes the entry for id only if it still belongs to
// the given registration generation. Returns true if an entry was removed.
func (r *Registry) removeIfGeneration(id string, generation uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok || e.generation != generation {
		return false
	}
	delete(r.entries, id)
	entriesGauge.Dec()
	return true
}
