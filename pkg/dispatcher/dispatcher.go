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

package dispatcher

import (
	"context"
	"log/slog"

	"github.com/NVIDIA/instance-registry/pkg/journal"
	"github.com/NVIDIA/instance-registry/pkg/registry"
)

// Dispatcher resolves an instance identifier through the registry and
// invokes a named operation on it. It is the remote-invocation entry point
// that only ever sees identifiers, never direct references; resolution
// failures and invocation failures are request-level errors, never fatal.
type Dispatcher struct {
	registry *registry.Registry
	journal  *journal.Journal
}

// New creates a Dispatcher backed by the given registry.
// The journal may be nil to disable event recording.
func New(reg *registry.Registry, j *journal.Journal) *Dispatcher {
	return &Dispatcher{
		registry: reg,
		journal:  j,
	}
}

// Dispatch resolves id and invokes the named operation with args.
//
// A stale or unknown id fails with NOT_FOUND; a bad operation or a
// processor failure fails with INVOCATION_ERROR. Either way the failure is
// scoped to this one request: the registry stays consistent and the
// process keeps serving.
func (d *Dispatcher) Dispatch(ctx context.Context, id, operation string, args map[string]any) (any, error) {
	inst, err := d.registry.Resolve(id)
	if err != nil {
		if recErr := d.journal.Record(ctx, journal.Event{
			Type:       journal.EventResolveMiss,
			InstanceID: id,
			Detail:     operation,
		}); recErr != nil {
			slog.Warn("failed to journal resolve miss", "id", id, "error", recErr)
		}
		return nil, err
	}

	out, err := inst.Invoke(ctx, operation, args)
	eventType := journal.EventInvoked
	detail := operation
	if err != nil {
		eventType = journal.EventInvokeFailed
		detail = operation + ": " + err.Error()
	}
	if recErr := d.journal.Record(ctx, journal.Event{
		Type:       eventType,
		InstanceID: id,
		Kind:       inst.Kind(),
		Detail:     detail,
	}); recErr != nil {
		slog.Warn("failed to journal invocation", "id", id, "error", recErr)
	}

	if err != nil {
		return nil, err
	}
	return out, nil
}
