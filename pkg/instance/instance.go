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

package instance

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/NVIDIA/instance-registry/pkg/errors"
	"github.com/NVIDIA/instance-registry/pkg/version"
)

// Processor is the contract a processor implementation must satisfy to be
// hosted as an instance: a set of named, invocable operations.
type Processor interface {
	// Operations returns the names of the operations the processor supports.
	Operations() []string

	// Invoke runs the named operation with the given arguments.
	Invoke(ctx context.Context, operation string, args map[string]any) (any, error)
}

// Info is the serializable description of an instance.
type Info struct {
	ID         string    `json:"id" yaml:"id"`
	Kind       string    `json:"kind" yaml:"kind"`
	Name       string    `json:"name,omitempty" yaml:"name,omitempty"`
	Version    string    `json:"version,omitempty" yaml:"version,omitempty"`
	Artifact   string    `json:"artifact,omitempty" yaml:"artifact,omitempty"`
	CreatedAt  time.Time `json:"createdAt" yaml:"createdAt"`
	Operations []string  `json:"operations" yaml:"operations"`
}

// Instance is a hosted unit of work: a processor wrapped with a stable
// identity and metadata. Ownership of an Instance belongs exclusively to
// its creator; the registry only ever holds non-owning references to it.
type Instance struct {
	id        string
	kind      string
	name      string
	version   version.Version
	artifact  string
	createdAt time.Time
	proc      Processor
}

// New creates an Instance wrapping the given processor.
// The identifier is a fresh UUID, unique for the lifetime of the process.
func New(kind, name string, v version.Version, artifact string, proc Processor) *Instance {
	return &Instance{
		id:        uuid.New().String(),
		kind:      kind,
		name:      name,
		version:   v,
		artifact:  artifact,
		createdAt: time.Now().UTC(),
		proc:      proc,
	}
}

// ID returns the stable unique identifier of the instance.
func (i *Instance) ID() string {
	return i.id
}

// Kind returns the processor kind the instance was created from.
func (i *Instance) Kind() string {
	return i.kind
}

// Version returns the processor version of the instance.
func (i *Instance) Version() version.Version {
	return i.version
}

// Operations returns the names of the operations the instance supports.
func (i *Instance) Operations() []string {
	return i.proc.Operations()
}

// Info returns the serializable description of the instance.
func (i *Instance) Info() Info {
	info := Info{
		ID:         i.id,
		Kind:       i.kind,
		Name:       i.name,
		Artifact:   i.artifact,
		CreatedAt:  i.createdAt,
		Operations: i.proc.Operations(),
	}
	if !i.version.IsZero() {
		info.Version = i.version.String()
	}
	return info
}

// Invoke runs the named operation on the underlying processor.
// Unknown operations and processor failures both surface as
// INVOCATION_ERROR; either failure is scoped to this one invocation and
// leaves the instance usable.
func (i *Instance) Invoke(ctx context.Context, operation string, args map[string]any) (any, error) {
	if !slices.Contains(i.proc.Operations(), operation) {
		return nil, apperrors.NewWithContext(apperrors.ErrCodeInvocation,
			"operation does not exist on instance", map[string]any{
				"instance":  i.id,
				"kind":      i.kind,
				"operation": operation,
			})
	}

	out, err := i.proc.Invoke(ctx, operation, args)
	if err != nil {
		return nil, apperrors.WrapWithContext(apperrors.ErrCodeInvocation,
			"operation failed", err, map[string]any{
				"instance":  i.id,
				"kind":      i.kind,
				"operation": operation,
			})
	}
	return out, nil
}
