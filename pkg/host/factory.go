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
	"fmt"
	"sort"
	"sync"

	"github.com/NVIDIA/instance-registry/pkg/instance"
)

// Options carries the inputs a processor factory may need.
type Options struct {
	// Settings are processor-specific settings from the create request.
	Settings map[string]any

	// ArtifactDir is the local directory of the pulled processor bundle.
	// Empty when the instance was created without an artifact.
	ArtifactDir string
}

// Factory is a function that creates a new Processor instance.
// Used for dynamic processor kind registration via init() functions.
type Factory func(opts Options) (instance.Processor, error)

// Factories maps processor kinds to their factories.
type Factories map[string]Factory

// Global registry for processor factories.
// Processor packages register themselves via init() functions.
var (
	globalFactories = make(Factories)
	globalMu        sync.RWMutex
)

// Register registers a processor factory globally.
// Returns an error if a factory with the same kind is already registered.
func Register(kind string, factory Factory) error {
	globalMu.Lock()
	defer globalMu.Unlock()

	if _, exists := globalFactories[kind]; exists {
		return fmt.Errorf("processor kind %s already registered", kind)
	}

	globalFactories[kind] = factory
	return nil
}

// MustRegister is a convenience function that panics on registration error.
// Use this in init() functions where registration must succeed.
func MustRegister(kind string, factory Factory) {
	if err := Register(kind, factory); err != nil {
		panic(err)
	}
}

// GlobalKinds returns all globally registered processor kinds, sorted.
func GlobalKinds() []string {
	globalMu.RLock()
	defer globalMu.RUnlock()

	kinds := make([]string, 0, len(globalFactories))
	for k := range globalFactories {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// globalSnapshot returns a copy of the global factory map.
func globalSnapshot() Factories {
	globalMu.RLock()
	defer globalMu.RUnlock()

	factories := make(Factories, len(globalFactories))
	for k, v := range globalFactories {
		factories[k] = v
	}
	return factories
}
