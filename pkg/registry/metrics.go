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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	entriesGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mneme_registry_entries",
			Help: "Current number of registry entries, stale entries included",
		},
	)

	registrationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mneme_registry_registrations_total",
			Help: "Total number of instance registrations",
		},
	)

	resolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mneme_registry_resolutions_total",
			Help: "Total number of resolutions by outcome (hit, miss, stale)",
		},
		[]string{"outcome"},
	)

	prunedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mneme_registry_pruned_total",
			Help: "Total number of stale entries removed, by trigger (cleanup, resolve, sweep)",
		},
		[]string{"reason"},
	)
)
