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

package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/NVIDIA/instance-registry/pkg/defaults"
	apperrors "github.com/NVIDIA/instance-registry/pkg/errors"
	"github.com/NVIDIA/instance-registry/pkg/host"
	"github.com/NVIDIA/instance-registry/pkg/serializer"
)

// handleListInstances handles GET /v1/instances
func (s *Server) handleListInstances(w http.ResponseWriter, _ *http.Request) {
	infos := s.host.List()
	serializer.RespondJSON(w, http.StatusOK, ListInstancesResponse{
		Count:     len(infos),
		Instances: infos,
	})
}

// handleCreateInstance handles POST /v1/instances
func (s *Server) handleCreateInstance(w http.ResponseWriter, r *http.Request) {
	var spec host.Spec
	if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
		WriteError(w, r, http.StatusBadRequest, apperrors.ErrCodeInvalidRequest,
			"invalid request body", false, map[string]any{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), defaults.CreateHandlerTimeout)
	defer cancel()

	inst, err := s.host.Create(ctx, spec)
	if err != nil {
		writeStructuredError(w, r, err)
		return
	}

	slog.Info("instance created",
		"id", inst.ID(),
		"kind", inst.Kind(),
	)
	serializer.RespondJSON(w, http.StatusCreated, inst.Info())
}

// handleGetInstance handles GET /v1/instances/{id}
func (s *Server) handleGetInstance(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	inst, ok := s.host.Get(id)
	if !ok {
		WriteError(w, r, http.StatusNotFound, apperrors.ErrCodeNotFound,
			"instance not found", false, map[string]any{"id": id})
		return
	}

	serializer.RespondJSON(w, http.StatusOK, inst.Info())
}

// handleReleaseInstance handles DELETE /v1/instances/{id}
func (s *Server) handleReleaseInstance(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := s.host.Release(r.Context(), id); err != nil {
		writeStructuredError(w, r, err)
		return
	}

	slog.Info("instance released", "id", id)
	serializer.RespondJSON(w, http.StatusOK, ReleaseResponse{
		InstanceID: id,
		Released:   true,
		Timestamp:  time.Now().UTC(),
	})
}

// handleInvoke handles POST /v1/instances/{id}/invoke.
//
// Resolution goes through the weak-reference registry, not the host's
// owned set: an instance whose owner already released it yields NOT_FOUND
// here even if the id is still being retried by stale callers.
func (s *Server) handleInvoke(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req InvokeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, apperrors.ErrCodeInvalidRequest,
			"invalid request body", false, map[string]any{"error": err.Error()})
		return
	}
	if req.Operation == "" {
		WriteError(w, r, http.StatusBadRequest, apperrors.ErrCodeInvalidRequest,
			"operation is required", false, nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), defaults.InvokeHandlerTimeout)
	defer cancel()

	result, err := s.dispatcher.Dispatch(ctx, id, req.Operation, req.Args)
	if err != nil {
		writeStructuredError(w, r, err)
		return
	}

	serializer.RespondJSON(w, http.StatusOK, InvokeResponse{
		InstanceID: id,
		Operation:  req.Operation,
		Result:     result,
		Timestamp:  time.Now().UTC(),
	})
}

// handleDiagnostics handles GET /v1/diagnostics
func (s *Server) handleDiagnostics(w http.ResponseWriter, r *http.Request) {
	resp := DiagnosticsResponse{
		OwnedInstances:  s.host.Len(),
		RegistryEntries: s.registry.Snapshot(),
		Timestamp:       time.Now().UTC(),
	}

	if s.journal != nil {
		summary, err := s.journal.Summary(r.Context())
		if err != nil {
			slog.Warn("failed to summarize journal", "error", err)
		} else {
			resp.EventSummary = summary
		}

		events, err := s.journal.Recent(r.Context(), s.config.MaxRecentEvents)
		if err != nil {
			slog.Warn("failed to read recent events", "error", err)
		} else {
			resp.RecentEvents = events
		}
	}

	serializer.RespondJSON(w, http.StatusOK, resp)
}
