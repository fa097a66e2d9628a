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

// Package server implements the mnemed HTTP API.
//
// # Endpoints
//
//   - GET  /v1/instances              - list instances owned by the host
//   - POST /v1/instances              - create an instance from a spec
//   - GET  /v1/instances/{id}         - get instance metadata
//   - DELETE /v1/instances/{id}       - release the owner reference
//   - POST /v1/instances/{id}/invoke  - dispatch an operation by id
//   - GET  /v1/diagnostics            - registry snapshot and event journal
//   - GET  /health, /ready, /metrics  - system endpoints
//
// # Middleware
//
// API endpoints run through a middleware chain: Prometheus metrics, API
// version negotiation, request-ID propagation, panic recovery, token
// bucket rate limiting, and request logging. System endpoints bypass
// rate limiting so orchestrator probes are never rejected.
//
// # Error Model
//
// All errors are returned as an ErrorResponse envelope with a stable
// error code. Resolution failures (NOT_FOUND) and processor failures
// (INVOCATION_ERROR) are request-scoped: they produce 4xx responses and
// never terminate the server.
package server
