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

// Package api assembles and runs the mnemed daemon: it wires the weak
// reference registry, the instance host, the event journal, and the
// dispatcher behind the HTTP server in pkg/server.
//
// Configuration is environment driven:
//
//	PORT                          - HTTP listen port (default 8080)
//	LOG_LEVEL                     - debug, info, warn, error (default info)
//	SHUTDOWN_TIMEOUT_SECONDS      - graceful shutdown budget
//	MNEMED_JOURNAL                - SQLite journal path; empty disables
//	MNEMED_WORK_DIR               - artifact unpack directory
//	MNEMED_MIN_PROCESSOR_VERSION  - reject older processor specs
//	MNEMED_ARTIFACT_PLAIN_HTTP    - allow plain HTTP OCI registries
package api
