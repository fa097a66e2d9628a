/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

// Package cli implements the mneme command line interface.
//
// Commands:
//
//	serve    - run the mnemed daemon in the foreground
//	create   - create a processor instance from a spec
//	list     - list instances owned by the daemon
//	get      - get instance metadata by id
//	invoke   - dispatch an operation against an instance by id
//	release  - drop the daemon's owner reference
//	diag     - registry snapshot and event journal for leak triage
//
// All commands that talk to the daemon accept --server (or MNEME_SERVER)
// and render output via --format (json, yaml, table) and --output.
package cli
