/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

// Package artifact parses oci:// processor artifact references and
// pulls their content from OCI registries via ORAS.
package artifact
