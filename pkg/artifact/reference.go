/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package artifact

import (
	"fmt"
	"strings"

	"github.com/distribution/reference"

	apperrors "github.com/NVIDIA/instance-registry/pkg/errors"
)

// URIScheme is the URI scheme for processor artifact references
// (e.g., "oci://ghcr.io/nvidia/intent-rules:1.0.0").
const URIScheme = "oci://"

// Reference is a parsed processor artifact reference.
type Reference struct {
	// Registry is the OCI registry host (e.g., "ghcr.io", "localhost:5000").
	Registry string
	// Repository is the image repository path (e.g., "nvidia/intent-rules").
	Repository string
	// Tag is the image tag (e.g., "1.0.0"). Empty when unspecified;
	// callers should apply a default.
	Tag string
}

// Parse parses an "oci://registry/repository:tag" artifact reference.
func Parse(raw string) (*Reference, error) {
	if !strings.HasPrefix(raw, URIScheme) {
		return nil, apperrors.NewWithContext(apperrors.ErrCodeInvalidRequest,
			"artifact reference must use the oci:// scheme", map[string]any{"reference": raw})
	}

	ref, err := reference.ParseNormalizedNamed(strings.TrimPrefix(raw, URIScheme))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidRequest, "invalid OCI reference", err)
	}

	parsed := &Reference{
		Registry:   reference.Domain(ref),
		Repository: reference.Path(ref),
	}
	if tagged, ok := ref.(reference.Tagged); ok {
		parsed.Tag = tagged.Tag()
	}
	return parsed, nil
}

// String returns the full "oci://registry/repository:tag" form.
func (r *Reference) String() string {
	if r.Tag == "" {
		return fmt.Sprintf("%s%s/%s", URIScheme, r.Registry, r.Repository)
	}
	return fmt.Sprintf("%s%s/%s:%s", URIScheme, r.Registry, r.Repository, r.Tag)
}

// ImageReference returns the Docker-style image reference without the
// oci:// scheme.
func (r *Reference) ImageReference() string {
	if r.Tag == "" {
		return fmt.Sprintf("%s/%s", r.Registry, r.Repository)
	}
	return fmt.Sprintf("%s/%s:%s", r.Registry, r.Repository, r.Tag)
}
