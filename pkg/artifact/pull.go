/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package artifact

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	oras "oras.land/oras-go/v2"
	"oras.land/oras-go/v2/content/file"
	"oras.land/oras-go/v2/registry/remote"
	"oras.land/oras-go/v2/registry/remote/auth"
	"oras.land/oras-go/v2/registry/remote/credentials"
	"oras.land/oras-go/v2/registry/remote/retry"

	apperrors "github.com/NVIDIA/instance-registry/pkg/errors"
)

// DefaultTag is applied when a reference carries no explicit tag.
const DefaultTag = "latest"

// ArtifactType identifies processor bundles pushed by this project.
const ArtifactType = "application/vnd.nvidia.mneme.processor.v1"

// Option configures a Puller.
type Option func(*Puller)

// WithPlainHTTP enables plain HTTP transport, for local registries.
func WithPlainHTTP(plain bool) Option {
	return func(p *Puller) {
		p.plainHTTP = plain
	}
}

// WithInsecureTLS disables TLS certificate verification.
func WithInsecureTLS(insecure bool) Option {
	return func(p *Puller) {
		p.insecureTLS = insecure
	}
}

// Puller fetches processor artifacts from OCI registries. It satisfies
// the host package's ArtifactPuller interface.
type Puller struct {
	plainHTTP   bool
	insecureTLS bool
}

// NewPuller creates a Puller with the given options.
func NewPuller(opts ...Option) *Puller {
	p := &Puller{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Pull fetches the artifact at raw into destDir. Credentials are read
// from the local Docker config when the registry requires auth.
func (p *Puller) Pull(ctx context.Context, raw, destDir string) error {
	ref, err := Parse(raw)
	if err != nil {
		return err
	}
	tag := ref.Tag
	if tag == "" {
		tag = DefaultTag
	}

	slog.Debug("pulling artifact",
		"registry", ref.Registry,
		"repository", ref.Repository,
		"tag", tag,
	)

	fs, err := file.New(destDir)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInternal, "failed to create artifact store", err)
	}
	defer fs.Close()

	repo, err := remote.NewRepository(fmt.Sprintf("%s/%s", ref.Registry, ref.Repository))
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInvalidRequest, "failed to create repository client", err)
	}
	repo.PlainHTTP = p.plainHTTP

	client, err := p.authClient()
	if err != nil {
		return err
	}
	repo.Client = client

	desc, err := oras.Copy(ctx, repo, tag, fs, tag, oras.DefaultCopyOptions)
	if err != nil {
		return apperrors.WrapWithContext(apperrors.ErrCodeUnavailable,
			"failed to pull artifact", err, map[string]any{
				"reference": ref.String(),
			})
	}

	logPulled(ref, desc)
	return nil
}

func logPulled(ref *Reference, desc ocispec.Descriptor) {
	slog.Debug("artifact pulled",
		"reference", ref.String(),
		"mediaType", desc.MediaType,
		"digest", desc.Digest.String(),
		"size", desc.Size,
	)
}

func (p *Puller) authClient() (*auth.Client, error) {
	store, err := credentials.NewStoreFromDocker(credentials.StoreOptions{})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, "failed to load credential store", err)
	}

	transport := retry.DefaultClient.Transport
	if p.insecureTLS {
		base := http.DefaultTransport.(*http.Transport).Clone()
		base.TLSClientConfig.InsecureSkipVerify = true
		transport = retry.NewTransport(base)
	}

	return &auth.Client{
		Client:     &http.Client{Transport: transport},
		Cache:      auth.NewCache(),
		Credential: credentials.Credential(store),
	}, nil
}
