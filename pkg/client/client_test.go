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

package client

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVIDIA/instance-registry/pkg/dispatcher"
	apperrors "github.com/NVIDIA/instance-registry/pkg/errors"
	"github.com/NVIDIA/instance-registry/pkg/host"
	"github.com/NVIDIA/instance-registry/pkg/instance"
	"github.com/NVIDIA/instance-registry/pkg/registry"
	"github.com/NVIDIA/instance-registry/pkg/server"
)

type upperProcessor struct{}

func (upperProcessor) Operations() []string { return []string{"upper"} }

func (upperProcessor) Invoke(_ context.Context, _ string, args map[string]any) (any, error) {
	text, _ := args["text"].(string)
	out := make([]rune, 0, len(text))
	for _, r := range text {
		if r >= 'a' && r <= 'z' {
			r -= 'a' - 'A'
		}
		out = append(out, r)
	}
	return string(out), nil
}

// newTestClient stands up a real server handler behind httptest and
// returns a Client pointed at it.
func newTestClient(t *testing.T) *Client {
	t.Helper()

	reg := registry.New()
	h := host.New(host.Config{
		Registry: reg,
		Factories: host.Factories{
			"upper": func(_ host.Options) (instance.Processor, error) {
				return upperProcessor{}, nil
			},
		},
	})

	srv := server.NewServer(server.NewConfig(), server.Dependencies{
		Host:       h,
		Registry:   reg,
		Dispatcher: dispatcher.New(reg, nil),
	})

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return New(ts.URL)
}

func TestClientLifecycle(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	info, err := c.Create(ctx, host.Spec{Kind: "upper", Name: "shouty"})
	require.NoError(t, err)
	require.NotEmpty(t, info.ID)
	assert.Equal(t, "upper", info.Kind)

	got, err := c.Get(ctx, info.ID)
	require.NoError(t, err)
	assert.Equal(t, info.ID, got.ID)

	list, err := c.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, list.Count)

	res, err := c.Invoke(ctx, info.ID, "upper", map[string]any{"text": "hello"})
	require.NoError(t, err)
	assert.Equal(t, "HELLO", res.Result)

	rel, err := c.Release(ctx, info.ID)
	require.NoError(t, err)
	assert.True(t, rel.Released)
}

func TestClientNotFound(t *testing.T) {
	c := newTestClient(t)

	_, err := c.Get(context.Background(), "missing-id")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestClientInvocationError(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	info, err := c.Create(ctx, host.Spec{Kind: "upper"})
	require.NoError(t, err)

	_, err = c.Invoke(ctx, info.ID, "bogus", nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeInvocation, apperrors.CodeOf(err))
}

func TestClientDiagnostics(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	_, err := c.Create(ctx, host.Spec{Kind: "upper"})
	require.NoError(t, err)

	diag, err := c.Diagnostics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, diag.OwnedInstances)
	assert.Len(t, diag.RegistryEntries, 1)
}

func TestClientUnreachableDaemon(t *testing.T) {
	c := New("http://127.0.0.1:1")

	_, err := c.List(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeUnavailable, apperrors.CodeOf(err))
}

func TestNewDefaults(t *testing.T) {
	c := New("")
	assert.Equal(t, DefaultBaseURL, c.baseURL)

	c = New("http://example.com/")
	assert.Equal(t, "http://example.com", c.baseURL)
}
