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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/NVIDIA/instance-registry/pkg/defaults"
	apperrors "github.com/NVIDIA/instance-registry/pkg/errors"
	"github.com/NVIDIA/instance-registry/pkg/host"
	"github.com/NVIDIA/instance-registry/pkg/instance"
	"github.com/NVIDIA/instance-registry/pkg/server"
)

// DefaultBaseURL is the daemon address used when none is configured.
const DefaultBaseURL = "http://localhost:8080"

const userAgent = "mneme/1.0"

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.hc = hc
	}
}

// Client talks to a running mnemed daemon.
type Client struct {
	baseURL string
	hc      *http.Client
}

// New creates a Client for the daemon at baseURL. An empty baseURL
// defaults to DefaultBaseURL.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		hc: &http.Client{
			Timeout: defaults.CLIRequestTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Create asks the daemon to create an instance from the given spec.
func (c *Client) Create(ctx context.Context, spec host.Spec) (*instance.Info, error) {
	var info instance.Info
	if err := c.do(ctx, http.MethodPost, "/v1/instances", spec, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// List returns the instances currently owned by the daemon's host.
func (c *Client) List(ctx context.Context) (*server.ListInstancesResponse, error) {
	var resp server.ListInstancesResponse
	if err := c.do(ctx, http.MethodGet, "/v1/instances", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Get fetches metadata for a single instance.
func (c *Client) Get(ctx context.Context, id string) (*instance.Info, error) {
	var info instance.Info
	if err := c.do(ctx, http.MethodGet, "/v1/instances/"+id, nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Invoke dispatches an operation against a registered instance.
func (c *Client) Invoke(ctx context.Context, id, operation string, args map[string]any) (*server.InvokeResponse, error) {
	req := server.InvokeRequest{Operation: operation, Args: args}
	var resp server.InvokeResponse
	if err := c.do(ctx, http.MethodPost, "/v1/instances/"+id+"/invoke", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Release drops the daemon's owner reference to the instance.
func (c *Client) Release(ctx context.Context, id string) (*server.ReleaseResponse, error) {
	var resp server.ReleaseResponse
	if err := c.do(ctx, http.MethodDelete, "/v1/instances/"+id, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Diagnostics fetches the registry snapshot and journal summary.
func (c *Client) Diagnostics(ctx context.Context) (*server.DiagnosticsResponse, error) {
	var resp server.DiagnosticsResponse
	if err := c.do(ctx, http.MethodGet, "/v1/diagnostics", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		buf := &bytes.Buffer{}
		if err := json.NewEncoder(buf).Encode(body); err != nil {
			return apperrors.Wrap(apperrors.ErrCodeInternal, "failed to encode request", err)
		}
		reqBody = buf
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInternal, "failed to create request", err)
	}
	req.Header.Set("User-Agent", userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeUnavailable, "daemon request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return apperrors.Wrap(apperrors.ErrCodeInternal, "failed to decode response", err)
		}
	}
	return nil
}

// decodeError converts an ErrorResponse envelope back into a structured
// error so callers can branch on the error code.
func decodeError(resp *http.Response) error {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.New(apperrors.ErrCodeInternal,
			fmt.Sprintf("daemon returned status %s", resp.Status))
	}

	var envelope server.ErrorResponse
	if err := json.Unmarshal(data, &envelope); err != nil || envelope.Code == "" {
		return apperrors.New(apperrors.ErrCodeInternal,
			fmt.Sprintf("daemon returned status %s: %s", resp.Status, strings.TrimSpace(string(data))))
	}

	return apperrors.NewWithContext(apperrors.ErrorCode(envelope.Code), envelope.Message, envelope.Details)
}
