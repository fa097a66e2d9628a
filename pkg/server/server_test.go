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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVIDIA/instance-registry/pkg/dispatcher"
	"github.com/NVIDIA/instance-registry/pkg/host"
	"github.com/NVIDIA/instance-registry/pkg/instance"
	"github.com/NVIDIA/instance-registry/pkg/registry"
)

type echoProcessor struct{}

func (echoProcessor) Operations() []string { return []string{"echo"} }

func (echoProcessor) Invoke(_ context.Context, operation string, args map[string]any) (any, error) {
	if operation == "echo" {
		return args["text"], nil
	}
	return nil, fmt.Errorf("unknown operation %q", operation)
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	reg := registry.New()
	h := host.New(host.Config{
		Registry: reg,
		Factories: host.Factories{
			"echo": func(_ host.Options) (instance.Processor, error) {
				return echoProcessor{}, nil
			},
		},
	})

	cfg := NewConfig()
	cfg.Version = "test"

	return NewServer(cfg, Dependencies{
		Host:       h,
		Registry:   reg,
		Dispatcher: dispatcher.New(reg, nil),
	})
}

func doRequest(s *Server, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func createInstance(t *testing.T, s *Server) instance.Info {
	t.Helper()

	rec := doRequest(s, http.MethodPost, "/v1/instances", host.Spec{Kind: "echo"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var info instance.Info
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	require.NotEmpty(t, info.ID)
	return info
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(s, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Not ready until started
	rec = doRequest(s, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	s.SetReady(true)
	rec = doRequest(s, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDefaultRoute(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(s, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Name   string   `json:"name"`
		Routes []string `json:"routes"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "mnemed", resp.Name)
	assert.Contains(t, resp.Routes, "POST /v1/instances/{id}/invoke")
}

func TestCreateAndGetInstance(t *testing.T) {
	s := newTestServer(t)
	info := createInstance(t, s)

	rec := doRequest(s, http.MethodGet, "/v1/instances/"+info.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got instance.Info
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, info.ID, got.ID)
	assert.Equal(t, "echo", got.Kind)
}

func TestCreateInstanceInvalidBody(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/instances", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var errResp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	assert.Equal(t, "INVALID_REQUEST", errResp.Code)
	assert.NotEmpty(t, errResp.RequestID)
}

func TestCreateInstanceUnknownKind(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(s, http.MethodPost, "/v1/instances", host.Spec{Kind: "nope"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListInstances(t *testing.T) {
	s := newTestServer(t)
	createInstance(t, s)
	createInstance(t, s)

	rec := doRequest(s, http.MethodGet, "/v1/instances", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ListInstancesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
	assert.Len(t, resp.Instances, 2)
}

func TestInvoke(t *testing.T) {
	s := newTestServer(t)
	info := createInstance(t, s)

	rec := doRequest(s, http.MethodPost, "/v1/instances/"+info.ID+"/invoke", InvokeRequest{
		Operation: "echo",
		Args:      map[string]any{"text": "hello"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp InvokeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "hello", resp.Result)
	assert.Equal(t, info.ID, resp.InstanceID)
}

func TestInvokeUnknownOperation(t *testing.T) {
	s := newTestServer(t)
	info := createInstance(t, s)

	rec := doRequest(s, http.MethodPost, "/v1/instances/"+info.ID+"/invoke", InvokeRequest{
		Operation: "bogus",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var errResp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	assert.Equal(t, "INVOCATION_ERROR", errResp.Code)
}

func TestInvokeMissingOperation(t *testing.T) {
	s := newTestServer(t)
	info := createInstance(t, s)

	rec := doRequest(s, http.MethodPost, "/v1/instances/"+info.ID+"/invoke", InvokeRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInvokeUnknownID(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(s, http.MethodPost, "/v1/instances/no-such-id/invoke", InvokeRequest{
		Operation: "echo",
	})
	require.Equal(t, http.StatusNotFound, rec.Code)

	var errResp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	assert.Equal(t, "NOT_FOUND", errResp.Code)
}

func TestReleaseInstance(t *testing.T) {
	s := newTestServer(t)
	info := createInstance(t, s)

	rec := doRequest(s, http.MethodDelete, "/v1/instances/"+info.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ReleaseResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Released)

	// Releasing again is NOT_FOUND
	rec = doRequest(s, http.MethodDelete, "/v1/instances/"+info.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Once the instance is reclaimed, dispatch against the stale id is
	// NOT_FOUND as well.
	require.Eventually(t, func() bool {
		runtime.GC()
		r := doRequest(s, http.MethodPost, "/v1/instances/"+info.ID+"/invoke", InvokeRequest{
			Operation: "echo",
		})
		return r.Code == http.StatusNotFound
	}, 5*time.Second, 50*time.Millisecond)
}

func TestDiagnostics(t *testing.T) {
	s := newTestServer(t)
	info := createInstance(t, s)

	rec := doRequest(s, http.MethodGet, "/v1/diagnostics", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp DiagnosticsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.OwnedInstances)
	require.Len(t, resp.RegistryEntries, 1)
	assert.Equal(t, info.ID, resp.RegistryEntries[0].ID)
	assert.True(t, resp.RegistryEntries[0].Live)
}

func TestMethodNotAllowed(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(s, http.MethodPut, "/v1/instances", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestServerStartShutdown(t *testing.T) {
	s := newTestServer(t)
	s.httpServer.Addr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
