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
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestRequestIDMiddleware(t *testing.T) {
	s := newTestServer(t)

	handler := s.requestIDMiddleware(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("generates id when missing", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		handler(rec, req)

		id := rec.Header().Get("X-Request-Id")
		require.NotEmpty(t, id)
		_, err := uuid.Parse(id)
		assert.NoError(t, err)
	})

	t.Run("preserves valid id", func(t *testing.T) {
		want := uuid.New().String()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-Id", want)
		rec := httptest.NewRecorder()
		handler(rec, req)

		assert.Equal(t, want, rec.Header().Get("X-Request-Id"))
	})

	t.Run("replaces invalid id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-Id", "not-a-uuid")
		rec := httptest.NewRecorder()
		handler(rec, req)

		got := rec.Header().Get("X-Request-Id")
		assert.NotEqual(t, "not-a-uuid", got)
		_, err := uuid.Parse(got)
		assert.NoError(t, err)
	})
}

func TestVersionMiddleware(t *testing.T) {
	s := newTestServer(t)

	handler := s.versionMiddleware(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name   string
		accept string
		want   string
	}{
		{"no accept header", "", "v1"},
		{"plain json", "application/json", "v1"},
		{"vendor v1", "application/vnd.nvidia.mneme.v1+json", "v1"},
		{"unsupported version", "application/vnd.nvidia.mneme.v9+json", "v1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.accept != "" {
				req.Header.Set("Accept", tt.accept)
			}
			rec := httptest.NewRecorder()
			handler(rec, req)

			assert.Equal(t, tt.want, rec.Header().Get("X-API-Version"))
		})
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	s := newTestServer(t)
	s.config.RateLimit = 1
	s.config.RateLimitBurst = 1
	s.rateLimiter = rate.NewLimiter(1, 1)

	handler := s.rateLimitMiddleware(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)

	rec := httptest.NewRecorder()
	handler(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler(rec, req)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))

	var errResp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	assert.Equal(t, "RATE_LIMIT_EXCEEDED", errResp.Code)
	assert.True(t, errResp.Retryable)
}

func TestPanicRecoveryMiddleware(t *testing.T) {
	s := newTestServer(t)

	handler := s.panicRecoveryMiddleware(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var errResp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	assert.Equal(t, "INTERNAL", errResp.Code)
}

func TestResponseWriterStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := newResponseWriter(rec)

	rw.WriteHeader(http.StatusTeapot)
	rw.WriteHeader(http.StatusOK) // ignored

	assert.Equal(t, http.StatusTeapot, rw.Status())
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestResponseWriterImplicitOK(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := newResponseWriter(rec)

	_, err := rw.Write([]byte("body"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rw.Status())
}
