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
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/NVIDIA/instance-registry/pkg/dispatcher"
	"github.com/NVIDIA/instance-registry/pkg/host"
	"github.com/NVIDIA/instance-registry/pkg/journal"
	"github.com/NVIDIA/instance-registry/pkg/registry"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Dependencies wires the server to the instance machinery it fronts.
type Dependencies struct {
	Host       *host.Host
	Registry   *registry.Registry
	Dispatcher *dispatcher.Dispatcher
	Journal    *journal.Journal // may be nil
}

// Server represents the HTTP server
type Server struct {
	config      *Config
	httpServer  *http.Server
	rateLimiter *rate.Limiter
	mu          sync.RWMutex
	ready       bool

	host       *host.Host
	registry   *registry.Registry
	dispatcher *dispatcher.Dispatcher
	journal    *journal.Journal
}

// NewServer creates a new server instance
func NewServer(config *Config, deps Dependencies) *Server {
	if config == nil {
		config = NewConfig()
	}

	s := &Server{
		config:      config,
		rateLimiter: rate.NewLimiter(config.RateLimit, config.RateLimitBurst),
		host:        deps.Host,
		registry:    deps.Registry,
		dispatcher:  deps.Dispatcher,
		journal:     deps.Journal,
	}

	// Setup HTTP server
	mux := s.setupRoutes()
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Address, config.Port),
		Handler:      mux,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	return s
}

// Handler returns the fully wired HTTP handler; used in tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// SetReady marks the server as ready to serve traffic
func (s *Server) SetReady(ready bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = ready
}

// Start starts the HTTP server and blocks until the context is canceled
// or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	s.SetReady(true)

	slog.Info("starting server", "address", s.httpServer.Addr)

	errChan := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	}
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.SetReady(false)

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	slog.Info("shutting down server")
	return s.httpServer.Shutdown(shutdownCtx)
}

// Run starts the server with graceful shutdown handling and blocks until
// the process receives SIGINT or SIGTERM.
func Run(config *Config, deps Dependencies) error {
	if config == nil {
		config = NewConfig()
	}

	server := NewServer(config, deps)

	slog.Info("server config",
		slog.String("address", server.httpServer.Addr),
		slog.Int("port", config.Port),
		slog.Any("rateLimit", config.RateLimit),
		slog.Int("rateLimitBurst", config.RateLimitBurst),
		slog.Duration("readTimeout", config.ReadTimeout),
		slog.Duration("writeTimeout", config.WriteTimeout),
		slog.Duration("idleTimeout", config.IdleTimeout),
		slog.Duration("shutdownTimeout", config.ShutdownTimeout),
	)

	// Setup graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return server.Start(gctx)
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}
