// Copyright 2026 Scribelight
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
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/scribelight/minutes/fireflies"
	"github.com/scribelight/minutes/pipeline"
	"github.com/scribelight/minutes/storage"
	"github.com/scribelight/minutes/transcript"
)

// DefaultAddr is the listen address used when none is configured.
const DefaultAddr = ":8080"

// Server exposes the pipeline over HTTP: ingestion entry points, manual
// stage triggers, batch "pending" endpoints, and backfill operations.
type Server struct {
	pipeline *pipeline.Pipeline
	ledger   storage.JobLedger
	objects  storage.ObjectStore
	addr     string
	logger   *slog.Logger
}

// Option configures a Server.
type Option func(*Server) error

// WithAddr sets the listen address.
// Default is DefaultAddr.
func WithAddr(addr string) Option {
	return func(s *Server) error {
		if addr != "" {
			s.addr = addr
		}
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// New creates a server over the given pipeline and stores.
func New(p *pipeline.Pipeline, ledger storage.JobLedger, objects storage.ObjectStore, opts ...Option) (*Server, error) {
	if p == nil {
		return nil, ErrPipelineRequired
	}
	if ledger == nil {
		return nil, ErrLedgerRequired
	}
	if objects == nil {
		return nil, ErrObjectStoreRequired
	}

	s := &Server{
		pipeline: p,
		ledger:   ledger,
		objects:  objects,
		addr:     DefaultAddr,
		logger:   slog.Default().With("component", "server"),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Handler builds the route table. Single-job endpoints report failures with
// a non-2xx status; batch endpoints always answer 200 with per-job results.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /status/{sourceId}", s.handleStatus)

	mux.HandleFunc("POST /ingest", s.handleIngest)
	mux.HandleFunc("POST /webhook/fireflies", s.handleFirefliesWebhook)
	mux.HandleFunc("POST /webhook/storage", s.handleStorageWebhook)

	mux.HandleFunc("POST /segment", s.handleStage(s.pipeline.SegmentDocument))
	mux.HandleFunc("POST /embed", s.handleStage(s.pipeline.EmbedDocument))
	mux.HandleFunc("POST /extract", s.handleStage(s.pipeline.ExtractDocument))

	mux.HandleFunc("POST /segment-pending", s.handlePending(pendingStages["segment"]))
	mux.HandleFunc("POST /embed-pending", s.handlePending(pendingStages["embed"]))
	mux.HandleFunc("POST /extract-pending", s.handlePending(pendingStages["extract"]))
	mux.HandleFunc("POST /ingest-pending", s.handleIngestPending)

	mux.HandleFunc("POST /backfill", s.handleBackfill)
	mux.HandleFunc("GET /backfill/status", s.handleBackfillStatus)
	mux.HandleFunc("POST /backfill/reset-errors", s.handleResetErrors)

	return mux
}

// ListenAndServe runs the server until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func readJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// statusFor maps pipeline failures to HTTP statuses: an unidentifiable
// transcript is the caller's problem, a missing record is 404, anything
// else is the server's.
func statusFor(err error) int {
	var unident *transcript.UnidentifiableSourceError
	switch {
	case errors.As(err, &unident):
		return http.StatusUnprocessableEntity
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, fireflies.ErrTranscriptNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
