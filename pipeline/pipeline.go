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


package pipeline

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/scribelight/minutes/ai"
	"github.com/scribelight/minutes/fireflies"
	"github.com/scribelight/minutes/storage"
)

const (
	// DefaultBatchLimit bounds how many jobs one ProcessPending call claims.
	DefaultBatchLimit = 10

	// DefaultLease is how long a claimed job is invisible to other workers.
	DefaultLease = 5 * time.Minute
)

// SourceClient fetches transcripts from the meeting provider.
// *fireflies.Client satisfies it.
type SourceClient interface {
	Transcript(ctx context.Context, id string) (*fireflies.Transcript, error)
	RecentTranscripts(ctx context.Context, limit int) ([]*fireflies.Transcript, error)
}

// Pipeline orchestrates transcript ingestion and the staged processing that
// follows it: segmentation, chunking and embedding, and item extraction.
// Each stage advances the job ledger; a failed stage parks the job in error
// with the failure message recorded.
type Pipeline struct {
	ledger    storage.JobLedger
	documents storage.DocumentRepository
	segments  storage.SegmentRepository
	chunks    storage.ChunkRepository
	items     storage.ItemRepository
	objects   storage.ObjectStore
	provider  ai.Provider
	source    SourceClient

	workerID     string
	batchLimit   int
	lease        time.Duration
	asyncKickoff bool
	workPool     *ants.Pool
	logger       *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for asynchronous processing kickoff.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		if p.workPool != nil {
			p.workPool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.workPool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithSourceClient sets the transcript provider client used by webhook
// ingestion and polling. Without one, only direct markdown ingestion works.
func WithSourceClient(client SourceClient) Option {
	return func(p *Pipeline) error {
		p.source = client
		return nil
	}
}

// WithBatchLimit sets how many jobs one ProcessPending call claims.
func WithBatchLimit(limit int) Option {
	return func(p *Pipeline) error {
		if limit > 0 {
			p.batchLimit = limit
		}
		return nil
	}
}

// WithLease sets the claim lease duration.
func WithLease(lease time.Duration) Option {
	return func(p *Pipeline) error {
		if lease > 0 {
			p.lease = lease
		}
		return nil
	}
}

// WithWorkerID overrides the generated worker identity used for job claims.
func WithWorkerID(id string) Option {
	return func(p *Pipeline) error {
		if id != "" {
			p.workerID = id
		}
		return nil
	}
}

// WithAsyncKickoff makes a successful ingestion submit the document's
// remaining stages to the worker pool immediately, instead of waiting for
// the next poll. Disabled by default so callers control timing.
func WithAsyncKickoff(enabled bool) Option {
	return func(p *Pipeline) error {
		p.asyncKickoff = enabled
		return nil
	}
}

// New creates a processing pipeline over the given stores and AI provider.
func New(
	ledger storage.JobLedger,
	documents storage.DocumentRepository,
	segments storage.SegmentRepository,
	chunks storage.ChunkRepository,
	items storage.ItemRepository,
	objects storage.ObjectStore,
	provider ai.Provider,
	opts ...Option,
) (*Pipeline, error) {
	if ledger == nil {
		return nil, ErrLedgerRequired
	}
	if documents == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if segments == nil {
		return nil, ErrSegmentRepositoryRequired
	}
	if chunks == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if items == nil {
		return nil, ErrItemRepositoryRequired
	}
	if objects == nil {
		return nil, ErrObjectStoreRequired
	}
	if provider == nil {
		return nil, ErrProviderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		ledger:     ledger,
		documents:  documents,
		segments:   segments,
		chunks:     chunks,
		items:      items,
		objects:    objects,
		provider:   provider,
		workerID:   uuid.NewString(),
		batchLimit: DefaultBatchLimit,
		lease:      DefaultLease,
		workPool:   pool,
		logger:     slog.Default().With("component", "pipeline"),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// WorkerID returns the identity this pipeline claims jobs under.
func (p *Pipeline) WorkerID() string {
	return p.workerID
}

// Release releases resources including the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.workPool != nil {
		p.workPool.Release()
	}
}
