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


// Package minutes wires storage, the AI provider, and the ingestion
// pipeline into one system. Open a System against a data directory and
// build pipelines, servers, and watchers from it.
package minutes

import (
	"log/slog"

	"github.com/scribelight/minutes/ai"
	"github.com/scribelight/minutes/ai/openai"
	"github.com/scribelight/minutes/fireflies"
	"github.com/scribelight/minutes/pipeline"
	"github.com/scribelight/minutes/search"
	"github.com/scribelight/minutes/server"
	"github.com/scribelight/minutes/storage"
	"github.com/scribelight/minutes/storage/badger"
)

// System holds the storage layer and AI provider shared by everything
// built on top of it.
type System struct {
	stores   *badger.Stores
	provider ai.Provider
	source   *fireflies.Client
	logger   *slog.Logger
}

// SystemOption configures a System.
type SystemOption func(*systemOptions)

type systemOptions struct {
	aiConfig        *ai.Config
	firefliesAPIKey string
	firefliesOpts   []fireflies.ClientOption
}

// WithAIConfig overrides the default AI provider configuration.
func WithAIConfig(config *ai.Config) SystemOption {
	return func(o *systemOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithFireflies enables the transcript provider client. Without it, only
// direct markdown ingestion paths work.
func WithFireflies(apiKey string, opts ...fireflies.ClientOption) SystemOption {
	return func(o *systemOptions) {
		o.firefliesAPIKey = apiKey
		o.firefliesOpts = opts
	}
}

// Open builds a System over a Badger data directory.
func Open(dataDir string, opts ...SystemOption) (*System, error) {
	options := &systemOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	stores, err := badger.NewStores(dataDir)
	if err != nil {
		return nil, err
	}

	provider, err := openai.NewProvider(options.aiConfig)
	if err != nil {
		stores.Close()
		return nil, err
	}

	s := &System{
		stores:   stores,
		provider: provider,
		logger:   slog.Default(),
	}

	if options.firefliesAPIKey != "" {
		s.source = fireflies.NewClient(options.firefliesAPIKey, options.firefliesOpts...)
	}

	return s, nil
}

// Close releases the provider and storage.
func (s *System) Close() error {
	if err := s.provider.Close(); err != nil {
		s.logger.Error("error closing AI provider", "err", err)
	}
	return s.stores.Close()
}

// JobLedger exposes the job ledger.
func (s *System) JobLedger() storage.JobLedger {
	return s.stores.Ledger
}

// DocumentRepository exposes the document repository.
func (s *System) DocumentRepository() storage.DocumentRepository {
	return s.stores.Documents
}

// ObjectStore exposes the raw transcript blob store.
func (s *System) ObjectStore() storage.ObjectStore {
	return s.stores.Objects
}

// NewPipeline builds an ingestion pipeline over the system's stores. The
// fireflies client, when configured, is wired in automatically.
func (s *System) NewPipeline(opts ...pipeline.Option) (*pipeline.Pipeline, error) {
	if s.source != nil {
		opts = append([]pipeline.Option{pipeline.WithSourceClient(s.source)}, opts...)
	}
	return pipeline.New(s.stores.Ledger, s.stores.Documents, s.stores.Segments,
		s.stores.Chunks, s.stores.Items, s.stores.Objects, s.provider, opts...)
}

// NewServer builds an HTTP server over a pipeline from this system.
func (s *System) NewServer(p *pipeline.Pipeline, opts ...server.Option) (*server.Server, error) {
	return server.New(p, s.stores.Ledger, s.stores.Objects, opts...)
}

// NewSearcher builds a semantic searcher over the system's chunk store.
func (s *System) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	return search.NewSearcher(s.stores.Chunks, s.stores.Documents,
		s.provider.Embedder(), opts...)
}
