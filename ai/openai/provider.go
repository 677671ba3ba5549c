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


package openai

import (
	"log/slog"

	"github.com/scribelight/minutes/ai"
)

// Provider implements ai.Provider using OpenAI-compatible services.
// It manages embedder, segmenter, and normalizer instances.
type Provider struct {
	config     *ai.Config
	embedder   *Embedder
	segmenter  *Segmenter
	normalizer *ItemNormalizer
	logger     *slog.Logger
}

// NewProvider creates a new AI provider with OpenAI-compatible services.
// The config is validated and normalized before use.
//
// Returns ai.Provider interface (not *Provider) to enforce abstraction
// and prevent coupling to OpenAI-specific implementation details.
func NewProvider(config *ai.Config) (ai.Provider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	embedder, err := newEmbedder(config)
	if err != nil {
		return nil, err
	}

	segmenter, err := newSegmenter(config)
	if err != nil {
		return nil, err
	}

	normalizer, err := newItemNormalizer(config)
	if err != nil {
		return nil, err
	}

	return &Provider{
		config:     config,
		embedder:   embedder,
		segmenter:  segmenter,
		normalizer: normalizer,
		logger:     slog.Default().With("component", "openai-provider"),
	}, nil
}

// Embedder returns the text embedding service.
func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

// Segmenter returns the transcript segmentation service.
func (p *Provider) Segmenter() ai.Segmenter {
	return p.segmenter
}

// ItemNormalizer returns the structured-item normalization service.
func (p *Provider) ItemNormalizer() ai.ItemNormalizer {
	return p.normalizer
}

// Close releases resources held by the provider.
// Currently a no-op as the underlying clients don't require explicit cleanup.
func (p *Provider) Close() error {
	p.logger.Debug("closing OpenAI provider")
	return nil
}
