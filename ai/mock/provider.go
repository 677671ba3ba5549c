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


package mock

import "github.com/scribelight/minutes/ai"

// MockProvider is a test double for ai.Provider.
// It aggregates mock embedder, segmenter, and normalizer instances.
type MockProvider struct {
	embedder   *MockEmbedder
	segmenter  *MockSegmenter
	normalizer *MockItemNormalizer
}

// NewMockProvider creates a new mock provider with default mock services.
//
// Returns the concrete type so tests can reach the underlying doubles for
// call-count assertions and behavior injection.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		embedder:   NewMockEmbedder(),
		segmenter:  NewMockSegmenter(),
		normalizer: NewMockItemNormalizer(),
	}
}

// Embedder returns the mock embedder.
func (p *MockProvider) Embedder() ai.Embedder {
	return p.embedder
}

// Segmenter returns the mock segmenter.
func (p *MockProvider) Segmenter() ai.Segmenter {
	return p.segmenter
}

// ItemNormalizer returns the mock item normalizer.
func (p *MockProvider) ItemNormalizer() ai.ItemNormalizer {
	return p.normalizer
}

// Close is a no-op for mock provider.
func (p *MockProvider) Close() error {
	return nil
}

// GetMockEmbedder returns the underlying mock embedder for test assertions.
func (p *MockProvider) GetMockEmbedder() *MockEmbedder {
	return p.embedder
}

// GetMockSegmenter returns the underlying mock segmenter for test assertions.
func (p *MockProvider) GetMockSegmenter() *MockSegmenter {
	return p.segmenter
}

// GetMockNormalizer returns the underlying mock normalizer for test assertions.
func (p *MockProvider) GetMockNormalizer() *MockItemNormalizer {
	return p.normalizer
}
