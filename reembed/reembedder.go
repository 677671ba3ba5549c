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


package reembed

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/scribelight/minutes/ai"
	"github.com/scribelight/minutes/core"
	"github.com/scribelight/minutes/storage"
)

// Reembedder regenerates the vectors of every chunk, segment summary, and
// structured item in the store.
type Reembedder struct {
	documents storage.DocumentRepository
	segments  storage.SegmentRepository
	chunks    storage.ChunkRepository
	items     storage.ItemRepository
	embedder  ai.Embedder
	config    *Config
	progress  io.Writer
	iterator  *DocumentIterator
}

// NewReembedder creates a reembedder. progress is where human-readable
// progress output goes, typically os.Stderr.
func NewReembedder(
	documents storage.DocumentRepository,
	segments storage.SegmentRepository,
	chunks storage.ChunkRepository,
	items storage.ItemRepository,
	embedder ai.Embedder,
	config *Config,
	progress io.Writer,
) *Reembedder {
	if config == nil {
		config = DefaultConfig()
	}
	return &Reembedder{
		documents: documents,
		segments:  segments,
		chunks:    chunks,
		items:     items,
		embedder:  embedder,
		config:    config,
		progress:  progress,
		iterator:  NewDocumentIterator(documents, config.BatchSize),
	}
}

// Run walks every document and re-embeds its derived records.
func (r *Reembedder) Run(ctx context.Context) error {
	if err := r.config.Validate(); err != nil {
		return err
	}

	total, err := r.iterator.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count documents: %w", err)
	}
	if total == 0 {
		fmt.Fprintln(r.progress, "No documents found (0 documents)")
		return nil
	}

	fmt.Fprintf(r.progress, "Reembedding %d documents (page size: %d)\n",
		total, r.config.BatchSize)

	tracker := NewProgressTracker(r.progress, total, r.config.ReportInterval)
	tracker.Start()

	err = r.iterator.ForEach(ctx, func(docs []*core.Document) error {
		for _, doc := range docs {
			if err := r.reembedDocument(ctx, doc.ID); err != nil {
				return fmt.Errorf("document %s: %w", doc.ID, err)
			}
			tracker.Increment(1)
		}
		return nil
	})
	if err != nil {
		return err
	}

	tracker.Finish()
	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Reembedding complete. Processed %d documents in %v (%.1f docs/sec)\n",
		total, elapsed.Round(time.Second), float64(total)/elapsed.Seconds())
	return nil
}

func (r *Reembedder) reembedDocument(ctx context.Context, documentID string) error {
	if err := r.reembedChunks(ctx, documentID); err != nil {
		return err
	}
	if err := r.reembedSegments(ctx, documentID); err != nil {
		return err
	}
	return r.reembedItems(ctx, documentID)
}

func (r *Reembedder) reembedChunks(ctx context.Context, documentID string) error {
	chunks, err := r.chunks.GetChunks(ctx, documentID)
	if err != nil {
		return err
	}
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Content
	}
	vectors, err := r.embedTexts(ctx, texts)
	if err != nil {
		return fmt.Errorf("chunks: %w", err)
	}
	for i := range chunks {
		chunks[i].Vector = NormalizeVector(vectors[i])
	}

	_, err = r.chunks.UpsertChunks(ctx, chunks...)
	return err
}

func (r *Reembedder) reembedSegments(ctx context.Context, documentID string) error {
	segments, err := r.segments.GetSegments(ctx, documentID)
	if err != nil {
		return err
	}
	if len(segments) == 0 {
		return nil
	}

	texts := make([]string, len(segments))
	for i, seg := range segments {
		// Embed the same text the pipeline embeds: the summary, with
		// the title standing in for segments that have none.
		if seg.Summary != "" {
			texts[i] = seg.Summary
		} else {
			texts[i] = seg.Title
		}
	}
	vectors, err := r.embedTexts(ctx, texts)
	if err != nil {
		return fmt.Errorf("segments: %w", err)
	}

	for i, seg := range segments {
		vector := NormalizeVector(vectors[i])
		if err := r.segments.UpdateSummaryVector(ctx, documentID, seg.SegmentIndex, vector); err != nil {
			return err
		}
	}
	return nil
}

func (r *Reembedder) reembedItems(ctx context.Context, documentID string) error {
	items, err := r.items.GetItems(ctx, documentID)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}

	texts := make([]string, len(items))
	for i, item := range items {
		texts[i] = item.Description
	}
	vectors, err := r.embedTexts(ctx, texts)
	if err != nil {
		return fmt.Errorf("items: %w", err)
	}
	for i := range items {
		items[i].Vector = NormalizeVector(vectors[i])
	}

	_, err = r.items.UpsertItems(ctx, items...)
	return err
}

// embedTexts wraps one embedding call in the configured retry policy.
func (r *Reembedder) embedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	var vectors [][]float32

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = r.config.RetryDelay

	err := backoff.Retry(func() error {
		var err error
		vectors, err = r.embedder.EmbedTexts(ctx, texts)
		return err
	}, backoff.WithContext(backoff.WithMaxRetries(policy, uint64(r.config.MaxRetries)), ctx))
	if err != nil {
		return nil, fmt.Errorf("embedding failed after %d attempts: %w", r.config.MaxRetries+1, err)
	}

	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: expected %d, got %d", len(texts), len(vectors))
	}
	return vectors, nil
}
