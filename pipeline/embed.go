package pipeline

import (
	"context"
	"fmt"

	"github.com/scribelight/minutes/chunker"
	"github.com/scribelight/minutes/core"
	"github.com/scribelight/minutes/transcript"
)

// EmbedDocument runs the embed stage for one document: build chunks from the
// stored segments, advance to the chunked sub-state, embed every chunk and
// segment summary, and persist the vectors. Chunks upsert by content hash,
// so a crash between chunked and embedded re-runs cleanly.
func (p *Pipeline) EmbedDocument(ctx context.Context, documentID string) error {
	doc, err := p.documents.GetDocument(ctx, documentID)
	if err != nil {
		return err
	}
	segments, err := p.segments.GetSegments(ctx, documentID)
	if err != nil {
		return err
	}
	if len(segments) == 0 {
		return fmt.Errorf("document %s has no segments", documentID)
	}

	parsed, err := transcript.Parse(doc.RawContent)
	if err != nil {
		return err
	}
	if len(parsed.Lines) == 0 {
		return fmt.Errorf("%w: %s", ErrNoTranscriptLines, documentID)
	}

	chunks := chunker.BuildChunks(documentID, segments, parsed.Lines, doc.Summary)
	if len(chunks) == 0 {
		return fmt.Errorf("document %s produced no chunks", documentID)
	}

	if _, err := p.ledger.Advance(ctx, doc.SourceID, core.StageChunked, documentID, ""); err != nil {
		return err
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Content
	}
	vectors, err := p.provider.Embedder().EmbedTexts(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding chunks for %s: %w", documentID, err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}
	for i, chunk := range chunks {
		chunk.Vector = vectors[i]
	}

	if _, err := p.chunks.UpsertChunks(ctx, chunks...); err != nil {
		return err
	}

	if err := p.embedSegmentSummaries(ctx, documentID, segments); err != nil {
		return err
	}

	if _, err := p.ledger.Advance(ctx, doc.SourceID, core.StageEmbedded, documentID, ""); err != nil {
		return err
	}
	if err := p.documents.UpdateStatus(ctx, documentID, core.DocumentStatusEmbedded); err != nil {
		return err
	}

	p.logger.Info("embedded document",
		"document_id", documentID,
		"chunks", len(chunks),
		"segments", len(segments))
	return nil
}

// embedSegmentSummaries attaches a summary vector to every segment, using
// the title when a segment has no summary text.
func (p *Pipeline) embedSegmentSummaries(ctx context.Context, documentID string, segments []*core.Segment) error {
	texts := make([]string, len(segments))
	for i, seg := range segments {
		text := seg.Summary
		if text == "" {
			text = seg.Title
		}
		texts[i] = text
	}

	vectors, err := p.provider.Embedder().EmbedTexts(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding segment summaries for %s: %w", documentID, err)
	}
	if len(vectors) != len(segments) {
		return fmt.Errorf("embedder returned %d vectors for %d segments", len(vectors), len(segments))
	}

	for i, seg := range segments {
		if err := p.segments.UpdateSummaryVector(ctx, documentID, seg.SegmentIndex, vectors[i]); err != nil {
			return err
		}
	}
	return nil
}
