package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// Over-long inputs are truncated to the configured maximum before the
	// call; the vector always reflects the truncated text.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a
	// batch. The returned slice contains embeddings in the same order as the
	// input texts. Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Segmenter splits a transcript into topical segments using a language model.
// Implementations must be thread-safe for concurrent use.
type Segmenter interface {
	// SegmentTranscript takes a numbered transcript rendering and the total
	// line count and returns an overall meeting summary plus an ordered list
	// of topical segments referencing inclusive line-index ranges.
	//
	// The returned ranges are best-effort model output; callers are expected
	// to validate and repair them before persisting.
	SegmentTranscript(ctx context.Context, transcript string, lineCount int) (*SegmentationResult, error)
}

// ItemNormalizer turns raw extracted strings into normalized structured items.
// Implementations must be thread-safe for concurrent use.
type ItemNormalizer interface {
	// NormalizeItems deduplicates and enriches the raw decision, risk, and
	// task strings collected from a meeting, and infers follow-up
	// opportunities from the full set. Empty inputs yield empty outputs.
	NormalizeItems(ctx context.Context, input *RawItems) (*NormalizedItems, error)
}

// Provider aggregates AI services for convenient initialization and
// lifecycle management. A provider creates and manages its services,
// ensuring they share configuration and resources appropriately.
type Provider interface {
	// Embedder returns the text embedding service.
	Embedder() Embedder

	// Segmenter returns the transcript segmentation service.
	Segmenter() Segmenter

	// ItemNormalizer returns the structured-item normalization service.
	ItemNormalizer() ItemNormalizer

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
