package search

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/scribelight/minutes/ai"
	"github.com/scribelight/minutes/core"
	"github.com/scribelight/minutes/storage"
)

// similarityFloor is the minimum cosine similarity for a chunk to be
// considered a candidate at all.
const similarityFloor = 0.60

// verbatimBoost is added to a hit's score when the chunk text contains
// every significant query word.
const verbatimBoost = 0.3

// candidateMultiplier oversamples the vector search so the verbatim
// boost can promote results that would otherwise fall just outside
// the requested window.
const candidateMultiplier = 3

// Hit is one search result: a scored chunk plus enough of its parent
// document to render the result.
type Hit struct {
	Chunk         *core.Chunk
	Score         float32
	DocumentTitle string
	SourceID      string
	StartedAt     string
}

// Searcher runs semantic queries against the chunk store.
type Searcher struct {
	chunks    storage.ChunkRepository
	documents storage.DocumentRepository
	embedder  ai.Embedder
	logger    *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(
	chunks storage.ChunkRepository,
	documents storage.DocumentRepository,
	embedder ai.Embedder,
	opts ...Option,
) (*Searcher, error) {
	if chunks == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if documents == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	s := &Searcher{
		chunks:    chunks,
		documents: documents,
		embedder:  embedder,
		logger:    slog.Default().With("component", "searcher"),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Search returns up to maxHits chunks relevant to the query, ranked by
// score. The score is the cosine similarity of the chunk's vector to
// the query embedding, plus a fixed boost when the chunk contains every
// significant query word verbatim.
func (s *Searcher) Search(ctx context.Context, query string, maxHits int) ([]*Hit, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	if maxHits <= 0 {
		maxHits = 10
	}

	embedding, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		s.logger.Error("error generating embedding for query", "query", query, "err", err)
		return nil, err
	}

	matches, err := s.chunks.FindSimilar(ctx, embedding, similarityFloor, maxHits*candidateMultiplier)
	if err != nil {
		s.logger.Error("error querying for similar chunks", "err", err)
		return nil, err
	}
	if len(matches) == 0 {
		return []*Hit{}, nil
	}

	hits := make([]*Hit, 0, len(matches))
	titles := make(map[string]*core.Document)
	for _, match := range matches {
		score := match.Score
		if containsAllQueryWords(match.Chunk.Content, query) {
			score += verbatimBoost
		}

		hit := &Hit{Chunk: match.Chunk, Score: score}

		doc, ok := titles[match.Chunk.DocumentID]
		if !ok {
			doc, err = s.documents.GetDocument(ctx, match.Chunk.DocumentID)
			if err != nil {
				s.logger.Warn("failed to load document for hit",
					"documentID", match.Chunk.DocumentID, "err", err)
			}
			titles[match.Chunk.DocumentID] = doc
		}
		if doc != nil {
			hit.DocumentTitle = doc.Title
			hit.SourceID = doc.SourceID
			hit.StartedAt = doc.StartedAt
		}

		hits = append(hits, hit)
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
	if len(hits) > maxHits {
		hits = hits[:maxHits]
	}

	return hits, nil
}
