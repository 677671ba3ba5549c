package search

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/scribelight/minutes/ai/mock"
	"github.com/scribelight/minutes/core"
	"github.com/scribelight/minutes/storage/badger"
)

func TestSignificantWords(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{name: "drops stop words", in: "the budget for the quarter", want: []string{"budget", "quarter"}},
		{name: "strips punctuation", in: "Budget, (quarter)!", want: []string{"budget", "quarter"}},
		{name: "all stop words", in: "the a an", want: []string{}},
		{name: "keeps numbers", in: "Q3 targets", want: []string{"q3", "targets"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, significantWords(tt.in))
		})
	}
}

func TestContainsAllQueryWords(t *testing.T) {
	text := "Alice proposed moving the launch to October."

	require.True(t, containsAllQueryWords(text, "the October launch"))
	require.True(t, containsAllQueryWords(text, "alice proposed"))
	require.False(t, containsAllQueryWords(text, "October budget"))
	require.False(t, containsAllQueryWords(text, "the a of"), "all stop words never matches")
}

func newTestSearcher(t *testing.T) (*Searcher, *badger.Stores, *mock.MockEmbedder) {
	t.Helper()
	stores, err := badger.NewMemoryStores()
	require.NoError(t, err)
	t.Cleanup(func() { stores.Close() })

	embedder := mock.NewMockEmbedder()
	s, err := NewSearcher(stores.Chunks, stores.Documents, embedder)
	require.NoError(t, err)
	return s, stores, embedder
}

func addSearchDocument(t *testing.T, stores *badger.Stores, id, title string) {
	t.Helper()
	content := "# " + title
	_, err := stores.Documents.AddDocument(context.Background(), &core.Document{
		ID:          id,
		SourceID:    "SRC" + id,
		Title:       title,
		StartedAt:   "01/15/2026",
		RawContent:  content,
		ContentHash: core.HashContent(content),
		Status:      core.DocumentStatusComplete,
	})
	require.NoError(t, err)
}

func addSearchChunk(t *testing.T, stores *badger.Stores, documentID string, index int, content string, vector []float32) {
	t.Helper()
	_, err := stores.Chunks.UpsertChunks(context.Background(), &core.Chunk{
		DocumentID:  documentID,
		ChunkIndex:  index,
		DocType:     core.DocTypeChunk,
		Content:     content,
		ContentHash: core.HashContent(content),
		Vector:      vector,
	})
	require.NoError(t, err)
}

func TestNewSearcher_Validation(t *testing.T) {
	stores, err := badger.NewMemoryStores()
	require.NoError(t, err)
	defer stores.Close()
	embedder := mock.NewMockEmbedder()

	_, err = NewSearcher(nil, stores.Documents, embedder)
	require.ErrorIs(t, err, ErrChunkRepositoryRequired)

	_, err = NewSearcher(stores.Chunks, nil, embedder)
	require.ErrorIs(t, err, ErrDocumentRepositoryRequired)

	_, err = NewSearcher(stores.Chunks, stores.Documents, nil)
	require.ErrorIs(t, err, ErrEmbedderRequired)
}

func TestSearch_RanksBySimilarity(t *testing.T) {
	s, stores, embedder := newTestSearcher(t)
	ctx := context.Background()

	addSearchDocument(t, stores, "doc-1", "Planning Sync")
	addSearchChunk(t, stores, "doc-1", 0, "Closest match.", []float32{1, 0, 0})
	addSearchChunk(t, stores, "doc-1", 1, "Second best.", []float32{0.8, 0.6, 0})
	addSearchChunk(t, stores, "doc-1", 2, "Unrelated topic.", []float32{0, 1, 0})

	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0, 0}, nil
	}

	hits, err := s.Search(ctx, "deployment schedule", 10)
	require.NoError(t, err)
	require.Len(t, hits, 2, "chunk below the similarity floor is excluded")
	require.Equal(t, "Closest match.", hits[0].Chunk.Content)
	require.Equal(t, "Second best.", hits[1].Chunk.Content)
	require.Greater(t, hits[0].Score, hits[1].Score)

	require.Equal(t, "Planning Sync", hits[0].DocumentTitle)
	require.Equal(t, "SRCdoc-1", hits[0].SourceID)
	require.Equal(t, "01/15/2026", hits[0].StartedAt)
}

func TestSearch_VerbatimBoostPromotesExactMatch(t *testing.T) {
	s, stores, embedder := newTestSearcher(t)
	ctx := context.Background()

	addSearchDocument(t, stores, "doc-1", "Budget Review")
	// Higher similarity but no query words.
	addSearchChunk(t, stores, "doc-1", 0,
		"General discussion about revenue.", []float32{0.9, 0.43589, 0})
	// Lower similarity but contains every query word verbatim.
	addSearchChunk(t, stores, "doc-1", 1,
		"The marketing budget was approved.", []float32{0.7, 0.71414, 0})

	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0, 0}, nil
	}

	hits, err := s.Search(ctx, "marketing budget approved", 10)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	require.Equal(t, "The marketing budget was approved.", hits[0].Chunk.Content)
	require.InDelta(t, 1.0, hits[0].Score, 0.01)
}

func TestSearch_LimitsHits(t *testing.T) {
	s, stores, embedder := newTestSearcher(t)
	ctx := context.Background()

	addSearchDocument(t, stores, "doc-1", "Standup")
	for i := range 5 {
		addSearchChunk(t, stores, "doc-1", i,
			fmt.Sprintf("Update number %d.", i), []float32{1, 0, 0})
	}

	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0, 0}, nil
	}

	hits, err := s.Search(ctx, "status update", 3)
	require.NoError(t, err)
	require.Len(t, hits, 3)
}

func TestSearch_EmptyQuery(t *testing.T) {
	s, _, _ := newTestSearcher(t)

	_, err := s.Search(context.Background(), "   ", 10)
	require.ErrorIs(t, err, ErrEmptyQuery)
}

func TestSearch_NoMatches(t *testing.T) {
	s, _, embedder := newTestSearcher(t)

	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0, 0}, nil
	}

	hits, err := s.Search(context.Background(), "anything at all", 10)
	require.NoError(t, err)
	require.Empty(t, hits)
}
