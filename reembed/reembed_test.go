package reembed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scribelight/minutes/ai/mock"
	"github.com/scribelight/minutes/core"
	"github.com/scribelight/minutes/storage/badger"
)

func TestNormalizeVector(t *testing.T) {
	tests := []struct {
		name string
		in   []float32
		want []float32
	}{
		{name: "unit axis", in: []float32{3, 4}, want: []float32{0.6, 0.8}},
		{name: "already unit", in: []float32{1, 0}, want: []float32{1, 0}},
		{name: "zero vector stays zero", in: []float32{0, 0, 0}, want: []float32{0, 0, 0}},
		{name: "empty", in: nil, want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeVector(tt.in)
			require.Len(t, got, len(tt.want))
			for i := range tt.want {
				assert.InDelta(t, tt.want[i], got[i], 1e-6)
			}
		})
	}
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	bad := DefaultConfig()
	bad.BatchSize = 0
	require.ErrorIs(t, bad.Validate(), ErrInvalidBatchSize)

	bad = DefaultConfig()
	bad.MaxRetries = 0
	require.ErrorIs(t, bad.Validate(), ErrInvalidMaxRetries)
}

func newTestStores(t *testing.T) *badger.Stores {
	t.Helper()
	stores, err := badger.NewMemoryStores()
	require.NoError(t, err)
	t.Cleanup(func() { stores.Close() })
	return stores
}

func addTestDocument(t *testing.T, stores *badger.Stores, n int) *core.Document {
	t.Helper()
	content := fmt.Sprintf("# Meeting %d\n\ncontent %d", n, n)
	doc := &core.Document{
		ID:          fmt.Sprintf("doc-%03d", n),
		SourceID:    fmt.Sprintf("SRC%017d", n),
		Title:       fmt.Sprintf("Meeting %d", n),
		RawContent:  content,
		ContentHash: core.HashContent(content),
		Status:      core.DocumentStatusRawIngested,
	}
	_, err := stores.Documents.AddDocument(context.Background(), doc)
	require.NoError(t, err)
	return doc
}

func TestDocumentIterator_PagesInOrder(t *testing.T) {
	stores := newTestStores(t)
	for i := range 5 {
		addTestDocument(t, stores, i)
	}

	it := NewDocumentIterator(stores.Documents, 2)

	var pages [][]string
	err := it.ForEach(context.Background(), func(docs []*core.Document) error {
		var ids []string
		for _, d := range docs {
			ids = append(ids, d.ID)
		}
		pages = append(pages, ids)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, [][]string{
		{"doc-000", "doc-001"},
		{"doc-002", "doc-003"},
		{"doc-004"},
	}, pages)

	total, err := it.Count(context.Background())
	require.NoError(t, err)
	require.Equal(t, 5, total)
}

func TestDocumentIterator_StopsOnError(t *testing.T) {
	stores := newTestStores(t)
	for i := range 4 {
		addTestDocument(t, stores, i)
	}

	it := NewDocumentIterator(stores.Documents, 2)
	calls := 0
	err := it.ForEach(context.Background(), func(docs []*core.Document) error {
		calls++
		return errors.New("stop here")
	})
	require.EqualError(t, err, "stop here")
	require.Equal(t, 1, calls)
}

func TestProgressTracker(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 10, 5)
	tracker.Start()

	tracker.Increment(3)
	assert.Empty(t, buf.String(), "below report interval")

	tracker.Increment(3)
	assert.Contains(t, buf.String(), "6/10")

	tracker.Finish()
	assert.Contains(t, buf.String(), "10/10")
	assert.Contains(t, buf.String(), "100.0%")
}

func TestReembedder_RewritesVectors(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()

	doc := addTestDocument(t, stores, 1)

	_, err := stores.Segments.ReplaceSegments(ctx, doc.ID, []*core.Segment{{
		DocumentID:   doc.ID,
		SegmentIndex: 0,
		Title:        "Kickoff",
		StartIndex:   0,
		EndIndex:     1,
		Summary:      "Project kickoff discussion.",
	}})
	require.NoError(t, err)

	stale := []float32{9, 9, 9}
	_, err = stores.Chunks.UpsertChunks(ctx, &core.Chunk{
		DocumentID:   doc.ID,
		ChunkIndex:   0,
		SegmentIndex: 0,
		DocType:      core.DocTypeChunk,
		Content:      "We are kicking off the project this week.",
		ContentHash:  core.HashContent("We are kicking off the project this week."),
		Vector:       stale,
	})
	require.NoError(t, err)

	_, err = stores.Items.UpsertItems(ctx, &core.Item{
		DocumentID:  doc.ID,
		Type:        core.ItemTypeTask,
		Description: "Schedule the follow-up",
		Status:      "open",
		Vector:      stale,
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	embedder := mock.NewMockEmbedder()
	r := NewReembedder(stores.Documents, stores.Segments, stores.Chunks,
		stores.Items, embedder, nil, &buf)

	require.NoError(t, r.Run(ctx))

	chunks, err := stores.Chunks.GetChunks(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	require.NotEqual(t, stale, chunks[0].Vector)
	assertUnitLength(t, chunks[0].Vector)

	segments, err := stores.Segments.GetSegments(ctx, doc.ID)
	require.NoError(t, err)
	require.NotEmpty(t, segments[0].SummaryVector)
	assertUnitLength(t, segments[0].SummaryVector)

	items, err := stores.Items.GetItems(ctx, doc.ID)
	require.NoError(t, err)
	require.NotEqual(t, stale, items[0].Vector)

	assert.Contains(t, buf.String(), "Reembedding complete")
}

func TestReembedder_RetriesTransientFailures(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()

	doc := addTestDocument(t, stores, 2)
	_, err := stores.Chunks.UpsertChunks(ctx, &core.Chunk{
		DocumentID:  doc.ID,
		ChunkIndex:  0,
		DocType:     core.DocTypeChunk,
		Content:     "retry me",
		ContentHash: core.HashContent("retry me"),
	})
	require.NoError(t, err)

	attempts := 0
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		attempts++
		if attempts < 3 {
			return nil, errors.New("transient")
		}
		vectors := make([][]float32, len(texts))
		for i := range vectors {
			vectors[i] = []float32{1, 0, 0}
		}
		return vectors, nil
	}

	config := DefaultConfig()
	config.RetryDelay = time.Millisecond

	var buf bytes.Buffer
	r := NewReembedder(stores.Documents, stores.Segments, stores.Chunks,
		stores.Items, embedder, config, &buf)

	require.NoError(t, r.Run(ctx))
	require.Equal(t, 3, attempts)
}

func assertUnitLength(t *testing.T, v []float32) {
	t.Helper()
	var sum float32
	for _, x := range v {
		sum += x * x
	}
	assert.InDelta(t, 1.0, sum, 1e-4)
}
