package badger

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/scribelight/minutes/core"
	"github.com/scribelight/minutes/storage"
)

func testDocument(id, sourceID, rawContent string) *core.Document {
	return &core.Document{
		ID:           id,
		SourceID:     sourceID,
		Title:        "Weekly Sync",
		StartedAt:    "2026-03-10",
		Participants: []string{"Alice", "Bob"},
		RawContent:   rawContent,
		ContentHash:  core.HashContent(rawContent),
		Status:       core.DocumentStatusRawIngested,
	}
}

func TestDocumentRepository_AddAndGet(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()

	added, err := stores.Documents.AddDocument(ctx, testDocument("doc-1", "src-1", "hello"))
	if err != nil {
		t.Fatalf("AddDocument() error = %v", err)
	}
	if added.InsertedAt.IsZero() {
		t.Error("InsertedAt not set")
	}

	got, err := stores.Documents.GetDocument(ctx, "doc-1")
	if err != nil {
		t.Fatalf("GetDocument() error = %v", err)
	}
	if got.SourceID != "src-1" || got.Title != "Weekly Sync" {
		t.Errorf("got %+v", got)
	}
}

func TestDocumentRepository_DuplicateHash(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()

	if _, err := stores.Documents.AddDocument(ctx, testDocument("doc-1", "src-1", "same content")); err != nil {
		t.Fatalf("AddDocument() error = %v", err)
	}
	_, err := stores.Documents.AddDocument(ctx, testDocument("doc-2", "src-2", "same content"))
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("AddDocument() error = %v, want ErrDuplicateKey", err)
	}
}

func TestDocumentRepository_FindByContentHash(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()

	if _, err := stores.Documents.AddDocument(ctx, testDocument("doc-1", "src-1", "notes")); err != nil {
		t.Fatalf("AddDocument() error = %v", err)
	}

	got, err := stores.Documents.FindByContentHash(ctx, core.HashContent("notes"))
	if err != nil {
		t.Fatalf("FindByContentHash() error = %v", err)
	}
	if got.ID != "doc-1" {
		t.Errorf("ID = %q", got.ID)
	}

	_, err = stores.Documents.FindByContentHash(ctx, core.HashContent("other"))
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("FindByContentHash(miss) error = %v, want ErrNotFound", err)
	}
}

func TestDocumentRepository_FindBySourceID(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()

	if _, err := stores.Documents.AddDocument(ctx, testDocument("doc-1", "src-1", "a")); err != nil {
		t.Fatalf("AddDocument() error = %v", err)
	}

	got, err := stores.Documents.FindBySourceID(ctx, "src-1")
	if err != nil {
		t.Fatalf("FindBySourceID() error = %v", err)
	}
	if got.ID != "doc-1" {
		t.Errorf("ID = %q", got.ID)
	}
}

func TestDocumentRepository_UpdateStatus(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()

	if _, err := stores.Documents.AddDocument(ctx, testDocument("doc-1", "src-1", "a")); err != nil {
		t.Fatalf("AddDocument() error = %v", err)
	}
	if err := stores.Documents.UpdateStatus(ctx, "doc-1", core.DocumentStatusSegmented); err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}

	got, err := stores.Documents.GetDocument(ctx, "doc-1")
	if err != nil {
		t.Fatalf("GetDocument() error = %v", err)
	}
	if got.Status != core.DocumentStatusSegmented {
		t.Errorf("Status = %q", got.Status)
	}
}

func TestDocumentRepository_UpdateMovesIndexes(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()

	if _, err := stores.Documents.AddDocument(ctx, testDocument("doc-1", "src-1", "v1")); err != nil {
		t.Fatalf("AddDocument() error = %v", err)
	}

	if _, err := stores.Documents.UpdateDocument(ctx, testDocument("doc-1", "src-1", "v2")); err != nil {
		t.Fatalf("UpdateDocument() error = %v", err)
	}

	if _, err := stores.Documents.FindByContentHash(ctx, core.HashContent("v1")); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("stale hash index survived: err = %v", err)
	}
	got, err := stores.Documents.FindByContentHash(ctx, core.HashContent("v2"))
	if err != nil {
		t.Fatalf("FindByContentHash(new) error = %v", err)
	}
	if got.ID != "doc-1" {
		t.Errorf("ID = %q", got.ID)
	}
}

func testSegments(docID string, n int) []*core.Segment {
	segs := make([]*core.Segment, n)
	for i := range segs {
		segs[i] = &core.Segment{
			DocumentID:   docID,
			SegmentIndex: i,
			Title:        fmt.Sprintf("Topic %d", i),
			Summary:      fmt.Sprintf("Discussion of topic %d.", i),
			StartIndex:   i * 10,
			EndIndex:     i*10 + 9,
		}
	}
	return segs
}

func TestSegmentRepository_ReplaceAndGet(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()

	if _, err := stores.Segments.ReplaceSegments(ctx, "doc-1", testSegments("doc-1", 3)); err != nil {
		t.Fatalf("ReplaceSegments() error = %v", err)
	}

	got, err := stores.Segments.GetSegments(ctx, "doc-1")
	if err != nil {
		t.Fatalf("GetSegments() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d segments, want 3", len(got))
	}
	for i, seg := range got {
		if seg.SegmentIndex != i {
			t.Errorf("segment %d has index %d", i, seg.SegmentIndex)
		}
	}
}

func TestSegmentRepository_ReplaceShrinks(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()

	if _, err := stores.Segments.ReplaceSegments(ctx, "doc-1", testSegments("doc-1", 5)); err != nil {
		t.Fatalf("ReplaceSegments() error = %v", err)
	}
	// Re-running segmentation with fewer segments must not leave stale rows.
	if _, err := stores.Segments.ReplaceSegments(ctx, "doc-1", testSegments("doc-1", 2)); err != nil {
		t.Fatalf("ReplaceSegments() error = %v", err)
	}

	got, err := stores.Segments.GetSegments(ctx, "doc-1")
	if err != nil {
		t.Fatalf("GetSegments() error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("got %d segments, want 2", len(got))
	}
}

func TestSegmentRepository_UpdateSummaryVector(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()

	if _, err := stores.Segments.ReplaceSegments(ctx, "doc-1", testSegments("doc-1", 2)); err != nil {
		t.Fatalf("ReplaceSegments() error = %v", err)
	}
	if err := stores.Segments.UpdateSummaryVector(ctx, "doc-1", 1, []float32{0.1, 0.2, 0.3}); err != nil {
		t.Fatalf("UpdateSummaryVector() error = %v", err)
	}

	got, err := stores.Segments.GetSegments(ctx, "doc-1")
	if err != nil {
		t.Fatalf("GetSegments() error = %v", err)
	}
	if len(got[1].SummaryVector) != 3 {
		t.Errorf("SummaryVector = %v", got[1].SummaryVector)
	}
	if len(got[0].SummaryVector) != 0 {
		t.Errorf("wrong segment updated: %v", got[0].SummaryVector)
	}
}

func testChunk(docID string, idx int, content string) *core.Chunk {
	return &core.Chunk{
		DocumentID:   docID,
		ChunkIndex:   idx,
		SegmentIndex: 0,
		DocType:      core.DocTypeChunk,
		Content:      content,
		ContentHash:  core.HashContent(content),
	}
}

func TestChunkRepository_UpsertIdempotent(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()

	chunks := []*core.Chunk{
		testChunk("doc-1", 0, "Alice: morning everyone"),
		testChunk("doc-1", 1, "Bob: let's get started"),
	}
	if _, err := stores.Chunks.UpsertChunks(ctx, chunks...); err != nil {
		t.Fatalf("UpsertChunks() error = %v", err)
	}

	first, err := stores.Chunks.GetChunks(ctx, "doc-1")
	if err != nil {
		t.Fatalf("GetChunks() error = %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("got %d chunks, want 2", len(first))
	}
	insertedAt := first[0].InsertedAt

	time.Sleep(2 * time.Millisecond)
	if _, err := stores.Chunks.UpsertChunks(ctx, chunks...); err != nil {
		t.Fatalf("second UpsertChunks() error = %v", err)
	}

	second, err := stores.Chunks.GetChunks(ctx, "doc-1")
	if err != nil {
		t.Fatalf("GetChunks() error = %v", err)
	}
	if len(second) != 2 {
		t.Errorf("re-upsert duplicated chunks: got %d", len(second))
	}
	if !second[0].InsertedAt.Equal(insertedAt) {
		t.Errorf("InsertedAt changed on re-upsert")
	}
}

func TestChunkRepository_OrderedByChunkIndex(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()

	// Insert out of order; hash-ordered keys scramble them further.
	chunks := []*core.Chunk{
		testChunk("doc-1", 2, "third part of the discussion"),
		testChunk("doc-1", 0, "first part of the discussion"),
		testChunk("doc-1", 1, "second part of the discussion"),
	}
	if _, err := stores.Chunks.UpsertChunks(ctx, chunks...); err != nil {
		t.Fatalf("UpsertChunks() error = %v", err)
	}

	got, err := stores.Chunks.GetChunks(ctx, "doc-1")
	if err != nil {
		t.Fatalf("GetChunks() error = %v", err)
	}
	for i, c := range got {
		if c.ChunkIndex != i {
			t.Errorf("position %d has ChunkIndex %d", i, c.ChunkIndex)
		}
	}
}

func TestChunkRepository_FindSimilar(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()

	a := testChunk("doc-1", 0, "budget planning")
	a.Vector = []float32{1, 0, 0}
	b := testChunk("doc-1", 1, "hiring pipeline")
	b.Vector = []float32{0, 1, 0}
	c := testChunk("doc-1", 2, "unembedded chunk")
	if _, err := stores.Chunks.UpsertChunks(ctx, a, b, c); err != nil {
		t.Fatalf("UpsertChunks() error = %v", err)
	}

	results, err := stores.Chunks.FindSimilar(ctx, []float32{0.9, 0.1, 0}, 0.5, 10)
	if err != nil {
		t.Fatalf("FindSimilar() error = %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].Chunk.ContentHash != a.ContentHash {
		t.Errorf("wrong chunk ranked first: %q", results[0].Chunk.Content)
	}
	if results[0].Score < 0.5 {
		t.Errorf("Score = %f", results[0].Score)
	}
}

func testItem(docID string, itemType core.ItemType, description string) *core.Item {
	return &core.Item{
		DocumentID:  docID,
		Type:        itemType,
		Description: description,
	}
}

func TestItemRepository_UpsertPreservesStatus(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()

	item := testItem("doc-1", core.ItemTypeTask, "Ship the Q2 report")
	item.Status = "in_progress"
	if _, err := stores.Items.UpsertItems(ctx, item); err != nil {
		t.Fatalf("UpsertItems() error = %v", err)
	}

	// A re-extraction arrives with the default status; the stored one,
	// set by a downstream consumer, must survive.
	again := testItem("doc-1", core.ItemTypeTask, "Ship the Q2 report")
	again.Status = "open"
	if _, err := stores.Items.UpsertItems(ctx, again); err != nil {
		t.Fatalf("second UpsertItems() error = %v", err)
	}

	got, err := stores.Items.GetItems(ctx, "doc-1")
	if err != nil {
		t.Fatalf("GetItems() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d items, want 1", len(got))
	}
	if got[0].Status != "in_progress" {
		t.Errorf("Status = %q, want in_progress", got[0].Status)
	}
}

func TestItemRepository_GetItemsByType(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()

	items := []*core.Item{
		testItem("doc-1", core.ItemTypeTask, "Follow up with legal"),
		testItem("doc-1", core.ItemTypeDecision, "Adopt the new vendor"),
		testItem("doc-1", core.ItemTypeTask, "Schedule the retro"),
	}
	if _, err := stores.Items.UpsertItems(ctx, items...); err != nil {
		t.Fatalf("UpsertItems() error = %v", err)
	}

	tasks, err := stores.Items.GetItemsByType(ctx, "doc-1", core.ItemTypeTask)
	if err != nil {
		t.Fatalf("GetItemsByType() error = %v", err)
	}
	if len(tasks) != 2 {
		t.Errorf("got %d tasks, want 2", len(tasks))
	}
}

func TestObjectStore_PutGetList(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()

	paths := []string{
		"transcripts/2026/a.md",
		"transcripts/2026/b.md",
		"transcripts/2026/c.md",
		"other/x.md",
	}
	for _, p := range paths {
		if err := stores.Objects.Put(ctx, p, []byte("content of "+p)); err != nil {
			t.Fatalf("Put(%s) error = %v", p, err)
		}
	}

	data, err := stores.Objects.Get(ctx, "transcripts/2026/b.md")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(data) != "content of transcripts/2026/b.md" {
		t.Errorf("data = %q", data)
	}

	_, err = stores.Objects.Get(ctx, "transcripts/missing.md")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Get(miss) error = %v, want ErrNotFound", err)
	}

	page, err := stores.Objects.List(ctx, "transcripts/", 2, "")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(page) != 2 || page[0] != "transcripts/2026/a.md" {
		t.Fatalf("first page = %v", page)
	}

	next, err := stores.Objects.List(ctx, "transcripts/", 2, page[len(page)-1])
	if err != nil {
		t.Fatalf("List(next) error = %v", err)
	}
	if len(next) != 1 || next[0] != "transcripts/2026/c.md" {
		t.Errorf("second page = %v", next)
	}
}
