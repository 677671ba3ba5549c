package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/scribelight/minutes/ai"
	"github.com/scribelight/minutes/ai/mock"
	"github.com/scribelight/minutes/core"
	"github.com/scribelight/minutes/storage/badger"
)

func testMarkdown(sourceID, extra string) string {
	return fmt.Sprintf(`# Weekly Sync

**Date:** 01/15/2026 10:00
**Duration:** 30 minutes
**Participants:** alice@example.com, bob@example.com
**Fireflies ID:** %s

## Summary

The team reviewed the release plan.

## Action Items

- Ship the release notes

## Transcript

**Alice:**
We need to cut the release this week.
**Bob:**
I will prepare the notes today.
Also we should fix the login bug before then.%s
`, sourceID, extra)
}

func newTestPipeline(t *testing.T, opts ...Option) (*Pipeline, *badger.Stores, *mock.MockProvider) {
	t.Helper()

	stores, err := badger.NewMemoryStores()
	require.NoError(t, err)
	t.Cleanup(func() { stores.Close() })

	provider := mock.NewMockProvider()

	opts = append([]Option{WithWorkerID("test-worker")}, opts...)
	p, err := New(stores.Ledger, stores.Documents, stores.Segments,
		stores.Chunks, stores.Items, stores.Objects, provider, opts...)
	require.NoError(t, err)
	t.Cleanup(p.Release)

	return p, stores, provider
}

func TestIngestMarkdown(t *testing.T) {
	p, stores, _ := newTestPipeline(t)
	ctx := context.Background()

	result, err := p.IngestMarkdown(ctx, testMarkdown("01K5TESTID0000000001", ""))
	require.NoError(t, err)
	require.Equal(t, "01K5TESTID0000000001", result.SourceID)
	require.NotEmpty(t, result.DocumentID)
	require.False(t, result.Duplicate)
	require.Equal(t, "2026/01/01K5TESTID0000000001.md", result.StorePath)

	doc, err := stores.Documents.GetDocument(ctx, result.DocumentID)
	require.NoError(t, err)
	require.Equal(t, "Weekly Sync", doc.Title)
	require.Equal(t, core.DocumentStatusRawIngested, doc.Status)
	require.Equal(t, []string{"Ship the release notes"}, doc.ActionItems)

	job, err := stores.Ledger.Get(ctx, result.SourceID)
	require.NoError(t, err)
	require.Equal(t, core.StageRawIngested, job.Stage)
	require.Equal(t, result.DocumentID, job.DocumentID)

	raw, err := stores.Objects.Get(ctx, result.StorePath)
	require.NoError(t, err)
	require.Contains(t, string(raw), "# Weekly Sync")
}

func TestIngestMarkdown_Duplicate(t *testing.T) {
	p, stores, _ := newTestPipeline(t)
	ctx := context.Background()

	markdown := testMarkdown("01K5TESTID0000000002", "")

	first, err := p.IngestMarkdown(ctx, markdown)
	require.NoError(t, err)

	second, err := p.IngestMarkdown(ctx, markdown)
	require.NoError(t, err)
	require.True(t, second.Duplicate)
	require.Equal(t, first.DocumentID, second.DocumentID)

	docs, err := stores.Documents.FindBySourceID(ctx, first.SourceID)
	require.NoError(t, err)
	require.Len(t, docs, 1)
}

func TestProcessPending_FullRun(t *testing.T) {
	p, stores, _ := newTestPipeline(t)
	ctx := context.Background()

	result, err := p.IngestMarkdown(ctx, testMarkdown("01K5TESTID0000000003", ""))
	require.NoError(t, err)

	// Each poll services one park point; a full document needs three.
	for _, stage := range []core.Stage{core.StageRawIngested, core.StageSegmented, core.StageEmbedded} {
		batch, err := p.ProcessPending(ctx, stage, 10)
		require.NoError(t, err)
		require.Equal(t, 1, batch.Processed)
		require.True(t, batch.Results[0].Success, "stage %s: %s", stage, batch.Results[0].Error)
	}

	job, err := stores.Ledger.Get(ctx, result.SourceID)
	require.NoError(t, err)
	require.Equal(t, core.StageDone, job.Stage)
	require.False(t, job.Claimed(time.Now().UTC()))

	doc, err := stores.Documents.GetDocument(ctx, result.DocumentID)
	require.NoError(t, err)
	require.Equal(t, core.DocumentStatusComplete, doc.Status)

	segments, err := stores.Segments.GetSegments(ctx, result.DocumentID)
	require.NoError(t, err)
	require.Len(t, segments, 1)
	require.NotEmpty(t, segments[0].SummaryVector)

	chunks, err := stores.Chunks.GetChunks(ctx, result.DocumentID)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)
	for _, chunk := range chunks {
		require.NotEmpty(t, chunk.Vector)
	}

	tasks, err := stores.Items.GetItemsByType(ctx, result.DocumentID, core.ItemTypeTask)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	require.Equal(t, "Ship the release notes", tasks[0].Description)
	require.Equal(t, "open", tasks[0].Status)
}

func TestProcessDocument_RunsToDone(t *testing.T) {
	p, stores, _ := newTestPipeline(t)
	ctx := context.Background()

	result, err := p.IngestMarkdown(ctx, testMarkdown("01K5TESTID0000000004", ""))
	require.NoError(t, err)

	require.NoError(t, p.ProcessDocument(ctx, result.SourceID))

	job, err := stores.Ledger.Get(ctx, result.SourceID)
	require.NoError(t, err)
	require.Equal(t, core.StageDone, job.Stage)
}

func TestProcessPending_FailureParksJob(t *testing.T) {
	p, stores, provider := newTestPipeline(t)
	ctx := context.Background()

	good, err := p.IngestMarkdown(ctx, testMarkdown("01K5TESTID0000000005", ""))
	require.NoError(t, err)
	bad, err := p.IngestMarkdown(ctx, testMarkdown("01K5TESTID0000000006", "\nFAILME"))
	require.NoError(t, err)

	provider.GetMockSegmenter().SegmentTranscriptFunc = func(ctx context.Context, transcript string, lineCount int) (*ai.SegmentationResult, error) {
		if strings.Contains(transcript, "FAILME") {
			return nil, errors.New("model unavailable")
		}
		return &ai.SegmentationResult{
			Segments: []ai.SegmentPlan{{Title: "Discussion", Summary: "All of it.", StartLine: 0, EndLine: lineCount - 1}},
		}, nil
	}

	batch, err := p.ProcessPending(ctx, core.StageRawIngested, 10)
	require.NoError(t, err)
	require.Equal(t, 2, batch.Processed)

	outcomes := make(map[string]JobResult)
	for _, r := range batch.Results {
		outcomes[r.SourceID] = r
	}
	require.True(t, outcomes[good.SourceID].Success)
	require.False(t, outcomes[bad.SourceID].Success)
	require.Contains(t, outcomes[bad.SourceID].Error, "model unavailable")

	goodJob, err := stores.Ledger.Get(ctx, good.SourceID)
	require.NoError(t, err)
	require.Equal(t, core.StageSegmented, goodJob.Stage)

	badJob, err := stores.Ledger.Get(ctx, bad.SourceID)
	require.NoError(t, err)
	require.Equal(t, core.StageError, badJob.Stage)
	require.Contains(t, badJob.ErrorMessage, "model unavailable")

	// The parked job is out of rotation until reset.
	batch, err = p.ProcessPending(ctx, core.StageRawIngested, 10)
	require.NoError(t, err)
	require.Equal(t, 0, batch.Processed)
}

func TestResetErrors_ReturnsJobToRotation(t *testing.T) {
	p, stores, provider := newTestPipeline(t)
	ctx := context.Background()

	result, err := p.IngestMarkdown(ctx, testMarkdown("01K5TESTID0000000007", ""))
	require.NoError(t, err)

	provider.GetMockSegmenter().SegmentTranscriptFunc = func(ctx context.Context, transcript string, lineCount int) (*ai.SegmentationResult, error) {
		return nil, errors.New("boom")
	}
	_, err = p.ProcessPending(ctx, core.StageRawIngested, 10)
	require.NoError(t, err)

	moved, err := p.ResetErrors(ctx, core.StageRawIngested)
	require.NoError(t, err)
	require.Equal(t, 1, moved)

	job, err := stores.Ledger.Get(ctx, result.SourceID)
	require.NoError(t, err)
	require.Equal(t, core.StageRawIngested, job.Stage)
	require.Empty(t, job.ErrorMessage)

	provider.GetMockSegmenter().Reset()
	require.NoError(t, p.SegmentDocument(ctx, result.DocumentID))
}

func TestProcessPending_NoBatchWorkStage(t *testing.T) {
	p, _, _ := newTestPipeline(t)

	_, err := p.ProcessPending(context.Background(), core.StagePending, 10)
	require.Error(t, err)
}

func TestProcessPending_JobWithoutDocument(t *testing.T) {
	p, stores, _ := newTestPipeline(t)
	ctx := context.Background()

	_, err := stores.Ledger.Advance(ctx, "01K5TESTID0000000008", core.StageRawIngested, "", "")
	require.NoError(t, err)

	batch, err := p.ProcessPending(ctx, core.StageRawIngested, 10)
	require.NoError(t, err)
	require.Equal(t, 1, batch.Processed)
	require.False(t, batch.Results[0].Success)
	require.Contains(t, batch.Results[0].Error, ErrJobWithoutDocument.Error())
}
