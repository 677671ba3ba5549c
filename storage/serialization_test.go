package storage

import (
	"testing"
	"time"

	"github.com/scribelight/minutes/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalID(t *testing.T) {
	tests := []struct {
		name string
		id   core.ID
	}{
		{"zero ID", core.ID(0)},
		{"small ID", core.ID(42)},
		{"large ID", core.ID(18446744073709551615)}, // max uint64
		{"content-based ID", core.IDFromContent("test content")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalID(tt.id)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalID(data)
			require.NoError(t, err)
			assert.Equal(t, tt.id, decoded)
		})
	}
}

func TestUnmarshalID_Invalid(t *testing.T) {
	_, err := UnmarshalID([]byte{})
	assert.Error(t, err)
}

func TestMarshalUnmarshalJob(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	tests := []struct {
		name string
		job  *core.IngestionJob
	}{
		{
			name: "full job",
			job: &core.IngestionJob{
				SourceID:      "01KBAXRX7ZQJ4M2N8P5T3W6Y9C",
				DocumentID:    "a9b6e2ce-4f9e-4e93-8a19-55cf2d3b2f47",
				Stage:         core.StageSegmented,
				AttemptCount:  3,
				LastAttemptAt: now,
				ErrorMessage:  "embedding provider: timeout",
				ClaimedBy:     "worker-1",
				ClaimedUntil:  now.Add(time.Minute),
				InsertedAt:    now.Add(-time.Hour),
				UpdatedAt:     now,
			},
		},
		{
			name: "fresh job with zero times",
			job: &core.IngestionJob{
				SourceID:     "src-2",
				Stage:        core.StagePending,
				AttemptCount: 1,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalJob(tt.job)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalJob(data)
			require.NoError(t, err)
			assert.Equal(t, tt.job.SourceID, decoded.SourceID)
			assert.Equal(t, tt.job.DocumentID, decoded.DocumentID)
			assert.Equal(t, tt.job.Stage, decoded.Stage)
			assert.Equal(t, tt.job.AttemptCount, decoded.AttemptCount)
			assert.Equal(t, tt.job.ErrorMessage, decoded.ErrorMessage)
			assert.Equal(t, tt.job.ClaimedBy, decoded.ClaimedBy)
			assert.True(t, tt.job.LastAttemptAt.Equal(decoded.LastAttemptAt))
			assert.True(t, tt.job.ClaimedUntil.Equal(decoded.ClaimedUntil))
			assert.True(t, tt.job.InsertedAt.Equal(decoded.InsertedAt))
			assert.True(t, tt.job.UpdatedAt.Equal(decoded.UpdatedAt))
		})
	}
}

func TestMarshalUnmarshalDocument(t *testing.T) {
	raw := "# Weekly Sync\n## Transcript\n**Alice**: hi\n"
	doc := &core.Document{
		ID:              "a9b6e2ce-4f9e-4e93-8a19-55cf2d3b2f47",
		SourceID:        "01KBAXRX7ZQJ4M2N8P5T3W6Y9C",
		Title:           "Weekly Sync",
		StartedAt:       "2026-07-09",
		Participants:    []string{"Alice", "Bob"},
		Summary:         "Reviewed the plan.",
		ActionItems:     []string{"Alice drafts the doc"},
		RawURL:          "transcripts/weekly_01KBAXRX.md",
		RawContent:      raw,
		ContentHash:     core.HashContent(raw),
		SourceLink:      "https://app.fireflies.ai/view/x",
		DurationMinutes: 30,
		Keywords:        []string{"plan"},
		IDConfidence:    core.ConfidenceField,
		Status:          core.DocumentStatusRawIngested,
		InsertedAt:      time.Now().UTC().Truncate(time.Microsecond),
		UpdatedAt:       time.Now().UTC().Truncate(time.Microsecond),
	}

	decoded, err := UnmarshalDocument(MarshalDocument(doc))
	require.NoError(t, err)
	assert.Equal(t, doc.ID, decoded.ID)
	assert.Equal(t, doc.SourceID, decoded.SourceID)
	assert.Equal(t, doc.Participants, decoded.Participants)
	assert.Equal(t, doc.ContentHash, decoded.ContentHash)
	assert.Equal(t, doc.IDConfidence, decoded.IDConfidence)
	assert.Equal(t, doc.DurationMinutes, decoded.DurationMinutes)
	assert.True(t, doc.InsertedAt.Equal(decoded.InsertedAt))
}

func TestMarshalUnmarshalSegment(t *testing.T) {
	seg := &core.Segment{
		DocumentID:    "doc-1",
		SegmentIndex:  2,
		Title:         "Budget discussion",
		StartIndex:    10,
		EndIndex:      24,
		Summary:       "Budget was debated.",
		Decisions:     []string{"Approve Q3 budget"},
		Risks:         []string{"Vendor delay"},
		Tasks:         []string{"Confirm numbers"},
		SummaryVector: []float32{0.1, -0.5, 0.25},
	}

	decoded, err := UnmarshalSegment(MarshalSegment(seg))
	require.NoError(t, err)
	assert.Equal(t, seg.SegmentIndex, decoded.SegmentIndex)
	assert.Equal(t, seg.StartIndex, decoded.StartIndex)
	assert.Equal(t, seg.EndIndex, decoded.EndIndex)
	assert.Equal(t, seg.Decisions, decoded.Decisions)
	assert.Equal(t, seg.SummaryVector, decoded.SummaryVector)
}

func TestMarshalUnmarshalChunk(t *testing.T) {
	tests := []struct {
		name  string
		chunk *core.Chunk
	}{
		{
			name: "dialogue chunk",
			chunk: &core.Chunk{
				DocumentID:   "doc-1",
				ChunkIndex:   4,
				SegmentIndex: 2,
				DocType:      core.DocTypeChunk,
				Content:      "Alice: hello",
				ContentHash:  core.HashContent("Alice: hello"),
				Vector:       []float32{0.3, 0.1},
			},
		},
		{
			name: "meeting summary keeps negative segment index",
			chunk: &core.Chunk{
				DocumentID:   "doc-1",
				ChunkIndex:   9,
				SegmentIndex: core.MeetingSegmentIndex,
				DocType:      core.DocTypeMeetingSummary,
				Content:      "overview",
				ContentHash:  core.HashContent("overview"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decoded, err := UnmarshalChunk(MarshalChunk(tt.chunk))
			require.NoError(t, err)
			assert.Equal(t, tt.chunk.SegmentIndex, decoded.SegmentIndex)
			assert.Equal(t, tt.chunk.DocType, decoded.DocType)
			assert.Equal(t, tt.chunk.Content, decoded.Content)
			assert.Equal(t, tt.chunk.ContentHash, decoded.ContentHash)
			assert.Equal(t, tt.chunk.Vector, decoded.Vector)
		})
	}
}

func TestMarshalUnmarshalItem(t *testing.T) {
	item := &core.Item{
		DocumentID:  "doc-1",
		Type:        core.ItemTypeRisk,
		Description: "Vendor may slip the delivery date",
		Owner:       "Bob",
		Category:    "schedule",
		Likelihood:  "medium",
		Impact:      "high",
		Vector:      []float32{0.7},
		Status:      "open",
	}

	decoded, err := UnmarshalItem(MarshalItem(item))
	require.NoError(t, err)
	assert.Equal(t, item.Type, decoded.Type)
	assert.Equal(t, item.Description, decoded.Description)
	assert.Equal(t, item.Likelihood, decoded.Likelihood)
	assert.Equal(t, item.Impact, decoded.Impact)
	assert.Equal(t, item.Vector, decoded.Vector)
	assert.Equal(t, item.Status, decoded.Status)
}

func TestRetryBackoff(t *testing.T) {
	tests := []struct {
		attempts int
		want     time.Duration
	}{
		{0, 0},
		{1, 0},
		{2, 30 * time.Second},
		{3, time.Minute},
		{4, 2 * time.Minute},
		{8, 32 * time.Minute},
		{9, time.Hour},
		{50, time.Hour},
	}

	for _, tt := range tests {
		if got := RetryBackoff(tt.attempts); got != tt.want {
			t.Errorf("RetryBackoff(%d) = %v, want %v", tt.attempts, got, tt.want)
		}
	}
}
