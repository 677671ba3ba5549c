package mock

import (
	"context"

	"github.com/scribelight/minutes/ai"
)

// MockSegmenter is a test double for ai.Segmenter.
// It allows custom behavior injection via function fields.
type MockSegmenter struct {
	// SegmentTranscriptFunc is called by SegmentTranscript if set.
	// If nil, a single segment covering the whole transcript is returned.
	SegmentTranscriptFunc func(ctx context.Context, transcript string, lineCount int) (*ai.SegmentationResult, error)

	callCount int
}

// NewMockSegmenter creates a mock segmenter with default behavior.
// Note: Returns concrete type to allow test assertions.
func NewMockSegmenter() *MockSegmenter {
	return &MockSegmenter{}
}

// SegmentTranscript returns a single whole-transcript segment by default.
func (m *MockSegmenter) SegmentTranscript(ctx context.Context, transcript string, lineCount int) (*ai.SegmentationResult, error) {
	m.callCount++

	if m.SegmentTranscriptFunc != nil {
		return m.SegmentTranscriptFunc(ctx, transcript, lineCount)
	}

	return &ai.SegmentationResult{
		MeetingSummary: "Mock meeting summary.",
		Segments: []ai.SegmentPlan{
			{
				Title:     "Discussion",
				Summary:   "Mock segment summary.",
				StartLine: 0,
				EndLine:   lineCount - 1,
			},
		},
	}, nil
}

// CallCount returns the number of times SegmentTranscript was called.
func (m *MockSegmenter) CallCount() int {
	return m.callCount
}

// Reset clears the call count and custom functions.
func (m *MockSegmenter) Reset() {
	m.callCount = 0
	m.SegmentTranscriptFunc = nil
}
