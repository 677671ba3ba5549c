package mock

import (
	"context"

	"github.com/scribelight/minutes/ai"
)

// MockItemNormalizer is a test double for ai.ItemNormalizer.
// It allows custom behavior injection via function fields.
type MockItemNormalizer struct {
	// NormalizeItemsFunc is called by NormalizeItems if set.
	// If nil, raw strings are passed through one-to-one without enrichment.
	NormalizeItemsFunc func(ctx context.Context, input *ai.RawItems) (*ai.NormalizedItems, error)

	callCount int
}

// NewMockItemNormalizer creates a mock normalizer with default behavior.
// Note: Returns concrete type to allow test assertions.
func NewMockItemNormalizer() *MockItemNormalizer {
	return &MockItemNormalizer{}
}

// NormalizeItems passes raw strings through by default: each decision, risk,
// and task becomes one item and action items become tasks. No opportunities
// are inferred.
func (m *MockItemNormalizer) NormalizeItems(ctx context.Context, input *ai.RawItems) (*ai.NormalizedItems, error) {
	m.callCount++

	if m.NormalizeItemsFunc != nil {
		return m.NormalizeItemsFunc(ctx, input)
	}

	result := &ai.NormalizedItems{}
	if input.Empty() {
		return result, nil
	}
	for _, d := range input.Decisions {
		result.Decisions = append(result.Decisions, ai.Decision{Description: d})
	}
	for _, r := range input.Risks {
		result.Risks = append(result.Risks, ai.Risk{Description: r})
	}
	for _, t := range input.Tasks {
		result.Tasks = append(result.Tasks, ai.Task{Description: t})
	}
	for _, a := range input.ActionItems {
		result.Tasks = append(result.Tasks, ai.Task{Description: a})
	}
	return result, nil
}

// CallCount returns the number of times NormalizeItems was called.
func (m *MockItemNormalizer) CallCount() int {
	return m.callCount
}

// Reset clears the call count and custom functions.
func (m *MockItemNormalizer) Reset() {
	m.callCount = 0
	m.NormalizeItemsFunc = nil
}
