// Copyright 2026 Scribelight
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"fmt"
	"slices"
)

// ValidateDocument validates a Document according to domain rules.
//
// Validation rules:
//   - SourceID must not be empty
//   - RawContent must not be empty
//   - ContentHash must match RawContent
//
// NOT validated (populated by later stages):
//   - Status transitions
//   - Sidecar metadata (optional)
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}
	if doc.SourceID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptySourceID)
	}
	if doc.RawContent == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyContent)
	}
	if doc.ContentHash != HashContent(doc.RawContent) {
		return fmt.Errorf("%w: content hash does not match raw content", ErrInvalidDocument)
	}
	return nil
}

// ValidateSegment validates a single Segment's internal consistency.
// Partition-level checks across segments are done by ValidateSegmentPartition.
func ValidateSegment(seg *Segment) error {
	if seg == nil {
		return fmt.Errorf("%w: segment is nil", ErrInvalidSegment)
	}
	if seg.DocumentID == "" {
		return fmt.Errorf("%w: missing document id", ErrInvalidSegment)
	}
	if seg.SegmentIndex < 0 {
		return fmt.Errorf("%w: negative segment index %d", ErrInvalidSegment, seg.SegmentIndex)
	}
	if seg.StartIndex < 0 || seg.EndIndex < seg.StartIndex {
		return fmt.Errorf("%w: bad line range [%d,%d]", ErrInvalidSegment, seg.StartIndex, seg.EndIndex)
	}
	return nil
}

// ValidateChunk validates a Chunk according to domain rules.
func ValidateChunk(chunk *Chunk) error {
	if chunk == nil {
		return fmt.Errorf("%w: chunk is nil", ErrInvalidChunk)
	}
	if chunk.DocumentID == "" {
		return fmt.Errorf("%w: missing document id", ErrInvalidChunk)
	}
	if chunk.Content == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyContent)
	}
	switch chunk.DocType {
	case DocTypeChunk, DocTypeSegmentSummary, DocTypeMeetingSummary:
	default:
		return fmt.Errorf("%w: unknown doc type %q", ErrInvalidChunk, chunk.DocType)
	}
	if chunk.DocType == DocTypeMeetingSummary && chunk.SegmentIndex != MeetingSegmentIndex {
		return fmt.Errorf("%w: meeting summary must use segment index %d", ErrInvalidChunk, MeetingSegmentIndex)
	}
	if chunk.ContentHash == "" {
		return fmt.Errorf("%w: missing content hash", ErrInvalidChunk)
	}
	return nil
}

// ValidateItem validates a structured Item according to domain rules.
func ValidateItem(item *Item) error {
	if item == nil {
		return fmt.Errorf("%w: item is nil", ErrInvalidItem)
	}
	if item.DocumentID == "" {
		return fmt.Errorf("%w: missing document id", ErrInvalidItem)
	}
	if item.Description == "" {
		return fmt.Errorf("%w: description cannot be empty", ErrInvalidItem)
	}
	if !slices.Contains(ItemTypes, item.Type) {
		return fmt.Errorf("%w: unknown item type %q", ErrInvalidItem, item.Type)
	}
	return nil
}

// ValidateStage validates that s is a known pipeline stage.
func ValidateStage(s Stage) error {
	if !s.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStage, s)
	}
	return nil
}

// ValidateSegmentPartition checks that segments, ordered by StartIndex,
// exactly partition the line-index range [0, lineCount-1] with no gaps or
// overlaps. The segments are not modified.
func ValidateSegmentPartition(segments []*Segment, lineCount int) error {
	if len(segments) == 0 {
		return ErrNoSegments
	}
	ordered := sortedByStart(segments)

	next := 0
	for _, seg := range ordered {
		if seg.StartIndex != next {
			return fmt.Errorf("%w: segment %d starts at %d, expected %d",
				ErrSegmentPartition, seg.SegmentIndex, seg.StartIndex, next)
		}
		if seg.EndIndex < seg.StartIndex {
			return fmt.Errorf("%w: segment %d has inverted range [%d,%d]",
				ErrSegmentPartition, seg.SegmentIndex, seg.StartIndex, seg.EndIndex)
		}
		next = seg.EndIndex + 1
	}
	if next != lineCount {
		return fmt.Errorf("%w: segments cover [0,%d], transcript has %d lines",
			ErrSegmentPartition, next-1, lineCount)
	}
	return nil
}

// RepairSegmentPartition deterministically repairs segment ranges produced by
// a best-effort generator so that they partition [0, lineCount-1]:
//
//   - segments are sorted by StartIndex and reindexed densely
//   - an overlap is resolved by clamping the later segment's StartIndex to
//     the previous EndIndex+1
//   - a gap is closed by pulling the later segment's StartIndex back to
//     where the gap began
//   - the first segment is pulled back to 0 and the last extended to the
//     final line
//
// It returns ErrSegmentPartition when a segment collapses to an empty range
// during repair or lies entirely out of bounds, and ErrNoSegments when the
// input is empty. Silent truncation is never applied.
func RepairSegmentPartition(segments []*Segment, lineCount int) ([]*Segment, error) {
	if len(segments) == 0 {
		return nil, ErrNoSegments
	}
	if lineCount <= 0 {
		return nil, fmt.Errorf("%w: transcript has no lines", ErrSegmentPartition)
	}

	ordered := sortedByStart(segments)

	next := 0
	for i, seg := range ordered {
		if seg.StartIndex >= lineCount {
			return nil, fmt.Errorf("%w: segment %d starts at %d beyond last line %d",
				ErrSegmentPartition, seg.SegmentIndex, seg.StartIndex, lineCount-1)
		}
		start := seg.StartIndex
		if start != next {
			// Overlap (start < next) clamps forward; gap (start > next)
			// is absorbed by starting this segment where the gap began.
			start = next
		}
		end := seg.EndIndex
		if end >= lineCount {
			end = lineCount - 1
		}
		if i == len(ordered)-1 && end < lineCount-1 {
			end = lineCount - 1
		}
		if end < start {
			return nil, fmt.Errorf("%w: segment %d collapsed to empty range during repair",
				ErrSegmentPartition, seg.SegmentIndex)
		}
		seg.StartIndex = start
		seg.EndIndex = end
		seg.SegmentIndex = i
		next = end + 1
	}

	if err := ValidateSegmentPartition(ordered, lineCount); err != nil {
		return nil, err
	}
	return ordered, nil
}

func sortedByStart(segments []*Segment) []*Segment {
	ordered := slices.Clone(segments)
	slices.SortStableFunc(ordered, func(a, b *Segment) int {
		if a.StartIndex != b.StartIndex {
			return a.StartIndex - b.StartIndex
		}
		return a.SegmentIndex - b.SegmentIndex
	})
	return ordered
}
