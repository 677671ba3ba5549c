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


// Package chunker splits segmented transcripts into overlapping,
// bounded-size text chunks ready for embedding. It is pure: no I/O, and
// identical inputs produce identical chunks (and therefore identical
// content hashes).
package chunker

import (
	"regexp"
	"strings"

	"github.com/scribelight/minutes/core"
)

const (
	// TargetChunkSize is the soft upper bound on chunk content length. A
	// chunk may exceed it by at most one sentence unit.
	TargetChunkSize = 3000
	// OverlapSize bounds the trailing text carried from one chunk into
	// the next, preserving context across the split boundary.
	OverlapSize = 500
)

// BuildChunks produces the full chunk set for one document: dialogue
// chunks per segment, one segment_summary chunk per segment with a
// non-empty summary, and one meeting_summary chunk when meetingSummary is
// supplied. ChunkIndex is a dense 0-based ordinal over the whole document
// in emission order. Segments are consumed as given; callers validate or
// repair the partition first.
func BuildChunks(documentID string, segments []*core.Segment, lines []core.TranscriptLine, meetingSummary string) []*core.Chunk {
	var chunks []*core.Chunk
	next := func(segmentIndex int, docType core.DocType, content string) {
		chunks = append(chunks, &core.Chunk{
			DocumentID:   documentID,
			ChunkIndex:   len(chunks),
			SegmentIndex: segmentIndex,
			DocType:      docType,
			Content:      content,
			ContentHash:  core.HashContent(content),
		})
	}

	for _, seg := range segments {
		text := renderSegment(seg, lines)
		for _, content := range splitWithOverlap(text) {
			next(seg.SegmentIndex, core.DocTypeChunk, content)
		}
		if seg.Summary != "" {
			next(seg.SegmentIndex, core.DocTypeSegmentSummary, seg.Summary)
		}
	}

	if meetingSummary != "" {
		next(core.MeetingSegmentIndex, core.DocTypeMeetingSummary, meetingSummary)
	}
	return chunks
}

// renderSegment slices the transcript lines whose index falls inside the
// segment's range and renders them one "speaker: text" line each.
func renderSegment(seg *core.Segment, lines []core.TranscriptLine) string {
	var b strings.Builder
	for _, line := range lines {
		if line.Index < seg.StartIndex || line.Index > seg.EndIndex {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line.Speaker)
		b.WriteString(": ")
		b.WriteString(line.Text)
	}
	return b.String()
}

// sentenceBoundaryRe marks a split point: sentence-end punctuation, then
// whitespace, then a capital letter. A heuristic, not true sentence
// segmentation; dialogue rarely needs better.
var sentenceBoundaryRe = regexp.MustCompile(`[.!?]\s+[A-Z]`)

// splitUnits breaks text into sentence-like units. The boundary
// punctuation stays with the preceding unit and the capital letter opens
// the next one.
func splitUnits(text string) []string {
	var units []string
	start := 0
	for _, loc := range sentenceBoundaryRe.FindAllStringIndex(text, -1) {
		end := loc[0] + 1
		if unit := strings.TrimSpace(text[start:end]); unit != "" {
			units = append(units, unit)
		}
		start = loc[1] - 1
	}
	if tail := strings.TrimSpace(text[start:]); tail != "" {
		units = append(units, tail)
	}
	return units
}

// splitWithOverlap greedily packs sentence units into chunks of at most
// TargetChunkSize characters (allowing a single oversized unit through),
// seeding each new chunk with the previous chunk's trailing units up to
// OverlapSize characters.
func splitWithOverlap(text string) []string {
	units := splitUnits(text)
	if len(units) == 0 {
		return nil
	}

	var out []string
	var current []string
	currentLen := 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		out = append(out, strings.Join(current, " "))
		seed := overlapSuffix(current)
		current = seed
		currentLen = joinedLen(seed)
	}

	for _, unit := range units {
		add := len(unit)
		if currentLen > 0 {
			add++ // joining space
		}
		if currentLen > 0 && currentLen+add > TargetChunkSize {
			flush()
			// An oversized unit gets a chunk to itself when even the
			// overlap seed cannot accommodate it.
			if currentLen > 0 && currentLen+1+len(unit) > TargetChunkSize {
				current = nil
				currentLen = 0
			}
			add = len(unit)
			if currentLen > 0 {
				add++
			}
		}
		current = append(current, unit)
		currentLen += add
	}
	if len(current) > 0 {
		out = append(out, strings.Join(current, " "))
	}
	return out
}

// overlapSuffix picks the longest suffix of units whose joined length
// stays within OverlapSize. The suffix may be empty when the final unit
// alone exceeds the window.
func overlapSuffix(units []string) []string {
	total := 0
	i := len(units)
	for i > 0 {
		add := len(units[i-1])
		if total > 0 {
			add++
		}
		if total+add > OverlapSize {
			break
		}
		total += add
		i--
	}
	if i == len(units) {
		return nil
	}
	return append([]string(nil), units[i:]...)
}

func joinedLen(units []string) int {
	if len(units) == 0 {
		return 0
	}
	n := len(units) - 1
	for _, u := range units {
		n += len(u)
	}
	return n
}
