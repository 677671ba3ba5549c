package chunker

import (
	"fmt"
	"strings"
	"testing"

	"github.com/scribelight/minutes/core"
)

// dialogueLines builds n alternating speaker turns of sentence-shaped text.
func dialogueLines(n int) []core.TranscriptLine {
	speakers := []string{"Alice", "Bob"}
	lines := make([]core.TranscriptLine, n)
	for i := range lines {
		lines[i] = core.TranscriptLine{
			Index:   i,
			Speaker: speakers[i%2],
			Text: fmt.Sprintf(
				"This is turn number %d and it keeps going for a while to add bulk. Then it has a second sentence with more detail about point %d.",
				i, i,
			),
		}
	}
	return lines
}

func TestSplitUnits(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "splits on period whitespace capital",
			text: "First sentence here. Second one follows. And a third.",
			want: []string{"First sentence here.", "Second one follows.", "And a third."},
		},
		{
			name: "question and exclamation marks",
			text: "Really? Yes! Good.",
			want: []string{"Really?", "Yes!", "Good."},
		},
		{
			name: "no boundary without capital",
			text: "version 1.2 is out. it works",
			want: []string{"version 1.2 is out. it works"},
		},
		{
			name: "empty input",
			text: "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitUnits(tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("splitUnits() = %q, want %q", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("unit %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestBuildChunks_LongSegmentOverlaps(t *testing.T) {
	lines := dialogueLines(40) // well over 3000 characters of dialogue
	segments := []*core.Segment{
		{DocumentID: "doc-1", SegmentIndex: 0, StartIndex: 0, EndIndex: 39, Summary: ""},
	}

	chunks := BuildChunks("doc-1", segments, lines, "")

	var dialogue []*core.Chunk
	for _, c := range chunks {
		if c.DocType == core.DocTypeChunk {
			dialogue = append(dialogue, c)
		}
	}
	if len(dialogue) < 2 {
		t.Fatalf("got %d dialogue chunks, want at least 2", len(dialogue))
	}

	// The second chunk opens with the first chunk's trailing overlap.
	first, second := dialogue[0].Content, dialogue[1].Content
	overlap := min(len(second), OverlapSize)
	probe := second[:overlap]
	// Trim to a unit boundary so the probe is an exact substring.
	if cut := strings.LastIndex(probe, "."); cut > 0 {
		probe = probe[:cut+1]
	}
	if probe == "" || !strings.Contains(first, probe) {
		t.Errorf("chunk 1 does not end with chunk 2's leading text:\nfirst tail: %q\nprobe: %q",
			first[len(first)-min(len(first), OverlapSize):], probe)
	}
}

func TestBuildChunks_SizeBound(t *testing.T) {
	lines := dialogueLines(100)
	segments := []*core.Segment{
		{DocumentID: "doc-1", SegmentIndex: 0, StartIndex: 0, EndIndex: 99},
	}

	chunks := BuildChunks("doc-1", segments, lines, "")

	maxUnit := 0
	for _, u := range splitUnits(renderSegment(segments[0], lines)) {
		if len(u) > maxUnit {
			maxUnit = len(u)
		}
	}
	for _, c := range chunks {
		if c.DocType != core.DocTypeChunk {
			continue
		}
		if len(c.Content) > TargetChunkSize+maxUnit+1 {
			t.Errorf("chunk %d length %d exceeds target %d by more than one unit (%d)",
				c.ChunkIndex, len(c.Content), TargetChunkSize, maxUnit)
		}
	}
}

func TestBuildChunks_Coverage(t *testing.T) {
	lines := dialogueLines(60)
	segments := []*core.Segment{
		{DocumentID: "doc-1", SegmentIndex: 0, StartIndex: 0, EndIndex: 59},
	}

	chunks := BuildChunks("doc-1", segments, lines, "")

	var all strings.Builder
	for _, c := range chunks {
		if c.DocType == core.DocTypeChunk {
			all.WriteString(c.Content)
			all.WriteByte('\n')
		}
	}
	joined := all.String()

	for _, unit := range splitUnits(renderSegment(segments[0], lines)) {
		if !strings.Contains(joined, unit) {
			t.Errorf("unit missing from chunk set: %q", unit)
		}
	}
}

func TestBuildChunks_SummaryChunks(t *testing.T) {
	lines := dialogueLines(6)
	segments := []*core.Segment{
		{DocumentID: "doc-1", SegmentIndex: 0, StartIndex: 0, EndIndex: 2, Summary: "Intro and goals."},
		{DocumentID: "doc-1", SegmentIndex: 1, StartIndex: 3, EndIndex: 5, Summary: ""},
	}

	chunks := BuildChunks("doc-1", segments, lines, "The meeting covered goals and risks.")

	var summaries, meetings int
	for _, c := range chunks {
		switch c.DocType {
		case core.DocTypeSegmentSummary:
			summaries++
			if c.Content != "Intro and goals." || c.SegmentIndex != 0 {
				t.Errorf("segment summary chunk = %+v", c)
			}
		case core.DocTypeMeetingSummary:
			meetings++
			if c.SegmentIndex != core.MeetingSegmentIndex {
				t.Errorf("meeting summary SegmentIndex = %d, want %d", c.SegmentIndex, core.MeetingSegmentIndex)
			}
		}
	}
	if summaries != 1 {
		t.Errorf("got %d segment_summary chunks, want 1 (empty summaries are skipped)", summaries)
	}
	if meetings != 1 {
		t.Errorf("got %d meeting_summary chunks, want 1", meetings)
	}

	for i, c := range chunks {
		if c.ChunkIndex != i {
			t.Errorf("chunk %d has ChunkIndex %d, want dense ordinals", i, c.ChunkIndex)
		}
		if c.ContentHash != core.HashContent(c.Content) {
			t.Errorf("chunk %d hash mismatch", i)
		}
		if err := core.ValidateChunk(c); err != nil {
			t.Errorf("chunk %d invalid: %v", i, err)
		}
	}
}

func TestBuildChunks_NoMeetingSummary(t *testing.T) {
	lines := dialogueLines(4)
	segments := []*core.Segment{
		{DocumentID: "doc-1", SegmentIndex: 0, StartIndex: 0, EndIndex: 3},
	}

	chunks := BuildChunks("doc-1", segments, lines, "")
	for _, c := range chunks {
		if c.DocType == core.DocTypeMeetingSummary {
			t.Errorf("unexpected meeting_summary chunk: %+v", c)
		}
	}
}

func TestBuildChunks_Deterministic(t *testing.T) {
	lines := dialogueLines(30)
	segments := []*core.Segment{
		{DocumentID: "doc-1", SegmentIndex: 0, StartIndex: 0, EndIndex: 29, Summary: "s"},
	}

	a := BuildChunks("doc-1", segments, lines, "m")
	b := BuildChunks("doc-1", segments, lines, "m")
	if len(a) != len(b) {
		t.Fatalf("chunk counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].ContentHash != b[i].ContentHash {
			t.Errorf("chunk %d hashes differ across runs", i)
		}
	}
}
