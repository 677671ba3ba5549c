package core

import (
	"testing"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "same content produces same ID",
			content: "test content",
		},
		{
			name:    "empty string",
			content: "",
		},
		{
			name:    "long content",
			content: "This is a much longer piece of content that should still hash consistently",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromContent(tt.content)
			id2 := IDFromContent(tt.content)

			if id1 != id2 {
				t.Errorf("IDFromContent() produced different IDs for same content: %d vs %d", id1, id2)
			}
		})
	}
}

func TestIDFromContent_Different(t *testing.T) {
	id1 := IDFromContent("content1")
	id2 := IDFromContent("content2")

	if id1 == id2 {
		t.Errorf("IDFromContent() produced same ID for different content")
	}
}

func TestHashContent(t *testing.T) {
	h1 := HashContent("# Weekly Sync\n\nbody")
	h2 := HashContent("# Weekly Sync\n\nbody")
	h3 := HashContent("# Weekly Sync\n\nbody ")

	if h1 != h2 {
		t.Errorf("HashContent() not deterministic: %s vs %s", h1, h2)
	}
	if h1 == h3 {
		t.Errorf("HashContent() produced same hash for different content")
	}
	if len(h1) != 32 {
		t.Errorf("HashContent() length = %d, want 32 hex chars", len(h1))
	}
}

func TestStage_Ordinal(t *testing.T) {
	tests := []struct {
		stage Stage
		want  int
	}{
		{StagePending, 0},
		{StageRawIngested, 1},
		{StageSegmented, 2},
		{StageChunked, 3},
		{StageEmbedded, 4},
		{StageDone, 5},
		{StageError, -1},
		{Stage("bogus"), -1},
	}

	for _, tt := range tests {
		t.Run(string(tt.stage), func(t *testing.T) {
			if got := tt.stage.Ordinal(); got != tt.want {
				t.Errorf("Ordinal() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestStage_CanAdvance(t *testing.T) {
	tests := []struct {
		name string
		from Stage
		to   Stage
		want bool
	}{
		{"pending to raw_ingested", StagePending, StageRawIngested, true},
		{"pending to embedded skips ahead", StagePending, StageEmbedded, true},
		{"raw_ingested to segmented", StageRawIngested, StageSegmented, true},
		{"segmented to raw_ingested regresses", StageSegmented, StageRawIngested, false},
		{"done to done", StageDone, StageDone, false},
		{"same stage is not an advance", StageSegmented, StageSegmented, false},
		{"any stage to error", StagePending, StageError, true},
		{"embedded to error", StageEmbedded, StageError, true},
		{"done to error", StageDone, StageError, false},
		{"error cannot leave without reset", StageError, StageRawIngested, false},
		{"error to done", StageError, StageDone, false},
		{"unknown target", StageRawIngested, Stage("bogus"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.CanAdvance(tt.to); got != tt.want {
				t.Errorf("CanAdvance(%q -> %q) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestIDConfidence_String(t *testing.T) {
	tests := []struct {
		conf IDConfidence
		want string
	}{
		{ConfidenceNone, "none"},
		{ConfidenceFilename, "filename"},
		{ConfidenceURL, "url"},
		{ConfidenceField, "field"},
	}

	for _, tt := range tests {
		if got := tt.conf.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestIDConfidence_Ordering(t *testing.T) {
	if !(ConfidenceNone < ConfidenceFilename && ConfidenceFilename < ConfidenceURL && ConfidenceURL < ConfidenceField) {
		t.Errorf("confidence tiers are not ordered none < filename < url < field")
	}
}
