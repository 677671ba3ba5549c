package fireflies

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// FormatMarkdown renders a transcript to the canonical markdown document the
// ingest parser consumes: a title, bold metadata fields including the
// provider id, summary and action-item sections, and a transcript section
// with bold speaker lines followed by their sentences.
func FormatMarkdown(t *Transcript) string {
	var lines []string

	title := t.Title
	if title == "" {
		title = "Untitled Meeting"
	}
	lines = append(lines, "# "+title, "")

	if t.Date > 0 {
		date := time.UnixMilli(t.Date).UTC()
		lines = append(lines, "**Date:** "+date.Format("01/02/2006 15:04"))
	}
	if t.Duration > 0 {
		minutes := int(math.Round(t.Duration / 60))
		lines = append(lines, fmt.Sprintf("**Duration:** %d minutes", minutes))
	}
	if len(t.Participants) > 0 {
		lines = append(lines, "**Participants:** "+strings.Join(t.Participants, ", "))
	}
	if t.TranscriptURL != "" {
		lines = append(lines, "**Fireflies Link:** "+t.TranscriptURL)
	}
	if t.AudioURL != "" {
		lines = append(lines, "**Audio:** "+t.AudioURL)
	}
	if t.VideoURL != "" {
		lines = append(lines, "**Video:** "+t.VideoURL)
	}
	lines = append(lines, "**Fireflies ID:** "+t.ID, "")

	if t.Summary != nil {
		if t.Summary.Overview != "" {
			lines = append(lines, "## Summary", t.Summary.Overview, "")
		}
		if len(t.Summary.ActionItems) > 0 {
			lines = append(lines, "## Action Items")
			for _, item := range t.Summary.ActionItems {
				lines = append(lines, "- "+item)
			}
			lines = append(lines, "")
		}
		if len(t.Summary.Keywords) > 0 {
			lines = append(lines, "**Keywords:** "+strings.Join(t.Summary.Keywords, ", "), "")
		}
	}

	if len(t.Sentences) > 0 {
		lines = append(lines, "## Transcript", "")
		lastSpeaker := ""
		for _, sentence := range t.Sentences {
			if sentence.SpeakerName != lastSpeaker {
				lines = append(lines, fmt.Sprintf("**%s:**", sentence.SpeakerName))
				lastSpeaker = sentence.SpeakerName
			}
			lines = append(lines, sentence.Text)
		}
	}

	return strings.Join(lines, "\n")
}
