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


// Package transcript converts semi-structured meeting markdown into a
// normalized core.ParsedTranscript. Parsing is pure and deterministic:
// identical input bytes always produce identical output, and no I/O is
// performed. Every metadata field is extracted by an ordered first-match
// cascade of patterns (see rules.go); a field whose cascade finds nothing
// degrades to absent rather than erroring. The one exception is the source
// identifier, whose absence is a hard *UnidentifiableSourceError.
package transcript

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/scribelight/minutes/core"
)

const snippetLen = 500

// Parse converts the raw text of a transcript document.
// It returns *UnidentifiableSourceError when no source identifier can be
// extracted; all other fields degrade to their zero values when absent.
func Parse(content string) (*core.ParsedTranscript, error) {
	source, err := ExtractSource(content)
	if err != nil {
		return nil, err
	}
	return parseFields(source, content), nil
}

// ParseFile parses content that arrived as a named file. When the content
// itself carries no identifier, the filename joins the cascade at filename
// confidence: a short fragment is only trusted once expanded to a
// full-length identifier found in the content.
func ParseFile(filename, content string) (*core.ParsedTranscript, error) {
	source, err := ExtractSource(content)
	if err != nil {
		var ok bool
		if source, ok = sourceFromFilename(filename, content); !ok {
			return nil, err
		}
	}
	return parseFields(source, content), nil
}

func parseFields(source core.SourceRef, content string) *core.ParsedTranscript {
	lines := strings.Split(content, "\n")

	pt := &core.ParsedTranscript{
		Source:       source,
		Title:        extractTitle(lines),
		StartedAt:    extractDate(lines),
		Summary:      firstMatch(summaryRules, content),
		ActionItems:  extractActionItems(content),
		Lines:        extractLines(lines),
		SourceLink:   firstMatch(sourceLinkRules, content),
		AudioURL:     firstMatch(audioRules, content),
		VideoURL:     firstMatch(videoRules, content),
		Keywords:     splitList(firstMatch(keywordRules, content)),
		BulletPoints: extractBulletPoints(content),
	}
	pt.Participants = extractParticipants(lines, pt.Lines)

	if m := durationRe.FindStringSubmatch(content); m != nil {
		pt.DurationMinutes, _ = strconv.Atoi(m[1])
	}
	return pt
}

// ExtractSource runs the identifier cascade over content and returns the
// identifier together with the confidence tier of the rule that produced
// it. Callers that cannot tolerate low-confidence identifiers inspect the
// returned Confidence rather than re-running the cascade.
func ExtractSource(content string) (core.SourceRef, error) {
	for _, rule := range idRules {
		if id, ok := rule.extract(content); ok {
			return core.SourceRef{ID: id, Confidence: rule.confidence}, nil
		}
	}
	snippet := content
	if len(snippet) > snippetLen {
		snippet = snippet[:snippetLen]
	}
	return core.SourceRef{}, &UnidentifiableSourceError{Snippet: snippet}
}

func extractTitle(lines []string) string {
	limit := min(len(lines), 10)
	for _, line := range lines[:limit] {
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(line[2:])
		}
	}
	return "Untitled Meeting"
}

var (
	dateSlashRe = regexp.MustCompile(`(\d{1,2})/(\d{1,2})/(\d{4})`)
	dateISORe   = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
)

// extractDate finds the first date within the first 20 lines and
// normalizes it to YYYY-MM-DD.
func extractDate(lines []string) string {
	limit := min(len(lines), 20)
	for _, line := range lines[:limit] {
		if m := dateSlashRe.FindStringSubmatch(line); m != nil {
			month, _ := strconv.Atoi(m[1])
			day, _ := strconv.Atoi(m[2])
			return fmt.Sprintf("%s-%02d-%02d", m[3], month, day)
		}
		if m := dateISORe.FindString(line); m != "" {
			return m
		}
	}
	return ""
}

var (
	attendeesHeadingRe = regexp.MustCompile(`(?i)attendees|participants`)
	bulletRe           = regexp.MustCompile(`^[-*]\s*(.+)`)
	timestampTurnRe    = regexp.MustCompile(`^\[(\d{2}:\d{2})\]\s*\*\*([^*]+)\*\*:\s*(.+)`)
	boldTurnRe         = regexp.MustCompile(`^\*\*([^*]+)\*\*:?\s*(.*)`)
	boldSpeakerRe      = regexp.MustCompile(`^\*\*([^*]+)\*\*:`)
)

// cleanSpeaker normalizes a captured speaker name. Some sources put the
// colon inside the bold markers ("**Alice:**"), some outside.
func cleanSpeaker(name string) string {
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(name), ":"))
}

// extractParticipants unions three sources: bullet items under an
// attendees/participants heading, and the speakers of both timestamped and
// bare bold turns. First-seen order is preserved.
func extractParticipants(lines []string, turns []core.TranscriptLine) []string {
	var participants []string
	seen := make(map[string]bool)
	add := func(name string) {
		name = strings.TrimSpace(name)
		if name != "" && !seen[name] {
			seen[name] = true
			participants = append(participants, name)
		}
	}

	inAttendees := false
	for _, line := range lines {
		if attendeesHeadingRe.MatchString(line) {
			inAttendees = true
			continue
		}
		if !inAttendees {
			continue
		}
		if strings.HasPrefix(line, "#") || strings.HasPrefix(line, "---") {
			inAttendees = false
			continue
		}
		if m := bulletRe.FindStringSubmatch(line); m != nil {
			add(m[1])
		}
	}

	for _, turn := range turns {
		add(turn.Speaker)
	}

	// Bold-speaker turns outside the transcript section still count.
	// Only the colon-outside form is considered here: colon-inside bold
	// lines outside the transcript are almost always metadata fields.
	for _, line := range lines {
		if m := boldSpeakerRe.FindStringSubmatch(line); m != nil {
			add(cleanSpeaker(m[1]))
		}
	}
	return participants
}

var actionSectionRe = regexp.MustCompile(`(?is)##\s*Action Items?\s*\n(.*?)(?:\n##|\z)`)

func extractActionItems(content string) []string {
	m := actionSectionRe.FindStringSubmatch(content)
	if m == nil {
		return nil
	}
	var items []string
	for _, line := range strings.Split(m[1], "\n") {
		if bm := bulletRe.FindStringSubmatch(line); bm != nil {
			items = append(items, strings.TrimSpace(bm[1]))
		}
	}
	return items
}

// extractLines scans only within a "## Transcript" section, terminated by
// the next "##" heading. Three line classes are recognized, in order:
// a timestamped turn, a bare bold-speaker turn (which sets the current
// speaker), and a plain continuation line attributed to the current
// speaker. Indices are dense and 0-based in scan order; they are the
// coordinate system segments reference.
func extractLines(lines []string) []core.TranscriptLine {
	var out []core.TranscriptLine
	currentSpeaker := ""
	inTranscript := false

	for _, line := range lines {
		if strings.Contains(strings.ToLower(line), "## transcript") {
			inTranscript = true
			continue
		}
		if !inTranscript {
			continue
		}
		if strings.HasPrefix(line, "##") && !strings.Contains(strings.ToLower(line), "transcript") {
			break
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if m := timestampTurnRe.FindStringSubmatch(trimmed); m != nil {
			out = append(out, core.TranscriptLine{
				Index:     len(out),
				Timestamp: m[1],
				Speaker:   cleanSpeaker(m[2]),
				Text:      strings.TrimSpace(m[3]),
			})
			continue
		}

		if m := boldTurnRe.FindStringSubmatch(trimmed); m != nil {
			currentSpeaker = cleanSpeaker(m[1])
			if text := strings.TrimSpace(m[2]); text != "" {
				out = append(out, core.TranscriptLine{
					Index:   len(out),
					Speaker: currentSpeaker,
					Text:    text,
				})
			}
			continue
		}

		if currentSpeaker != "" {
			out = append(out, core.TranscriptLine{
				Index:   len(out),
				Speaker: currentSpeaker,
				Text:    trimmed,
			})
		}
	}
	return out
}

var (
	bulletSectionRe  = regexp.MustCompile(`(?is)##\s*Summary Bullets\s*\n(.*?)(?:\n##|\z)`)
	boldBulletRe     = regexp.MustCompile(`^[^\sA-Za-z0-9]+\s*\*\*([^*]+)\*\*`)
	bulletFieldRe    = regexp.MustCompile(`(?is)\*\*Summary Bullets:\*\*\s*\n(.*?)(?:\n\*\*|\n##|\z)`)
	listSeparatorsRe = regexp.MustCompile(`[,;]`)
)

// extractBulletPoints tries a "## Summary Bullets" section first, where
// bullets may be prefixed by emoji or list markers and carry a bold title,
// then falls back to a "**Summary Bullets:**" field with plain list items.
func extractBulletPoints(content string) []string {
	if m := bulletSectionRe.FindStringSubmatch(content); m != nil {
		var bullets []string
		for _, line := range strings.Split(m[1], "\n") {
			if bm := boldBulletRe.FindStringSubmatch(line); bm != nil {
				bullets = append(bullets, strings.TrimSpace(bm[1]))
			}
		}
		if len(bullets) > 0 {
			return bullets
		}
	}
	if m := bulletFieldRe.FindStringSubmatch(content); m != nil {
		var bullets []string
		for _, line := range strings.Split(m[1], "\n") {
			if bm := bulletRe.FindStringSubmatch(line); bm != nil {
				bullets = append(bullets, strings.TrimSpace(bm[1]))
			}
		}
		return bullets
	}
	return nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range listSeparatorsRe.Split(s, -1) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// FormatForModel renders transcript lines in the bracketed-index form
// segmentation prompts expect, one line per turn.
func FormatForModel(lines []core.TranscriptLine) string {
	var b strings.Builder
	for i, l := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "[%d] ", i)
		if l.Timestamp != "" {
			fmt.Fprintf(&b, "[%s] ", l.Timestamp)
		}
		b.WriteString(l.Speaker)
		b.WriteString(": ")
		b.WriteString(l.Text)
	}
	return b.String()
}
