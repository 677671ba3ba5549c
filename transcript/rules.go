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


package transcript

import (
	"regexp"
	"strings"

	"github.com/scribelight/minutes/core"
)

// A fieldRule is one step of a first-match-wins cascade for a single
// metadata field. Rules are tried in slice order, and the first pattern
// that matches wins; later rules are never consulted. The cascade order is
// the contract, not an implementation accident.
type fieldRule struct {
	name string
	re   *regexp.Regexp
}

// firstMatch runs a cascade against content and returns the first rule's
// capture group 1, trimmed, or "" when nothing matches.
func firstMatch(rules []fieldRule, content string) string {
	for _, r := range rules {
		if m := r.re.FindStringSubmatch(content); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

var summaryRules = []fieldRule{
	{name: "summary section", re: regexp.MustCompile(`(?is)##\s*Summary\s*\n(.*?)(?:\n##|\z)`)},
}

var sourceLinkRules = []fieldRule{
	{name: "link field", re: regexp.MustCompile(`(?i)\*\*Fireflies Link:\*\*\s*(.+)`)},
	{name: "view url", re: regexp.MustCompile(`(https?://[^\s]*fireflies\.ai/view/[a-zA-Z0-9_-]+)`)},
}

var audioRules = []fieldRule{
	{name: "markdown link", re: regexp.MustCompile(`(?i)\[Audio Recording\]\(([^\s)]+)\)`)},
	{name: "recording field", re: regexp.MustCompile(`(?i)\*\*Audio Recording:\*\*\s*(.+)`)},
	{name: "short field", re: regexp.MustCompile(`(?i)\*\*Audio:\*\*\s*(.+)`)},
}

var videoRules = []fieldRule{
	{name: "markdown link", re: regexp.MustCompile(`(?i)\[Video Recording\]\(([^\s)]+)\)`)},
	{name: "recording field", re: regexp.MustCompile(`(?i)\*\*Video Recording:\*\*\s*(.+)`)},
	{name: "short field", re: regexp.MustCompile(`(?i)\*\*Video:\*\*\s*(.+)`)},
}

var keywordRules = []fieldRule{
	{name: "keywords section", re: regexp.MustCompile(`(?i)##\s*Keywords\s*\n+([^\n#]+)`)},
	{name: "keywords field", re: regexp.MustCompile(`(?i)\*\*Keywords:\*\*\s*(.+)`)},
}

var durationRe = regexp.MustCompile(`(?i)\*\*Duration:\*\*\s*(\d+)\s*minutes`)

// An idRule is one step of the source-identifier cascade. Unlike metadata
// cascades, identifier extraction is fallible as a whole and each tier
// carries a confidence tag that is surfaced to the caller.
type idRule struct {
	name       string
	confidence core.IDConfidence
	extract    func(content string) (string, bool)
}

var (
	idFieldRe       = regexp.MustCompile(`(?i)\*\*ID:\*\*\s*([A-Z0-9]{12,})`)
	sourceIDFieldRe = regexp.MustCompile(`(?i)\*\*Fireflies ID:\*\*\s*([A-Z0-9]{12,})`)
	filenameIDRe    = regexp.MustCompile(`(?i)_([A-Z0-9]{8,})(?:\.md)?`)
	viewURLIDRe     = regexp.MustCompile(`fireflies\.ai/view/([a-zA-Z0-9_-]+)`)
)

// A filename fragment is only trusted once expanded to a full-length
// identifier found elsewhere in the content.
const minExpandedIDLen = 20

// sourceFromFilename extracts an identifier fragment from a filename. A
// fragment shorter than a full identifier is only accepted when the content
// contains its full-length expansion.
func sourceFromFilename(filename, content string) (core.SourceRef, bool) {
	m := filenameIDRe.FindStringSubmatch(filename)
	if m == nil {
		return core.SourceRef{}, false
	}
	if len(m[1]) >= minExpandedIDLen {
		return core.SourceRef{ID: m[1], Confidence: core.ConfidenceFilename}, true
	}
	fullRe, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(m[1]) + `[A-Z0-9]*`)
	if err != nil {
		return core.SourceRef{}, false
	}
	for _, full := range fullRe.FindAllString(content, -1) {
		if len(full) >= minExpandedIDLen {
			return core.SourceRef{ID: full, Confidence: core.ConfidenceFilename}, true
		}
	}
	return core.SourceRef{}, false
}

// idRules is the identifier cascade, in priority order. There is no
// hash-derived fallback: a wrong or duplicate identifier is worse than an
// explicit rejection.
var idRules = []idRule{
	{
		name:       "id field",
		confidence: core.ConfidenceField,
		extract: func(content string) (string, bool) {
			m := idFieldRe.FindStringSubmatch(content)
			if m == nil {
				return "", false
			}
			return m[1], true
		},
	},
	{
		name:       "provider id field",
		confidence: core.ConfidenceField,
		extract: func(content string) (string, bool) {
			m := sourceIDFieldRe.FindStringSubmatch(content)
			if m == nil {
				return "", false
			}
			return m[1], true
		},
	},
	{
		name:       "filename fragment",
		confidence: core.ConfidenceFilename,
		extract: func(content string) (string, bool) {
			m := filenameIDRe.FindStringSubmatch(content)
			if m == nil {
				return "", false
			}
			// A short fragment is only trusted when the full identifier
			// appears elsewhere in the content.
			fullRe, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(m[1]) + `[A-Z0-9]*`)
			if err != nil {
				return "", false
			}
			for _, full := range fullRe.FindAllString(content, -1) {
				if len(full) >= minExpandedIDLen {
					return full, true
				}
			}
			return "", false
		},
	},
	{
		name:       "view url",
		confidence: core.ConfidenceURL,
		extract: func(content string) (string, bool) {
			m := viewURLIDRe.FindStringSubmatch(content)
			if m == nil {
				return "", false
			}
			return m[1], true
		},
	},
}
