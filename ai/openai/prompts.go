package openai

import "fmt"

const segmentationResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "meeting_summary": {
      "type": "string"
    },
    "segments": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "title": {"type": "string"},
          "summary": {"type": "string"},
          "start_line": {"type": "integer", "minimum": 0},
          "end_line": {"type": "integer", "minimum": 0},
          "decisions": {"type": "array", "items": {"type": "string"}},
          "risks": {"type": "array", "items": {"type": "string"}},
          "tasks": {"type": "array", "items": {"type": "string"}}
        },
        "required": ["title", "summary", "start_line", "end_line"],
        "additionalProperties": false
      }
    }
  },
  "required": ["meeting_summary", "segments"],
  "additionalProperties": false
}`

const segmentationPromptTemplate = `Split the given meeting transcript into topical segments and return them as JSON.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

%s

Each transcript line is prefixed with its index in square brackets, like "[12]".

Rules:
- Segments must be in transcript order and together cover every line exactly once:
  the first segment starts at line 0, each segment starts where the previous one
  ended plus one, and the last segment ends at line %d.
- start_line and end_line are inclusive indices taken from the bracketed prefixes.
- A segment covers one coherent topic of discussion; prefer 2-8 segments for a
  typical meeting, fewer for a short one.
- title is a short noun phrase naming the topic. summary is 1-3 sentences.
- decisions lists decisions made within the segment, risks lists concerns or
  blockers raised, tasks lists action items agreed on. Use the speakers' own
  wording where possible; leave the arrays empty when nothing applies.
- meeting_summary is a 2-5 sentence summary of the whole meeting.
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.`

const normalizationResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "decisions": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "description": {"type": "string"},
          "rationale": {"type": "string"},
          "owner": {"type": "string"}
        },
        "required": ["description"],
        "additionalProperties": false
      }
    },
    "risks": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "description": {"type": "string"},
          "category": {"type": "string"},
          "likelihood": {"type": "string", "enum": ["low", "medium", "high"]},
          "impact": {"type": "string", "enum": ["low", "medium", "high"]},
          "owner": {"type": "string"}
        },
        "required": ["description"],
        "additionalProperties": false
      }
    },
    "tasks": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "description": {"type": "string"},
          "assignee": {"type": "string"},
          "due_date": {"type": "string"},
          "priority": {"type": "string", "enum": ["low", "medium", "high"]}
        },
        "required": ["description"],
        "additionalProperties": false
      }
    },
    "opportunities": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "description": {"type": "string"},
          "kind": {"type": "string"},
          "owner": {"type": "string"}
        },
        "required": ["description"],
        "additionalProperties": false
      }
    }
  },
  "required": ["decisions", "risks", "tasks", "opportunities"],
  "additionalProperties": false
}`

const normalizationPromptTemplate = `Normalize the raw meeting items given as JSON input and return structured items as JSON.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

%s

The input object contains raw strings collected from the meeting: "decisions",
"risks", "tasks", and "action_items" (unclassified action items from the
transcript header).

Rules:
- Merge duplicate or overlapping raw items into one normalized item each.
- Classify every action_item as a task unless it clearly records a decision or risk.
- description is a single self-contained sentence; rewrite fragments into full sentences.
- Fill rationale, owner, assignee, category, likelihood, impact, due_date, and
  priority only when the raw text states or strongly implies them; otherwise
  use an empty string.
- due_date must be YYYY-MM-DD when present.
- opportunities are follow-ups implied but not committed to in the meeting
  (e.g. a process improvement behind a recurring risk). kind is a short label
  like "process", "product", or "relationship". Infer at most 3; an empty
  array is fine.
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.`

// buildSegmentationPrompt creates the segmentation system prompt for a
// transcript with the given number of lines.
func buildSegmentationPrompt(lineCount int) string {
	return fmt.Sprintf(segmentationPromptTemplate, segmentationResponseSchema, lineCount-1)
}

// buildNormalizationPrompt creates the item-normalization system prompt.
func buildNormalizationPrompt() string {
	return fmt.Sprintf(normalizationPromptTemplate, normalizationResponseSchema)
}
