package core

import (
	"encoding/binary"
	"encoding/hex"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for derived entities.
// It is generated using content-based hashing.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// HashContent returns a deterministic hex fingerprint of text.
// Byte-identical inputs always hash to the same value, so the hash can be
// used to detect duplicate transcripts and chunks independently of any
// external identifier.
func HashContent(text string) string {
	h, _ := blake2b.New(16, nil)
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

// Stage is one discrete step of the ingestion pipeline.
// A job occupies exactly one stage at a time.
type Stage string

const (
	// StagePending marks a job that has been created but not yet ingested.
	StagePending Stage = "pending"
	// StageRawIngested marks a job whose raw transcript and Document exist.
	StageRawIngested Stage = "raw_ingested"
	// StageSegmented marks a job whose topical segments have been generated.
	StageSegmented Stage = "segmented"
	// StageChunked is an internal sub-state reached mid-embedding, after
	// chunks are built but before their vectors are attached.
	StageChunked Stage = "chunked"
	// StageEmbedded marks a job whose chunks and summaries carry vectors.
	StageEmbedded Stage = "embedded"
	// StageDone marks a fully processed job.
	StageDone Stage = "done"
	// StageError is the absorbing side-state for failed jobs.
	StageError Stage = "error"
)

// ForwardStages lists the pipeline stages in forward order, excluding error.
var ForwardStages = []Stage{
	StagePending,
	StageRawIngested,
	StageSegmented,
	StageChunked,
	StageEmbedded,
	StageDone,
}

// Ordinal returns the position of s in the forward stage order,
// or -1 for error and unknown stages.
func (s Stage) Ordinal() int {
	for i, stage := range ForwardStages {
		if s == stage {
			return i
		}
	}
	return -1
}

// Valid reports whether s is a known stage, including error.
func (s Stage) Valid() bool {
	return s == StageError || s.Ordinal() >= 0
}

// CanAdvance reports whether a job at stage s may move to stage to.
// Movement is forward-only along the stage order, or sideways into error
// from any non-terminal stage.
func (s Stage) CanAdvance(to Stage) bool {
	if to == StageError {
		return s != StageDone
	}
	if !to.Valid() {
		return false
	}
	if s == StageError {
		// Error jobs leave the error state only via an explicit reset.
		return false
	}
	return to.Ordinal() > s.Ordinal()
}

// IDConfidence tags how a transcript identifier was extracted.
// Higher values mean a more trustworthy extraction path.
type IDConfidence int

const (
	// ConfidenceNone means no identifier could be extracted.
	ConfidenceNone IDConfidence = iota
	// ConfidenceFilename means the identifier was derived from a filename heuristic.
	ConfidenceFilename
	// ConfidenceURL means the identifier was pulled out of a provider URL.
	ConfidenceURL
	// ConfidenceField means the identifier came from an explicit metadata field.
	ConfidenceField
)

func (c IDConfidence) String() string {
	switch c {
	case ConfidenceFilename:
		return "filename"
	case ConfidenceURL:
		return "url"
	case ConfidenceField:
		return "field"
	default:
		return "none"
	}
}

// SourceRef is an extracted transcript identifier together with the
// confidence tier of the extraction path that produced it.
type SourceRef struct {
	ID         string
	Confidence IDConfidence
}

// IngestionJob tracks one source transcript's progress through the pipeline.
// It is the single source of truth for what still needs doing, and doubles
// as an audit trail: jobs are never deleted.
type IngestionJob struct {
	SourceID      string
	DocumentID    string // empty until the Ingest stage creates the Document
	Stage         Stage
	AttemptCount  int
	LastAttemptAt time.Time
	ErrorMessage  string
	ClaimedBy     string    // worker holding the current lease, if any
	ClaimedUntil  time.Time // lease expiry; zero when unclaimed
	InsertedAt    time.Time
	UpdatedAt     time.Time
}

// Claimed reports whether the job holds an unexpired lease at the given time.
func (j *IngestionJob) Claimed(now time.Time) bool {
	return j.ClaimedBy != "" && now.Before(j.ClaimedUntil)
}

// TranscriptLine is one speaker turn (or continuation) in a transcript.
// Index is a dense 0-based sequence matching line order in the source text;
// it is the coordinate system Segments reference.
type TranscriptLine struct {
	Index     int
	Timestamp string // "MM:SS" or empty
	Speaker   string
	Text      string
}

// ParsedTranscript is the normalized, in-memory form of a transcript
// document. It is derived by the parser and never persisted directly.
type ParsedTranscript struct {
	Source          SourceRef
	Title           string
	StartedAt       string // YYYY-MM-DD, empty when no date was found
	Participants    []string
	Summary         string
	ActionItems     []string
	Lines           []TranscriptLine
	SourceLink      string
	AudioURL        string
	VideoURL        string
	DurationMinutes int
	Keywords        []string
	BulletPoints    []string
}

// Document statuses mirror pipeline progress for read consumers.
const (
	DocumentStatusRawIngested = "raw_ingested"
	DocumentStatusSegmented   = "segmented"
	DocumentStatusEmbedded    = "embedded"
	DocumentStatusComplete    = "complete"
)

// Document is the persisted transcript record.
// ContentHash is unique: byte-identical raw text resolves to one Document
// regardless of differing external identifiers.
type Document struct {
	ID              string // uuid
	SourceID        string
	Title           string
	StartedAt       string
	Participants    []string
	Summary         string
	ActionItems     []string
	RawURL          string
	RawContent      string
	ContentHash     string
	SourceLink      string
	AudioURL        string
	VideoURL        string
	DurationMinutes int
	Keywords        []string
	BulletPoints    []string
	IDConfidence    IDConfidence
	Status          string
	InsertedAt      time.Time
	UpdatedAt       time.Time
}

// Segment is one topical slice of a transcript, identified by an inclusive
// line-index range. Ordered segments are expected to partition the
// transcript's index space without gaps or overlaps.
type Segment struct {
	DocumentID    string
	SegmentIndex  int
	Title         string
	StartIndex    int
	EndIndex      int
	Summary       string
	Decisions     []string
	Risks         []string
	Tasks         []string
	SummaryVector []float32
	InsertedAt    time.Time
	UpdatedAt     time.Time
}

// DocType classifies what a Chunk's text represents.
type DocType string

const (
	DocTypeChunk          DocType = "chunk"
	DocTypeSegmentSummary DocType = "segment_summary"
	DocTypeMeetingSummary DocType = "meeting_summary"
)

// MeetingSegmentIndex is the SegmentIndex used for whole-meeting chunks.
const MeetingSegmentIndex = -1

// Chunk is a bounded-size unit of text prepared for embedding and retrieval.
type Chunk struct {
	DocumentID   string
	ChunkIndex   int
	SegmentIndex int // MeetingSegmentIndex for meeting-level chunks
	DocType      DocType
	Content      string
	ContentHash  string
	Vector       []float32
	InsertedAt   time.Time
	UpdatedAt    time.Time
}

// ItemType classifies a structured item extracted from a transcript.
type ItemType string

const (
	ItemTypeDecision    ItemType = "decision"
	ItemTypeRisk        ItemType = "risk"
	ItemTypeTask        ItemType = "task"
	ItemTypeOpportunity ItemType = "opportunity"
)

// ItemTypes lists the valid item types.
var ItemTypes = []ItemType{ItemTypeDecision, ItemTypeRisk, ItemTypeTask, ItemTypeOpportunity}

// Item is a normalized decision, risk, task, or opportunity.
// Items are created once per Document by the Extract stage and keyed by
// (DocumentID, Description); only Status is mutated afterwards, by
// downstream consumers.
type Item struct {
	DocumentID  string
	Type        ItemType
	Description string
	Rationale   string // decision
	Owner       string // decision, risk, opportunity
	Category    string // risk
	Likelihood  string // risk
	Impact      string // risk
	Assignee    string // task
	DueDate     string // task, YYYY-MM-DD
	Priority    string // task
	Kind        string // opportunity
	Vector      []float32
	Status      string
	InsertedAt  time.Time
	UpdatedAt   time.Time
}

// SearchResult is a chunk match from vector similarity search.
type SearchResult struct {
	Chunk *Chunk
	Score float32
}
