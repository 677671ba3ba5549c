package pipeline

import "errors"

var (
	// ErrLedgerRequired is returned when a job ledger is not provided.
	ErrLedgerRequired = errors.New("job ledger required")

	// ErrDocumentRepositoryRequired is returned when a document repository is not provided.
	ErrDocumentRepositoryRequired = errors.New("document repository required")

	// ErrSegmentRepositoryRequired is returned when a segment repository is not provided.
	ErrSegmentRepositoryRequired = errors.New("segment repository required")

	// ErrChunkRepositoryRequired is returned when a chunk repository is not provided.
	ErrChunkRepositoryRequired = errors.New("chunk repository required")

	// ErrItemRepositoryRequired is returned when an item repository is not provided.
	ErrItemRepositoryRequired = errors.New("item repository required")

	// ErrObjectStoreRequired is returned when an object store is not provided.
	ErrObjectStoreRequired = errors.New("object store required")

	// ErrProviderRequired is returned when an AI provider is not provided.
	ErrProviderRequired = errors.New("AI provider required")

	// ErrSourceClientRequired is returned when an operation needs the
	// transcript provider but no client was configured.
	ErrSourceClientRequired = errors.New("source client required")

	// ErrNoTranscriptLines is returned when a document's raw content yields
	// no transcript lines to process.
	ErrNoTranscriptLines = errors.New("document has no transcript lines")

	// ErrJobWithoutDocument is returned when a claimed job carries no
	// document id and so cannot be processed past ingestion.
	ErrJobWithoutDocument = errors.New("job has no document id")
)
