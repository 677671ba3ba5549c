package storage

import (
	"context"
	"time"

	"github.com/scribelight/minutes/core"
)

// Retry backoff applied by JobLedger.FindBatch and Claim: a job that has
// failed n times is not eligible again until base*2^(n-1) after its last
// attempt, capped at maxRetryBackoff.
const (
	baseRetryBackoff = 30 * time.Second
	maxRetryBackoff  = time.Hour
)

// RetryBackoff returns how long a job must wait after its last attempt
// before it becomes eligible for another, given its attempt count. Zero
// for jobs that have not been attempted.
func RetryBackoff(attempts int) time.Duration {
	if attempts <= 1 {
		return 0
	}
	d := baseRetryBackoff
	for i := 2; i < attempts; i++ {
		d *= 2
		if d >= maxRetryBackoff {
			return maxRetryBackoff
		}
	}
	if d > maxRetryBackoff {
		return maxRetryBackoff
	}
	return d
}

// Repository provides the operations every repository implementation
// shares. Implementations must be thread-safe and support concurrent
// access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// JobLedger tracks each source transcript's progress through the
// pipeline. It is the single source of truth for what still needs doing;
// ledger rows are never deleted.
type JobLedger interface {
	Repository

	// Advance performs an idempotent upsert of the job for sourceID.
	// A missing job is created at stage with AttemptCount=1. An existing
	// job has its stage overwritten and LastAttemptAt set to now; a
	// same-stage or error advance increments AttemptCount while a forward
	// advance resets it to 1, so retry backoff never throttles healthy
	// stage transitions. errorMessage replaces the stored message
	// (pass "" to clear it). Re-advancing to the job's current stage is a
	// no-op success. Moving backwards along the stage order returns
	// ErrStageRegression; moving out of error without a reset does too.
	// A non-empty documentID is recorded on the job.
	Advance(ctx context.Context, sourceID string, stage core.Stage, documentID, errorMessage string) (*core.IngestionJob, error)

	// Get retrieves the job for sourceID. Returns ErrNotFound when absent.
	Get(ctx context.Context, sourceID string) (*core.IngestionJob, error)

	// FindBatch returns up to limit jobs parked at stage that are
	// eligible for processing: unclaimed (or lease-expired) and past
	// their retry backoff window. No claim is taken; use Claim for
	// overlap-safe batches.
	FindBatch(ctx context.Context, stage core.Stage, limit int) ([]*core.IngestionJob, error)

	// Claim atomically leases up to limit eligible jobs at stage to
	// workerID for the lease duration and returns them. A job claimed by
	// another worker is skipped unless its lease has expired.
	Claim(ctx context.Context, stage core.Stage, workerID string, limit int, lease time.Duration) ([]*core.IngestionJob, error)

	// Release drops workerID's lease on the job for sourceID. Releasing
	// a job claimed by someone else is a no-op.
	Release(ctx context.Context, sourceID, workerID string) error

	// ResetErrors bulk-moves every job at stage error back to target for
	// retry, clearing error messages and leases. Returns the number of
	// jobs moved.
	ResetErrors(ctx context.Context, target core.Stage) (int, error)

	// CountByStage returns the number of jobs currently at each stage.
	CountByStage(ctx context.Context) (map[core.Stage]int, error)
}

// DocumentRepository stores persisted transcript records.
type DocumentRepository interface {
	Repository

	// AddDocument stores a new document and its content-hash and
	// source-id indexes. Returns ErrDuplicateKey when a document with
	// the same content hash already exists.
	AddDocument(ctx context.Context, doc *core.Document) (*core.Document, error)

	// UpdateDocument overwrites an existing document. Returns
	// ErrNotFound when absent.
	UpdateDocument(ctx context.Context, doc *core.Document) (*core.Document, error)

	// GetDocument retrieves a document by ID. Returns ErrNotFound when
	// absent.
	GetDocument(ctx context.Context, id string) (*core.Document, error)

	// FindByContentHash resolves a document by its content hash.
	// Returns ErrNotFound when no byte-identical document exists.
	FindByContentHash(ctx context.Context, hash string) (*core.Document, error)

	// FindBySourceID resolves a document by its external source
	// identifier. Returns ErrNotFound when absent.
	FindBySourceID(ctx context.Context, sourceID string) (*core.Document, error)

	// ListDocuments returns up to limit documents ordered by id,
	// starting strictly after startAfterID. An empty result means the
	// listing is exhausted.
	ListDocuments(ctx context.Context, limit int, startAfterID string) ([]*core.Document, error)

	// UpdateStatus sets the human-facing status field.
	UpdateStatus(ctx context.Context, id, status string) error
}

// SegmentRepository stores topical transcript segments.
type SegmentRepository interface {
	Repository

	// ReplaceSegments atomically replaces all segments for a document.
	// Segmentation is regenerated wholesale, never patched.
	ReplaceSegments(ctx context.Context, documentID string, segments []*core.Segment) ([]*core.Segment, error)

	// GetSegments returns a document's segments ordered by SegmentIndex.
	GetSegments(ctx context.Context, documentID string) ([]*core.Segment, error)

	// UpdateSummaryVector attaches an embedding to one segment.
	// Returns ErrNotFound when the segment does not exist.
	UpdateSummaryVector(ctx context.Context, documentID string, segmentIndex int, vector []float32) error
}

// ChunkRepository stores embeddable text chunks.
type ChunkRepository interface {
	Repository

	// UpsertChunks writes chunks keyed by (DocumentID, ContentHash):
	// an existing chunk with a matching hash is updated in place, others
	// are inserted. Returns the stored chunks.
	UpsertChunks(ctx context.Context, chunks ...*core.Chunk) ([]*core.Chunk, error)

	// GetChunks returns a document's chunks ordered by ChunkIndex.
	GetChunks(ctx context.Context, documentID string) ([]*core.Chunk, error)

	// FindSimilar finds chunks similar to the given vector. Returns
	// chunks with similarity >= minSimilarity, up to limit results,
	// ordered by similarity score descending.
	FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.SearchResult, error)
}

// ItemRepository stores normalized decisions, risks, tasks, and
// opportunities.
type ItemRepository interface {
	Repository

	// UpsertItems writes items keyed by (DocumentID, Description).
	UpsertItems(ctx context.Context, items ...*core.Item) ([]*core.Item, error)

	// GetItems returns all items for a document.
	GetItems(ctx context.Context, documentID string) ([]*core.Item, error)

	// GetItemsByType returns a document's items of one type.
	GetItemsByType(ctx context.Context, documentID string, itemType core.ItemType) ([]*core.Item, error)
}

// ObjectStore is path-addressed blob storage for raw transcript files.
type ObjectStore interface {
	// Put stores data at path, overwriting any existing blob.
	Put(ctx context.Context, path string, data []byte) error

	// Get retrieves the blob at path. Returns ErrNotFound when absent.
	Get(ctx context.Context, path string) ([]byte, error)

	// List returns up to limit paths with the given prefix, in
	// lexicographic order, starting strictly after startAfter. An empty
	// result means the listing is exhausted.
	List(ctx context.Context, prefix string, limit int, startAfter string) ([]string, error)

	// Close releases resources.
	Close() error
}
