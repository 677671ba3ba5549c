package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/scribelight/minutes/core"
	"github.com/scribelight/minutes/storage"
)

// SegmentRepository implements storage.SegmentRepository for BadgerDB.
type SegmentRepository struct {
	backend *Backend
}

var _ storage.SegmentRepository = (*SegmentRepository)(nil)

// NewSegmentRepository creates a new SegmentRepository.
func NewSegmentRepository(backend *Backend) (*SegmentRepository, error) {
	return &SegmentRepository{backend: backend}, nil
}

// Close is a no-op; the shared backend is closed by its owner.
func (r *SegmentRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *SegmentRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// ReplaceSegments atomically swaps a document's segment set.
func (r *SegmentRepository) ReplaceSegments(ctx context.Context, documentID string, segments []*core.Segment) ([]*core.Segment, error) {
	for _, seg := range segments {
		if err := core.ValidateSegment(seg); err != nil {
			return nil, err
		}
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		// Drop the previous generation first: regeneration may produce
		// fewer segments than before.
		var stale [][]byte
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeSegmentScanKey(documentID)
		iter := tx.NewIterator(opts)
		for iter.Rewind(); iter.Valid(); iter.Next() {
			stale = append(stale, iter.Item().KeyCopy(nil))
		}
		iter.Close()
		for _, key := range stale {
			if err := tx.Delete(key); err != nil {
				return err
			}
		}

		now := time.Now().UTC()
		for _, seg := range segments {
			seg.DocumentID = documentID
			seg.InsertedAt = now
			seg.UpdatedAt = now
			key := makeSegmentKey(documentID, seg.SegmentIndex)
			if err := tx.Set(key, storage.MarshalSegment(seg)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	if err != nil {
		return nil, err
	}
	return segments, nil
}

// GetSegments returns a document's segments ordered by SegmentIndex.
// Key layout gives the ordering for free.
func (r *SegmentRepository) GetSegments(ctx context.Context, documentID string) ([]*core.Segment, error) {
	var segments []*core.Segment
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeSegmentScanKey(documentID)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				seg, err := storage.UnmarshalSegment(val)
				if err != nil {
					return err
				}
				segments = append(segments, seg)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return segments, nil
}

// UpdateSummaryVector attaches an embedding to one segment.
func (r *SegmentRepository) UpdateSummaryVector(ctx context.Context, documentID string, segmentIndex int, vector []float32) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeSegmentKey(documentID, segmentIndex)
		item, err := tx.Get(key)
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}
		var seg *core.Segment
		if err := item.Value(func(val []byte) error {
			var err error
			seg, err = storage.UnmarshalSegment(val)
			return err
		}); err != nil {
			return err
		}
		seg.SummaryVector = vector
		seg.UpdatedAt = time.Now().UTC()
		if err := tx.Set(key, storage.MarshalSegment(seg)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}
