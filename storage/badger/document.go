package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/scribelight/minutes/core"
	"github.com/scribelight/minutes/storage"
)

// DocumentRepository implements storage.DocumentRepository for BadgerDB.
type DocumentRepository struct {
	backend *Backend
}

var _ storage.DocumentRepository = (*DocumentRepository)(nil)

// NewDocumentRepository creates a new DocumentRepository.
func NewDocumentRepository(backend *Backend) (*DocumentRepository, error) {
	return &DocumentRepository{backend: backend}, nil
}

// Close is a no-op; the shared backend is closed by its owner.
func (r *DocumentRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *DocumentRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddDocument stores a new document and its hash and source indexes.
func (r *DocumentRepository) AddDocument(ctx context.Context, doc *core.Document) (*core.Document, error) {
	if err := core.ValidateDocument(doc); err != nil {
		return nil, err
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		hashKey := makeDocHashKey(doc.ContentHash)
		if _, err := tx.Get(hashKey); err == nil {
			return fmt.Errorf("%w: content hash %s", storage.ErrDuplicateKey, doc.ContentHash)
		} else if err != badger.ErrKeyNotFound {
			return err
		}

		doc.InsertedAt = time.Now().UTC()
		doc.UpdatedAt = doc.InsertedAt

		if err := tx.Set(makeDocumentKey(doc.ID), storage.MarshalDocument(doc)); err != nil {
			return err
		}
		if err := tx.Set(hashKey, []byte(doc.ID)); err != nil {
			return err
		}
		if err := tx.Set(makeDocSourceKey(doc.SourceID), []byte(doc.ID)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)

	if err != nil {
		return nil, err
	}
	return doc, nil
}

// UpdateDocument overwrites an existing document.
func (r *DocumentRepository) UpdateDocument(ctx context.Context, doc *core.Document) (*core.Document, error) {
	if err := core.ValidateDocument(doc); err != nil {
		return nil, err
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeDocumentKey(doc.ID)
		old, err := readDocument(tx, key)
		if err != nil {
			return err
		}
		if old == nil {
			return storage.ErrNotFound
		}

		doc.InsertedAt = old.InsertedAt
		doc.UpdatedAt = time.Now().UTC()

		if err := tx.Set(key, storage.MarshalDocument(doc)); err != nil {
			return err
		}
		// Keep indexes in step when the raw content or source changed.
		if old.ContentHash != doc.ContentHash {
			if err := tx.Delete(makeDocHashKey(old.ContentHash)); err != nil {
				return err
			}
			if err := tx.Set(makeDocHashKey(doc.ContentHash), []byte(doc.ID)); err != nil {
				return err
			}
		}
		if old.SourceID != doc.SourceID {
			if err := tx.Delete(makeDocSourceKey(old.SourceID)); err != nil {
				return err
			}
			if err := tx.Set(makeDocSourceKey(doc.SourceID), []byte(doc.ID)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	if err != nil {
		return nil, err
	}
	return doc, nil
}

// GetDocument retrieves a document by ID.
func (r *DocumentRepository) GetDocument(ctx context.Context, id string) (*core.Document, error) {
	var doc *core.Document
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		doc, err = readDocument(tx, makeDocumentKey(id))
		return err
	}, false)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, storage.ErrNotFound
	}
	return doc, nil
}

// FindByContentHash resolves a document through the content-hash index.
func (r *DocumentRepository) FindByContentHash(ctx context.Context, hash string) (*core.Document, error) {
	return r.findViaIndex(makeDocHashKey(hash))
}

// FindBySourceID resolves a document through the source-id index.
func (r *DocumentRepository) FindBySourceID(ctx context.Context, sourceID string) (*core.Document, error) {
	return r.findViaIndex(makeDocSourceKey(sourceID))
}

func (r *DocumentRepository) findViaIndex(indexKey []byte) (*core.Document, error) {
	var doc *core.Document
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(indexKey)
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}
		var id string
		if err := item.Value(func(val []byte) error {
			id = string(val)
			return nil
		}); err != nil {
			return err
		}
		doc, err = readDocument(tx, makeDocumentKey(id))
		if err != nil {
			return err
		}
		if doc == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// ListDocuments returns up to limit documents ordered by id, starting
// strictly after startAfterID. An empty result means the listing is
// exhausted.
func (r *DocumentRepository) ListDocuments(ctx context.Context, limit int, startAfterID string) ([]*core.Document, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", storage.ErrInvalidQuery)
	}

	var docs []*core.Document
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(documentPrefix + ":")
		it := tx.NewIterator(opts)
		defer it.Close()

		seek := []byte(documentPrefix + ":")
		if startAfterID != "" {
			// Seek past the cursor key; appending a zero byte lands on
			// the first key strictly after it.
			seek = append(makeDocumentKey(startAfterID), 0)
		}
		for it.Seek(seek); it.Valid() && len(docs) < limit; it.Next() {
			var doc *core.Document
			if err := it.Item().Value(func(val []byte) error {
				var err error
				doc, err = storage.UnmarshalDocument(val)
				return err
			}); err != nil {
				return err
			}
			docs = append(docs, doc)
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}
	return docs, nil
}

// UpdateStatus sets the human-facing status field.
func (r *DocumentRepository) UpdateStatus(ctx context.Context, id, status string) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeDocumentKey(id)
		doc, err := readDocument(tx, key)
		if err != nil {
			return err
		}
		if doc == nil {
			return storage.ErrNotFound
		}
		doc.Status = status
		doc.UpdatedAt = time.Now().UTC()
		if err := tx.Set(key, storage.MarshalDocument(doc)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// readDocument reads one document by key, returning nil when absent.
func readDocument(tx *badger.Txn, key []byte) (*core.Document, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}
	var doc *core.Document
	err = item.Value(func(val []byte) error {
		var err error
		doc, err = storage.UnmarshalDocument(val)
		return err
	})
	return doc, err
}
