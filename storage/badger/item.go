package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/scribelight/minutes/core"
	"github.com/scribelight/minutes/storage"
)

// ItemRepository implements storage.ItemRepository for BadgerDB.
type ItemRepository struct {
	backend *Backend
}

var _ storage.ItemRepository = (*ItemRepository)(nil)

// NewItemRepository creates a new ItemRepository.
func NewItemRepository(backend *Backend) (*ItemRepository, error) {
	return &ItemRepository{backend: backend}, nil
}

// Close is a no-op; the shared backend is closed by its owner.
func (r *ItemRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *ItemRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// UpsertItems writes items keyed by (DocumentID, Description), so a
// repeated extraction updates rather than duplicates.
func (r *ItemRepository) UpsertItems(ctx context.Context, items ...*core.Item) ([]*core.Item, error) {
	for _, item := range items {
		if err := core.ValidateItem(item); err != nil {
			return nil, err
		}
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		now := time.Now().UTC()
		for _, item := range items {
			key := makeItemKey(item.DocumentID, core.HashContent(item.Description))

			stored, err := tx.Get(key)
			switch err {
			case nil:
				var old *core.Item
				if err := stored.Value(func(val []byte) error {
					var err error
					old, err = storage.UnmarshalItem(val)
					return err
				}); err != nil {
					return err
				}
				item.InsertedAt = old.InsertedAt
				// Status belongs to downstream consumers; an upsert
				// never changes it once the item exists.
				item.Status = old.Status
			case badger.ErrKeyNotFound:
				item.InsertedAt = now
			default:
				return err
			}
			item.UpdatedAt = now

			if err := tx.Set(key, storage.MarshalItem(item)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	if err != nil {
		return nil, err
	}
	return items, nil
}

// GetItems returns all items for a document.
func (r *ItemRepository) GetItems(ctx context.Context, documentID string) ([]*core.Item, error) {
	var items []*core.Item
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeItemScanKey(documentID)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				item, err := storage.UnmarshalItem(val)
				if err != nil {
					return err
				}
				items = append(items, item)
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
	return items, nil
}

// GetItemsByType returns a document's items of one type.
func (r *ItemRepository) GetItemsByType(ctx context.Context, documentID string, itemType core.ItemType) ([]*core.Item, error) {
	all, err := r.GetItems(ctx, documentID)
	if err != nil {
		return nil, err
	}
	var items []*core.Item
	for _, item := range all {
		if item.Type == itemType {
			items = append(items, item)
		}
	}
	return items, nil
}
