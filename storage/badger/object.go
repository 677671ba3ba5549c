package badger

import (
	"bytes"
	"context"

	"github.com/dgraph-io/badger/v4"
	"github.com/scribelight/minutes/storage"
)

// ObjectStore implements storage.ObjectStore on top of BadgerDB, giving
// single-node deployments a path-addressed blob store without a separate
// service.
type ObjectStore struct {
	backend *Backend
}

var _ storage.ObjectStore = (*ObjectStore)(nil)

// NewObjectStore creates a new ObjectStore.
func NewObjectStore(backend *Backend) (*ObjectStore, error) {
	return &ObjectStore{backend: backend}, nil
}

// Close is a no-op; the shared backend is closed by its owner.
func (s *ObjectStore) Close() error {
	return nil
}

// Put stores data at path, overwriting any existing blob.
func (s *ObjectStore) Put(ctx context.Context, path string, data []byte) error {
	return s.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeObjectKey(path), data); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// Get retrieves the blob at path.
func (s *ObjectStore) Get(ctx context.Context, path string) ([]byte, error) {
	var data []byte
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeObjectKey(path))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	}, false)
	if err != nil {
		return nil, err
	}
	return data, nil
}

// List returns up to limit blob paths with the given prefix in
// lexicographic order, starting strictly after startAfter. Pagination is
// keyset-style: pass the last path of the previous page to continue.
func (s *ObjectStore) List(ctx context.Context, prefix string, limit int, startAfter string) ([]string, error) {
	keyPrefix := makeObjectKey(prefix)
	var paths []string

	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = keyPrefix
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		seek := keyPrefix
		if startAfter != "" {
			// Seek just past the startAfter key.
			seek = append(makeObjectKey(startAfter), 0)
		}
		for iter.Seek(seek); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			if !bytes.HasPrefix(key, keyPrefix) {
				break
			}
			paths = append(paths, string(key[len(objectPrefix)+1:]))
			if limit > 0 && len(paths) >= limit {
				break
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return paths, nil
}
