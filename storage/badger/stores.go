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


package badger

import "github.com/scribelight/minutes/storage"

// Stores bundles every repository built on one shared backend.
type Stores struct {
	Ledger    storage.JobLedger
	Documents storage.DocumentRepository
	Segments  storage.SegmentRepository
	Chunks    storage.ChunkRepository
	Items     storage.ItemRepository
	Objects   storage.ObjectStore

	backend *Backend
}

// Close closes the shared backend.
func (s *Stores) Close() error {
	return s.backend.Close()
}

// NewStores opens a backend at path and builds all repositories on it.
func NewStores(path string) (*Stores, error) {
	backend, err := OpenBackend(path, false)
	if err != nil {
		return nil, err
	}
	return buildStores(backend)
}

// NewMemoryStores creates in-memory repositories for testing.
// Caller must close the returned Stores when done.
func NewMemoryStores() (*Stores, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, err
	}
	return buildStores(backend)
}

func buildStores(backend *Backend) (*Stores, error) {
	ledger, err := NewJobLedger(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}
	documents, err := NewDocumentRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}
	segments, err := NewSegmentRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}
	chunks, err := NewChunkRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}
	items, err := NewItemRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}
	objects, err := NewObjectStore(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}
	return &Stores{
		Ledger:    ledger,
		Documents: documents,
		Segments:  segments,
		Chunks:    chunks,
		Items:     items,
		Objects:   objects,
		backend:   backend,
	}, nil
}
