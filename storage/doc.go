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


// Package storage provides the storage abstraction layer for minutes.
//
// This package defines repository interfaces that decouple storage
// implementation from pipeline logic, allowing different backends
// (BadgerDB, in-memory, etc.) to be used interchangeably.
//
// # Constructor Return Type Pattern
//
// Public constructors return interfaces to enforce abstraction and keep
// backends swappable:
//
//	ledger, err := badger.NewJobLedger(backend)  // returns storage.JobLedger
//
// Internal package constructors may return concrete types since they are
// only used within the implementation package.
//
// # Architecture
//
// The storage layer follows the Repository pattern:
//
//   - JobLedger: pipeline progress per source transcript, with
//     claim/lease and retry-backoff semantics
//   - DocumentRepository: persisted transcript records, indexed by
//     content hash and source id
//   - SegmentRepository: topical segments per document
//   - ChunkRepository: embeddable chunks, upserted by content hash,
//     searchable by vector similarity
//   - ItemRepository: normalized decisions, risks, tasks, opportunities
//   - ObjectStore: path-addressed raw transcript blobs
//
// # Usage
//
// Open a backend and build repositories on top of it:
//
//	backend, err := badger.OpenBackend("/path/to/db", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//	ledger, err := badger.NewJobLedger(backend)
//
// Use in tests with in-memory storage via badger.NewMemoryStores().
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
//
// # Context Support
//
// All repository methods accept context.Context for cancellation and
// timeout support.
package storage
