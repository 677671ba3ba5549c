package badger

import (
	"fmt"
)

// Key prefixes for different data types. Composite keys are built so
// that BadgerDB's lexicographic iteration order matches the order the
// repositories want to return records in.
const (
	jobPrefix       = "job"
	documentPrefix  = "docrec"
	docHashPrefix   = "dochash"
	docSourcePrefix = "docsrc"
	segmentPrefix   = "segrec"
	chunkPrefix     = "churec"
	itemPrefix      = "itmrec"
	objectPrefix    = "objblob"
)

// makeJobKey generates a key for a ledger row by source id.
func makeJobKey(sourceID string) []byte {
	return []byte(fmt.Sprintf("%s:%s", jobPrefix, sourceID))
}

// makeDocumentKey generates a key for a document by id.
func makeDocumentKey(id string) []byte {
	return []byte(fmt.Sprintf("%s:%s", documentPrefix, id))
}

// makeDocHashKey generates a content-hash index key mapping to a
// document id.
func makeDocHashKey(hash string) []byte {
	return []byte(fmt.Sprintf("%s:%s", docHashPrefix, hash))
}

// makeDocSourceKey generates a source-id index key mapping to a
// document id.
func makeDocSourceKey(sourceID string) []byte {
	return []byte(fmt.Sprintf("%s:%s", docSourcePrefix, sourceID))
}

// makeSegmentKey generates a composite key for a segment. The index is
// zero-padded so prefix iteration yields segments in order.
func makeSegmentKey(documentID string, segmentIndex int) []byte {
	return []byte(fmt.Sprintf("%s:%s:%06d", segmentPrefix, documentID, segmentIndex))
}

// makeSegmentScanKey generates the prefix for iterating one document's
// segments.
func makeSegmentScanKey(documentID string) []byte {
	return []byte(fmt.Sprintf("%s:%s:", segmentPrefix, documentID))
}

// makeChunkKey generates a composite key for a chunk. Chunks are keyed
// by content hash, which is what makes UpsertChunks idempotent.
func makeChunkKey(documentID, contentHash string) []byte {
	return []byte(fmt.Sprintf("%s:%s:%s", chunkPrefix, documentID, contentHash))
}

// makeChunkScanKey generates the prefix for iterating one document's
// chunks.
func makeChunkScanKey(documentID string) []byte {
	return []byte(fmt.Sprintf("%s:%s:", chunkPrefix, documentID))
}

// makeItemKey generates a composite key for a structured item, keyed by
// a hash of its description.
func makeItemKey(documentID, descriptionHash string) []byte {
	return []byte(fmt.Sprintf("%s:%s:%s", itemPrefix, documentID, descriptionHash))
}

// makeItemScanKey generates the prefix for iterating one document's
// items.
func makeItemScanKey(documentID string) []byte {
	return []byte(fmt.Sprintf("%s:%s:", itemPrefix, documentID))
}

// makeObjectKey generates a key for a stored blob by path.
func makeObjectKey(path string) []byte {
	return []byte(fmt.Sprintf("%s:%s", objectPrefix, path))
}
