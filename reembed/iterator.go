package reembed

import (
	"context"

	"github.com/scribelight/minutes/core"
	"github.com/scribelight/minutes/storage"
)

// DocumentIterator pages over every stored document in id order.
type DocumentIterator struct {
	repo     storage.DocumentRepository
	pageSize int
}

// NewDocumentIterator creates an iterator fetching pageSize documents at a
// time. A non-positive pageSize falls back to the default batch size.
func NewDocumentIterator(repo storage.DocumentRepository, pageSize int) *DocumentIterator {
	if pageSize <= 0 {
		pageSize = DefaultConfig().BatchSize
	}
	return &DocumentIterator{repo: repo, pageSize: pageSize}
}

// ForEach calls fn for each page of documents. Iteration stops on the
// first error from fn; context cancellation is checked between pages.
func (it *DocumentIterator) ForEach(ctx context.Context, fn func([]*core.Document) error) error {
	startAfter := ""
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		page, err := it.repo.ListDocuments(ctx, it.pageSize, startAfter)
		if err != nil {
			return err
		}
		if len(page) == 0 {
			return nil
		}
		startAfter = page[len(page)-1].ID

		if err := fn(page); err != nil {
			return err
		}
	}
}

// Count walks the full listing and returns the number of documents.
func (it *DocumentIterator) Count(ctx context.Context) (int, error) {
	total := 0
	err := it.ForEach(ctx, func(docs []*core.Document) error {
		total += len(docs)
		return nil
	})
	return total, err
}
