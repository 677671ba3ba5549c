package server

import "errors"

var (
	// ErrPipelineRequired is returned when a pipeline is not provided.
	ErrPipelineRequired = errors.New("pipeline required")

	// ErrLedgerRequired is returned when a job ledger is not provided.
	ErrLedgerRequired = errors.New("job ledger required")

	// ErrObjectStoreRequired is returned when an object store is not provided.
	ErrObjectStoreRequired = errors.New("object store required")
)
