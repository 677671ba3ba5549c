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

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/scribelight/minutes/core"
	"github.com/scribelight/minutes/storage"
)

// JobLedger implements storage.JobLedger for BadgerDB.
type JobLedger struct {
	backend *Backend
}

var _ storage.JobLedger = (*JobLedger)(nil)

// NewJobLedger creates a new JobLedger on the given backend.
func NewJobLedger(backend *Backend) (*JobLedger, error) {
	return &JobLedger{backend: backend}, nil
}

// Close is a no-op; the shared backend is closed by its owner.
func (l *JobLedger) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (l *JobLedger) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return l.backend.WithTransaction(ctx, fn)
}

// Advance performs the idempotent ledger upsert for one source.
func (l *JobLedger) Advance(ctx context.Context, sourceID string, stage core.Stage, documentID, errorMessage string) (*core.IngestionJob, error) {
	if sourceID == "" {
		return nil, fmt.Errorf("%w: %v", storage.ErrInvalidQuery, core.ErrEmptySourceID)
	}
	if err := core.ValidateStage(stage); err != nil {
		return nil, err
	}

	var job *core.IngestionJob
	err := l.backend.WithTx(func(tx *badger.Txn) error {
		key := makeJobKey(sourceID)
		existing, err := readJob(tx, key)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		if existing == nil {
			job = &core.IngestionJob{
				SourceID:      sourceID,
				DocumentID:    documentID,
				Stage:         stage,
				AttemptCount:  1,
				LastAttemptAt: now,
				ErrorMessage:  errorMessage,
				InsertedAt:    now,
				UpdatedAt:     now,
			}
		} else {
			// Re-advancing to the current stage is an idempotent no-op
			// so repeated deliveries never push a job into error.
			if stage != existing.Stage && !existing.Stage.CanAdvance(stage) {
				return fmt.Errorf("%w: %s -> %s for source %s",
					storage.ErrStageRegression, existing.Stage, stage, sourceID)
			}
			job = existing
			if stage == existing.Stage || stage == core.StageError {
				job.AttemptCount++
			} else {
				// Forward progress starts a fresh attempt series; the
				// retry backoff throttles retries, not healthy
				// stage transitions.
				job.AttemptCount = 1
			}
			job.Stage = stage
			job.LastAttemptAt = now
			job.ErrorMessage = errorMessage
			if documentID != "" {
				job.DocumentID = documentID
			}
			job.UpdatedAt = now
		}

		if err := tx.Set(key, storage.MarshalJob(job)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)

	if err != nil {
		return nil, err
	}
	return job, nil
}

// Get retrieves the job for sourceID.
func (l *JobLedger) Get(ctx context.Context, sourceID string) (*core.IngestionJob, error) {
	var job *core.IngestionJob
	err := l.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		job, err = readJob(tx, makeJobKey(sourceID))
		return err
	}, false)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, storage.ErrNotFound
	}
	return job, nil
}

// FindBatch returns up to limit eligible jobs parked at stage.
func (l *JobLedger) FindBatch(ctx context.Context, stage core.Stage, limit int) ([]*core.IngestionJob, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", storage.ErrInvalidQuery)
	}

	now := time.Now().UTC()
	var jobs []*core.IngestionJob
	err := l.backend.WithTx(func(tx *badger.Txn) error {
		return scanJobs(tx, func(job *core.IngestionJob) (bool, error) {
			if job.Stage == stage && eligible(job, now) {
				jobs = append(jobs, job)
			}
			return len(jobs) < limit, nil
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

// Claim leases up to limit eligible jobs at stage to workerID.
func (l *JobLedger) Claim(ctx context.Context, stage core.Stage, workerID string, limit int, lease time.Duration) ([]*core.IngestionJob, error) {
	if limit <= 0 || lease <= 0 {
		return nil, fmt.Errorf("%w: limit and lease must be positive", storage.ErrInvalidQuery)
	}
	if workerID == "" {
		return nil, fmt.Errorf("%w: worker id required", storage.ErrInvalidQuery)
	}

	now := time.Now().UTC()
	var claimed []*core.IngestionJob
	err := l.backend.WithTx(func(tx *badger.Txn) error {
		err := scanJobs(tx, func(job *core.IngestionJob) (bool, error) {
			if job.Stage != stage || !eligible(job, now) {
				return true, nil
			}
			job.ClaimedBy = workerID
			job.ClaimedUntil = now.Add(lease)
			job.UpdatedAt = now
			if err := tx.Set(makeJobKey(job.SourceID), storage.MarshalJob(job)); err != nil {
				return false, err
			}
			claimed = append(claimed, job)
			return len(claimed) < limit, nil
		})
		if err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

// Release drops workerID's lease on a job. A lease held by a different
// worker is left untouched.
func (l *JobLedger) Release(ctx context.Context, sourceID, workerID string) error {
	return l.backend.WithTx(func(tx *badger.Txn) error {
		key := makeJobKey(sourceID)
		job, err := readJob(tx, key)
		if err != nil {
			return err
		}
		if job == nil {
			return storage.ErrNotFound
		}
		if job.ClaimedBy != workerID {
			return nil
		}
		job.ClaimedBy = ""
		job.ClaimedUntil = time.Time{}
		job.UpdatedAt = time.Now().UTC()
		if err := tx.Set(key, storage.MarshalJob(job)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// ResetErrors bulk-moves every error job back to target. Attempt counts
// are zeroed so the jobs are immediately eligible again.
func (l *JobLedger) ResetErrors(ctx context.Context, target core.Stage) (int, error) {
	if err := core.ValidateStage(target); err != nil {
		return 0, err
	}
	if target == core.StageError {
		return 0, fmt.Errorf("%w: cannot reset errors to error", storage.ErrInvalidQuery)
	}

	now := time.Now().UTC()
	moved := 0
	err := l.backend.WithTx(func(tx *badger.Txn) error {
		err := scanJobs(tx, func(job *core.IngestionJob) (bool, error) {
			if job.Stage != core.StageError {
				return true, nil
			}
			job.Stage = target
			job.ErrorMessage = ""
			job.AttemptCount = 0
			job.ClaimedBy = ""
			job.ClaimedUntil = time.Time{}
			job.UpdatedAt = now
			if err := tx.Set(makeJobKey(job.SourceID), storage.MarshalJob(job)); err != nil {
				return false, err
			}
			moved++
			return true, nil
		})
		if err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return 0, err
	}
	return moved, nil
}

// CountByStage returns the number of jobs at each stage.
func (l *JobLedger) CountByStage(ctx context.Context) (map[core.Stage]int, error) {
	counts := make(map[core.Stage]int)
	err := l.backend.WithTx(func(tx *badger.Txn) error {
		return scanJobs(tx, func(job *core.IngestionJob) (bool, error) {
			counts[job.Stage]++
			return true, nil
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return counts, nil
}

// eligible reports whether a job may be handed out: no live lease, and
// past the retry backoff window for its attempt count.
func eligible(job *core.IngestionJob, now time.Time) bool {
	if job.Claimed(now) {
		return false
	}
	wait := storage.RetryBackoff(job.AttemptCount)
	return !now.Before(job.LastAttemptAt.Add(wait))
}

// scanJobs iterates all ledger rows, invoking fn per job until fn
// returns false or the prefix is exhausted.
func scanJobs(tx *badger.Txn, fn func(job *core.IngestionJob) (bool, error)) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(jobPrefix + ":")
	iter := tx.NewIterator(opts)
	defer iter.Close()

	for iter.Rewind(); iter.Valid(); iter.Next() {
		var job *core.IngestionJob
		err := iter.Item().Value(func(val []byte) error {
			var err error
			job, err = storage.UnmarshalJob(val)
			return err
		})
		if err != nil {
			return err
		}
		cont, err := fn(job)
		if err != nil {
			return err
		}
		if !cont {
			return nil
		}
	}
	return nil
}

// readJob reads one job by key, returning nil when absent.
func readJob(tx *badger.Txn, key []byte) (*core.IngestionJob, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}
	var job *core.IngestionJob
	err = item.Value(func(val []byte) error {
		var err error
		job, err = storage.UnmarshalJob(val)
		return err
	})
	return job, err
}
