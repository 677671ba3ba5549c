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


package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/scribelight/minutes/core"
)

// JobResult reports the outcome of processing one claimed job.
type JobResult struct {
	SourceID string `json:"sourceId"`
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
}

// BatchResult reports one ProcessPending run.
type BatchResult struct {
	Processed int         `json:"processed"`
	Results   []JobResult `json:"results"`
}

// PollStages lists the stages the batch driver services, in pipeline order.
// A job parked at each stage is waiting for the next stage's work.
var PollStages = []core.Stage{
	core.StageRawIngested,
	core.StageSegmented,
	core.StageChunked,
	core.StageEmbedded,
}

// stageHandler returns the operation that moves a job parked at stage
// forward, or nil when the stage has no batch work (pending jobs are moved
// by ingestion itself; done and error are terminal).
func (p *Pipeline) stageHandler(stage core.Stage) func(context.Context, string) error {
	switch stage {
	case core.StageRawIngested:
		return p.SegmentDocument
	case core.StageSegmented, core.StageChunked:
		// A job stuck at chunked crashed mid-embed; the embed stage is
		// idempotent, so both park points re-run the same handler.
		return p.EmbedDocument
	case core.StageEmbedded:
		return p.ExtractDocument
	default:
		return nil
	}
}

// ProcessPending claims up to limit eligible jobs parked at stage and
// processes them sequentially. A job failure moves that job to error with
// the message recorded and the batch continues; the batch itself only fails
// when the ledger does. Every claimed job's lease is released.
func (p *Pipeline) ProcessPending(ctx context.Context, stage core.Stage, limit int) (*BatchResult, error) {
	handler := p.stageHandler(stage)
	if handler == nil {
		return nil, fmt.Errorf("no pending work for stage %q", stage)
	}
	if limit <= 0 {
		limit = p.batchLimit
	}

	jobs, err := p.ledger.Claim(ctx, stage, p.workerID, limit, p.lease)
	if err != nil {
		return nil, err
	}
	if len(jobs) == 0 {
		return &BatchResult{}, nil
	}

	p.logger.Info("processing pending jobs", "stage", stage, "count", len(jobs))

	batch := &BatchResult{Processed: len(jobs)}
	for _, job := range jobs {
		result := JobResult{SourceID: job.SourceID, Success: true}

		err := p.processJob(ctx, job.SourceID, job.DocumentID, handler)
		if err != nil {
			result.Success = false
			result.Error = err.Error()
			p.logger.Error("job failed", "source_id", job.SourceID,
				"stage", stage, "err", err)
			if _, aerr := p.ledger.Advance(ctx, job.SourceID, core.StageError, job.DocumentID, err.Error()); aerr != nil {
				p.logger.Error("failed to record job error",
					"source_id", job.SourceID, "err", aerr)
			}
		}

		if rerr := p.ledger.Release(ctx, job.SourceID, p.workerID); rerr != nil {
			p.logger.Warn("failed to release job lease",
				"source_id", job.SourceID, "err", rerr)
		}
		batch.Results = append(batch.Results, result)
	}
	return batch, nil
}

func (p *Pipeline) processJob(ctx context.Context, sourceID, documentID string, handler func(context.Context, string) error) error {
	if documentID == "" {
		return fmt.Errorf("%w: %s", ErrJobWithoutDocument, sourceID)
	}
	return handler(ctx, documentID)
}

// ProcessDocument runs every remaining stage for one job's document,
// stopping at the first failure. It resumes from the job's current stage.
func (p *Pipeline) ProcessDocument(ctx context.Context, sourceID string) error {
	job, err := p.ledger.Get(ctx, sourceID)
	if err != nil {
		return err
	}
	return p.runStagesFrom(ctx, job.Stage, sourceID, job.DocumentID)
}

func (p *Pipeline) runStagesFrom(ctx context.Context, stage core.Stage, sourceID, documentID string) error {
	for {
		handler := p.stageHandler(stage)
		if handler == nil {
			return nil
		}
		if err := p.processJob(ctx, sourceID, documentID, handler); err != nil {
			if _, aerr := p.ledger.Advance(ctx, sourceID, core.StageError, documentID, err.Error()); aerr != nil {
				p.logger.Error("failed to record job error",
					"source_id", sourceID, "err", aerr)
			}
			return err
		}
		job, err := p.ledger.Get(ctx, sourceID)
		if err != nil {
			return err
		}
		stage = job.Stage
	}
}

// runRemainingStages is the async post-ingest kickoff body.
func (p *Pipeline) runRemainingStages(ctx context.Context, sourceID, documentID string) {
	if err := p.runStagesFrom(ctx, core.StageRawIngested, sourceID, documentID); err != nil {
		p.logger.Error("async processing failed",
			"source_id", sourceID, "document_id", documentID, "err", err)
	}
}

// RunPoller drives all stages on a fixed interval until ctx is cancelled.
// This is the cron analog for deployments without an external scheduler.
func (p *Pipeline) RunPoller(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	p.logger.Info("poller started", "interval", interval)
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("poller stopped")
			return
		case <-ticker.C:
			for _, stage := range PollStages {
				if _, err := p.ProcessPending(ctx, stage, p.batchLimit); err != nil {
					p.logger.Error("poll failed", "stage", stage, "err", err)
				}
			}
		}
	}
}

// ResetErrors moves every error job back to target, clearing messages and
// leases, and returns how many were moved.
func (p *Pipeline) ResetErrors(ctx context.Context, target core.Stage) (int, error) {
	moved, err := p.ledger.ResetErrors(ctx, target)
	if err != nil {
		return 0, err
	}
	if moved > 0 {
		p.logger.Info("reset error jobs", "target", target, "count", moved)
	}
	return moved, nil
}
