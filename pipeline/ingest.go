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
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/scribelight/minutes/core"
	"github.com/scribelight/minutes/fireflies"
	"github.com/scribelight/minutes/storage"
	"github.com/scribelight/minutes/transcript"
)

// IngestResult reports the outcome of one markdown ingestion.
type IngestResult struct {
	SourceID   string `json:"sourceId"`
	DocumentID string `json:"documentId"`
	StorePath  string `json:"storePath,omitempty"`
	// Duplicate is true when the transcript was already known and no new
	// document was created.
	Duplicate bool `json:"duplicate"`
}

// IngestMarkdown runs the ingest stage for one markdown transcript: parse,
// dedup by source id and content hash, store the raw blob, create the
// Document, and advance the job to raw_ingested. Re-ingesting a known
// transcript is a no-op reporting the existing document.
//
// A transcript whose identifier cannot be established fails with
// transcript.UnidentifiableSourceError; nothing is stored for it.
func (p *Pipeline) IngestMarkdown(ctx context.Context, markdown string) (*IngestResult, error) {
	parsed, err := transcript.Parse(markdown)
	if err != nil {
		return nil, err
	}
	return p.ingestParsed(ctx, parsed, markdown)
}

// IngestFile ingests markdown that arrived as a named file. The filename
// participates in the source identifier cascade when the content carries no
// identifier of its own.
func (p *Pipeline) IngestFile(ctx context.Context, filename, markdown string) (*IngestResult, error) {
	parsed, err := transcript.ParseFile(filename, markdown)
	if err != nil {
		return nil, err
	}
	return p.ingestParsed(ctx, parsed, markdown)
}

func (p *Pipeline) ingestParsed(ctx context.Context, parsed *core.ParsedTranscript, markdown string) (*IngestResult, error) {
	sourceID := parsed.Source.ID
	if parsed.Source.Confidence < core.ConfidenceField {
		// Low-confidence extraction still ingests; the tag is kept on the
		// document so operators can audit these later.
		p.logger.Warn("transcript id extracted with low confidence",
			"source_id", sourceID,
			"confidence", parsed.Source.Confidence.String())
	}

	if result, ok, err := p.findExisting(ctx, sourceID, markdown); err != nil {
		return nil, err
	} else if ok {
		p.logger.Info("transcript already ingested", "source_id", sourceID,
			"document_id", result.DocumentID)
		return result, nil
	}

	storePath := rawObjectPath(parsed.StartedAt, sourceID)
	if err := p.objects.Put(ctx, storePath, []byte(markdown)); err != nil {
		// Raw blob storage is best-effort; the document carries the full
		// content either way.
		p.logger.Warn("failed to store raw transcript", "path", storePath, "err", err)
		storePath = ""
	}

	doc := &core.Document{
		ID:              uuid.NewString(),
		SourceID:        sourceID,
		Title:           parsed.Title,
		StartedAt:       parsed.StartedAt,
		Participants:    parsed.Participants,
		Summary:         parsed.Summary,
		ActionItems:     parsed.ActionItems,
		RawURL:          storePath,
		RawContent:      markdown,
		ContentHash:     core.HashContent(markdown),
		SourceLink:      parsed.SourceLink,
		AudioURL:        parsed.AudioURL,
		VideoURL:        parsed.VideoURL,
		DurationMinutes: parsed.DurationMinutes,
		Keywords:        parsed.Keywords,
		BulletPoints:    parsed.BulletPoints,
		IDConfidence:    parsed.Source.Confidence,
		Status:          core.DocumentStatusRawIngested,
	}

	if _, err := p.documents.AddDocument(ctx, doc); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			// Lost a race with a concurrent ingest of the same content.
			existing, ferr := p.documents.FindByContentHash(ctx, doc.ContentHash)
			if ferr != nil {
				return nil, err
			}
			return &IngestResult{
				SourceID:   existing.SourceID,
				DocumentID: existing.ID,
				Duplicate:  true,
			}, nil
		}
		return nil, err
	}

	if _, err := p.ledger.Advance(ctx, sourceID, core.StageRawIngested, doc.ID, ""); err != nil {
		return nil, err
	}

	p.logger.Info("ingested transcript",
		"source_id", sourceID,
		"document_id", doc.ID,
		"title", doc.Title,
		"lines", len(parsed.Lines))

	if p.asyncKickoff {
		docID := doc.ID
		p.workPool.Submit(func() {
			p.runRemainingStages(context.Background(), sourceID, docID)
		})
	}

	return &IngestResult{SourceID: sourceID, DocumentID: doc.ID, StorePath: storePath}, nil
}

// findExisting checks the three dedup paths in order: a document for the
// source id, a job row already carrying a document, and a document with the
// same content hash under a different source id.
func (p *Pipeline) findExisting(ctx context.Context, sourceID, markdown string) (*IngestResult, bool, error) {
	doc, err := p.documents.FindBySourceID(ctx, sourceID)
	if err == nil {
		return &IngestResult{SourceID: sourceID, DocumentID: doc.ID, Duplicate: true}, true, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, false, err
	}

	job, err := p.ledger.Get(ctx, sourceID)
	if err == nil && job.DocumentID != "" {
		return &IngestResult{SourceID: sourceID, DocumentID: job.DocumentID, Duplicate: true}, true, nil
	}
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, false, err
	}

	doc, err = p.documents.FindByContentHash(ctx, core.HashContent(markdown))
	if err == nil {
		return &IngestResult{SourceID: doc.SourceID, DocumentID: doc.ID, Duplicate: true}, true, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, false, err
	}

	return nil, false, nil
}

// IngestFromProvider fetches one transcript by provider id, renders it to
// markdown, and ingests it. This is the fireflies webhook path.
func (p *Pipeline) IngestFromProvider(ctx context.Context, transcriptID string) (*IngestResult, error) {
	if p.source == nil {
		return nil, ErrSourceClientRequired
	}

	t, err := p.source.Transcript(ctx, transcriptID)
	if err != nil {
		return nil, err
	}
	return p.IngestMarkdown(ctx, fireflies.FormatMarkdown(t))
}

// PollProvider lists the provider's recent transcripts and ingests any that
// are not yet known. It returns one result per newly ingested transcript.
func (p *Pipeline) PollProvider(ctx context.Context, limit int) ([]*IngestResult, error) {
	if p.source == nil {
		return nil, ErrSourceClientRequired
	}
	if limit <= 0 {
		limit = p.batchLimit
	}

	recent, err := p.source.RecentTranscripts(ctx, limit)
	if err != nil {
		return nil, err
	}

	var results []*IngestResult
	for _, header := range recent {
		if _, err := p.ledger.Get(ctx, header.ID); err == nil {
			continue
		} else if !errors.Is(err, storage.ErrNotFound) {
			return results, err
		}

		result, err := p.IngestFromProvider(ctx, header.ID)
		if err != nil {
			p.logger.Error("failed to ingest polled transcript",
				"transcript_id", header.ID, "err", err)
			continue
		}
		if !result.Duplicate {
			results = append(results, result)
		}
	}
	return results, nil
}

// rawObjectPath builds the YYYY/MM/<sourceID>.md object-store path, using
// the meeting date when known and the current date otherwise.
func rawObjectPath(startedAt, sourceID string) string {
	date, err := time.Parse("2006-01-02", startedAt)
	if err != nil {
		date = time.Now().UTC()
	}
	return fmt.Sprintf("%04d/%02d/%s.md", date.Year(), int(date.Month()), sourceID)
}
