package pipeline

import (
	"context"
	"fmt"

	"github.com/scribelight/minutes/core"
	"github.com/scribelight/minutes/transcript"
)

// SegmentDocument runs the segmentation stage for one document: the model
// proposes topical segments over the numbered transcript, the proposed
// ranges are validated and repaired into an exact partition, and the
// document's segments are replaced. Re-running regenerates from scratch.
func (p *Pipeline) SegmentDocument(ctx context.Context, documentID string) error {
	doc, err := p.documents.GetDocument(ctx, documentID)
	if err != nil {
		return err
	}

	parsed, err := transcript.Parse(doc.RawContent)
	if err != nil {
		return err
	}
	lines := parsed.Lines
	if len(lines) == 0 {
		return fmt.Errorf("%w: %s", ErrNoTranscriptLines, documentID)
	}

	result, err := p.provider.Segmenter().SegmentTranscript(ctx,
		transcript.FormatForModel(lines), len(lines))
	if err != nil {
		return fmt.Errorf("segmenting %s: %w", documentID, err)
	}

	segments := make([]*core.Segment, len(result.Segments))
	for i, plan := range result.Segments {
		segments[i] = &core.Segment{
			DocumentID:   documentID,
			SegmentIndex: i,
			Title:        plan.Title,
			Summary:      plan.Summary,
			StartIndex:   plan.StartLine,
			EndIndex:     plan.EndLine,
			Decisions:    plan.Decisions,
			Risks:        plan.Risks,
			Tasks:        plan.Tasks,
		}
	}

	if err := core.ValidateSegmentPartition(segments, len(lines)); err != nil {
		p.logger.Warn("model segments do not partition transcript, repairing",
			"document_id", documentID, "err", err)
		segments, err = core.RepairSegmentPartition(segments, len(lines))
		if err != nil {
			return fmt.Errorf("segment partition for %s: %w", documentID, err)
		}
	}

	if _, err := p.segments.ReplaceSegments(ctx, documentID, segments); err != nil {
		return err
	}

	// The model's whole-meeting summary fills in for transcripts whose
	// provider export carried none.
	if doc.Summary == "" && result.MeetingSummary != "" {
		doc.Summary = result.MeetingSummary
		if _, err := p.documents.UpdateDocument(ctx, doc); err != nil {
			return err
		}
	}

	if _, err := p.ledger.Advance(ctx, doc.SourceID, core.StageSegmented, documentID, ""); err != nil {
		return err
	}
	if err := p.documents.UpdateStatus(ctx, documentID, core.DocumentStatusSegmented); err != nil {
		return err
	}

	p.logger.Info("segmented document",
		"document_id", documentID,
		"segments", len(segments),
		"lines", len(lines))
	return nil
}
