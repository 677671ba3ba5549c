package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/scribelight/minutes/ai"
	"github.com/scribelight/minutes/core"
)

// ExtractDocument runs the extract stage for one document: gather the raw
// decisions, risks, and tasks from its segments plus the parsed action
// items, normalize them through the model, embed the descriptions, and
// upsert the structured items. The job advances to done and the document to
// complete. Items upsert by description, so re-running never duplicates.
func (p *Pipeline) ExtractDocument(ctx context.Context, documentID string) error {
	doc, err := p.documents.GetDocument(ctx, documentID)
	if err != nil {
		return err
	}
	segments, err := p.segments.GetSegments(ctx, documentID)
	if err != nil {
		return err
	}

	raw := &ai.RawItems{ActionItems: doc.ActionItems}
	for _, seg := range segments {
		raw.Decisions = append(raw.Decisions, seg.Decisions...)
		raw.Risks = append(raw.Risks, seg.Risks...)
		raw.Tasks = append(raw.Tasks, seg.Tasks...)
	}

	normalized, err := p.provider.ItemNormalizer().NormalizeItems(ctx, raw)
	if err != nil {
		return fmt.Errorf("normalizing items for %s: %w", documentID, err)
	}

	items := buildItems(documentID, normalized)
	if len(items) > 0 {
		if err := p.embedItems(ctx, documentID, items); err != nil {
			return err
		}
		if _, err := p.items.UpsertItems(ctx, items...); err != nil {
			return err
		}
	}

	if _, err := p.ledger.Advance(ctx, doc.SourceID, core.StageDone, documentID, ""); err != nil {
		return err
	}
	if err := p.documents.UpdateStatus(ctx, documentID, core.DocumentStatusComplete); err != nil {
		return err
	}

	p.logger.Info("extracted document",
		"document_id", documentID,
		"decisions", len(normalized.Decisions),
		"risks", len(normalized.Risks),
		"tasks", len(normalized.Tasks),
		"opportunities", len(normalized.Opportunities))
	return nil
}

// buildItems flattens normalized model output into item records. Decisions
// start active; everything else starts open. Items with blank descriptions
// are dropped rather than failing the stage.
func buildItems(documentID string, normalized *ai.NormalizedItems) []*core.Item {
	var items []*core.Item
	add := func(item *core.Item) {
		if strings.TrimSpace(item.Description) == "" {
			return
		}
		items = append(items, item)
	}

	for _, d := range normalized.Decisions {
		add(&core.Item{
			DocumentID:  documentID,
			Type:        core.ItemTypeDecision,
			Description: d.Description,
			Rationale:   d.Rationale,
			Owner:       d.Owner,
			Status:      "active",
		})
	}
	for _, r := range normalized.Risks {
		add(&core.Item{
			DocumentID:  documentID,
			Type:        core.ItemTypeRisk,
			Description: r.Description,
			Category:    r.Category,
			Likelihood:  r.Likelihood,
			Impact:      r.Impact,
			Owner:       r.Owner,
			Status:      "open",
		})
	}
	for _, t := range normalized.Tasks {
		add(&core.Item{
			DocumentID:  documentID,
			Type:        core.ItemTypeTask,
			Description: t.Description,
			Assignee:    t.Assignee,
			DueDate:     t.DueDate,
			Priority:    t.Priority,
			Status:      "open",
		})
	}
	for _, o := range normalized.Opportunities {
		add(&core.Item{
			DocumentID:  documentID,
			Type:        core.ItemTypeOpportunity,
			Description: o.Description,
			Kind:        o.Kind,
			Owner:       o.Owner,
			Status:      "open",
		})
	}
	return items
}

// embedItems attaches a vector to every item, batching one embed call.
func (p *Pipeline) embedItems(ctx context.Context, documentID string, items []*core.Item) error {
	texts := make([]string, len(items))
	for i, item := range items {
		texts[i] = item.Description
	}

	vectors, err := p.provider.Embedder().EmbedTexts(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding items for %s: %w", documentID, err)
	}
	if len(vectors) != len(items) {
		return fmt.Errorf("embedder returned %d vectors for %d items", len(vectors), len(items))
	}
	for i, item := range items {
		item.Vector = vectors[i]
	}
	return nil
}
