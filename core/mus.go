package core

import (
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// Hand-written MUS serializers for every record the storage layer persists.
// Field order is part of the on-disk format; append new fields at the end
// and never reorder existing ones.

var (
	// JobMUS serializes IngestionJob values.
	JobMUS = jobSer{}
	// DocumentMUS serializes Document values.
	DocumentMUS = documentSer{}
	// SegmentMUS serializes Segment values.
	SegmentMUS = segmentSer{}
	// ChunkMUS serializes Chunk values.
	ChunkMUS = chunkSer{}
	// ItemMUS serializes Item values.
	ItemMUS = itemSer{}
	// IDMUS serializes content-derived IDs.
	IDMUS = idSer{}
)

var (
	stringSliceMUS  = ord.NewSliceSer[string](ord.String)
	float32SliceMUS = ord.NewSliceSer[float32](raw.Float32)
	timeMUS         = timeSer{}
)

type idSer struct{}

func (idSer) Marshal(id ID, bs []byte) int { return varint.Uint64.Marshal(uint64(id), bs) }

func (idSer) Unmarshal(bs []byte) (ID, int, error) {
	v, n, err := varint.Uint64.Unmarshal(bs)
	return ID(v), n, err
}

func (idSer) Size(id ID) int { return varint.Uint64.Size(uint64(id)) }

func (idSer) Skip(bs []byte) (int, error) { return varint.Uint64.Skip(bs) }

// timeSer encodes a presence flag followed by Unix microseconds, so the
// zero time round-trips exactly.
type timeSer struct{}

func (timeSer) Marshal(t time.Time, bs []byte) (n int) {
	if t.IsZero() {
		return ord.Bool.Marshal(false, bs)
	}
	n = ord.Bool.Marshal(true, bs)
	n += varint.Int64.Marshal(t.UnixMicro(), bs[n:])
	return
}

func (timeSer) Unmarshal(bs []byte) (t time.Time, n int, err error) {
	present, n, err := ord.Bool.Unmarshal(bs)
	if err != nil || !present {
		return
	}
	var micro int64
	var n1 int
	micro, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	t = time.UnixMicro(micro).UTC()
	return
}

func (timeSer) Size(t time.Time) int {
	if t.IsZero() {
		return ord.Bool.Size(false)
	}
	return ord.Bool.Size(true) + varint.Int64.Size(t.UnixMicro())
}

func (timeSer) Skip(bs []byte) (n int, err error) {
	present, n, err := ord.Bool.Unmarshal(bs)
	if err != nil || !present {
		return
	}
	n1, err := varint.Int64.Skip(bs[n:])
	n += n1
	return
}

type jobSer struct{}

func (jobSer) Marshal(j IngestionJob, bs []byte) (n int) {
	n = ord.String.Marshal(j.SourceID, bs)
	n += ord.String.Marshal(j.DocumentID, bs[n:])
	n += ord.String.Marshal(string(j.Stage), bs[n:])
	n += varint.Int.Marshal(j.AttemptCount, bs[n:])
	n += timeMUS.Marshal(j.LastAttemptAt, bs[n:])
	n += ord.String.Marshal(j.ErrorMessage, bs[n:])
	n += ord.String.Marshal(j.ClaimedBy, bs[n:])
	n += timeMUS.Marshal(j.ClaimedUntil, bs[n:])
	n += timeMUS.Marshal(j.InsertedAt, bs[n:])
	n += timeMUS.Marshal(j.UpdatedAt, bs[n:])
	return
}

func (jobSer) Unmarshal(bs []byte) (j IngestionJob, n int, err error) {
	var n1 int
	if j.SourceID, n1, err = ord.String.Unmarshal(bs); err != nil {
		return j, n + n1, err
	}
	n += n1
	if j.DocumentID, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return j, n + n1, err
	}
	n += n1
	var stage string
	if stage, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return j, n + n1, err
	}
	j.Stage = Stage(stage)
	n += n1
	if j.AttemptCount, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return j, n + n1, err
	}
	n += n1
	if j.LastAttemptAt, n1, err = timeMUS.Unmarshal(bs[n:]); err != nil {
		return j, n + n1, err
	}
	n += n1
	if j.ErrorMessage, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return j, n + n1, err
	}
	n += n1
	if j.ClaimedBy, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return j, n + n1, err
	}
	n += n1
	if j.ClaimedUntil, n1, err = timeMUS.Unmarshal(bs[n:]); err != nil {
		return j, n + n1, err
	}
	n += n1
	if j.InsertedAt, n1, err = timeMUS.Unmarshal(bs[n:]); err != nil {
		return j, n + n1, err
	}
	n += n1
	if j.UpdatedAt, n1, err = timeMUS.Unmarshal(bs[n:]); err != nil {
		return j, n + n1, err
	}
	n += n1
	return
}

func (jobSer) Size(j IngestionJob) (size int) {
	size = ord.String.Size(j.SourceID)
	size += ord.String.Size(j.DocumentID)
	size += ord.String.Size(string(j.Stage))
	size += varint.Int.Size(j.AttemptCount)
	size += timeMUS.Size(j.LastAttemptAt)
	size += ord.String.Size(j.ErrorMessage)
	size += ord.String.Size(j.ClaimedBy)
	size += timeMUS.Size(j.ClaimedUntil)
	size += timeMUS.Size(j.InsertedAt)
	size += timeMUS.Size(j.UpdatedAt)
	return
}

func (s jobSer) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}

type documentSer struct{}

func (documentSer) Marshal(d Document, bs []byte) (n int) {
	n = ord.String.Marshal(d.ID, bs)
	n += ord.String.Marshal(d.SourceID, bs[n:])
	n += ord.String.Marshal(d.Title, bs[n:])
	n += ord.String.Marshal(d.StartedAt, bs[n:])
	n += stringSliceMUS.Marshal(d.Participants, bs[n:])
	n += ord.String.Marshal(d.Summary, bs[n:])
	n += stringSliceMUS.Marshal(d.ActionItems, bs[n:])
	n += ord.String.Marshal(d.RawURL, bs[n:])
	n += ord.String.Marshal(d.RawContent, bs[n:])
	n += ord.String.Marshal(d.ContentHash, bs[n:])
	n += ord.String.Marshal(d.SourceLink, bs[n:])
	n += ord.String.Marshal(d.AudioURL, bs[n:])
	n += ord.String.Marshal(d.VideoURL, bs[n:])
	n += varint.Int.Marshal(d.DurationMinutes, bs[n:])
	n += stringSliceMUS.Marshal(d.Keywords, bs[n:])
	n += stringSliceMUS.Marshal(d.BulletPoints, bs[n:])
	n += varint.Int.Marshal(int(d.IDConfidence), bs[n:])
	n += ord.String.Marshal(d.Status, bs[n:])
	n += timeMUS.Marshal(d.InsertedAt, bs[n:])
	n += timeMUS.Marshal(d.UpdatedAt, bs[n:])
	return
}

func (documentSer) Unmarshal(bs []byte) (d Document, n int, err error) {
	var n1 int
	if d.ID, n1, err = ord.String.Unmarshal(bs); err != nil {
		return d, n + n1, err
	}
	n += n1
	if d.SourceID, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	n += n1
	if d.Title, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	n += n1
	if d.StartedAt, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	n += n1
	if d.Participants, n1, err = stringSliceMUS.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	n += n1
	if d.Summary, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	n += n1
	if d.ActionItems, n1, err = stringSliceMUS.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	n += n1
	if d.RawURL, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	n += n1
	if d.RawContent, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	n += n1
	if d.ContentHash, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	n += n1
	if d.SourceLink, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	n += n1
	if d.AudioURL, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	n += n1
	if d.VideoURL, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	n += n1
	if d.DurationMinutes, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	n += n1
	if d.Keywords, n1, err = stringSliceMUS.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	n += n1
	if d.BulletPoints, n1, err = stringSliceMUS.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	n += n1
	var conf int
	if conf, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	d.IDConfidence = IDConfidence(conf)
	n += n1
	if d.Status, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	n += n1
	if d.InsertedAt, n1, err = timeMUS.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	n += n1
	if d.UpdatedAt, n1, err = timeMUS.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	n += n1
	return
}

func (documentSer) Size(d Document) (size int) {
	size = ord.String.Size(d.ID)
	size += ord.String.Size(d.SourceID)
	size += ord.String.Size(d.Title)
	size += ord.String.Size(d.StartedAt)
	size += stringSliceMUS.Size(d.Participants)
	size += ord.String.Size(d.Summary)
	size += stringSliceMUS.Size(d.ActionItems)
	size += ord.String.Size(d.RawURL)
	size += ord.String.Size(d.RawContent)
	size += ord.String.Size(d.ContentHash)
	size += ord.String.Size(d.SourceLink)
	size += ord.String.Size(d.AudioURL)
	size += ord.String.Size(d.VideoURL)
	size += varint.Int.Size(d.DurationMinutes)
	size += stringSliceMUS.Size(d.Keywords)
	size += stringSliceMUS.Size(d.BulletPoints)
	size += varint.Int.Size(int(d.IDConfidence))
	size += ord.String.Size(d.Status)
	size += timeMUS.Size(d.InsertedAt)
	size += timeMUS.Size(d.UpdatedAt)
	return
}

func (s documentSer) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}

type segmentSer struct{}

func (segmentSer) Marshal(sg Segment, bs []byte) (n int) {
	n = ord.String.Marshal(sg.DocumentID, bs)
	n += varint.Int.Marshal(sg.SegmentIndex, bs[n:])
	n += ord.String.Marshal(sg.Title, bs[n:])
	n += varint.Int.Marshal(sg.StartIndex, bs[n:])
	n += varint.Int.Marshal(sg.EndIndex, bs[n:])
	n += ord.String.Marshal(sg.Summary, bs[n:])
	n += stringSliceMUS.Marshal(sg.Decisions, bs[n:])
	n += stringSliceMUS.Marshal(sg.Risks, bs[n:])
	n += stringSliceMUS.Marshal(sg.Tasks, bs[n:])
	n += float32SliceMUS.Marshal(sg.SummaryVector, bs[n:])
	n += timeMUS.Marshal(sg.InsertedAt, bs[n:])
	n += timeMUS.Marshal(sg.UpdatedAt, bs[n:])
	return
}

func (segmentSer) Unmarshal(bs []byte) (sg Segment, n int, err error) {
	var n1 int
	if sg.DocumentID, n1, err = ord.String.Unmarshal(bs); err != nil {
		return sg, n + n1, err
	}
	n += n1
	if sg.SegmentIndex, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return sg, n + n1, err
	}
	n += n1
	if sg.Title, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return sg, n + n1, err
	}
	n += n1
	if sg.StartIndex, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return sg, n + n1, err
	}
	n += n1
	if sg.EndIndex, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return sg, n + n1, err
	}
	n += n1
	if sg.Summary, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return sg, n + n1, err
	}
	n += n1
	if sg.Decisions, n1, err = stringSliceMUS.Unmarshal(bs[n:]); err != nil {
		return sg, n + n1, err
	}
	n += n1
	if sg.Risks, n1, err = stringSliceMUS.Unmarshal(bs[n:]); err != nil {
		return sg, n + n1, err
	}
	n += n1
	if sg.Tasks, n1, err = stringSliceMUS.Unmarshal(bs[n:]); err != nil {
		return sg, n + n1, err
	}
	n += n1
	if sg.SummaryVector, n1, err = float32SliceMUS.Unmarshal(bs[n:]); err != nil {
		return sg, n + n1, err
	}
	n += n1
	if sg.InsertedAt, n1, err = timeMUS.Unmarshal(bs[n:]); err != nil {
		return sg, n + n1, err
	}
	n += n1
	if sg.UpdatedAt, n1, err = timeMUS.Unmarshal(bs[n:]); err != nil {
		return sg, n + n1, err
	}
	n += n1
	return
}

func (segmentSer) Size(sg Segment) (size int) {
	size = ord.String.Size(sg.DocumentID)
	size += varint.Int.Size(sg.SegmentIndex)
	size += ord.String.Size(sg.Title)
	size += varint.Int.Size(sg.StartIndex)
	size += varint.Int.Size(sg.EndIndex)
	size += ord.String.Size(sg.Summary)
	size += stringSliceMUS.Size(sg.Decisions)
	size += stringSliceMUS.Size(sg.Risks)
	size += stringSliceMUS.Size(sg.Tasks)
	size += float32SliceMUS.Size(sg.SummaryVector)
	size += timeMUS.Size(sg.InsertedAt)
	size += timeMUS.Size(sg.UpdatedAt)
	return
}

func (s segmentSer) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}

type chunkSer struct{}

func (chunkSer) Marshal(c Chunk, bs []byte) (n int) {
	n = ord.String.Marshal(c.DocumentID, bs)
	n += varint.Int.Marshal(c.ChunkIndex, bs[n:])
	n += varint.Int.Marshal(c.SegmentIndex+1, bs[n:]) // shift so -1 stays non-negative
	n += ord.String.Marshal(string(c.DocType), bs[n:])
	n += ord.String.Marshal(c.Content, bs[n:])
	n += ord.String.Marshal(c.ContentHash, bs[n:])
	n += float32SliceMUS.Marshal(c.Vector, bs[n:])
	n += timeMUS.Marshal(c.InsertedAt, bs[n:])
	n += timeMUS.Marshal(c.UpdatedAt, bs[n:])
	return
}

func (chunkSer) Unmarshal(bs []byte) (c Chunk, n int, err error) {
	var n1 int
	if c.DocumentID, n1, err = ord.String.Unmarshal(bs); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.ChunkIndex, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	var shifted int
	if shifted, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	c.SegmentIndex = shifted - 1
	n += n1
	var docType string
	if docType, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	c.DocType = DocType(docType)
	n += n1
	if c.Content, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.ContentHash, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.Vector, n1, err = float32SliceMUS.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.InsertedAt, n1, err = timeMUS.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.UpdatedAt, n1, err = timeMUS.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	return
}

func (chunkSer) Size(c Chunk) (size int) {
	size = ord.String.Size(c.DocumentID)
	size += varint.Int.Size(c.ChunkIndex)
	size += varint.Int.Size(c.SegmentIndex + 1)
	size += ord.String.Size(string(c.DocType))
	size += ord.String.Size(c.Content)
	size += ord.String.Size(c.ContentHash)
	size += float32SliceMUS.Size(c.Vector)
	size += timeMUS.Size(c.InsertedAt)
	size += timeMUS.Size(c.UpdatedAt)
	return
}

func (s chunkSer) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}

type itemSer struct{}

func (itemSer) Marshal(it Item, bs []byte) (n int) {
	n = ord.String.Marshal(it.DocumentID, bs)
	n += ord.String.Marshal(string(it.Type), bs[n:])
	n += ord.String.Marshal(it.Description, bs[n:])
	n += ord.String.Marshal(it.Rationale, bs[n:])
	n += ord.String.Marshal(it.Owner, bs[n:])
	n += ord.String.Marshal(it.Category, bs[n:])
	n += ord.String.Marshal(it.Likelihood, bs[n:])
	n += ord.String.Marshal(it.Impact, bs[n:])
	n += ord.String.Marshal(it.Assignee, bs[n:])
	n += ord.String.Marshal(it.DueDate, bs[n:])
	n += ord.String.Marshal(it.Priority, bs[n:])
	n += ord.String.Marshal(it.Kind, bs[n:])
	n += float32SliceMUS.Marshal(it.Vector, bs[n:])
	n += ord.String.Marshal(it.Status, bs[n:])
	n += timeMUS.Marshal(it.InsertedAt, bs[n:])
	n += timeMUS.Marshal(it.UpdatedAt, bs[n:])
	return
}

func (itemSer) Unmarshal(bs []byte) (it Item, n int, err error) {
	var n1 int
	if it.DocumentID, n1, err = ord.String.Unmarshal(bs); err != nil {
		return it, n + n1, err
	}
	n += n1
	var itemType string
	if itemType, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return it, n + n1, err
	}
	it.Type = ItemType(itemType)
	n += n1
	if it.Description, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return it, n + n1, err
	}
	n += n1
	if it.Rationale, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return it, n + n1, err
	}
	n += n1
	if it.Owner, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return it, n + n1, err
	}
	n += n1
	if it.Category, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return it, n + n1, err
	}
	n += n1
	if it.Likelihood, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return it, n + n1, err
	}
	n += n1
	if it.Impact, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return it, n + n1, err
	}
	n += n1
	if it.Assignee, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return it, n + n1, err
	}
	n += n1
	if it.DueDate, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return it, n + n1, err
	}
	n += n1
	if it.Priority, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return it, n + n1, err
	}
	n += n1
	if it.Kind, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return it, n + n1, err
	}
	n += n1
	if it.Vector, n1, err = float32SliceMUS.Unmarshal(bs[n:]); err != nil {
		return it, n + n1, err
	}
	n += n1
	if it.Status, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return it, n + n1, err
	}
	n += n1
	if it.InsertedAt, n1, err = timeMUS.Unmarshal(bs[n:]); err != nil {
		return it, n + n1, err
	}
	n += n1
	if it.UpdatedAt, n1, err = timeMUS.Unmarshal(bs[n:]); err != nil {
		return it, n + n1, err
	}
	n += n1
	return
}

func (itemSer) Size(it Item) (size int) {
	size = ord.String.Size(it.DocumentID)
	size += ord.String.Size(string(it.Type))
	size += ord.String.Size(it.Description)
	size += ord.String.Size(it.Rationale)
	size += ord.String.Size(it.Owner)
	size += ord.String.Size(it.Category)
	size += ord.String.Size(it.Likelihood)
	size += ord.String.Size(it.Impact)
	size += ord.String.Size(it.Assignee)
	size += ord.String.Size(it.DueDate)
	size += ord.String.Size(it.Priority)
	size += ord.String.Size(it.Kind)
	size += float32SliceMUS.Size(it.Vector)
	size += ord.String.Size(it.Status)
	size += timeMUS.Size(it.InsertedAt)
	size += timeMUS.Size(it.UpdatedAt)
	return
}

func (s itemSer) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}
