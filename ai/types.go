package ai

// SegmentPlan is one topical segment proposed by the model. StartLine and
// EndLine are inclusive indices into the numbered transcript the model saw.
type SegmentPlan struct {
	Title     string   `json:"title"`
	Summary   string   `json:"summary"`
	StartLine int      `json:"start_line"`
	EndLine   int      `json:"end_line"`
	Decisions []string `json:"decisions"`
	Risks     []string `json:"risks"`
	Tasks     []string `json:"tasks"`
}

// SegmentationResult is the full output of one segmentation call.
type SegmentationResult struct {
	MeetingSummary string        `json:"meeting_summary"`
	Segments       []SegmentPlan `json:"segments"`
}

// RawItems carries the unnormalized strings harvested from a meeting's
// segments and parsed action items, as input to normalization.
type RawItems struct {
	Decisions   []string `json:"decisions"`
	Risks       []string `json:"risks"`
	Tasks       []string `json:"tasks"`
	ActionItems []string `json:"action_items"`
}

// Empty reports whether there is nothing to normalize.
func (r *RawItems) Empty() bool {
	return r == nil ||
		len(r.Decisions)+len(r.Risks)+len(r.Tasks)+len(r.ActionItems) == 0
}

// Decision is a normalized decision made in the meeting.
type Decision struct {
	Description string `json:"description"`
	Rationale   string `json:"rationale"`
	Owner       string `json:"owner"`
}

// Risk is a normalized risk raised in the meeting.
type Risk struct {
	Description string `json:"description"`
	Category    string `json:"category"`
	Likelihood  string `json:"likelihood"`
	Impact      string `json:"impact"`
	Owner       string `json:"owner"`
}

// Task is a normalized action item with assignment metadata.
type Task struct {
	Description string `json:"description"`
	Assignee    string `json:"assignee"`
	DueDate     string `json:"due_date"`
	Priority    string `json:"priority"`
}

// Opportunity is a follow-up the model inferred from the meeting's items.
type Opportunity struct {
	Description string `json:"description"`
	Kind        string `json:"kind"`
	Owner       string `json:"owner"`
}

// NormalizedItems is the full output of one normalization call.
type NormalizedItems struct {
	Decisions     []Decision    `json:"decisions"`
	Risks         []Risk        `json:"risks"`
	Tasks         []Task        `json:"tasks"`
	Opportunities []Opportunity `json:"opportunities"`
}
