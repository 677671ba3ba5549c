package fireflies

// Transcript is a meeting record as returned by the Fireflies API.
// Date is epoch milliseconds; Duration is seconds.
type Transcript struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Date           int64      `json:"date"`
	Duration       float64    `json:"duration"`
	OrganizerEmail string     `json:"organizer_email"`
	Participants   []string   `json:"participants"`
	TranscriptURL  string     `json:"transcript_url"`
	AudioURL       string     `json:"audio_url"`
	VideoURL       string     `json:"video_url"`
	Summary        *Summary   `json:"summary"`
	Sentences      []Sentence `json:"sentences"`
}

// Summary is the provider-generated meeting summary block.
type Summary struct {
	Overview    string   `json:"overview"`
	ActionItems []string `json:"action_items"`
	Keywords    []string `json:"keywords"`
}

// Sentence is one spoken sentence with speaker attribution.
// StartTime and EndTime are seconds from the start of the recording.
type Sentence struct {
	SpeakerName string  `json:"speaker_name"`
	Text        string  `json:"text"`
	StartTime   float64 `json:"start_time"`
	EndTime     float64 `json:"end_time"`
}
