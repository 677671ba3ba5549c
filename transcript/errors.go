package transcript

import "fmt"

// UnidentifiableSourceError reports that no stable source identifier could
// be extracted from a transcript. This is a hard failure: falling back to a
// derived identifier risks duplicate ingestion, so callers must reject the
// document instead.
type UnidentifiableSourceError struct {
	// Snippet is the leading portion of the content, for diagnostics.
	Snippet string
}

func (e *UnidentifiableSourceError) Error() string {
	return fmt.Sprintf("could not extract a source identifier from content: %q", e.Snippet)
}
