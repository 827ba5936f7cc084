package archive

import "github.com/MrSnakeDoc/archivist/internal/domain"

// Failure is one record that could not be written.
type Failure struct {
	// Message is the index of the parsed message the record came from.
	Message int    `json:"message"`
	URL     string `json:"url,omitempty"`
	Error   string `json:"error"`

	Err error `json:"-"`
}

// Outcome lists the ids written to one collection and the writes that failed.
type Outcome struct {
	Written []string  `json:"written"`
	Failed  []Failure `json:"failed"`
}

func newOutcome() Outcome {
	return Outcome{Written: []string{}, Failed: []Failure{}}
}

func (o *Outcome) ok(id string) {
	o.Written = append(o.Written, id)
}

func (o *Outcome) fail(message int, url string, err error) {
	o.Failed = append(o.Failed, Failure{
		Message: message,
		URL:     url,
		Error:   err.Error(),
		Err:     err,
	})
}

// Report is the result of one import. An import that returns a Report
// and a nil error completed, even if some writes failed.
type Report struct {
	Archive domain.Archive `json:"archive"`

	// Messages is the number of messages the parser produced.
	Messages int `json:"messages"`
	// Skipped counts messages with blank content.
	Skipped int `json:"skipped"`
	// Untitled counts links saved with their URL as title.
	Untitled int `json:"untitled"`

	Notes Outcome `json:"notes"`
	Links Outcome `json:"links"`
}

// Complete reports whether every note and link was written.
func (r Report) Complete() bool {
	return len(r.Notes.Failed) == 0 && len(r.Links.Failed) == 0
}
