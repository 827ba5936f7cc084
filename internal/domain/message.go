package domain

// ParsedMessage is one message recovered from an uploaded export.
//
// Date and Time are kept in the export's own format and are empty when
// the source carries no timestamp (for example a merged ChatGPT export).
// Content may span several physical lines.
type ParsedMessage struct {
	Date    string `json:"date"`
	Time    string `json:"time"`
	Sender  string `json:"sender"`
	Content string `json:"content"`
}

// EnrichedLink pairs a URL with the title resolved for it.
// Title is empty when resolution failed; see WithFallbackTitle.
type EnrichedLink struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// WithFallbackTitle returns a copy whose title is never empty:
// a blank title is replaced by the URL itself.
func (l EnrichedLink) WithFallbackTitle() EnrichedLink {
	if isBlank(l.Title) {
		l.Title = l.URL
	}
	return l
}
