package dto

// PaperPage is one page of extracted paper text.
type PaperPage struct {
	Page    int    `json:"page"`
	Content string `json:"content"`
}

// IndexPaperRequest is both the POST /api/papers body and the payload
// published to the ingest topic. Re-submitting the same source_file
// replaces its chunks.
type IndexPaperRequest struct {
	SourceFile string                 `json:"source_file"`
	Title      string                 `json:"title"`
	Pages      []PaperPage            `json:"pages"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}
