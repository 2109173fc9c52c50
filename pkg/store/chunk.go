package store

// Chunk is the atomic retrieval unit: a bounded span of paper text together
// with its provenance and relevance score.
type Chunk struct {
	ID         string                 `json:"id"`
	Content    string                 `json:"content"`
	SourceFile string                 `json:"source_file"`
	Title      string                 `json:"title"`
	Page       int                    `json:"page"`
	ChunkIndex int                    `json:"chunk_index"`
	Score      float64                `json:"score"`
	HasScore   bool                   `json:"has_score"`
	Metadata   map[string]interface{} `json:"metadata"`
}
