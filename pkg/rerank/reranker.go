package rerank

import (
	"context"

	"medlit-rag-be/pkg/store"
)

// Reranker re-scores a candidate set against the query with a cross-encoder
// style model and returns it sorted by descending relevance.
type Reranker interface {
	Rerank(ctx context.Context, query string, candidates []store.Chunk) ([]store.Chunk, error)
}
