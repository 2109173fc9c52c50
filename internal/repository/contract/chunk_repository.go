package contract

import (
	"context"

	"medlit-rag-be/internal/model"
	"medlit-rag-be/pkg/store"
)

type ChunkRepository interface {
	// SearchSimilarWithScore returns the chunks nearest to the query vector
	// by cosine similarity, highest first, with the similarity attached.
	SearchSimilarWithScore(ctx context.Context, queryEmbedding []float32, limit int) ([]store.Chunk, error)

	// ReplaceForSource atomically swaps all chunks of one source file.
	// Re-indexing a paper is idempotent: old chunks go, new chunks come in
	// one transaction.
	ReplaceForSource(ctx context.Context, sourceFile string, chunks []*model.PaperChunk) error

	// Count returns the total number of indexed chunks.
	Count(ctx context.Context) (int64, error)
}
