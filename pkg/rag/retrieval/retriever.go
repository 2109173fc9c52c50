package retrieval

import (
	"context"
	"fmt"

	"medlit-rag-be/internal/pkg/logger"
	"medlit-rag-be/pkg/embedding"
	"medlit-rag-be/pkg/events"
	"medlit-rag-be/pkg/rerank"
	"medlit-rag-be/pkg/store"
)

// SearchStore is the slice of the chunk repository the retriever needs.
type SearchStore interface {
	SearchSimilarWithScore(ctx context.Context, queryEmbedding []float32, limit int) ([]store.Chunk, error)
}

// EventSink receives telemetry events. Nil disables telemetry.
type EventSink interface {
	Publish(ctx context.Context, event events.Event) error
}

// Retriever runs the two-stage search: vector similarity first, then an
// optional cross-encoder rerank pass. A missing or failing reranker
// degrades silently to similarity order; it never fails the question.
type Retriever struct {
	embedder embedding.EmbeddingProvider
	chunks   SearchStore
	reranker rerank.Reranker // nil when rerank is disabled or misconfigured
	topK     int
	logger   logger.ILogger
	sink     EventSink
}

func NewRetriever(embedder embedding.EmbeddingProvider, chunks SearchStore, reranker rerank.Reranker, topK int, log logger.ILogger, sink EventSink) *Retriever {
	if topK <= 0 {
		topK = 10
	}
	return &Retriever{
		embedder: embedder,
		chunks:   chunks,
		reranker: reranker,
		topK:     topK,
		logger:   log,
		sink:     sink,
	}
}

func (r *Retriever) Retrieve(ctx context.Context, query string) ([]store.Chunk, error) {
	emb, err := r.embedder.Generate(query, "RETRIEVAL_QUERY")
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	candidates, err := r.chunks.SearchSimilarWithScore(ctx, emb.Embedding.Values, r.topK)
	if err != nil {
		return nil, fmt.Errorf("similarity search failed: %w", err)
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	if r.reranker == nil {
		r.degrade(ctx, "reranker unavailable", len(candidates))
		return candidates, nil
	}

	reranked, err := r.reranker.Rerank(ctx, query, candidates)
	if err != nil {
		r.degrade(ctx, err.Error(), len(candidates))
		return candidates, nil
	}

	return reranked, nil
}

// degrade logs the fallback to similarity order and, when a telemetry sink
// is configured, publishes it so operators can see silent quality loss.
func (r *Retriever) degrade(ctx context.Context, reason string, candidates int) {
	r.logger.Warn("Retriever", "Rerank degraded, using similarity order", map[string]interface{}{
		"reason":     reason,
		"candidates": candidates,
	})
	if r.sink != nil {
		if err := r.sink.Publish(ctx, events.NewRerankDegraded(reason, candidates)); err != nil {
			r.logger.Warn("Retriever", "Failed to publish degradation event", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
}
