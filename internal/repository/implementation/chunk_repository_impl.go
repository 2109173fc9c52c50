package implementation

import (
	"context"
	"encoding/json"

	"medlit-rag-be/internal/model"
	"medlit-rag-be/internal/repository/contract"
	"medlit-rag-be/pkg/store"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type ChunkRepositoryImpl struct {
	db *gorm.DB
}

func NewChunkRepository(db *gorm.DB) contract.ChunkRepository {
	return &ChunkRepositoryImpl{db: db}
}

// SearchSimilarWithScore returns chunks with similarity scores.
// Cosine distance in pgvector is: 1 - cosine_similarity
// So we compute: 1 - (embedding_value <=> query_vector) = cosine_similarity
func (r *ChunkRepositoryImpl) SearchSimilarWithScore(ctx context.Context, queryEmbedding []float32, limit int) ([]store.Chunk, error) {
	if limit <= 0 {
		limit = 10
	}

	type result struct {
		model.PaperChunk
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(queryEmbedding)

	err := r.db.WithContext(ctx).
		Table("paper_chunks").
		Select("paper_chunks.*, 1 - (embedding_value <=> ?) as similarity", queryVector).
		Order("similarity DESC").
		Limit(limit).
		Scan(&results).Error

	if err != nil {
		return nil, err
	}

	chunks := make([]store.Chunk, len(results))
	for i, res := range results {
		chunks[i] = toStoreChunk(&res.PaperChunk, res.Similarity)
	}
	return chunks, nil
}

func (r *ChunkRepositoryImpl) ReplaceForSource(ctx context.Context, sourceFile string, chunks []*model.PaperChunk) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("source_file = ?", sourceFile).Delete(&model.PaperChunk{}).Error; err != nil {
			return err
		}
		if len(chunks) == 0 {
			return nil
		}
		return tx.CreateInBatches(chunks, 100).Error
	})
}

func (r *ChunkRepositoryImpl) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.PaperChunk{}).Count(&count).Error
	return count, err
}

func toStoreChunk(m *model.PaperChunk, similarity float64) store.Chunk {
	var meta map[string]interface{}
	if len(m.Metadata) > 0 {
		// Ignore malformed metadata rather than failing the search
		_ = json.Unmarshal(m.Metadata, &meta)
	}

	return store.Chunk{
		ID:         m.Id.String(),
		Content:    m.Content,
		SourceFile: m.SourceFile,
		Title:      m.Title,
		Page:       m.Page,
		ChunkIndex: m.ChunkIndex,
		Score:      similarity,
		HasScore:   true,
		Metadata:   meta,
	}
}
