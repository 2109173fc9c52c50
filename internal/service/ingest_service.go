package service

import (
	"context"
	"encoding/json"
	"log"

	"medlit-rag-be/internal/dto"
	"medlit-rag-be/internal/model"
	"medlit-rag-be/internal/repository/contract"
	"medlit-rag-be/pkg/chunker"
	"medlit-rag-be/pkg/embedding"
	"medlit-rag-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

// EventSink receives telemetry events. Nil disables telemetry.
type EventSink interface {
	Publish(ctx context.Context, event events.Event) error
}

type IIngestService interface {
	// Publish queues a paper for indexing and returns immediately.
	Publish(ctx context.Context, req dto.IndexPaperRequest) error

	// Consume starts the background worker that chunks, embeds, and
	// stores queued papers.
	Consume(ctx context.Context) error
}

type ingestService struct {
	pubSub            *gochannel.GoChannel
	topicName         string
	chunks            contract.ChunkRepository
	embeddingProvider embedding.EmbeddingProvider
	splitter          *chunker.Splitter
	sink              EventSink
}

func NewIngestService(
	pubSub *gochannel.GoChannel,
	topicName string,
	chunks contract.ChunkRepository,
	embeddingProvider embedding.EmbeddingProvider,
	splitter *chunker.Splitter,
	sink EventSink,
) IIngestService {
	return &ingestService{
		pubSub:            pubSub,
		topicName:         topicName,
		chunks:            chunks,
		embeddingProvider: embeddingProvider,
		splitter:          splitter,
		sink:              sink,
	}
}

func (is *ingestService) Publish(ctx context.Context, req dto.IndexPaperRequest) error {
	payload, err := json.Marshal(req)
	if err != nil {
		return err
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	return is.pubSub.Publish(is.topicName, msg)
}

func (is *ingestService) Consume(ctx context.Context) error {
	messages, err := is.pubSub.Subscribe(ctx, is.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			is.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (is *ingestService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.IndexPaperRequest
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal ingest message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	log.Printf("[INFO] Indexing paper: %s (%d pages)", payload.SourceFile, len(payload.Pages))

	var metadata datatypes.JSON
	if payload.Metadata != nil {
		if raw, err := json.Marshal(payload.Metadata); err == nil {
			metadata = raw
		}
	}

	var newChunks []*model.PaperChunk
	for _, page := range payload.Pages {
		pieces := is.splitter.Split(page.Content)
		for i, piece := range pieces {
			res, err := is.embeddingProvider.Generate(piece, "RETRIEVAL_DOCUMENT")
			if err != nil {
				log.Printf("[ERROR] Failed to embed chunk %d of page %d (%s): %v", i, page.Page, payload.SourceFile, err)
				msg.Nack() // Nack for retriable errors
				return
			}

			newChunks = append(newChunks, &model.PaperChunk{
				Id:             uuid.New(),
				SourceFile:     payload.SourceFile,
				Title:          payload.Title,
				Page:           page.Page,
				ChunkIndex:     i,
				Content:        piece,
				Metadata:       metadata,
				EmbeddingValue: pgvector.NewVector(res.Embedding.Values),
			})
		}
	}

	if err := is.chunks.ReplaceForSource(ctx, payload.SourceFile, newChunks); err != nil {
		log.Printf("[ERROR] Failed to store chunks for %s: %v", payload.SourceFile, err)
		msg.Nack()
		return
	}

	log.Printf("[SUCCESS] Paper indexed: %d chunks for %s", len(newChunks), payload.SourceFile)
	if is.sink != nil {
		if err := is.sink.Publish(ctx, events.NewPaperIndexed(payload.SourceFile, len(newChunks))); err != nil {
			log.Printf("[WARN] Failed to publish telemetry for %s: %v", payload.SourceFile, err)
		}
	}
	msg.Ack()
}
