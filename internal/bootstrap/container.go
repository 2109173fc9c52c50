package bootstrap

import (
	"context"
	"log"

	"medlit-rag-be/internal/config"
	"medlit-rag-be/internal/handler"
	"medlit-rag-be/internal/pkg/logger"
	"medlit-rag-be/internal/repository/implementation"
	"medlit-rag-be/internal/service"
	"medlit-rag-be/internal/websocket"
	"medlit-rag-be/pkg/chunker"
	"medlit-rag-be/pkg/embedding"
	"medlit-rag-be/pkg/embedding/jina"
	"medlit-rag-be/pkg/llm/factory"
	"medlit-rag-be/pkg/rag/answer"
	"medlit-rag-be/pkg/rag/intent"
	"medlit-rag-be/pkg/rag/retrieval"
	"medlit-rag-be/pkg/rerank"
	jinarerank "medlit-rag-be/pkg/rerank/jina"

	pktNats "medlit-rag-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Handlers
	ChatHandler  *handler.ChatHandler
	PaperHandler *handler.PaperHandler

	// Background Services (Exposed for main.go to run)
	ChatService   service.IChatService
	IngestService service.IIngestService

	// WebSocket Registry
	Registry *websocket.Registry
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	} else {
		embeddingProvider = jina.NewJinaProvider(cfg.Keys.Jina)
		log.Printf("[INFO] Using Embedding Provider: JINA AI")
	}

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Keys.Upstage,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	var reranker rerank.Reranker
	if cfg.Retrieval.RerankEnabled {
		jr, err := jinarerank.NewJinaReranker(cfg.Keys.Jina, cfg.Retrieval.RerankModel)
		if err != nil {
			// The service keeps answering on similarity order alone.
			log.Printf("[WARN] Reranker unavailable: %v (degrading to similarity order)", err)
		} else {
			reranker = jr
		}
	}

	// 4. Infrastructure
	// NATS, only when telemetry is switched on
	var natsPub *pktNats.Publisher
	if cfg.App.TelemetryEnabled {
		natsPub, err = pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		}
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v (running single-instance)", err)
		rdb = nil
	}

	// WebSocket Registry
	wsLogger := logger.NewIsolatedLogger("logs/chat.log")
	registry := websocket.NewRegistry(rdb, wsLogger)
	registry.Run()

	// 5. Domain
	chunkRepo := implementation.NewChunkRepository(db)

	// nats.Publisher satisfies both event sink interfaces; nil stays nil
	var retrievalSink retrieval.EventSink
	var ingestSink service.EventSink
	if natsPub != nil {
		retrievalSink = natsPub
		ingestSink = natsPub
	}

	retriever := retrieval.NewRetriever(
		embeddingProvider,
		chunkRepo,
		reranker,
		cfg.Retrieval.TopK,
		sysLogger,
		retrievalSink,
	)
	classifier := intent.NewLLMClassifier(llmProvider, sysLogger)
	generator := answer.NewGenerator(
		llmProvider,
		classifier,
		retriever,
		cfg.Ai.MaxOutputTokens,
		sysLogger,
	)

	chatService := service.NewChatService(
		generator,
		registry,
		chunkRepo,
		llmProvider,
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		sysLogger,
	)

	splitter := chunker.NewSplitter(cfg.Retrieval.ChunkSize, cfg.Retrieval.ChunkOverlap)
	ingestService := service.NewIngestService(
		pubSub,
		cfg.Keys.IndexPaperTopic,
		chunkRepo,
		embeddingProvider,
		splitter,
		ingestSink,
	)

	return &Container{
		ChatHandler:   handler.NewChatHandler(chatService, registry, cfg.Keys.JWTSecret, wsLogger),
		PaperHandler:  handler.NewPaperHandler(ingestService, sysLogger),
		ChatService:   chatService,
		IngestService: ingestService,
		Registry:      registry,
	}
}
