package service

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"

	"medlit-rag-be/internal/dto"
	"medlit-rag-be/internal/pkg/logger"
	"medlit-rag-be/internal/repository/contract"
	"medlit-rag-be/internal/websocket"
	"medlit-rag-be/pkg/llm"
	"medlit-rag-be/pkg/rag/answer"
)

type IChatService interface {
	// Initialize performs the one-time startup checks. Calling it again
	// returns the result of the first call.
	Initialize(ctx context.Context) error

	// HandleQuestion answers one question and streams the result to the
	// session identified by key. It blocks until the answer finishes.
	HandleQuestion(ctx context.Context, sessionKey, question string)

	Health() dto.HealthResponse
	LLMStatus(ctx context.Context) dto.LLMStatusResponse
}

type chatService struct {
	generator *answer.Generator
	registry  *websocket.Registry
	chunks    contract.ChunkRepository
	provider  llm.LLMProvider

	providerName string
	modelName    string
	logger       logger.ILogger

	initOnce sync.Once
	initErr  atomic.Value // holds error, set only on failure
	ready    atomic.Bool
}

func NewChatService(
	generator *answer.Generator,
	registry *websocket.Registry,
	chunks contract.ChunkRepository,
	provider llm.LLMProvider,
	providerName string,
	modelName string,
	log logger.ILogger,
) IChatService {
	return &chatService{
		generator:    generator,
		registry:     registry,
		chunks:       chunks,
		provider:     provider,
		providerName: providerName,
		modelName:    modelName,
		logger:       log,
	}
}

func (s *chatService) Initialize(ctx context.Context) error {
	s.initOnce.Do(func() {
		count, err := s.chunks.Count(ctx)
		if err != nil {
			s.initErr.Store(err)
			s.logger.Error("ChatService", "Startup check failed, database unreachable", map[string]interface{}{
				"error": err.Error(),
			})
			return
		}

		s.logger.Info("ChatService", "Initialized", map[string]interface{}{
			"indexed_chunks": count,
			"llm_provider":   s.providerName,
			"llm_model":      s.modelName,
		})
		s.ready.Store(true)
	})
	return s.loadInitErr()
}

// loadInitErr reads the startup failure, if any. Health may race with
// Initialize, so the error lives behind an atomic.
func (s *chatService) loadInitErr() error {
	if v := s.initErr.Load(); v != nil {
		return v.(error)
	}
	return nil
}

func (s *chatService) HandleQuestion(ctx context.Context, sessionKey, question string) {
	for ev := range s.generator.Answer(ctx, question) {
		s.deliver(sessionKey, ev)
	}
}

// deliver serializes one event and pushes it to the session. A failed
// send drops the session inside the registry; the remaining events for
// this answer are then best-effort no-ops.
func (s *chatService) deliver(sessionKey string, ev answer.Event) {
	data, err := json.Marshal(dto.StreamMessage{
		Type:     string(ev.Type),
		Content:  ev.Content,
		ClientId: sessionKey,
	})
	if err != nil {
		s.logger.Error("ChatService", "Failed to serialize stream message", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	s.registry.Send(sessionKey, data)
}

func (s *chatService) Health() dto.HealthResponse {
	if err := s.loadInitErr(); err != nil {
		return dto.HealthResponse{
			Status:  "unhealthy",
			Message: "startup checks failed: " + err.Error(),
		}
	}
	if !s.ready.Load() {
		return dto.HealthResponse{
			Status:  "initializing",
			Message: "service is starting up",
		}
	}

	active := s.registry.Count()
	return dto.HealthResponse{
		Status:            "healthy",
		Message:           "service is ready",
		ActiveConnections: &active,
	}
}

func (s *chatService) LLMStatus(ctx context.Context) dto.LLMStatusResponse {
	resp := dto.LLMStatusResponse{
		Provider: s.providerName,
		Model:    s.modelName,
	}

	if _, err := s.provider.Generate(ctx, "ping", llm.WithMaxTokens(1)); err != nil {
		resp.Reachable = false
		resp.Error = err.Error()
		return resp
	}

	resp.Reachable = true
	return resp
}
