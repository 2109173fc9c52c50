package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medlit-rag-be/internal/model"
	"medlit-rag-be/internal/pkg/logger"
	"medlit-rag-be/internal/websocket"
	"medlit-rag-be/pkg/store"
)

type fakeChunkRepo struct {
	count    int64
	countErr error
	calls    int
}

func (f *fakeChunkRepo) SearchSimilarWithScore(_ context.Context, _ []float32, _ int) ([]store.Chunk, error) {
	return nil, nil
}

func (f *fakeChunkRepo) ReplaceForSource(_ context.Context, _ string, _ []*model.PaperChunk) error {
	return nil
}

func (f *fakeChunkRepo) Count(_ context.Context) (int64, error) {
	f.calls++
	return f.count, f.countErr
}

func newHealthTestService(repo *fakeChunkRepo) IChatService {
	log := logger.NewIsolatedLogger("/tmp/chat_service_test.log")
	registry := websocket.NewRegistry(nil, log)
	return NewChatService(nil, registry, repo, nil, "ollama", "llama3", log)
}

func TestHealthBeforeInitialize(t *testing.T) {
	s := newHealthTestService(&fakeChunkRepo{count: 3})

	h := s.Health()
	assert.Equal(t, "initializing", h.Status)
	assert.Nil(t, h.ActiveConnections)
}

func TestHealthAfterInitialize(t *testing.T) {
	s := newHealthTestService(&fakeChunkRepo{count: 3})
	require.NoError(t, s.Initialize(context.Background()))

	h := s.Health()
	assert.Equal(t, "healthy", h.Status)
	require.NotNil(t, h.ActiveConnections)
	assert.Equal(t, 0, *h.ActiveConnections)
}

func TestHealthAfterFailedInitialize(t *testing.T) {
	s := newHealthTestService(&fakeChunkRepo{countErr: errors.New("connection refused")})
	assert.Error(t, s.Initialize(context.Background()))

	h := s.Health()
	assert.Equal(t, "unhealthy", h.Status)
	assert.Nil(t, h.ActiveConnections)
}

func TestInitializeRunsOnce(t *testing.T) {
	repo := &fakeChunkRepo{count: 1}
	s := newHealthTestService(repo)

	require.NoError(t, s.Initialize(context.Background()))
	require.NoError(t, s.Initialize(context.Background()))

	assert.Equal(t, 1, repo.calls)
}

func TestHealthConcurrentWithInitialize(t *testing.T) {
	s := newHealthTestService(&fakeChunkRepo{countErr: errors.New("down")})

	// Health must be safe to call while Initialize is still running;
	// the race detector flags unsynchronized access here.
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_ = s.Initialize(context.Background())
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			_ = s.Health()
		}
	}()
	wg.Wait()

	assert.Equal(t, "unhealthy", s.Health().Status)
}

func TestInitializeFailureIsSticky(t *testing.T) {
	repo := &fakeChunkRepo{countErr: errors.New("down")}
	s := newHealthTestService(repo)

	assert.Error(t, s.Initialize(context.Background()))
	// The first failure is the final answer, no retry
	assert.Error(t, s.Initialize(context.Background()))
	assert.Equal(t, 1, repo.calls)
}
