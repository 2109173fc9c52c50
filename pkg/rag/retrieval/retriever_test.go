package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"medlit-rag-be/internal/pkg/logger"
	"medlit-rag-be/pkg/embedding"
	"medlit-rag-be/pkg/events"
	"medlit-rag-be/pkg/store"
)

type fakeEmbedder struct {
	err error
}

func (f *fakeEmbedder) Generate(text string, taskType string) (*embedding.EmbeddingResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	resp := &embedding.EmbeddingResponse{}
	resp.Embedding.Values = []float32{0.1, 0.2, 0.3}
	return resp, nil
}

type fakeStore struct {
	chunks []store.Chunk
	err    error
	gotK   int
}

func (f *fakeStore) SearchSimilarWithScore(_ context.Context, _ []float32, limit int) ([]store.Chunk, error) {
	f.gotK = limit
	return f.chunks, f.err
}

type fakeReranker struct {
	result []store.Chunk
	err    error
	called bool
}

func (f *fakeReranker) Rerank(_ context.Context, _ string, candidates []store.Chunk) ([]store.Chunk, error) {
	f.called = true
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeSink struct {
	published []events.Event
}

func (f *fakeSink) Publish(_ context.Context, ev events.Event) error {
	f.published = append(f.published, ev)
	return nil
}

func testLogger() logger.ILogger {
	return logger.NewIsolatedLogger("/tmp/retriever_test.log")
}

func TestRetrieveRerankedOrder(t *testing.T) {
	base := []store.Chunk{{Content: "a", Score: 0.9, HasScore: true}, {Content: "b", Score: 0.8, HasScore: true}}
	reranked := []store.Chunk{{Content: "b", Score: 0.99, HasScore: true}, {Content: "a", Score: 0.42, HasScore: true}}

	rr := &fakeReranker{result: reranked}
	r := NewRetriever(&fakeEmbedder{}, &fakeStore{chunks: base}, rr, 10, testLogger(), nil)

	got, err := r.Retrieve(context.Background(), "burn treatment")
	assert.NoError(t, err)
	assert.True(t, rr.called)
	assert.Equal(t, "b", got[0].Content)
}

func TestRetrieveDegradesOnRerankFailure(t *testing.T) {
	base := []store.Chunk{{Content: "a"}, {Content: "b"}}
	rr := &fakeReranker{err: errors.New("upstream 503")}
	r := NewRetriever(&fakeEmbedder{}, &fakeStore{chunks: base}, rr, 10, testLogger(), nil)

	got, err := r.Retrieve(context.Background(), "q")
	assert.NoError(t, err)
	assert.Equal(t, base, got)
}

func TestRetrieveNilRerankerUsesSimilarityOrder(t *testing.T) {
	base := []store.Chunk{{Content: "a"}}
	r := NewRetriever(&fakeEmbedder{}, &fakeStore{chunks: base}, nil, 10, testLogger(), nil)

	got, err := r.Retrieve(context.Background(), "q")
	assert.NoError(t, err)
	assert.Equal(t, base, got)
}

func TestRetrieveEmbeddingFailureIsFatal(t *testing.T) {
	r := NewRetriever(&fakeEmbedder{err: errors.New("boom")}, &fakeStore{}, nil, 10, testLogger(), nil)

	_, err := r.Retrieve(context.Background(), "q")
	assert.Error(t, err)
}

func TestRetrieveEmptyResultSkipsRerank(t *testing.T) {
	rr := &fakeReranker{}
	r := NewRetriever(&fakeEmbedder{}, &fakeStore{chunks: nil}, rr, 10, testLogger(), nil)

	got, err := r.Retrieve(context.Background(), "q")
	assert.NoError(t, err)
	assert.Nil(t, got)
	assert.False(t, rr.called)
}

func TestRetrieveDegradationPublishesTelemetry(t *testing.T) {
	sink := &fakeSink{}
	rr := &fakeReranker{err: errors.New("upstream 503")}
	r := NewRetriever(&fakeEmbedder{}, &fakeStore{chunks: []store.Chunk{{Content: "a"}}}, rr, 10, testLogger(), sink)

	_, err := r.Retrieve(context.Background(), "q")
	assert.NoError(t, err)
	assert.Len(t, sink.published, 1)
	assert.Equal(t, "RERANK_DEGRADED", sink.published[0].EventType())
}

func TestRetrievePassesTopK(t *testing.T) {
	fs := &fakeStore{chunks: []store.Chunk{{Content: "a"}}}
	r := NewRetriever(&fakeEmbedder{}, fs, nil, 7, testLogger(), nil)

	_, err := r.Retrieve(context.Background(), "q")
	assert.NoError(t, err)
	assert.Equal(t, 7, fs.gotK)
}
