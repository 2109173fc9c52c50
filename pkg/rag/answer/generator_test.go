package answer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medlit-rag-be/internal/pkg/logger"
	"medlit-rag-be/pkg/llm"
	"medlit-rag-be/pkg/store"
)

type fakeProvider struct {
	chunks    []llm.StreamChunk
	streamErr error
	gotPrompt string
}

func (f *fakeProvider) Chat(_ context.Context, history []llm.Message, _ ...llm.Option) (string, error) {
	return "", errors.New("not used")
}

func (f *fakeProvider) Generate(_ context.Context, _ string, _ ...llm.Option) (string, error) {
	return "", errors.New("not used")
}

func (f *fakeProvider) Stream(_ context.Context, history []llm.Message, _ ...llm.Option) (<-chan llm.StreamChunk, error) {
	f.gotPrompt = history[len(history)-1].Content
	if f.streamErr != nil {
		return nil, f.streamErr
	}
	ch := make(chan llm.StreamChunk, len(f.chunks))
	for _, c := range f.chunks {
		ch <- c
	}
	close(ch)
	return ch, nil
}

type fakeClassifier struct {
	needsRAG bool
}

func (f *fakeClassifier) NeedsRetrieval(_ context.Context, _ string) bool {
	return f.needsRAG
}

type fakeDocRetriever struct {
	chunks []store.Chunk
	err    error
}

func (f *fakeDocRetriever) Retrieve(_ context.Context, _ string) ([]store.Chunk, error) {
	return f.chunks, f.err
}

func testLogger() logger.ILogger {
	return logger.NewIsolatedLogger("/tmp/generator_test.log")
}

func collect(t *testing.T, events <-chan Event) []Event {
	t.Helper()
	var got []Event
	for ev := range events {
		got = append(got, ev)
	}
	return got
}

func TestAnswerGeneralChatStreamsTokensThenEnd(t *testing.T) {
	p := &fakeProvider{chunks: []llm.StreamChunk{{Content: "Hello"}, {Content: " there"}}}
	g := NewGenerator(p, &fakeClassifier{needsRAG: false}, &fakeDocRetriever{}, 1024, testLogger())

	got := collect(t, g.Answer(context.Background(), "hi"))

	require.Len(t, got, 4)
	assert.Equal(t, Event{Type: EventToken, Content: GeneralNotice}, got[0])
	assert.Equal(t, Event{Type: EventToken, Content: "Hello"}, got[1])
	assert.Equal(t, Event{Type: EventToken, Content: " there"}, got[2])
	assert.Equal(t, Event{Type: EventStreamEnd, Content: "Hello there"}, got[3])
}

func TestAnswerGeneralChatNoticePrecedesFirstModelToken(t *testing.T) {
	p := &fakeProvider{chunks: []llm.StreamChunk{{Content: "Hello"}}}
	g := NewGenerator(p, &fakeClassifier{needsRAG: false}, &fakeDocRetriever{}, 1024, testLogger())

	got := collect(t, g.Answer(context.Background(), "hi"))

	require.NotEmpty(t, got)
	assert.Equal(t, EventToken, got[0].Type)
	assert.Equal(t, GeneralNotice, got[0].Content)
	assert.NotEqual(t, "Hello", got[0].Content)
}

func TestAnswerRAGPathEmitsProgressFirst(t *testing.T) {
	p := &fakeProvider{chunks: []llm.StreamChunk{{Content: "Grounded answer."}}}
	r := &fakeDocRetriever{chunks: []store.Chunk{{Content: "evidence", Score: 0.9, HasScore: true}}}
	g := NewGenerator(p, &fakeClassifier{needsRAG: true}, r, 1024, testLogger())

	got := collect(t, g.Answer(context.Background(), "what causes sepsis?"))

	require.GreaterOrEqual(t, len(got), 3)
	assert.Equal(t, EventToken, got[0].Type)
	assert.Equal(t, ProgressNotice, got[0].Content)
	assert.Equal(t, EventStreamEnd, got[len(got)-1].Type)
	assert.Equal(t, "Grounded answer.", got[len(got)-1].Content)
	assert.Contains(t, p.gotPrompt, "evidence")
}

func TestAnswerEmptyRetrievalUsesSentinelContext(t *testing.T) {
	p := &fakeProvider{chunks: []llm.StreamChunk{{Content: "I cannot answer."}}}
	g := NewGenerator(p, &fakeClassifier{needsRAG: true}, &fakeDocRetriever{chunks: nil}, 1024, testLogger())

	collect(t, g.Answer(context.Background(), "obscure question"))

	assert.Contains(t, p.gotPrompt, "no relevant documents found")
}

func TestAnswerRetrievalFailureIsSingleError(t *testing.T) {
	p := &fakeProvider{}
	r := &fakeDocRetriever{err: errors.New("db down")}
	g := NewGenerator(p, &fakeClassifier{needsRAG: true}, r, 1024, testLogger())

	got := collect(t, g.Answer(context.Background(), "q"))

	require.Len(t, got, 2) // progress notice, then the error
	assert.Equal(t, EventToken, got[0].Type)
	assert.Equal(t, EventError, got[1].Type)
}

func TestAnswerStreamOpenFailure(t *testing.T) {
	p := &fakeProvider{streamErr: errors.New("connection refused")}
	g := NewGenerator(p, &fakeClassifier{needsRAG: false}, &fakeDocRetriever{}, 1024, testLogger())

	got := collect(t, g.Answer(context.Background(), "hi"))

	require.Len(t, got, 2) // general notice, then the error
	assert.Equal(t, EventToken, got[0].Type)
	assert.Equal(t, EventError, got[1].Type)
}

func TestAnswerMidStreamFailureEndsWithErrorOnly(t *testing.T) {
	p := &fakeProvider{chunks: []llm.StreamChunk{
		{Content: "partial "},
		{Err: errors.New("upstream reset")},
	}}
	g := NewGenerator(p, &fakeClassifier{needsRAG: false}, &fakeDocRetriever{}, 1024, testLogger())

	got := collect(t, g.Answer(context.Background(), "hi"))

	require.Len(t, got, 3) // notice, partial token, error
	assert.Equal(t, EventToken, got[0].Type)
	assert.Equal(t, EventToken, got[1].Type)
	assert.Equal(t, EventError, got[2].Type)
	for _, ev := range got {
		assert.NotEqual(t, EventStreamEnd, ev.Type)
	}
}

func TestAnswerTerminalEventIsAlwaysLast(t *testing.T) {
	p := &fakeProvider{chunks: []llm.StreamChunk{{Content: "a"}, {Content: "b"}, {Content: "c"}}}
	g := NewGenerator(p, &fakeClassifier{}, &fakeDocRetriever{}, 1024, testLogger())

	got := collect(t, g.Answer(context.Background(), "hi"))

	terminals := 0
	for i, ev := range got {
		if ev.Type == EventStreamEnd || ev.Type == EventError {
			terminals++
			assert.Equal(t, len(got)-1, i, "terminal event must be last")
		}
	}
	assert.Equal(t, 1, terminals)
	assert.True(t, strings.HasSuffix(got[len(got)-1].Content, "abc"))
}
