package intent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"medlit-rag-be/internal/pkg/logger"
	"medlit-rag-be/pkg/llm"
)

type scriptedProvider struct {
	reply string
	err   error
	calls int
}

func (s *scriptedProvider) Chat(_ context.Context, _ []llm.Message, _ ...llm.Option) (string, error) {
	s.calls++
	return s.reply, s.err
}

func (s *scriptedProvider) Generate(_ context.Context, _ string, _ ...llm.Option) (string, error) {
	return s.reply, s.err
}

func (s *scriptedProvider) Stream(_ context.Context, _ []llm.Message, _ ...llm.Option) (<-chan llm.StreamChunk, error) {
	return nil, errors.New("not used")
}

func testLogger() logger.ILogger {
	return logger.NewIsolatedLogger("/tmp/classifier_test.log")
}

func TestNeedsRetrievalPositive(t *testing.T) {
	c := NewLLMClassifier(&scriptedProvider{reply: "RAG_NEEDED"}, testLogger())
	assert.True(t, c.NeedsRetrieval(context.Background(), "what is the mortality rate of sepsis?"))
}

func TestNeedsRetrievalGeneralChat(t *testing.T) {
	c := NewLLMClassifier(&scriptedProvider{reply: "GENERAL_CHAT"}, testLogger())
	assert.False(t, c.NeedsRetrieval(context.Background(), "hello!"))
}

func TestNeedsRetrievalReadsLastLine(t *testing.T) {
	reply := "The user is asking about clinical evidence.\nThis requires the papers.\n\nRAG_NEEDED"
	c := NewLLMClassifier(&scriptedProvider{reply: reply}, testLogger())
	assert.True(t, c.NeedsRetrieval(context.Background(), "does drug X help?"))
}

func TestNeedsRetrievalFailsOpen(t *testing.T) {
	c := NewLLMClassifier(&scriptedProvider{err: errors.New("timeout")}, testLogger())
	assert.False(t, c.NeedsRetrieval(context.Background(), "anything"))
}

func TestNeedsRetrievalCachesVerdict(t *testing.T) {
	p := &scriptedProvider{reply: "RAG_NEEDED"}
	c := NewLLMClassifier(p, testLogger())

	assert.True(t, c.NeedsRetrieval(context.Background(), "What is ARDS?"))
	assert.True(t, c.NeedsRetrieval(context.Background(), "what is ards?")) // case-insensitive key
	assert.Equal(t, 1, p.calls)
}

func TestParseVerdictVariants(t *testing.T) {
	cases := []struct {
		name  string
		reply string
		want  bool
	}{
		{"plain positive", "RAG_NEEDED", true},
		{"plain negative", "GENERAL_CHAT", false},
		{"lowercase", "rag_needed", true},
		{"trailing whitespace", "RAG_NEEDED  \n\n", true},
		{"empty reply", "", false},
		{"verdict mentioned early but final line wins", "RAG_NEEDED could apply here\nGENERAL_CHAT", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, parseVerdict(tc.reply))
		})
	}
}
