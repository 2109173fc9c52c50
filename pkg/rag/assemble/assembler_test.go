package assemble

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"medlit-rag-be/pkg/store"
)

func TestBuildContextEmpty(t *testing.T) {
	assert.Equal(t, "no relevant documents found", BuildContext(nil))
	assert.Equal(t, "no relevant documents found", BuildContext([]store.Chunk{}))
}

func TestBuildContextNumbersAndScores(t *testing.T) {
	chunks := []store.Chunk{
		{Content: "first chunk", SourceFile: "burns.pdf", Page: 3, Score: 0.91234, HasScore: true},
		{Content: "second chunk", SourceFile: "burns.pdf", Page: 4, Score: 0.5, HasScore: true},
	}

	out := BuildContext(chunks)

	assert.Contains(t, out, "[Document 1 (relevance: 0.912)]")
	assert.Contains(t, out, "[Document 2 (relevance: 0.500)]")
	assert.Contains(t, out, "Source: burns.pdf (page 3)")
	assert.Contains(t, out, "first chunk")
	assert.True(t, strings.Index(out, "first chunk") < strings.Index(out, "second chunk"))
}

func TestBuildContextOmitsScoreWhenDegraded(t *testing.T) {
	out := BuildContext([]store.Chunk{{Content: "raw similarity only", SourceFile: "a.pdf", Page: 1}})

	assert.Contains(t, out, "[Document 1]\n")
	assert.NotContains(t, out, "relevance")
}

func TestBuildContextCapsAtFive(t *testing.T) {
	chunks := make([]store.Chunk, 8)
	for i := range chunks {
		chunks[i] = store.Chunk{Content: "c", Score: 0.9, HasScore: true}
	}

	out := BuildContext(chunks)

	assert.Contains(t, out, "[Document 5")
	assert.NotContains(t, out, "[Document 6")
}

func TestBuildContextDeterministic(t *testing.T) {
	chunks := []store.Chunk{
		{Content: "alpha", SourceFile: "x.pdf", Page: 1, Score: 0.75, HasScore: true},
		{Content: "beta", SourceFile: "y.pdf", Page: 2, Score: 0.25, HasScore: true},
	}

	assert.Equal(t, BuildContext(chunks), BuildContext(chunks))
}
