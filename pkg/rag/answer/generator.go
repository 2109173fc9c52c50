package answer

import (
	"context"
	"strings"

	"medlit-rag-be/internal/pkg/logger"
	"medlit-rag-be/pkg/llm"
	"medlit-rag-be/pkg/rag/assemble"
	"medlit-rag-be/pkg/rag/intent"
	"medlit-rag-be/pkg/rag/prompt"
	"medlit-rag-be/pkg/store"
)

// Every answer starts with exactly one notice token before the first
// model token, so the client always has something to render while the
// backend works. Which notice depends on the path taken.
const (
	// ProgressNotice precedes retrieval-backed answers; search and
	// rerank can take a while.
	ProgressNotice = "Searching the medical literature...\n\n"

	// GeneralNotice precedes conversational answers.
	GeneralNotice = "Generating an answer...\n\n"
)

// DocumentRetriever is the slice of the retrieval pipeline the generator needs.
type DocumentRetriever interface {
	Retrieve(ctx context.Context, query string) ([]store.Chunk, error)
}

// Generator answers a question end to end: classify, optionally retrieve,
// then stream the completion as events.
type Generator struct {
	provider   llm.LLMProvider
	classifier intent.Classifier
	retriever  DocumentRetriever
	logger     logger.ILogger
	maxTokens  int
}

func NewGenerator(provider llm.LLMProvider, classifier intent.Classifier, retriever DocumentRetriever, maxTokens int, log logger.ILogger) *Generator {
	return &Generator{
		provider:   provider,
		classifier: classifier,
		retriever:  retriever,
		logger:     log,
		maxTokens:  maxTokens,
	}
}

// Answer streams the response to one question. The returned channel is
// closed after the terminal event. Errors are reported on the channel,
// never by panicking the caller's goroutine.
func (g *Generator) Answer(ctx context.Context, question string) <-chan Event {
	out := make(chan Event, 16)

	go func() {
		defer close(out)

		var userPrompt string
		if g.classifier.NeedsRetrieval(ctx, question) {
			if !g.emit(ctx, out, Event{Type: EventToken, Content: ProgressNotice}) {
				return
			}

			chunks, err := g.retriever.Retrieve(ctx, question)
			if err != nil {
				g.logger.Error("AnswerGenerator", "Retrieval failed", map[string]interface{}{
					"error": err.Error(),
				})
				g.emit(ctx, out, Event{Type: EventError, Content: "Failed to search the document index. Please try again."})
				return
			}
			userPrompt = prompt.BuildGroundedPrompt(assemble.BuildContext(chunks), question)
		} else {
			if !g.emit(ctx, out, Event{Type: EventToken, Content: GeneralNotice}) {
				return
			}
			userPrompt = prompt.BuildGeneralPrompt(question)
		}

		stream, err := g.provider.Stream(ctx,
			[]llm.Message{{Role: "user", Content: userPrompt}},
			llm.WithTemperature(0),
			llm.WithMaxTokens(g.maxTokens),
		)
		if err != nil {
			g.logger.Error("AnswerGenerator", "Failed to open completion stream", map[string]interface{}{
				"error": err.Error(),
			})
			g.emit(ctx, out, Event{Type: EventError, Content: "The language model is unavailable. Please try again."})
			return
		}

		var full strings.Builder
		for chunk := range stream {
			if chunk.Err != nil {
				g.logger.Error("AnswerGenerator", "Completion stream failed mid-answer", map[string]interface{}{
					"error": chunk.Err.Error(),
				})
				g.emit(ctx, out, Event{Type: EventError, Content: "The answer was interrupted. Please try again."})
				return
			}
			if chunk.Content == "" {
				continue
			}
			full.WriteString(chunk.Content)
			if !g.emit(ctx, out, Event{Type: EventToken, Content: chunk.Content}) {
				return
			}
		}

		g.emit(ctx, out, Event{Type: EventStreamEnd, Content: full.String()})
	}()

	return out
}

// emit delivers an event unless the caller has gone away.
func (g *Generator) emit(ctx context.Context, out chan<- Event, ev Event) bool {
	select {
	case out <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
