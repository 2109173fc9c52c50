package intent

import (
	"context"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"medlit-rag-be/internal/pkg/logger"
	"medlit-rag-be/pkg/llm"
	"medlit-rag-be/pkg/rag/prompt"
)

// Classifier decides whether a question should go through document
// retrieval or straight to conversational generation.
type Classifier interface {
	NeedsRetrieval(ctx context.Context, question string) bool
}

type LLMClassifier struct {
	provider llm.LLMProvider
	logger   logger.ILogger
	verdicts *cache.Cache
}

func NewLLMClassifier(provider llm.LLMProvider, log logger.ILogger) *LLMClassifier {
	return &LLMClassifier{
		provider: provider,
		logger:   log,
		// Verdicts are stable because classification runs at temperature 0.
		verdicts: cache.New(10*time.Minute, 15*time.Minute),
	}
}

// NeedsRetrieval returns true when the model labels the question RAG_NEEDED.
// Any failure fails open to the conversational path so the user always gets
// an answer, just an ungrounded one.
func (c *LLMClassifier) NeedsRetrieval(ctx context.Context, question string) bool {
	key := strings.TrimSpace(strings.ToLower(question))
	if cached, found := c.verdicts.Get(key); found {
		return cached.(bool)
	}

	reply, err := c.provider.Chat(ctx,
		[]llm.Message{{Role: "user", Content: prompt.BuildClassificationPrompt(question)}},
		llm.WithTemperature(0),
	)
	if err != nil {
		c.logger.Warn("IntentClassifier", "Classification failed, falling back to general chat", map[string]interface{}{
			"error": err.Error(),
		})
		return false
	}

	verdict := parseVerdict(reply)
	c.verdicts.Set(key, verdict, cache.DefaultExpiration)
	return verdict
}

// parseVerdict reads the decision from the last non-empty line so that
// models which reason out loud before answering are still handled.
func parseVerdict(reply string) bool {
	lines := strings.Split(strings.TrimSpace(reply), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		return strings.Contains(strings.ToUpper(line), "RAG_NEEDED")
	}
	return false
}
