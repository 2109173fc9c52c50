package assemble

import (
	"fmt"
	"strings"

	"medlit-rag-be/pkg/rag/prompt"
	"medlit-rag-be/pkg/store"
)

// MaxContextChunks bounds how many retrieved chunks feed the prompt.
const MaxContextChunks = 5

// BuildContext renders the top retrieved chunks into the block the grounded
// prompt embeds. The output is deterministic for a given input: same chunks
// in, same bytes out. Chunks past the cap are dropped, never summarized.
func BuildContext(chunks []store.Chunk) string {
	if len(chunks) == 0 {
		return prompt.NoContextSentinel
	}

	limit := len(chunks)
	if limit > MaxContextChunks {
		limit = MaxContextChunks
	}

	var sb strings.Builder
	for i := 0; i < limit; i++ {
		c := chunks[i]
		if i > 0 {
			sb.WriteString("\n\n")
		}
		if c.HasScore {
			fmt.Fprintf(&sb, "[Document %d (relevance: %.3f)]\n", i+1, c.Score)
		} else {
			fmt.Fprintf(&sb, "[Document %d]\n", i+1)
		}
		if c.SourceFile != "" {
			fmt.Fprintf(&sb, "Source: %s (page %d)\n", c.SourceFile, c.Page)
		}
		sb.WriteString(c.Content)
	}

	return sb.String()
}
