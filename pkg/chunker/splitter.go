package chunker

import (
	"strings"
)

// Splitter breaks long text into overlapping chunks suitable for embedding.
// It splits on the coarsest separator that still produces pieces under the
// chunk size, falling back to finer separators for oversized pieces.
type Splitter struct {
	ChunkSize    int
	ChunkOverlap int
	separators   []string
}

func NewSplitter(chunkSize, chunkOverlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize / 10
	}
	return &Splitter{
		ChunkSize:    chunkSize,
		ChunkOverlap: chunkOverlap,
		separators:   []string{"\n\n", "\n", " "},
	}
}

// Split returns the chunks of text in order. Whitespace-only input yields
// no chunks.
func (s *Splitter) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return s.split(text, s.separators)
}

func (s *Splitter) split(text string, separators []string) []string {
	if len(text) <= s.ChunkSize {
		return []string{text}
	}

	// Pick the first separator that actually occurs in the text.
	sep := ""
	rest := separators
	for i, candidate := range separators {
		if strings.Contains(text, candidate) {
			sep = candidate
			rest = separators[i+1:]
			break
		}
	}

	var pieces []string
	if sep == "" {
		// No separator left; hard-cut the text.
		for start := 0; start < len(text); start += s.ChunkSize - s.ChunkOverlap {
			end := start + s.ChunkSize
			if end > len(text) {
				end = len(text)
			}
			pieces = append(pieces, text[start:end])
			if end == len(text) {
				break
			}
		}
		return pieces
	}

	for _, part := range strings.Split(text, sep) {
		if part == "" {
			continue
		}
		if len(part) > s.ChunkSize {
			pieces = append(pieces, s.split(part, rest)...)
		} else {
			pieces = append(pieces, part)
		}
	}

	return s.merge(pieces, sep)
}

// merge joins small pieces back together up to the chunk size, carrying the
// configured overlap of trailing pieces into the next chunk.
func (s *Splitter) merge(pieces []string, sep string) []string {
	var chunks []string
	var current []string
	currentLen := 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		chunk := strings.Join(current, sep)
		if strings.TrimSpace(chunk) != "" {
			chunks = append(chunks, chunk)
		}

		// Keep trailing pieces as overlap for the next chunk.
		keep := []string{}
		keepLen := 0
		for i := len(current) - 1; i >= 0; i-- {
			pieceLen := len(current[i]) + len(sep)
			if keepLen+pieceLen > s.ChunkOverlap {
				break
			}
			keep = append([]string{current[i]}, keep...)
			keepLen += pieceLen
		}
		current = keep
		currentLen = keepLen
	}

	for _, piece := range pieces {
		pieceLen := len(piece)
		if currentLen > 0 {
			pieceLen += len(sep)
		}
		if currentLen+pieceLen > s.ChunkSize && currentLen > 0 {
			flush()
			pieceLen = len(piece)
			if currentLen > 0 {
				pieceLen += len(sep)
			}
		}
		current = append(current, piece)
		currentLen += pieceLen
	}
	flush()

	return chunks
}
