package chunker

import (
	"strings"
	"testing"
)

func TestSplitShortTextReturnsSingleChunk(t *testing.T) {
	s := NewSplitter(1000, 100)
	chunks := s.Split("a short paragraph about burns treatment")
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
}

func TestSplitEmptyText(t *testing.T) {
	s := NewSplitter(1000, 100)
	if got := s.Split("   \n\n  "); got != nil {
		t.Errorf("expected nil for whitespace-only input, got %v", got)
	}
}

func TestSplitRespectsChunkSize(t *testing.T) {
	s := NewSplitter(100, 20)

	var sb strings.Builder
	for i := 0; i < 50; i++ {
		sb.WriteString("sentence about pediatric dosage guidelines.\n\n")
	}

	chunks := s.Split(sb.String())
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if len(c) > 100 {
			t.Errorf("chunk %d exceeds size limit: %d bytes", i, len(c))
		}
	}
}

func TestSplitIsDeterministic(t *testing.T) {
	s := NewSplitter(120, 30)
	text := strings.Repeat("alpha beta gamma delta epsilon zeta eta theta. ", 40)

	first := s.Split(text)
	second := s.Split(text)

	if len(first) != len(second) {
		t.Fatalf("chunk counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("chunk %d differs between runs", i)
		}
	}
}

func TestSplitHardCutsUnbreakableText(t *testing.T) {
	s := NewSplitter(50, 10)
	text := strings.Repeat("x", 200) // no separators at all

	chunks := s.Split(text)
	if len(chunks) < 4 {
		t.Fatalf("expected hard-cut chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if len(c) > 50 {
			t.Errorf("chunk %d exceeds size limit: %d bytes", i, len(c))
		}
	}
}
