package util

import (
	"strings"
	"testing"
)

func TestChunkWordsSizes(t *testing.T) {
	words := make([]string, 25)
	for i := range words {
		words[i] = "w"
	}
	chunks := ChunkWords(strings.Join(words, " "), 10)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	if n := len(strings.Fields(chunks[0])); n != 10 {
		t.Fatalf("expected 10 words in first chunk, got %d", n)
	}
	if n := len(strings.Fields(chunks[2])); n != 5 {
		t.Fatalf("expected 5 words in last chunk, got %d", n)
	}
}

func TestChunkWordsReconstructsText(t *testing.T) {
	text := "alpha beta\tgamma\n delta epsilon zeta eta theta iota kappa"
	chunks := ChunkWords(text, 3)
	joined := strings.Join(chunks, " ")
	want := strings.Join(strings.Fields(text), " ")
	if joined != want {
		t.Fatalf("concatenated chunks do not reconstruct the text:\n got %q\nwant %q", joined, want)
	}
}

func TestChunkWordsEmptyText(t *testing.T) {
	if chunks := ChunkWords("", 300); len(chunks) != 0 {
		t.Fatalf("expected no chunks for empty text, got %d", len(chunks))
	}
	if chunks := ChunkWords("   \n\t ", 300); len(chunks) != 0 {
		t.Fatalf("expected no chunks for blank text, got %d", len(chunks))
	}
}
