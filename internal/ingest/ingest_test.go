package ingest

import (
	"context"
	"errors"
	"strings"
	"testing"

	"arxtract/internal/util"
)

// stubFetcher serves canned bytes through the real build path; paired with a
// passthrough extractText override it exercises BuildDocument end to end.
type stubFetcher struct {
	pdf      []byte
	abstract string
}

func (s stubFetcher) FetchPDF(ctx context.Context, id string) ([]byte, error) {
	return s.pdf, nil
}

func (s stubFetcher) FetchAbstract(ctx context.Context, id string) (string, error) {
	return s.abstract, nil
}

func withPassthroughExtract(t *testing.T) {
	t.Helper()
	orig := extractText
	extractText = func(data []byte) (string, error) {
		text := util.SanitizeText(string(data))
		if text == "" {
			return "", util.ErrNoExtractableText
		}
		return text, nil
	}
	t.Cleanup(func() { extractText = orig })
}

func TestBuildDocumentChunkContiguityAndReconstruction(t *testing.T) {
	withPassthroughExtract(t)

	words := make([]string, 25)
	for i := range words {
		words[i] = "word"
	}
	body := strings.Join(words, " ") + "\nReferences\n[1] Dropped, 2020."
	f := stubFetcher{pdf: []byte(body), abstract: "the abstract"}

	doc, err := BuildDocument(context.Background(), f, "2401.01234", 10)
	if err != nil {
		t.Fatalf("BuildDocument: %v", err)
	}
	if doc.ArxivID != "2401.01234" || doc.Abstract != "the abstract" {
		t.Fatalf("unexpected document header: %+v", doc)
	}
	if len(doc.Chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(doc.Chunks))
	}
	texts := make([]string, 0, len(doc.Chunks))
	for i, c := range doc.Chunks {
		if c.Index != i {
			t.Fatalf("chunk indices not contiguous from 0: chunk %d has index %d", i, c.Index)
		}
		texts = append(texts, c.Text)
	}
	if joined := strings.Join(texts, " "); joined != doc.Text {
		t.Fatalf("concatenated chunks do not reconstruct the text:\n got %q\nwant %q", joined, doc.Text)
	}
	if strings.Contains(doc.Text, "Dropped") {
		t.Fatalf("bibliography survived normalization: %q", doc.Text)
	}
}

func TestBuildDocumentNoExtractableText(t *testing.T) {
	withPassthroughExtract(t)

	f := stubFetcher{pdf: []byte("   \n\t "), abstract: "a"}
	if _, err := BuildDocument(context.Background(), f, "2401.01234", 10); !errors.Is(err, util.ErrNoExtractableText) {
		t.Fatalf("expected ErrNoExtractableText, got %v", err)
	}
}

func TestNormalizeStripsBibliographyAndNoise(t *testing.T) {
	text := "Intro text with ① noise.\nReferences\n[1] Someone, 2020."
	got := Normalize(text)
	want := "Intro text with noise."
	if got != want {
		t.Fatalf("Normalize = %q, want %q", got, want)
	}
}

func TestNormalizeWithoutHeading(t *testing.T) {
	text := "Plain   text\nwith  runs"
	if got := Normalize(text); got != "Plain text with runs" {
		t.Fatalf("Normalize = %q", got)
	}
}
