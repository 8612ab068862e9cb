package analyze

import (
	"context"
	"errors"
	"testing"

	"arxtract/internal/providers"
)

func TestStripCodeFence(t *testing.T) {
	cases := map[string]string{
		"```json\n{\"a\":1}\n```": `{"a":1}`,
		"```\n[1,2]\n```":         "[1,2]",
		`{"a":1}`:                 `{"a":1}`,
	}
	for in, want := range cases {
		if got := stripCodeFence(in); got != want {
			t.Fatalf("stripCodeFence(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseExtraction(t *testing.T) {
	raw := "```json\n" + `{"title":"A Paper","problem_statement":null,"task_type":"Classification",
"datasets":["ImageNet","CIFAR-10"],"evaluation_metrics":[],"baselines":null,
"application_domains":["NLP"]}` + "\n```"
	result, err := parseExtraction(raw)
	if err != nil {
		t.Fatalf("parseExtraction: %v", err)
	}
	if result.Title == nil || *result.Title != "A Paper" {
		t.Fatalf("title = %v", result.Title)
	}
	if result.ProblemStatement != nil {
		t.Fatal("null field should stay nil")
	}
	if len(result.Datasets) != 2 || result.Datasets[0] != "ImageNet" {
		t.Fatalf("datasets = %v", result.Datasets)
	}
	// Wrong-typed list coerces to empty, not error.
	if result.Baselines == nil || len(result.Baselines) != 0 {
		t.Fatalf("baselines = %v", result.Baselines)
	}
}

func TestParseExtractionInvalidJSON(t *testing.T) {
	if _, err := parseExtraction("sorry, I cannot do that"); err == nil {
		t.Fatal("expected error for non-JSON output")
	}
}

func TestParseIndexList(t *testing.T) {
	got, err := parseIndexList("[3, 1, 3, 9, -1, 0]", 5)
	if err != nil {
		t.Fatalf("parseIndexList: %v", err)
	}
	want := []int{3, 1, 0}
	if len(got) != len(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v want %v", got, want)
		}
	}
}

func TestParseScore(t *testing.T) {
	if got := parseScore("85"); got != 85 {
		t.Fatalf("parseScore(85) = %f", got)
	}
	if got := parseScore("I'd rate it 73 out of 100"); got != 73 {
		t.Fatalf("salvage = %f", got)
	}
	if got := parseScore("no idea"); got != 50 {
		t.Fatalf("unusable = %f, want neutral 50", got)
	}
	if got := parseScore("250"); got != 100 {
		t.Fatalf("clamp = %f", got)
	}
}

type scriptedLLM struct {
	byOp map[string]string
	err  error
}

func (s *scriptedLLM) Generate(ctx context.Context, req providers.GenerateRequest) (providers.GenerateResponse, providers.ProviderInfo, error) {
	if s.err != nil {
		return providers.GenerateResponse{}, providers.ProviderInfo{}, s.err
	}
	return providers.GenerateResponse{Text: s.byOp[req.Operation]}, providers.ProviderInfo{Name: "scripted"}, nil
}

func TestRerankChunksFallback(t *testing.T) {
	chunks := []string{"a", "b", "c", "d", "e", "f", "g"}

	e := NewEngine(&scriptedLLM{byOp: map[string]string{"rerank": "not json"}}, 0)
	picks := e.RerankChunks(context.Background(), "q", chunks)
	for i, p := range picks {
		if p != i {
			t.Fatalf("fallback should keep similarity order, got %v", picks)
		}
	}

	// Partial picks pad from remaining order up to 5.
	e = NewEngine(&scriptedLLM{byOp: map[string]string{"rerank": "[6, 2]"}}, 0)
	picks = e.RerankChunks(context.Background(), "q", chunks)
	if len(picks) != 5 || picks[0] != 6 || picks[1] != 2 || picks[2] != 0 {
		t.Fatalf("padded picks = %v", picks)
	}
}

func TestExpandQueryFallsBackOnError(t *testing.T) {
	e := NewEngine(&scriptedLLM{err: errors.New("down")}, 0)
	if got := e.ExpandQuery(context.Background(), "transformers"); got != "transformers" {
		t.Fatalf("expand fallback = %q", got)
	}
	if got := e.ExtractKeywords(context.Background(), "transformers"); got != "transformers" {
		t.Fatalf("keywords fallback = %q", got)
	}
}

func TestCleanChunksRejoinsHyphens(t *testing.T) {
	e := NewEngine(&scriptedLLM{byOp: map[string]string{"clean": "not a json array"}}, 0)
	got := e.CleanChunks(context.Background(), []string{"convolu-\ntional net- works"})
	if got[0] != "convolutional networks" {
		t.Fatalf("rejoined = %q", got[0])
	}
}

func TestCleanChunksLengthMismatchKeepsInput(t *testing.T) {
	e := NewEngine(&scriptedLLM{byOp: map[string]string{"clean": `["only one"]`}}, 0)
	got := e.CleanChunks(context.Background(), []string{"first", "second"})
	if got[0] != "first" || got[1] != "second" {
		t.Fatalf("mismatched array should keep inputs, got %v", got)
	}
}
