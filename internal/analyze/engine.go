// Package analyze holds the LLM-backed reasoning stages: structured
// extraction, query expansion, reranking, relevance judgment, chunk cleanup
// and grounded answering. Embedding and similarity math live elsewhere.
package analyze

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"arxtract/internal/models"
	"arxtract/internal/providers"
	"arxtract/internal/util"
)

const topPicks = 5

var (
	hyphenLineBreak = regexp.MustCompile(`-\s*\n\s*`)
	hyphenMidWord   = regexp.MustCompile(`(\w)-\s+(\w)`)
)

// Engine runs reasoning operations against the configured LLM. Operations
// that feed retrieval (expansion, keywords, rerank, scoring, cleanup) degrade
// to deterministic fallbacks on provider failure; extraction and answering
// surface their errors.
type Engine struct {
	llm             providers.LLMProvider
	maxExtractChars int
}

func NewEngine(llm providers.LLMProvider, maxExtractChars int) *Engine {
	return &Engine{llm: llm, maxExtractChars: maxExtractChars}
}

func (e *Engine) generate(ctx context.Context, op, prompt string) (string, error) {
	resp, _, err := e.llm.Generate(ctx, providers.GenerateRequest{Operation: op, Prompt: prompt})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Text), nil
}

// Extract pulls the schema-constrained overview fields from paper text.
func (e *Engine) Extract(ctx context.Context, text string) (*models.ExtractionResult, error) {
	raw, err := e.generate(ctx, "extract_info", buildExtractionPrompt(text, e.maxExtractChars))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrExtractionFailed, err)
	}
	result, err := parseExtraction(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrExtractionFailed, err)
	}
	return result, nil
}

// ExpandQuery enriches a query with synonyms for retrieval. The original
// query is returned on any failure.
func (e *Engine) ExpandQuery(ctx context.Context, query string) string {
	out, err := e.generate(ctx, "expand", buildExpandPrompt(query))
	if err != nil || out == "" {
		return query
	}
	return out
}

// ExtractKeywords reduces a query to catalog search keywords, falling back to
// the query itself.
func (e *Engine) ExtractKeywords(ctx context.Context, query string) string {
	out, err := e.generate(ctx, "keywords", buildKeywordsPrompt(query))
	if err != nil || out == "" {
		return query
	}
	return out
}

// RerankChunks asks the LLM to pick the 5 most relevant of the candidate
// chunks and returns positions into the input slice. On unparseable output
// the similarity order stands; short picks are padded from the same order.
func (e *Engine) RerankChunks(ctx context.Context, query string, chunks []string) []int {
	fallback := func() []int {
		n := topPicks
		if len(chunks) < n {
			n = len(chunks)
		}
		out := make([]int, n)
		for i := range out {
			out[i] = i
		}
		return out
	}

	raw, err := e.generate(ctx, "rerank", buildRerankPrompt(query, chunks))
	if err != nil {
		return fallback()
	}
	picks, err := parseIndexList(raw, len(chunks))
	if err != nil {
		return fallback()
	}
	for i := 0; len(picks) < topPicks && i < len(chunks); i++ {
		dup := false
		for _, p := range picks {
			if p == i {
				dup = true
				break
			}
		}
		if !dup {
			picks = append(picks, i)
		}
	}
	if len(picks) > topPicks {
		picks = picks[:topPicks]
	}
	return picks
}

// ScoreAbstract rates abstract relevance 0-100. A failed call scores the
// neutral 50 rather than sinking the whole request.
func (e *Engine) ScoreAbstract(ctx context.Context, query, abstract string) float64 {
	raw, err := e.generate(ctx, "relevance", buildRelevancePrompt(query, abstract))
	if err != nil {
		return 50
	}
	return parseScore(raw)
}

// Answer responds to a question using only the supplied excerpts.
func (e *Engine) Answer(ctx context.Context, query string, chunks []string) (string, error) {
	out, err := e.generate(ctx, "answer", buildAnswerPrompt(query, chunks))
	if err != nil {
		return "", err
	}
	if out == "" {
		return "I couldn't generate an answer from the available excerpts.", nil
	}
	return out, nil
}

// CleanChunks removes PDF noise from surfaced chunks. Hyphenated line breaks
// are rejoined deterministically first; the LLM pass is deletion-only and any
// malformed response keeps the rejoined text.
func (e *Engine) CleanChunks(ctx context.Context, chunks []string) []string {
	rejoined := make([]string, len(chunks))
	for i, c := range chunks {
		c = hyphenLineBreak.ReplaceAllString(c, "")
		c = hyphenMidWord.ReplaceAllString(c, "$1$2")
		rejoined[i] = c
	}
	if len(rejoined) == 0 {
		return rejoined
	}
	raw, err := e.generate(ctx, "clean", buildCleanPrompt(rejoined))
	if err != nil {
		return rejoined
	}
	cleaned, err := parseStringArray(raw, len(rejoined))
	if err != nil {
		return rejoined
	}
	return cleaned
}
