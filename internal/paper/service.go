// Package paper orchestrates the five paper operations: structured
// extraction, similarity scoring, related-paper discovery, grounded chat and
// the combined analyze call.
package paper

import (
	"context"
	"fmt"
	"log"
	"math"
	"sort"
	"sync"

	"golang.org/x/sync/singleflight"

	"arxtract/internal/analyze"
	"arxtract/internal/arxiv"
	"arxtract/internal/config"
	"arxtract/internal/ingest"
	"arxtract/internal/models"
	"arxtract/internal/providers"
	"arxtract/internal/util"
	"arxtract/internal/vector"
)

// Catalog is the arXiv surface the service depends on.
type Catalog interface {
	FetchPDF(ctx context.Context, id string) ([]byte, error)
	FetchAbstract(ctx context.Context, id string) (string, error)
	Search(ctx context.Context, keywords string, max int) ([]arxiv.SearchHit, error)
}

type Service struct {
	cfg      config.Config
	catalog  Catalog
	cache    *ingest.Cache
	embedder providers.EmbeddingProvider
	engine   *analyze.Engine

	extractGroup singleflight.Group
	mu           sync.RWMutex
	extractions  map[string]*models.ExtractionResult
}

func NewService(cfg config.Config, catalog Catalog, embedder providers.EmbeddingProvider, llm providers.LLMProvider) *Service {
	build := func(ctx context.Context, id string) (*models.Document, error) {
		return ingest.BuildDocument(ctx, catalog, id, cfg.ChunkSizeWords)
	}
	return &Service{
		cfg:         cfg,
		catalog:     catalog,
		cache:       ingest.NewCache(build, embedder),
		embedder:    embedder,
		engine:      analyze.NewEngine(llm, cfg.ExtractMaxChars),
		extractions: make(map[string]*models.ExtractionResult),
	}
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// Extract resolves the identifier, builds the document if needed and returns
// the structured overview. Successful extractions are cached per id, and
// concurrent requests for the same id share one LLM call.
func (s *Service) Extract(ctx context.Context, input string) (*models.ExtractionResult, error) {
	id, err := arxiv.ExtractID(input)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	cached := s.extractions[id]
	s.mu.RUnlock()
	if cached != nil {
		return cached, nil
	}

	doc, err := s.cache.GetOrBuild(ctx, id)
	if err != nil {
		return nil, err
	}

	v, err, _ := s.extractGroup.Do(id, func() (any, error) {
		s.mu.RLock()
		cached := s.extractions[id]
		s.mu.RUnlock()
		if cached != nil {
			return cached, nil
		}
		result, err := s.engine.Extract(ctx, doc.Text)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.extractions[id] = result
		s.mu.Unlock()
		return result, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.ExtractionResult), nil
}

// Score rates the paper against a research query: an abstract-level score
// plus the most relevant cleaned chunks. The abstract score averages the
// embedding similarity with an LLM relevance judgment.
func (s *Service) Score(ctx context.Context, input, query string) (*models.SimilarityResult, error) {
	id, err := arxiv.ExtractID(input)
	if err != nil {
		return nil, err
	}
	doc, err := s.cache.GetOrBuild(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.cache.EnsureEmbeddings(ctx, doc); err != nil {
		return nil, err
	}

	expanded := s.engine.ExpandQuery(ctx, query)
	vectors, _, err := s.embedder.Embed(ctx, providers.EmbedRequest{
		Operation: "similarity_query",
		Inputs:    []string{expanded, doc.Abstract},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", util.ErrEmbeddingUnavailable, err)
	}
	if len(vectors) != 2 {
		return nil, fmt.Errorf("%w: got %d vectors for 2 inputs", util.ErrEmbeddingUnavailable, len(vectors))
	}
	queryVec, abstractVec := vectors[0], vectors[1]

	// Both legs of the abstract score judge the same pair of texts: the
	// expanded query against the abstract.
	embedScore := vector.Score100(vector.Cosine(queryVec, abstractVec))
	llmScore := s.engine.ScoreAbstract(ctx, expanded, doc.Abstract)
	abstractScore := round3((embedScore + llmScore) / 2)

	ranked := vector.Rank(queryVec, doc.Chunks)
	candidates := vector.Top(ranked, s.cfg.RerankCandidates)
	texts := make([]string, len(candidates))
	for i, c := range candidates {
		texts[i] = doc.Chunks[c.Index].Text
	}

	picks := s.engine.RerankChunks(ctx, expanded, texts)
	selectedTexts := make([]string, len(picks))
	for i, p := range picks {
		selectedTexts[i] = texts[p]
	}
	cleaned := s.engine.CleanChunks(ctx, selectedTexts)

	top := make([]models.ChunkScore, 0, len(picks))
	for i, p := range picks {
		top = append(top, models.ChunkScore{
			Index: candidates[p].Index,
			Text:  cleaned[i],
			Score: round3(vector.Score100(candidates[p].Score)),
		})
	}

	return &models.SimilarityResult{
		AbstractScore: abstractScore,
		AbstractText:  doc.Abstract,
		TopChunks:     top,
	}, nil
}

// Related finds catalog papers similar to the query, scored 0-10 by abstract
// similarity against the expanded query. The source paper never appears in
// its own results, and an empty catalog response is an empty list, not an
// error.
func (s *Service) Related(ctx context.Context, input, query string) ([]models.RelatedPaper, error) {
	id, err := arxiv.ExtractID(input)
	if err != nil {
		return nil, err
	}

	expanded := s.engine.ExpandQuery(ctx, query)
	keywords := s.engine.ExtractKeywords(ctx, query)

	hits, err := s.catalog.Search(ctx, keywords, s.cfg.RelatedMax)
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{id: true}
	unique := make([]arxiv.SearchHit, 0, len(hits))
	for _, h := range hits {
		if seen[h.ArxivID] {
			continue
		}
		seen[h.ArxivID] = true
		unique = append(unique, h)
	}
	if len(unique) == 0 {
		return []models.RelatedPaper{}, nil
	}

	inputs := make([]string, 0, len(unique)+1)
	inputs = append(inputs, expanded)
	for _, h := range unique {
		inputs = append(inputs, h.Abstract)
	}
	vectors, _, err := s.embedder.Embed(ctx, providers.EmbedRequest{
		Operation: "related_query",
		Inputs:    inputs,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", util.ErrEmbeddingUnavailable, err)
	}
	if len(vectors) != len(inputs) {
		return nil, fmt.Errorf("%w: got %d vectors for %d inputs", util.ErrEmbeddingUnavailable, len(vectors), len(inputs))
	}
	queryVec := vectors[0]

	related := make([]models.RelatedPaper, 0, len(unique))
	for i, h := range unique {
		related = append(related, models.RelatedPaper{
			ArxivID:  h.ArxivID,
			Title:    h.Title,
			Authors:  h.Authors,
			Abstract: h.Abstract,
			URL:      h.URL,
			Score:    round3(vector.Score10(vector.Cosine(queryVec, vectors[i+1]))),
		})
	}
	sort.SliceStable(related, func(i, j int) bool {
		return related[i].Score > related[j].Score
	})
	return related, nil
}

// Chat answers a question about an already-ingested paper using its most
// similar chunks. The document must exist in the cache; chat never triggers
// ingestion. The latest user turn drives retrieval verbatim.
func (s *Service) Chat(ctx context.Context, input string, turns []models.ChatTurn) (*models.ChatAnswer, error) {
	id, err := arxiv.ExtractID(input)
	if err != nil {
		return nil, err
	}
	doc := s.cache.Get(id)
	if doc == nil {
		return nil, util.ErrUnknownDocument
	}

	query := latestUserTurn(turns)
	if query == "" {
		return nil, util.ErrNoUserTurn
	}

	if err := s.cache.EnsureEmbeddings(ctx, doc); err != nil {
		return nil, err
	}
	vectors, _, err := s.embedder.Embed(ctx, providers.EmbedRequest{
		Operation: "chat_query",
		Inputs:    []string{query},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", util.ErrEmbeddingUnavailable, err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("%w: got %d vectors for 1 input", util.ErrEmbeddingUnavailable, len(vectors))
	}

	selected := vector.Top(vector.Rank(vectors[0], doc.Chunks), s.cfg.ChatTopK)
	// Excerpts read better in document order than in similarity order.
	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].Index < selected[j].Index
	})

	texts := make([]string, len(selected))
	used := make([]models.ChunkScore, len(selected))
	for i, sc := range selected {
		texts[i] = doc.Chunks[sc.Index].Text
		used[i] = models.ChunkScore{
			Index: sc.Index,
			Text:  doc.Chunks[sc.Index].Text,
			Score: round3(vector.Score100(sc.Score)),
		}
	}

	answer, err := s.engine.Answer(ctx, query, texts)
	if err != nil {
		return nil, fmt.Errorf("answer generation: %w", err)
	}
	return &models.ChatAnswer{Answer: answer, ChunksUsed: used}, nil
}

func latestUserTurn(turns []models.ChatTurn) string {
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role == "user" && turns[i].Content != "" {
			return turns[i].Content
		}
	}
	return ""
}

// AnalysisResult carries the three analyze branches. Each branch fails
// independently; a branch error never blanks the other two.
type AnalysisResult struct {
	ArxivID         string                   `json:"arxiv_id"`
	Extraction      *models.ExtractionResult `json:"extraction,omitempty"`
	ExtractionError string                   `json:"extraction_error,omitempty"`
	Similarity      *models.SimilarityResult `json:"similarity,omitempty"`
	SimilarityError string                   `json:"similarity_error,omitempty"`
	Related         []models.RelatedPaper    `json:"related,omitempty"`
	RelatedError    string                   `json:"related_error,omitempty"`
}

// Analyze runs extraction, similarity scoring and related-paper discovery
// concurrently over one shared document build. Only a failure to produce the
// document itself fails the whole call.
func (s *Service) Analyze(ctx context.Context, input, query string) (*AnalysisResult, error) {
	id, err := arxiv.ExtractID(input)
	if err != nil {
		return nil, err
	}
	if _, err := s.cache.GetOrBuild(ctx, id); err != nil {
		return nil, err
	}

	result := &AnalysisResult{ArxivID: id}
	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		extraction, err := s.Extract(ctx, id)
		if err != nil {
			log.Printf("analyze %s: extraction failed (%s): %v", id, providers.ClassifyError(err), err)
			result.ExtractionError = err.Error()
			return
		}
		result.Extraction = extraction
	}()
	go func() {
		defer wg.Done()
		similarity, err := s.Score(ctx, id, query)
		if err != nil {
			log.Printf("analyze %s: similarity failed (%s): %v", id, providers.ClassifyError(err), err)
			result.SimilarityError = err.Error()
			return
		}
		result.Similarity = similarity
	}()
	go func() {
		defer wg.Done()
		related, err := s.Related(ctx, id, query)
		if err != nil {
			log.Printf("analyze %s: related search failed (%s): %v", id, providers.ClassifyError(err), err)
			result.RelatedError = err.Error()
			return
		}
		result.Related = related
	}()

	wg.Wait()
	return result, nil
}
