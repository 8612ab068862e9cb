// Package vector provides cosine similarity scoring over chunk embeddings.
package vector

import (
	"math"
	"sort"

	"arxtract/internal/models"
)

// Cosine returns the cosine similarity of two vectors. Mismatched lengths or
// zero-magnitude inputs score 0.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, magA, magB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		magA += x * x
		magB += y * y
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Score100 maps a cosine similarity onto the 0-100 relevance scale used for
// abstracts and chunks. Negative cosines clamp to 0.
func Score100(cos float64) float64 { return clamp01(cos) * 100 }

// Score10 maps a cosine similarity onto the 0-10 scale used for related papers.
func Score10(cos float64) float64 { return clamp01(cos) * 10 }

// ScoredChunk pairs a chunk index with its query similarity.
type ScoredChunk struct {
	Index int
	Score float64
}

// Rank scores every chunk against the query vector and returns them in
// descending score order. Ties resolve to the lower chunk index.
func Rank(query []float32, chunks []models.Chunk) []ScoredChunk {
	scored := make([]ScoredChunk, 0, len(chunks))
	for _, c := range chunks {
		scored = append(scored, ScoredChunk{Index: c.Index, Score: Cosine(query, c.Embedding)})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Index < scored[j].Index
	})
	return scored
}

// Top returns the first k ranked chunks, or all of them when fewer exist.
func Top(ranked []ScoredChunk, k int) []ScoredChunk {
	if k < 0 {
		k = 0
	}
	if k > len(ranked) {
		k = len(ranked)
	}
	return ranked[:k]
}
