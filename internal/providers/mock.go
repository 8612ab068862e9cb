package providers

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math"
	"strings"
)

// MockProvider is a deterministic keyless stand-in for tests and local
// development. Embeddings are stable hashes of the input; generation returns
// fixed shapes that each pipeline stage can parse.
type MockProvider struct {
	dim int
}

func NewMockProvider(dim int) *MockProvider {
	if dim <= 0 {
		dim = 1536
	}
	return &MockProvider{dim: dim}
}

func (m *MockProvider) Embed(ctx context.Context, req EmbedRequest) ([][]float32, ProviderInfo, error) {
	_ = ctx
	dim := req.Dimension
	if dim <= 0 {
		dim = m.dim
	}
	vectors := make([][]float32, 0, len(req.Inputs))
	for _, input := range req.Inputs {
		vectors = append(vectors, deterministicVector(input, dim))
	}
	return vectors, ProviderInfo{Name: "mock", Model: fmt.Sprintf("mock-embed-%d", dim), Key: "mock"}, nil
}

func (m *MockProvider) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, ProviderInfo, error) {
	_ = ctx
	op := strings.ToLower(req.Operation)
	text := "Mock response."
	switch {
	case strings.Contains(op, "extract_info"):
		text = `{"title":"Mock Paper","problem_statement":null,"task_type":"Classification",` +
			`"core_contribution":"Deterministic mock contribution.","model_architecture":null,` +
			`"training_details":null,"datasets":[],"evaluation_metrics":[],"baselines":[],` +
			`"key_results":null,"limitations":null,"application_domains":[]}`
	case strings.Contains(op, "expand"):
		text = "mock expanded query"
	case strings.Contains(op, "keywords"):
		text = "mock keywords"
	case strings.Contains(op, "rerank"):
		text = "[0, 1, 2, 3, 4]"
	case strings.Contains(op, "relevance"):
		text = "50"
	case strings.Contains(op, "answer"):
		text = "Deterministic answer grounded in the provided excerpts."
	case strings.Contains(op, "clean"):
		// Unparseable on purpose so callers keep the raw chunk text.
		text = ""
	}
	return GenerateResponse{Text: text}, ProviderInfo{Name: "mock", Model: "mock-llm-v1", Key: "mock"}, nil
}

func deterministicVector(input string, dim int) []float32 {
	vec := make([]float32, dim)
	seed := []byte(input)
	if len(seed) == 0 {
		seed = []byte("empty")
	}
	for i := 0; i < dim; i++ {
		h := sha256.Sum256(append(seed, byte(i%251)))
		u := binary.BigEndian.Uint32(h[:4])
		vec[i] = float32(u%2000)/1000.0 - 1.0
	}
	return normalize(vec)
}

func normalize(v []float32) []float32 {
	var sum float32
	for _, x := range v {
		sum += x * x
	}
	if sum == 0 {
		return v
	}
	inv := float32(1.0 / math.Sqrt(float64(sum)+1e-9))
	for i := range v {
		v[i] *= inv
	}
	return v
}
