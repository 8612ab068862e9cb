package providers

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"arxtract/internal/config"
)

// ProviderRef is one parsed entry of a provider list such as
// "openai|ollama:mistral|mock": a provider name with an optional key alias.
type ProviderRef struct {
	Raw      string
	Name     string
	KeyAlias string
}

type namedLLM struct {
	ref      ProviderRef
	provider LLMProvider
}

type namedEmbedder struct {
	ref      ProviderRef
	provider EmbeddingProvider
}

// Manager builds every provider the configured lists name and serves calls
// with failover: the first listed provider wins while it is healthy, and a
// failing provider is skipped for a cooldown chosen by its error class. A
// mock entry is appended to each list when absent so the chain always has a
// keyless last resort.
type Manager struct {
	llms      []namedLLM
	embedders []namedEmbedder

	mu            sync.Mutex
	disabledUntil map[string]time.Time
	now           func() time.Time
}

func NewManager(cfg config.Config) (*Manager, error) {
	m := &Manager{
		disabledUntil: make(map[string]time.Time),
		now:           time.Now,
	}

	for _, ref := range withMockFallback(ParseProviderList(cfg.LLMProviders)) {
		p, err := buildProvider(ref, cfg.EmbedDim)
		if err != nil {
			return nil, err
		}
		llm, ok := p.(LLMProvider)
		if !ok {
			return nil, fmt.Errorf("provider %s does not support generation", ref.Raw)
		}
		m.llms = append(m.llms, namedLLM{ref: ref, provider: llm})
	}
	for _, ref := range withMockFallback(ParseProviderList(cfg.EmbedProviders)) {
		p, err := buildProvider(ref, cfg.EmbedDim)
		if err != nil {
			return nil, err
		}
		embed, ok := p.(EmbeddingProvider)
		if !ok {
			return nil, fmt.Errorf("provider %s does not support embeddings", ref.Raw)
		}
		m.embedders = append(m.embedders, namedEmbedder{ref: ref, provider: embed})
	}
	return m, nil
}

// LLM returns the failover view over the configured generation providers.
func (m *Manager) LLM() LLMProvider { return failoverLLM{m} }

// Embedder returns the failover view over the configured embedding providers.
func (m *Manager) Embedder() EmbeddingProvider { return failoverEmbedder{m} }

func (m *Manager) LLMRef() ProviderRef   { return m.llms[0].ref }
func (m *Manager) EmbedRef() ProviderRef { return m.embedders[0].ref }

type failoverLLM struct{ m *Manager }

func (f failoverLLM) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, ProviderInfo, error) {
	var lastErr error
	for _, p := range f.m.llms {
		key := "llm:" + p.ref.Raw
		if f.m.disabled(key) {
			continue
		}
		resp, info, err := p.provider.Generate(ctx, req)
		if err == nil {
			return resp, info, nil
		}
		lastErr = err
		f.m.recordFailure(key, err)
		if ctx.Err() != nil {
			break
		}
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("all llm providers exhausted")
	}
	return GenerateResponse{}, ProviderInfo{}, lastErr
}

type failoverEmbedder struct{ m *Manager }

func (f failoverEmbedder) Embed(ctx context.Context, req EmbedRequest) ([][]float32, ProviderInfo, error) {
	var lastErr error
	for _, p := range f.m.embedders {
		key := "embed:" + p.ref.Raw
		if f.m.disabled(key) {
			continue
		}
		vectors, info, err := p.provider.Embed(ctx, req)
		if err == nil {
			return vectors, info, nil
		}
		lastErr = err
		f.m.recordFailure(key, err)
		if ctx.Err() != nil {
			break
		}
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("all embedding providers exhausted")
	}
	return nil, ProviderInfo{}, lastErr
}

func (m *Manager) disabled(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	until, ok := m.disabledUntil[key]
	return ok && m.now().Before(until)
}

// recordFailure sidelines a provider based on its error class. Transient and
// context errors never disable: the next call may be a different payload.
func (m *Manager) recordFailure(key string, err error) {
	var cooldown time.Duration
	switch ClassifyError(err) {
	case ErrorQuota:
		cooldown = 5 * time.Minute
	case ErrorRate:
		cooldown = 2 * time.Minute
	case ErrorPermanent:
		cooldown = time.Minute
	default:
		return
	}
	m.mu.Lock()
	m.disabledUntil[key] = m.now().Add(cooldown)
	m.mu.Unlock()
}

// ParseProviderList splits a "|"-separated provider list, each entry either
// "name" or "name:keyalias". An empty list yields the mock provider.
func ParseProviderList(raw string) []ProviderRef {
	parts := strings.Split(raw, "|")
	out := make([]ProviderRef, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		ref := ProviderRef{Raw: p, Name: p}
		if name, alias, found := strings.Cut(p, ":"); found {
			ref.Name = strings.TrimSpace(name)
			ref.KeyAlias = strings.TrimSpace(alias)
		}
		out = append(out, ref)
	}
	if len(out) == 0 {
		out = append(out, ProviderRef{Raw: "mock", Name: "mock"})
	}
	return out
}

func withMockFallback(refs []ProviderRef) []ProviderRef {
	for _, ref := range refs {
		if strings.EqualFold(ref.Name, "mock") {
			return refs
		}
	}
	return append(refs, ProviderRef{Raw: "mock", Name: "mock"})
}

func buildProvider(ref ProviderRef, dim int) (any, error) {
	switch strings.ToLower(ref.Name) {
	case "mock":
		return NewMockProvider(dim), nil
	case "openai":
		return NewOpenAIProvider(ref.KeyAlias), nil
	case "ollama":
		return NewOllamaProvider(ref.KeyAlias), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", ref.Name)
	}
}
