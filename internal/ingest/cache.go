package ingest

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"arxtract/internal/models"
	"arxtract/internal/providers"
	"arxtract/internal/util"
)

// BuildFunc produces a complete document for an id. Production wires this to
// BuildDocument; tests substitute their own.
type BuildFunc func(ctx context.Context, id string) (*models.Document, error)

// Cache holds fully built documents keyed by arXiv id. Concurrent requests
// for the same id share a single build, and only complete documents are ever
// published. Failures are not cached, so a later request retries.
type Cache struct {
	build    BuildFunc
	embedder providers.EmbeddingProvider

	mu    sync.RWMutex
	docs  map[string]*models.Document
	group singleflight.Group
}

func NewCache(build BuildFunc, embedder providers.EmbeddingProvider) *Cache {
	return &Cache{
		build:    build,
		embedder: embedder,
		docs:     make(map[string]*models.Document),
	}
}

// Get returns the cached document for id, or nil when it was never built.
func (c *Cache) Get(id string) *models.Document {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.docs[id]
}

// GetOrBuild returns the cached document, building it once if absent.
func (c *Cache) GetOrBuild(ctx context.Context, id string) (*models.Document, error) {
	if doc := c.Get(id); doc != nil {
		return doc, nil
	}
	v, err, _ := c.group.Do(id, func() (any, error) {
		if doc := c.Get(id); doc != nil {
			return doc, nil
		}
		doc, err := c.build(ctx, id)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.docs[id] = doc
		c.mu.Unlock()
		return doc, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Document), nil
}

// EnsureEmbeddings lazily embeds every chunk of the document in one batched
// provider call. Embeddings are computed at most once per document; a failed
// attempt leaves the document without embeddings so the next caller retries.
func (c *Cache) EnsureEmbeddings(ctx context.Context, doc *models.Document) error {
	if c.embedded(doc) {
		return nil
	}
	_, err, _ := c.group.Do(doc.ArxivID+"/embeddings", func() (any, error) {
		if c.embedded(doc) {
			return nil, nil
		}
		inputs := make([]string, 0, len(doc.Chunks))
		for _, ch := range doc.Chunks {
			inputs = append(inputs, ch.Text)
		}
		vectors, _, err := c.embedder.Embed(ctx, providers.EmbedRequest{
			Operation: "chunk_embeddings",
			Inputs:    inputs,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %w", util.ErrEmbeddingUnavailable, err)
		}
		if len(vectors) != len(doc.Chunks) {
			return nil, fmt.Errorf("%w: got %d vectors for %d chunks",
				util.ErrEmbeddingUnavailable, len(vectors), len(doc.Chunks))
		}
		c.mu.Lock()
		for i := range doc.Chunks {
			doc.Chunks[i].Embedding = vectors[i]
		}
		c.mu.Unlock()
		return nil, nil
	})
	return err
}

func (c *Cache) embedded(doc *models.Document) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(doc.Chunks) > 0 && doc.Chunks[0].Embedding != nil
}
