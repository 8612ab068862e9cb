// Package ingest turns an arXiv id into a normalized, chunked document and
// caches the result in memory for the lifetime of the process.
package ingest

import (
	"context"
	"fmt"

	"arxtract/internal/models"
	"arxtract/internal/util"
)

// Fetcher is the catalog surface ingestion needs.
type Fetcher interface {
	FetchPDF(ctx context.Context, id string) ([]byte, error)
	FetchAbstract(ctx context.Context, id string) (string, error)
}

// Normalize applies the full cleanup pipeline to extracted PDF text:
// the bibliography is dropped, then symbol noise and whitespace runs go.
func Normalize(text string) string {
	text = util.StripReferences(text)
	return util.RemoveSymbolNoise(text)
}

// extractText is swapped out by tests that feed plain text through the build
// path without real PDF bytes.
var extractText = extractPDFText

// BuildDocument fetches, parses and chunks one paper. The abstract comes from
// the catalog API rather than the PDF, since PDF layouts bury it unreliably.
func BuildDocument(ctx context.Context, f Fetcher, id string, chunkSize int) (*models.Document, error) {
	data, err := f.FetchPDF(ctx, id)
	if err != nil {
		return nil, err
	}
	raw, err := extractText(data)
	if err != nil {
		return nil, err
	}
	text := Normalize(raw)
	if text == "" {
		return nil, util.ErrNoExtractableText
	}

	abstract, err := f.FetchAbstract(ctx, id)
	if err != nil {
		return nil, err
	}

	pieces := util.ChunkWords(text, chunkSize)
	if len(pieces) == 0 {
		return nil, fmt.Errorf("%w: text produced no chunks", util.ErrNoExtractableText)
	}
	chunks := make([]models.Chunk, 0, len(pieces))
	for i, p := range pieces {
		chunks = append(chunks, models.Chunk{Index: i, Text: p})
	}

	return &models.Document{
		ArxivID:  id,
		Abstract: abstract,
		Text:     text,
		Chunks:   chunks,
	}, nil
}
